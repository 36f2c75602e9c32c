package journal

const Schema = `
CREATE TABLE IF NOT EXISTS kv (
	key TEXT PRIMARY KEY,
	value BLOB NOT NULL,
	updated_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	instrument TEXT NOT NULL,
	direction TEXT,
	timestamp DATETIME NOT NULL,
	pnl REAL,
	result TEXT,
	category TEXT,
	account_id TEXT,
	setup_id TEXT,
	score INTEGER,
	record TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_timestamp ON trades(timestamp);

CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	initial_balance REAL NOT NULL,
	category TEXT NOT NULL,
	record TEXT NOT NULL
);
`
