package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is both a key-value Store for the journal documents and a Syncer
// that mirrors trades and accounts into queryable tables.
type SQLite struct {
	db *sql.DB

	// MaxValueBytes, when positive, rejects larger documents with ErrQuotaExceeded.
	MaxValueBytes int
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) Load(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := j.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (j *SQLite) Save(ctx context.Context, key string, value []byte) error {
	if j.MaxValueBytes > 0 && len(value) > j.MaxValueBytes {
		return ErrQuotaExceeded
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC(),
	)
	return err
}

// SaveTrade upserts a trade into the mirror table and returns its row id.
func (j *SQLite) SaveTrade(ctx context.Context, t TradeRecord) (string, error) {
	blob, err := json.Marshal(t)
	if err != nil {
		return "", err
	}

	var score sql.NullInt64
	if s, ok := t.Score(); ok {
		score = sql.NullInt64{Int64: int64(s), Valid: true}
	}
	var pl sql.NullFloat64
	if t.PnL != nil {
		pl = sql.NullFloat64{Float64: *t.PnL, Valid: true}
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO trades
		(id, instrument, direction, timestamp, pnl, result, category, account_id, setup_id, score, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			instrument = excluded.instrument, direction = excluded.direction,
			timestamp = excluded.timestamp, pnl = excluded.pnl, result = excluded.result,
			category = excluded.category, account_id = excluded.account_id,
			setup_id = excluded.setup_id, score = excluded.score, record = excluded.record`,
		t.ID, t.Instrument, string(t.Direction), t.Timestamp.UTC(), pl, string(t.Result),
		string(t.Category), t.AccountID, t.SetupID, score, string(blob),
	)
	if err != nil {
		return "", err
	}
	return j.rowID(ctx, "trades", t.ID)
}

// SaveAccount upserts an account into the mirror table and returns its row id.
func (j *SQLite) SaveAccount(ctx context.Context, a Account) (string, error) {
	blob, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	_, err = j.db.ExecContext(ctx, `
		INSERT INTO accounts (id, name, initial_balance, category, record)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name, initial_balance = excluded.initial_balance,
			category = excluded.category, record = excluded.record`,
		a.ID, a.Name, a.InitialBalance, string(a.Category), string(blob),
	)
	if err != nil {
		return "", err
	}
	return j.rowID(ctx, "accounts", a.ID)
}

func (j *SQLite) rowID(ctx context.Context, table, id string) (string, error) {
	var rowid int64
	err := j.db.QueryRowContext(ctx, `SELECT rowid FROM `+table+` WHERE id = ?`, id).Scan(&rowid)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(rowid, 10), nil
}

// LoadTrades returns every mirrored trade, oldest first.
func (j *SQLite) LoadTrades(ctx context.Context) ([]TradeRecord, error) {
	return j.queryTrades(ctx, `SELECT record FROM trades ORDER BY timestamp ASC, id ASC`)
}

// LoadAccounts returns every mirrored account.
func (j *SQLite) LoadAccounts(ctx context.Context) ([]Account, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT record FROM accounts ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var a Account
		if err := json.Unmarshal([]byte(blob), &a); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (j *SQLite) queryTrades(ctx context.Context, query string, args ...any) ([]TradeRecord, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TradeRecord
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var t TradeRecord
		if err := json.Unmarshal([]byte(blob), &t); err != nil {
			return nil, fmt.Errorf("decode trade: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
