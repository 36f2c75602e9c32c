package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	j, err := NewSQLite(path)
	require.NoError(t, err)

	return j, path
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	j, path := newTestSQLite(t)
	assert.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('kv','trades','accounts')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		assert.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.NoError(t, rows.Err())

	assert.True(t, found["kv"])
	assert.True(t, found["trades"])
	assert.True(t, found["accounts"])
}

func TestSQLiteKeyValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	j, path := newTestSQLite(t)

	v, err := j.Load(ctx, KeyTrades)
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, j.Save(ctx, KeyTrades, []byte(`[1]`)))
	require.NoError(t, j.Save(ctx, KeyTrades, []byte(`[1,2]`)))
	v, err = j.Load(ctx, KeyTrades)
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(v))
	require.NoError(t, j.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()
	v, err = reopened.Load(ctx, KeyTrades)
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(v))
}

func TestSQLiteQuota(t *testing.T) {
	t.Parallel()

	j, _ := newTestSQLite(t)
	defer j.Close()
	j.MaxValueBytes = 4

	err := j.Save(context.Background(), KeyTrades, []byte(strings.Repeat("x", 5)))
	assert.ErrorIs(t, err, ErrQuotaExceeded)
}

func TestSQLiteBackedBook(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	j, _ := newTestSQLite(t)
	defer j.Close()

	b := NewBook(j, WithSyncer(j))
	_, err := b.AddTrade(ctx, trade("A", t0, 42, Crypto))
	require.NoError(t, err)
	b.Wait()

	got, err := b.Trade(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "1", got.SupabaseID)

	mirrored, err := j.LoadTrades(ctx)
	require.NoError(t, err)
	require.Len(t, mirrored, 1)
	assert.Equal(t, 42.0, mirrored[0].PnLValue())

	fresh := NewBook(j)
	fresh.Init(ctx)
	assert.Len(t, fresh.Trades(ctx), 1)
}

func TestSQLiteSaveTradeUpsert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	j, _ := newTestSQLite(t)
	defer j.Close()

	rec := trade("U1", t0, 10, Forex)
	id1, err := j.SaveTrade(ctx, rec)
	require.NoError(t, err)

	rec.Notes = "revised"
	id2, err := j.SaveTrade(ctx, rec)
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	got, err := j.GetTrade(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, "revised", got.Notes)
	assert.True(t, got.Timestamp.Equal(t0))
}

func TestSQLiteAccounts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	j, _ := newTestSQLite(t)
	defer j.Close()

	a := Account{ID: "acc-1", Name: "Binance", InitialBalance: 500, Category: Crypto,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rowID, err := j.SaveAccount(ctx, a)
	require.NoError(t, err)
	assert.NotEmpty(t, rowID)

	got, err := j.LoadAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a, got[0])
}
