package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// GetTrade returns a single mirrored trade by ID.
func (j *SQLite) GetTrade(ctx context.Context, tradeID string) (TradeRecord, error) {
	var blob string
	err := j.db.QueryRowContext(ctx, `SELECT record FROM trades WHERE id = ?`, tradeID).Scan(&blob)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TradeRecord{}, fmt.Errorf("trade %q: %w", tradeID, ErrNotFound)
		}
		return TradeRecord{}, err
	}
	var rec TradeRecord
	if err := json.Unmarshal([]byte(blob), &rec); err != nil {
		return TradeRecord{}, fmt.Errorf("decode trade: %w", err)
	}
	return rec, nil
}

// ListTradesBetween returns mirrored trades whose timestamp is within [start, end).
func (j *SQLite) ListTradesBetween(ctx context.Context, start, end time.Time) ([]TradeRecord, error) {
	return j.queryTrades(ctx, `
		SELECT record FROM trades
		WHERE timestamp >= ? AND timestamp < ?
		ORDER BY timestamp ASC, id ASC`, start.UTC(), end.UTC())
}

// RealizedBetween sums mirrored P&L within [start, end).
func (j *SQLite) RealizedBetween(ctx context.Context, start, end time.Time) (float64, error) {
	var total sql.NullFloat64
	err := j.db.QueryRowContext(ctx, `
		SELECT SUM(pnl) FROM trades
		WHERE timestamp >= ? AND timestamp < ?`, start.UTC(), end.UTC()).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total.Float64, nil
}
