package journal

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradedesk/pnl"
)

var csvHeader = []string{
	"id", "time", "instrument", "direction", "category", "account_id",
	"entry", "sl", "tp", "size", "leverage", "pnl", "result", "score", "notes",
}

// WriteCSV exports trades with one header row. Missing P&L and score are left blank.
func WriteCSV(w io.Writer, trades []TradeRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range trades {
		pl := ""
		if t.PnL != nil {
			pl = f(*t.PnL)
		}
		score := ""
		if s, ok := t.Score(); ok {
			score = strconv.Itoa(s)
		}
		if err := cw.Write([]string{
			t.ID,
			t.Timestamp.UTC().Format(time.RFC3339),
			t.Instrument,
			string(t.Direction),
			string(t.Category),
			t.AccountID,
			t.Plan.Entry,
			t.Plan.StopLoss,
			t.Plan.TakeProfit,
			t.Plan.Size,
			t.Plan.Leverage,
			pl,
			string(t.Result),
			score,
			t.Notes,
		}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadFillsCSV reads execution fills. The header must name at least time,
// instrument, side, price and size; an id column is optional. Times are
// RFC3339 or DisplayLayout in UTC.
func ReadFillsCSV(r io.Reader) ([]pnl.Fill, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range []string{"time", "instrument", "side", "price", "size"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("fills csv: missing column %q", name)
		}
	}
	get := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var fills []pnl.Fill
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		ts, err := parseFillTime(get(rec, "time"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		side, err := pnl.ParseSide(get(rec, "side"))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		price := pnl.ParseAmount(get(rec, "price"))
		size := pnl.ParseAmount(get(rec, "size"))
		if !price.Positive() || !size.Positive() {
			return nil, fmt.Errorf("line %d: price and size must be positive numbers", line)
		}
		fills = append(fills, pnl.Fill{
			ID:         get(rec, "id"),
			Instrument: get(rec, "instrument"),
			Side:       side,
			Price:      price.Value,
			Size:       size.Value,
			Time:       ts,
		})
	}
	return fills, nil
}

func parseFillTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation(DisplayLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad time %q", s)
	}
	return t, nil
}

// ImportResult reports what an import did.
type ImportResult struct {
	Closed []TradeRecord
	Open   map[string]float64 // instrument -> open size, negative when short
}

// Import FIFO-matches fills, assembles one record per closed round trip and
// saves them in one write.
func Import(ctx context.Context, book *Book, asm *Assembler, fills []pnl.Fill, link string) (ImportResult, error) {
	m := pnl.NewMatcher()
	closed := m.Apply(fills)

	res := ImportResult{Open: make(map[string]float64)}
	for _, c := range closed {
		rec, err := asm.FromClosed(c, link)
		if err != nil {
			return ImportResult{}, err
		}
		res.Closed = append(res.Closed, rec)
	}
	for _, inst := range m.Instruments() {
		var open float64
		for _, l := range m.Open(inst) {
			if l.Side == pnl.Sell {
				open -= l.Size
			} else {
				open += l.Size
			}
		}
		if open != 0 {
			res.Open[inst] = open
		}
	}
	if err := book.AddTrades(ctx, res.Closed); err != nil {
		return ImportResult{}, err
	}
	return res, nil
}
