package stats

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradedesk/checklist"
	"github.com/rustyeddy/tradedesk/journal"
	"github.com/rustyeddy/tradedesk/pkg/id"
	"github.com/rustyeddy/tradedesk/pnl"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func seq(pnls ...float64) []Trade {
	out := make([]Trade, len(pnls))
	for i, p := range pnls {
		out[i] = Trade{Time: base.Add(time.Duration(i) * time.Hour), PnL: p, HasPnL: true, Result: pnl.Classify(p)}
	}
	return out
}

func TestWinRate(t *testing.T) {
	t.Parallel()

	assert.Zero(t, WinRate(nil))
	assert.Equal(t, 50.0, WinRate(seq(10, -5)))
	assert.InDelta(t, 33.333, WinRate(seq(10, -5, 0)), 0.001)
}

func TestProfitFactor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []Trade
		want float64
	}{
		{"none", nil, 0},
		{"only_breakeven", seq(0, 0.0005), 0},
		{"wins_only", seq(10, 5), math.Inf(1)},
		{"losses_only", seq(-10), 0},
		{"mixed", seq(30, -10, -5), 2},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ProfitFactor(tt.in))
		})
	}
}

func TestExpectancyUsesFractions(t *testing.T) {
	t.Parallel()

	// 2 wins averaging 20, 1 loss of 10, 1 breakeven: 0.5*20 - 0.25*10 = 7.5
	trades := seq(10, 30, -10, 0)
	assert.InDelta(t, 7.5, Expectancy(trades), 1e-9)
	assert.InDelta(t, 2.0, RMultiple(trades), 1e-9)
	assert.Zero(t, Expectancy(nil))
	assert.Zero(t, RMultiple(seq(5)))
}

func TestStreaks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []Trade
		want Streaks
	}{
		{"empty", nil, Streaks{}},
		{"win_run", seq(1, 2, 3), Streaks{Current: Streak{pnl.Win, 3}, LongestWin: 3}},
		{
			"loss_breaks_wins",
			seq(1, 2, -1, -1),
			Streaks{Current: Streak{pnl.Loss, 2}, LongestWin: 2, LongestLoss: 2},
		},
		{
			"breakeven_resets",
			seq(1, 1, 0, 1),
			Streaks{Current: Streak{pnl.Win, 1}, LongestWin: 2},
		},
		{
			"ends_on_breakeven",
			seq(-1, -1, -1, 0),
			Streaks{LongestLoss: 3},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ComputeStreaks(tt.in))
		})
	}
}

func TestStreaksNullResultResets(t *testing.T) {
	t.Parallel()

	trades := seq(1, 1)
	trades = append(append(trades, Trade{Time: base.Add(5 * time.Hour)}), seq(1)...)
	s := ComputeStreaks(trades)
	assert.Equal(t, Streak{pnl.Win, 1}, s.Current)
	assert.Equal(t, 2, s.LongestWin)
}

func TestDrawdown(t *testing.T) {
	t.Parallel()

	// balances 1000 -> 1100 -> 900 -> 950
	dd := ComputeDrawdown(seq(100, -200, 50), 1000)
	assert.InDelta(t, 18.18, dd.MaxPct, 0.01)
	assert.InDelta(t, 13.64, dd.CurrentPct, 0.01)

	tests := []struct {
		name    string
		in      []Trade
		start   float64
		wantMax float64
	}{
		{"no_trades", nil, 1000, 0},
		{"only_up", seq(10, 10), 100, 0},
		{"wiped_past_zero_clamped", seq(-300), 100, 100},
		{"zero_start_negative", seq(-5), 0, 100},
		{"zero_start_positive", seq(5, -2), 0, 40},
		{"zero_start_flat", seq(0), 0, 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.wantMax, ComputeDrawdown(tt.in, tt.start).MaxPct, 1e-9)
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	s := Summarize(seq(100, -200, 50, 0), 1000)
	assert.Equal(t, 4, s.Trades)
	assert.Equal(t, 2, s.Wins)
	assert.Equal(t, 1, s.Losses)
	assert.Equal(t, 1, s.Breakeven)
	assert.Equal(t, 50.0, s.WinRate)
	assert.InDelta(t, 0.75, s.ProfitFactor, 1e-9)
	assert.InDelta(t, -50.0, s.NetPnL, 1e-9)
	assert.InDelta(t, 950.0, s.EndBalance, 1e-9)
	assert.Equal(t, base, s.Start)
	assert.Equal(t, base.Add(3*time.Hour), s.End)

	var buf bytes.Buffer
	PrintSummary(&buf, "All trades", s)
	out := buf.String()
	assert.Contains(t, out, "Win Rate:      50.00%")
	assert.Contains(t, out, "Max Drawdown:  18.18%")
	assert.Contains(t, out, "Current:       none")

	buf.Reset()
	PrintSummary(&buf, "Empty", Summarize(nil, 0))
	assert.Contains(t, buf.String(), "No trades.")

	buf.Reset()
	PrintSummary(&buf, "Wins", Summarize(seq(5), 0))
	assert.Contains(t, buf.String(), "Profit Factor: inf")
}

func TestFromRecordsRoundTripsBreakevenBand(t *testing.T) {
	t.Parallel()

	asm := &journal.Assembler{
		Now:      func() time.Time { return base },
		IDs:      id.NewSeeded(7),
		Location: time.UTC,
	}
	snap, _ := checklist.Evaluate(checklist.DefaultConfig(), checklist.State{})

	v := 0.0005
	rec, err := asm.Assemble(journal.AssembleInput{
		Instrument: "BTCUSDT",
		Direction:  pnl.Long,
		PnL:        &v,
		Result:     pnl.Classify(v),
		Checklist:  &snap,
	})
	require.NoError(t, err)
	assert.Equal(t, pnl.Breakeven, rec.Result)

	trades := FromRecords([]journal.TradeRecord{rec})
	require.Len(t, trades, 1)
	assert.Zero(t, WinRate(trades))
	assert.Zero(t, ProfitFactor(trades))
}

func TestFromRecordsSortsAndKeepsMissingPnL(t *testing.T) {
	t.Parallel()

	p := 5.0
	recs := []journal.TradeRecord{
		{ID: "b", Timestamp: base.Add(time.Hour), PnL: &p, Result: pnl.Win},
		{ID: "a", Timestamp: base},
	}
	trades := FromRecords(recs)
	require.Len(t, trades, 2)
	assert.False(t, trades[0].HasPnL)
	assert.True(t, trades[1].HasPnL)
	assert.Equal(t, []float64{5}, PnLs(trades))
}
