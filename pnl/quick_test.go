package pnl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuick(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       Input
		wantPnL  float64
		wantMode Mode
	}{
		{
			name: "sized_long",
			in: Input{Direction: Long, Entry: 100, Exit: 110, Size: Of(1000), Leverage: "10x",
				Instrument: "BTCUSDT"},
			wantPnL:  1000,
			wantMode: ModeSizedLeverage,
		},
		{
			name: "sized_short",
			in: Input{Direction: Short, Entry: 100, Exit: 110, Size: Of(1000), Leverage: "10x",
				Instrument: "BTCUSDT"},
			wantPnL:  -1000,
			wantMode: ModeSizedLeverage,
		},
		{
			name: "sized_no_leverage",
			in: Input{Direction: Long, Entry: 200, Exit: 190, Size: Of(500),
				Instrument: "AAPL"},
			wantPnL:  -25,
			wantMode: ModeSizedLeverage,
		},
		{
			name: "forex_lot_eurusd",
			in: Input{Direction: Long, Entry: 1.1000, Exit: 1.1050, Lots: Of(1),
				Instrument: "EURUSD"},
			wantPnL:  500,
			wantMode: ModeForexLot,
		},
		{
			name: "forex_lot_short_slash",
			in: Input{Direction: Short, Entry: 1.2500, Exit: 1.2480, Lots: Of(0.5),
				Instrument: "GBP/USD"},
			wantPnL:  100,
			wantMode: ModeForexLot,
		},
		{
			name: "forex_lot_jpy",
			in: Input{Direction: Long, Entry: 110.00, Exit: 110.50, Lots: Of(1),
				Instrument: "USDJPY"},
			wantPnL:  452.49,
			wantMode: ModeForexLot,
		},
		{
			name: "lots_win_over_size",
			in: Input{Direction: Long, Entry: 1.1000, Exit: 1.1050, Lots: Of(1), Size: Of(1000),
				Leverage: "1:100", Instrument: "EURUSD"},
			wantPnL:  500,
			wantMode: ModeForexLot,
		},
		{
			name: "futures_lot",
			in: Input{Direction: Long, Entry: 4500, Exit: 4510, Lots: Of(2),
				Instrument: "ES"},
			wantPnL:  2000,
			wantMode: ModeFuturesLot,
		},
		{
			name: "zero_lots_falls_through_to_size",
			in: Input{Direction: Long, Entry: 100, Exit: 105, Lots: Of(0), Size: Of(100),
				Leverage: "2", Instrument: "EURUSD"},
			wantPnL:  10,
			wantMode: ModeSizedLeverage,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Quick(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMode, got.Mode)
			assert.InDelta(t, tt.wantPnL, got.PnL, 1e-9)
			assert.Equal(t, tt.wantMode == ModeFuturesLot, got.Approximate)
		})
	}
}

func TestQuickErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    Input
		field string
		err   error
	}{
		{"no_direction", Input{Entry: 1, Exit: 2, Size: Of(1)}, "direction", ErrMissingDirection},
		{"zero_entry", Input{Direction: Long, Exit: 2, Size: Of(1)}, "entry", ErrInvalidEntry},
		{"negative_exit", Input{Direction: Long, Entry: 1, Exit: -2, Size: Of(1)}, "exit", ErrInvalidExit},
		{"no_mode", Input{Direction: Long, Entry: 1, Exit: 2}, "size", ErrNoMode},
		{"zero_size", Input{Direction: Long, Entry: 1, Exit: 2, Size: Of(0)}, "size", ErrNoMode},
		{"bad_lots", Input{Direction: Long, Entry: 1, Exit: 2, Lots: ParseAmount("abc")}, "lots", ErrInvalidAmount},
		{"bad_size", Input{Direction: Long, Entry: 1, Exit: 2, Size: ParseAmount("1..2")}, "size", ErrInvalidAmount},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Quick(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.err)

			var ie *InputError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tt.field, ie.Field)
		})
	}
}

func TestQuickFromPlan(t *testing.T) {
	t.Parallel()

	plan := Plan{Entry: "100", StopLoss: "95", TakeProfit: "110", Size: "1000", Leverage: "1:5"}

	win, err := QuickFromPlan(plan, Long, true, "ETHUSDT")
	require.NoError(t, err)
	assert.InDelta(t, 500.0, win.PnL, 1e-9)
	assert.Equal(t, 5.0, win.Leverage)

	loss, err := QuickFromPlan(plan, Long, false, "ETHUSDT")
	require.NoError(t, err)
	assert.InDelta(t, -250.0, loss.PnL, 1e-9)

	_, err = QuickFromPlan(Plan{Entry: "100", Size: "10"}, Long, true, "ETHUSDT")
	var ie *InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "tp", ie.Field)

	_, err = QuickFromPlan(Plan{Entry: "", TakeProfit: "1"}, Short, true, "X")
	assert.ErrorIs(t, err, ErrInvalidEntry)

	_, err = QuickFromPlan(plan, "", true, "X")
	assert.ErrorIs(t, err, ErrMissingDirection)
}

func TestParseLeverage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want float64
	}{
		{"1:100", 100},
		{"10x", 10},
		{"10X", 10},
		{" 25 ", 25},
		{"2.5x", 2.5},
		{"", 1},
		{"abc", 1},
		{"0.5", 1},
		{"1:", 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLeverage(tt.in), "input %q", tt.in)
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Absent, ParseAmount("  ").State)
	assert.Equal(t, Invalid, ParseAmount("1.2.3").State)
	assert.Equal(t, Invalid, ParseAmount("NaN").State)

	zero := ParseAmount("0")
	assert.Equal(t, Valid, zero.State)
	assert.False(t, zero.Positive())

	big := ParseAmount("1,250.5")
	assert.Equal(t, Valid, big.State)
	assert.Equal(t, 1250.5, big.Value)
}
