package journal

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradedesk/checklist"
	"github.com/rustyeddy/tradedesk/pkg/id"
	"github.com/rustyeddy/tradedesk/pnl"
)

type accountMap map[string]Account

func (m accountMap) Account(id string) (Account, bool) {
	a, ok := m[id]
	return a, ok
}

func fixedAssembler(at time.Time, accounts AccountLookup) *Assembler {
	return &Assembler{
		Now:      func() time.Time { return at },
		IDs:      id.NewSeeded(1),
		Accounts: accounts,
		Location: time.UTC,
	}
}

func TestAssemble(t *testing.T) {
	t.Parallel()

	at := time.Date(2024, 5, 6, 14, 30, 15, 0, time.FixedZone("EST", -5*3600))
	a := fixedAssembler(at, nil)
	v := 123.456

	rec, err := a.Assemble(AssembleInput{
		Instrument:   " eur/usd ",
		Direction:    pnl.Long,
		Plan:         pnl.Plan{Entry: "100", StopLoss: "95", TakeProfit: "110", Size: "1000"},
		PnL:          &v,
		Result:       pnl.Win,
		Link:         "forex",
		IdeaNotes:    "breakout above range",
		JournalNotes: "  ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "EUR/USD", rec.Instrument)
	assert.Equal(t, at.UTC(), rec.Timestamp)
	assert.Equal(t, "2024-05-06 19:30:15", rec.Time)
	assert.InDelta(t, 2.0, rec.Plan.RiskReward, 1e-9)
	require.NotNil(t, rec.PnL)
	assert.Equal(t, 123.46, *rec.PnL)
	assert.Equal(t, Forex, rec.Category)
	assert.Empty(t, rec.AccountID)
	assert.Equal(t, "breakout above range", rec.Notes)

	ts, err := id.Time(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, at.UTC().Truncate(time.Millisecond), ts.UTC())
}

func TestAssembleMissingInstrument(t *testing.T) {
	t.Parallel()

	a := fixedAssembler(time.Now(), nil)
	_, err := a.Assemble(AssembleInput{Instrument: "  ", Direction: pnl.Long})
	assert.ErrorIs(t, err, ErrMissingInstrument)
}

func TestAssembleUniqueIDsSameInstant(t *testing.T) {
	t.Parallel()

	a := fixedAssembler(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), nil)
	seen := map[string]bool{}
	prev := ""
	for i := 0; i < 200; i++ {
		rec, err := a.Assemble(AssembleInput{Instrument: "BTCUSDT"})
		require.NoError(t, err)
		assert.False(t, seen[rec.ID], "duplicate id %s", rec.ID)
		assert.Greater(t, rec.ID, prev)
		seen[rec.ID] = true
		prev = rec.ID
	}
}

func TestAssembleLinkage(t *testing.T) {
	t.Parallel()

	accounts := accountMap{
		"acc-1": {ID: "acc-1", Name: "Binance", Category: Crypto},
	}

	tests := []struct {
		name        string
		link        string
		wantCat     Category
		wantAccount string
	}{
		{"category", "stocks", Stocks, ""},
		{"category_mixed_case", "Futures", Futures, ""},
		{"legacy_account", "acc-1", Crypto, "acc-1"},
		{"unknown_account", "acc-9", "", "acc-9"},
		{"none", "", "", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := fixedAssembler(time.Now(), accounts)
			rec, err := a.Assemble(AssembleInput{Instrument: "BTCUSDT", Link: tt.link})
			require.NoError(t, err)
			assert.Equal(t, tt.wantCat, rec.Category)
			assert.Equal(t, tt.wantAccount, rec.AccountID)
		})
	}
}

func TestQuickLog(t *testing.T) {
	t.Parallel()

	a := fixedAssembler(time.Date(2024, 2, 2, 9, 0, 0, 0, time.UTC), nil)
	snap, _ := checklist.Evaluate(checklist.DefaultConfig(), checklist.State{})
	plan := pnl.Plan{Entry: "100", StopLoss: "95", TakeProfit: "110", Size: "1000", Leverage: "10x"}

	rec, out, err := a.Quick(QuickInput{
		Instrument: "BTCUSDT",
		Direction:  pnl.Long,
		Plan:       plan,
		Win:        true,
		Checklist:  &snap,
		Link:       "crypto",
	})
	require.NoError(t, err)
	assert.Equal(t, pnl.ModeSizedLeverage, out.Mode)
	require.NotNil(t, rec.PnL)
	assert.Equal(t, 1000.0, *rec.PnL)
	assert.Equal(t, pnl.Win, rec.Result)
	assert.Equal(t, SourceQuick, rec.Source)
	score, ok := rec.Score()
	assert.True(t, ok)
	assert.Equal(t, 0, score)

	rec, _, err = a.Quick(QuickInput{Instrument: "BTCUSDT", Direction: pnl.Long, Plan: plan})
	require.NoError(t, err)
	assert.Equal(t, -500.0, *rec.PnL)
	assert.Equal(t, pnl.Loss, rec.Result)
}

func TestQuickLogRejectsBadInput(t *testing.T) {
	t.Parallel()

	a := fixedAssembler(time.Now(), nil)

	_, _, err := a.Quick(QuickInput{Instrument: "BTCUSDT", Direction: pnl.Long,
		Plan: pnl.Plan{Entry: "abc", TakeProfit: "110", Size: "100"}, Win: true})
	var ie *pnl.InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, "entry", ie.Field)
	assert.ErrorIs(t, err, pnl.ErrInvalidEntry)

	_, _, err = a.Quick(QuickInput{Instrument: "BTCUSDT",
		Plan: pnl.Plan{Entry: "100", TakeProfit: "110", Size: "100"}, Win: true})
	assert.ErrorIs(t, err, pnl.ErrMissingDirection)

	_, _, err = a.Quick(QuickInput{Instrument: "BTCUSDT", Direction: pnl.Short,
		Plan: pnl.Plan{Entry: "100", TakeProfit: "90"}, Win: true})
	assert.ErrorIs(t, err, pnl.ErrNoMode)
}

func TestFromClosed(t *testing.T) {
	t.Parallel()

	closeAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	a := fixedAssembler(time.Now(), nil)
	rec, err := a.FromClosed(pnl.Closed{
		Instrument: "BTCUSDT",
		Direction:  pnl.Long,
		Entry:      100,
		Exit:       110,
		Size:       2,
		CloseTime:  closeAt,
		PnL:        20,
		Result:     pnl.Win,
	}, "crypto")
	require.NoError(t, err)

	assert.Equal(t, closeAt, rec.Timestamp)
	assert.Equal(t, "100", rec.Plan.Entry)
	assert.Equal(t, "2", rec.Plan.Size)
	assert.Equal(t, 20.0, *rec.PnL)
	assert.Equal(t, Crypto, rec.Category)
	assert.Equal(t, SourceImport, rec.Source)
	assert.Contains(t, rec.Notes, "Exit 110")
}

func TestJoinNotes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", JoinNotes())
	assert.Equal(t, "a", JoinNotes("", "a", " "))
	assert.Equal(t, "idea\n\njournal", JoinNotes(" idea ", "journal"))
}
