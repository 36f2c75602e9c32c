package risk

import (
	"math"
	"testing"

	"github.com/rustyeddy/tradedesk/pnl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRR(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.0, RR(100, 95, 110), 1e-9)
	assert.InDelta(t, 2.0, RR(100, 105, 90), 1e-9)
	assert.Equal(t, 0.0, RR(100, 100, 110))
}

func TestPlanRR(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 3.0, PlanRR(pnl.Plan{Entry: "1.1000", StopLoss: "1.0950", TakeProfit: "1.1150"}), 1e-9)
	assert.Equal(t, 0.0, PlanRR(pnl.Plan{Entry: "1.1", StopLoss: "1.09"}))
}

func TestPlannedRisk(t *testing.T) {
	t.Parallel()

	risk, err := PlannedRisk(pnl.Plan{Entry: "100", StopLoss: "95", Size: "1000", Leverage: "2x"}, pnl.Long, "ETHUSDT")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, risk, 1e-9)

	_, err = PlannedRisk(pnl.Plan{Entry: "100"}, pnl.Long, "ETHUSDT")
	assert.ErrorIs(t, err, pnl.ErrInvalidExit)
}

func TestRiskPct(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.01, RiskPct(100, 10000), 1e-12)
	assert.True(t, math.IsInf(RiskPct(1, 0), 1))
}

func TestEvaluate(t *testing.T) {
	t.Parallel()

	p := DefaultPolicy()

	ok := Evaluate(p, Intent{PlannedRisk: 50, RR: 2, Balance: 10000}, PnLSnapshot{})
	assert.True(t, ok.Allowed)
	assert.Empty(t, ok.Violations)
	assert.InDelta(t, 0.005, ok.PlannedRiskPct, 1e-12)

	bad := Evaluate(p, Intent{PlannedRisk: 500, RR: 1, Balance: 10000},
		PnLSnapshot{DayRealized: -300, WeekRealized: -600})
	assert.False(t, bad.Allowed)

	codes := map[string]bool{}
	for _, v := range bad.Violations {
		codes[v.Code] = true
	}
	assert.True(t, codes["RISK_TOO_HIGH"])
	assert.True(t, codes["RR_TOO_LOW"])
	assert.True(t, codes["DAILY_LOSS_LIMIT"])
	assert.True(t, codes["WEEKLY_LOSS_LIMIT"])

	none := Evaluate(Policy{}, Intent{PlannedRisk: 500, Balance: 100}, PnLSnapshot{DayRealized: -1000})
	assert.True(t, none.Allowed)
}
