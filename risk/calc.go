package risk

import (
	"math"

	"github.com/rustyeddy/tradedesk/pnl"
)

// RR is reward over risk for a plan. It is zero when the stop sits on the entry.
func RR(entry, stop, takeProfit float64) float64 {
	risk := math.Abs(entry - stop)
	reward := math.Abs(takeProfit - entry)
	if risk == 0 {
		return 0
	}
	return reward / risk
}

// PlanRR parses a raw plan and returns its reward to risk ratio, or zero
// when entry, stop or target is missing.
func PlanRR(p pnl.Plan) float64 {
	entry, stop, tp := pnl.ParseAmount(p.Entry), pnl.ParseAmount(p.StopLoss), pnl.ParseAmount(p.TakeProfit)
	if !entry.Positive() || !stop.Positive() || !tp.Positive() {
		return 0
	}
	return RR(entry.Value, stop.Value, tp.Value)
}

// PlannedRisk is what the plan loses, in account currency, if the stop is hit.
// It uses the same mode selection as a logged loss.
func PlannedRisk(p pnl.Plan, dir pnl.Direction, instrument string) (float64, error) {
	out, err := pnl.QuickFromPlan(p, dir, false, instrument)
	if err != nil {
		return 0, err
	}
	return math.Abs(out.PnL), nil
}

// RiskPct is planned risk as a fraction of equity.
func RiskPct(plannedRisk, equity float64) float64 {
	if equity <= 0 {
		return math.Inf(1)
	}
	return plannedRisk / equity
}
