package risk

import "fmt"

type Violation struct {
	Code string
	Msg  string
}

// Decision lists every rule a planned trade breaks. Violations are advisory:
// the journal still records trades that break them.
type Decision struct {
	Allowed    bool
	Violations []Violation

	PlannedRiskPct float64
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Evaluate checks intent against p. Zero-valued policy limits are not enforced.
func Evaluate(p Policy, intent Intent, realized PnLSnapshot) Decision {
	d := Decision{Allowed: true}

	d.PlannedRiskPct = RiskPct(intent.PlannedRisk, intent.Balance)
	if p.MaxRiskPct > 0 && d.PlannedRiskPct > p.MaxRiskPct {
		d.add("RISK_TOO_HIGH",
			fmt.Sprintf("planned risk %.2f%% exceeds max %.2f%%",
				100*d.PlannedRiskPct, 100*p.MaxRiskPct))
	}
	if p.MinRR > 0 && intent.RR < p.MinRR {
		d.add("RR_TOO_LOW",
			fmt.Sprintf("RR %.2f below minimum %.2f", intent.RR, p.MinRR))
	}

	if p.MaxDailyLossPct > 0 {
		limit := -p.MaxDailyLossPct * intent.Balance
		if realized.DayRealized <= limit {
			d.add("DAILY_LOSS_LIMIT",
				fmt.Sprintf("day realized %.2f <= limit %.2f", realized.DayRealized, limit))
		}
	}
	if p.MaxWeeklyLossPct > 0 {
		limit := -p.MaxWeeklyLossPct * intent.Balance
		if realized.WeekRealized <= limit {
			d.add("WEEKLY_LOSS_LIMIT",
				fmt.Sprintf("week realized %.2f <= limit %.2f", realized.WeekRealized, limit))
		}
	}

	return d
}
