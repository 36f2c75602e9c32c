package risk

// Policy holds the trader's personal risk rules.
type Policy struct {
	MaxRiskPct       float64 `json:"max_risk_pct" yaml:"max_risk_pct"`               // 0.01
	MinRR            float64 `json:"min_rr" yaml:"min_rr"`                           // 1.5
	MaxDailyLossPct  float64 `json:"max_daily_loss_pct" yaml:"max_daily_loss_pct"`   // 0.03
	MaxWeeklyLossPct float64 `json:"max_weekly_loss_pct" yaml:"max_weekly_loss_pct"` // 0.06
}

// DefaultPolicy is a conservative starting point.
func DefaultPolicy() Policy {
	return Policy{
		MaxRiskPct:       0.01,
		MinRR:            1.5,
		MaxDailyLossPct:  0.03,
		MaxWeeklyLossPct: 0.06,
	}
}

// Intent is a planned trade measured against an account.
type Intent struct {
	PlannedRisk float64
	RR          float64
	Balance     float64
}

// PnLSnapshot is realized P&L over the current day and week.
type PnLSnapshot struct {
	DayRealized  float64
	WeekRealized float64
}
