package risk

import (
	"math"

	"github.com/rustyeddy/tradedesk/market"
)

// Inputs describes a planned forex entry to be sized by risk.
type Inputs struct {
	Equity         float64
	RiskPct        float64 // 0.005
	EntryPrice     float64
	StopPrice      float64
	PipLocation    int
	QuoteToAccount float64
}

type Result struct {
	Units      float64
	Lots       float64
	StopPips   float64
	RiskAmount float64
}

// PipSize returns the price increment of one pip at the given location.
func PipSize(loc int) float64 {
	return math.Pow(10, float64(loc))
}

// Calculate sizes a forex position so that hitting the stop loses
// Equity*RiskPct. Lots are rounded down to the nearest micro lot.
func Calculate(in Inputs) Result {
	pip := PipSize(in.PipLocation)
	stopPips := math.Abs(in.EntryPrice-in.StopPrice) / pip
	riskAmt := in.Equity * in.RiskPct

	res := Result{StopPips: stopPips, RiskAmount: riskAmt}
	pipValuePerUnit := pip * in.QuoteToAccount
	if stopPips == 0 || pipValuePerUnit == 0 {
		return res
	}

	units := riskAmt / (stopPips * pipValuePerUnit)
	res.Units = math.Floor(units)
	res.Lots = math.Floor(units/market.StandardLot*100) / 100
	return res
}

// QuoteToAccount returns the conversion rate from a pair's quote currency to
// an account currency, using price when the account currency is the base.
// Cross conversions are not supported and return 0.
func QuoteToAccount(meta market.InstrumentMeta, accountCurrency string, price float64) float64 {
	switch {
	case meta.QuoteCurrency == accountCurrency:
		return 1
	case meta.BaseCurrency == accountCurrency && price > 0:
		return 1 / price
	default:
		return 0
	}
}
