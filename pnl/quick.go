package pnl

import (
	"github.com/rustyeddy/tradedesk/market"
)

// Mode is the formula used to turn a price move into money.
type Mode int

const (
	ModeForexLot Mode = iota + 1
	ModeFuturesLot
	ModeSizedLeverage
	ModeInverse
	// ModeLinear is size times the price move, as for a matched linear fill.
	ModeLinear
)

func (m Mode) String() string {
	switch m {
	case ModeForexLot:
		return "forex-lot"
	case ModeFuturesLot:
		return "futures-lot"
	case ModeSizedLeverage:
		return "sized-leverage"
	case ModeInverse:
		return "inverse"
	case ModeLinear:
		return "linear"
	default:
		return "unknown"
	}
}

// FuturesLotMultiplier is applied per contract when lots are given for a
// non-forex symbol. There is no per-instrument tick value behind it, so
// results in this mode are approximate.
const FuturesLotMultiplier = 100.0

// Plan is the raw trade plan as the trader typed it.
type Plan struct {
	Entry      string `json:"entry"`
	StopLoss   string `json:"sl"`
	TakeProfit string `json:"tp"`
	Size       string `json:"size"`
	Leverage   string `json:"leverage"`
	Lots       string `json:"lots,omitempty"`
}

// Input is a fully parsed quick-log request.
type Input struct {
	Direction  Direction
	Entry      float64
	Exit       float64
	Size       Amount // notional in account currency
	Lots       Amount // standard lots or contracts
	Leverage   string
	Instrument string
}

// Outcome is a computed P&L. PnL is rounded to cents; Raw is not.
type Outcome struct {
	Mode        Mode
	PnL         float64
	Raw         float64
	Leverage    float64
	Approximate bool
}

// ExitFor picks the take-profit on a win and the stop-loss otherwise.
func (p Plan) ExitFor(win bool) string {
	if win {
		return p.TakeProfit
	}
	return p.StopLoss
}

// InputFromPlan parses p into an Input, choosing the exit from the win/loss
// button the trader pressed.
func InputFromPlan(p Plan, dir Direction, win bool, instrument string) (Input, error) {
	entry := ParseAmount(p.Entry)
	if !entry.Positive() {
		return Input{}, &InputError{Field: "entry", Err: ErrInvalidEntry}
	}
	exitField := "sl"
	if win {
		exitField = "tp"
	}
	exit := ParseAmount(p.ExitFor(win))
	if !exit.Positive() {
		return Input{}, &InputError{Field: exitField, Err: ErrInvalidExit}
	}
	return Input{
		Direction:  dir,
		Entry:      entry.Value,
		Exit:       exit.Value,
		Size:       ParseAmount(p.Size),
		Lots:       ParseAmount(p.Lots),
		Leverage:   p.Leverage,
		Instrument: instrument,
	}, nil
}

// Quick computes P&L for a manually logged win or loss. Modes are tried in
// order: forex lots, futures lots, then notional size with leverage.
func Quick(in Input) (Outcome, error) {
	if !in.Direction.Valid() {
		return Outcome{}, &InputError{Field: "direction", Err: ErrMissingDirection}
	}
	if !(in.Entry > 0) {
		return Outcome{}, &InputError{Field: "entry", Err: ErrInvalidEntry}
	}
	if !(in.Exit > 0) {
		return Outcome{}, &InputError{Field: "exit", Err: ErrInvalidExit}
	}
	if in.Lots.State == Invalid {
		return Outcome{}, &InputError{Field: "lots", Err: ErrInvalidAmount}
	}
	if in.Size.State == Invalid {
		return Outcome{}, &InputError{Field: "size", Err: ErrInvalidAmount}
	}

	diff := priceDiff(in.Direction, in.Entry, in.Exit)
	out := Outcome{Leverage: 1}

	switch {
	case in.Lots.Positive() && market.IsForexPair(in.Instrument):
		out.Mode = ModeForexLot
		out.Raw = diff * in.Lots.Value * market.StandardLot
		if market.IsJPYQuoted(in.Instrument) {
			out.Raw /= in.Exit
		}
	case in.Lots.Positive():
		out.Mode = ModeFuturesLot
		out.Approximate = true
		out.Raw = diff * in.Lots.Value * FuturesLotMultiplier
	case in.Size.Positive():
		out.Mode = ModeSizedLeverage
		out.Leverage = ParseLeverage(in.Leverage)
		out.Raw = diff / in.Entry * in.Size.Value * out.Leverage
	default:
		return Outcome{}, &InputError{Field: "size", Err: ErrNoMode}
	}

	out.PnL = Round2(out.Raw)
	return out, nil
}

// QuickFromPlan is InputFromPlan followed by Quick.
func QuickFromPlan(p Plan, dir Direction, win bool, instrument string) (Outcome, error) {
	if !dir.Valid() {
		return Outcome{}, &InputError{Field: "direction", Err: ErrMissingDirection}
	}
	in, err := InputFromPlan(p, dir, win, instrument)
	if err != nil {
		return Outcome{}, err
	}
	return Quick(in)
}

func priceDiff(dir Direction, entry, exit float64) float64 {
	if dir == Long {
		return exit - entry
	}
	return entry - exit
}
