// Package pnl computes realized profit and loss for closed positions, both for
// quick win/loss logging from a trade plan and for FIFO matching of imported fills.
package pnl

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Direction is long or short. The zero value means "not set" and encodes as null.
type Direction string

const (
	Long  Direction = "long"
	Short Direction = "short"
)

// ParseDirection accepts long/short and the buy/sell aliases.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "long", "buy", "l":
		return Long, nil
	case "short", "sell", "s":
		return Short, nil
	case "":
		return "", &InputError{Field: "direction", Err: ErrMissingDirection}
	default:
		return "", &InputError{Field: "direction", Err: fmt.Errorf("%w: %q", ErrMissingDirection, s)}
	}
}

func (d Direction) Valid() bool { return d == Long || d == Short }

func (d Direction) MarshalJSON() ([]byte, error) {
	if d == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

func (d *Direction) UnmarshalJSON(b []byte) error {
	return unmarshalNullable(b, (*string)(d))
}

// Result classifies a closed trade. The zero value encodes as null.
type Result string

const (
	Win       Result = "win"
	Loss      Result = "loss"
	Breakeven Result = "breakeven"
)

func (r Result) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

func (r *Result) UnmarshalJSON(b []byte) error {
	return unmarshalNullable(b, (*string)(r))
}

func unmarshalNullable(b []byte, dst *string) error {
	if string(b) == "null" {
		*dst = ""
		return nil
	}
	return json.Unmarshal(b, dst)
}

// BreakevenBand is the dead zone around zero for computed results.
const BreakevenBand = 0.001

// Classify derives a result from a computed P&L. Values within
// BreakevenBand of zero are breakeven.
func Classify(pnl float64) Result {
	switch {
	case pnl > BreakevenBand:
		return Win
	case pnl < -BreakevenBand:
		return Loss
	default:
		return Breakeven
	}
}

// Round2 rounds to cents, the precision trade records are stored with.
func Round2(x float64) float64 {
	return math.Round(x*100) / 100
}
