package pnl

import (
	"math"
	"strconv"
	"strings"
)

// AmountState separates "left blank" from "typed garbage" from a real number.
type AmountState int

const (
	Absent AmountState = iota
	Invalid
	Valid
)

// Amount is a parsed user-entered number.
type Amount struct {
	State AmountState
	Value float64
	Raw   string
}

// Of wraps an already-known number.
func Of(v float64) Amount {
	return Amount{State: Valid, Value: v, Raw: strconv.FormatFloat(v, 'f', -1, 64)}
}

// ParseAmount parses s. Blank input is Absent; anything that is not a finite
// number is Invalid. Thousands separators are tolerated.
func ParseAmount(s string) Amount {
	raw := s
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return Amount{State: Absent, Raw: raw}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return Amount{State: Invalid, Raw: raw}
	}
	return Amount{State: Valid, Value: v, Raw: raw}
}

// Positive reports whether a is a valid number greater than zero.
func (a Amount) Positive() bool {
	return a.State == Valid && a.Value > 0
}

// ParseLeverage reads "1:N", "Nx" or "N" and returns N. Anything unparsable,
// absent or below 1 yields 1.
func ParseLeverage(s string) float64 {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.LastIndexByte(s, ':'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSpace(strings.TrimSuffix(s, "x"))
	a := ParseAmount(s)
	if a.State != Valid || a.Value < 1 {
		return 1
	}
	return a.Value
}
