package market

import (
	"strings"
	"unicode"
)

// InstrumentMeta describes a forex pair the journal knows how to size in lots.
type InstrumentMeta struct {
	Name          string
	BaseCurrency  string
	QuoteCurrency string
	PipLocation   int
}

// StandardLot is the number of base-currency units in one forex lot.
const StandardLot = 100_000.0

func pair(base, quote string) InstrumentMeta {
	pip := -4
	if quote == "JPY" {
		pip = -2
	}
	return InstrumentMeta{
		Name:          base + quote,
		BaseCurrency:  base,
		QuoteCurrency: quote,
		PipLocation:   pip,
	}
}

// Instruments is the closed list of major and cross pairs, keyed by compact code.
var Instruments = func() map[string]InstrumentMeta {
	pairs := []InstrumentMeta{
		pair("EUR", "USD"), pair("GBP", "USD"), pair("AUD", "USD"), pair("NZD", "USD"),
		pair("USD", "JPY"), pair("USD", "CHF"), pair("USD", "CAD"),
		pair("EUR", "GBP"), pair("EUR", "JPY"), pair("EUR", "CHF"), pair("EUR", "AUD"),
		pair("EUR", "CAD"), pair("EUR", "NZD"),
		pair("GBP", "JPY"), pair("GBP", "CHF"), pair("GBP", "AUD"), pair("GBP", "CAD"),
		pair("GBP", "NZD"),
		pair("AUD", "JPY"), pair("AUD", "CHF"), pair("AUD", "CAD"), pair("AUD", "NZD"),
		pair("NZD", "JPY"), pair("NZD", "CHF"), pair("NZD", "CAD"),
		pair("CAD", "JPY"), pair("CAD", "CHF"),
		pair("CHF", "JPY"),
	}
	m := make(map[string]InstrumentMeta, len(pairs))
	for _, p := range pairs {
		m[p.Name] = p
	}
	return m
}()

// NormalizeSymbol uppercases s and trims surrounding whitespace.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// compact keeps only letters, so "eur/usd", "EUR_USD" and "EURUSD" agree.
func compact(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) {
			b.WriteRune(unicode.ToUpper(r))
		}
	}
	return b.String()
}

// Lookup returns the metadata for a forex symbol in any of its common spellings.
func Lookup(symbol string) (InstrumentMeta, bool) {
	meta, ok := Instruments[compact(symbol)]
	return meta, ok
}

// IsForexPair reports whether symbol is one of the known major or cross pairs.
func IsForexPair(symbol string) bool {
	_, ok := Lookup(symbol)
	return ok
}

// IsJPYQuoted reports whether the symbol mentions JPY anywhere.
func IsJPYQuoted(symbol string) bool {
	return strings.Contains(NormalizeSymbol(symbol), "JPY")
}
