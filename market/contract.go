package market

import "strings"

// ContractKind tells how a derivative is margined and settled.
type ContractKind int

const (
	Linear ContractKind = iota
	Inverse
)

func (k ContractKind) String() string {
	if k == Inverse {
		return "inverse"
	}
	return "linear"
}

var stableQuotes = []string{"USDT", "USDC", "BUSD"}

// IsInverseContract guesses from the symbol name whether the contract is
// coin-margined. Stablecoin quotes are tested before the bare USD check since
// "USDT" contains "USD".
func IsInverseContract(symbol string) bool {
	s := NormalizeSymbol(symbol)
	for _, q := range stableQuotes {
		if strings.Contains(s, q) {
			return false
		}
	}
	return strings.Contains(s, "USD") || strings.Contains(s, "XBT")
}

// KindOf classifies symbol as Linear or Inverse.
func KindOf(symbol string) ContractKind {
	if IsInverseContract(symbol) {
		return Inverse
	}
	return Linear
}
