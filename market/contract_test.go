package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsInverseContract(t *testing.T) {
	t.Parallel()

	tests := []struct {
		symbol string
		want   bool
	}{
		{"BTCUSDT", false},
		{"BTCUSD", true},
		{"XBTUSD", true},
		{"ETHUSDC", false},
		{"ETHBUSD", false},
		{"btcusd", true},
		{"XBTEUR", true},
		{"BTC-PERP", false},
		{"AAPL", false},
		{"", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.symbol, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsInverseContract(tt.symbol))
		})
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Inverse, KindOf("BTCUSD"))
	assert.Equal(t, Linear, KindOf("BTCUSDT"))
	assert.Equal(t, "inverse", Inverse.String())
	assert.Equal(t, "linear", Linear.String())
}
