package pnl

import (
	"testing"
	"time"

	"github.com/rustyeddy/tradedesk/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func at(min int) time.Time { return t0.Add(time.Duration(min) * time.Minute) }

func TestMatchLinearLong(t *testing.T) {
	t.Parallel()

	closed, q := Match(Queue{}, Fill{Instrument: "ETHUSDT", Side: Buy, Price: 2000, Size: 2, Time: at(0)})
	assert.Empty(t, closed)
	require.Equal(t, 1, q.Len())

	closed, q = Match(q, Fill{Instrument: "ETHUSDT", Side: Sell, Price: 2100, Size: 2, Time: at(5)})
	require.Len(t, closed, 1)
	assert.Equal(t, 0, q.Len())

	c := closed[0]
	assert.Equal(t, Long, c.Direction)
	assert.Equal(t, market.Linear, c.Kind)
	assert.Equal(t, ModeLinear, c.Mode)
	assert.Equal(t, "linear", c.Mode.String())
	assert.InDelta(t, 200.0, c.PnL, 1e-9)
	assert.Equal(t, Win, c.Result)
	assert.Equal(t, at(0), c.OpenTime)
	assert.Equal(t, at(5), c.CloseTime)
}

func TestMatchLinearShortLoss(t *testing.T) {
	t.Parallel()

	_, q := Match(Queue{}, Fill{Instrument: "SOLUSDT", Side: Sell, Price: 100, Size: 10, Time: at(0)})
	closed, q := Match(q, Fill{Instrument: "SOLUSDT", Side: Buy, Price: 103, Size: 10, Time: at(1)})

	require.Len(t, closed, 1)
	assert.Equal(t, Short, closed[0].Direction)
	assert.InDelta(t, -30.0, closed[0].PnL, 1e-9)
	assert.Equal(t, Loss, closed[0].Result)
	assert.Equal(t, 0, q.Len())
}

func TestMatchInverse(t *testing.T) {
	t.Parallel()

	_, q := Match(Queue{}, Fill{Instrument: "BTCUSD", Side: Buy, Price: 50000, Size: 50000, Time: at(0)})
	closed, _ := Match(q, Fill{Instrument: "BTCUSD", Side: Sell, Price: 55000, Size: 50000, Time: at(1)})

	require.Len(t, closed, 1)
	assert.Equal(t, market.Inverse, closed[0].Kind)
	assert.Equal(t, ModeInverse, closed[0].Mode)
	// 50000 * (1/50000 - 1/55000) * 55000
	assert.InDelta(t, 5000.0, closed[0].PnL, 0.01)
}

func TestInversePnL(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.1, InversePnL(Long, 50000, 55000, 1), 1e-9)
	assert.InDelta(t, -0.1, InversePnL(Short, 50000, 55000, 1), 1e-9)
	assert.Equal(t, 0.0, InversePnL(Long, 0, 55000, 1))
}

func TestMatchPartialCloseLeavesRemainder(t *testing.T) {
	t.Parallel()

	_, q := Match(Queue{}, Fill{Instrument: "X", Side: Buy, Price: 10, Size: 5, Time: at(0), ID: "a"})
	_, q = Match(q, Fill{Instrument: "X", Side: Buy, Price: 12, Size: 5, Time: at(1), ID: "b"})

	before := q
	closed, q := Match(q, Fill{Instrument: "X", Side: Sell, Price: 15, Size: 7, Time: at(2)})

	require.Len(t, closed, 2)
	assert.InDelta(t, 25.0, closed[0].PnL, 1e-9) // 5 @ 10 -> 15
	assert.InDelta(t, 6.0, closed[1].PnL, 1e-9)  // 2 @ 12 -> 15
	assert.Equal(t, 5.0, closed[0].Size)
	assert.Equal(t, 2.0, closed[1].Size)

	require.Equal(t, 1, q.Len())
	assert.Equal(t, "b", q.Lots()[0].FillID)
	assert.InDelta(t, 3.0, q.OpenSize(), 1e-9)

	// the input queue is untouched
	assert.Equal(t, 2, before.Len())
	assert.InDelta(t, 10.0, before.OpenSize(), 1e-9)
}

func TestMatchOverCloseFlipsPosition(t *testing.T) {
	t.Parallel()

	_, q := Match(Queue{}, Fill{Instrument: "X", Side: Buy, Price: 10, Size: 1, Time: at(0)})
	closed, q := Match(q, Fill{Instrument: "X", Side: Sell, Price: 11, Size: 3, Time: at(1)})

	require.Len(t, closed, 1)
	assert.InDelta(t, 1.0, closed[0].PnL, 1e-9)

	lots := q.Lots()
	require.Len(t, lots, 1)
	assert.Equal(t, Sell, lots[0].Side)
	assert.InDelta(t, 2.0, lots[0].Size, 1e-9)
	assert.Equal(t, 11.0, lots[0].Price)
}

func TestMatchBreakevenBand(t *testing.T) {
	t.Parallel()

	_, q := Match(Queue{}, Fill{Instrument: "X", Side: Buy, Price: 100, Size: 1, Time: at(0)})
	closed, _ := Match(q, Fill{Instrument: "X", Side: Sell, Price: 100.0004, Size: 1, Time: at(1)})

	require.Len(t, closed, 1)
	assert.Equal(t, Breakeven, closed[0].Result)
}

func TestMatcherApplySortsAndSeparatesInstruments(t *testing.T) {
	t.Parallel()

	m := NewMatcher()
	closed := m.Apply([]Fill{
		{Instrument: "ethusdt", Side: Sell, Price: 2100, Size: 1, Time: at(10)},
		{Instrument: "BTCUSDT", Side: Buy, Price: 60000, Size: 0.1, Time: at(1)},
		{Instrument: "ETHUSDT", Side: Buy, Price: 2000, Size: 1, Time: at(0)},
		{Instrument: "ETHUSDT", Side: Buy, Price: 0, Size: 1, Time: at(2)},
	})

	require.Len(t, closed, 1)
	assert.Equal(t, "ETHUSDT", closed[0].Instrument)
	assert.InDelta(t, 100.0, closed[0].PnL, 1e-9)

	assert.Equal(t, []string{"BTCUSDT"}, m.Instruments())
	assert.Len(t, m.Open("btcusdt"), 1)
	assert.Empty(t, m.Open("ETHUSDT"))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Breakeven, Classify(0.0005))
	assert.Equal(t, Breakeven, Classify(-0.001))
	assert.Equal(t, Breakeven, Classify(0))
	assert.Equal(t, Win, Classify(0.0011))
	assert.Equal(t, Loss, Classify(-0.01))
}

func TestParseSide(t *testing.T) {
	t.Parallel()

	s, err := ParseSide("BUY")
	require.NoError(t, err)
	assert.Equal(t, Buy, s)

	s, err = ParseSide("short")
	require.NoError(t, err)
	assert.Equal(t, Sell, s)

	_, err = ParseSide("hold")
	assert.Error(t, err)
}
