package pnl

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rustyeddy/tradedesk/market"
)

// Side is the side of an executed order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// ParseSide accepts buy/sell and long/short spellings.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy", "b", "long":
		return Buy, nil
	case "sell", "s", "short":
		return Sell, nil
	default:
		return "", fmt.Errorf("unknown order side %q", s)
	}
}

// Fill is one executed order from a broker export.
type Fill struct {
	ID         string
	Instrument string
	Side       Side
	Price      float64
	Size       float64
	Time       time.Time
}

// Lot is an open position fragment waiting to be closed.
type Lot struct {
	Side   Side
	Price  float64
	Size   float64
	Time   time.Time
	FillID string
}

// Closed is a realized round trip produced by matching.
type Closed struct {
	Instrument string
	Direction  Direction
	Entry      float64
	Exit       float64
	Size       float64
	OpenTime   time.Time
	CloseTime  time.Time
	Kind       market.ContractKind
	Mode       Mode
	PnL        float64
	Result     Result
}

// sizeEpsilon absorbs float residue left over from partial closes.
const sizeEpsilon = 1e-12

// Queue holds the open lots for one instrument, oldest first. All lots in a
// queue share a side. A Queue value is never modified by Match.
type Queue struct {
	lots []Lot
}

// Len is the number of open lots.
func (q Queue) Len() int { return len(q.lots) }

// Lots returns a copy of the open lots.
func (q Queue) Lots() []Lot {
	return append([]Lot(nil), q.lots...)
}

// OpenSize is the total size still open.
func (q Queue) OpenSize() float64 {
	total := 0.0
	for _, l := range q.lots {
		total += l.Size
	}
	return total
}

// Match nets fill against the oldest opposite-side lots and returns the
// realized trades plus the queue that results. Any size left over on the
// fill opens a new lot.
func Match(q Queue, f Fill) ([]Closed, Queue) {
	// Capped so that appends never write into q's backing array.
	lots := q.lots[:len(q.lots):len(q.lots)]
	remaining := f.Size
	var closed []Closed

	for remaining > sizeEpsilon && len(lots) > 0 && lots[0].Side != f.Side {
		lot := lots[0]
		size := lot.Size
		if remaining < size {
			size = remaining
		}
		closed = append(closed, closeLot(f.Instrument, lot, f, size))
		remaining -= size

		if left := lot.Size - size; left > sizeEpsilon {
			rest := make([]Lot, len(lots))
			copy(rest, lots)
			rest[0].Size = left
			lots = rest
		} else {
			lots = lots[1:]
		}
	}

	if remaining > sizeEpsilon {
		lots = append(lots[:len(lots):len(lots)], Lot{
			Side:   f.Side,
			Price:  f.Price,
			Size:   remaining,
			Time:   f.Time,
			FillID: f.ID,
		})
	}
	return closed, Queue{lots: lots}
}

func closeLot(instrument string, lot Lot, f Fill, size float64) Closed {
	dir := Long
	if lot.Side == Sell {
		dir = Short
	}
	kind := market.KindOf(instrument)
	c := Closed{
		Instrument: instrument,
		Direction:  dir,
		Entry:      lot.Price,
		Exit:       f.Price,
		Size:       size,
		OpenTime:   lot.Time,
		CloseTime:  f.Time,
		Kind:       kind,
	}
	var raw float64
	if kind == market.Inverse {
		c.Mode = ModeInverse
		raw = InversePnL(dir, lot.Price, f.Price, size)
	} else {
		c.Mode = ModeLinear
		raw = LinearPnL(dir, lot.Price, f.Price, size)
	}
	c.PnL = Round2(raw)
	c.Result = Classify(c.PnL)
	return c
}

// LinearPnL is size times the favourable price move.
func LinearPnL(dir Direction, entry, exit, size float64) float64 {
	return size * priceDiff(dir, entry, exit)
}

// InversePnL computes coin-margined P&L in the base asset and converts it to
// the quote currency at the exit price.
func InversePnL(dir Direction, entry, exit, size float64) float64 {
	if entry <= 0 || exit <= 0 {
		return 0
	}
	base := size * (1/entry - 1/exit)
	if dir == Short {
		base = -base
	}
	return base * exit
}

// Matcher runs FIFO matching across instruments.
type Matcher struct {
	queues map[string]Queue
}

func NewMatcher() *Matcher {
	return &Matcher{queues: make(map[string]Queue)}
}

// Apply feeds fills in chronological order and returns every realized trade.
// Fills with a non-positive price or size are skipped.
func (m *Matcher) Apply(fills []Fill) []Closed {
	sorted := append([]Fill(nil), fills...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	var out []Closed
	for _, f := range sorted {
		if f.Price <= 0 || f.Size <= 0 {
			continue
		}
		f.Instrument = market.NormalizeSymbol(f.Instrument)
		closed, q := Match(m.queues[f.Instrument], f)
		m.queues[f.Instrument] = q
		out = append(out, closed...)
	}
	return out
}

// Open returns the unmatched lots for instrument.
func (m *Matcher) Open(instrument string) []Lot {
	return m.queues[market.NormalizeSymbol(instrument)].Lots()
}

// Instruments lists instruments that still have open lots, sorted.
func (m *Matcher) Instruments() []string {
	var out []string
	for k, q := range m.queues {
		if q.Len() > 0 {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
