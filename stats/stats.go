// Package stats derives performance figures from closed journal trades.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/rustyeddy/tradedesk/journal"
	"github.com/rustyeddy/tradedesk/pnl"
)

// Trade is the slice of a journal record that statistics need.
type Trade struct {
	Time   time.Time
	PnL    float64
	HasPnL bool
	Result pnl.Result
}

// FromRecords converts journal records and orders them by time.
func FromRecords(recs []journal.TradeRecord) []Trade {
	out := make([]Trade, 0, len(recs))
	for _, r := range recs {
		out = append(out, Trade{
			Time:   r.Timestamp,
			PnL:    r.PnLValue(),
			HasPnL: r.HasPnL(),
			Result: r.Result,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

type tally struct {
	n, wins, losses int
	winSum, lossSum float64 // lossSum is positive
}

func count(trades []Trade) tally {
	var t tally
	t.n = len(trades)
	for _, tr := range trades {
		switch tr.Result {
		case pnl.Win:
			t.wins++
			t.winSum += tr.PnL
		case pnl.Loss:
			t.losses++
			t.lossSum += math.Abs(tr.PnL)
		}
	}
	return t
}

// WinRate is wins over all trades, as a percentage. Zero with no trades.
func WinRate(trades []Trade) float64 {
	t := count(trades)
	if t.n == 0 {
		return 0
	}
	return float64(t.wins) / float64(t.n) * 100
}

// ProfitFactor is gross profit over gross loss. It is +Inf when there are
// wins and no losses, and 0 when there are neither.
func ProfitFactor(trades []Trade) float64 {
	t := count(trades)
	if t.losses == 0 || t.lossSum == 0 {
		if t.wins > 0 {
			return math.Inf(1)
		}
		return 0
	}
	return t.winSum / t.lossSum
}

// AvgWin and AvgLoss return the mean winning P&L and the mean losing P&L as
// a positive number.
func AvgWin(trades []Trade) float64 {
	t := count(trades)
	if t.wins == 0 {
		return 0
	}
	return t.winSum / float64(t.wins)
}

func AvgLoss(trades []Trade) float64 {
	t := count(trades)
	if t.losses == 0 {
		return 0
	}
	return t.lossSum / float64(t.losses)
}

// Expectancy is the expected P&L per trade. Rates are fractions of one here,
// not percentages.
func Expectancy(trades []Trade) float64 {
	t := count(trades)
	if t.n == 0 {
		return 0
	}
	winRate := float64(t.wins) / float64(t.n)
	lossRate := float64(t.losses) / float64(t.n)
	return winRate*AvgWin(trades) - lossRate*AvgLoss(trades)
}

// RMultiple is average win over average loss. Zero without losses.
func RMultiple(trades []Trade) float64 {
	l := AvgLoss(trades)
	if l == 0 {
		return 0
	}
	return AvgWin(trades) / l
}

// Streak is a run of consecutive results of one type.
type Streak struct {
	Type  pnl.Result `json:"type"`
	Count int        `json:"count"`
}

type Streaks struct {
	Current     Streak `json:"current"`
	LongestWin  int    `json:"longestWin"`
	LongestLoss int    `json:"longestLoss"`
}

// ComputeStreaks walks trades in time order. Anything other than a win or a
// loss ends the current streak.
func ComputeStreaks(trades []Trade) Streaks {
	var s Streaks
	for _, t := range trades {
		switch t.Result {
		case pnl.Win, pnl.Loss:
			if s.Current.Type == t.Result {
				s.Current.Count++
			} else {
				s.Current = Streak{Type: t.Result, Count: 1}
			}
		default:
			s.Current = Streak{}
			continue
		}
		if t.Result == pnl.Win && s.Current.Count > s.LongestWin {
			s.LongestWin = s.Current.Count
		}
		if t.Result == pnl.Loss && s.Current.Count > s.LongestLoss {
			s.LongestLoss = s.Current.Count
		}
	}
	return s
}

type Drawdown struct {
	MaxPct     float64 `json:"maxDrawdownPct"`
	CurrentPct float64 `json:"currentDrawdownPct"`
}

// ComputeDrawdown replays P&L over a starting balance. The starting balance
// is the first peak.
func ComputeDrawdown(trades []Trade, start float64) Drawdown {
	balance, peak := start, start
	dd := Drawdown{}
	for _, t := range trades {
		balance += t.PnL
		if balance > peak {
			peak = balance
		}
		cur := drawdownPct(peak, balance)
		if cur > dd.MaxPct {
			dd.MaxPct = cur
		}
		dd.CurrentPct = cur
	}
	return dd
}

func drawdownPct(peak, balance float64) float64 {
	if peak <= 0 {
		if balance < 0 {
			return 100
		}
		return 0
	}
	pct := (peak - balance) / peak * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// Summary bundles every statistic for one set of trades.
type Summary struct {
	Trades       int       `json:"trades"`
	Wins         int       `json:"wins"`
	Losses       int       `json:"losses"`
	Breakeven    int       `json:"breakeven"`
	WinRate      float64   `json:"winRate"`
	ProfitFactor float64   `json:"profitFactor"`
	Expectancy   float64   `json:"expectancy"`
	AvgWin       float64   `json:"avgWin"`
	AvgLoss      float64   `json:"avgLoss"`
	RMultiple    float64   `json:"rMultiple"`
	NetPnL       float64   `json:"netPnl"`
	StartBalance float64   `json:"startBalance"`
	EndBalance   float64   `json:"endBalance"`
	Streaks      Streaks   `json:"streaks"`
	Drawdown     Drawdown  `json:"drawdown"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
}

// Summarize computes a Summary. trades must be in time order.
func Summarize(trades []Trade, startBalance float64) Summary {
	t := count(trades)
	s := Summary{
		Trades:       t.n,
		Wins:         t.wins,
		Losses:       t.losses,
		WinRate:      WinRate(trades),
		ProfitFactor: ProfitFactor(trades),
		Expectancy:   Expectancy(trades),
		AvgWin:       AvgWin(trades),
		AvgLoss:      AvgLoss(trades),
		RMultiple:    RMultiple(trades),
		StartBalance: startBalance,
		Streaks:      ComputeStreaks(trades),
		Drawdown:     ComputeDrawdown(trades, startBalance),
	}
	for _, tr := range trades {
		if tr.Result == pnl.Breakeven {
			s.Breakeven++
		}
		s.NetPnL += tr.PnL
	}
	s.EndBalance = startBalance + s.NetPnL
	if len(trades) > 0 {
		s.Start = trades[0].Time
		s.End = trades[len(trades)-1].Time
	}
	return s
}
