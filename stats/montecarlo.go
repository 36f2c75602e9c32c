package stats

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// MonteCarloConfig drives a bootstrap equity simulation.
type MonteCarloConfig struct {
	Runs    int     // simulated equity paths
	Horizon int     // trades per path; 0 means len(pnls)
	Start   float64 // starting balance
	// RuinPct is the drawdown from Start, in percent, that counts as ruin.
	// 0 means the balance reaching zero.
	RuinPct float64
	Seed    int64
}

type MonteCarloResult struct {
	Runs           int     `json:"runs"`
	Horizon        int     `json:"horizon"`
	MedianFinal    float64 `json:"medianFinal"`
	P5Final        float64 `json:"p5Final"`
	P95Final       float64 `json:"p95Final"`
	MeanFinal      float64 `json:"meanFinal"`
	MedianMaxDDPct float64 `json:"medianMaxDrawdownPct"`
	ProbRuin       float64 `json:"probRuin"`
}

var (
	ErrNoSamples = errors.New("no trade P&L to resample")
	ErrBadRuns   = errors.New("runs must be positive")
)

// MonteCarlo resamples historical trade P&L with replacement to estimate the
// spread of outcomes over the next Horizon trades. The same seed gives the
// same result.
func MonteCarlo(pnls []float64, cfg MonteCarloConfig) (MonteCarloResult, error) {
	if len(pnls) == 0 {
		return MonteCarloResult{}, ErrNoSamples
	}
	if cfg.Runs <= 0 {
		return MonteCarloResult{}, ErrBadRuns
	}
	horizon := cfg.Horizon
	if horizon <= 0 {
		horizon = len(pnls)
	}
	ruinLevel := 0.0
	if cfg.RuinPct > 0 {
		ruinLevel = cfg.Start * (1 - cfg.RuinPct/100)
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	finals := make([]float64, cfg.Runs)
	maxDDs := make([]float64, cfg.Runs)
	ruined := 0
	sum := 0.0

	for r := 0; r < cfg.Runs; r++ {
		balance, peak, maxDD := cfg.Start, cfg.Start, 0.0
		hitRuin := false
		for i := 0; i < horizon; i++ {
			balance += pnls[rng.Intn(len(pnls))]
			if balance > peak {
				peak = balance
			}
			if dd := drawdownPct(peak, balance); dd > maxDD {
				maxDD = dd
			}
			if balance <= ruinLevel {
				hitRuin = true
			}
		}
		if hitRuin {
			ruined++
		}
		finals[r] = balance
		maxDDs[r] = maxDD
		sum += balance
	}

	sort.Float64s(finals)
	sort.Float64s(maxDDs)
	return MonteCarloResult{
		Runs:           cfg.Runs,
		Horizon:        horizon,
		MedianFinal:    percentile(finals, 0.50),
		P5Final:        percentile(finals, 0.05),
		P95Final:       percentile(finals, 0.95),
		MeanFinal:      sum / float64(cfg.Runs),
		MedianMaxDDPct: percentile(maxDDs, 0.50),
		ProbRuin:       float64(ruined) / float64(cfg.Runs),
	}, nil
}

// percentile uses the nearest-rank method on sorted values.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	i := int(math.Ceil(p*float64(len(sorted)))) - 1
	if i < 0 {
		i = 0
	}
	if i >= len(sorted) {
		i = len(sorted) - 1
	}
	return sorted[i]
}

// PnLs extracts the P&L of trades that carry one.
func PnLs(trades []Trade) []float64 {
	out := make([]float64, 0, len(trades))
	for _, t := range trades {
		if t.HasPnL {
			out = append(out, t.PnL)
		}
	}
	return out
}
