package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradedesk/journal"
	"github.com/rustyeddy/tradedesk/stats"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Performance statistics for the journal",
	Long: `Print win rate, profit factor, expectancy, R-multiple, streaks and
drawdown. With --category the category's starting balance seeds the
drawdown; otherwise --start-balance or the configured account balance does.

Example:
  tradedesk stats --category crypto --from 2024-01-01`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Monte Carlo projection from past trades",
	Long: `Resample past trade P&L to project the spread of outcomes over the next
trades.

Example:
  tradedesk simulate --runs 5000 --horizon 100 --ruin-pct 50`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

var (
	statsFilter tradeFilter
	statsStart  float64
	statsJSON   bool
	simFilter   tradeFilter
	simStart    float64
	simRuns     int
	simHorizon  int
	simRuinPct  float64
	simSeed     int64
)

func init() {
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(simulateCmd)

	statsFilter.register(statsCmd)
	statsCmd.Flags().Float64Var(&statsStart, "start-balance", 0, "starting balance for drawdown")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print the summary as JSON")

	simFilter.register(simulateCmd)
	simulateCmd.Flags().Float64Var(&simStart, "start-balance", 0, "starting balance")
	simulateCmd.Flags().IntVar(&simRuns, "runs", 1000, "number of simulated paths")
	simulateCmd.Flags().IntVar(&simHorizon, "horizon", 0, "trades per path (default: number of past trades)")
	simulateCmd.Flags().Float64Var(&simRuinPct, "ruin-pct", 50, "drawdown from start, in percent, that counts as ruin")
	simulateCmd.Flags().Int64Var(&simSeed, "seed", 1, "random seed")
}

// startingBalance picks the drawdown seed: explicit flag, then the
// category's starting balance, then the configured account balance.
func startingBalance(ctx context.Context, b *journal.Book, f tradeFilter, flag float64) float64 {
	if flag > 0 {
		return flag
	}
	if c, ok := journal.ParseCategory(f.category); ok {
		if s := b.StartingBalance(ctx, c); s > 0 {
			return s
		}
	}
	return app.cfg.Account.Balance
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	recs, err := statsFilter.apply(ctx, b)
	if err != nil {
		return err
	}
	sum := stats.Summarize(stats.FromRecords(recs), startingBalance(ctx, b, statsFilter, statsStart))

	out := cmd.OutOrStdout()
	if statsJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonSafe(sum))
	}

	title := "All trades"
	if statsFilter.category != "" {
		title = "Category: " + statsFilter.category
	}
	stats.PrintSummary(out, title, sum)
	return nil
}

// jsonSafe replaces an infinite profit factor, which JSON cannot encode.
func jsonSafe(s stats.Summary) any {
	type alias stats.Summary
	out := struct {
		alias
		ProfitFactor any `json:"profitFactor"`
	}{alias: alias(s), ProfitFactor: s.ProfitFactor}
	if math.IsInf(s.ProfitFactor, 1) {
		out.ProfitFactor = "inf"
	}
	return out
}

func runSimulate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	recs, err := simFilter.apply(ctx, b)
	if err != nil {
		return err
	}
	res, err := stats.MonteCarlo(stats.PnLs(stats.FromRecords(recs)), stats.MonteCarloConfig{
		Runs:    simRuns,
		Horizon: simHorizon,
		Start:   startingBalance(ctx, b, simFilter, simStart),
		RuinPct: simRuinPct,
		Seed:    simSeed,
	})
	if err != nil {
		return fmt.Errorf("simulate: %w", err)
	}
	stats.PrintMonteCarlo(cmd.OutOrStdout(), res)
	return nil
}
