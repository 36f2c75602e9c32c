package stats

import (
	"fmt"
	"io"
	"math"
	"time"
)

func PrintSummary(w io.Writer, title string, s Summary) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, " %s\n", title)
	fmt.Fprintln(w, "==================================================")

	if s.Trades == 0 {
		fmt.Fprintln(w, "No trades.")
		fmt.Fprintln(w)
		return
	}

	fmt.Fprintf(w, "Start:         %s\n", s.Start.Format(time.RFC3339))
	fmt.Fprintf(w, "End:           %s\n", s.End.Format(time.RFC3339))

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Trade Statistics")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Trades:        %d\n", s.Trades)
	fmt.Fprintf(w, "Wins:          %d\n", s.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", s.Losses)
	fmt.Fprintf(w, "Breakeven:     %d\n", s.Breakeven)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", s.WinRate)
	fmt.Fprintf(w, "Profit Factor: %s\n", ratio(s.ProfitFactor))
	fmt.Fprintf(w, "Expectancy:    %.2f\n", s.Expectancy)
	fmt.Fprintf(w, "Avg Win:       %.2f\n", s.AvgWin)
	fmt.Fprintf(w, "Avg Loss:      %.2f\n", s.AvgLoss)
	fmt.Fprintf(w, "R-Multiple:    %.2f\n", s.RMultiple)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Streaks")
	fmt.Fprintln(w, "--------------------------------------------------")
	if s.Streaks.Current.Count > 0 {
		fmt.Fprintf(w, "Current:       %d %s\n", s.Streaks.Current.Count, s.Streaks.Current.Type)
	} else {
		fmt.Fprintln(w, "Current:       none")
	}
	fmt.Fprintf(w, "Longest Win:   %d\n", s.Streaks.LongestWin)
	fmt.Fprintf(w, "Longest Loss:  %d\n", s.Streaks.LongestLoss)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Account Performance")
	fmt.Fprintln(w, "--------------------------------------------------")
	fmt.Fprintf(w, "Start Balance: %.2f\n", s.StartBalance)
	fmt.Fprintf(w, "End Balance:   %.2f\n", s.EndBalance)
	fmt.Fprintf(w, "Net P/L:       %.2f\n", s.NetPnL)
	fmt.Fprintf(w, "Max Drawdown:  %.2f%%\n", s.Drawdown.MaxPct)
	fmt.Fprintf(w, "Drawdown Now:  %.2f%%\n", s.Drawdown.CurrentPct)
	fmt.Fprintln(w)
}

func PrintMonteCarlo(w io.Writer, r MonteCarloResult) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintln(w, " Monte Carlo")
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, "Runs:          %d\n", r.Runs)
	fmt.Fprintf(w, "Trades/Run:    %d\n", r.Horizon)
	fmt.Fprintf(w, "Median Final:  %.2f\n", r.MedianFinal)
	fmt.Fprintf(w, "5th Pct:       %.2f\n", r.P5Final)
	fmt.Fprintf(w, "95th Pct:      %.2f\n", r.P95Final)
	fmt.Fprintf(w, "Mean Final:    %.2f\n", r.MeanFinal)
	fmt.Fprintf(w, "Median Max DD: %.2f%%\n", r.MedianMaxDDPct)
	fmt.Fprintf(w, "P(Ruin):       %.2f%%\n", r.ProbRuin*100)
	fmt.Fprintln(w)
}

func ratio(x float64) string {
	if math.IsInf(x, 1) {
		return "inf"
	}
	return fmt.Sprintf("%.2f", x)
}
