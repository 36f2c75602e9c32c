package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rustyeddy/tradedesk/journal"
	"github.com/rustyeddy/tradedesk/market"
	"github.com/rustyeddy/tradedesk/pnl"
	"github.com/rustyeddy/tradedesk/risk"
)

// planFlags are the trade plan inputs shared by "plan" and "trade log".
type planFlags struct {
	instrument string
	direction  string
	plan       pnl.Plan
}

func (p *planFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&p.instrument, "instrument", "i", "", "instrument, e.g. EURUSD or BTCUSDT")
	fs.StringVarP(&p.direction, "direction", "d", "", "long or short")
	fs.StringVar(&p.plan.Entry, "entry", "", "entry price")
	fs.StringVar(&p.plan.StopLoss, "sl", "", "stop-loss price")
	fs.StringVar(&p.plan.TakeProfit, "tp", "", "take-profit price")
	fs.StringVar(&p.plan.Size, "size", "", "position size (margin) in account currency")
	fs.StringVar(&p.plan.Leverage, "leverage", "", "leverage, e.g. 10x or 1:10")
	fs.StringVar(&p.plan.Lots, "lots", "", "lots (forex or futures)")
}

// parsedDirection returns the direction, leaving it empty when the flag is
// unset so that the P&L calculator reports the missing field.
func (p *planFlags) parsedDirection() (pnl.Direction, error) {
	if p.direction == "" {
		return "", nil
	}
	return pnl.ParseDirection(p.direction)
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Check a trade plan against your risk rules",
	Long: `Compute reward to risk, the loss if the stop is hit and, for forex pairs,
a position size that risks the configured percentage of the account.

Example:
  tradedesk plan -i EURUSD -d long --entry 1.1000 --sl 1.0980 --tp 1.1050 --lots 1`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

var (
	planInputs  planFlags
	planBalance float64
)

func init() {
	rootCmd.AddCommand(planCmd)
	planInputs.register(planCmd.Flags())
	planCmd.Flags().Float64Var(&planBalance, "balance", 0, "account balance (default from config)")
}

func runPlan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	dir, err := planInputs.parsedDirection()
	if err != nil {
		return err
	}
	balance := planBalance
	if balance <= 0 {
		balance = app.cfg.Account.Balance
	}

	rr := risk.PlanRR(planInputs.plan)
	fmt.Fprintf(out, "Instrument:    %s (%s)\n", market.NormalizeSymbol(planInputs.instrument), market.KindOf(planInputs.instrument))
	fmt.Fprintf(out, "Reward/Risk:   %.2f\n", rr)

	if tp, err := pnl.QuickFromPlan(planInputs.plan, dir, true, planInputs.instrument); err == nil {
		fmt.Fprintf(out, "If target:     %+.2f (%s%s)\n", tp.PnL, tp.Mode, approx(tp))
	}
	if sl, err := pnl.QuickFromPlan(planInputs.plan, dir, false, planInputs.instrument); err == nil {
		fmt.Fprintf(out, "If stopped:    %+.2f (%s%s)\n", sl.PnL, sl.Mode, approx(sl))
	} else {
		fmt.Fprintf(out, "If stopped:    unknown (%v)\n", err)
	}

	if meta, ok := market.Lookup(planInputs.instrument); ok {
		entry, stop := pnl.ParseAmount(planInputs.plan.Entry), pnl.ParseAmount(planInputs.plan.StopLoss)
		if entry.Positive() && stop.Positive() {
			size := risk.Calculate(risk.Inputs{
				Equity:         balance,
				RiskPct:        app.cfg.Risk.MaxRiskPct,
				EntryPrice:     entry.Value,
				StopPrice:      stop.Value,
				PipLocation:    meta.PipLocation,
				QuoteToAccount: risk.QuoteToAccount(meta, app.cfg.Account.Currency, entry.Value),
			})
			fmt.Fprintf(out, "Stop distance: %.1f pips\n", size.StopPips)
			if size.Units > 0 {
				fmt.Fprintf(out, "Max size:      %.2f lots (%.0f units) risking %.2f %s\n",
					size.Lots, size.Units, size.RiskAmount, app.cfg.Account.Currency)
			}
		}
	}

	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	d := checkRisk(ctx, b, planInputs.plan, dir, planInputs.instrument, balance)
	printDecision(out, d)
	return nil
}

func approx(o pnl.Outcome) string {
	if o.Approximate {
		return ", approximate"
	}
	return ""
}

// checkRisk evaluates a plan against the configured policy using realized
// P&L from the journal for today and the last seven days.
func checkRisk(ctx context.Context, b *journal.Book, plan pnl.Plan, dir pnl.Direction, instrument string, balance float64) risk.Decision {
	planned, err := risk.PlannedRisk(plan, dir, instrument)
	if err != nil {
		planned = 0
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var snap risk.PnLSnapshot
	for _, t := range b.TradesBetween(ctx, dayStart.AddDate(0, 0, -6), now.Add(time.Second)) {
		snap.WeekRealized += t.PnLValue()
		if !t.Timestamp.Before(dayStart) {
			snap.DayRealized += t.PnLValue()
		}
	}

	return risk.Evaluate(app.cfg.Risk, risk.Intent{
		PlannedRisk: planned,
		RR:          risk.PlanRR(plan),
		Balance:     balance,
	}, snap)
}

func printDecision(out io.Writer, d risk.Decision) {
	fmt.Fprintf(out, "Planned risk:  %.2f%% of balance\n", d.PlannedRiskPct*100)
	if d.Allowed {
		fmt.Fprintln(out, "Risk rules:    ✓ within limits")
		return
	}
	fmt.Fprintln(out, "Risk rules:    ✗ broken")
	for _, v := range d.Violations {
		fmt.Fprintf(out, "  - %s: %s\n", v.Code, v.Msg)
	}
}
