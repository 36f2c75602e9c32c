package cmd

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradedesk/internal/logging"
	"github.com/rustyeddy/tradedesk/journal"
	"github.com/rustyeddy/tradedesk/pnl"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Record trades in the journal",
	Long: `Record trades in the journal.

Subcommands:
  log    - Log a closed trade as a win or a loss from its plan
  import - Import broker fills from CSV and FIFO-match them into trades

Examples:
  tradedesk trade log win -i BTCUSDT -d long --entry 100 --sl 95 --tp 110 --size 1000 --leverage 10x --link crypto
  tradedesk trade import fills.csv --link crypto`,
}

var tradeLogCmd = &cobra.Command{
	Use:       "log <win|loss>",
	Short:     "Log a closed trade; P&L is computed from the plan",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"win", "loss"},
	RunE:      runTradeLog,
}

var tradeImportCmd = &cobra.Command{
	Use:   "import <fills.csv>",
	Short: "Import fills and save every closed round trip",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeImport,
}

var (
	tradeInputs   planFlags
	tradeLink     string
	tradeSetup    string
	tradeIdea     string
	tradeNotes    string
	tradeChecks   []string
	tradeMinScore int
	tradeShots    []string
	importLink    string
)

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeLogCmd)
	tradeCmd.AddCommand(tradeImportCmd)

	f := tradeLogCmd.Flags()
	tradeInputs.register(f)
	f.StringVar(&tradeLink, "link", "", "category (crypto, forex, ...) or account id")
	f.StringVar(&tradeSetup, "setup", "", "setup id")
	f.StringVar(&tradeIdea, "idea", "", "trade idea notes")
	f.StringVar(&tradeNotes, "notes", "", "journal notes")
	f.StringSliceVarP(&tradeChecks, "check", "c", nil, "checked checklist item key (repeatable)")
	f.IntVar(&tradeMinScore, "min-score", 0, "override the minimum checklist score")
	f.StringArrayVar(&tradeShots, "screenshot", nil, "screenshot file to embed (repeatable)")

	tradeImportCmd.Flags().StringVar(&importLink, "link", "", "category or account id for imported trades")
}

func runTradeLog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logging.WithInstrument(logging.WithOperation(logging.FromContext(ctx), "trade-log"), tradeInputs.instrument)
	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	win := strings.EqualFold(args[0], "win")

	dir, err := tradeInputs.parsedDirection()
	if err != nil {
		return err
	}

	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	_, snap, sum, err := evaluateChecks(cmd, b, tradeChecks, tradeMinScore)
	if err != nil {
		return err
	}
	if sum.Result.Rated && !sum.Allowed {
		fmt.Fprintf(errOut, "! checklist score %d%% is below the minimum: %s\n", snap.Score, sum.Verdict.AllowedLabel)
	}

	d := checkRisk(ctx, b, tradeInputs.plan, dir, tradeInputs.instrument, app.cfg.Account.Balance)
	for _, v := range d.Violations {
		fmt.Fprintf(errOut, "! %s: %s\n", v.Code, v.Msg)
	}

	shots, err := readScreenshots(tradeShots)
	if err != nil {
		return err
	}

	asm := journal.NewAssembler(b)
	rec, outcome, err := asm.Quick(journal.QuickInput{
		Instrument:   tradeInputs.instrument,
		Direction:    dir,
		Plan:         tradeInputs.plan,
		Win:          win,
		Checklist:    &snap,
		Link:         tradeLink,
		SetupID:      tradeSetup,
		IdeaNotes:    tradeIdea,
		JournalNotes: tradeNotes,
	})
	if err != nil {
		var ie *pnl.InputError
		if errors.As(err, &ie) {
			return fmt.Errorf("cannot compute P&L, check --%s: %w", ie.Field, ie.Err)
		}
		return err
	}
	rec.Screenshots = shots

	saved, err := b.AddTrade(ctx, rec)
	if err != nil {
		return fmt.Errorf("save trade: %w", err)
	}
	log.Debug().Str("trade_id", saved.ID).Str("mode", outcome.Mode.String()).Msg("quick log")

	fmt.Fprintf(out, "✓ Saved %s %s %s %+.2f (%s%s)\n",
		saved.ID, saved.Instrument, saved.Result, saved.PnLValue(), outcome.Mode, approx(outcome))
	if len(shots) > 0 && len(saved.Screenshots) == 0 {
		fmt.Fprintln(errOut, "! storage full: screenshots were dropped")
	}
	return nil
}

func readScreenshots(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read screenshot: %w", err)
		}
		out = append(out, encodeDataURL(p, data))
	}
	return out, nil
}

func runTradeImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open fills: %w", err)
	}
	defer f.Close()

	fills, err := journal.ReadFillsCSV(f)
	if err != nil {
		return fmt.Errorf("read fills: %w", err)
	}

	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	res, err := journal.Import(ctx, b, journal.NewAssembler(b), fills, importLink)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Imported %d fills, %d closed trades\n", len(fills), len(res.Closed))
	for _, rec := range res.Closed {
		fmt.Fprintf(out, "  %s %-10s %-5s %+.2f\n", rec.Time, rec.Instrument, rec.Result, rec.PnLValue())
	}
	insts := make([]string, 0, len(res.Open))
	for inst := range res.Open {
		insts = append(insts, inst)
	}
	sort.Strings(insts)
	for _, inst := range insts {
		fmt.Fprintf(out, "  open: %s %g\n", inst, res.Open[inst])
	}
	return nil
}
