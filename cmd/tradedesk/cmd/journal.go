package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradedesk/journal"
	"github.com/rustyeddy/tradedesk/pkg/id"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Browse, edit and export the trade journal",
	Long: `Browse, edit and export the trade journal.

Subcommands:
  list   - List trades, optionally filtered by category or date range
  show   - Show one trade as an Org-mode entry
  export - Export trades as CSV, Org or JSON
  notes  - Replace the notes of a trade
  delete - Delete a trade
  pull   - Merge trades and accounts from the sync mirror

List and show read the local journal, or with --from-mirror the SQLite
sync mirror.

Examples:
  tradedesk journal list --category crypto --from 2024-01-01
  tradedesk journal list --from-mirror --mirror mirror.db --from 2024-01-01
  tradedesk journal show 01HV5J9Z6Q3R8T2XKM4N7P0ABC
  tradedesk journal export --format csv -o trades.csv`,
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades",
	Args:  cobra.NoArgs,
	RunE:  runJournalList,
}

var journalShowCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Show a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalShow,
}

var journalExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export trades",
	Args:  cobra.NoArgs,
	RunE:  runJournalExport,
}

var journalNotesCmd = &cobra.Command{
	Use:   "notes <trade-id> <text>",
	Short: "Replace a trade's notes",
	Args:  cobra.ExactArgs(2),
	RunE:  runJournalNotes,
}

var journalDeleteCmd = &cobra.Command{
	Use:   "delete <trade-id>",
	Short: "Delete a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDelete,
}

var journalPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Merge records from the sync mirror",
	Args:  cobra.NoArgs,
	RunE:  runJournalPull,
}

type tradeFilter struct {
	category string
	from     string
	to       string
}

func (f *tradeFilter) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.category, "category", "", "only trades in this category")
	cmd.Flags().StringVar(&f.from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "last day, YYYY-MM-DD")
}

// bounds turns --from and --to into a half-open range of local days.
func (f *tradeFilter) bounds() (time.Time, time.Time, error) {
	start, end := time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)
	if f.from != "" {
		s, _, err := dayBounds(time.Local, f.from)
		if err != nil {
			return start, end, fmt.Errorf("--from: %w", err)
		}
		start = s
	}
	if f.to != "" {
		_, e, err := dayBounds(time.Local, f.to)
		if err != nil {
			return start, end, fmt.Errorf("--to: %w", err)
		}
		end = e
	}
	return start, end, nil
}

func (f *tradeFilter) parsedCategory() (journal.Category, error) {
	c, ok := journal.ParseCategory(f.category)
	if !ok {
		return "", fmt.Errorf("unknown category %q", f.category)
	}
	return c, nil
}

// apply returns the trades matching the filter, oldest first.
func (f *tradeFilter) apply(ctx context.Context, b *journal.Book) ([]journal.TradeRecord, error) {
	trades := b.Trades(ctx)
	if f.category != "" {
		c, err := f.parsedCategory()
		if err != nil {
			return nil, err
		}
		trades = b.TradesFor(ctx, c)
	}
	if f.from == "" && f.to == "" {
		return trades, nil
	}

	start, end, err := f.bounds()
	if err != nil {
		return nil, err
	}
	var out []journal.TradeRecord
	for _, t := range trades {
		if !t.Timestamp.Before(start) && t.Timestamp.Before(end) {
			out = append(out, t)
		}
	}
	return out, nil
}

// fromMirror runs the filter against the SQLite mirror. The realized P&L
// of the whole date range is summed by the database.
func (f *tradeFilter) fromMirror(ctx context.Context, m *journal.SQLite) ([]journal.TradeRecord, float64, error) {
	start, end, err := f.bounds()
	if err != nil {
		return nil, 0, err
	}
	trades, err := m.ListTradesBetween(ctx, start, end)
	if err != nil {
		return nil, 0, fmt.Errorf("list mirror: %w", err)
	}
	realized, err := m.RealizedBetween(ctx, start, end)
	if err != nil {
		return nil, 0, fmt.Errorf("sum mirror: %w", err)
	}
	if f.category == "" {
		return trades, realized, nil
	}

	c, err := f.parsedCategory()
	if err != nil {
		return nil, 0, err
	}
	var out []journal.TradeRecord
	for _, t := range trades {
		if t.Category == c {
			out = append(out, t)
		}
	}
	return out, realized, nil
}

var errNoMirror = errors.New("no sync mirror configured (journal.mirror_path or --mirror)")

// openMirror opens the configured sync mirror for reading.
func openMirror() (*journal.SQLite, error) {
	if app.cfg.Journal.MirrorPath == "" {
		return nil, errNoMirror
	}
	m, err := journal.NewSQLite(app.cfg.Journal.MirrorPath)
	if err != nil {
		return nil, fmt.Errorf("open mirror: %w", err)
	}
	return m, nil
}

var (
	listFilter     tradeFilter
	listFromMirror bool
	showFromMirror bool
	exportFilter   tradeFilter
	exportFormat   string
	exportOutput   string
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalListCmd)
	journalCmd.AddCommand(journalShowCmd)
	journalCmd.AddCommand(journalExportCmd)
	journalCmd.AddCommand(journalNotesCmd)
	journalCmd.AddCommand(journalDeleteCmd)
	journalCmd.AddCommand(journalPullCmd)

	listFilter.register(journalListCmd)
	journalListCmd.Flags().BoolVar(&listFromMirror, "from-mirror", false, "read from the SQLite sync mirror")
	journalShowCmd.Flags().BoolVar(&showFromMirror, "from-mirror", false, "read from the SQLite sync mirror")
	exportFilter.register(journalExportCmd)
	journalExportCmd.Flags().StringVarP(&exportFormat, "format", "F", "csv", "csv, org or json")
	journalExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
}

func runJournalList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if listFromMirror {
		m, err := openMirror()
		if err != nil {
			return err
		}
		defer m.Close()

		trades, realized, err := listFilter.fromMirror(ctx, m)
		if err != nil {
			return err
		}
		printTrades(out, trades)
		if listFilter.category == "" {
			fmt.Fprintf(out, "Realized P&L: %.2f\n", realized)
		}
		return nil
	}

	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	trades, err := listFilter.apply(ctx, b)
	if err != nil {
		return err
	}
	printTrades(out, trades)
	return nil
}

func printTrades(out io.Writer, trades []journal.TradeRecord) {
	if len(trades) == 0 {
		fmt.Fprintln(out, "No trades.")
		return
	}
	fmt.Fprintf(out, "%-26s  %-19s  %-10s  %-5s  %-9s  %10s  %5s\n",
		"ID", "TIME", "INSTRUMENT", "DIR", "RESULT", "P&L", "SCORE")
	for _, t := range trades {
		pl := "-"
		if t.HasPnL() {
			pl = fmt.Sprintf("%.2f", t.PnLValue())
		}
		score := "-"
		if s, ok := t.Score(); ok {
			score = fmt.Sprintf("%d%%", s)
		}
		fmt.Fprintf(out, "%-26s  %-19s  %-10s  %-5s  %-9s  %10s  %5s\n",
			t.ID, t.Time, t.Instrument, t.Direction, t.Result, pl, score)
	}
}

func runJournalShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var rec journal.TradeRecord
	if showFromMirror {
		m, err := openMirror()
		if err != nil {
			return err
		}
		defer m.Close()
		if rec, err = m.GetTrade(ctx, args[0]); err != nil {
			return fmt.Errorf("get trade: %w", err)
		}
	} else {
		b, done, err := openBook(ctx)
		if err != nil {
			return err
		}
		defer done()
		if rec, err = b.Trade(ctx, args[0]); err != nil {
			return fmt.Errorf("get trade: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, journal.FormatTradeOrg(rec))
	// Ids minted here are ULIDs; imported or legacy ids may not be.
	if created, err := id.Time(rec.ID); err == nil {
		fmt.Fprintf(out, "# id minted %s\n", created.UTC().Format(time.RFC3339))
	}
	return nil
}

func runJournalExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	trades, err := exportFilter.apply(ctx, b)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			return fmt.Errorf("create export: %w", err)
		}
		defer f.Close()
		w = f
	}

	switch strings.ToLower(exportFormat) {
	case "csv":
		return journal.WriteCSV(w, trades)
	case "org":
		_, err := io.WriteString(w, journal.FormatTradesOrg(trades))
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if trades == nil {
			trades = []journal.TradeRecord{}
		}
		return enc.Encode(trades)
	default:
		return fmt.Errorf("unknown export format %q", exportFormat)
	}
}

func runJournalNotes(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := b.UpdateNotes(ctx, args[0], args[1]); err != nil {
		return fmt.Errorf("update notes: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Notes updated for %s\n", args[0])
	return nil
}

func runJournalDelete(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := b.DeleteTrade(ctx, args[0]); err != nil {
		return fmt.Errorf("delete trade: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted %s\n", args[0])
	return nil
}

func runJournalPull(cmd *cobra.Command, args []string) error {
	if app.cfg.Journal.MirrorPath == "" {
		return errNoMirror
	}
	ctx := cmd.Context()
	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	res, err := b.Pull(ctx)
	if err != nil {
		return fmt.Errorf("pull: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pulled %d trades, %d accounts\n", res.Trades, res.Accounts)
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return start, end, nil
}
