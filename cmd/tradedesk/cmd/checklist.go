package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradedesk/checklist"
	"github.com/rustyeddy/tradedesk/journal"
)

var checklistCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Show, score or reset the pre-trade checklist",
	Long: `Work with the weighted pre-trade checklist.

Items are addressed as <category>.<index>, for example ms.0 for the first
market structure item. "checklist show" lists every key.

Examples:
  tradedesk checklist show
  tradedesk checklist score --check ms.0 --check ms.1 --check rk.0
  tradedesk checklist reset`,
}

var checklistShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List categories, items and weights",
	Args:  cobra.NoArgs,
	RunE:  runChecklistShow,
}

var checklistScoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a setup from the checked items",
	Args:  cobra.NoArgs,
	RunE:  runChecklistScore,
}

var checklistResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the built-in checklist",
	Args:  cobra.NoArgs,
	RunE:  runChecklistReset,
}

var (
	checklistChecks   []string
	checklistMinScore int
	checklistJSON     bool
)

func init() {
	rootCmd.AddCommand(checklistCmd)
	checklistCmd.AddCommand(checklistShowCmd)
	checklistCmd.AddCommand(checklistScoreCmd)
	checklistCmd.AddCommand(checklistResetCmd)

	checklistScoreCmd.Flags().StringSliceVarP(&checklistChecks, "check", "c", nil, "checked item key (repeatable)")
	checklistScoreCmd.Flags().IntVar(&checklistMinScore, "min-score", 0, "override the minimum score for this run")
	checklistScoreCmd.Flags().BoolVar(&checklistJSON, "json", false, "print the snapshot as JSON")
}

func runChecklistShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	cfg := b.LoadChecklist(ctx)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Minimum score: %d%%\n", cfg.MinScore())
	for _, cat := range cfg.Categories {
		fmt.Fprintf(out, "\n%s (%s, max %d)\n", cat.Title, cat.ID, cat.MaxWeight())
		if cat.Subtitle != "" {
			fmt.Fprintf(out, "  %s\n", cat.Subtitle)
		}
		for i, it := range cat.Items {
			fmt.Fprintf(out, "  %-6s [%d] %s\n", checklist.Key(cat.ID, i), it.Weight, it.Text)
		}
	}
	return nil
}

// evaluateChecks scores the given item keys against the stored checklist.
// minScore replaces the stored gate when --min-score was given, even as 0.
func evaluateChecks(cmd *cobra.Command, b *journal.Book, keys []string, minScore int) (checklist.Config, checklist.Snapshot, checklist.Summary, error) {
	cfg := b.LoadChecklist(cmd.Context())
	if cmd.Flags().Changed("min-score") {
		cfg.SetMinScore(minScore)
		if err := cfg.Validate(); err != nil {
			return cfg, checklist.Snapshot{}, checklist.Summary{}, fmt.Errorf("--min-score: %w", err)
		}
	}

	state := checklist.State{}
	for _, k := range keys {
		id, i, err := checklist.ParseKey(k)
		if err != nil {
			return cfg, checklist.Snapshot{}, checklist.Summary{}, err
		}
		cat, ok := cfg.Category(id)
		if !ok || i >= len(cat.Items) {
			return cfg, checklist.Snapshot{}, checklist.Summary{}, fmt.Errorf("unknown checklist item %q", k)
		}
		state.Check(id, i)
	}
	snap, sum := checklist.Evaluate(cfg, state)
	return cfg, snap, sum, nil
}

func runChecklistScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	cfg, snap, sum, err := evaluateChecks(cmd, b, checklistChecks, checklistMinScore)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if checklistJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}
	printScore(out, cfg, snap, sum)
	return nil
}

func printScore(out io.Writer, cfg checklist.Config, snap checklist.Snapshot, sum checklist.Summary) {
	if !sum.Result.Rated {
		fmt.Fprintln(out, "Score:   not rated (no weighted items)")
		return
	}
	fmt.Fprintf(out, "Score:   %d%% (%s)\n", snap.Score, sum.Verdict.Label)
	fmt.Fprintf(out, "Verdict: %s\n", sum.Verdict.AllowedLabel)
	allowed := "no"
	if sum.Allowed {
		allowed = "yes"
	}
	fmt.Fprintf(out, "Allowed: %s\n", allowed)
	for _, cat := range cfg.Categories {
		g := snap.Groups[cat.ID]
		fmt.Fprintf(out, "  %-20s %d/%d (%d%%)\n", cat.Title, g.Score, g.Max, g.Percentage)
	}
	fmt.Fprintln(out, sum.Text())
}

func runChecklistReset(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	cfg := checklist.DefaultConfig()
	cfg.SetMinScore(app.cfg.Checklist.MinScore)
	if err := b.SaveChecklist(ctx, cfg); err != nil {
		return fmt.Errorf("reset checklist: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Checklist reset (%d categories, min score %d%%)\n",
		len(cfg.Categories), cfg.MinScore())
	return nil
}
