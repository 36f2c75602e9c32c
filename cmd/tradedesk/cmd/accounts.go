package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradedesk/journal"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "Manage accounts and category starting balances",
	Long: `Manage trading accounts and per-category starting balances.

Balances are never stored: they are the initial balance plus the P&L of
every linked trade.

Examples:
  tradedesk accounts add --name Binance --category crypto --balance 5000
  tradedesk accounts list
  tradedesk accounts starting-balance crypto 10000`,
}

var accountsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an account",
	Args:  cobra.NoArgs,
	RunE:  runAccountsAdd,
}

var accountsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts and category balances",
	Args:  cobra.NoArgs,
	RunE:  runAccountsList,
}

var accountsStartCmd = &cobra.Command{
	Use:   "starting-balance <category> <amount>",
	Short: "Set a category's starting balance",
	Args:  cobra.ExactArgs(2),
	RunE:  runAccountsStart,
}

var (
	accountName     string
	accountCategory string
	accountBalance  float64
)

func init() {
	rootCmd.AddCommand(accountsCmd)
	accountsCmd.AddCommand(accountsAddCmd)
	accountsCmd.AddCommand(accountsListCmd)
	accountsCmd.AddCommand(accountsStartCmd)

	accountsAddCmd.Flags().StringVar(&accountName, "name", "", "account name")
	accountsAddCmd.Flags().StringVar(&accountCategory, "category", "", "category: crypto, forex, stocks, futures, options, other")
	accountsAddCmd.Flags().Float64Var(&accountBalance, "balance", 0, "initial balance")
	_ = accountsAddCmd.MarkFlagRequired("name")
	_ = accountsAddCmd.MarkFlagRequired("category")
}

func runAccountsAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	acc, err := b.AddAccount(ctx, journal.Account{
		Name:           accountName,
		InitialBalance: accountBalance,
		Category:       journal.Category(accountCategory),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added account %s (%s, %s)\n", acc.ID, acc.Name, acc.Category)
	return nil
}

func runAccountsList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	out := cmd.OutOrStdout()
	accounts := b.Accounts(ctx)
	if len(accounts) > 0 {
		fmt.Fprintf(out, "%-26s  %-16s  %-8s  %12s  %12s\n", "ID", "NAME", "CATEGORY", "INITIAL", "BALANCE")
		for _, a := range accounts {
			bal, err := b.Balance(ctx, a.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%-26s  %-16s  %-8s  %12.2f  %12.2f\n", a.ID, a.Name, a.Category, a.InitialBalance, bal)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%-8s  %12s  %12s\n", "CATEGORY", "STARTING", "BALANCE")
	for _, c := range journal.Categories {
		fmt.Fprintf(out, "%-8s  %12.2f  %12.2f\n", c, b.StartingBalance(ctx, c), b.CategoryBalance(ctx, c))
	}
	return nil
}

func runAccountsStart(cmd *cobra.Command, args []string) error {
	c, ok := journal.ParseCategory(args[0])
	if !ok {
		return fmt.Errorf("unknown category %q", args[0])
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	ctx := cmd.Context()
	b, done, err := openBook(ctx)
	if err != nil {
		return err
	}
	defer done()

	if err := b.SetStartingBalance(ctx, c, amount); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s starting balance set to %.2f\n", c, amount)
	return nil
}
