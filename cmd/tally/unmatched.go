package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tallyho/tally-ho/internal/cli"
	"github.com/tallyho/tally-ho/internal/config"
	"github.com/tallyho/tally-ho/internal/match"
)

func unmatchedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unmatched",
		Short: "List bank transactions not yet linked to a bill",
		RunE:  runUnmatched,
	}

	cmd.Flags().StringP("account", "a", "", "Restrict to one account")

	return cmd
}

func runUnmatched(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	var accountID *string
	if account, _ := cmd.Flags().GetString("account"); account != "" {
		accountID = &account
	}

	linker := match.NewLinker(store, config.LinkerConfig(viper.GetViper()))
	transactions, err := linker.GetUnmatched(ctx, accountID)
	if err != nil {
		return fmt.Errorf("failed to list unmatched transactions: %w", err)
	}

	if len(transactions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("No unmatched transactions"))
		return nil
	}

	var b strings.Builder
	for _, txn := range transactions {
		fmt.Fprintf(&b, "%s  %s  %10s  %s\n",
			txn.ID,
			txn.Date.Format("2006-01-02"),
			formatAmount(txn.AmountCents),
			txn.Description)
	}

	title := fmt.Sprintf("Unmatched Transactions (%d)", len(transactions))
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(title, strings.TrimRight(b.String(), "\n")))

	return nil
}
