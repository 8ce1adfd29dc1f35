package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tallyho/tally-ho/internal/cli"
	"github.com/tallyho/tally-ho/internal/config"
	"github.com/tallyho/tally-ho/internal/match"
)

func linkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Link unmatched bank transactions to bills",
		Long: `Run the statement linker over unmatched bank transactions.

Each transaction is scored against every active bill on description
patterns, amount proximity, and due-day proximity; the best match above
the threshold wins. Already-linked transactions are never revisited.`,
		RunE: runLink,
	}

	cmd.Flags().StringP("account", "a", "", "Restrict linking to one account")

	return cmd
}

func runLink(cmd *cobra.Command, _ []string) error {
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

	result, err := linker.LinkTransactions(ctx, accountID)
	if err != nil {
		return fmt.Errorf("linking failed: %w", err)
	}

	summary := fmt.Sprintf("Matched: %d\nStill unmatched: %d", result.Matched, result.TotalUnmatched)
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Linking Summary", summary))
	slog.Info(cli.FormatSuccess("Linking complete"), "matched", result.Matched, "unmatched", result.TotalUnmatched)

	return nil
}
