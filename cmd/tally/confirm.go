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

func confirmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <transaction-id> <bill-id>",
		Short: "Manually link a transaction to a bill",
		Long: `Link a transaction to a bill by hand and teach the linker from it.

A pattern distilled from the transaction's description is added to the
bill so future statements with the same wording match automatically.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			transactionID, billID := args[0], args[1]

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			linker := match.NewLinker(store, config.LinkerConfig(viper.GetViper()))
			if err := linker.ConfirmMatch(ctx, transactionID, billID); err != nil {
				return fmt.Errorf("confirmation failed: %w", err)
			}

			slog.Info(cli.FormatSuccess("Match confirmed"), "transaction", transactionID, "bill", billID)
			return nil
		},
	}
}
