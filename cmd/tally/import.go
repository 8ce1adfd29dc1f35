package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tallyho/tally-ho/internal/cli"
	"github.com/tallyho/tally-ho/internal/common"
	"github.com/tallyho/tally-ho/internal/config"
	"github.com/tallyho/tally-ho/internal/importer"
	"github.com/tallyho/tally-ho/internal/match"
	"github.com/tallyho/tally-ho/internal/service"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Import transactions from a CSV export",
		Long: `Import transactions from a bank or card CSV export.

Rows already present in either store are skipped by fingerprint, so
re-importing an overlapping export is safe. Bank account imports run
the statement linker afterwards unless --no-link is given.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP("account", "a", "", "Account identifier to tag imported rows with (required)")
	cmd.Flags().String("store", "account", "Destination store: account or card")
	cmd.Flags().Bool("no-link", false, "Skip statement linking after a bank account import")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	path := args[0]

	accountID, _ := cmd.Flags().GetString("account")
	storeFlag, _ := cmd.Flags().GetString("store")
	noLink, _ := cmd.Flags().GetBool("no-link")

	txnStore, err := parseStore(storeFlag)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	var linker *match.Linker
	if txnStore == service.StoreAccount && !noLink {
		linker = match.NewLinker(store, config.LinkerConfig(viper.GetViper()))
	}

	imp := importer.NewCSVImporter(store, linker)

	var bar *progressbar.ProgressBar
	imp.SetProgress(func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Importing"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = bar.Set(done)
	})

	slog.Info(cli.FormatTitle("Importing transactions"), "file", path, "store", string(txnStore))

	result, err := imp.ImportFile(ctx, path, accountID, txnStore)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	for _, rowErr := range result.RowErrors {
		slog.Warn(cli.FormatWarning("Skipped malformed row"), "error", rowErr)
	}

	summary := fmt.Sprintf("Imported: %d\nSkipped (duplicates): %d", result.Imported, result.Skipped)
	if linker != nil {
		summary += fmt.Sprintf("\nLinked to bills: %d", result.Linked)
	}
	if len(result.RowErrors) > 0 {
		summary += fmt.Sprintf("\nMalformed rows: %d", len(result.RowErrors))
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox("Import Summary", summary))
	common.LogInfo(cli.FormatSuccess("Import complete"), common.Fields{
		"imported":   result.Imported,
		"skipped":    result.Skipped,
		"row_errors": strings.Join(result.RowErrors, "; "),
	})

	return nil
}
