package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/tallyho/tally-ho/internal/cli"
	"github.com/tallyho/tally-ho/internal/model"
)

func billsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bills",
		Short: "Manage recurring bills",
		Long:  `Create and list the bills that statement lines are linked against.`,
	}

	cmd.AddCommand(billsAddCmd())
	cmd.AddCommand(billsListCmd())

	return cmd
}

func billsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a bill",
		Long: `Add a bill to link statement lines against.

Patterns are matched case-insensitively as substrings of transaction
descriptions; the linker also learns new patterns from confirmations.`,
		Args: cobra.ExactArgs(1),
		RunE: runBillsAdd,
	}

	cmd.Flags().String("amount", "", "Expected amount in dollars, e.g. 142.00 (required)")
	cmd.Flags().Int("due-day", 1, "Day of month the bill is due (1-31)")
	cmd.Flags().StringSlice("pattern", nil, "Description patterns to match (repeatable)")
	cmd.Flags().String("frequency", "monthly", "Billing frequency: weekly, monthly, quarterly, yearly")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runBillsAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := args[0]

	amountStr, _ := cmd.Flags().GetString("amount")
	dueDay, _ := cmd.Flags().GetInt("due-day")
	patterns, _ := cmd.Flags().GetStringSlice("pattern")
	frequencyStr, _ := cmd.Flags().GetString("frequency")

	amountCents, err := parseAmount(amountStr)
	if err != nil {
		return err
	}

	frequency := model.Frequency(frequencyStr)
	if !frequency.Valid() {
		return fmt.Errorf("invalid frequency %q", frequencyStr)
	}

	// Default the patterns to the uppercased name so a fresh bill can
	// match something before any confirmations teach it more.
	if len(patterns) == 0 {
		patterns = []string{strings.ToUpper(name)}
	}
	for i := range patterns {
		patterns[i] = strings.ToUpper(patterns[i])
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	bill := &model.Bill{
		ID:            uuid.NewString(),
		Name:          name,
		MatchPatterns: patterns,
		Frequency:     frequency,
		AmountCents:   amountCents,
		DueDay:        dueDay,
		Active:        true,
	}

	if err := store.CreateBill(ctx, bill); err != nil {
		return fmt.Errorf("failed to create bill: %w", err)
	}

	slog.Info(cli.FormatSuccess("Bill created"),
		"id", bill.ID,
		"name", bill.Name,
		"amount", formatAmount(bill.AmountCents),
		"due_day", bill.DueDay)

	return nil
}

func billsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bills",
		RunE:  runBillsList,
	}

	cmd.Flags().Bool("all", false, "Include inactive bills")

	return cmd
}

func runBillsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	all, _ := cmd.Flags().GetBool("all")

	bills, err := store.ListBills(ctx, !all)
	if err != nil {
		return fmt.Errorf("failed to list bills: %w", err)
	}

	if len(bills) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No bills yet. Add one with 'tally bills add'"))
		return nil
	}

	var b strings.Builder
	for _, bill := range bills {
		status := ""
		if !bill.Active {
			status = cli.SubtleStyle.Render("  (inactive)")
		}
		fmt.Fprintf(&b, "%s  %-20s  %10s  due day %2d  %s%s\n",
			bill.ID,
			bill.Name,
			formatAmount(bill.AmountCents),
			bill.DueDay,
			strings.Join(bill.MatchPatterns, ", "),
			status)
	}

	title := fmt.Sprintf("Bills (%d)", len(bills))
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(title, strings.TrimRight(b.String(), "\n")))

	return nil
}
