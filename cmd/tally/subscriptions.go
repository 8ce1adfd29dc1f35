package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tallyho/tally-ho/internal/cli"
	"github.com/tallyho/tally-ho/internal/config"
	"github.com/tallyho/tally-ho/internal/model"
	"github.com/tallyho/tally-ho/internal/recurring"
)

func subscriptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "subscriptions",
		Aliases: []string{"subs"},
		Short:   "Detect and manage recurring subscriptions",
	}

	cmd.AddCommand(subscriptionsDetectCmd())
	cmd.AddCommand(subscriptionsAddCmd())
	cmd.AddCommand(subscriptionsListCmd())
	cmd.AddCommand(subscriptionsCancelCmd())

	return cmd
}

func subscriptionsDetectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Scan recent charges for recurring patterns",
		Long: `Scan recent debits across bank and card stores for vendors that
charge on a regular cadence. Candidates are shown with a confidence
score; confirmed candidates become tracked subscriptions.`,
		RunE: runSubscriptionsDetect,
	}

	cmd.Flags().Int("window-months", 0, "How many months back to scan (0 = configured default)")
	cmd.Flags().BoolP("yes", "y", false, "Confirm every candidate without prompting")

	return cmd
}

func runSubscriptionsDetect(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	windowMonths, _ := cmd.Flags().GetInt("window-months")
	autoYes, _ := cmd.Flags().GetBool("yes")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	detector := recurring.NewDetector(store, config.DetectorConfig(viper.GetViper()))

	slog.Info(cli.FormatTitle("Detecting recurring charges"))

	candidates, err := detector.Detect(ctx, windowMonths)
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	if len(candidates) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("No new recurring charges found"))
		return nil
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderCandidates(candidates))

	confirmed := candidates
	if !autoYes {
		confirmed, err = pickCandidates(cmd, candidates)
		if err != nil {
			return err
		}
	}

	if len(confirmed) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("Nothing confirmed"))
		return nil
	}

	created, err := detector.ConfirmCandidates(ctx, confirmed)
	if err != nil {
		return fmt.Errorf("confirmation failed: %w", err)
	}

	slog.Info(cli.FormatSuccess("Subscriptions created"), "count", created)
	return nil
}

func renderCandidates(candidates []model.DetectionCandidate) string {
	var b strings.Builder
	for i, c := range candidates {
		fmt.Fprintf(&b, "%2d. %-30s %s %10s  confidence %3d  next ~%s\n",
			i+1,
			c.VendorKey,
			c.Frequency,
			formatAmount(c.AvgAmountCents),
			c.Confidence,
			c.NextCharge.Format("2006-01-02"))
	}

	title := fmt.Sprintf("Recurring Charge Candidates (%d)", len(candidates))
	return cli.RenderBox(title, strings.TrimRight(b.String(), "\n"))
}

func pickCandidates(cmd *cobra.Command, candidates []model.DetectionCandidate) ([]model.DetectionCandidate, error) {
	prompter := cli.NewPrompter(cmd.InOrStdin(), cmd.OutOrStdout())

	confirmed := make([]model.DetectionCandidate, 0, len(candidates))
	for _, c := range candidates {
		question := fmt.Sprintf("Track %s (%s, %s)?", c.VendorKey, c.Frequency, formatAmount(c.AvgAmountCents))
		yes, err := prompter.Confirm(cmd.Context(), question, true)
		if err != nil {
			if errors.Is(err, cli.ErrInputCancelled) {
				return confirmed, nil
			}
			return nil, err
		}
		if yes {
			confirmed = append(confirmed, c)
		}
	}

	return confirmed, nil
}

func subscriptionsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Track a subscription by hand",
		Args:  cobra.ExactArgs(1),
		RunE:  runSubscriptionsAdd,
	}

	cmd.Flags().String("amount", "", "Amount in dollars per billing cycle (required)")
	cmd.Flags().String("frequency", "monthly", "Billing frequency: weekly, monthly, quarterly, yearly")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func runSubscriptionsAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	name := args[0]

	amountStr, _ := cmd.Flags().GetString("amount")
	frequencyStr, _ := cmd.Flags().GetString("frequency")

	amountCents, err := parseAmount(amountStr)
	if err != nil {
		return err
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	detector := recurring.NewDetector(store, config.DetectorConfig(viper.GetViper()))

	sub, err := detector.AddSubscription(ctx, name, amountCents, model.Frequency(frequencyStr))
	if err != nil {
		return fmt.Errorf("failed to add subscription: %w", err)
	}

	slog.Info(cli.FormatSuccess("Subscription added"),
		"id", sub.ID,
		"name", sub.Name,
		"amount", formatAmount(sub.AmountCents),
		"frequency", string(sub.Frequency))

	return nil
}

func subscriptionsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracked subscriptions",
		RunE:  runSubscriptionsList,
	}

	cmd.Flags().Bool("all", false, "Include paused and cancelled subscriptions")

	return cmd
}

func runSubscriptionsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	all, _ := cmd.Flags().GetBool("all")

	subs, err := store.ListSubscriptions(ctx, !all)
	if err != nil {
		return fmt.Errorf("failed to list subscriptions: %w", err)
	}

	if len(subs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatWarning("No subscriptions tracked yet"))
		return nil
	}

	var monthlyCents int64
	var b strings.Builder
	for _, sub := range subs {
		next := ""
		if !sub.NextChargeDate.IsZero() {
			next = "  next " + sub.NextChargeDate.Format("2006-01-02")
		}
		status := ""
		if sub.Status != model.SubscriptionActive {
			status = cli.SubtleStyle.Render("  (" + string(sub.Status) + ")")
		}
		fmt.Fprintf(&b, "%s  %-25s %10s %-9s%s%s\n",
			sub.ID,
			sub.Name,
			formatAmount(sub.AmountCents),
			sub.Frequency,
			next,
			status)

		if sub.Status == model.SubscriptionActive {
			monthlyCents += monthlyEquivalentCents(sub)
		}
	}

	fmt.Fprintf(&b, "\nEstimated monthly spend: %s", formatAmount(monthlyCents))

	title := fmt.Sprintf("Subscriptions (%d)", len(subs))
	fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(title, b.String()))

	return nil
}

// monthlyEquivalentCents normalizes a subscription's amount to a
// per-month figure for the spend total.
func monthlyEquivalentCents(sub model.Subscription) int64 {
	switch sub.Frequency {
	case model.FrequencyWeekly:
		return sub.AmountCents * 52 / 12
	case model.FrequencyMonthly:
		return sub.AmountCents
	case model.FrequencyQuarterly:
		return sub.AmountCents / 3
	case model.FrequencyYearly:
		return sub.AmountCents / 12
	}
	return sub.AmountCents
}

func subscriptionsCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <subscription-id>",
		Short: "Mark a subscription as cancelled",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id := args[0]

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer closeStorage(store)

			if err := store.UpdateSubscriptionStatus(ctx, id, model.SubscriptionCancelled); err != nil {
				return fmt.Errorf("failed to cancel subscription: %w", err)
			}

			slog.Info(cli.FormatSuccess("Subscription cancelled"), "id", id)
			return nil
		},
	}
}
