package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/ledger"
)

func (a *app) balancesCmd() *cobra.Command {
	var currency string
	cmd := &cobra.Command{
		Use:   "balances GROUP",
		Short: "Show what each participant paid and owes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			balances, _, err := a.ledger.Settle(cmd.Context(), args[0], currency)
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintf(tw, "NAME\tPAID\tOWED\tNET (%s)\n", strings.ToUpper(strings.TrimSpace(currency)))
			for _, b := range balances {
				name := b.Name
				if b.Removed {
					name += " (removed)"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, money(b.TotalPaid), money(b.TotalOwed), money(b.Net))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "SEK", "currency to report in")
	return cmd
}

func (a *app) settleCmd() *cobra.Command {
	var currency string
	cmd := &cobra.Command{
		Use:   "settle GROUP",
		Short: "Suggest the payments that settle the group",
		Long: `Suggest payments that bring every balance to zero.

Nothing is recorded; use "splitctl pay" once a payment has been made.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transfers, err := a.ledger.PlanSettlement(cmd.Context(), args[0], currency)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(transfers) == 0 {
				fmt.Fprintln(out, "Everyone is settled up")
				return nil
			}
			for _, t := range transfers {
				fmt.Fprintf(out, "%s -> %s: %s %s\n", t.FromName, t.ToName, money(t.Amount), t.Currency)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "SEK", "currency to settle in")
	return cmd
}

func (a *app) payCmd() *cobra.Command {
	var (
		amount   float64
		currency string
		note     string
	)
	cmd := &cobra.Command{
		Use:   "pay GROUP FROM TO",
		Short: "Record a payment made between two participants",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			from, err := a.resolveParticipant(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			to, err := a.resolveParticipant(ctx, args[0], args[2])
			if err != nil {
				return err
			}
			s, err := a.ledger.RecordSettlement(ctx, ledger.SettlementInput{
				GroupID:  args[0],
				FromID:   from,
				ToID:     to,
				Amount:   amount,
				Currency: currency,
				Note:     note,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Payment recorded: %s\n", s.ID)
			return nil
		},
	}
	cmd.Flags().Float64Var(&amount, "amount", 0, "amount paid")
	cmd.Flags().StringVar(&currency, "currency", "SEK", "currency code")
	cmd.Flags().StringVar(&note, "note", "", "optional note")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	var currency string
	cmd := &cobra.Command{
		Use:   "stats GROUP",
		Short: "Show group statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := a.ledger.Statistics(cmd.Context(), args[0], currency)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Participants: %d (%d removed)\n", stats.ParticipantCount, stats.RemovedCount)
			fmt.Fprintf(out, "Expenses:     %d (%d unallocated)\n", stats.ExpenseCount, stats.UnallocatedCount)
			fmt.Fprintf(out, "Payments:     %d\n", stats.SettlementCount)
			for _, t := range stats.TotalsByCurrency {
				fmt.Fprintf(out, "Total %s:    %s\n", t.Currency, t.Amount.StringFixed(2))
			}
			if stats.Currency != "" {
				fmt.Fprintf(out, "Total:        %s %s\n", stats.Total.StringFixed(2), stats.Currency)
			}
			if stats.LargestExpenseID != "" {
				fmt.Fprintf(out, "Largest:      %s\n", stats.LargestExpenseDesc)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&currency, "currency", "", "also convert the totals into this currency")
	return cmd
}

func (a *app) rateCmd() *cobra.Command {
	rate := &cobra.Command{
		Use:   "rate",
		Short: "Manage exchange rates",
	}
	rate.AddCommand(&cobra.Command{
		Use:   "set FROM TO RATE",
		Short: "Store a manual exchange rate (1 FROM = RATE TO)",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid rate %q: %w", args[2], err)
			}
			if err := a.ledger.SetRate(cmd.Context(), args[0], args[1], r); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Rate saved")
			return nil
		},
	})
	return rate
}
