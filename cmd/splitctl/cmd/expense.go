package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

type expenseFlags struct {
	amount   float64
	currency string
	payer    string
	desc     string
	category string
	date     string
	split    string
	equal    string
	fixed    bool
	none     bool
}

func (a *app) expenseCmd() *cobra.Command {
	expense := &cobra.Command{
		Use:     "expense",
		Aliases: []string{"e"},
		Short:   "Manage expenses",
	}

	var f expenseFlags
	add := &cobra.Command{
		Use:   "add GROUP",
		Short: "Add an expense",
		Long: `Add an expense paid by one participant.

Without --split or --equal the amount is shared equally by all active
participants. Participants are given by name or ID.

Examples:
  splitctl expense add <group> --payer Anna --amount 900 --currency SEK --desc Hotel
  splitctl expense add <group> --payer Anna --amount 100 --currency EUR --equal Anna,Erik
  splitctl expense add <group> --payer Erik --amount 300 --currency SEK --split Anna=100,Erik=200 --fixed`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			in, err := a.expenseInput(ctx, args[0], f)
			if err != nil {
				return err
			}
			id, err := a.ledger.AddExpense(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expense added: %s\n", id)
			if in.Split.Empty() {
				fmt.Fprintln(cmd.OutOrStdout(), "Warning: the expense has no split and is charged to the payer")
			}
			return nil
		},
	}
	add.Flags().Float64Var(&f.amount, "amount", 0, "amount paid")
	add.Flags().StringVar(&f.currency, "currency", "SEK", "currency code")
	add.Flags().StringVar(&f.payer, "payer", "", "participant who paid")
	add.Flags().StringVar(&f.desc, "desc", "", "description")
	add.Flags().StringVar(&f.category, "category", "", "category")
	add.Flags().StringVar(&f.date, "date", "", "date of the expense (YYYY-MM-DD, default today)")
	add.Flags().StringVar(&f.split, "split", "", "explicit split, e.g. Anna=0.5,Erik=0.5")
	add.Flags().StringVar(&f.equal, "equal", "", "share equally among these participants")
	add.Flags().BoolVar(&f.fixed, "fixed", false, "treat --split values as amounts instead of shares")
	add.Flags().BoolVar(&f.none, "unallocated", false, "record without a split")
	_ = add.MarkFlagRequired("amount")
	_ = add.MarkFlagRequired("payer")
	add.MarkFlagsMutuallyExclusive("split", "equal", "unallocated")
	expense.AddCommand(add)

	var category string
	list := &cobra.Command{
		Use:   "list GROUP",
		Short: "List a group's expenses",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			expenses, err := a.ledger.ListExpenses(ctx, args[0], &storage.ExpenseFilter{Category: category})
			if err != nil {
				return err
			}
			names, err := a.participantNames(ctx, args[0])
			if err != nil {
				return err
			}
			tw := newTable(cmd.OutOrStdout())
			fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tAMOUNT\tPAYER\tSPLIT")
			for _, e := range expenses {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s %s\t%s\t%s\n",
					e.ID, date(e.Date), e.Description, money(e.Amount), e.Currency,
					names[e.PayerID], describeSplit(e.Split, names))
			}
			return tw.Flush()
		},
	}
	list.Flags().StringVar(&category, "category", "", "only show this category")
	expense.AddCommand(list)

	expense.AddCommand(&cobra.Command{
		Use:   "remove EXPENSE",
		Short: "Remove an expense",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ledger.RemoveExpense(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Expense removed")
			return nil
		},
	})

	return expense
}

func (a *app) expenseInput(ctx context.Context, groupID string, f expenseFlags) (ledger.ExpenseInput, error) {
	in := ledger.ExpenseInput{
		GroupID:     groupID,
		Description: f.desc,
		Amount:      f.amount,
		Currency:    f.currency,
		Category:    f.category,
	}

	payer, err := a.resolveParticipant(ctx, groupID, f.payer)
	if err != nil {
		return in, err
	}
	in.PayerID = payer

	if f.date != "" {
		d, err := time.ParseInLocation("2006-01-02", f.date, time.Local)
		if err != nil {
			return in, fmt.Errorf("invalid --date %q: %w", f.date, err)
		}
		in.Date = d.Unix()
	}

	switch {
	case f.none:
	case f.split != "":
		entries, err := a.parseSplit(ctx, groupID, f.split)
		if err != nil {
			return in, err
		}
		if f.fixed {
			in.Split = models.FixedAmounts(entries)
		} else {
			in.Split = models.Proportional(entries)
		}
	case f.equal != "":
		ids, err := a.resolveParticipants(ctx, groupID, f.equal)
		if err != nil {
			return in, err
		}
		in.Split = calculator.EqualSplit(ids...)
	default:
		ps, err := a.ledger.ListParticipants(ctx, groupID, false)
		if err != nil {
			return in, err
		}
		ids := make([]models.ParticipantID, 0, len(ps))
		for _, p := range ps {
			ids = append(ids, p.ID)
		}
		in.Split = calculator.EqualSplit(ids...)
	}
	return in, nil
}

// parseSplit reads "name=value,name=value".
func (a *app) parseSplit(ctx context.Context, groupID, s string) (map[models.ParticipantID]float64, error) {
	entries := make(map[models.ParticipantID]float64)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		ref, raw, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("invalid split entry %q: want name=value", part)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid split value in %q: %w", part, err)
		}
		id, err := a.resolveParticipant(ctx, groupID, strings.TrimSpace(ref))
		if err != nil {
			return nil, err
		}
		entries[id] += v
	}
	return entries, nil
}

func (a *app) participantNames(ctx context.Context, groupID string) (map[models.ParticipantID]string, error) {
	ps, err := a.ledger.ListParticipants(ctx, groupID, true)
	if err != nil {
		return nil, err
	}
	names := make(map[models.ParticipantID]string, len(ps))
	for _, p := range ps {
		names[p.ID] = p.Name
	}
	return names, nil
}

func describeSplit(s models.Split, names map[models.ParticipantID]string) string {
	if s.Empty() {
		return "(unallocated)"
	}
	parts := make([]string, 0, len(s.Entries))
	for _, id := range s.Participants() {
		v := s.Entries[id]
		if s.Kind == models.SplitFixed {
			parts = append(parts, names[id]+"="+money(v))
		} else {
			parts = append(parts, names[id]+"="+strconv.FormatFloat(v*100, 'f', 1, 64)+"%")
		}
	}
	return strings.Join(parts, ", ")
}
