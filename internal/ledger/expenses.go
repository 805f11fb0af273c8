package ledger

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// ExpenseInput describes an expense to add or the full replacement of an
// existing one.
type ExpenseInput struct {
	GroupID     string
	Description string
	Amount      float64
	Currency    string
	PayerID     models.ParticipantID
	Category    string

	// Date is the Unix timestamp of the purchase; zero means now.
	Date int64

	// Split may be empty. The expense is then charged back to the payer and
	// reported as unallocated.
	Split models.Split
}

// AddExpense validates and records a new expense. Nothing is written when an
// error is returned.
func (l *Ledger) AddExpense(ctx context.Context, in ExpenseInput) (string, error) {
	unlock := l.locks.lock(in.GroupID)
	defer unlock()

	if _, err := l.store.GetGroup(ctx, in.GroupID); err != nil {
		return "", err
	}
	members, err := l.members(ctx, in.GroupID)
	if err != nil {
		return "", err
	}

	expense, err := l.buildExpense(in, members)
	if err != nil {
		return "", l.reject(err)
	}
	expense.CreatedAt = l.now().Unix()
	expense.UpdatedAt = expense.CreatedAt

	if err := l.store.CreateExpense(ctx, expense); err != nil {
		return "", err
	}

	l.mutated("add_expense")
	slog.Info("Expense added",
		"group_id", expense.GroupID,
		"expense_id", expense.ID,
		"amount", expense.Amount,
		"currency", expense.Currency,
		"split", expense.Split.Kind,
		"participants", len(expense.Split.Entries),
	)
	if expense.Unallocated() {
		slog.Warn("Expense has no split, charged to payer", "expense_id", expense.ID, "payer_id", expense.PayerID)
	}
	return expense.ID, nil
}

// UpdateExpense replaces an expense, split included. Participants referenced
// by the current version stay valid even if they were removed since; any
// other participant must be an active member.
func (l *Ledger) UpdateExpense(ctx context.Context, expenseID string, in ExpenseInput) error {
	current, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	// Expenses never move between groups.
	in.GroupID = current.GroupID

	unlock := l.locks.lock(current.GroupID)
	defer unlock()

	// Re-read under the lock: a concurrent update may have changed the split.
	current, err = l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}
	allowed, err := l.members(ctx, current.GroupID)
	if err != nil {
		return err
	}
	allowed[current.PayerID] = true
	for id := range current.Split.Entries {
		allowed[id] = true
	}

	expense, err := l.buildExpense(in, allowed)
	if err != nil {
		return l.reject(err)
	}
	expense.ID = current.ID
	expense.CreatedAt = current.CreatedAt
	expense.UpdatedAt = l.now().Unix()

	if err := l.store.UpdateExpense(ctx, expense); err != nil {
		return err
	}

	l.mutated("update_expense")
	slog.Info("Expense updated", "group_id", expense.GroupID, "expense_id", expense.ID, "amount", expense.Amount)
	return nil
}

// RemoveExpense deletes an expense and its split.
func (l *Ledger) RemoveExpense(ctx context.Context, expenseID string) error {
	current, err := l.store.GetExpense(ctx, expenseID)
	if err != nil {
		return err
	}

	unlock := l.locks.lock(current.GroupID)
	defer unlock()

	if err := l.store.DeleteExpense(ctx, expenseID); err != nil {
		return err
	}

	l.mutated("remove_expense")
	slog.Info("Expense removed", "group_id", current.GroupID, "expense_id", expenseID)
	return nil
}

// GetExpense returns one expense.
func (l *Ledger) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	return l.store.GetExpense(ctx, expenseID)
}

// ListExpenses returns a group's expenses in the order they were added. A nil
// filter returns everything.
func (l *Ledger) ListExpenses(ctx context.Context, groupID string, filter *storage.ExpenseFilter) ([]*models.Expense, error) {
	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	var f storage.ExpenseFilter
	if filter != nil {
		f = *filter
	}
	return l.store.ListExpenses(ctx, groupID, f)
}

// buildExpense checks an input against the allowed participants and returns
// the expense to persist.
func (l *Ledger) buildExpense(in ExpenseInput, allowed map[models.ParticipantID]bool) (*models.Expense, error) {
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return nil, &models.ValidationError{
			Rule:    models.RuleAmountNotPositive,
			Value:   in.Amount,
			Message: "amount must be greater than zero",
		}
	}
	currency, err := calculator.NormalizeCurrency(in.Currency)
	if err != nil {
		return nil, err
	}
	if !allowed[in.PayerID] {
		return nil, &models.ValidationError{
			Rule:          models.RuleUnknownPayer,
			ParticipantID: in.PayerID,
			Message:       "payer " + in.PayerID + " is not an active member of the group",
		}
	}
	if err := calculator.ValidateSplit(in.Amount, in.Split, allowed); err != nil {
		return nil, err
	}

	date := in.Date
	if date == 0 {
		date = l.now().Unix()
	}
	return &models.Expense{
		GroupID:     in.GroupID,
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		Currency:    currency,
		PayerID:     in.PayerID,
		Category:    strings.TrimSpace(in.Category),
		Date:        date,
		Split:       in.Split.Clone(),
	}, nil
}
