package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

const expenseColumns = "id, group_id, description, amount, currency, payer_id, category, date, split_kind, created_at, updated_at"

// CreateExpense persists a new expense with its split rows in one transaction.
func (s *SQLiteStore) CreateExpense(ctx context.Context, e *models.Expense) error {
	now := time.Now().Unix()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = now
	}
	if e.UpdatedAt == 0 {
		e.UpdatedAt = e.CreatedAt
	}
	if e.Date == 0 {
		e.Date = e.CreatedAt
	}
	if e.Description == "" {
		e.Description = generateDescription(e.Category, e.Date)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO expenses ("+expenseColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		e.ID, e.GroupID, e.Description, e.Amount, e.Currency, e.PayerID, e.Category, e.Date,
		splitKindColumn(e.Split), e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	if err := insertSplits(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetExpense retrieves an expense by ID, including its split.
func (s *SQLiteStore) GetExpense(ctx context.Context, expenseID string) (*models.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", expenseID)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return nil, models.NotFound("expense", expenseID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		"SELECT expense_id, participant_id, value FROM expense_splits WHERE expense_id = ?",
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense splits: %w", err)
	}
	splits, err := scanSplits(rows)
	if err != nil {
		return nil, err
	}
	e.Split.Entries = splits[e.ID]

	return e, nil
}

// UpdateExpense replaces an expense's fields and its entire split set.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, e *models.Expense) error {
	if e.UpdatedAt == 0 {
		e.UpdatedAt = time.Now().Unix()
	}
	if e.Date == 0 {
		e.Date = e.UpdatedAt
	}
	if e.Description == "" {
		e.Description = generateDescription(e.Category, e.Date)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses
		 SET description = ?, amount = ?, currency = ?, payer_id = ?, category = ?, date = ?, split_kind = ?, updated_at = ?
		 WHERE id = ?`,
		e.Description, e.Amount, e.Currency, e.PayerID, e.Category, e.Date,
		splitKindColumn(e.Split), e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if err := requireAffected(res, "expense", e.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM expense_splits WHERE expense_id = ?", e.ID); err != nil {
		return fmt.Errorf("failed to delete expense splits: %w", err)
	}
	if err := insertSplits(ctx, tx, e); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpense removes an expense and, through the foreign key, its splits.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, expenseID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", expenseID)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return requireAffected(res, "expense", expenseID)
}

// ListExpenses retrieves a group's expenses in insertion order.
func (s *SQLiteStore) ListExpenses(ctx context.Context, groupID string, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	return listExpenses(ctx, tx, groupID, filter)
}

func listExpenses(ctx context.Context, q querier, groupID string, filter storage.ExpenseFilter) ([]*models.Expense, error) {
	query := "SELECT " + expenseColumns + " FROM expenses WHERE group_id = ?"
	args := []any{groupID}
	if filter.From != 0 {
		query += " AND date >= ?"
		args = append(args, filter.From)
	}
	if filter.To != 0 {
		query += " AND date <= ?"
		args = append(args, filter.To)
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, filter.Category)
	}
	query += " ORDER BY rowid"

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	var expenses []*models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}

	// Load all split rows of the group at once instead of one query per expense.
	splitRows, err := q.QueryContext(ctx,
		`SELECT s.expense_id, s.participant_id, s.value
		 FROM expense_splits s JOIN expenses e ON e.id = s.expense_id
		 WHERE e.group_id = ?`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get expense splits: %w", err)
	}
	splits, err := scanSplits(splitRows)
	if err != nil {
		return nil, err
	}
	for _, e := range expenses {
		e.Split.Entries = splits[e.ID]
	}

	return expenses, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (*models.Expense, error) {
	e := &models.Expense{}
	var kind string
	if err := row.Scan(&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.Currency, &e.PayerID,
		&e.Category, &e.Date, &kind, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	if kind != "" {
		k, err := models.ParseSplitKind(kind)
		if err != nil {
			return nil, err
		}
		e.Split.Kind = k
	}
	return e, nil
}

// scanSplits consumes rows of (expense_id, participant_id, value) and closes them.
func scanSplits(rows *sql.Rows) (map[string]map[models.ParticipantID]float64, error) {
	defer rows.Close()

	splits := make(map[string]map[models.ParticipantID]float64)
	for rows.Next() {
		var expenseID, participantID string
		var value float64
		if err := rows.Scan(&expenseID, &participantID, &value); err != nil {
			return nil, fmt.Errorf("failed to scan expense split: %w", err)
		}
		if splits[expenseID] == nil {
			splits[expenseID] = make(map[models.ParticipantID]float64)
		}
		splits[expenseID][participantID] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expense splits: %w", err)
	}
	return splits, nil
}

func insertSplits(ctx context.Context, tx *sql.Tx, e *models.Expense) error {
	for _, id := range e.Split.Participants() {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO expense_splits (expense_id, participant_id, value) VALUES (?, ?, ?)",
			e.ID, id, e.Split.Entries[id],
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}
	return nil
}

func splitKindColumn(split models.Split) string {
	if split.Empty() {
		return ""
	}
	return split.Kind.String()
}

// generateDescription creates a description for expenses entered without one.
func generateDescription(category string, date int64) string {
	day := time.Unix(date, 0).UTC().Format("Jan 2, 2006")
	if category == "" {
		return fmt.Sprintf("Expense - %s", day)
	}
	r, size := utf8.DecodeRuneInString(category)
	return fmt.Sprintf("%s - %s", string(unicode.ToUpper(r))+category[size:], day)
}
