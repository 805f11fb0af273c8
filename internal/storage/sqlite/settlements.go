package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mmynk/splitledger/internal/models"
)

const settlementColumns = "id, group_id, from_id, to_id, amount, currency, created_at, note"

// CreateSettlement persists a new settlement to the database.
func (s *SQLiteStore) CreateSettlement(ctx context.Context, settlement *models.Settlement) error {
	// Generate ID if not set
	if settlement.ID == "" {
		settlement.ID = uuid.New().String()
	}
	if settlement.CreatedAt == 0 {
		settlement.CreatedAt = time.Now().Unix()
	}

	var note interface{} = nil
	if settlement.Note != "" {
		note = settlement.Note
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO settlements ("+settlementColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		settlement.ID, settlement.GroupID, settlement.FromID, settlement.ToID,
		settlement.Amount, settlement.Currency, settlement.CreatedAt, note,
	)
	if err != nil {
		return fmt.Errorf("failed to insert settlement: %w", err)
	}

	return nil
}

// GetSettlement retrieves a settlement by ID.
func (s *SQLiteStore) GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE id = ?",
		settlementID,
	)
	settlement, err := scanSettlement(row)
	if err == sql.ErrNoRows {
		return nil, models.NotFound("settlement", settlementID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement: %w", err)
	}

	return settlement, nil
}

// ListSettlementsByGroup retrieves all settlements for a group, oldest first.
func (s *SQLiteStore) ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	return listSettlements(ctx, s.db, groupID)
}

func listSettlements(ctx context.Context, q querier, groupID string) ([]*models.Settlement, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+settlementColumns+" FROM settlements WHERE group_id = ? ORDER BY created_at, rowid",
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list settlements by group: %w", err)
	}
	defer rows.Close()

	var settlements []*models.Settlement
	for rows.Next() {
		settlement, err := scanSettlement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlements: %w", err)
	}

	return settlements, nil
}

// DeleteSettlement removes a settlement by ID.
func (s *SQLiteStore) DeleteSettlement(ctx context.Context, settlementID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM settlements WHERE id = ?", settlementID)
	if err != nil {
		return fmt.Errorf("failed to delete settlement: %w", err)
	}
	return requireAffected(res, "settlement", settlementID)
}

func scanSettlement(row rowScanner) (*models.Settlement, error) {
	settlement := &models.Settlement{}
	var note sql.NullString
	if err := row.Scan(&settlement.ID, &settlement.GroupID, &settlement.FromID, &settlement.ToID,
		&settlement.Amount, &settlement.Currency, &settlement.CreatedAt, &note); err != nil {
		return nil, err
	}
	if note.Valid {
		settlement.Note = note.String
	}
	return settlement, nil
}
