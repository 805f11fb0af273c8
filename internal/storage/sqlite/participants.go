package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mmynk/splitledger/internal/models"
)

const participantColumns = "id, group_id, name, email, created_at, removed_at"

// AddParticipant inserts a participant into an existing group.
func (s *SQLiteStore) AddParticipant(ctx context.Context, p *models.Participant) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt == 0 {
		p.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO participants ("+participantColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.GroupID, p.Name, p.Email, p.CreatedAt, p.RemovedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	return nil
}

// GetParticipant retrieves a participant by ID, removed or not.
func (s *SQLiteStore) GetParticipant(ctx context.Context, participantID string) (*models.Participant, error) {
	p := &models.Participant{}
	err := s.db.QueryRowContext(ctx,
		"SELECT "+participantColumns+" FROM participants WHERE id = ?",
		participantID,
	).Scan(&p.ID, &p.GroupID, &p.Name, &p.Email, &p.CreatedAt, &p.RemovedAt)
	if err == sql.ErrNoRows {
		return nil, models.NotFound("participant", participantID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// ListParticipants retrieves a group's participants ordered by name.
func (s *SQLiteStore) ListParticipants(ctx context.Context, groupID string, includeRemoved bool) ([]*models.Participant, error) {
	return listParticipants(ctx, s.db, groupID, includeRemoved)
}

func listParticipants(ctx context.Context, q querier, groupID string, includeRemoved bool) ([]*models.Participant, error) {
	query := "SELECT " + participantColumns + " FROM participants WHERE group_id = ?"
	if !includeRemoved {
		query += " AND removed_at = 0"
	}
	query += " ORDER BY name, id"

	rows, err := q.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []*models.Participant
	for rows.Next() {
		p := &models.Participant{}
		if err := rows.Scan(&p.ID, &p.GroupID, &p.Name, &p.Email, &p.CreatedAt, &p.RemovedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return participants, nil
}

// UpdateParticipant updates a participant's name and email.
func (s *SQLiteStore) UpdateParticipant(ctx context.Context, p *models.Participant) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE participants SET name = ?, email = ? WHERE id = ?",
		p.Name, p.Email, p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update participant: %w", err)
	}
	return requireAffected(res, "participant", p.ID)
}

// RemoveParticipant marks an active participant as removed.
func (s *SQLiteStore) RemoveParticipant(ctx context.Context, participantID string, removedAt int64) error {
	if removedAt == 0 {
		removedAt = time.Now().Unix()
	}
	res, err := s.db.ExecContext(ctx,
		"UPDATE participants SET removed_at = ? WHERE id = ? AND removed_at = 0",
		removedAt, participantID,
	)
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return requireAffected(res, "participant", participantID)
}
