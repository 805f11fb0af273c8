// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// ExpenseFilter narrows ListExpenses. Zero values disable a condition.
type ExpenseFilter struct {
	// From and To bound the expense date (Unix seconds, inclusive).
	From int64
	To   int64

	// Category matches the expense category exactly.
	Category string
}

// Store defines the interface for ledger storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the ledger layer.
//
// Every method that writes more than one row does so atomically. Lookups of
// unknown IDs return a *models.NotFoundError.
type Store interface {
	// CreateGroup persists a new group. The ID and CreatedAt fields are
	// populated by the store when empty.
	CreateGroup(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, groupID string) (*models.Group, error)
	ListGroups(ctx context.Context) ([]*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error

	// DeleteGroup removes the group with its participants, expenses and settlements.
	DeleteGroup(ctx context.Context, groupID string) error

	AddParticipant(ctx context.Context, participant *models.Participant) error
	GetParticipant(ctx context.Context, participantID string) (*models.Participant, error)

	// ListParticipants returns participants ordered by name. Removed
	// participants are only included when includeRemoved is set.
	ListParticipants(ctx context.Context, groupID string, includeRemoved bool) ([]*models.Participant, error)
	UpdateParticipant(ctx context.Context, participant *models.Participant) error

	// RemoveParticipant soft-deletes a participant. Expenses referencing it
	// are left untouched.
	RemoveParticipant(ctx context.Context, participantID string, removedAt int64) error

	// CreateExpense stores the expense and its split rows in one transaction.
	CreateExpense(ctx context.Context, expense *models.Expense) error
	GetExpense(ctx context.Context, expenseID string) (*models.Expense, error)

	// UpdateExpense replaces the expense fields and its whole split set.
	UpdateExpense(ctx context.Context, expense *models.Expense) error
	DeleteExpense(ctx context.Context, expenseID string) error

	// ListExpenses returns a group's expenses in insertion order.
	ListExpenses(ctx context.Context, groupID string, filter ExpenseFilter) ([]*models.Expense, error)

	CreateSettlement(ctx context.Context, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, settlementID string) (*models.Settlement, error)
	ListSettlementsByGroup(ctx context.Context, groupID string) ([]*models.Settlement, error)
	DeleteSettlement(ctx context.Context, settlementID string) error

	// Snapshot reads the group, all participants (removed included), expenses
	// and settlements in a single read transaction.
	Snapshot(ctx context.Context, groupID string) (*models.Snapshot, error)

	// SaveRate records an exchange rate.
	SaveRate(ctx context.Context, rate *models.ExchangeRate) error

	// LatestRate returns the most recently recorded rate for a pair.
	LatestRate(ctx context.Context, from, to string) (*models.ExchangeRate, error)

	// Close releases any resources held by the store.
	Close() error
}
