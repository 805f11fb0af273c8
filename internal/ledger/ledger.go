// Package ledger is the system of record for group expenses.
//
// A Ledger validates every mutation before it reaches storage, serialises
// mutations per group and derives balances and settlement plans from
// consistent snapshots. All operations are safe for concurrent use.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

// Ledger records groups, participants, expenses and settlements.
type Ledger struct {
	store storage.Store
	rates calculator.RateProvider
	locks *groupLocks
	now   func() time.Time
}

// New creates a Ledger on top of store. rates may be nil, in which case only
// single-currency groups can be balanced.
func New(store storage.Store, rates calculator.RateProvider) *Ledger {
	return &Ledger{
		store: store,
		rates: rates,
		locks: newGroupLocks(),
		now:   time.Now,
	}
}

// CreateGroup creates an empty group.
func (l *Ledger) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, l.reject(models.Invalid(models.RuleEmptyName, "group name is required"))
	}

	group := &models.Group{Name: name, CreatedAt: l.now().Unix()}
	if err := l.store.CreateGroup(ctx, group); err != nil {
		return nil, err
	}

	l.mutated("create_group")
	slog.Info("Group created", "group_id", group.ID, "name", group.Name)
	return group, nil
}

// GetGroup returns a group by ID.
func (l *Ledger) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	return l.store.GetGroup(ctx, groupID)
}

// ListGroups returns every group ordered by name.
func (l *Ledger) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return l.store.ListGroups(ctx)
}

// RenameGroup changes a group's display name.
func (l *Ledger) RenameGroup(ctx context.Context, groupID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return l.reject(models.Invalid(models.RuleEmptyName, "group name is required"))
	}

	unlock := l.locks.lock(groupID)
	defer unlock()

	if err := l.store.UpdateGroup(ctx, &models.Group{ID: groupID, Name: name}); err != nil {
		return err
	}

	l.mutated("rename_group")
	slog.Info("Group renamed", "group_id", groupID, "name", name)
	return nil
}

// DeleteGroup removes a group together with its participants, expenses and
// settlements.
func (l *Ledger) DeleteGroup(ctx context.Context, groupID string) error {
	unlock := l.locks.lock(groupID)
	defer unlock()

	if err := l.store.DeleteGroup(ctx, groupID); err != nil {
		return err
	}

	l.mutated("delete_group")
	slog.Info("Group deleted", "group_id", groupID)
	return nil
}

// reject counts a rejected input and returns err unchanged.
func (l *Ledger) reject(err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		metrics.LedgerRejections.WithLabelValues(string(verr.Rule)).Inc()
		slog.Warn("Input rejected", "rule", verr.Rule, "error", verr.Message)
	}
	return err
}

func (l *Ledger) mutated(operation string) {
	metrics.LedgerMutations.WithLabelValues(operation).Inc()
}
