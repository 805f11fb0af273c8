package ledger

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mmynk/splitledger/internal/models"
)

// AddParticipant adds a named participant to a group. Names are unique
// (case-insensitively) among the group's active participants.
func (l *Ledger) AddParticipant(ctx context.Context, groupID, name, email string) (*models.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, l.reject(models.Invalid(models.RuleEmptyName, "participant name is required"))
	}

	unlock := l.locks.lock(groupID)
	defer unlock()

	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	if err := l.checkNameFree(ctx, groupID, "", name); err != nil {
		return nil, err
	}

	p := &models.Participant{
		GroupID:   groupID,
		Name:      name,
		Email:     strings.TrimSpace(email),
		CreatedAt: l.now().Unix(),
	}
	if err := l.store.AddParticipant(ctx, p); err != nil {
		return nil, err
	}

	l.mutated("add_participant")
	slog.Info("Participant added", "group_id", groupID, "participant_id", p.ID, "name", p.Name)
	return p, nil
}

// ListParticipants returns a group's participants ordered by name.
func (l *Ledger) ListParticipants(ctx context.Context, groupID string, includeRemoved bool) ([]*models.Participant, error) {
	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return l.store.ListParticipants(ctx, groupID, includeRemoved)
}

// RenameParticipant changes an active participant's display name. History is
// keyed by ID, so past expenses follow the new name.
func (l *Ledger) RenameParticipant(ctx context.Context, participantID, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return l.reject(models.Invalid(models.RuleEmptyName, "participant name is required"))
	}

	p, err := l.store.GetParticipant(ctx, participantID)
	if err != nil {
		return err
	}

	unlock := l.locks.lock(p.GroupID)
	defer unlock()

	if !p.Active() {
		return models.NotFound("participant", participantID)
	}
	if err := l.checkNameFree(ctx, p.GroupID, p.ID, name); err != nil {
		return err
	}

	p.Name = name
	if err := l.store.UpdateParticipant(ctx, p); err != nil {
		return err
	}

	l.mutated("rename_participant")
	slog.Info("Participant renamed", "participant_id", p.ID, "name", name)
	return nil
}

// RemoveParticipant retires a participant. Expenses that reference it keep
// their splits and still count towards balances; the participant can no
// longer pay or be charged in new expenses.
func (l *Ledger) RemoveParticipant(ctx context.Context, participantID string) error {
	p, err := l.store.GetParticipant(ctx, participantID)
	if err != nil {
		return err
	}

	unlock := l.locks.lock(p.GroupID)
	defer unlock()

	if err := l.store.RemoveParticipant(ctx, participantID, l.now().Unix()); err != nil {
		return err
	}

	l.mutated("remove_participant")
	slog.Info("Participant removed", "group_id", p.GroupID, "participant_id", participantID)
	return nil
}

// checkNameFree reports a duplicate-name error when another active
// participant of the group (other than exceptID) already uses name.
func (l *Ledger) checkNameFree(ctx context.Context, groupID, exceptID, name string) error {
	active, err := l.store.ListParticipants(ctx, groupID, false)
	if err != nil {
		return err
	}
	for _, other := range active {
		if other.ID != exceptID && strings.EqualFold(other.Name, name) {
			return l.reject(models.Invalid(models.RuleDuplicateName, "participant %q already exists in the group", name))
		}
	}
	return nil
}

// members returns the IDs of the group's active participants.
func (l *Ledger) members(ctx context.Context, groupID string) (map[models.ParticipantID]bool, error) {
	active, err := l.store.ListParticipants(ctx, groupID, false)
	if err != nil {
		return nil, err
	}
	members := make(map[models.ParticipantID]bool, len(active))
	for _, p := range active {
		members[p.ID] = true
	}
	return members, nil
}
