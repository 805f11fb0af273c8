package models

// GroupID identifies a group (UUID format).
type GroupID = string

// ParticipantID identifies a participant (UUID format). It stays stable when
// the participant is renamed.
type ParticipantID = string

// Group represents a set of people who share expenses.
// Deleting a group removes its participants, expenses and settlements.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID GroupID

	// Name is the display name of the group (e.g., "Trip", "Roommates").
	Name string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Participant is a member of exactly one group.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID ParticipantID

	// GroupID is the group this participant belongs to.
	GroupID GroupID

	// Name is unique among the group's active participants.
	Name string

	// Email is optional contact information.
	Email string

	// CreatedAt is the Unix timestamp when the participant was added.
	CreatedAt int64

	// RemovedAt is the Unix timestamp of a soft removal, zero while active.
	// Removed participants keep their historical expenses and splits.
	RemovedAt int64
}

// Active reports whether the participant has not been removed.
func (p Participant) Active() bool {
	return p.RemovedAt == 0
}
