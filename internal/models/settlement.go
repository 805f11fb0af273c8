package models

// Settlement represents a payment between group members that was actually made.
// It counts towards balances like an expense does. Transfers planned by the
// settlement planner only become settlements when a user records them.
type Settlement struct {
	// ID is the unique identifier for the settlement (UUID format).
	ID string

	// GroupID is the group this settlement belongs to.
	GroupID GroupID

	// FromID is the participant who paid (debtor settling up).
	FromID ParticipantID

	// ToID is the participant who received payment (creditor being paid).
	ToID ParticipantID

	// Amount is the payment amount, always positive.
	Amount float64

	// Currency is the 3-letter currency code of Amount.
	Currency string

	// CreatedAt is the Unix timestamp when the settlement was recorded.
	CreatedAt int64

	// Note is an optional description for the settlement.
	Note string
}
