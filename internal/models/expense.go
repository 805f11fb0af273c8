package models

import (
	"fmt"
	"sort"
)

// SplitKind tells how the entries of a Split are interpreted.
type SplitKind int

const (
	// SplitProportional entries are shares in [0, 1] summing to 1.
	SplitProportional SplitKind = iota + 1

	// SplitFixed entries are amounts in the expense currency summing to the expense amount.
	SplitFixed
)

// String returns the storage name of the kind.
func (k SplitKind) String() string {
	switch k {
	case SplitProportional:
		return "proportional"
	case SplitFixed:
		return "fixed"
	default:
		return fmt.Sprintf("SplitKind(%d)", int(k))
	}
}

// ParseSplitKind is the inverse of SplitKind.String.
func ParseSplitKind(s string) (SplitKind, error) {
	switch s {
	case "proportional":
		return SplitProportional, nil
	case "fixed":
		return SplitFixed, nil
	default:
		return 0, Invalid(RuleUnknownSplitKind, "unknown split kind %q", s)
	}
}

// Split describes how an expense is divided among participants.
// It is either proportional (participant -> share) or fixed
// (participant -> amount), never a mix of both.
type Split struct {
	Kind    SplitKind
	Entries map[ParticipantID]float64
}

// Proportional returns a proportional split over the given shares.
func Proportional(shares map[ParticipantID]float64) Split {
	return Split{Kind: SplitProportional, Entries: shares}
}

// FixedAmounts returns a fixed-amount split over the given amounts.
func FixedAmounts(amounts map[ParticipantID]float64) Split {
	return Split{Kind: SplitFixed, Entries: amounts}
}

// Empty reports whether nobody is charged by the split.
func (s Split) Empty() bool {
	return len(s.Entries) == 0
}

// Participants returns the referenced participant IDs in sorted order.
func (s Split) Participants() []ParticipantID {
	ids := make([]ParticipantID, 0, len(s.Entries))
	for id := range s.Entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Sum returns the sum of all entries.
func (s Split) Sum() float64 {
	var sum float64
	for _, id := range s.Participants() {
		sum += s.Entries[id]
	}
	return sum
}

// Clone returns a deep copy of the split.
func (s Split) Clone() Split {
	c := Split{Kind: s.Kind}
	if s.Entries != nil {
		c.Entries = make(map[ParticipantID]float64, len(s.Entries))
		for id, v := range s.Entries {
			c.Entries[id] = v
		}
	}
	return c
}

// Expense represents one payment made by a participant on behalf of the group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group this expense belongs to.
	GroupID GroupID

	// Description is a human-readable label (e.g., "Hotel").
	Description string

	// Amount is the paid amount in Currency. Always > 0.
	Amount float64

	// Currency is an upper-case 3-letter code (e.g., "SEK").
	Currency string

	// PayerID is the participant who paid.
	PayerID ParticipantID

	// Category is an optional free-form tag (e.g., "food").
	Category string

	// Date is the Unix timestamp of the expense itself.
	Date int64

	// Split divides Amount among participants.
	Split Split

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last edit.
	UpdatedAt int64
}

// Unallocated reports whether the expense charges nobody. Such expenses are
// accepted but callers should prompt the user to complete the split.
func (e Expense) Unallocated() bool {
	return e.Split.Empty()
}
