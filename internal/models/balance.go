package models

// Balance is one participant's position in a group, expressed in one currency.
// Positive Net means the participant is owed money, negative means they owe.
type Balance struct {
	ParticipantID ParticipantID
	Name          string
	Currency      string

	TotalPaid float64
	TotalOwed float64
	Net       float64

	// Removed is set for participants that were removed from the group but
	// still have historical activity.
	Removed bool

	// Unallocated is the converted amount of expenses this participant paid
	// that had no split. It is included in both TotalPaid and TotalOwed.
	Unallocated float64
}

// Transfer is a recommended payment from a debtor to a creditor.
// It is not stored and not executed automatically.
type Transfer struct {
	From     ParticipantID
	FromName string
	To       ParticipantID
	ToName   string
	Amount   float64
	Currency string
}
