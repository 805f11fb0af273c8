package models

// Snapshot is a consistent, point-in-time view of one group's ledger.
// Participants include removed ones so historical references resolve.
type Snapshot struct {
	Group        Group
	Participants []Participant
	Expenses     []Expense
	Settlements  []Settlement
}

// Members returns the IDs of the active participants.
func (s *Snapshot) Members() map[ParticipantID]bool {
	members := make(map[ParticipantID]bool, len(s.Participants))
	for _, p := range s.Participants {
		if p.Active() {
			members[p.ID] = true
		}
	}
	return members
}
