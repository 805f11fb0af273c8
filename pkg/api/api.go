// Package api defines the request and response messages of the splitledger.v1
// Connect services. Messages are plain structs encoded as JSON.
package api

import "github.com/shopspring/decimal"

// Group is a set of participants sharing expenses.
type Group struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

// Participant is a member of a group. RemovedAt is non-zero once removed.
type Participant struct {
	ID        string `json:"id"`
	GroupID   string `json:"groupId"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	CreatedAt int64  `json:"createdAt"`
	RemovedAt int64  `json:"removedAt,omitempty"`
}

// Split divides an expense. Kind is "proportional" (entries are shares that
// sum to 1) or "fixed" (entries are amounts that sum to the expense amount).
// An empty split leaves the expense unallocated.
type Split struct {
	Kind    string             `json:"kind,omitempty"`
	Entries map[string]float64 `json:"entries,omitempty"`
}

// Expense is a recorded payment.
type Expense struct {
	ID          string  `json:"id"`
	GroupID     string  `json:"groupId"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	PayerID     string  `json:"payerId"`
	Category    string  `json:"category,omitempty"`
	Date        int64   `json:"date"`
	Split       Split   `json:"split"`
	Unallocated bool    `json:"unallocated,omitempty"`
	CreatedAt   int64   `json:"createdAt"`
	UpdatedAt   int64   `json:"updatedAt"`
}

// Balance is a participant's position in one currency.
type Balance struct {
	ParticipantID string  `json:"participantId"`
	Name          string  `json:"name"`
	Currency      string  `json:"currency"`
	TotalPaid     float64 `json:"totalPaid"`
	TotalOwed     float64 `json:"totalOwed"`
	Net           float64 `json:"net"`
	Removed       bool    `json:"removed,omitempty"`
	Unallocated   float64 `json:"unallocated,omitempty"`
}

// Transfer is a recommended payment.
type Transfer struct {
	From     string  `json:"from"`
	FromName string  `json:"fromName"`
	To       string  `json:"to"`
	ToName   string  `json:"toName"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// Settlement is a payment that was actually made between two participants.
type Settlement struct {
	ID        string  `json:"id"`
	GroupID   string  `json:"groupId"`
	FromID    string  `json:"fromId"`
	ToID      string  `json:"toId"`
	Amount    float64 `json:"amount"`
	Currency  string  `json:"currency"`
	Note      string  `json:"note,omitempty"`
	CreatedAt int64   `json:"createdAt"`
}

// CurrencyTotal is the sum of expenses in one currency.
type CurrencyTotal struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// Statistics summarises a group.
type Statistics struct {
	GroupID          string          `json:"groupId"`
	ParticipantCount int             `json:"participantCount"`
	RemovedCount     int             `json:"removedCount"`
	ExpenseCount     int             `json:"expenseCount"`
	UnallocatedCount int             `json:"unallocatedCount"`
	SettlementCount  int             `json:"settlementCount"`
	TotalsByCurrency []CurrencyTotal `json:"totalsByCurrency"`
	Currency         string          `json:"currency,omitempty"`
	Total            decimal.Decimal `json:"total"`
	LargestExpenseID string          `json:"largestExpenseId,omitempty"`
	LargestExpense   string          `json:"largestExpense,omitempty"`
}

// GroupService messages.

type CreateGroupRequest struct {
	Name string `json:"name"`
}

type CreateGroupResponse struct {
	Group *Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId"`
}

type GetGroupResponse struct {
	Group        *Group         `json:"group"`
	Participants []*Participant `json:"participants"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []*Group `json:"groups"`
}

type RenameGroupRequest struct {
	GroupID string `json:"groupId"`
	Name    string `json:"name"`
}

type RenameGroupResponse struct{}

type DeleteGroupRequest struct {
	GroupID string `json:"groupId"`
}

type DeleteGroupResponse struct{}

type AddParticipantRequest struct {
	GroupID string `json:"groupId"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
}

type AddParticipantResponse struct {
	Participant *Participant `json:"participant"`
}

type ListParticipantsRequest struct {
	GroupID        string `json:"groupId"`
	IncludeRemoved bool   `json:"includeRemoved,omitempty"`
}

type ListParticipantsResponse struct {
	Participants []*Participant `json:"participants"`
}

type RenameParticipantRequest struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
}

type RenameParticipantResponse struct{}

type RemoveParticipantRequest struct {
	ParticipantID string `json:"participantId"`
}

type RemoveParticipantResponse struct{}

type GetStatisticsRequest struct {
	GroupID string `json:"groupId"`

	// Currency, when set, adds a converted grand total.
	Currency string `json:"currency,omitempty"`
}

type GetStatisticsResponse struct {
	Statistics *Statistics `json:"statistics"`
}

// LedgerService messages.

type AddExpenseRequest struct {
	GroupID     string  `json:"groupId"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	PayerID     string  `json:"payerId"`
	Category    string  `json:"category,omitempty"`
	Date        int64   `json:"date,omitempty"`
	Split       Split   `json:"split"`
}

type AddExpenseResponse struct {
	ExpenseID   string `json:"expenseId"`
	Unallocated bool   `json:"unallocated,omitempty"`
}

type UpdateExpenseRequest struct {
	ExpenseID   string  `json:"expenseId"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	PayerID     string  `json:"payerId"`
	Category    string  `json:"category,omitempty"`
	Date        int64   `json:"date,omitempty"`
	Split       Split   `json:"split"`
}

type UpdateExpenseResponse struct{}

type RemoveExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type RemoveExpenseResponse struct{}

type ListExpensesRequest struct {
	GroupID  string `json:"groupId"`
	From     int64  `json:"from,omitempty"`
	To       int64  `json:"to,omitempty"`
	Category string `json:"category,omitempty"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type GetBalancesRequest struct {
	GroupID  string `json:"groupId"`
	Currency string `json:"currency"`
}

type GetBalancesResponse struct {
	Balances []*Balance `json:"balances"`
}

type PlanSettlementRequest struct {
	GroupID  string `json:"groupId"`
	Currency string `json:"currency"`
}

type PlanSettlementResponse struct {
	Balances  []*Balance  `json:"balances"`
	Transfers []*Transfer `json:"transfers"`
}

type RecordSettlementRequest struct {
	GroupID  string  `json:"groupId"`
	FromID   string  `json:"fromId"`
	ToID     string  `json:"toId"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Note     string  `json:"note,omitempty"`
}

type RecordSettlementResponse struct {
	Settlement *Settlement `json:"settlement"`
}

type ListSettlementsRequest struct {
	GroupID string `json:"groupId"`
}

type ListSettlementsResponse struct {
	Settlements []*Settlement `json:"settlements"`
}

type DeleteSettlementRequest struct {
	SettlementID string `json:"settlementId"`
}

type DeleteSettlementResponse struct{}

type SetRateRequest struct {
	From string  `json:"from"`
	To   string  `json:"to"`
	Rate float64 `json:"rate"`
}

type SetRateResponse struct{}
