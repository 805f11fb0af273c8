package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/storage"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// LedgerService implements the Connect LedgerService: expenses, balances,
// settlement plans and recorded settlements.
type LedgerService struct {
	ledger *ledger.Ledger
}

var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// NewLedgerService creates a new LedgerService on top of the given ledger.
func NewLedgerService(l *ledger.Ledger) *LedgerService {
	return &LedgerService{ledger: l}
}

// AddExpense records an expense.
func (s *LedgerService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	slog.Info("AddExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"currency", req.Msg.Currency,
		"entries", len(req.Msg.Split.Entries),
	)

	split, err := splitFromAPI(req.Msg.Split)
	if err != nil {
		return nil, toConnectError("AddExpense", err)
	}

	id, err := s.ledger.AddExpense(ctx, ledger.ExpenseInput{
		GroupID:     req.Msg.GroupID,
		Description: req.Msg.Description,
		Amount:      req.Msg.Amount,
		Currency:    req.Msg.Currency,
		PayerID:     req.Msg.PayerID,
		Category:    req.Msg.Category,
		Date:        req.Msg.Date,
		Split:       split,
	})
	if err != nil {
		return nil, toConnectError("AddExpense", err)
	}

	return connect.NewResponse(&api.AddExpenseResponse{
		ExpenseID:   id,
		Unallocated: split.Empty(),
	}), nil
}

// UpdateExpense replaces an expense.
func (s *LedgerService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)

	split, err := splitFromAPI(req.Msg.Split)
	if err != nil {
		return nil, toConnectError("UpdateExpense", err)
	}

	err = s.ledger.UpdateExpense(ctx, req.Msg.ExpenseID, ledger.ExpenseInput{
		Description: req.Msg.Description,
		Amount:      req.Msg.Amount,
		Currency:    req.Msg.Currency,
		PayerID:     req.Msg.PayerID,
		Category:    req.Msg.Category,
		Date:        req.Msg.Date,
		Split:       split,
	})
	if err != nil {
		return nil, toConnectError("UpdateExpense", err)
	}
	return connect.NewResponse(&api.UpdateExpenseResponse{}), nil
}

// RemoveExpense deletes an expense.
func (s *LedgerService) RemoveExpense(ctx context.Context, req *connect.Request[api.RemoveExpenseRequest]) (*connect.Response[api.RemoveExpenseResponse], error) {
	if err := s.ledger.RemoveExpense(ctx, req.Msg.ExpenseID); err != nil {
		return nil, toConnectError("RemoveExpense", err)
	}
	return connect.NewResponse(&api.RemoveExpenseResponse{}), nil
}

// ListExpenses lists a group's expenses in insertion order.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	expenses, err := s.ledger.ListExpenses(ctx, req.Msg.GroupID, &storage.ExpenseFilter{
		From:     req.Msg.From,
		To:       req.Msg.To,
		Category: req.Msg.Category,
	})
	if err != nil {
		return nil, toConnectError("ListExpenses", err)
	}

	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = expenseToAPI(e)
	}
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// GetBalances returns every participant's balance in the requested currency.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	slog.Info("GetBalances request received", "group_id", req.Msg.GroupID, "currency", req.Msg.Currency)

	balances, err := s.ledger.ComputeBalances(ctx, req.Msg.GroupID, req.Msg.Currency)
	if err != nil {
		return nil, toConnectError("GetBalances", err)
	}

	return connect.NewResponse(&api.GetBalancesResponse{
		Balances: balancesToAPI(calculator.SortedBalances(balances)),
	}), nil
}

// PlanSettlement returns balances and the transfers that settle them.
func (s *LedgerService) PlanSettlement(ctx context.Context, req *connect.Request[api.PlanSettlementRequest]) (*connect.Response[api.PlanSettlementResponse], error) {
	slog.Info("PlanSettlement request received", "group_id", req.Msg.GroupID, "currency", req.Msg.Currency)

	balances, transfers, err := s.ledger.Settle(ctx, req.Msg.GroupID, req.Msg.Currency)
	if err != nil {
		return nil, toConnectError("PlanSettlement", err)
	}

	return connect.NewResponse(&api.PlanSettlementResponse{
		Balances:  balancesToAPI(balances),
		Transfers: transfersToAPI(transfers),
	}), nil
}

// RecordSettlement stores a payment made between two participants.
func (s *LedgerService) RecordSettlement(ctx context.Context, req *connect.Request[api.RecordSettlementRequest]) (*connect.Response[api.RecordSettlementResponse], error) {
	slog.Info("RecordSettlement request received",
		"group_id", req.Msg.GroupID,
		"from", req.Msg.FromID,
		"to", req.Msg.ToID,
		"amount", req.Msg.Amount,
	)

	settlement, err := s.ledger.RecordSettlement(ctx, ledger.SettlementInput{
		GroupID:  req.Msg.GroupID,
		FromID:   req.Msg.FromID,
		ToID:     req.Msg.ToID,
		Amount:   req.Msg.Amount,
		Currency: req.Msg.Currency,
		Note:     req.Msg.Note,
	})
	if err != nil {
		return nil, toConnectError("RecordSettlement", err)
	}
	return connect.NewResponse(&api.RecordSettlementResponse{Settlement: settlementToAPI(settlement)}), nil
}

// ListSettlements lists a group's recorded settlements.
func (s *LedgerService) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	settlements, err := s.ledger.ListSettlements(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError("ListSettlements", err)
	}

	out := make([]*api.Settlement, len(settlements))
	for i, st := range settlements {
		out[i] = settlementToAPI(st)
	}
	return connect.NewResponse(&api.ListSettlementsResponse{Settlements: out}), nil
}

// DeleteSettlement removes a recorded settlement.
func (s *LedgerService) DeleteSettlement(ctx context.Context, req *connect.Request[api.DeleteSettlementRequest]) (*connect.Response[api.DeleteSettlementResponse], error) {
	if err := s.ledger.DeleteSettlement(ctx, req.Msg.SettlementID); err != nil {
		return nil, toConnectError("DeleteSettlement", err)
	}
	return connect.NewResponse(&api.DeleteSettlementResponse{}), nil
}

// SetRate records a manual exchange rate.
func (s *LedgerService) SetRate(ctx context.Context, req *connect.Request[api.SetRateRequest]) (*connect.Response[api.SetRateResponse], error) {
	if err := s.ledger.SetRate(ctx, req.Msg.From, req.Msg.To, req.Msg.Rate); err != nil {
		return nil, toConnectError("SetRate", err)
	}
	return connect.NewResponse(&api.SetRateResponse{}), nil
}
