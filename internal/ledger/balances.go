package ledger

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
)

// ComputeBalances returns every participant's position in currency, keyed by
// participant ID.
func (l *Ledger) ComputeBalances(ctx context.Context, groupID, currency string) (map[models.ParticipantID]models.Balance, error) {
	snap, err := l.store.Snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return calculator.ComputeBalances(ctx, snap, currency, l.rates)
}

// Settle computes balances and the transfers that clear them from one
// snapshot. Balances are ordered by name. Nothing is recorded.
func (l *Ledger) Settle(ctx context.Context, groupID, currency string) ([]models.Balance, []models.Transfer, error) {
	currency, err := calculator.NormalizeCurrency(currency)
	if err != nil {
		return nil, nil, err
	}

	balances, err := l.ComputeBalances(ctx, groupID, currency)
	if err != nil {
		return nil, nil, err
	}

	transfers, err := calculator.PlanSettlement(balances, currency)
	if err != nil {
		slog.Error("Settlement plan rejected", "group_id", groupID, "currency", currency, "error", err)
		return nil, nil, err
	}

	metrics.SettlementTransfers.Observe(float64(len(transfers)))
	slog.Info("Settlement planned", "group_id", groupID, "currency", currency, "transfers", len(transfers))
	return calculator.SortedBalances(balances), transfers, nil
}

// PlanSettlement returns only the transfers of Settle.
func (l *Ledger) PlanSettlement(ctx context.Context, groupID, currency string) ([]models.Transfer, error) {
	_, transfers, err := l.Settle(ctx, groupID, currency)
	return transfers, err
}

// SettlementInput describes a payment made between two participants.
type SettlementInput struct {
	GroupID  string
	FromID   models.ParticipantID
	ToID     models.ParticipantID
	Amount   float64
	Currency string
	Note     string
}

// RecordSettlement stores a payment that actually happened. It counts
// towards balances from then on.
func (l *Ledger) RecordSettlement(ctx context.Context, in SettlementInput) (*models.Settlement, error) {
	if in.Amount <= 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return nil, l.reject(&models.ValidationError{
			Rule:    models.RuleAmountNotPositive,
			Value:   in.Amount,
			Message: "amount must be greater than zero",
		})
	}
	currency, err := calculator.NormalizeCurrency(in.Currency)
	if err != nil {
		return nil, l.reject(err)
	}
	if in.FromID == in.ToID {
		return nil, l.reject(&models.ValidationError{
			Rule:          models.RuleSelfSettlement,
			ParticipantID: in.FromID,
			Message:       "a participant cannot pay themselves",
		})
	}

	unlock := l.locks.lock(in.GroupID)
	defer unlock()

	if _, err := l.store.GetGroup(ctx, in.GroupID); err != nil {
		return nil, err
	}
	members, err := l.members(ctx, in.GroupID)
	if err != nil {
		return nil, err
	}
	for _, id := range []models.ParticipantID{in.FromID, in.ToID} {
		if !members[id] {
			return nil, l.reject(&models.ValidationError{
				Rule:          models.RuleUnknownParticipant,
				ParticipantID: id,
				Message:       "participant " + id + " is not an active member of the group",
			})
		}
	}

	settlement := &models.Settlement{
		GroupID:   in.GroupID,
		FromID:    in.FromID,
		ToID:      in.ToID,
		Amount:    in.Amount,
		Currency:  currency,
		CreatedAt: l.now().Unix(),
		Note:      strings.TrimSpace(in.Note),
	}
	if err := l.store.CreateSettlement(ctx, settlement); err != nil {
		return nil, err
	}

	l.mutated("record_settlement")
	slog.Info("Settlement recorded",
		"group_id", in.GroupID,
		"settlement_id", settlement.ID,
		"from", in.FromID,
		"to", in.ToID,
		"amount", in.Amount,
		"currency", currency,
	)
	return settlement, nil
}

// ListSettlements returns a group's recorded settlements, oldest first.
func (l *Ledger) ListSettlements(ctx context.Context, groupID string) ([]*models.Settlement, error) {
	if _, err := l.store.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return l.store.ListSettlementsByGroup(ctx, groupID)
}

// DeleteSettlement removes a recorded settlement.
func (l *Ledger) DeleteSettlement(ctx context.Context, settlementID string) error {
	s, err := l.store.GetSettlement(ctx, settlementID)
	if err != nil {
		return err
	}

	unlock := l.locks.lock(s.GroupID)
	defer unlock()

	if err := l.store.DeleteSettlement(ctx, settlementID); err != nil {
		return err
	}

	l.mutated("delete_settlement")
	slog.Info("Settlement deleted", "group_id", s.GroupID, "settlement_id", settlementID)
	return nil
}
