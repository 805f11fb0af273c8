package calculator

import (
	"math"

	"github.com/mmynk/splitledger/internal/models"
)

type position struct {
	id        models.ParticipantID
	name      string
	remaining float64
}

// PlanSettlement returns transfers that bring every balance to within
// NoiseFloor of zero.
//
// Algorithm (greedy debt netting):
//   - Creditors (net > Epsilon) and debtors (net < -Epsilon) are ordered by
//     name, then participant ID.
//   - Each debtor pays creditors in order, min(remaining debt, remaining credit)
//     at a time. Only amounts above NoiseFloor become transfers.
//   - Leftovers at or below NoiseFloor are treated as settled.
//
// This is a heuristic: it is deterministic but does not minimise the number
// of transfers. Balances whose credit and debt totals disagree by more than
// NoiseFloor yield a *models.ConservationViolationError and no transfers.
func PlanSettlement(balances map[models.ParticipantID]models.Balance, currency string) ([]models.Transfer, error) {
	var creditors, debtors []*position
	var totalCredit, totalDebt float64

	for _, b := range SortedBalances(balances) {
		if b.Net > 0 {
			totalCredit += b.Net
		} else {
			totalDebt += -b.Net
		}
		switch {
		case b.Net > models.Epsilon:
			creditors = append(creditors, &position{id: b.ParticipantID, name: b.Name, remaining: b.Net})
		case b.Net < -models.Epsilon:
			debtors = append(debtors, &position{id: b.ParticipantID, name: b.Name, remaining: -b.Net})
		}
	}

	if math.Abs(totalCredit-totalDebt) > models.NoiseFloor {
		return nil, &models.ConservationViolationError{
			Currency:  currency,
			Credit:    totalCredit,
			Debt:      totalDebt,
			Tolerance: models.NoiseFloor,
		}
	}

	transfers := make([]models.Transfer, 0, len(debtors))
	j := 0
	for _, debtor := range debtors {
		for j < len(creditors) && debtor.remaining > models.NoiseFloor {
			creditor := creditors[j]

			amount := math.Min(debtor.remaining, creditor.remaining)
			if amount > models.NoiseFloor {
				transfers = append(transfers, models.Transfer{
					From:     debtor.id,
					FromName: debtor.name,
					To:       creditor.id,
					ToName:   creditor.name,
					Amount:   amount,
					Currency: currency,
				})
				debtor.remaining -= amount
				creditor.remaining -= amount
			}

			if creditor.remaining <= models.NoiseFloor {
				j++
			}
		}
	}

	return transfers, nil
}

// ApplyTransfers returns the net balances left after every transfer is paid.
func ApplyTransfers(balances map[models.ParticipantID]models.Balance, transfers []models.Transfer) map[models.ParticipantID]float64 {
	net := make(map[models.ParticipantID]float64, len(balances))
	for id, b := range balances {
		net[id] = b.Net
	}
	for _, t := range transfers {
		net[t.From] += t.Amount
		net[t.To] -= t.Amount
	}
	return net
}
