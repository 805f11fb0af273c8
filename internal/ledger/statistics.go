package ledger

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// CurrencyTotal is the sum of a group's expenses in one currency.
type CurrencyTotal struct {
	Currency string
	Amount   decimal.Decimal
}

// Statistics summarises a group's activity.
type Statistics struct {
	GroupID            string
	ParticipantCount   int
	RemovedCount       int
	ExpenseCount       int
	UnallocatedCount   int
	SettlementCount    int
	TotalsByCurrency   []CurrencyTotal
	Currency           string
	Total              decimal.Decimal
	LargestExpenseID   string
	LargestExpenseDesc string
}

// Statistics returns counts and expense totals for a group. Totals are kept
// per currency; when currency is not empty they are also converted and
// summed into Total. The largest expense is compared in currency, or left
// empty when currency is empty and the group spends in several currencies.
func (l *Ledger) Statistics(ctx context.Context, groupID, currency string) (*Statistics, error) {
	snap, err := l.store.Snapshot(ctx, groupID)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		GroupID:         groupID,
		ExpenseCount:    len(snap.Expenses),
		SettlementCount: len(snap.Settlements),
		Total:           decimal.Zero,
	}
	for _, p := range snap.Participants {
		if p.Active() {
			stats.ParticipantCount++
		} else {
			stats.RemovedCount++
		}
	}

	sums := make(map[string]decimal.Decimal)
	for i := range snap.Expenses {
		e := &snap.Expenses[i]
		sums[e.Currency] = sums[e.Currency].Add(decimal.NewFromFloat(e.Amount))
		if e.Unallocated() {
			stats.UnallocatedCount++
		}
	}

	codes := make([]string, 0, len(sums))
	for code := range sums {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		stats.TotalsByCurrency = append(stats.TotalsByCurrency, CurrencyTotal{Currency: code, Amount: sums[code]})
	}

	if currency == "" {
		if len(codes) == 1 {
			stats.setLargest(snap.Expenses, map[string]float64{codes[0]: 1})
		}
		return stats, nil
	}
	target, err := calculator.NormalizeCurrency(currency)
	if err != nil {
		return nil, err
	}
	stats.Currency = target

	rateOf := make(map[string]float64, len(codes))
	for _, ct := range stats.TotalsByCurrency {
		rate, err := calculator.Convert(ctx, 1, ct.Currency, target, l.rates)
		if err != nil {
			return nil, err
		}
		rateOf[ct.Currency] = rate
		stats.Total = stats.Total.Add(ct.Amount.Mul(decimal.NewFromFloat(rate)))
	}
	stats.Total = stats.Total.Round(2)
	stats.setLargest(snap.Expenses, rateOf)
	return stats, nil
}

// setLargest picks the expense with the highest amount after applying
// rateOf to its currency.
func (s *Statistics) setLargest(expenses []models.Expense, rateOf map[string]float64) {
	var largest *models.Expense
	var largestValue float64
	for i := range expenses {
		e := &expenses[i]
		value := e.Amount * rateOf[e.Currency]
		if largest == nil || value > largestValue {
			largest, largestValue = e, value
		}
	}
	if largest != nil {
		s.LargestExpenseID = largest.ID
		s.LargestExpenseDesc = largest.Description
	}
}
