package calculator

import (
	"context"
	"math"
	"sort"

	"github.com/mmynk/splitledger/internal/models"
)

// RateProvider supplies exchange rates. Rate returns how many units of `to`
// one unit of `from` buys. Implementations decide on caching and fallbacks;
// an error means the rate is unavailable.
type RateProvider interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// converter resolves each currency once per computation so that every
// expense in one call is converted with the same rate.
type converter struct {
	ctx    context.Context
	target string
	rates  RateProvider
	seen   map[string]float64
}

func newConverter(ctx context.Context, target string, rates RateProvider) *converter {
	return &converter{ctx: ctx, target: target, rates: rates, seen: map[string]float64{target: 1}}
}

func (c *converter) convert(amount float64, currency string) (float64, error) {
	if rate, ok := c.seen[currency]; ok {
		return amount * rate, nil
	}
	if c.rates == nil {
		return 0, &models.ConversionUnavailableError{From: currency, To: c.target}
	}

	rate, err := c.rates.Rate(c.ctx, currency, c.target)
	if err != nil {
		return 0, &models.ConversionUnavailableError{From: currency, To: c.target, Err: err}
	}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, &models.ConversionUnavailableError{From: currency, To: c.target}
	}
	c.seen[currency] = rate
	return amount * rate, nil
}

// Convert converts a single amount into target using rates, with identity
// conversion when the currencies match.
func Convert(ctx context.Context, amount float64, from, target string, rates RateProvider) (float64, error) {
	return newConverter(ctx, target, rates).convert(amount, from)
}

// ComputeBalances derives every participant's position in the target currency.
//
// Algorithm:
//   - For each expense: convert the amount, credit the payer's TotalPaid and
//     charge each split entry its part of the converted amount.
//     Entries are scaled by the split's sum, so for splits accepted within
//     tolerance (shares summing to 0.995, say) the owed amounts differ
//     slightly from share × amount or the raw fixed amount.
//   - Expenses with an empty split are charged back to the payer and reported
//     in the payer's Unallocated field.
//   - For each recorded settlement: the sender's TotalPaid and the receiver's
//     TotalOwed grow by the converted amount.
//   - Net = TotalPaid - TotalOwed.
//
// A balance is returned for every active participant, and for removed
// participants that still have activity. Any missing rate fails the whole
// computation with a *models.ConversionUnavailableError.
func ComputeBalances(ctx context.Context, snap *models.Snapshot, target string, rates RateProvider) (map[models.ParticipantID]models.Balance, error) {
	target, err := NormalizeCurrency(target)
	if err != nil {
		return nil, err
	}

	conv := newConverter(ctx, target, rates)
	balances := make(map[models.ParticipantID]*models.Balance, len(snap.Participants))
	touched := make(map[models.ParticipantID]bool)

	for _, p := range snap.Participants {
		balances[p.ID] = &models.Balance{
			ParticipantID: p.ID,
			Name:          p.Name,
			Currency:      target,
			Removed:       !p.Active(),
		}
	}
	get := func(id models.ParticipantID) *models.Balance {
		touched[id] = true
		if b, ok := balances[id]; ok {
			return b
		}
		// Referenced but unknown to the snapshot: keep the money, show the ID.
		b := &models.Balance{ParticipantID: id, Name: id, Currency: target, Removed: true}
		balances[id] = b
		return b
	}

	for _, e := range snap.Expenses {
		amount, err := conv.convert(e.Amount, e.Currency)
		if err != nil {
			return nil, err
		}

		payer := get(e.PayerID)
		payer.TotalPaid += amount

		if e.Unallocated() {
			payer.TotalOwed += amount
			payer.Unallocated += amount
			continue
		}

		owed := owedAmounts(e.Split, amount)
		for _, id := range e.Split.Participants() {
			get(id).TotalOwed += owed[id]
		}
	}

	for _, s := range snap.Settlements {
		amount, err := conv.convert(s.Amount, s.Currency)
		if err != nil {
			return nil, err
		}
		get(s.FromID).TotalPaid += amount
		get(s.ToID).TotalOwed += amount
	}

	result := make(map[models.ParticipantID]models.Balance, len(balances))
	for id, b := range balances {
		if b.Removed && !touched[id] {
			continue
		}
		b.Net = b.TotalPaid - b.TotalOwed
		result[id] = *b
	}
	return result, nil
}

// SortedBalances returns balances ordered by name, then participant ID.
func SortedBalances(balances map[models.ParticipantID]models.Balance) []models.Balance {
	out := make([]models.Balance, 0, len(balances))
	for _, b := range balances {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out
}

// NetSum returns the sum of all net balances. For a consistent ledger it is
// zero within len(balances) × Epsilon.
func NetSum(balances map[models.ParticipantID]models.Balance) float64 {
	var sum float64
	for _, b := range SortedBalances(balances) {
		sum += b.Net
	}
	return sum
}
