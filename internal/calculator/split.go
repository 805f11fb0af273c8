package calculator

import (
	"fmt"
	"math"
	"strings"

	"github.com/mmynk/splitledger/internal/models"
)

// ValidateSplit checks that split is well formed for an expense of the given
// amount. members holds the participants the split may reference.
//
// Rules:
//   - proportional: every share in [0, 1], shares sum to 1 ± Epsilon
//   - fixed: every amount >= 0, amounts sum to amount × (1 ± Epsilon)
//   - every referenced participant is in members
//
// An empty split is valid; the expense is then flagged as unallocated.
// The returned error is always a *models.ValidationError.
func ValidateSplit(amount float64, split models.Split, members map[models.ParticipantID]bool) error {
	if split.Empty() {
		return nil
	}

	switch split.Kind {
	case models.SplitProportional, models.SplitFixed:
	default:
		return models.Invalid(models.RuleUnknownSplitKind, "split kind %v is not supported", split.Kind)
	}

	for _, id := range split.Participants() {
		v := split.Entries[id]
		if !members[id] {
			err := models.Invalid(models.RuleUnknownParticipant, "participant %s is not a member of the group", id)
			err.ParticipantID = id
			return err
		}

		if split.Kind == models.SplitProportional && !(v >= 0 && v <= 1) {
			err := models.Invalid(models.RuleShareOutOfRange, "share %v for participant %s is outside [0, 1]", v, id)
			err.ParticipantID = id
			err.Value = v
			return err
		}
		if split.Kind == models.SplitFixed && !(v >= 0 && !math.IsInf(v, 1)) {
			err := models.Invalid(models.RuleNegativeFixedAmount, "amount %v for participant %s is not a non-negative number", v, id)
			err.ParticipantID = id
			err.Value = v
			return err
		}
	}

	sum := split.Sum()
	if split.Kind == models.SplitProportional {
		if sum < 1-models.Epsilon || sum > 1+models.Epsilon {
			err := models.Invalid(models.RuleShareSum,
				"shares sum to %.4f, want 1 ± %.2f (%s)", sum, models.Epsilon, describeGap(1-sum))
			err.Value = sum
			err.Shortfall = 1 - sum
			return err
		}
		return nil
	}

	lo, hi := amount*(1-models.Epsilon), amount*(1+models.Epsilon)
	if sum < lo || sum > hi {
		err := models.Invalid(models.RuleFixedSum,
			"amounts sum to %.2f, want %.2f ± %.0f%% (%s)", sum, amount, models.Epsilon*100, describeGap(amount-sum))
		err.Value = sum
		err.Shortfall = amount - sum
		return err
	}
	return nil
}

func describeGap(gap float64) string {
	if gap > 0 {
		return fmt.Sprintf("short by %.4f", gap)
	}
	return fmt.Sprintf("over by %.4f", -gap)
}

// EqualSplit divides an expense equally among the given participants.
// Duplicate IDs are counted once.
func EqualSplit(ids ...models.ParticipantID) models.Split {
	unique := make(map[models.ParticipantID]bool, len(ids))
	for _, id := range ids {
		unique[id] = true
	}
	if len(unique) == 0 {
		return models.Proportional(nil)
	}

	share := 1 / float64(len(unique))
	shares := make(map[models.ParticipantID]float64, len(unique))
	for id := range unique {
		shares[id] = share
	}
	return models.Proportional(shares)
}

// NormalizeCurrency upper-cases a currency code and checks it has three letters.
func NormalizeCurrency(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if len(c) != 3 {
		return "", models.Invalid(models.RuleInvalidCurrency, "currency %q must be a 3-letter code", code)
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return "", models.Invalid(models.RuleInvalidCurrency, "currency %q must be a 3-letter code", code)
		}
	}
	return c, nil
}

// owedAmounts returns what each split entry owes of convertedAmount.
// Entries are scaled by their sum so that the owed total equals
// convertedAmount exactly, even for splits accepted within tolerance.
func owedAmounts(split models.Split, convertedAmount float64) map[models.ParticipantID]float64 {
	sum := split.Sum()
	owed := make(map[models.ParticipantID]float64, len(split.Entries))
	if sum <= 0 {
		return owed
	}

	for _, id := range split.Participants() {
		owed[id] = convertedAmount * (split.Entries[id] / sum)
	}
	return owed
}
