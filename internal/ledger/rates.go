package ledger

import (
	"context"
	"log/slog"
	"math"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/models"
)

// SetRate records a manual exchange rate: one unit of from buys rate units of to.
func (l *Ledger) SetRate(ctx context.Context, from, to string, rate float64) error {
	from, err := calculator.NormalizeCurrency(from)
	if err != nil {
		return l.reject(err)
	}
	to, err = calculator.NormalizeCurrency(to)
	if err != nil {
		return l.reject(err)
	}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return l.reject(&models.ValidationError{
			Rule:    models.RuleAmountNotPositive,
			Value:   rate,
			Message: "rate must be greater than zero",
		})
	}

	if err := l.store.SaveRate(ctx, &models.ExchangeRate{
		From:      from,
		To:        to,
		Rate:      rate,
		Source:    "manual",
		FetchedAt: l.now().Unix(),
	}); err != nil {
		return err
	}

	// Drop cached answers so the new rate is used right away.
	if f, ok := l.rates.(interface{ Flush() }); ok {
		f.Flush()
	}

	l.mutated("set_rate")
	slog.Info("Exchange rate set", "from", from, "to", to, "rate", rate)
	return nil
}
