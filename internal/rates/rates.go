// Package rates provides exchange rate sources for balance conversion.
//
// Every provider answers Rate(ctx, from, to) with the number of units of `to`
// bought by one unit of `from`, or an error when it does not know the pair.
// No provider ever substitutes a default rate: an unknown pair is an error and
// the caller decides what to do with it.
package rates

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
)

// Provider is a source of exchange rates.
type Provider interface {
	Rate(ctx context.Context, from, to string) (float64, error)
}

// unknownPair is the error providers return when they hold no rate for a pair.
func unknownPair(from, to string) error {
	return models.NotFound("rate", pairKey(from, to))
}

func pairKey(from, to string) string {
	return strings.ToUpper(from) + "/" + strings.ToUpper(to)
}

func validRate(r float64) bool {
	return r > 0 && !math.IsInf(r, 0) && !math.IsNaN(r)
}

// Chain asks each provider in order and returns the first answer.
type Chain []Provider

// Rate implements Provider.
func (c Chain) Rate(ctx context.Context, from, to string) (float64, error) {
	if len(c) == 0 {
		return 0, unknownPair(from, to)
	}

	var errs []error
	for _, p := range c {
		r, err := p.Rate(ctx, from, to)
		if err == nil {
			return r, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		errs = append(errs, err)
	}
	return 0, fmt.Errorf("no provider knows %s: %w", pairKey(from, to), errors.Join(errs...))
}

// Flush clears every cache in the chain.
func (c Chain) Flush() {
	for _, p := range c {
		if f, ok := p.(interface{ Flush() }); ok {
			f.Flush()
		}
	}
}

// observe records a lookup outcome for the named provider.
func observe(provider string, err error) {
	switch {
	case err == nil:
		metrics.ObserveRateLookup(provider, "hit")
	case errors.Is(err, models.ErrNotFound):
		metrics.ObserveRateLookup(provider, "miss")
	default:
		metrics.ObserveRateLookup(provider, "error")
	}
}
