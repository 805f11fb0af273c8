package rates

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// RateReader is the storage capability StoreProvider needs.
type RateReader interface {
	LatestRate(ctx context.Context, from, to string) (*models.ExchangeRate, error)
}

// RateRecorder persists rates fetched from elsewhere.
type RateRecorder interface {
	SaveRate(ctx context.Context, rate *models.ExchangeRate) error
}

// StoreProvider answers from rates recorded in the database, either entered
// manually or saved after a successful fetch.
type StoreProvider struct {
	reader RateReader

	// maxAge discards rates recorded longer ago. Zero keeps every rate.
	maxAge time.Duration
	now    func() time.Time
}

// NewStoreProvider creates a provider backed by reader.
func NewStoreProvider(reader RateReader, maxAge time.Duration) *StoreProvider {
	return &StoreProvider{reader: reader, maxAge: maxAge, now: time.Now}
}

// Rate implements Provider.
func (p *StoreProvider) Rate(ctx context.Context, from, to string) (r float64, err error) {
	defer func() { observe("store", err) }()

	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return 1, nil
	}

	r, err = p.lookup(ctx, from, to)
	if err == nil || !errors.Is(err, models.ErrNotFound) {
		return r, err
	}

	inv, err := p.lookup(ctx, to, from)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return 0, unknownPair(from, to)
		}
		return 0, err
	}
	return 1 / inv, nil
}

func (p *StoreProvider) lookup(ctx context.Context, from, to string) (float64, error) {
	rate, err := p.reader.LatestRate(ctx, from, to)
	if err != nil {
		return 0, err
	}
	if !validRate(rate.Rate) {
		return 0, unknownPair(from, to)
	}
	if p.maxAge > 0 && p.now().Sub(time.Unix(rate.FetchedAt, 0)) > p.maxAge {
		return 0, unknownPair(from, to)
	}
	return rate.Rate, nil
}
