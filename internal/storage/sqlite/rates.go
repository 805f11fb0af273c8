package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmynk/splitledger/internal/models"
)

// SaveRate records an exchange rate. Older rates for the pair are kept as history.
func (s *SQLiteStore) SaveRate(ctx context.Context, rate *models.ExchangeRate) error {
	if rate.FetchedAt == 0 {
		rate.FetchedAt = time.Now().Unix()
	}
	if rate.Source == "" {
		rate.Source = "manual"
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO currency_rates (from_currency, to_currency, rate, source, fetched_at) VALUES (?, ?, ?, ?, ?)",
		rate.From, rate.To, rate.Rate, rate.Source, rate.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert rate: %w", err)
	}
	return nil
}

// LatestRate returns the most recently recorded rate for a currency pair.
func (s *SQLiteStore) LatestRate(ctx context.Context, from, to string) (*models.ExchangeRate, error) {
	rate := &models.ExchangeRate{}
	err := s.db.QueryRowContext(ctx,
		`SELECT from_currency, to_currency, rate, source, fetched_at
		 FROM currency_rates
		 WHERE from_currency = ? AND to_currency = ?
		 ORDER BY fetched_at DESC, id DESC LIMIT 1`,
		from, to,
	).Scan(&rate.From, &rate.To, &rate.Rate, &rate.Source, &rate.FetchedAt)
	if err == sql.ErrNoRows {
		return nil, models.NotFound("rate", from+"/"+to)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rate: %w", err)
	}
	return rate, nil
}
