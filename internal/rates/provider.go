package rates

import (
	"log/slog"

	"github.com/mmynk/splitledger/internal/config"
)

// Store is the storage a configured provider reads manual rates from and
// saves fetched rates to.
type Store interface {
	RateReader
	RateRecorder
}

// NewProvider assembles the configured sources in priority order: rates
// recorded in the store, the table file, the online API, then the offline
// table when enabled. The chain is cached when cfg.CacheTTL is positive.
func NewProvider(cfg config.RatesConfig, store Store) (Provider, error) {
	chain := Chain{NewStoreProvider(store, cfg.MaxAge)}

	if cfg.File != "" {
		table, err := LoadTable(cfg.File)
		if err != nil {
			return nil, err
		}
		chain = append(chain, table)
		slog.Info("Rate table loaded", "file", cfg.File, "currencies", len(table))
	}

	if cfg.APIURL != "" {
		chain = append(chain, NewHTTPProvider(cfg.APIURL, cfg.APIRPS, WithRecorder(store)))
		slog.Info("Online rates enabled", "url", cfg.APIURL, "rps", cfg.APIRPS)
	}

	if cfg.Offline {
		chain = append(chain, FallbackTable())
		slog.Warn("Offline fallback rates enabled, conversions are approximate")
	}

	if cfg.CacheTTL > 0 {
		return NewCachedProvider(chain, cfg.CacheTTL), nil
	}
	return chain, nil
}
