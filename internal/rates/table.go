package rates

import (
	"context"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mmynk/splitledger/internal/calculator"
)

// Table is a static in-memory rate table keyed by source then target currency.
// A pair missing from the table is answered with the inverse of the opposite
// pair when that one is present.
type Table map[string]map[string]float64

// Rate implements Provider.
func (t Table) Rate(_ context.Context, from, to string) (r float64, err error) {
	defer func() { observe("table", err) }()

	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return 1, nil
	}
	if r, ok := t[from][to]; ok && validRate(r) {
		return r, nil
	}
	if r, ok := t[to][from]; ok && validRate(r) {
		return 1 / r, nil
	}
	return 0, unknownPair(from, to)
}

// Set stores a rate, creating the source row if needed.
func (t Table) Set(from, to string, rate float64) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if t[from] == nil {
		t[from] = make(map[string]float64)
	}
	t[from][to] = rate
}

// tableFile is the on-disk layout of a rate table:
//
//	[rates.EUR]
//	SEK = 11.2
//	USD = 1.09
type tableFile struct {
	Rates map[string]map[string]float64 `toml:"rates"`
}

// LoadTable reads a TOML rate table from path.
func LoadTable(path string) (Table, error) {
	var f tableFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("failed to decode rate table %s: %w", path, err)
	}
	return tableFromFile(f)
}

// ParseTable decodes a TOML rate table from a string.
func ParseTable(data string) (Table, error) {
	var f tableFile
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode rate table: %w", err)
	}
	return tableFromFile(f)
}

func tableFromFile(f tableFile) (Table, error) {
	t := make(Table, len(f.Rates))
	for from, row := range f.Rates {
		fromCode, err := calculator.NormalizeCurrency(from)
		if err != nil {
			return nil, err
		}
		for to, rate := range row {
			toCode, err := calculator.NormalizeCurrency(to)
			if err != nil {
				return nil, err
			}
			if !validRate(rate) {
				return nil, fmt.Errorf("invalid rate %s/%s: %v", fromCode, toCode, rate)
			}
			t.Set(fromCode, toCode, rate)
		}
	}
	return t, nil
}

// FallbackTable returns approximate Nordic/major-currency rates for offline
// use. They are only consulted when configured explicitly.
func FallbackTable() Table {
	return Table{
		"SEK": {"USD": 0.11, "EUR": 0.10, "GBP": 0.085, "NOK": 1.05, "DKK": 0.75},
		"USD": {"SEK": 9.0, "EUR": 0.92, "GBP": 0.78, "NOK": 9.5, "DKK": 6.8},
		"EUR": {"SEK": 9.8, "USD": 1.09, "GBP": 0.85, "NOK": 10.3, "DKK": 7.4},
		"GBP": {"SEK": 11.5, "USD": 1.28, "EUR": 1.18, "NOK": 12.1, "DKK": 8.7},
		"NOK": {"SEK": 0.95, "USD": 0.105, "EUR": 0.097, "GBP": 0.083, "DKK": 0.72},
		"DKK": {"SEK": 1.33, "USD": 0.147, "EUR": 0.135, "GBP": 0.115, "NOK": 1.39},
	}
}
