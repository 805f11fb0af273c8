package models

// ExchangeRate is a stored conversion rate: one unit of From buys Rate units of To.
type ExchangeRate struct {
	From string
	To   string
	Rate float64

	// Source tells where the rate came from (e.g., "manual", "api").
	Source string

	// FetchedAt is the Unix timestamp when the rate was recorded.
	FetchedAt int64
}
