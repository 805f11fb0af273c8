package rates

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/mmynk/splitledger/internal/models"
)

// DefaultAPIURL is the public exchangerate-api endpoint; the source currency
// code is appended to it.
const DefaultAPIURL = "https://api.exchangerate-api.com/v4/latest/"

// HTTPProvider fetches rates from an exchangerate-api compatible endpoint
// (`GET <base>/<FROM>` returning `{"base": "...", "rates": {"SEK": 11.2}}`).
// Requests are throttled by a token bucket limiter.
type HTTPProvider struct {
	baseURL  string
	client   *http.Client
	limiter  *rate.Limiter
	recorder RateRecorder
}

// HTTPOption configures an HTTPProvider.
type HTTPOption func(*HTTPProvider)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPProvider) { p.client = c }
}

// WithRecorder saves every fetched rate through r.
func WithRecorder(r RateRecorder) HTTPOption {
	return func(p *HTTPProvider) { p.recorder = r }
}

// NewHTTPProvider creates a provider for baseURL allowing rps requests per
// second (burst 1). A non-positive rps disables throttling.
func NewHTTPProvider(baseURL string, rps float64, opts ...HTTPOption) *HTTPProvider {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	p := &HTTPProvider{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(limit, 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type latestResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Rate implements Provider.
func (p *HTTPProvider) Rate(ctx context.Context, from, to string) (r float64, err error) {
	defer func() { observe("http", err) }()

	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return 1, nil
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+from, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch rates for %s: %w", from, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, unknownPair(from, to)
	}
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("rate API returned %s for %s", resp.Status, from)
	}

	var body latestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("failed to decode rate response: %w", err)
	}

	r, ok := body.Rates[to]
	if !ok || !validRate(r) {
		return 0, unknownPair(from, to)
	}

	if p.recorder != nil {
		rec := &models.ExchangeRate{From: from, To: to, Rate: r, Source: "api", FetchedAt: time.Now().Unix()}
		if err := p.recorder.SaveRate(ctx, rec); err != nil {
			slog.Warn("Failed to save fetched rate", "from", from, "to", to, "error", err)
		}
	}

	slog.Debug("Fetched exchange rate", "from", from, "to", to, "rate", r)
	return r, nil
}
