// Package metrics exposes Prometheus collectors for the ledger server.
package metrics

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "splitledger"

var RPCRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "rpc",
	Name:      "requests_total",
	Help:      "Total RPC calls by procedure and result code.",
}, []string{"procedure", "code"})

var RPCDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "rpc",
	Name:      "duration_seconds",
	Help:      "RPC latency in seconds.",
	Buckets:   prometheus.DefBuckets,
}, []string{"procedure"})

var LedgerMutations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "mutations_total",
	Help:      "Total accepted ledger mutations by operation.",
}, []string{"operation"})

var LedgerRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "rejections_total",
	Help:      "Total rejected ledger inputs by validation rule.",
}, []string{"rule"})

var SettlementTransfers = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "settlement_transfers",
	Help:      "Number of transfers in computed settlement plans.",
	Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
})

var RateLookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "rates",
	Name:      "lookups_total",
	Help:      "Exchange rate lookups by provider and result (hit, miss, error).",
}, []string{"provider", "result"})

// ObserveRateLookup records the outcome of a rate lookup.
func ObserveRateLookup(provider, result string) {
	RateLookups.WithLabelValues(provider, result).Inc()
}

// Interceptor returns a Connect interceptor recording call counts and latency.
func Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeUnknown.String()
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					code = connectErr.Code().String()
				}
			}
			RPCRequests.WithLabelValues(procedure, code).Inc()
			RPCDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())

			return resp, err
		}
	}
}
