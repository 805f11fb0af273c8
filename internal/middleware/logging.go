package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// with its procedure, request ID and duration. Rejected inputs are logged at
// WARN, server faults at ERROR.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			attrs := []any{
				"procedure", req.Spec().Procedure,
				"request_id", chimw.GetReqID(ctx), // empty outside the chi router
			}

			resp, err := next(ctx, req)

			attrs = append(attrs, "duration_ms", time.Since(start).Milliseconds())
			if err == nil {
				slog.Info("RPC ok", attrs...)
				return resp, nil
			}

			var connectErr *connect.Error
			if !errors.As(err, &connectErr) {
				slog.Error("RPC error", append(attrs, "error", err)...)
				return resp, err
			}

			attrs = append(attrs, "code", connectErr.Code(), "error", connectErr.Message())
			switch connectErr.Code() {
			case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss:
				slog.Error("RPC error", attrs...)
			default:
				slog.Warn("RPC rejected", attrs...)
			}
			return resp, err
		}
	}
}
