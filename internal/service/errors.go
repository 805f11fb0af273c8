package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/models"
)

// toConnectError maps ledger errors onto Connect codes.
func toConnectError(op string, err error) error {
	code := connect.CodeInternal
	switch {
	case errors.Is(err, models.ErrValidation):
		code = connect.CodeInvalidArgument
	case errors.Is(err, models.ErrNotFound):
		code = connect.CodeNotFound
	case errors.Is(err, models.ErrConversionUnavailable):
		code = connect.CodeFailedPrecondition
	case errors.Is(err, models.ErrConservation):
		code = connect.CodeInternal
	}

	if code == connect.CodeInternal {
		slog.Error(op+" failed", "error", err)
	} else {
		slog.Warn(op+" failed", "code", code, "error", err)
	}
	return connect.NewError(code, err)
}
