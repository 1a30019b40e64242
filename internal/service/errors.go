package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/sharedpot/internal/auth"
	"github.com/mmynk/sharedpot/internal/ledger"
	"github.com/mmynk/sharedpot/internal/money"
	"github.com/mmynk/sharedpot/internal/storage"
)

var (
	errLedgerIDRequired = errors.New("ledger_id required")
	errNotOwner         = errors.New("ledger belongs to another user")
	errInternal         = errors.New("internal error")
)

// toConnectError maps an error to the connect code the client sees. Errors
// that are not the caller's fault are logged and replaced by a generic
// message.
func toConnectError(logger *slog.Logger, op string, err error) error {
	var connectErr *connect.Error
	switch {
	case errors.As(err, &connectErr):
		return connectErr
	case errors.Is(err, ledger.ErrLedgerCorrupted):
		logger.Error("ledger defect: balances do not settle", "op", op, "error", err)
		return connect.NewError(connect.CodeInternal, errInternal)
	case errors.Is(err, ledger.ErrInvalidSplit),
		errors.Is(err, ledger.ErrInvalidParticipants),
		errors.Is(err, ledger.ErrRefundReadOnly),
		errors.Is(err, money.ErrInvalidAmount):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, auth.ErrEmailExists):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, auth.ErrWeakPassword), errors.Is(err, auth.ErrInvalidEmail):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, auth.ErrInvalidCredentials):
		return connect.NewError(connect.CodeUnauthenticated, err)
	default:
		logger.Error(op+" failed", "error", err)
		return connect.NewError(connect.CodeInternal, errInternal)
	}
}
