package ledger

import "errors"

var (
	// ErrInvalidSplit reports a split that cannot be divided: a non-zero
	// amount with no participants, a negative amount, a malformed person, or
	// amounts whose sum overflows an int64.
	ErrInvalidSplit = errors.New("invalid split")

	// ErrInvalidParticipants reports a participant collection of the wrong
	// shape, such as a single name given where a list was expected.
	ErrInvalidParticipants = errors.New("participants must be a list of persons, not a single name")

	// ErrLedgerCorrupted reports balances that do not cancel out. It is
	// always a bug in aggregation, never a user error.
	ErrLedgerCorrupted = errors.New("ledger corrupted")

	// ErrRefundReadOnly is returned when the synthetic entries of a refund
	// are modified.
	ErrRefundReadOnly = errors.New("refund entries cannot be modified")
)
