package ledger

import "errors"

// Business-rule failures are terminal: they reflect the account state at
// decision time and must not be retried. ErrConcurrentModification and
// ErrStorageFailure are retryable by the caller with the original
// request; the ledger guarantees no partial mutation on failure.
var (
	ErrInsufficientFunds      = errors.New("insufficient funds")
	ErrInsufficientShares     = errors.New("insufficient shares to sell")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInvalidSide            = errors.New("invalid trade side")
	ErrUnknownInstrument      = errors.New("unknown instrument")
	ErrAccountNotFound        = errors.New("account not found")
	ErrConcurrentModification = errors.New("account busy")
	ErrStorageFailure         = errors.New("storage failure")
)
