package domain

import "github.com/pkg/errors"

// Errors returned by account, catalog and store operations. Every one of them is recoverable:
// the failed operation applies no side effects, except ErrPersistence which is reported after
// an in-memory mutation already succeeded.
var (
	ErrInvalidQuantity     = errors.New("quantity must be greater than zero")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrUnknownInstrument   = errors.New("unknown instrument")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrLotNotOwned         = errors.New("lot not owned or quantity exceeds lot")
	ErrDuplicateUsername   = errors.New("username already taken")
	ErrCredentialMismatch  = errors.New("credentials do not match")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInvalidUsername     = errors.New("username must not be empty")
	ErrPersistence         = errors.New("persistence failure")
)
