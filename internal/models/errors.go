package models

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure taxonomy shared by the ledger, the voucher
// engine and the RPC edge.
var (
	ErrNotFound            = errors.New("poinku: not found")
	ErrInvalidCredential   = errors.New("poinku: invalid credential")
	ErrInsufficientBalance = errors.New("poinku: insufficient balance")
	ErrDuplicate           = errors.New("poinku: duplicate resource")
	ErrInvalidState        = errors.New("poinku: invalid state")
	ErrValidation          = errors.New("poinku: validation failed")
	ErrConflict            = errors.New("poinku: concurrent update conflict")
	ErrSystem              = errors.New("poinku: system error")
)

// Entity-specific errors. Each wraps its taxonomy sentinel so callers can
// match either the specific or the general error.
var (
	ErrMemberNotFound  = fmt.Errorf("member %w", ErrNotFound)
	ErrVoucherNotFound = fmt.Errorf("voucher %w", ErrNotFound)
	ErrRewardNotFound  = fmt.Errorf("reward %w", ErrNotFound)
	ErrStoreNotFound   = fmt.Errorf("store %w", ErrNotFound)
	ErrStaffNotFound   = fmt.Errorf("staff %w", ErrNotFound)

	ErrPhoneTaken       = fmt.Errorf("phone number: %w", ErrDuplicate)
	ErrUsernameTaken    = fmt.Errorf("username: %w", ErrDuplicate)
	ErrStoreCodeTaken   = fmt.Errorf("store code: %w", ErrDuplicate)
	ErrVoucherCodeTaken = fmt.Errorf("voucher code: %w", ErrDuplicate)

	ErrVoucherNotActive = fmt.Errorf("voucher is not active: %w", ErrInvalidState)
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("poinku: validation failed for %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid is shorthand for constructing a ValidationError.
func Invalid(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

// IsNotFound returns true if the error is any not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Reason maps an error onto a stable snake_case reason string suitable for
// display or for transport to a client.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, ErrInsufficientBalance):
		return "insufficient_balance"
	case errors.Is(err, ErrDuplicate):
		return "duplicate_resource"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "system_error"
	}
}
