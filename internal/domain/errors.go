package domain

import "errors"

// Request-boundary error taxonomy. Handlers map these to HTTP statuses;
// anything not in this list is treated as an internal fault.
var (
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrForbidden           = errors.New("forbidden")
	ErrBookingNotFound     = errors.New("booking not found")
	ErrServiceNotFound     = errors.New("service not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidBookingState = errors.New("invalid booking state")
	ErrInvalidAmount       = errors.New("invalid payment amount")
	ErrInvalidGateway      = errors.New("invalid payment gateway")
	ErrGatewayUnavailable  = errors.New("payment gateway unavailable")
	ErrVerificationFailed  = errors.New("payment verification failed")
)

// Principal is the authenticated actor on the current request, as extracted
// from the access token. Treated as opaque and pre-validated by the core.
type Principal struct {
	UserID uint
	Role   string
}
