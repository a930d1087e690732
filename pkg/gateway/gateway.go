package gateway

import (
	"context"
	"errors"
	"fmt"
)

// Gateway identifies a payment provider. Dispatch is always by this enum,
// never by inspecting request strings at call sites.
type Gateway string

const (
	Esewa  Gateway = "esewa"
	Khalti Gateway = "khalti"
)

func Parse(s string) (Gateway, error) {
	switch Gateway(s) {
	case Esewa, Khalti:
		return Gateway(s), nil
	}
	return "", fmt.Errorf("unknown payment gateway %q", s)
}

var (
	// ErrUnavailable marks an outbound call that errored, timed out or
	// returned a non-2xx response. Callers may safely retry the attempt.
	ErrUnavailable = errors.New("gateway unavailable")
	// ErrInvalidAmount is returned when the amount is not positive.
	ErrInvalidAmount = errors.New("amount must be positive")
)

type InitiateRequest struct {
	BookingID     uint
	TransactionID string
	Amount        float64 // NPR
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

// InitiateResponse tells the client where to send the user. For eSewa,
// Fields carries the form payload to submit against PaymentURL; for Khalti,
// PaymentURL is the provider-issued checkout page and Pidx its correlation id.
type InitiateResponse struct {
	PaymentURL string
	Fields     map[string]string
	Pidx       string
}

type VerifyRequest struct {
	TransactionID string
	Amount        float64
	RefID         string // eSewa reference id from the redirect
	Pidx          string // Khalti correlation id
}

// Result is the outcome of a server-to-server verification. Only this,
// never a client-supplied success flag, decides whether a payment counts.
type Result struct {
	Success   bool
	Reference string // canonical gateway-issued reference
	Reason    string // set when Success is false
}

// Provider is the uniform initiate/verify contract over both gateways.
// Verify returns an error only when the gateway could not be reached;
// a reachable gateway that declines the payment yields a non-success Result.
type Provider interface {
	Name() Gateway
	Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error)
	Verify(ctx context.Context, req VerifyRequest) (*Result, error)
}
