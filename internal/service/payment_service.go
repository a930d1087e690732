package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"sewago/internal/domain"
	"sewago/internal/models"
	"sewago/internal/registry"
	"sewago/pkg/gateway"

	"gorm.io/gorm"
)

// BookingStore is the slice of the booking repository the orchestrator needs.
type BookingStore interface {
	GetByID(id uint) (*models.Booking, error)
	MarkPaid(id uint, method, reference string) error
}

// TransactionStore tracks in-flight payment attempts.
type TransactionStore interface {
	Create(ctx context.Context, bookingID uint, amount float64, gw string) (*registry.Transaction, error)
	Update(ctx context.Context, tx *registry.Transaction) error
	Lookup(ctx context.Context, id string) (*registry.Transaction, error)
	Consume(ctx context.Context, id string) error
}

// PaymentNotifier dispatches the post-payment notification. Best effort:
// its errors are logged by the implementation, never propagated here.
type PaymentNotifier interface {
	NotifyPaymentConfirmed(b *models.Booking)
}

// PaymentService is the only component that calls the gateway adapters and
// mutates booking payment state. Initiation is side-effect-free on the
// booking; only a successful server-to-server verification moves it forward.
type PaymentService struct {
	bookings  BookingStore
	registry  TransactionStore
	providers map[gateway.Gateway]gateway.Provider
	notifier  PaymentNotifier
}

func NewPaymentService(bookings BookingStore, reg TransactionStore, providers map[gateway.Gateway]gateway.Provider, notifier PaymentNotifier) *PaymentService {
	return &PaymentService{bookings: bookings, registry: reg, providers: providers, notifier: notifier}
}

type InitiateResult struct {
	TransactionID string            `json:"transaction_id"`
	PaymentURL    string            `json:"payment_url"`
	PaymentData   map[string]string `json:"payment_data,omitempty"`
	Pidx          string            `json:"pidx,omitempty"`
}

// VerifyParams are the client-forwarded redirect parameters. They only feed
// the gateway's own verification call; nothing in them is trusted to decide
// success.
type VerifyParams struct {
	RefID string
	Pidx  string
}

type PaymentStatus struct {
	BookingID        uint    `json:"booking_id"`
	Status           string  `json:"status"`
	PaymentMethod    *string `json:"payment_method"`
	PaymentReference *string `json:"payment_reference"`
	TotalAmount      float64 `json:"total_amount"`
}

func (s *PaymentService) getBooking(id uint) (*models.Booking, error) {
	b, err := s.bookings.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// InitiatePayment validates preconditions, records a pending transaction and
// builds the provider redirect. The booking itself is not touched.
func (s *PaymentService) InitiatePayment(ctx context.Context, principal domain.Principal, bookingID uint, gw gateway.Gateway) (*InitiateResult, error) {
	if principal.UserID == 0 {
		return nil, domain.ErrNotAuthenticated
	}
	provider, ok := s.providers[gw]
	if !ok {
		return nil, domain.ErrInvalidGateway
	}
	b, err := s.getBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != principal.UserID {
		return nil, domain.ErrForbidden
	}
	if b.Status != domain.BookingConfirmed {
		return nil, fmt.Errorf("%w: booking must be confirmed before payment, is %s", domain.ErrInvalidBookingState, b.Status)
	}
	if b.TotalAmount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	tx, err := s.registry.Create(ctx, b.ID, b.TotalAmount, string(gw))
	if err != nil {
		return nil, err
	}
	resp, err := provider.Initiate(ctx, gateway.InitiateRequest{
		BookingID:     b.ID,
		TransactionID: tx.ID,
		Amount:        b.TotalAmount,
		CustomerName:  b.Customer.FullName,
		CustomerEmail: b.Customer.Email,
		CustomerPhone: b.Customer.Phone,
	})
	if err != nil {
		// The attempt is dead; reclaim the transaction record.
		_ = s.registry.Consume(ctx, tx.ID)
		if errors.Is(err, gateway.ErrInvalidAmount) {
			return nil, domain.ErrInvalidAmount
		}
		log.Printf("[PAYMENT] initiate booking=%d gateway=%s failed: %v", b.ID, gw, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	if resp.Pidx != "" {
		tx.Pidx = resp.Pidx
		if err := s.registry.Update(ctx, tx); err != nil {
			log.Printf("[PAYMENT] attach pidx tx=%s failed: %v", tx.ID, err)
		}
	}
	log.Printf("[PAYMENT] initiated booking=%d gateway=%s tx=%s", b.ID, gw, tx.ID)
	return &InitiateResult{
		TransactionID: tx.ID,
		PaymentURL:    resp.PaymentURL,
		PaymentData:   resp.Fields,
		Pidx:          resp.Pidx,
	}, nil
}

// VerifyPayment performs the authenticated server-to-server verification and,
// on success, applies the confirmed -> paid transition exactly once. Failed
// or unreachable verifications leave both the booking and the transaction
// untouched so the attempt can be retried.
func (s *PaymentService) VerifyPayment(ctx context.Context, gw gateway.Gateway, transactionID string, params VerifyParams) (*models.Booking, error) {
	provider, ok := s.providers[gw]
	if !ok {
		return nil, domain.ErrInvalidGateway
	}
	tx, err := s.registry.Lookup(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.Gateway != string(gw) {
		return nil, domain.ErrInvalidGateway
	}
	b, err := s.getBooking(tx.BookingID)
	if err != nil {
		return nil, err
	}

	pidx := params.Pidx
	if pidx == "" {
		pidx = tx.Pidx
	}
	result, err := provider.Verify(ctx, gateway.VerifyRequest{
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		RefID:         params.RefID,
		Pidx:          pidx,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGatewayUnavailable, err)
	}
	if !result.Success {
		log.Printf("[PAYMENT] verify tx=%s booking=%d failed: %s", tx.ID, b.ID, result.Reason)
		return nil, fmt.Errorf("%w: %s", domain.ErrVerificationFailed, result.Reason)
	}

	// Duplicate callback after a completed verification: idempotent success.
	if b.Status == domain.BookingPaid {
		_ = s.registry.Consume(ctx, tx.ID)
		return b, nil
	}

	if err := s.bookings.MarkPaid(b.ID, string(gw), result.Reference); err != nil {
		if errors.Is(err, domain.ErrInvalidBookingState) {
			// Either a racing verification won, or the booking was never
			// confirmed. Only the former is an idempotent success.
			cur, gerr := s.getBooking(b.ID)
			if gerr == nil && cur.Status == domain.BookingPaid {
				_ = s.registry.Consume(ctx, tx.ID)
				return cur, nil
			}
			return nil, fmt.Errorf("%w: booking is not awaiting payment", domain.ErrInvalidBookingState)
		}
		return nil, err
	}
	if err := s.registry.Consume(ctx, tx.ID); err != nil {
		log.Printf("[PAYMENT] consume tx=%s failed: %v", tx.ID, err)
	}
	paid, err := s.getBooking(b.ID)
	if err != nil {
		return nil, err
	}
	log.Printf("[PAYMENT] verified booking=%d gateway=%s ref=%s", paid.ID, gw, result.Reference)
	if s.notifier != nil {
		s.notifier.NotifyPaymentConfirmed(paid)
	}
	return paid, nil
}

// Status is the read-only payment projection, visible to both parties.
func (s *PaymentService) Status(principal domain.Principal, bookingID uint) (*PaymentStatus, error) {
	b, err := s.getBooking(bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != principal.UserID && b.ProviderID != principal.UserID {
		return nil, domain.ErrForbidden
	}
	return &PaymentStatus{
		BookingID:        b.ID,
		Status:           b.Status,
		PaymentMethod:    b.PaymentMethod,
		PaymentReference: b.PaymentReference,
		TotalAmount:      b.TotalAmount,
	}, nil
}
