package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"sewago/internal/domain"
	"sewago/internal/models"
	"sewago/internal/service"
	"sewago/pkg/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedBooking() *models.Booking {
	return &models.Booking{
		ID:          1,
		CustomerID:  10,
		ProviderID:  20,
		ServiceID:   5,
		Title:       "Kitchen sink repair",
		TotalAmount: 1500,
		Status:      domain.BookingConfirmed,
		Customer:    models.User{ID: 10, FullName: "Sita Sharma", Email: "sita@example.com", Phone: "9841234567"},
	}
}

func paymentFixture(b *models.Booking, khalti *stubProvider) (*service.PaymentService, *fakeBookingRepo, *fakeTxStore, *countingNotifier) {
	repo := newFakeBookingRepo(b)
	txs := newFakeTxStore()
	notifier := &countingNotifier{}
	providers := map[gateway.Gateway]gateway.Provider{gateway.Khalti: khalti}
	svc := service.NewPaymentService(repo, txs, providers, notifier)
	return svc, repo, txs, notifier
}

func customer() domain.Principal {
	return domain.Principal{UserID: 10, Role: domain.RoleCustomer}
}

func TestInitiatePayment_Success(t *testing.T) {
	khalti := &stubProvider{
		name:     gateway.Khalti,
		initResp: &gateway.InitiateResponse{PaymentURL: "https://khalti.com/pay/abc", Pidx: "PIDX-1"},
	}
	svc, _, txs, _ := paymentFixture(confirmedBooking(), khalti)

	result, err := svc.InitiatePayment(context.Background(), customer(), 1, gateway.Khalti)

	require.NoError(t, err)
	assert.NotEmpty(t, result.TransactionID)
	assert.Equal(t, "https://khalti.com/pay/abc", result.PaymentURL)
	assert.Equal(t, "PIDX-1", result.Pidx)

	tx, err := txs.Lookup(context.Background(), result.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, uint(1), tx.BookingID)
	assert.Equal(t, 1500.0, tx.Amount)
	assert.Equal(t, "PIDX-1", tx.Pidx)
}

func TestInitiatePayment_NoBookingMutation(t *testing.T) {
	khalti := &stubProvider{name: gateway.Khalti, initResp: &gateway.InitiateResponse{PaymentURL: "u", Pidx: "p"}}
	svc, repo, _, _ := paymentFixture(confirmedBooking(), khalti)

	_, err := svc.InitiatePayment(context.Background(), customer(), 1, gateway.Khalti)

	require.NoError(t, err)
	b, _ := repo.GetByID(1)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Nil(t, b.PaymentMethod)
}

func TestInitiatePayment_PendingBooking(t *testing.T) {
	b := confirmedBooking()
	b.Status = domain.BookingPending
	khalti := &stubProvider{name: gateway.Khalti}
	svc, _, txs, _ := paymentFixture(b, khalti)

	_, err := svc.InitiatePayment(context.Background(), customer(), 1, gateway.Khalti)

	assert.ErrorIs(t, err, domain.ErrInvalidBookingState)
	assert.Equal(t, 0, txs.len())
}

func TestInitiatePayment_ZeroAmount(t *testing.T) {
	b := confirmedBooking()
	b.TotalAmount = 0
	khalti := &stubProvider{name: gateway.Khalti}
	svc, _, txs, _ := paymentFixture(b, khalti)

	_, err := svc.InitiatePayment(context.Background(), customer(), 1, gateway.Khalti)

	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	assert.Equal(t, 0, txs.len())
}

func TestInitiatePayment_NotOwner(t *testing.T) {
	khalti := &stubProvider{name: gateway.Khalti}
	svc, _, _, _ := paymentFixture(confirmedBooking(), khalti)

	_, err := svc.InitiatePayment(context.Background(), domain.Principal{UserID: 99, Role: domain.RoleCustomer}, 1, gateway.Khalti)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestInitiatePayment_BookingMissing(t *testing.T) {
	khalti := &stubProvider{name: gateway.Khalti}
	svc, _, _, _ := paymentFixture(confirmedBooking(), khalti)

	_, err := svc.InitiatePayment(context.Background(), customer(), 42, gateway.Khalti)

	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestInitiatePayment_NotAuthenticated(t *testing.T) {
	khalti := &stubProvider{name: gateway.Khalti}
	svc, _, _, _ := paymentFixture(confirmedBooking(), khalti)

	_, err := svc.InitiatePayment(context.Background(), domain.Principal{}, 1, gateway.Khalti)

	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestInitiatePayment_UnknownGateway(t *testing.T) {
	khalti := &stubProvider{name: gateway.Khalti}
	svc, _, _, _ := paymentFixture(confirmedBooking(), khalti)

	_, err := svc.InitiatePayment(context.Background(), customer(), 1, gateway.Esewa)

	assert.ErrorIs(t, err, domain.ErrInvalidGateway)
}

func TestInitiatePayment_GatewayDown(t *testing.T) {
	khalti := &stubProvider{name: gateway.Khalti, initErr: gateway.ErrUnavailable}
	svc, _, txs, _ := paymentFixture(confirmedBooking(), khalti)

	_, err := svc.InitiatePayment(context.Background(), customer(), 1, gateway.Khalti)

	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	// the dead attempt must not keep a claimable transaction around
	assert.Equal(t, 0, txs.len())
}

func TestInitiatePayment_ReplacesPendingTransaction(t *testing.T) {
	khalti := &stubProvider{name: gateway.Khalti, initResp: &gateway.InitiateResponse{PaymentURL: "u", Pidx: "p"}}
	svc, _, txs, _ := paymentFixture(confirmedBooking(), khalti)

	first, err := svc.InitiatePayment(context.Background(), customer(), 1, gateway.Khalti)
	require.NoError(t, err)
	second, err := svc.InitiatePayment(context.Background(), customer(), 1, gateway.Khalti)
	require.NoError(t, err)

	assert.NotEqual(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, 1, txs.len())
	_, err = txs.Lookup(context.Background(), first.TransactionID)
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestVerifyPayment_Success(t *testing.T) {
	khalti := &stubProvider{
		name:         gateway.Khalti,
		initResp:     &gateway.InitiateResponse{PaymentURL: "u", Pidx: "X"},
		verifyResult: &gateway.Result{Success: true, Reference: "X"},
	}
	svc, repo, txs, notifier := paymentFixture(confirmedBooking(), khalti)

	initiated, err := svc.InitiatePayment(context.Background(), customer(), 1, gateway.Khalti)
	require.NoError(t, err)

	booking, err := svc.VerifyPayment(context.Background(), gateway.Khalti, initiated.TransactionID, service.VerifyParams{Pidx: "X"})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingPaid, booking.Status)
	require.NotNil(t, booking.PaymentMethod)
	assert.Equal(t, "khalti", *booking.PaymentMethod)
	require.NotNil(t, booking.PaymentReference)
	assert.Equal(t, "X", *booking.PaymentReference)
	assert.Equal(t, 0, txs.len())
	assert.Equal(t, 1, repo.markPaidCalls)
	assert.Equal(t, 1, notifier.paid)
}

// A verification that finds the booking already paid while its transaction
// is still pending (the first consume has not landed yet) is an idempotent
// success: no second mutation, transaction cleaned up.
func TestVerifyPayment_AlreadyPaid(t *testing.T) {
	khalti := &stubProvider{
		name:         gateway.Khalti,
		verifyResult: &gateway.Result{Success: true, Reference: "X"},
	}
	method := "khalti"
	ref := "X"
	b := confirmedBooking()
	b.Status = domain.BookingPaid
	b.PaymentMethod = &method
	b.PaymentReference = &ref
	svc, repo, txs, notifier := paymentFixture(b, khalti)

	tx, err := txs.Create(context.Background(), 1, 1500, "khalti")
	require.NoError(t, err)

	booking, err := svc.VerifyPayment(context.Background(), gateway.Khalti, tx.ID, service.VerifyParams{Pidx: "X"})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingPaid, booking.Status)
	assert.Equal(t, "X", *booking.PaymentReference)
	assert.Equal(t, 0, repo.markPaidCalls)
	assert.Equal(t, 0, txs.len())
	assert.Equal(t, 0, notifier.paid)
}

func TestVerifyPayment_DuplicateCallback(t *testing.T) {
	khalti := &stubProvider{
		name:         gateway.Khalti,
		initResp:     &gateway.InitiateResponse{PaymentURL: "u", Pidx: "X"},
		verifyResult: &gateway.Result{Success: true, Reference: "X"},
	}
	svc, repo, txs, _ := paymentFixture(confirmedBooking(), khalti)

	initiated, err := svc.InitiatePayment(context.Background(), customer(), 1, gateway.Khalti)
	require.NoError(t, err)

	first, err := svc.VerifyPayment(context.Background(), gateway.Khalti, initiated.TransactionID, service.VerifyParams{Pidx: "X"})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPaid, first.Status)

	// Second delivery of the same callback: transaction already consumed.
	_, err = svc.VerifyPayment(context.Background(), gateway.Khalti, initiated.TransactionID, service.VerifyParams{Pidx: "X"})
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
	assert.Equal(t, 1, repo.markPaidCalls)
	assert.Equal(t, 0, txs.len())
}

func TestVerifyPayment_Failed(t *testing.T) {
	khalti := &stubProvider{
		name:         gateway.Khalti,
		initResp:     &gateway.InitiateResponse{PaymentURL: "u", Pidx: "X"},
		verifyResult: &gateway.Result{Success: false, Reason: "payment not completed: Pending"},
	}
	svc, repo, txs, notifier := paymentFixture(confirmedBooking(), khalti)

	initiated, err := svc.InitiatePayment(context.Background(), customer(), 1, gateway.Khalti)
	require.NoError(t, err)

	_, err = svc.VerifyPayment(context.Background(), gateway.Khalti, initiated.TransactionID, service.VerifyParams{Pidx: "X"})

	assert.ErrorIs(t, err, domain.ErrVerificationFailed)
	b, _ := repo.GetByID(1)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Nil(t, b.PaymentMethod)
	// transaction stays consumable for a retry with fresh params
	assert.Equal(t, 1, txs.len())
	assert.Equal(t, 0, notifier.paid)
}

func TestVerifyPayment_RetryAfterFailure(t *testing.T) {
	khalti := &stubProvider{
		name:         gateway.Khalti,
		initResp:     &gateway.InitiateResponse{PaymentURL: "u", Pidx: "X"},
		verifyResult: &gateway.Result{Success: false, Reason: "payment not completed: Pending"},
	}
	svc, _, _, _ := paymentFixture(confirmedBooking(), khalti)

	initiated, err := svc.InitiatePayment(context.Background(), customer(), 1, gateway.Khalti)
	require.NoError(t, err)

	_, err = svc.VerifyPayment(context.Background(), gateway.Khalti, initiated.TransactionID, service.VerifyParams{Pidx: "X"})
	require.ErrorIs(t, err, domain.ErrVerificationFailed)

	khalti.verifyResult = &gateway.Result{Success: true, Reference: "X"}
	booking, err := svc.VerifyPayment(context.Background(), gateway.Khalti, initiated.TransactionID, service.VerifyParams{Pidx: "X"})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPaid, booking.Status)
}

func TestVerifyPayment_GatewayDown(t *testing.T) {
	khalti := &stubProvider{
		name:      gateway.Khalti,
		initResp:  &gateway.InitiateResponse{PaymentURL: "u", Pidx: "X"},
		verifyErr: errors.New("dial tcp: connection refused"),
	}
	svc, repo, txs, _ := paymentFixture(confirmedBooking(), khalti)

	initiated, err := svc.InitiatePayment(context.Background(), customer(), 1, gateway.Khalti)
	require.NoError(t, err)

	_, err = svc.VerifyPayment(context.Background(), gateway.Khalti, initiated.TransactionID, service.VerifyParams{Pidx: "X"})

	assert.ErrorIs(t, err, domain.ErrGatewayUnavailable)
	b, _ := repo.GetByID(1)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	assert.Equal(t, 1, txs.len())
}

func TestVerifyPayment_UnknownTransaction(t *testing.T) {
	khalti := &stubProvider{name: gateway.Khalti}
	svc, _, _, _ := paymentFixture(confirmedBooking(), khalti)

	_, err := svc.VerifyPayment(context.Background(), gateway.Khalti, "no-such-id", service.VerifyParams{Pidx: "X"})

	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestVerifyPayment_GatewayMismatch(t *testing.T) {
	khalti := &stubProvider{name: gateway.Khalti, initResp: &gateway.InitiateResponse{PaymentURL: "u", Pidx: "X"}}
	esewa := &stubProvider{name: gateway.Esewa, verifyResult: &gateway.Result{Success: true, Reference: "R"}}
	b := confirmedBooking()
	repo := newFakeBookingRepo(b)
	txs := newFakeTxStore()
	providers := map[gateway.Gateway]gateway.Provider{gateway.Khalti: khalti, gateway.Esewa: esewa}
	svc := service.NewPaymentService(repo, txs, providers, nil)

	initiated, err := svc.InitiatePayment(context.Background(), customer(), 1, gateway.Khalti)
	require.NoError(t, err)

	_, err = svc.VerifyPayment(context.Background(), gateway.Esewa, initiated.TransactionID, service.VerifyParams{RefID: "R"})
	assert.ErrorIs(t, err, domain.ErrInvalidGateway)
}

// Two near-simultaneous callbacks for one transaction: exactly one may apply
// the paid transition, the other takes the idempotent path. Neither errors.
func TestVerifyPayment_ConcurrentCallbacks(t *testing.T) {
	khalti := &stubProvider{
		name:         gateway.Khalti,
		initResp:     &gateway.InitiateResponse{PaymentURL: "u", Pidx: "X"},
		verifyResult: &gateway.Result{Success: true, Reference: "X"},
	}
	svc, repo, _, _ := paymentFixture(confirmedBooking(), khalti)

	initiated, err := svc.InitiatePayment(context.Background(), customer(), 1, gateway.Khalti)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.VerifyPayment(context.Background(), gateway.Khalti, initiated.TransactionID, service.VerifyParams{Pidx: "X"})
		}(i)
	}
	wg.Wait()

	for i, e := range errs {
		// a racer may observe the winner's consume and miss the transaction;
		// that is the duplicate-callback case, not a double spend
		if e != nil {
			assert.ErrorIs(t, e, domain.ErrTransactionNotFound, "goroutine %d", i)
		}
	}
	assert.Equal(t, 1, repo.markPaidCalls)
	b, _ := repo.GetByID(1)
	assert.Equal(t, domain.BookingPaid, b.Status)
}

// A successful gateway answer for a booking that was never confirmed must be
// rejected, not applied, and must leave the transaction in place.
func TestVerifyPayment_BookingNotConfirmed(t *testing.T) {
	khalti := &stubProvider{
		name:         gateway.Khalti,
		verifyResult: &gateway.Result{Success: true, Reference: "X"},
	}
	b := confirmedBooking()
	b.Status = domain.BookingPending
	svc, repo, txs, _ := paymentFixture(b, khalti)

	tx, err := txs.Create(context.Background(), 1, 1500, "khalti")
	require.NoError(t, err)

	_, err = svc.VerifyPayment(context.Background(), gateway.Khalti, tx.ID, service.VerifyParams{Pidx: "X"})

	assert.ErrorIs(t, err, domain.ErrInvalidBookingState)
	got, _ := repo.GetByID(1)
	assert.Equal(t, domain.BookingPending, got.Status)
	assert.Equal(t, 1, txs.len())
}

func TestPaymentStatus(t *testing.T) {
	method := "khalti"
	ref := "X"
	b := confirmedBooking()
	b.Status = domain.BookingPaid
	b.PaymentMethod = &method
	b.PaymentReference = &ref
	svc, _, _, _ := paymentFixture(b, &stubProvider{name: gateway.Khalti})

	status, err := svc.Status(customer(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingPaid, status.Status)
	assert.Equal(t, "khalti", *status.PaymentMethod)
	assert.Equal(t, "X", *status.PaymentReference)
	assert.Equal(t, 1500.0, status.TotalAmount)

	// the provider side may read it too
	_, err = svc.Status(domain.Principal{UserID: 20, Role: domain.RoleProvider}, 1)
	assert.NoError(t, err)

	// strangers may not
	_, err = svc.Status(domain.Principal{UserID: 77, Role: domain.RoleCustomer}, 1)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
