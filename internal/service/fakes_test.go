package service_test

import (
	"context"
	"sync"
	"time"

	"sewago/internal/domain"
	"sewago/internal/models"
	"sewago/internal/registry"
	"sewago/pkg/gateway"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// fakeBookingRepo is an in-memory booking store with the same CAS semantics
// as the gorm repository: guarded transitions succeed only when the expected
// prior status still holds.
type fakeBookingRepo struct {
	mu            sync.Mutex
	bookings      map[uint]*models.Booking
	nextID        uint
	markPaidCalls int
}

func newFakeBookingRepo(bookings ...*models.Booking) *fakeBookingRepo {
	f := &fakeBookingRepo{bookings: make(map[uint]*models.Booking), nextID: 1}
	for _, b := range bookings {
		if b.ID >= f.nextID {
			f.nextID = b.ID + 1
		}
		f.bookings[b.ID] = b
	}
	return f
}

func (f *fakeBookingRepo) Create(b *models.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b.ID = f.nextID
	f.nextID++
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	f.bookings[b.ID] = b
	return nil
}

func (f *fakeBookingRepo) GetByID(id uint) (*models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBookingRepo) ListByCustomer(customerID uint) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListByProvider(providerID uint) ([]models.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Booking
	for _, b := range f.bookings {
		if b.ProviderID == providerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) UpdateStatus(id uint, from, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != from {
		return domain.ErrInvalidBookingState
	}
	b.Status = to
	b.UpdatedAt = time.Now()
	return nil
}

func (f *fakeBookingRepo) MarkPaid(id uint, method, reference string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.bookings[id]
	if !ok || b.Status != domain.BookingConfirmed {
		return domain.ErrInvalidBookingState
	}
	b.Status = domain.BookingPaid
	b.PaymentMethod = &method
	b.PaymentReference = &reference
	b.UpdatedAt = time.Now()
	f.markPaidCalls++
	return nil
}

// fakeTxStore mirrors the redis registry semantics in memory, including the
// one-pending-transaction-per-booking replacement rule.
type fakeTxStore struct {
	mu  sync.Mutex
	txs map[string]*registry.Transaction
}

func newFakeTxStore() *fakeTxStore {
	return &fakeTxStore{txs: make(map[string]*registry.Transaction)}
}

func (f *fakeTxStore) Create(ctx context.Context, bookingID uint, amount float64, gw string) (*registry.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, tx := range f.txs {
		if tx.BookingID == bookingID {
			delete(f.txs, id)
		}
	}
	tx := &registry.Transaction{
		ID:        uuid.NewString(),
		BookingID: bookingID,
		Amount:    amount,
		Gateway:   gw,
		CreatedAt: time.Now(),
	}
	f.txs[tx.ID] = tx
	return tx, nil
}

func (f *fakeTxStore) Update(ctx context.Context, tx *registry.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *tx
	f.txs[tx.ID] = &cp
	return nil
}

func (f *fakeTxStore) Lookup(ctx context.Context, id string) (*registry.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.txs[id]
	if !ok {
		return nil, domain.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (f *fakeTxStore) Consume(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.txs, id)
	return nil
}

func (f *fakeTxStore) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.txs)
}

// stubProvider returns canned initiate/verify outcomes.
type stubProvider struct {
	mu           sync.Mutex
	name         gateway.Gateway
	initResp     *gateway.InitiateResponse
	initErr      error
	verifyResult *gateway.Result
	verifyErr    error
	verifyCalls  int
}

func (s *stubProvider) Name() gateway.Gateway { return s.name }

func (s *stubProvider) Initiate(ctx context.Context, req gateway.InitiateRequest) (*gateway.InitiateResponse, error) {
	if s.initErr != nil {
		return nil, s.initErr
	}
	return s.initResp, nil
}

func (s *stubProvider) Verify(ctx context.Context, req gateway.VerifyRequest) (*gateway.Result, error) {
	s.mu.Lock()
	s.verifyCalls++
	s.mu.Unlock()
	if s.verifyErr != nil {
		return nil, s.verifyErr
	}
	return s.verifyResult, nil
}

// countingNotifier records lifecycle notifications; safe for concurrent use.
type countingNotifier struct {
	mu        sync.Mutex
	paid      int
	created   int
	confirmed int
	cancelled int
}

func (n *countingNotifier) NotifyPaymentConfirmed(b *models.Booking) {
	n.mu.Lock()
	n.paid++
	n.mu.Unlock()
}

func (n *countingNotifier) NotifyBookingCreated(b *models.Booking) {
	n.mu.Lock()
	n.created++
	n.mu.Unlock()
}

func (n *countingNotifier) NotifyBookingConfirmed(b *models.Booking) {
	n.mu.Lock()
	n.confirmed++
	n.mu.Unlock()
}

func (n *countingNotifier) NotifyBookingCancelled(b *models.Booking, cancelledBy uint) {
	n.mu.Lock()
	n.cancelled++
	n.mu.Unlock()
}

// fakeServiceRepo serves catalog lookups for booking creation.
type fakeServiceRepo struct {
	services map[uint]*models.Service
}

func (f *fakeServiceRepo) GetByID(id uint) (*models.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}
