package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sewago/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Transaction is one in-flight payment attempt. It lives only in redis,
// keyed by its id with a bounded TTL, so verification survives the redirect
// to the gateway even if the caller's session does not.
type Transaction struct {
	ID        string    `json:"id"`
	BookingID uint      `json:"booking_id"`
	Amount    float64   `json:"amount"`
	Gateway   string    `json:"gateway"`
	Pidx      string    `json:"pidx,omitempty"` // Khalti correlation id
	CreatedAt time.Time `json:"created_at"`
}

// Registry tracks pending payment transactions in redis. A booking has at
// most one pending transaction: creating a new one replaces the old.
type Registry struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{rdb: rdb, ttl: ttl}
}

func txKey(id string) string { return "payment:tx:" + id }

func bookingKey(bookingID uint) string { return fmt.Sprintf("payment:booking:%d", bookingID) }

// Create stores a fresh transaction with a crypto-random id, invalidating
// any prior pending transaction for the same booking.
func (r *Registry) Create(ctx context.Context, bookingID uint, amount float64, gw string) (*Transaction, error) {
	if old, err := r.rdb.Get(ctx, bookingKey(bookingID)).Result(); err == nil && old != "" {
		if err := r.rdb.Del(ctx, txKey(old)).Err(); err != nil {
			return nil, fmt.Errorf("registry: replace pending transaction: %w", err)
		}
	} else if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("registry: booking index: %w", err)
	}
	tx := &Transaction{
		ID:        uuid.NewString(),
		BookingID: bookingID,
		Amount:    amount,
		Gateway:   gw,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.put(ctx, tx); err != nil {
		return nil, err
	}
	if err := r.rdb.Set(ctx, bookingKey(bookingID), tx.ID, r.ttl).Err(); err != nil {
		return nil, fmt.Errorf("registry: booking index: %w", err)
	}
	return tx, nil
}

// Update rewrites the stored record, e.g. to attach the gateway correlation id.
func (r *Registry) Update(ctx context.Context, tx *Transaction) error {
	return r.put(ctx, tx)
}

func (r *Registry) put(ctx context.Context, tx *Transaction) error {
	b, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, txKey(tx.ID), b, r.ttl).Err(); err != nil {
		return fmt.Errorf("registry: store transaction: %w", err)
	}
	return nil
}

// Lookup returns the pending transaction or ErrTransactionNotFound when the
// id is unknown or the record has expired.
func (r *Registry) Lookup(ctx context.Context, id string) (*Transaction, error) {
	raw, err := r.rdb.Get(ctx, txKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrTransactionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("registry: lookup: %w", err)
	}
	var tx Transaction
	if err := json.Unmarshal([]byte(raw), &tx); err != nil {
		return nil, fmt.Errorf("registry: decode: %w", err)
	}
	return &tx, nil
}

// Consume deletes the transaction. Consuming an unknown or already-consumed
// id is a no-op so duplicate gateway callbacks stay harmless.
func (r *Registry) Consume(ctx context.Context, id string) error {
	tx, err := r.Lookup(ctx, id)
	if errors.Is(err, domain.ErrTransactionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := r.rdb.Del(ctx, txKey(id), bookingKey(tx.BookingID)).Err(); err != nil {
		return fmt.Errorf("registry: consume: %w", err)
	}
	return nil
}
