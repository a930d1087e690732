package repository

import (
	"time"

	"sewago/internal/domain"
	"sewago/internal/models"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(b *models.Booking) error {
	return r.db.Create(b).Error
}

func (r *BookingRepository) GetByID(id uint) (*models.Booking, error) {
	var b models.Booking
	err := r.db.Preload("Customer").Preload("Provider").Preload("Service").First(&b, id).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepository) ListByCustomer(customerID uint) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.Where("customer_id = ?", customerID).Order("created_at DESC").Find(&list).Error
	return list, err
}

func (r *BookingRepository) ListByProvider(providerID uint) ([]models.Booking, error) {
	var list []models.Booking
	err := r.db.Where("provider_id = ?", providerID).Order("created_at DESC").Find(&list).Error
	return list, err
}

// UpdateStatus applies a guarded transition: the row is updated only when it
// still holds the expected prior status. A lost race or an out-of-order
// transition surfaces as ErrInvalidBookingState.
func (r *BookingRepository) UpdateStatus(id uint, from, to string) error {
	res := r.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{"status": to, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvalidBookingState
	}
	return nil
}

// MarkPaid is the confirmed -> paid transition. Payment method and reference
// are written together with the status swap, so at most one verification can
// ever record them.
func (r *BookingRepository) MarkPaid(id uint, method, reference string) error {
	res := r.db.Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, domain.BookingConfirmed).
		Updates(map[string]interface{}{
			"status":            domain.BookingPaid,
			"payment_method":    method,
			"payment_reference": reference,
			"updated_at":        time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrInvalidBookingState
	}
	return nil
}
