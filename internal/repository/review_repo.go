package repository

import (
	"sewago/internal/models"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Create(rev *models.Review) error {
	return r.db.Create(rev).Error
}

func (r *ReviewRepository) GetByBookingID(bookingID uint) (*models.Review, error) {
	var rev models.Review
	err := r.db.Where("booking_id = ?", bookingID).First(&rev).Error
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

func (r *ReviewRepository) ListByProvider(providerID uint, limit, offset int) ([]models.Review, error) {
	var list []models.Review
	err := r.db.Where("provider_id = ?", providerID).Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

// ProviderAverage returns the mean rating and review count for a provider.
func (r *ReviewRepository) ProviderAverage(providerID uint) (float64, int64, error) {
	var avg float64
	var count int64
	if err := r.db.Model(&models.Review{}).Where("provider_id = ?", providerID).Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}
	err := r.db.Model(&models.Review{}).Where("provider_id = ?", providerID).
		Select("AVG(rating)").Scan(&avg).Error
	return avg, count, err
}
