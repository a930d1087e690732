package repository

import (
	"sewago/internal/models"

	"gorm.io/gorm"
)

type ServiceRepository struct {
	db *gorm.DB
}

func NewServiceRepository(db *gorm.DB) *ServiceRepository {
	return &ServiceRepository{db: db}
}

func (r *ServiceRepository) Create(s *models.Service) error {
	return r.db.Create(s).Error
}

func (r *ServiceRepository) GetByID(id uint) (*models.Service, error) {
	var s models.Service
	err := r.db.First(&s, id).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ServiceRepository) List(category string, limit, offset int) ([]models.Service, error) {
	q := r.db.Where("active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var list []models.Service
	err := q.Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}

func (r *ServiceRepository) ListByProvider(providerID uint) ([]models.Service, error) {
	var list []models.Service
	err := r.db.Where("provider_id = ?", providerID).Order("created_at DESC").Find(&list).Error
	return list, err
}
