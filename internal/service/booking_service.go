package service

import (
	"errors"
	"fmt"
	"time"

	"sewago/internal/domain"
	"sewago/internal/models"

	"gorm.io/gorm"
)

// BookingRepo is the repository surface the booking workflow needs.
type BookingRepo interface {
	Create(b *models.Booking) error
	GetByID(id uint) (*models.Booking, error)
	ListByCustomer(customerID uint) ([]models.Booking, error)
	ListByProvider(providerID uint) ([]models.Booking, error)
	UpdateStatus(id uint, from, to string) error
}

type ServiceRepo interface {
	GetByID(id uint) (*models.Service, error)
}

// BookingNotifier announces booking lifecycle events, best effort.
type BookingNotifier interface {
	NotifyBookingCreated(b *models.Booking)
	NotifyBookingConfirmed(b *models.Booking)
	NotifyBookingCancelled(b *models.Booking, cancelledBy uint)
}

// BookingService drives the non-payment transitions of the booking state
// machine: create, confirm, cancel, complete.
type BookingService struct {
	bookings BookingRepo
	services ServiceRepo
	notifier BookingNotifier
}

func NewBookingService(bookings BookingRepo, services ServiceRepo, notifier BookingNotifier) *BookingService {
	return &BookingService{bookings: bookings, services: services, notifier: notifier}
}

type CreateBookingRequest struct {
	ServiceID     uint      `json:"service_id" binding:"required"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ScheduledAt   time.Time `json:"scheduled_at" binding:"required"`
	DurationHours float64   `json:"duration_hours"`
	Location      string    `json:"location" binding:"required"`
}

func (s *BookingService) get(id uint) (*models.Booking, error) {
	b, err := s.bookings.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBookingNotFound
		}
		return nil, err
	}
	return b, nil
}

// Create opens a pending booking for the customer against a catalog service.
// The amount is priced off the service at creation time.
func (s *BookingService) Create(principal domain.Principal, req CreateBookingRequest) (*models.Booking, error) {
	if principal.Role != domain.RoleCustomer {
		return nil, domain.ErrForbidden
	}
	svc, err := s.services.GetByID(req.ServiceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrServiceNotFound
		}
		return nil, err
	}
	hours := req.DurationHours
	if hours <= 0 {
		hours = 1
	}
	title := req.Title
	if title == "" {
		title = svc.Title
	}
	b := &models.Booking{
		CustomerID:    principal.UserID,
		ProviderID:    svc.ProviderID,
		ServiceID:     svc.ID,
		Title:         title,
		Description:   req.Description,
		ScheduledAt:   req.ScheduledAt,
		DurationHours: hours,
		Location:      req.Location,
		TotalAmount:   svc.BasePrice * hours,
		Status:        domain.BookingPending,
	}
	if err := s.bookings.Create(b); err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyBookingCreated(b)
	}
	return b, nil
}

// Confirm is the provider accepting a pending booking.
func (s *BookingService) Confirm(principal domain.Principal, bookingID uint) (*models.Booking, error) {
	b, err := s.get(bookingID)
	if err != nil {
		return nil, err
	}
	if b.ProviderID != principal.UserID {
		return nil, domain.ErrForbidden
	}
	if err := s.bookings.UpdateStatus(b.ID, domain.BookingPending, domain.BookingConfirmed); err != nil {
		return nil, err
	}
	b, err = s.get(bookingID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyBookingConfirmed(b)
	}
	return b, nil
}

// Cancel is allowed to either party, only before payment. Cancellation after
// payment is a refund workflow this service does not handle.
func (s *BookingService) Cancel(principal domain.Principal, bookingID uint) (*models.Booking, error) {
	b, err := s.get(bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != principal.UserID && b.ProviderID != principal.UserID {
		return nil, domain.ErrForbidden
	}
	if b.Status != domain.BookingPending && b.Status != domain.BookingConfirmed {
		return nil, fmt.Errorf("%w: cannot cancel a %s booking", domain.ErrInvalidBookingState, b.Status)
	}
	if err := s.bookings.UpdateStatus(b.ID, b.Status, domain.BookingCancelled); err != nil {
		return nil, err
	}
	cancelled, err := s.get(bookingID)
	if err != nil {
		return nil, err
	}
	if s.notifier != nil {
		s.notifier.NotifyBookingCancelled(cancelled, principal.UserID)
	}
	return cancelled, nil
}

// Complete marks a paid booking delivered. Provider only.
func (s *BookingService) Complete(principal domain.Principal, bookingID uint) (*models.Booking, error) {
	b, err := s.get(bookingID)
	if err != nil {
		return nil, err
	}
	if b.ProviderID != principal.UserID {
		return nil, domain.ErrForbidden
	}
	if err := s.bookings.UpdateStatus(b.ID, domain.BookingPaid, domain.BookingCompleted); err != nil {
		return nil, err
	}
	return s.get(bookingID)
}

func (s *BookingService) Get(principal domain.Principal, bookingID uint) (*models.Booking, error) {
	b, err := s.get(bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != principal.UserID && b.ProviderID != principal.UserID {
		return nil, domain.ErrForbidden
	}
	return b, nil
}

// ListMine returns the principal's bookings from whichever side they sit on.
func (s *BookingService) ListMine(principal domain.Principal) ([]models.Booking, error) {
	if principal.Role == domain.RoleProvider {
		return s.bookings.ListByProvider(principal.UserID)
	}
	return s.bookings.ListByCustomer(principal.UserID)
}
