package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"sewago/internal/domain"
	"sewago/internal/models"
	"sewago/internal/repository"
)

// NotificationService persists in-app notifications and sends a best-effort
// SMS. It sits outside the payment consistency boundary: every failure here
// is logged and swallowed, never propagated into a booking transition.
type NotificationService struct {
	repo     *repository.NotificationRepository
	userRepo *repository.UserRepository
	sms      *SMSService
}

func NewNotificationService(repo *repository.NotificationRepository, userRepo *repository.UserRepository, sms *SMSService) *NotificationService {
	return &NotificationService{repo: repo, userRepo: userRepo, sms: sms}
}

func (s *NotificationService) notify(userID uint, notifType, title, body string, data map[string]interface{}) {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	err := s.repo.Create(&models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	})
	if err != nil {
		log.Printf("[NOTIFY] store user=%d type=%s failed: %v", userID, notifType, err)
	}
	s.sendSMS(userID, body)
}

func (s *NotificationService) sendSMS(userID uint, message string) {
	if s.sms == nil || s.userRepo == nil {
		return
	}
	u, err := s.userRepo.GetByID(userID)
	if err != nil || u.Phone == "" {
		return
	}
	if err := s.sms.Send(context.Background(), u.Phone, message); err != nil {
		log.Printf("[NOTIFY] sms user=%d failed: %v", userID, err)
	}
}

func (s *NotificationService) NotifyBookingCreated(b *models.Booking) {
	s.notify(b.ProviderID, domain.NotificationBookingCreated, "New booking request",
		fmt.Sprintf("You have a new booking request for %s on %s.", b.Title, b.ScheduledAt.Format("Jan 2 15:04")),
		map[string]interface{}{"booking_id": b.ID})
}

func (s *NotificationService) NotifyBookingConfirmed(b *models.Booking) {
	s.notify(b.CustomerID, domain.NotificationBookingConfirmed, "Booking confirmed",
		fmt.Sprintf("Your booking for %s is confirmed. You can now pay via eSewa or Khalti.", b.Title),
		map[string]interface{}{"booking_id": b.ID})
}

func (s *NotificationService) NotifyBookingCancelled(b *models.Booking, cancelledBy uint) {
	other := b.CustomerID
	if cancelledBy == b.CustomerID {
		other = b.ProviderID
	}
	s.notify(other, domain.NotificationBookingCancelled, "Booking cancelled",
		fmt.Sprintf("The booking for %s was cancelled.", b.Title),
		map[string]interface{}{"booking_id": b.ID})
}

func (s *NotificationService) NotifyPaymentConfirmed(b *models.Booking) {
	data := map[string]interface{}{"booking_id": b.ID, "amount": b.TotalAmount}
	s.notify(b.CustomerID, domain.NotificationPaymentConfirmed, "Payment confirmed",
		fmt.Sprintf("Your payment of NPR %.2f for %s was successful.", b.TotalAmount, b.Title), data)
	s.notify(b.ProviderID, domain.NotificationPaymentConfirmed, "Booking paid",
		fmt.Sprintf("%s has been paid. You can deliver the service.", b.Title), data)
}
