package domain

const (
	RoleCustomer = "customer"
	RoleProvider = "provider"
)

// Booking lifecycle: pending -> confirmed -> paid -> completed, cancelled
// reachable from pending or confirmed only. Transitions are applied with
// compare-and-swap on the expected prior status, never unconditionally.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingPaid      = "paid"
	BookingCompleted = "completed"
	BookingCancelled = "cancelled"
)

const (
	NotificationBookingCreated   = "BOOKING_CREATED"
	NotificationBookingConfirmed = "BOOKING_CONFIRMED"
	NotificationBookingCancelled = "BOOKING_CANCELLED"
	NotificationPaymentConfirmed = "PAYMENT_CONFIRMED"
)

// Service categories offered across the Kathmandu Valley.
var ServiceCategories = []string{
	"plumbing", "electrical", "cleaning", "tutoring", "carpentry",
	"painting", "gardening", "beauty", "repair",
}
