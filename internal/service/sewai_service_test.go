package service_test

import (
	"testing"

	"sewago/internal/domain"
	"sewago/internal/service"

	"github.com/stretchr/testify/assert"
)

func TestDetectIntent(t *testing.T) {
	ai := service.NewSewaAIService()

	cases := []struct {
		message string
		intent  string
	}{
		{"Namaste, can you help me?", "greeting"},
		{"How do I book a plumber?", "booking_help"},
		{"Can I pay with khalti?", "payment_help"},
		{"Is the technician verified?", "provider_help"},
		{"The app is not working", "problem_report"},
		{"I forgot my password", "account_help"},
		{"Do you cover my area?", "location_help"},
		{"Where do I leave a review?", "rating_help"},
		{"ok bye", "goodbye"},
		{"xyzzy", "default"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.intent, ai.DetectIntent(tc.message), "message: %s", tc.message)
	}
}

func TestDetectIntent_OverlapIsDeterministic(t *testing.T) {
	ai := service.NewSewaAIService()

	// "book" and "pay" both appear; booking_help wins by fixed order.
	assert.Equal(t, "booking_help", ai.DetectIntent("how do i pay for my booking"))
}

func TestReply(t *testing.T) {
	ai := service.NewSewaAIService()

	intent, resp := ai.Reply("can I pay with esewa?", domain.RoleCustomer)
	assert.Equal(t, "payment_help", intent)
	assert.Contains(t, resp, "eSewa")

	intent, resp = ai.Reply("gibberish", domain.RoleCustomer)
	assert.Equal(t, "default", intent)
	assert.NotEmpty(t, resp)
}

func TestReply_ProviderBookingOverride(t *testing.T) {
	ai := service.NewSewaAIService()

	intent, resp := ai.Reply("how do bookings work", domain.RoleProvider)
	assert.Equal(t, "booking_help", intent)
	assert.Contains(t, resp, "provider")
}
