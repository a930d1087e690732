package service

import (
	"strings"

	"sewago/internal/domain"
)

// SewaAIService is the rule-based chat assistant: a stateless keyword-to-
// response lookup. No model, no history.
type SewaAIService struct {
	intents   map[string][]string
	responses map[string]string
}

func NewSewaAIService() *SewaAIService {
	return &SewaAIService{
		intents: map[string][]string{
			"greeting":       {"hello", "hi", "hey", "namaste", "good morning", "good afternoon"},
			"booking_help":   {"book", "booking", "schedule", "appointment", "service"},
			"payment_help":   {"payment", "pay", "esewa", "khalti", "money", "cost", "price"},
			"provider_help":  {"provider", "worker", "technician", "professional"},
			"problem_report": {"problem", "issue", "error", "bug", "not working"},
			"account_help":   {"account", "profile", "login", "register", "password"},
			"location_help":  {"location", "area", "address", "near me"},
			"rating_help":    {"rating", "review", "feedback", "star"},
			"goodbye":        {"bye", "goodbye", "see you", "thanks", "thank you"},
		},
		responses: map[string]string{
			"greeting":       "Hello! I'm SewaAI, your service assistant. How can I help you today?",
			"booking_help":   "To book a service: 1) Browse services 2) Select a provider 3) Choose date/time 4) Confirm booking.",
			"payment_help":   "We accept eSewa and Khalti payments. Payment is processed after the provider confirms your booking.",
			"provider_help":  "Our service providers are verified professionals. You can check their ratings and reviews before booking.",
			"problem_report": "I'm sorry you're experiencing issues. Can you describe the problem in detail?",
			"account_help":   "Account help: you can update your profile, change your password, or manage bookings in your dashboard.",
			"location_help":  "We serve Kathmandu, Lalitpur, and Bhaktapur. You can filter services by location.",
			"rating_help":    "You can rate and review service providers after service completion. This helps other customers.",
			"goodbye":        "Thank you for using SewaGo! Have a great day!",
			"default":        "I'm here to help with SewaGo services. Are you looking for booking, payment, or provider information?",
		},
	}
}

// DetectIntent matches the first intent whose keyword appears in the message.
func (s *SewaAIService) DetectIntent(message string) string {
	lower := strings.ToLower(message)
	// stable order so overlapping keywords resolve deterministically
	order := []string{"greeting", "booking_help", "payment_help", "provider_help",
		"problem_report", "account_help", "location_help", "rating_help", "goodbye"}
	for _, intent := range order {
		for _, kw := range s.intents[intent] {
			if strings.Contains(lower, kw) {
				return intent
			}
		}
	}
	return "default"
}

// Reply returns the canned response for the detected intent, with a
// role-specific override for providers asking about bookings.
func (s *SewaAIService) Reply(message, role string) (string, string) {
	intent := s.DetectIntent(message)
	if intent == "booking_help" && role == domain.RoleProvider {
		return intent, "As a service provider, you can manage your bookings in the dashboard and confirm pending requests."
	}
	return intent, s.responses[intent]
}
