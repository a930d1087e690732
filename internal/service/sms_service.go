package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sewago/config"
)

// SMSService sends texts through Sparrow SMS (Nepal). A nil service or an
// empty token disables dispatch entirely.
type SMSService struct {
	token  string
	from   string
	apiURL string
	client *http.Client
}

func NewSMSService(cfg *config.SMSConfig) *SMSService {
	if cfg.Token == "" {
		return nil
	}
	return &SMSService{
		token:  cfg.Token,
		from:   cfg.From,
		apiURL: cfg.APIURL,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// normalizePhone strips the country code and checks the Nepal mobile format.
func normalizePhone(phone string) (string, error) {
	p := strings.TrimSpace(phone)
	p = strings.TrimPrefix(p, "+977")
	p = strings.TrimPrefix(p, "977")
	p = strings.ReplaceAll(p, "-", "")
	if !strings.HasPrefix(p, "98") || len(p) != 10 {
		return "", fmt.Errorf("invalid nepal phone number %q", phone)
	}
	return p, nil
}

func (s *SMSService) Send(ctx context.Context, phone, message string) error {
	to, err := normalizePhone(phone)
	if err != nil {
		return err
	}
	form := url.Values{
		"token": {s.token},
		"from":  {s.from},
		"to":    {to},
		"text":  {message},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sparrow sms: status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
