package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// KhaltiProvider implements the Khalti ePayment API: a signed server-to-server
// initiate call returning a checkout URL plus pidx, and a lookup-style verify.
type KhaltiProvider struct {
	SecretKey   string
	InitiateURL string
	VerifyURL   string
	ReturnURL   string
	WebsiteURL  string
	client      *http.Client
}

func NewKhaltiProvider(secretKey, initiateURL, verifyURL, returnURL, websiteURL string, timeout time.Duration) *KhaltiProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &KhaltiProvider{
		SecretKey:   secretKey,
		InitiateURL: initiateURL,
		VerifyURL:   verifyURL,
		ReturnURL:   returnURL,
		WebsiteURL:  websiteURL,
		client:      &http.Client{Timeout: timeout},
	}
}

func (p *KhaltiProvider) Name() Gateway { return Khalti }

type khaltiCustomerInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type khaltiInitiateReq struct {
	ReturnURL         string             `json:"return_url"`
	WebsiteURL        string             `json:"website_url"`
	Amount            int64              `json:"amount"` // paisa
	PurchaseOrderID   string             `json:"purchase_order_id"`
	PurchaseOrderName string             `json:"purchase_order_name"`
	CustomerInfo      khaltiCustomerInfo `json:"customer_info"`
}

type khaltiInitiateResp struct {
	Pidx       string `json:"pidx"`
	PaymentURL string `json:"payment_url"`
}

func (p *KhaltiProvider) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	phone := req.CustomerPhone
	if phone == "" {
		phone = "9800000000"
	}
	payload := khaltiInitiateReq{
		ReturnURL:         fmt.Sprintf("%s?booking_id=%d&method=khalti", p.ReturnURL, req.BookingID),
		WebsiteURL:        p.WebsiteURL,
		Amount:            int64(req.Amount * 100), // NPR to paisa
		PurchaseOrderID:   req.TransactionID,
		PurchaseOrderName: fmt.Sprintf("SewaGo Booking #%d", req.BookingID),
		CustomerInfo: khaltiCustomerInfo{
			Name:  req.CustomerName,
			Email: req.CustomerEmail,
			Phone: phone,
		},
	}
	body, _ := json.Marshal(payload)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.InitiateURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+p.SecretKey)
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("khalti initiate: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Printf("[KHALTI] initiate failed status=%d body=%s", resp.StatusCode, string(respBody))
		return nil, fmt.Errorf("khalti initiate: %w: status %d", ErrUnavailable, resp.StatusCode)
	}
	var out khaltiInitiateResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("khalti initiate: decode: %w", err)
	}
	log.Printf("[KHALTI] initiated order=%s pidx=%s", req.TransactionID, out.Pidx)
	return &InitiateResponse{PaymentURL: out.PaymentURL, Pidx: out.Pidx}, nil
}

type khaltiVerifyResp struct {
	Pidx   string `json:"pidx"`
	Status string `json:"status"`
}

// Verify looks the payment up by pidx. Only a structured "Completed" status
// counts as success; anything else is a descriptive failure.
func (p *KhaltiProvider) Verify(ctx context.Context, req VerifyRequest) (*Result, error) {
	if req.Pidx == "" {
		return &Result{Success: false, Reason: "missing payment identifier"}, nil
	}
	body, _ := json.Marshal(map[string]string{"pidx": req.Pidx})
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.VerifyURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Key "+p.SecretKey)
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("khalti verify: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("khalti verify: %w: status %d", ErrUnavailable, resp.StatusCode)
	}
	var out khaltiVerifyResp
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("khalti verify: decode: %w", err)
	}
	log.Printf("[KHALTI] verify pidx=%s status=%s", req.Pidx, out.Status)
	if out.Status != "Completed" {
		return &Result{Success: false, Reason: "payment not completed: " + out.Status}, nil
	}
	return &Result{Success: true, Reference: req.Pidx}, nil
}
