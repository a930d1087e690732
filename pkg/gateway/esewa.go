package gateway

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// EsewaProvider implements the eSewa ePay form-redirect flow. Initiation is
// local: the client submits the returned fields to the service URL itself.
// Verification is a server-to-server POST against the transrec endpoint.
type EsewaProvider struct {
	MerchantCode string
	ServiceURL   string
	VerifyURL    string
	SuccessURL   string
	FailureURL   string
	client       *http.Client
}

func NewEsewaProvider(merchantCode, serviceURL, verifyURL, successURL, failureURL string, timeout time.Duration) *EsewaProvider {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &EsewaProvider{
		MerchantCode: merchantCode,
		ServiceURL:   serviceURL,
		VerifyURL:    verifyURL,
		SuccessURL:   successURL,
		FailureURL:   failureURL,
		client:       &http.Client{Timeout: timeout},
	}
}

func (p *EsewaProvider) Name() Gateway { return Esewa }

func (p *EsewaProvider) Initiate(ctx context.Context, req InitiateRequest) (*InitiateResponse, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	amt := strconv.FormatFloat(req.Amount, 'f', 2, 64)
	fields := map[string]string{
		"amt":   amt,
		"pdc":   "0", // product delivery charge
		"psc":   "0", // product service charge
		"txAmt": "0", // tax amount
		"tAmt":  amt,
		"pid":   req.TransactionID,
		"scd":   p.MerchantCode,
		"su":    fmt.Sprintf("%s?booking_id=%d&method=esewa", p.SuccessURL, req.BookingID),
		"fu":    fmt.Sprintf("%s?booking_id=%d&method=esewa", p.FailureURL, req.BookingID),
	}
	return &InitiateResponse{PaymentURL: p.ServiceURL, Fields: fields}, nil
}

// Verify confirms the payment with eSewa using the redirect-supplied
// reference id and the original amount. eSewa has no structured status
// contract here; success is a marker substring in the response body.
func (p *EsewaProvider) Verify(ctx context.Context, req VerifyRequest) (*Result, error) {
	if req.RefID == "" {
		return &Result{Success: false, Reason: "missing esewa reference id"}, nil
	}
	form := url.Values{
		"amt": {strconv.FormatFloat(req.Amount, 'f', 2, 64)},
		"rid": {req.RefID},
		"pid": {req.TransactionID},
		"scd": {p.MerchantCode},
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("esewa verify: %w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("esewa verify: %w: status %d", ErrUnavailable, resp.StatusCode)
	}
	log.Printf("[ESEWA] verify pid=%s rid=%s status=%d", req.TransactionID, req.RefID, resp.StatusCode)
	if !strings.Contains(string(body), "Success") {
		return &Result{Success: false, Reason: "esewa did not confirm the payment"}, nil
	}
	return &Result{Success: true, Reference: req.RefID}, nil
}
