package gateway_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"sewago/pkg/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEsewa(verifyURL string) *gateway.EsewaProvider {
	return gateway.NewEsewaProvider(
		"EPAYTEST",
		"https://uat.esewa.com.np/epay/main",
		verifyURL,
		"https://sewago.example/payments/success",
		"https://sewago.example/payments/failure",
		5*time.Second,
	)
}

func TestEsewaInitiate(t *testing.T) {
	p := newEsewa("unused")

	resp, err := p.Initiate(context.Background(), gateway.InitiateRequest{
		BookingID:     42,
		TransactionID: "tx-abc",
		Amount:        1250.5,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://uat.esewa.com.np/epay/main", resp.PaymentURL)
	assert.Equal(t, "1250.50", resp.Fields["amt"])
	assert.Equal(t, "1250.50", resp.Fields["tAmt"])
	assert.Equal(t, "0", resp.Fields["txAmt"])
	assert.Equal(t, "tx-abc", resp.Fields["pid"])
	assert.Equal(t, "EPAYTEST", resp.Fields["scd"])
	assert.Equal(t, "https://sewago.example/payments/success?booking_id=42&method=esewa", resp.Fields["su"])
	assert.Equal(t, "https://sewago.example/payments/failure?booking_id=42&method=esewa", resp.Fields["fu"])
}

func TestEsewaInitiate_InvalidAmount(t *testing.T) {
	p := newEsewa("unused")

	_, err := p.Initiate(context.Background(), gateway.InitiateRequest{TransactionID: "tx", Amount: 0})

	assert.ErrorIs(t, err, gateway.ErrInvalidAmount)
}

func TestEsewaVerify_Success(t *testing.T) {
	var gotForm map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"amt": r.PostFormValue("amt"),
			"rid": r.PostFormValue("rid"),
			"pid": r.PostFormValue("pid"),
			"scd": r.PostFormValue("scd"),
		}
		w.Write([]byte("<response><response_code>Success</response_code></response>"))
	}))
	defer srv.Close()

	p := newEsewa(srv.URL)
	res, err := p.Verify(context.Background(), gateway.VerifyRequest{
		TransactionID: "tx-abc",
		Amount:        1500,
		RefID:         "REF001",
	})

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "REF001", res.Reference)
	assert.Equal(t, "1500.00", gotForm["amt"])
	assert.Equal(t, "REF001", gotForm["rid"])
	assert.Equal(t, "tx-abc", gotForm["pid"])
	assert.Equal(t, "EPAYTEST", gotForm["scd"])
}

func TestEsewaVerify_Declined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<response><response_code>failure</response_code></response>"))
	}))
	defer srv.Close()

	p := newEsewa(srv.URL)
	res, err := p.Verify(context.Background(), gateway.VerifyRequest{TransactionID: "tx", Amount: 100, RefID: "R"})

	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Reason)
}

func TestEsewaVerify_MissingRefID(t *testing.T) {
	p := newEsewa("unused")

	res, err := p.Verify(context.Background(), gateway.VerifyRequest{TransactionID: "tx", Amount: 100})

	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestEsewaVerify_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := newEsewa(srv.URL)
	_, err := p.Verify(context.Background(), gateway.VerifyRequest{TransactionID: "tx", Amount: 100, RefID: "R"})

	assert.ErrorIs(t, err, gateway.ErrUnavailable)
}

func TestEsewaVerify_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	p := newEsewa(srv.URL)
	_, err := p.Verify(context.Background(), gateway.VerifyRequest{TransactionID: "tx", Amount: 100, RefID: "R"})

	assert.ErrorIs(t, err, gateway.ErrUnavailable)
}
