package handler

import (
	"net/http"
	"strconv"

	"sewago/internal/middleware"
	"sewago/internal/service"
	"sewago/pkg/gateway"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	payments *service.PaymentService
}

func NewPaymentHandler(payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// Initiate starts a payment attempt for a confirmed booking and returns the
// gateway redirect for the client to follow.
func (h *PaymentHandler) Initiate(c *gin.Context) {
	var req struct {
		BookingID uint   `json:"booking_id" binding:"required"`
		Gateway   string `json:"payment_method" binding:"required,oneof=esewa khalti"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gw, err := gateway.Parse(req.Gateway)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	principal := middleware.GetPrincipal(c)
	result, err := h.payments.InitiatePayment(c.Request.Context(), principal, req.BookingID, gw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"payment_url":    result.PaymentURL,
		"payment_data":   result.PaymentData,
		"transaction_id": result.TransactionID,
		"pidx":           result.Pidx,
	})
}

// Verify reconciles the redirect parameters with a server-to-server
// verification call and returns the updated booking on success.
func (h *PaymentHandler) Verify(c *gin.Context) {
	var req struct {
		Gateway       string `json:"method" binding:"required,oneof=esewa khalti"`
		TransactionID string `json:"transaction_id" binding:"required"`
		RefID         string `json:"ref_id"`
		Pidx          string `json:"pidx"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	gw, err := gateway.Parse(req.Gateway)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	booking, err := h.payments.VerifyPayment(c.Request.Context(), gw, req.TransactionID, service.VerifyParams{
		RefID: req.RefID,
		Pidx:  req.Pidx,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "payment verified successfully",
		"booking": booking,
	})
}

// Status returns the payment projection for a booking to either party.
func (h *PaymentHandler) Status(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("booking_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}
	principal := middleware.GetPrincipal(c)
	status, err := h.payments.Status(principal, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}
