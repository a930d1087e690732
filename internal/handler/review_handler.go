package handler

import (
	"errors"
	"net/http"
	"strconv"

	"sewago/internal/domain"
	"sewago/internal/middleware"
	"sewago/internal/models"
	"sewago/internal/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ReviewHandler struct {
	reviews  *repository.ReviewRepository
	bookings *repository.BookingRepository
}

func NewReviewHandler(reviews *repository.ReviewRepository, bookings *repository.BookingRepository) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, bookings: bookings}
}

// Create files a review for a completed booking. One per booking, customer only.
func (h *ReviewHandler) Create(c *gin.Context) {
	var req struct {
		BookingID uint   `json:"booking_id" binding:"required"`
		Rating    int    `json:"rating" binding:"required,min=1,max=5"`
		Comment   string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	principal := middleware.GetPrincipal(c)
	b, err := h.bookings.GetByID(req.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, domain.ErrBookingNotFound)
			return
		}
		respondError(c, err)
		return
	}
	if b.CustomerID != principal.UserID {
		respondError(c, domain.ErrForbidden)
		return
	}
	if b.Status != domain.BookingCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "only completed bookings can be reviewed"})
		return
	}
	if _, err := h.reviews.GetByBookingID(b.ID); err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "booking already reviewed"})
		return
	}
	rev := &models.Review{
		BookingID:  b.ID,
		CustomerID: b.CustomerID,
		ProviderID: b.ProviderID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	}
	if err := h.reviews.Create(rev); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"review": rev})
}

func (h *ReviewHandler) ListByProvider(c *gin.Context) {
	providerID, err := strconv.ParseUint(c.Param("provider_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.reviews.ListByProvider(uint(providerID), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	avg, count, err := h.reviews.ProviderAverage(uint(providerID))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reviews": list, "rating_avg": avg, "rating_count": count})
}
