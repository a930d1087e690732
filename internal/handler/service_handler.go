package handler

import (
	"net/http"
	"strconv"

	"sewago/internal/middleware"
	"sewago/internal/models"
	"sewago/internal/repository"

	"github.com/gin-gonic/gin"
)

type ServiceHandler struct {
	services *repository.ServiceRepository
}

func NewServiceHandler(services *repository.ServiceRepository) *ServiceHandler {
	return &ServiceHandler{services: services}
}

func (h *ServiceHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	list, err := h.services.List(c.Query("category"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": list})
}

func (h *ServiceHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service id"})
		return
	}
	svc, err := h.services.GetByID(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "service not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"service": svc})
}

// Create registers a new catalog entry for the authenticated provider.
func (h *ServiceHandler) Create(c *gin.Context) {
	var req struct {
		Category    string  `json:"category" binding:"required"`
		Title       string  `json:"title" binding:"required"`
		Description string  `json:"description"`
		BasePrice   float64 `json:"base_price" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	principal := middleware.GetPrincipal(c)
	svc := &models.Service{
		ProviderID:  principal.UserID,
		Category:    req.Category,
		Title:       req.Title,
		Description: req.Description,
		BasePrice:   req.BasePrice,
		Active:      true,
	}
	if err := h.services.Create(svc); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"service": svc})
}
