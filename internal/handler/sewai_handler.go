package handler

import (
	"net/http"

	"sewago/internal/middleware"
	"sewago/internal/service"

	"github.com/gin-gonic/gin"
)

type SewaAIHandler struct {
	sewai *service.SewaAIService
}

func NewSewaAIHandler(sewai *service.SewaAIService) *SewaAIHandler {
	return &SewaAIHandler{sewai: sewai}
}

func (h *SewaAIHandler) Chat(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	principal := middleware.GetPrincipal(c)
	intent, reply := h.sewai.Reply(req.Message, principal.Role)
	c.JSON(http.StatusOK, gin.H{"intent": intent, "response": reply})
}
