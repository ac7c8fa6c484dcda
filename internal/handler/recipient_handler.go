package handler

import (
	"github.com/classring/classring-backend/internal/common"
	"github.com/classring/classring-backend/internal/middleware"
	"github.com/classring/classring-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// RecipientHandler handles recipient directory endpoints
type RecipientHandler struct {
	recipients service.RecipientService
}

// NewRecipientHandler creates a new RecipientHandler
func NewRecipientHandler(recipients service.RecipientService) *RecipientHandler {
	return &RecipientHandler{recipients: recipients}
}

// ListRecipients handles GET /api/v1/recipients
func (h *RecipientHandler) ListRecipients(c *gin.Context) {
	userID := middleware.GetUserID(c)
	schoolID := middleware.GetSchoolID(c)

	groups, err := h.recipients.ListRecipients(c.Request.Context(), schoolID, userID, c.Query("search"))
	if err != nil {
		common.FailFromError(c, err, "failed to list recipients")
		return
	}
	common.Success(c, groups)
}
