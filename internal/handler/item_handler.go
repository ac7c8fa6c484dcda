package handler

import (
	"net/http"
	"strconv"

	"github.com/classring/classring-backend/internal/common"
	"github.com/classring/classring-backend/internal/domain"
	"github.com/classring/classring-backend/internal/middleware"
	"github.com/classring/classring-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// ItemHandler handles thread item API endpoints
type ItemHandler struct {
	items service.ItemService
}

// NewItemHandler creates a new ItemHandler
func NewItemHandler(items service.ItemService) *ItemHandler {
	return &ItemHandler{items: items}
}

// PostItem handles POST /api/v1/threads/:id/items
func (h *ItemHandler) PostItem(c *gin.Context) {
	userID := middleware.GetUserID(c)

	threadID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid thread id", err)
		return
	}
	var req domain.PostItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	item, err := h.items.Post(c.Request.Context(), threadID, userID, req.Body, req.Attachments)
	if err != nil {
		common.FailFromError(c, err, "failed to post message")
		return
	}
	common.Created(c, item)
}

// ListItems handles GET /api/v1/threads/:id/items
//
// Listing marks the conversation read for the caller.
func (h *ItemHandler) ListItems(c *gin.Context) {
	userID := middleware.GetUserID(c)

	threadID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid thread id", err)
		return
	}
	page, limit := parsePagination(c)

	items, meta, err := h.items.List(c.Request.Context(), threadID, userID, page, limit)
	if err != nil {
		common.FailFromError(c, err, "failed to list messages")
		return
	}
	common.SuccessWithMeta(c, items, meta)
}

func parsePagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	return page, limit
}
