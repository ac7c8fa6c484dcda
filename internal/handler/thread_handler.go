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

// ThreadHandler handles thread API endpoints
type ThreadHandler struct {
	threads service.ThreadService
}

// NewThreadHandler creates a new ThreadHandler
func NewThreadHandler(threads service.ThreadService) *ThreadHandler {
	return &ThreadHandler{threads: threads}
}

// CreateThread handles POST /api/v1/threads
//
// Responds 201 when a thread was created, 200 when an existing direct
// thread was reused.
func (h *ThreadHandler) CreateThread(c *gin.Context) {
	userID := middleware.GetUserID(c)
	schoolID := middleware.GetSchoolID(c)

	var req domain.CreateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	result, err := h.threads.ResolveOrCreate(c.Request.Context(), schoolID, userID, &req)
	if err != nil {
		common.FailFromError(c, err, "failed to start conversation")
		return
	}
	if result.Reused {
		common.Success(c, result)
		return
	}
	common.Created(c, result)
}

// ListThreads handles GET /api/v1/threads
func (h *ThreadHandler) ListThreads(c *gin.Context) {
	userID := middleware.GetUserID(c)
	schoolID := middleware.GetSchoolID(c)

	summaries, err := h.threads.ListInbox(c.Request.Context(), schoolID, userID)
	if err != nil {
		common.FailFromError(c, err, "failed to list conversations")
		return
	}
	common.Success(c, summaries)
}

// UnreadCount handles GET /api/v1/threads/unread-count
func (h *ThreadHandler) UnreadCount(c *gin.Context) {
	userID := middleware.GetUserID(c)
	schoolID := middleware.GetSchoolID(c)

	count, err := h.threads.UnreadCount(c.Request.Context(), schoolID, userID)
	if err != nil {
		common.FailFromError(c, err, "failed to count unread conversations")
		return
	}
	common.Success(c, gin.H{"unread": count})
}

// DeleteThread handles DELETE /api/v1/threads/:id
func (h *ThreadHandler) DeleteThread(c *gin.Context) {
	userID := middleware.GetUserID(c)

	threadID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid thread id", err)
		return
	}

	if err := h.threads.Delete(c.Request.Context(), threadID, userID); err != nil {
		common.FailFromError(c, err, "failed to delete conversation")
		return
	}
	common.Success(c, nil)
}

// AddParticipant handles POST /api/v1/threads/:id/participants
func (h *ThreadHandler) AddParticipant(c *gin.Context) {
	actorID := middleware.GetUserID(c)

	threadID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid thread id", err)
		return
	}
	var req domain.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.threads.AddParticipant(c.Request.Context(), threadID, actorID, req.UserID); err != nil {
		common.FailFromError(c, err, "failed to add participant")
		return
	}
	common.Success(c, nil)
}

// RemoveParticipant handles DELETE /api/v1/threads/:id/participants/:user_id
func (h *ThreadHandler) RemoveParticipant(c *gin.Context) {
	actorID := middleware.GetUserID(c)

	threadID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid thread id", err)
		return
	}

	if err := h.threads.RemoveParticipant(c.Request.Context(), threadID, actorID, c.Param("user_id")); err != nil {
		common.FailFromError(c, err, "failed to remove participant")
		return
	}
	common.Success(c, nil)
}
