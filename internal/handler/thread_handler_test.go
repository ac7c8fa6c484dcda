package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/classring/classring-backend/internal/common"
	"github.com/classring/classring-backend/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockThreadService struct {
	mock.Mock
}

func (m *MockThreadService) ResolveOrCreate(ctx context.Context, schoolID uint64, initiatorID string, req *domain.CreateThreadRequest) (*domain.ThreadWithParticipants, error) {
	args := m.Called(ctx, schoolID, initiatorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ThreadWithParticipants), args.Error(1)
}

func (m *MockThreadService) ListInbox(ctx context.Context, schoolID uint64, userID string) ([]*domain.ThreadSummary, error) {
	args := m.Called(ctx, schoolID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ThreadSummary), args.Error(1)
}

func (m *MockThreadService) UnreadCount(ctx context.Context, schoolID uint64, userID string) (int64, error) {
	args := m.Called(ctx, schoolID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockThreadService) Delete(ctx context.Context, threadID uint64, userID string) error {
	args := m.Called(ctx, threadID, userID)
	return args.Error(0)
}

func (m *MockThreadService) AddParticipant(ctx context.Context, threadID uint64, actorID, userID string) error {
	args := m.Called(ctx, threadID, actorID, userID)
	return args.Error(0)
}

func (m *MockThreadService) RemoveParticipant(ctx context.Context, threadID uint64, actorID, userID string) error {
	args := m.Called(ctx, threadID, actorID, userID)
	return args.Error(0)
}

func setupThreadRouter(svc *MockThreadService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	// stand-in for the auth middleware
	router.Use(func(c *gin.Context) {
		c.Set("userID", "alice")
		c.Set("schoolID", uint64(1))
		c.Set("role", "teacher")
	})
	h := NewThreadHandler(svc)
	router.POST("/threads", h.CreateThread)
	router.GET("/threads", h.ListThreads)
	router.GET("/threads/unread-count", h.UnreadCount)
	router.DELETE("/threads/:id", h.DeleteThread)
	return router
}

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateThread_Created(t *testing.T) {
	svc := new(MockThreadService)
	router := setupThreadRouter(svc)

	svc.On("ResolveOrCreate", mock.Anything, uint64(1), "alice", mock.Anything).
		Return(&domain.ThreadWithParticipants{
			Thread: &domain.Thread{ID: 10, Kind: domain.ThreadKindDirect},
		}, nil)

	w := postJSON(router, "/threads", gin.H{"kind": "direct", "recipient_ids": []string{"bob"}})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp common.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestCreateThread_ReusedReturns200(t *testing.T) {
	svc := new(MockThreadService)
	router := setupThreadRouter(svc)

	svc.On("ResolveOrCreate", mock.Anything, uint64(1), "alice", mock.Anything).
		Return(&domain.ThreadWithParticipants{
			Thread: &domain.Thread{ID: 10, Kind: domain.ThreadKindDirect},
			Reused: true,
		}, nil)

	w := postJSON(router, "/threads", gin.H{"kind": "direct", "recipient_ids": []string{"bob"}})

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateThread_InvalidBody(t *testing.T) {
	svc := new(MockThreadService)
	router := setupThreadRouter(svc)

	w := postJSON(router, "/threads", gin.H{"kind": "direct"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "ResolveOrCreate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateThread_RecipientNotAllowed(t *testing.T) {
	svc := new(MockThreadService)
	router := setupThreadRouter(svc)

	svc.On("ResolveOrCreate", mock.Anything, uint64(1), "alice", mock.Anything).
		Return(nil, common.ErrRecipientNotAllowed)

	w := postJSON(router, "/threads", gin.H{"kind": "direct", "recipient_ids": []string{"dave"}})

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateThread_UnknownRecipient(t *testing.T) {
	svc := new(MockThreadService)
	router := setupThreadRouter(svc)

	svc.On("ResolveOrCreate", mock.Anything, uint64(1), "alice", mock.Anything).
		Return(nil, common.ErrUnknownRecipient)

	w := postJSON(router, "/threads", gin.H{"kind": "direct", "recipient_ids": []string{"ghost"}})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListThreads(t *testing.T) {
	svc := new(MockThreadService)
	router := setupThreadRouter(svc)

	svc.On("ListInbox", mock.Anything, uint64(1), "alice").
		Return([]*domain.ThreadSummary{{ID: 10, Kind: domain.ThreadKindDirect, Unread: true}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/threads", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread":true`)
}

func TestUnreadCount(t *testing.T) {
	svc := new(MockThreadService)
	router := setupThreadRouter(svc)

	svc.On("UnreadCount", mock.Anything, uint64(1), "alice").Return(int64(4), nil)

	req := httptest.NewRequest(http.MethodGet, "/threads/unread-count", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"unread":4`)
}

func TestDeleteThread_BadID(t *testing.T) {
	svc := new(MockThreadService)
	router := setupThreadRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/threads/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestDeleteThread_AccessDenied(t *testing.T) {
	svc := new(MockThreadService)
	router := setupThreadRouter(svc)

	svc.On("Delete", mock.Anything, uint64(10), "alice").Return(common.ErrAccessDenied)

	req := httptest.NewRequest(http.MethodDelete, "/threads/10", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
