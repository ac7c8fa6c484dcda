package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/classring/classring-backend/internal/common"
	"github.com/classring/classring-backend/internal/domain"
	"github.com/classring/classring-backend/internal/repository"
	"github.com/classring/classring-backend/pkg/cache"
	"github.com/classring/classring-backend/pkg/logger"
	"gorm.io/gorm"
)

// ItemService posts and lists thread items, maintaining per-participant
// unread state along the way
type ItemService interface {
	Post(ctx context.Context, threadID uint64, authorID, body string, attachments []string) (*domain.ThreadItem, error)
	// List returns a page of items oldest-first (storage pages
	// newest-first; the page is reversed before returning) and clears
	// the caller's unread flag. The clear happens only after the item
	// query succeeded; a failed clear never fails the read.
	List(ctx context.Context, threadID uint64, userID string, page, limit int) ([]*domain.ThreadItem, *common.Meta, error)
}

type itemService struct {
	threads      repository.ThreadRepository
	participants repository.ParticipantRepository
	items        repository.ItemRepository
	cache        cache.Service
}

// NewItemService creates a new ItemService
func NewItemService(
	threads repository.ThreadRepository,
	participants repository.ParticipantRepository,
	items repository.ItemRepository,
	cacheSvc cache.Service,
) ItemService {
	return &itemService{
		threads:      threads,
		participants: participants,
		items:        items,
		cache:        cacheSvc,
	}
}

func (s *itemService) Post(ctx context.Context, threadID uint64, authorID, body string, attachments []string) (*domain.ThreadItem, error) {
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: body must not be empty", common.ErrInvalidInput)
	}
	if utf8.RuneCountInString(body) > domain.MaxItemBodyLen {
		return nil, fmt.Errorf("%w: body exceeds %d characters", common.ErrInvalidInput, domain.MaxItemBodyLen)
	}

	thread, err := s.threads.FindByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("%w: load thread: %v", common.ErrStorageUnavailable, err)
	}
	if _, err := s.participants.FindCurrent(ctx, threadID, authorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotAParticipant
		}
		return nil, fmt.Errorf("%w: load membership: %v", common.ErrStorageUnavailable, err)
	}

	item := &domain.ThreadItem{
		ThreadID:    threadID,
		SchoolID:    thread.SchoolID,
		AuthorID:    authorID,
		Body:        body,
		Attachments: domain.Attachments(attachments),
	}
	if err := s.items.CreateWithFanout(ctx, item); err != nil {
		return nil, fmt.Errorf("%w: post item: %v", common.ErrStorageUnavailable, err)
	}

	s.invalidateInbox(ctx, threadID)
	return item, nil
}

func (s *itemService) List(ctx context.Context, threadID uint64, userID string, page, limit int) ([]*domain.ThreadItem, *common.Meta, error) {
	p, err := s.participants.FindCurrent(ctx, threadID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, common.ErrAccessDenied
		}
		return nil, nil, fmt.Errorf("%w: load membership: %v", common.ErrStorageUnavailable, err)
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	items, total, err := s.items.FindByThread(ctx, threadID, page, limit)
	if err != nil {
		// Do not clear unread on a failed read
		return nil, nil, fmt.Errorf("%w: list items: %v", common.ErrStorageUnavailable, err)
	}

	// Oldest-first for display
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}

	if p.Unread {
		if err := s.participants.ClearUnread(ctx, threadID, userID); err != nil {
			// Items are still returned; the flag clears on the next read
			logger.Get().Warn().Err(err).
				Uint64("thread_id", threadID).
				Str("user_id", userID).
				Msg("unread clear failed")
		} else if s.cache != nil && s.cache.IsAvailable() {
			if err := s.cache.BumpInboxVersions(ctx, userID); err != nil {
				logger.Get().Warn().Err(err).Msg("inbox version bump failed")
			}
		}
	}

	return items, common.NewMeta(page, limit, total), nil
}

// invalidateInbox bumps the inbox cache version of every current
// participant after a new item; best effort
func (s *itemService) invalidateInbox(ctx context.Context, threadID uint64) {
	if s.cache == nil || !s.cache.IsAvailable() {
		return
	}
	participants, err := s.participants.FindByThread(ctx, threadID)
	if err != nil {
		logger.Get().Warn().Err(err).Uint64("thread_id", threadID).Msg("inbox invalidation skipped")
		return
	}
	userIDs := make([]string, len(participants))
	for i, p := range participants {
		userIDs[i] = p.UserID
	}
	if err := s.cache.BumpInboxVersions(ctx, userIDs...); err != nil {
		logger.Get().Warn().Err(err).Msg("inbox version bump failed")
	}
}
