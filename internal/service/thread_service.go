package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/classring/classring-backend/internal/common"
	"github.com/classring/classring-backend/internal/domain"
	"github.com/classring/classring-backend/internal/repository"
	"github.com/classring/classring-backend/pkg/cache"
	"github.com/classring/classring-backend/pkg/logger"
	"gorm.io/gorm"
)

const previewBodyLen = 120

// ThreadService resolves, lists and manages conversation threads
type ThreadService interface {
	// ResolveOrCreate converges repeated direct-thread requests for the
	// same user pair onto one thread; group requests always create a new
	// thread. No item is created here — the first message is a separate
	// PostItem call.
	ResolveOrCreate(ctx context.Context, schoolID uint64, initiatorID string, req *domain.CreateThreadRequest) (*domain.ThreadWithParticipants, error)
	ListInbox(ctx context.Context, schoolID uint64, userID string) ([]*domain.ThreadSummary, error)
	UnreadCount(ctx context.Context, schoolID uint64, userID string) (int64, error)
	// Delete soft-deletes the thread. For direct threads the single
	// deleted_at marker hides the conversation for BOTH participants.
	Delete(ctx context.Context, threadID uint64, userID string) error
	AddParticipant(ctx context.Context, threadID uint64, actorID, userID string) error
	// RemoveParticipant removes a group member. Allowed for the member
	// themselves (leave) or the thread creator; the removed member loses
	// access on their next call.
	RemoveParticipant(ctx context.Context, threadID uint64, actorID, userID string) error
}

type threadService struct {
	threads      repository.ThreadRepository
	participants repository.ParticipantRepository
	items        repository.ItemRepository
	members      repository.MemberRepository
	recipients   RecipientService
	cache        cache.Service
}

// NewThreadService creates a new ThreadService
func NewThreadService(
	threads repository.ThreadRepository,
	participants repository.ParticipantRepository,
	items repository.ItemRepository,
	members repository.MemberRepository,
	recipients RecipientService,
	cacheSvc cache.Service,
) ThreadService {
	return &threadService{
		threads:      threads,
		participants: participants,
		items:        items,
		members:      members,
		recipients:   recipients,
		cache:        cacheSvc,
	}
}

func (s *threadService) ResolveOrCreate(ctx context.Context, schoolID uint64, initiatorID string, req *domain.CreateThreadRequest) (*domain.ThreadWithParticipants, error) {
	if req == nil || len(req.RecipientIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient required", common.ErrInvalidInput)
	}
	if req.Kind != domain.ThreadKindDirect && req.Kind != domain.ThreadKindGroup {
		return nil, fmt.Errorf("%w: unknown thread kind %q", common.ErrInvalidInput, req.Kind)
	}

	initiator, err := s.members.FindByID(ctx, schoolID, initiatorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: resolve initiator: %v", common.ErrStorageUnavailable, err)
	}
	if _, err := s.recipients.AllowedRoles(initiator.Role); err != nil {
		return nil, err
	}

	recipientIDs := dedupeIDs(req.RecipientIDs, initiatorID)
	if req.Kind == domain.ThreadKindDirect {
		if len(req.RecipientIDs) != 1 || req.RecipientIDs[0] == initiatorID {
			return nil, fmt.Errorf("%w: a direct thread takes exactly one recipient other than yourself", common.ErrInvalidInput)
		}
	}
	if len(recipientIDs) == 0 {
		return nil, fmt.Errorf("%w: no recipients besides yourself", common.ErrInvalidInput)
	}

	recipients := make([]*domain.Member, 0, len(recipientIDs))
	for _, id := range recipientIDs {
		member, err := s.members.FindByID(ctx, schoolID, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Covers cross-school IDs too: lookups are school-scoped
				return nil, fmt.Errorf("%w: %s", common.ErrUnknownRecipient, id)
			}
			return nil, fmt.Errorf("%w: resolve recipient: %v", common.ErrStorageUnavailable, err)
		}
		if !s.recipients.CanMessage(initiator.Role, member.Role) {
			return nil, fmt.Errorf("%w: %s", common.ErrRecipientNotAllowed, id)
		}
		recipients = append(recipients, member)
	}

	if req.Kind == domain.ThreadKindDirect {
		return s.resolveDirect(ctx, schoolID, initiator, recipients[0], req.Subject)
	}
	return s.createGroup(ctx, schoolID, initiator, recipients, req.Subject)
}

// resolveDirect reuses the existing thread for the unordered pair or
// creates one. Concurrent creates are settled by the pair_key unique
// index: the loser re-reads the winner's row instead of duplicating.
func (s *threadService) resolveDirect(ctx context.Context, schoolID uint64, initiator, recipient *domain.Member, subject string) (*domain.ThreadWithParticipants, error) {
	key := domain.DirectPairKey(schoolID, initiator.ID, recipient.ID)

	existing, err := s.threads.FindByPairKey(ctx, key)
	if err == nil {
		return s.withParticipants(ctx, existing, true)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: lookup direct thread: %v", common.ErrStorageUnavailable, err)
	}

	thread := &domain.Thread{
		SchoolID:  schoolID,
		Kind:      domain.ThreadKindDirect,
		Subject:   subject,
		CreatedBy: initiator.ID,
		PairKey:   &key,
	}
	// Unread starts false for both sides; it only flips on the first item
	participants := []*domain.ThreadParticipant{
		{UserID: initiator.ID, SchoolID: schoolID, RoleLabel: domain.ParticipantRoleOwner},
		{UserID: recipient.ID, SchoolID: schoolID, RoleLabel: domain.ParticipantRoleMember},
	}

	err = s.threads.CreateWithParticipants(ctx, thread, participants)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost the race; the winner's thread is in place now
		winner, lookupErr := s.threads.FindByPairKey(ctx, key)
		if lookupErr != nil {
			return nil, fmt.Errorf("%w: direct thread created concurrently", common.ErrConflict)
		}
		return s.withParticipants(ctx, winner, true)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: create direct thread: %v", common.ErrStorageUnavailable, err)
	}

	s.bumpInbox(ctx, initiator.ID, recipient.ID)
	return &domain.ThreadWithParticipants{Thread: thread, Participants: participants}, nil
}

func (s *threadService) createGroup(ctx context.Context, schoolID uint64, initiator *domain.Member, recipients []*domain.Member, subject string) (*domain.ThreadWithParticipants, error) {
	thread := &domain.Thread{
		SchoolID:  schoolID,
		Kind:      domain.ThreadKindGroup,
		Subject:   subject,
		CreatedBy: initiator.ID,
	}
	participants := make([]*domain.ThreadParticipant, 0, len(recipients)+1)
	participants = append(participants, &domain.ThreadParticipant{
		UserID: initiator.ID, SchoolID: schoolID, RoleLabel: domain.ParticipantRoleOwner,
	})
	userIDs := []string{initiator.ID}
	for _, m := range recipients {
		participants = append(participants, &domain.ThreadParticipant{
			UserID: m.ID, SchoolID: schoolID, RoleLabel: domain.ParticipantRoleMember,
		})
		userIDs = append(userIDs, m.ID)
	}

	if err := s.threads.CreateWithParticipants(ctx, thread, participants); err != nil {
		return nil, fmt.Errorf("%w: create group thread: %v", common.ErrStorageUnavailable, err)
	}

	s.bumpInbox(ctx, userIDs...)
	return &domain.ThreadWithParticipants{Thread: thread, Participants: participants}, nil
}

func (s *threadService) ListInbox(ctx context.Context, schoolID uint64, userID string) ([]*domain.ThreadSummary, error) {
	var version int64 = -1
	if s.cacheReady() {
		if v, err := s.cache.InboxVersion(ctx, userID); err == nil {
			version = v
			var cached []*domain.ThreadSummary
			if err := s.cache.GetInbox(ctx, userID, version, &cached); err == nil {
				return cached, nil
			}
		}
	}

	threads, err := s.threads.FindForUser(ctx, schoolID, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: list threads: %v", common.ErrStorageUnavailable, err)
	}
	if len(threads) == 0 {
		return []*domain.ThreadSummary{}, nil
	}

	threadIDs := make([]uint64, len(threads))
	for i, t := range threads {
		threadIDs[i] = t.ID
	}

	participants, err := s.participants.FindByThreadIDs(ctx, threadIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: list participants: %v", common.ErrStorageUnavailable, err)
	}
	latest, err := s.items.LatestByThreadIDs(ctx, threadIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: load previews: %v", common.ErrStorageUnavailable, err)
	}

	unreadByThread := make(map[uint64]bool)
	othersByThread := make(map[uint64][]string)
	otherIDSet := make(map[string]struct{})
	for _, p := range participants {
		if p.UserID == userID {
			unreadByThread[p.ThreadID] = p.Unread
			continue
		}
		othersByThread[p.ThreadID] = append(othersByThread[p.ThreadID], p.UserID)
		otherIDSet[p.UserID] = struct{}{}
	}

	otherIDs := make([]string, 0, len(otherIDSet))
	for id := range otherIDSet {
		otherIDs = append(otherIDs, id)
	}
	members, err := s.members.FindByIDs(ctx, schoolID, otherIDs)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve participants: %v", common.ErrStorageUnavailable, err)
	}
	memberByID := make(map[string]*domain.Member, len(members))
	for _, m := range members {
		memberByID[m.ID] = m
	}

	summaries := make([]*domain.ThreadSummary, 0, len(threads))
	for _, t := range threads {
		summary := &domain.ThreadSummary{
			ID:        t.ID,
			Kind:      t.Kind,
			Subject:   t.Subject,
			Unread:    unreadByThread[t.ID],
			UpdatedAt: t.UpdatedAt,
		}
		if item, ok := latest[t.ID]; ok {
			summary.LastItem = &domain.ItemPreview{
				AuthorID:  item.AuthorID,
				Body:      truncateBody(item.Body, previewBodyLen),
				CreatedAt: item.CreatedAt,
			}
		}
		for _, id := range othersByThread[t.ID] {
			if m, ok := memberByID[id]; ok {
				summary.Participants = append(summary.Participants, m.ToRecipientInfo())
			}
		}
		summaries = append(summaries, summary)
	}

	if s.cacheReady() && version >= 0 {
		if err := s.cache.SetInbox(ctx, userID, version, summaries); err != nil {
			logger.Get().Warn().Err(err).Str("user_id", userID).Msg("inbox cache write failed")
		}
	}
	return summaries, nil
}

func (s *threadService) UnreadCount(ctx context.Context, schoolID uint64, userID string) (int64, error) {
	count, err := s.participants.CountUnreadThreads(ctx, schoolID, userID)
	if err != nil {
		return 0, fmt.Errorf("%w: count unread: %v", common.ErrStorageUnavailable, err)
	}
	return count, nil
}

func (s *threadService) Delete(ctx context.Context, threadID uint64, userID string) error {
	thread, err := s.threads.FindByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: load thread: %v", common.ErrStorageUnavailable, err)
	}
	if _, err := s.participants.FindCurrent(ctx, threadID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrAccessDenied
		}
		return fmt.Errorf("%w: load membership: %v", common.ErrStorageUnavailable, err)
	}

	participants, err := s.participants.FindByThread(ctx, threadID)
	if err != nil {
		return fmt.Errorf("%w: list participants: %v", common.ErrStorageUnavailable, err)
	}
	if err := s.threads.SoftDelete(ctx, thread.ID); err != nil {
		return fmt.Errorf("%w: delete thread: %v", common.ErrStorageUnavailable, err)
	}

	userIDs := make([]string, len(participants))
	for i, p := range participants {
		userIDs[i] = p.UserID
	}
	s.bumpInbox(ctx, userIDs...)
	return nil
}

func (s *threadService) AddParticipant(ctx context.Context, threadID uint64, actorID, userID string) error {
	thread, err := s.threads.FindByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: load thread: %v", common.ErrStorageUnavailable, err)
	}
	// Direct membership is fixed: changing it would break pair dedup
	if thread.Kind != domain.ThreadKindGroup {
		return fmt.Errorf("%w: participants can only be added to group threads", common.ErrInvalidInput)
	}
	if _, err := s.participants.FindCurrent(ctx, threadID, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrAccessDenied
		}
		return fmt.Errorf("%w: load membership: %v", common.ErrStorageUnavailable, err)
	}
	if _, err := s.members.FindByID(ctx, thread.SchoolID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: %s", common.ErrUnknownRecipient, userID)
		}
		return fmt.Errorf("%w: resolve member: %v", common.ErrStorageUnavailable, err)
	}

	p := &domain.ThreadParticipant{
		ThreadID:  threadID,
		UserID:    userID,
		SchoolID:  thread.SchoolID,
		RoleLabel: domain.ParticipantRoleMember,
	}
	if err := s.participants.Upsert(ctx, p); err != nil {
		return fmt.Errorf("%w: add participant: %v", common.ErrStorageUnavailable, err)
	}
	s.bumpInbox(ctx, userID)
	return nil
}

func (s *threadService) RemoveParticipant(ctx context.Context, threadID uint64, actorID, userID string) error {
	thread, err := s.threads.FindByID(ctx, threadID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: load thread: %v", common.ErrStorageUnavailable, err)
	}
	if thread.Kind != domain.ThreadKindGroup {
		return fmt.Errorf("%w: participants can only be removed from group threads", common.ErrInvalidInput)
	}
	if actorID != userID && actorID != thread.CreatedBy {
		return common.ErrAccessDenied
	}
	if _, err := s.participants.FindCurrent(ctx, threadID, actorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrAccessDenied
		}
		return fmt.Errorf("%w: load membership: %v", common.ErrStorageUnavailable, err)
	}
	if _, err := s.participants.FindCurrent(ctx, threadID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("%w: load membership: %v", common.ErrStorageUnavailable, err)
	}

	if err := s.participants.Remove(ctx, threadID, userID); err != nil {
		return fmt.Errorf("%w: remove participant: %v", common.ErrStorageUnavailable, err)
	}
	s.bumpInbox(ctx, userID)
	return nil
}

func (s *threadService) withParticipants(ctx context.Context, thread *domain.Thread, reused bool) (*domain.ThreadWithParticipants, error) {
	participants, err := s.participants.FindByThread(ctx, thread.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: list participants: %v", common.ErrStorageUnavailable, err)
	}
	return &domain.ThreadWithParticipants{Thread: thread, Participants: participants, Reused: reused}, nil
}

func (s *threadService) cacheReady() bool {
	return s.cache != nil && s.cache.IsAvailable()
}

// bumpInbox invalidates cached inbox listings; cache failures only warn
func (s *threadService) bumpInbox(ctx context.Context, userIDs ...string) {
	if !s.cacheReady() || len(userIDs) == 0 {
		return
	}
	if err := s.cache.BumpInboxVersions(ctx, userIDs...); err != nil {
		logger.Get().Warn().Err(err).Msg("inbox version bump failed")
	}
}

func dedupeIDs(ids []string, exclude string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || id == exclude {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func truncateBody(body string, max int) string {
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	return string(runes[:max])
}
