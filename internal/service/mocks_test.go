package service

import (
	"context"

	"github.com/classring/classring-backend/internal/domain"
	"github.com/stretchr/testify/mock"
)

// MockThreadRepository is a mock implementation of repository.ThreadRepository
type MockThreadRepository struct {
	mock.Mock
}

func (m *MockThreadRepository) CreateWithParticipants(ctx context.Context, thread *domain.Thread, participants []*domain.ThreadParticipant) error {
	args := m.Called(ctx, thread, participants)
	return args.Error(0)
}

func (m *MockThreadRepository) FindByID(ctx context.Context, id uint64) (*domain.Thread, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Thread), args.Error(1)
}

func (m *MockThreadRepository) FindByPairKey(ctx context.Context, pairKey string) (*domain.Thread, error) {
	args := m.Called(ctx, pairKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Thread), args.Error(1)
}

func (m *MockThreadRepository) FindForUser(ctx context.Context, schoolID uint64, userID string) ([]*domain.Thread, error) {
	args := m.Called(ctx, schoolID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Thread), args.Error(1)
}

func (m *MockThreadRepository) SoftDelete(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockParticipantRepository is a mock implementation of repository.ParticipantRepository
type MockParticipantRepository struct {
	mock.Mock
}

func (m *MockParticipantRepository) FindByThread(ctx context.Context, threadID uint64) ([]*domain.ThreadParticipant, error) {
	args := m.Called(ctx, threadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ThreadParticipant), args.Error(1)
}

func (m *MockParticipantRepository) FindByThreadIDs(ctx context.Context, threadIDs []uint64) ([]*domain.ThreadParticipant, error) {
	args := m.Called(ctx, threadIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ThreadParticipant), args.Error(1)
}

func (m *MockParticipantRepository) FindCurrent(ctx context.Context, threadID uint64, userID string) (*domain.ThreadParticipant, error) {
	args := m.Called(ctx, threadID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ThreadParticipant), args.Error(1)
}

func (m *MockParticipantRepository) Upsert(ctx context.Context, p *domain.ThreadParticipant) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockParticipantRepository) Remove(ctx context.Context, threadID uint64, userID string) error {
	args := m.Called(ctx, threadID, userID)
	return args.Error(0)
}

func (m *MockParticipantRepository) MarkUnreadExcept(ctx context.Context, threadID uint64, authorID string) error {
	args := m.Called(ctx, threadID, authorID)
	return args.Error(0)
}

func (m *MockParticipantRepository) ClearUnread(ctx context.Context, threadID uint64, userID string) error {
	args := m.Called(ctx, threadID, userID)
	return args.Error(0)
}

func (m *MockParticipantRepository) CountUnreadThreads(ctx context.Context, schoolID uint64, userID string) (int64, error) {
	args := m.Called(ctx, schoolID, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockItemRepository is a mock implementation of repository.ItemRepository
type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) CreateWithFanout(ctx context.Context, item *domain.ThreadItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockItemRepository) FindByThread(ctx context.Context, threadID uint64, page, limit int) ([]*domain.ThreadItem, int64, error) {
	args := m.Called(ctx, threadID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domain.ThreadItem), args.Get(1).(int64), args.Error(2)
}

func (m *MockItemRepository) LatestByThreadIDs(ctx context.Context, threadIDs []uint64) (map[uint64]*domain.ThreadItem, error) {
	args := m.Called(ctx, threadIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uint64]*domain.ThreadItem), args.Error(1)
}

// MockMemberRepository is a mock implementation of repository.MemberRepository
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) FindByID(ctx context.Context, schoolID uint64, id string) (*domain.Member, error) {
	args := m.Called(ctx, schoolID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByIDs(ctx context.Context, schoolID uint64, ids []string) ([]*domain.Member, error) {
	args := m.Called(ctx, schoolID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
}

func (m *MockMemberRepository) ListByRoles(ctx context.Context, schoolID uint64, roles []domain.Role, search string, limit int) ([]*domain.Member, error) {
	args := m.Called(ctx, schoolID, roles, search, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Member), args.Error(1)
}
