package repository

import (
	"context"
	"time"

	"github.com/classring/classring-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ParticipantRepository thread membership data access
type ParticipantRepository interface {
	FindByThread(ctx context.Context, threadID uint64) ([]*domain.ThreadParticipant, error)
	FindByThreadIDs(ctx context.Context, threadIDs []uint64) ([]*domain.ThreadParticipant, error)
	// FindCurrent returns the active membership row, or gorm.ErrRecordNotFound
	// if the user never joined or has been removed.
	FindCurrent(ctx context.Context, threadID uint64, userID string) (*domain.ThreadParticipant, error)
	Upsert(ctx context.Context, p *domain.ThreadParticipant) error
	Remove(ctx context.Context, threadID uint64, userID string) error
	MarkUnreadExcept(ctx context.Context, threadID uint64, authorID string) error
	ClearUnread(ctx context.Context, threadID uint64, userID string) error
	CountUnreadThreads(ctx context.Context, schoolID uint64, userID string) (int64, error)
}

type participantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository creates a new ParticipantRepository
func NewParticipantRepository(db *gorm.DB) ParticipantRepository {
	return &participantRepository{db: db}
}

func (r *participantRepository) FindByThread(ctx context.Context, threadID uint64) ([]*domain.ThreadParticipant, error) {
	var participants []*domain.ThreadParticipant
	err := r.db.WithContext(ctx).
		Where("thread_id = ? AND removed_at IS NULL", threadID).
		Find(&participants).Error
	return participants, err
}

func (r *participantRepository) FindByThreadIDs(ctx context.Context, threadIDs []uint64) ([]*domain.ThreadParticipant, error) {
	if len(threadIDs) == 0 {
		return nil, nil
	}
	var participants []*domain.ThreadParticipant
	err := r.db.WithContext(ctx).
		Where("thread_id IN ? AND removed_at IS NULL", threadIDs).
		Find(&participants).Error
	return participants, err
}

func (r *participantRepository) FindCurrent(ctx context.Context, threadID uint64, userID string) (*domain.ThreadParticipant, error) {
	var p domain.ThreadParticipant
	err := r.db.WithContext(ctx).
		Where("thread_id = ? AND user_id = ? AND removed_at IS NULL", threadID, userID).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert adds a membership row, reviving a previously removed one. A
// revived membership starts read: the unread flag reflects only
// activity since rejoining.
func (r *participantRepository) Upsert(ctx context.Context, p *domain.ThreadParticipant) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "thread_id"}, {Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"removed_at": nil,
			"unread":     false,
			"role_label": p.RoleLabel,
			"updated_at": time.Now(),
		}),
	}).Create(p).Error
}

func (r *participantRepository) Remove(ctx context.Context, threadID uint64, userID string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&domain.ThreadParticipant{}).
		Where("thread_id = ? AND user_id = ? AND removed_at IS NULL", threadID, userID).
		Update("removed_at", now).Error
}

// MarkUnreadExcept is the fan-out write: an unconditional set-true for
// every current participant but the author, so concurrent posts and
// retries never lose the flag.
func (r *participantRepository) MarkUnreadExcept(ctx context.Context, threadID uint64, authorID string) error {
	return r.db.WithContext(ctx).Model(&domain.ThreadParticipant{}).
		Where("thread_id = ? AND user_id <> ? AND removed_at IS NULL", threadID, authorID).
		Update("unread", true).Error
}

func (r *participantRepository) ClearUnread(ctx context.Context, threadID uint64, userID string) error {
	return r.db.WithContext(ctx).Model(&domain.ThreadParticipant{}).
		Where("thread_id = ? AND user_id = ?", threadID, userID).
		Update("unread", false).Error
}

func (r *participantRepository) CountUnreadThreads(ctx context.Context, schoolID uint64, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.ThreadParticipant{}).
		Joins("JOIN threads ON threads.id = thread_participants.thread_id AND threads.deleted_at IS NULL").
		Where("thread_participants.user_id = ? AND thread_participants.school_id = ?", userID, schoolID).
		Where("thread_participants.unread = ? AND thread_participants.removed_at IS NULL", true).
		Count(&count).Error
	return count, err
}
