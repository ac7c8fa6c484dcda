package repository

import (
	"context"
	"time"

	"github.com/classring/classring-backend/internal/domain"
	"gorm.io/gorm"
)

// ThreadRepository thread data access
type ThreadRepository interface {
	CreateWithParticipants(ctx context.Context, thread *domain.Thread, participants []*domain.ThreadParticipant) error
	FindByID(ctx context.Context, id uint64) (*domain.Thread, error)
	FindByPairKey(ctx context.Context, pairKey string) (*domain.Thread, error)
	FindForUser(ctx context.Context, schoolID uint64, userID string) ([]*domain.Thread, error)
	SoftDelete(ctx context.Context, id uint64) error
}

type threadRepository struct {
	db *gorm.DB
}

// NewThreadRepository creates a new ThreadRepository
func NewThreadRepository(db *gorm.DB) ThreadRepository {
	return &threadRepository{db: db}
}

// CreateWithParticipants inserts the thread and its initial participant
// rows in one transaction, so a failed participant insert rolls back the
// thread and never leaves an orphaned thread behind. A direct thread
// losing the pair_key uniqueness race surfaces gorm.ErrDuplicatedKey.
func (r *threadRepository) CreateWithParticipants(ctx context.Context, thread *domain.Thread, participants []*domain.ThreadParticipant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(thread).Error; err != nil {
			return err
		}
		for _, p := range participants {
			p.ThreadID = thread.ID
			p.SchoolID = thread.SchoolID
		}
		return tx.Create(&participants).Error
	})
}

func (r *threadRepository) FindByID(ctx context.Context, id uint64) (*domain.Thread, error) {
	var thread domain.Thread
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", id).
		First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepository) FindByPairKey(ctx context.Context, pairKey string) (*domain.Thread, error) {
	var thread domain.Thread
	err := r.db.WithContext(ctx).
		Where("pair_key = ? AND deleted_at IS NULL", pairKey).
		First(&thread).Error
	if err != nil {
		return nil, err
	}
	return &thread, nil
}

func (r *threadRepository) FindForUser(ctx context.Context, schoolID uint64, userID string) ([]*domain.Thread, error) {
	var threads []*domain.Thread
	err := r.db.WithContext(ctx).
		Joins("JOIN thread_participants tp ON tp.thread_id = threads.id").
		Where("tp.user_id = ? AND tp.school_id = ? AND tp.removed_at IS NULL", userID, schoolID).
		Where("threads.deleted_at IS NULL").
		Order("threads.updated_at DESC").
		Find(&threads).Error
	return threads, err
}

// SoftDelete marks the thread deleted and releases its pair_key, so the
// unique index no longer holds the key and the pair can start a fresh
// direct thread afterwards.
func (r *threadRepository) SoftDelete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Model(&domain.Thread{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]interface{}{
			"deleted_at": time.Now(),
			"pair_key":   nil,
		}).Error
}
