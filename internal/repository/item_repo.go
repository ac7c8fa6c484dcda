package repository

import (
	"context"

	"github.com/classring/classring-backend/internal/domain"
	"gorm.io/gorm"
)

// ItemRepository thread item data access
type ItemRepository interface {
	// CreateWithFanout inserts the item and propagates unread state in a
	// single transaction: every current participant except the author is
	// marked unread, the author's own flag is cleared, and the thread's
	// updated_at is bumped so inbox ordering follows latest activity.
	CreateWithFanout(ctx context.Context, item *domain.ThreadItem) error
	// FindByThread pages items newest-first (pagination order; callers
	// reverse for display).
	FindByThread(ctx context.Context, threadID uint64, page, limit int) ([]*domain.ThreadItem, int64, error)
	LatestByThreadIDs(ctx context.Context, threadIDs []uint64) (map[uint64]*domain.ThreadItem, error)
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new ItemRepository
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

func (r *itemRepository) CreateWithFanout(ctx context.Context, item *domain.ThreadItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(item).Error; err != nil {
			return err
		}
		// Unconditional set, idempotent under replays
		if err := tx.Model(&domain.ThreadParticipant{}).
			Where("thread_id = ? AND user_id <> ? AND removed_at IS NULL", item.ThreadID, item.AuthorID).
			Update("unread", true).Error; err != nil {
			return err
		}
		// Authoring implies having seen the thread
		if err := tx.Model(&domain.ThreadParticipant{}).
			Where("thread_id = ? AND user_id = ?", item.ThreadID, item.AuthorID).
			Update("unread", false).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Thread{}).
			Where("id = ?", item.ThreadID).
			Update("updated_at", item.CreatedAt).Error
	})
}

func (r *itemRepository) FindByThread(ctx context.Context, threadID uint64, page, limit int) ([]*domain.ThreadItem, int64, error) {
	var items []*domain.ThreadItem
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.ThreadItem{}).
		Where("thread_id = ? AND deleted_at IS NULL", threadID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	if err := query.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *itemRepository) LatestByThreadIDs(ctx context.Context, threadIDs []uint64) (map[uint64]*domain.ThreadItem, error) {
	if len(threadIDs) == 0 {
		return map[uint64]*domain.ThreadItem{}, nil
	}
	var items []*domain.ThreadItem
	// MAX(id) matches creation order: ids are monotonic and break
	// created_at ties.
	err := r.db.WithContext(ctx).
		Where("id IN (?)",
			r.db.Model(&domain.ThreadItem{}).
				Select("MAX(id)").
				Where("thread_id IN ? AND deleted_at IS NULL", threadIDs).
				Group("thread_id")).
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	latest := make(map[uint64]*domain.ThreadItem, len(items))
	for _, it := range items {
		latest[it.ThreadID] = it
	}
	return latest, nil
}
