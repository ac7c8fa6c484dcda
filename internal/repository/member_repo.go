package repository

import (
	"context"
	"strings"

	"github.com/classring/classring-backend/internal/domain"
	"gorm.io/gorm"
)

// MemberRepository school directory access. Every lookup is scoped to a
// school, so a member of another school is simply not found.
type MemberRepository interface {
	FindByID(ctx context.Context, schoolID uint64, id string) (*domain.Member, error)
	FindByIDs(ctx context.Context, schoolID uint64, ids []string) ([]*domain.Member, error)
	ListByRoles(ctx context.Context, schoolID uint64, roles []domain.Role, search string, limit int) ([]*domain.Member, error)
}

type memberRepository struct {
	db *gorm.DB
}

// NewMemberRepository creates a new MemberRepository
func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) FindByID(ctx context.Context, schoolID uint64, id string) (*domain.Member, error) {
	var member domain.Member
	err := r.db.WithContext(ctx).
		Where("id = ? AND school_id = ?", id, schoolID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *memberRepository) FindByIDs(ctx context.Context, schoolID uint64, ids []string) ([]*domain.Member, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var members []*domain.Member
	err := r.db.WithContext(ctx).
		Where("id IN ? AND school_id = ?", ids, schoolID).
		Find(&members).Error
	return members, err
}

func (r *memberRepository) ListByRoles(ctx context.Context, schoolID uint64, roles []domain.Role, search string, limit int) ([]*domain.Member, error) {
	var members []*domain.Member
	query := r.db.WithContext(ctx).
		Where("school_id = ? AND role IN ?", schoolID, roles)
	if search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	err := query.Order("name ASC").Limit(limit).Find(&members).Error
	return members, err
}
