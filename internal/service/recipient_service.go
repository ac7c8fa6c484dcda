package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/classring/classring-backend/internal/common"
	"github.com/classring/classring-backend/internal/domain"
	"github.com/classring/classring-backend/internal/repository"
	"gorm.io/gorm"
)

// maxRecipientPageSize caps the directory listing returned to clients.
const maxRecipientPageSize = 100

// messagingPolicy declares which roles a role may open a conversation
// with. Fixed at build time; a role absent from the table cannot start
// any conversation. Order within a value is the display order of the
// role groups.
var messagingPolicy = map[domain.Role][]domain.Role{
	domain.RolePrincipal: {domain.RoleTeacher, domain.RoleGuardian, domain.RolePrincipal},
	domain.RoleTeacher:   {domain.RolePrincipal, domain.RoleGuardian, domain.RoleTeacher},
	domain.RoleGuardian:  {domain.RoleTeacher, domain.RolePrincipal},
}

// RecipientService computes who a member is permitted to message
type RecipientService interface {
	// AllowedRoles returns the roles the given role may message, or
	// common.ErrRoleNotPermitted for roles outside the policy table.
	AllowedRoles(role domain.Role) ([]domain.Role, error)
	CanMessage(initiator, recipient domain.Role) bool
	// ListRecipients returns the school members the user may message,
	// optionally filtered by a case-insensitive substring search over
	// name and email, grouped by role.
	ListRecipients(ctx context.Context, schoolID uint64, userID, search string) ([]domain.RecipientGroup, error)
}

type recipientService struct {
	members repository.MemberRepository
}

// NewRecipientService creates a new RecipientService
func NewRecipientService(members repository.MemberRepository) RecipientService {
	return &recipientService{members: members}
}

func (s *recipientService) AllowedRoles(role domain.Role) ([]domain.Role, error) {
	allowed, ok := messagingPolicy[role]
	if !ok {
		return nil, common.ErrRoleNotPermitted
	}
	return allowed, nil
}

func (s *recipientService) CanMessage(initiator, recipient domain.Role) bool {
	for _, r := range messagingPolicy[initiator] {
		if r == recipient {
			return true
		}
	}
	return false
}

func (s *recipientService) ListRecipients(ctx context.Context, schoolID uint64, userID, search string) ([]domain.RecipientGroup, error) {
	me, err := s.members.FindByID(ctx, schoolID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("%w: resolve caller: %v", common.ErrStorageUnavailable, err)
	}

	allowed, err := s.AllowedRoles(me.Role)
	if err != nil {
		return nil, err
	}

	members, err := s.members.ListByRoles(ctx, schoolID, allowed, search, maxRecipientPageSize)
	if err != nil {
		return nil, fmt.Errorf("%w: list members: %v", common.ErrStorageUnavailable, err)
	}

	byRole := make(map[domain.Role][]domain.RecipientInfo)
	for _, m := range members {
		if m.ID == userID {
			continue
		}
		byRole[m.Role] = append(byRole[m.Role], m.ToRecipientInfo())
	}

	groups := make([]domain.RecipientGroup, 0, len(allowed))
	for _, role := range allowed {
		if infos, ok := byRole[role]; ok {
			groups = append(groups, domain.RecipientGroup{Role: role, Members: infos})
		}
	}
	return groups, nil
}
