package service

import (
	"context"
	"testing"

	"github.com/classring/classring-backend/internal/common"
	"github.com/classring/classring-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

func TestAllowedRoles_PolicyTable(t *testing.T) {
	svc := NewRecipientService(nil)

	tests := []struct {
		role    domain.Role
		allowed []domain.Role
	}{
		{domain.RolePrincipal, []domain.Role{domain.RoleTeacher, domain.RoleGuardian, domain.RolePrincipal}},
		{domain.RoleTeacher, []domain.Role{domain.RolePrincipal, domain.RoleGuardian, domain.RoleTeacher}},
		{domain.RoleGuardian, []domain.Role{domain.RoleTeacher, domain.RolePrincipal}},
	}
	for _, tt := range tests {
		allowed, err := svc.AllowedRoles(tt.role)
		assert.NoError(t, err)
		assert.Equal(t, tt.allowed, allowed)
	}

	_, err := svc.AllowedRoles(domain.RoleAdmin)
	assert.ErrorIs(t, err, common.ErrRoleNotPermitted)
}

func TestCanMessage(t *testing.T) {
	svc := NewRecipientService(nil)

	assert.True(t, svc.CanMessage(domain.RoleGuardian, domain.RoleTeacher))
	assert.True(t, svc.CanMessage(domain.RoleGuardian, domain.RolePrincipal))
	assert.False(t, svc.CanMessage(domain.RoleGuardian, domain.RoleGuardian))
	assert.True(t, svc.CanMessage(domain.RoleTeacher, domain.RoleTeacher))
	assert.True(t, svc.CanMessage(domain.RolePrincipal, domain.RolePrincipal))
	assert.False(t, svc.CanMessage(domain.RoleAdmin, domain.RoleTeacher))
}

func TestListRecipients_GroupsByRoleAndExcludesSelf(t *testing.T) {
	members := new(MockMemberRepository)
	svc := NewRecipientService(members)

	members.On("FindByID", mock.Anything, testSchoolID, "carol").Return(carol, nil)
	members.On("ListByRoles", mock.Anything, testSchoolID,
		[]domain.Role{domain.RoleTeacher, domain.RolePrincipal}, "", maxRecipientPageSize).
		Return([]*domain.Member{alice, bob}, nil)

	groups, err := svc.ListRecipients(context.Background(), testSchoolID, "carol", "")

	assert.NoError(t, err)
	// policy order: teachers first, then principals
	assert.Len(t, groups, 2)
	assert.Equal(t, domain.RoleTeacher, groups[0].Role)
	assert.Equal(t, "bob", groups[0].Members[0].ID)
	assert.Equal(t, domain.RolePrincipal, groups[1].Role)
	assert.Equal(t, "alice", groups[1].Members[0].ID)
}

func TestListRecipients_ExcludesCaller(t *testing.T) {
	members := new(MockMemberRepository)
	svc := NewRecipientService(members)

	members.On("FindByID", mock.Anything, testSchoolID, "bob").Return(bob, nil)
	members.On("ListByRoles", mock.Anything, testSchoolID, mock.Anything, "", maxRecipientPageSize).
		Return([]*domain.Member{alice, bob, carol}, nil)

	groups, err := svc.ListRecipients(context.Background(), testSchoolID, "bob", "")

	assert.NoError(t, err)
	for _, g := range groups {
		for _, m := range g.Members {
			assert.NotEqual(t, "bob", m.ID)
		}
	}
}

func TestListRecipients_PassesSearchThrough(t *testing.T) {
	members := new(MockMemberRepository)
	svc := NewRecipientService(members)

	members.On("FindByID", mock.Anything, testSchoolID, "alice").Return(alice, nil)
	members.On("ListByRoles", mock.Anything, testSchoolID, mock.Anything, "cho", maxRecipientPageSize).
		Return([]*domain.Member{carol}, nil)

	groups, err := svc.ListRecipients(context.Background(), testSchoolID, "alice", "cho")

	assert.NoError(t, err)
	assert.Len(t, groups, 1)
	assert.Equal(t, domain.RoleGuardian, groups[0].Role)
}

func TestListRecipients_UnknownCaller(t *testing.T) {
	members := new(MockMemberRepository)
	svc := NewRecipientService(members)

	members.On("FindByID", mock.Anything, testSchoolID, "ghost").Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.ListRecipients(context.Background(), testSchoolID, "ghost", "")

	assert.ErrorIs(t, err, common.ErrUnauthorized)
	members.AssertNotCalled(t, "ListByRoles", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
