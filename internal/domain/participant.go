package domain

import "time"

// Participant role labels within a thread.
const (
	ParticipantRoleOwner  = "owner"
	ParticipantRoleMember = "member"
)

// ThreadParticipant is a member's membership record in a thread.
// Primary key: (thread_id, user_id). The unread flag is personal state,
// flipped on every new item and cleared when the member reads the thread.
//
// Direct-thread rows are never removed (removing one would break the
// pair-key dedup invariant); group rows are soft-removed via removed_at.
type ThreadParticipant struct {
	ThreadID  uint64     `gorm:"column:thread_id;primaryKey" json:"thread_id"`
	UserID    string     `gorm:"column:user_id;primaryKey;type:varchar(64)" json:"user_id"`
	SchoolID  uint64     `gorm:"column:school_id;index" json:"school_id"`
	Unread    bool       `gorm:"column:unread;default:false" json:"unread"`
	RoleLabel string     `gorm:"column:role_label;type:varchar(20);default:'member'" json:"role_label"`
	RemovedAt *time.Time `gorm:"column:removed_at" json:"-"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ThreadParticipant) TableName() string { return "thread_participants" }

// IsCurrent reports whether the membership is active (not removed).
func (p *ThreadParticipant) IsCurrent() bool { return p.RemovedAt == nil }

// AddParticipantRequest is the add-to-group payload.
type AddParticipantRequest struct {
	UserID string `json:"user_id" binding:"required"`
}
