package domain

import "time"

// Role is a member's role within a school.
type Role string

const (
	RoleAdmin     Role = "admin"
	RolePrincipal Role = "principal"
	RoleTeacher   Role = "teacher"
	RoleGuardian  Role = "guardian"
)

// Member is a school directory entry. IDs are issued by the identity
// provider, so they are opaque strings rather than auto-increment keys.
type Member struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(64)" json:"id"`
	SchoolID  uint64    `gorm:"column:school_id;index" json:"school_id"`
	Role      Role      `gorm:"column:role;type:varchar(20);index" json:"role"`
	Name      string    `gorm:"column:name;type:varchar(100)" json:"name"`
	Email     string    `gorm:"column:email;type:varchar(255)" json:"email"`
	Phone     string    `gorm:"column:phone;type:varchar(30)" json:"phone,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Member) TableName() string { return "members" }

// RecipientInfo is the directory projection exposed to messaging clients.
type RecipientInfo struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ToRecipientInfo strips directory fields not needed by messaging clients.
func (m *Member) ToRecipientInfo() RecipientInfo {
	return RecipientInfo{
		ID:    m.ID,
		Role:  m.Role,
		Name:  m.Name,
		Email: m.Email,
	}
}

// RecipientGroup groups messageable members by role for display.
type RecipientGroup struct {
	Role    Role            `json:"role"`
	Members []RecipientInfo `json:"members"`
}
