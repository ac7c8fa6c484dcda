package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// MaxItemBodyLen bounds the message body (runes, not bytes).
const MaxItemBodyLen = 4000

// Attachments is an ordered list of opaque storage references,
// persisted as a JSON column.
type Attachments []string

// Value implements driver.Valuer.
func (a Attachments) Value() (driver.Value, error) {
	if len(a) == 0 {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *Attachments) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	b, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("attachments: unsupported column type %T", value)
	}
	return json.Unmarshal(b, a)
}

// ThreadItem is a single posted message. Items are immutable except for
// soft deletion; ordering is by created_at with id as tiebreak.
type ThreadItem struct {
	ID          uint64      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ThreadID    uint64      `gorm:"column:thread_id;index" json:"thread_id"`
	SchoolID    uint64      `gorm:"column:school_id;index" json:"school_id"`
	AuthorID    string      `gorm:"column:author_id;type:varchar(64);index" json:"author_id"`
	Body        string      `gorm:"column:body;type:text" json:"body"`
	Attachments Attachments `gorm:"column:attachments;type:json" json:"attachments,omitempty"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt   *time.Time  `gorm:"column:deleted_at" json:"-"`
}

func (ThreadItem) TableName() string { return "thread_items" }

// PostItemRequest is the post-message payload.
type PostItemRequest struct {
	Body        string   `json:"body" binding:"required"`
	Attachments []string `json:"attachments"`
}
