package domain

import (
	"fmt"
	"time"
)

// ThreadKind distinguishes two-party and N-party threads.
type ThreadKind string

const (
	ThreadKindDirect ThreadKind = "direct"
	ThreadKindGroup  ThreadKind = "group"
)

// Thread is a conversation container.
//
// Direct threads carry a canonical pair_key with a unique index, so two
// requests racing to start the same one-to-one conversation cannot both
// insert a row: the loser gets a duplicate-key error and re-reads the
// winner. Soft deletion clears pair_key, so a deleted thread never
// blocks the pair from starting over. Group threads leave pair_key NULL
// and are never deduplicated.
type Thread struct {
	ID        uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SchoolID  uint64     `gorm:"column:school_id;index" json:"school_id"`
	Kind      ThreadKind `gorm:"column:kind;type:varchar(10)" json:"kind"`
	Subject   string     `gorm:"column:subject;type:varchar(255)" json:"subject,omitempty"`
	CreatedBy string     `gorm:"column:created_by;type:varchar(64);index" json:"created_by"`
	PairKey   *string    `gorm:"column:pair_key;type:varchar(150);uniqueIndex" json:"-"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at;index" json:"-"`
}

func (Thread) TableName() string { return "threads" }

// IsDeleted reports whether the thread has been soft-deleted.
func (t *Thread) IsDeleted() bool { return t.DeletedAt != nil }

// DirectPairKey builds the canonical dedup key for a one-to-one thread.
// The user pair is unordered, so the two IDs are sorted before joining;
// the school ID scopes the key to one tenant.
func DirectPairKey(schoolID uint64, userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("%d:%s:%s", schoolID, userA, userB)
}

// ItemPreview is the latest-item excerpt shown in the inbox listing.
type ItemPreview struct {
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// ThreadSummary is one inbox row: the thread, the requester's unread
// flag, the latest item preview and the other participants' display info.
type ThreadSummary struct {
	ID           uint64          `json:"id"`
	Kind         ThreadKind      `json:"kind"`
	Subject      string          `json:"subject,omitempty"`
	Unread       bool            `json:"unread"`
	UpdatedAt    time.Time       `json:"updated_at"`
	LastItem     *ItemPreview    `json:"last_item,omitempty"`
	Participants []RecipientInfo `json:"participants"`
}

// ThreadWithParticipants is the resolver result: the thread (existing or
// newly created) plus its current participant set.
type ThreadWithParticipants struct {
	Thread       *Thread              `json:"thread"`
	Participants []*ThreadParticipant `json:"participants"`
	Reused       bool                 `json:"reused"`
}

// CreateThreadRequest is the start-conversation payload.
type CreateThreadRequest struct {
	Kind         ThreadKind `json:"kind" binding:"required"`
	RecipientIDs []string   `json:"recipient_ids" binding:"required"`
	Subject      string     `json:"subject"`
}
