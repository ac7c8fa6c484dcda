package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDirectPairKey_OrderIndependent(t *testing.T) {
	assert.Equal(t,
		DirectPairKey(1, "alice", "bob"),
		DirectPairKey(1, "bob", "alice"),
	)
}

func TestDirectPairKey_Format(t *testing.T) {
	assert.Equal(t, "1:alice:bob", DirectPairKey(1, "bob", "alice"))
}

func TestDirectPairKey_SchoolScoped(t *testing.T) {
	// the same pair in two schools must not collide
	assert.NotEqual(t,
		DirectPairKey(1, "alice", "bob"),
		DirectPairKey(2, "alice", "bob"),
	)
}

func TestThreadIsDeleted(t *testing.T) {
	thread := &Thread{}
	assert.False(t, thread.IsDeleted())
}

func TestParticipantIsCurrent(t *testing.T) {
	p := &ThreadParticipant{ThreadID: 1, UserID: "alice"}
	assert.True(t, p.IsCurrent())
}
