package user

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdvanceIf(t *testing.T) {
	p := New("alice", "a@x.com", nil)
	require.Equal(t, StatusInitial, p.CompletionStatus)

	// skipping a step is refused
	assert.False(t, p.AdvanceIf(StatusInitial, StatusInterestsCompleted))
	assert.Equal(t, StatusInitial, p.CompletionStatus)

	// wrong current state is refused
	assert.False(t, p.AdvanceIf(StatusPersonalInfoCompleted, StatusInterestsCompleted))

	assert.True(t, p.AdvanceIf(StatusInitial, StatusPersonalInfoCompleted))
	assert.False(t, p.AdvanceIf(StatusInitial, StatusPersonalInfoCompleted))
	assert.True(t, p.AdvanceIf(StatusPersonalInfoCompleted, StatusInterestsCompleted))
	assert.True(t, p.AdvanceIf(StatusInterestsCompleted, StatusCompleted))
	assert.Equal(t, StatusCompleted, p.CompletionStatus)

	// nothing moves a completed profile
	assert.False(t, p.AdvanceIf(StatusCompleted, StatusCompleted))
	assert.False(t, p.AdvanceIf(StatusInitial, StatusPersonalInfoCompleted))
	assert.Equal(t, StatusCompleted, p.CompletionStatus)
}

func TestCompletionStatusNext(t *testing.T) {
	assert.Equal(t, StatusPersonalInfoCompleted, StatusInitial.Next())
	assert.Equal(t, StatusCompleted, StatusCompleted.Next())
	assert.Equal(t, CompletionStatus("BOGUS"), CompletionStatus("BOGUS").Next())
	assert.False(t, CompletionStatus("BOGUS").Valid())
}

func TestClampBio(t *testing.T) {
	long := strings.Repeat("a", 200)
	assert.Len(t, ClampBio(long), MaxBioLength)
	assert.Equal(t, "hi", ClampBio("hi"))

	// counted in characters, not bytes
	accented := strings.Repeat("é", 160)
	assert.Equal(t, MaxBioLength, len([]rune(ClampBio(accented))))
}

func TestReplaceObjectives(t *testing.T) {
	p := New("alice", "a@x.com", nil)
	a, b := uuid.New(), uuid.New()

	require.NoError(t, p.ReplaceObjectives([]uuid.UUID{a, b, a}))
	assert.Equal(t, []uuid.UUID{a, b}, p.ObjectiveIDs)

	err := p.ReplaceObjectives([]uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()})
	assert.ErrorIs(t, err, ErrTooManyObjectives)
	assert.Equal(t, []uuid.UUID{a, b}, p.ObjectiveIDs)
}

func TestValidate(t *testing.T) {
	p := New("alice", "a@x.com", nil)
	assert.NoError(t, p.Validate())

	p.Username = "al"
	assert.Error(t, p.Validate())

	p.Username = "alice"
	p.Email = "not-an-email"
	assert.Error(t, p.Validate())

	p.Email = "a@x.com"
	p.CompletionStatus = "DONE"
	assert.Error(t, p.Validate())
}
