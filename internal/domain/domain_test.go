package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleCoach.Valid())
	assert.True(t, RoleStudent.Valid())
	assert.False(t, Role("ADMIN").Valid())
	assert.False(t, Role("").Valid())
}

func TestAccountSanitized(t *testing.T) {
	a := Account{ID: uuid.New(), Email: "c@x.com", PasswordHash: "secret", Role: RoleCoach}

	clean := a.Sanitized()

	assert.Empty(t, clean.PasswordHash)
	assert.Equal(t, "secret", a.PasswordHash, "original must be untouched")
	assert.True(t, clean.IsCoach())
	assert.False(t, clean.IsStudent())
}

func TestEmailVerificationExpired(t *testing.T) {
	exp := time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC)
	v := EmailVerification{Email: "a@x.com", Code: "123456", ExpiresAt: exp}

	assert.False(t, v.Expired(exp.Add(-time.Second)))
	assert.False(t, v.Expired(exp))
	assert.True(t, v.Expired(exp.Add(time.Second)))
}

func TestWorkoutPatch(t *testing.T) {
	assert.True(t, WorkoutPatch{}.Empty())

	w := &Workout{Title: "Old", Description: "keep", VideoRef: "abc", Blocks: []Block{{Description: "x"}}}
	title := "New"
	local := time.Date(2026, 2, 25, 10, 0, 0, 0, time.FixedZone("BRT", -3*3600))
	blocks := []Block{}

	p := WorkoutPatch{Title: &title, ScheduledAt: &local, Blocks: &blocks}
	assert.False(t, p.Empty())
	p.Apply(w)

	assert.Equal(t, "New", w.Title)
	assert.Equal(t, "keep", w.Description)
	assert.Equal(t, "abc", w.VideoRef)
	assert.Equal(t, time.UTC, w.ScheduledAt.Location())
	assert.Equal(t, 13, w.ScheduledAt.Hour())
	assert.Empty(t, w.Blocks)
}

func TestInviteCodeIsUsed(t *testing.T) {
	inv := InviteCode{Code: "DRFT-ABC234"}
	assert.False(t, inv.IsUsed())
	now := time.Now()
	inv.UsedAt = &now
	assert.True(t, inv.IsUsed())
}
