package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := store.Repos()

	coach := &domain.Account{Email: "coach@dryfit.app", Name: "Coach", Role: domain.RoleCoach}
	require.NoError(t, repos.Accounts.Create(ctx, coach))
	require.NoError(t, repos.Invites.Create(ctx, &domain.InviteCode{Code: "DRFT-ABC234", CoachID: coach.ID}))

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		student := &domain.Account{Email: "ana@dryfit.app", Name: "Ana", Role: domain.RoleStudent, CoachID: &coach.ID}
		require.NoError(t, tx.Accounts.Create(ctx, student))
		require.NoError(t, tx.Invites.MarkUsed(ctx, "DRFT-ABC234", student.ID, time.Now()))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = repos.Accounts.GetByEmail(ctx, "ana@dryfit.app")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	inv, err := repos.Invites.GetByCode(ctx, "DRFT-ABC234")
	require.NoError(t, err)
	assert.False(t, inv.IsUsed())
	assert.Equal(t, "Coach", inv.CoachName)
}

func TestWithTx_RollbackKeepsConcurrentWrites(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repos := store.Repos()

	coachID, studentID := uuid.New(), uuid.New()
	w := &domain.Workout{CoachID: coachID, StudentID: studentID, Title: "A", ScheduledAt: time.Now().UTC()}
	require.NoError(t, repos.Workouts.Create(ctx, w))

	inTx := make(chan struct{})
	done := make(chan error, 2)
	go func() {
		<-inTx
		done <- repos.Verifications.Upsert(ctx, &domain.EmailVerification{Email: "ana@dryfit.app", Code: "123456"})
	}()
	go func() {
		<-inTx
		done <- repos.Workouts.Complete(ctx, w.ID, studentID, nil, time.Now().UTC())
	}()

	err := store.WithTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		require.NoError(t, tx.Accounts.Create(ctx, &domain.Account{Email: "bruno@dryfit.app", Name: "Bruno", Role: domain.RoleStudent}))
		close(inTx)
		time.Sleep(50 * time.Millisecond)
		assert.Empty(t, done, "plain writes must wait for the open transaction")
		return repository.ErrConflict
	})
	require.ErrorIs(t, err, repository.ErrConflict)
	require.NoError(t, <-done)
	require.NoError(t, <-done)

	_, err = repos.Accounts.GetByEmail(ctx, "bruno@dryfit.app")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	v, err := repos.Verifications.Get(ctx, "ana@dryfit.app")
	require.NoError(t, err)
	assert.Equal(t, "123456", v.Code)

	got, err := repos.Workouts.GetForStudent(ctx, w.ID, studentID)
	require.NoError(t, err)
	assert.Equal(t, domain.WorkoutCompleted, got.Status)
}

func TestInviteMarkUsed_OnlyOnce(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repos()
	coachID := uuid.New()

	require.NoError(t, repos.Invites.Create(ctx, &domain.InviteCode{Code: "DRFT-ABC234", CoachID: coachID}))
	require.NoError(t, repos.Invites.MarkUsed(ctx, "DRFT-ABC234", uuid.New(), time.Now()))
	assert.ErrorIs(t, repos.Invites.MarkUsed(ctx, "DRFT-ABC234", uuid.New(), time.Now()), repository.ErrConflict)
}

func TestInviteLatestUnused_NewestFirst(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repos()
	coachID := uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repos.Invites.Create(ctx, &domain.InviteCode{Code: "DRFT-AAAAAA", CoachID: coachID, CreatedAt: base}))
	require.NoError(t, repos.Invites.Create(ctx, &domain.InviteCode{Code: "DRFT-BBBBBB", CoachID: coachID, CreatedAt: base.Add(time.Hour)}))
	require.NoError(t, repos.Invites.Create(ctx, &domain.InviteCode{Code: "DRFT-CCCCCC", CoachID: coachID, CreatedAt: base.Add(2 * time.Hour)}))
	require.NoError(t, repos.Invites.MarkUsed(ctx, "DRFT-CCCCCC", uuid.New(), base.Add(3*time.Hour)))

	latest, err := repos.Invites.LatestUnused(ctx, coachID)
	require.NoError(t, err)
	assert.Equal(t, "DRFT-BBBBBB", latest.Code)
}

func TestWorkout_ConditionalWrites(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repos()
	coachID, studentID := uuid.New(), uuid.New()

	w := &domain.Workout{CoachID: coachID, StudentID: studentID, Title: "A", ScheduledAt: time.Now().UTC()}
	require.NoError(t, repos.Workouts.Create(ctx, w))

	assert.ErrorIs(t, repos.Workouts.DeletePending(ctx, w.ID, uuid.New()), repository.ErrConflict)
	require.NoError(t, repos.Workouts.Complete(ctx, w.ID, studentID, nil, time.Now().UTC()))
	assert.ErrorIs(t, repos.Workouts.Complete(ctx, w.ID, studentID, nil, time.Now().UTC()), repository.ErrConflict)
	assert.ErrorIs(t, repos.Workouts.UpdatePending(ctx, &domain.Workout{ID: w.ID, CoachID: coachID, Title: "B"}), repository.ErrConflict)
	assert.ErrorIs(t, repos.Workouts.DeletePending(ctx, w.ID, coachID), repository.ErrConflict)

	got, err := repos.Workouts.GetForCoach(ctx, w.ID, coachID)
	require.NoError(t, err)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, domain.WorkoutCompleted, got.Status)
}

func TestWorkout_HydratesNamesAndBlockOrder(t *testing.T) {
	ctx := context.Background()
	repos := NewStore().Repos()

	require.NoError(t, repos.Categories.EnsureByName(ctx, "Strength"))
	require.NoError(t, repos.Categories.EnsureByName(ctx, "Strength"))
	cats, err := repos.Categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 1)

	coach := &domain.Account{Email: "c@x.com", Name: "Maria", Role: domain.RoleCoach}
	require.NoError(t, repos.Accounts.Create(ctx, coach))

	w := &domain.Workout{
		CoachID: coach.ID, StudentID: uuid.New(), Title: "A", ScheduledAt: time.Now().UTC(),
		Blocks: []domain.Block{
			{CategoryID: cats[0].ID, Description: "second", Order: 1},
			{CategoryID: cats[0].ID, Description: "first", Order: 0},
		},
	}
	require.NoError(t, repos.Workouts.Create(ctx, w))

	got, err := repos.Workouts.GetForCoach(ctx, w.ID, coach.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria", got.CoachName)
	require.Len(t, got.Blocks, 2)
	assert.Equal(t, "first", got.Blocks[0].Description)
	assert.Equal(t, "Strength", got.Blocks[0].CategoryName)
}
