package service

import (
	"context"
	"testing"
	"time"

	"github.com/AndersonGC/dryfit/internal/apperror"
	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func strPtr(s string) *string { return &s }

func TestCreateWorkout(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, AuthOptions{})
	coach := env.coach(t, "maria")
	ana := env.student(t, coach.ID, "Ana")
	strength := env.category(t, "Strength")
	warmup := env.category(t, "Warm-up")

	w, err := env.works.Create(ctx, coach.ID, CreateWorkoutInput{
		StudentID: ana.ID,
		Title:     "  Leg day ",
		Blocks: []BlockInput{
			{CategoryID: warmup.ID, Description: "5 min row"},
			{CategoryID: strength.ID, Description: "5x5 back squat"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Leg day", w.Title)
	assert.Equal(t, domain.WorkoutPending, w.Status)
	assert.Equal(t, env.clock.now(), w.ScheduledAt)
	assert.Equal(t, "maria", w.CoachName)
	assert.Equal(t, "Ana", w.StudentName)
	require.Len(t, w.Blocks, 2)
	assert.Equal(t, "Warm-up", w.Blocks[0].CategoryName)
	assert.Equal(t, 0, w.Blocks[0].Order)
	assert.Equal(t, "Strength", w.Blocks[1].CategoryName)
	assert.Equal(t, 1, w.Blocks[1].Order)
}

func TestCreateWorkout_Validation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, AuthOptions{})
	coach := env.coach(t, "maria")
	ana := env.student(t, coach.ID, "Ana")

	_, err := env.works.Create(ctx, coach.ID, CreateWorkoutInput{StudentID: ana.ID, Title: "  "})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	_, err = env.works.Create(ctx, coach.ID, CreateWorkoutInput{
		StudentID: ana.ID, Title: "A", Blocks: []BlockInput{{CategoryID: uuid.New()}},
	})
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = env.works.Create(ctx, coach.ID, CreateWorkoutInput{
		StudentID: ana.ID, Title: "A", Blocks: []BlockInput{{Description: "no category"}},
	})
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestOwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, AuthOptions{})
	coachA := env.coach(t, "alice")
	coachB := env.coach(t, "bob")
	studentA := env.student(t, coachA.ID, "Ana")
	studentB := env.student(t, coachB.ID, "Bruno")

	_, err := env.works.Create(ctx, coachA.ID, CreateWorkoutInput{StudentID: studentB.ID, Title: "A"})
	assert.ErrorIs(t, err, ErrStudentNotOwned)

	// A coach is not a student of anyone.
	_, err = env.works.Create(ctx, coachA.ID, CreateWorkoutInput{StudentID: coachB.ID, Title: "A"})
	assert.ErrorIs(t, err, ErrStudentNotOwned)

	w, err := env.works.Create(ctx, coachA.ID, CreateWorkoutInput{StudentID: studentA.ID, Title: "A"})
	require.NoError(t, err)

	_, err = env.works.Complete(ctx, w.ID, studentB.ID, nil)
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
	_, err = env.works.Update(ctx, w.ID, coachB.ID, WorkoutPatchInput{Title: strPtr("B")})
	assert.ErrorIs(t, err, ErrWorkoutNotFound)
	assert.ErrorIs(t, env.works.Delete(ctx, w.ID, coachB.ID), ErrWorkoutNotFound)
}

func TestForStudentOnDate_DayBoundaries(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, AuthOptions{})
	coach := env.coach(t, "maria")
	ana := env.student(t, coach.ID, "Ana")

	inside, err := env.works.Create(ctx, coach.ID, CreateWorkoutInput{
		StudentID: ana.ID, Title: "late", ScheduledAt: at("2026-02-25T23:59:59Z"),
	})
	require.NoError(t, err)
	_, err = env.works.Create(ctx, coach.ID, CreateWorkoutInput{
		StudentID: ana.ID, Title: "next day", ScheduledAt: at("2026-02-26T00:00:00Z"),
	})
	require.NoError(t, err)

	got, err := env.works.ForStudentOnDate(ctx, ana.ID, "2026-02-25")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, inside.ID, got.ID)
	assert.Equal(t, "maria", got.CoachName)

	none, err := env.works.ForStudentOnDate(ctx, ana.ID, "2026-02-24")
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = env.works.ForStudentOnDate(ctx, ana.ID, "25/02/2026")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestForStudentOnDate_DefaultsToTodayAndLatestWins(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, AuthOptions{})
	coach := env.coach(t, "maria")
	ana := env.student(t, coach.ID, "Ana")

	_, err := env.works.Create(ctx, coach.ID, CreateWorkoutInput{StudentID: ana.ID, Title: "morning", ScheduledAt: at("2026-02-25T06:00:00Z")})
	require.NoError(t, err)
	evening, err := env.works.Create(ctx, coach.ID, CreateWorkoutInput{StudentID: ana.ID, Title: "evening", ScheduledAt: at("2026-02-25T18:00:00Z")})
	require.NoError(t, err)

	got, err := env.works.ForStudentOnDate(ctx, ana.ID, "")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, evening.ID, got.ID)
}

func TestCoachStudentsForDate_SortContract(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, AuthOptions{})
	coach := env.coach(t, "maria")
	ana := env.student(t, coach.ID, "Ana")
	bruno := env.student(t, coach.ID, "Bruno")
	carla := env.student(t, coach.ID, "Carla")
	other := env.coach(t, "bob")
	env.student(t, other.ID, "Zed")

	w, err := env.works.Create(ctx, coach.ID, CreateWorkoutInput{StudentID: bruno.ID, Title: "A", ScheduledAt: at("2026-02-25T10:00:00Z")})
	require.NoError(t, err)
	// Ana has a workout, but on another day.
	_, err = env.works.Create(ctx, coach.ID, CreateWorkoutInput{StudentID: ana.ID, Title: "B", ScheduledAt: at("2026-02-26T10:00:00Z")})
	require.NoError(t, err)

	rows, err := env.works.CoachStudentsForDate(ctx, coach.ID, "2026-02-25")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, ana.ID, rows[0].Student.ID)
	assert.False(t, rows[0].HasWorkout())
	assert.Equal(t, carla.ID, rows[1].Student.ID)
	assert.False(t, rows[1].HasWorkout())
	assert.Equal(t, bruno.ID, rows[2].Student.ID)
	require.True(t, rows[2].HasWorkout())
	assert.Equal(t, w.ID, rows[2].Workout.ID)
}

func TestCoachStudentsForDate_DateRequired(t *testing.T) {
	env := newTestEnv(t, AuthOptions{})

	_, err := env.works.CoachStudentsForDate(context.Background(), uuid.New(), "")
	assert.ErrorIs(t, err, apperror.ErrValidation)
	_, err = env.works.CoachStudentsForDate(context.Background(), uuid.New(), "2026-13-01")
	assert.ErrorIs(t, err, apperror.ErrValidation)
}

func TestPartitionByWorkout_Stable(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	students := make([]domain.Account, len(ids))
	for i, id := range ids {
		students[i] = domain.Account{ID: id}
	}
	busy := map[uuid.UUID]*domain.Workout{ids[0]: {}, ids[2]: {}, ids[3]: {}}

	rows := partitionByWorkout(students, busy)

	var order []uuid.UUID
	for _, r := range rows {
		order = append(order, r.Student.ID)
	}
	assert.Equal(t, []uuid.UUID{ids[1], ids[4], ids[0], ids[2], ids[3]}, order)
}

func TestStatusGatedMutability(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, AuthOptions{})
	coach := env.coach(t, "maria")
	ana := env.student(t, coach.ID, "Ana")

	w, err := env.works.Create(ctx, coach.ID, CreateWorkoutInput{StudentID: ana.ID, Title: "A"})
	require.NoError(t, err)

	updated, err := env.works.Update(ctx, w.ID, coach.ID, WorkoutPatchInput{Title: strPtr("B")})
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Title)

	_, err = env.works.Complete(ctx, w.ID, ana.ID, nil)
	require.NoError(t, err)

	_, err = env.works.Update(ctx, w.ID, coach.ID, WorkoutPatchInput{Title: strPtr("C")})
	assert.ErrorIs(t, err, ErrNotMutable)
	assert.ErrorIs(t, env.works.Delete(ctx, w.ID, coach.ID), ErrNotMutable)

	// Deleting a pending workout works and is a hard delete.
	w2, err := env.works.Create(ctx, coach.ID, CreateWorkoutInput{StudentID: ana.ID, Title: "D"})
	require.NoError(t, err)
	require.NoError(t, env.works.Delete(ctx, w2.ID, coach.ID))
	assert.ErrorIs(t, env.works.Delete(ctx, w2.ID, coach.ID), ErrWorkoutNotFound)
}

func TestUpdateWorkout_PartialPatchAndBlockReplacement(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, AuthOptions{})
	coach := env.coach(t, "maria")
	ana := env.student(t, coach.ID, "Ana")
	strength := env.category(t, "Strength")
	hiit := env.category(t, "HIIT")

	w, err := env.works.Create(ctx, coach.ID, CreateWorkoutInput{
		StudentID:   ana.ID,
		Title:       "A",
		Description: "keep me",
		Blocks:      []BlockInput{{CategoryID: strength.ID, Description: "old"}},
	})
	require.NoError(t, err)

	blocks := []BlockInput{
		{CategoryID: hiit.ID, Description: "tabata"},
		{CategoryID: strength.ID, Description: "deadlift"},
	}
	updated, err := env.works.Update(ctx, w.ID, coach.ID, WorkoutPatchInput{
		ScheduledAt: at("2026-03-01T09:00:00Z"),
		Blocks:      &blocks,
	})
	require.NoError(t, err)

	assert.Equal(t, "A", updated.Title)
	assert.Equal(t, "keep me", updated.Description)
	assert.Equal(t, *at("2026-03-01T09:00:00Z"), updated.ScheduledAt)
	require.Len(t, updated.Blocks, 2)
	assert.Equal(t, "tabata", updated.Blocks[0].Description)
	assert.Equal(t, "HIIT", updated.Blocks[0].CategoryName)
	assert.Equal(t, "deadlift", updated.Blocks[1].Description)

	_, err = env.works.Update(ctx, w.ID, coach.ID, WorkoutPatchInput{Title: strPtr("")})
	assert.ErrorIs(t, err, apperror.ErrValidation)

	same, err := env.works.Update(ctx, w.ID, coach.ID, WorkoutPatchInput{})
	require.NoError(t, err)
	assert.Equal(t, updated.UpdatedAt, same.UpdatedAt)
}

func TestCompleteWorkout_Idempotent(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, AuthOptions{})
	coach := env.coach(t, "maria")
	ana := env.student(t, coach.ID, "Ana")

	w, err := env.works.Create(ctx, coach.ID, CreateWorkoutInput{StudentID: ana.ID, Title: "A"})
	require.NoError(t, err)

	first, err := env.works.Complete(ctx, w.ID, ana.ID, strPtr("felt great"))
	require.NoError(t, err)
	assert.Equal(t, domain.WorkoutCompleted, first.Status)
	require.NotNil(t, first.CompletedAt)
	assert.Equal(t, env.clock.now(), *first.CompletedAt)

	env.clock.add(time.Hour)
	second, err := env.works.Complete(ctx, w.ID, ana.ID, strPtr("changed my mind"))
	require.NoError(t, err)
	assert.Equal(t, "felt great", *second.Feedback)
	assert.Equal(t, *first.CompletedAt, *second.CompletedAt)
	assert.Equal(t, first.UpdatedAt, second.UpdatedAt)
}

func TestListWorkouts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, AuthOptions{})
	coach := env.coach(t, "maria")
	ana := env.student(t, coach.ID, "Ana")
	bruno := env.student(t, coach.ID, "Bruno")

	_, err := env.works.Create(ctx, coach.ID, CreateWorkoutInput{StudentID: ana.ID, Title: "old", ScheduledAt: at("2026-02-01T10:00:00Z")})
	require.NoError(t, err)
	_, err = env.works.Create(ctx, coach.ID, CreateWorkoutInput{StudentID: bruno.ID, Title: "mid", ScheduledAt: at("2026-02-10T10:00:00Z")})
	require.NoError(t, err)
	_, err = env.works.Create(ctx, coach.ID, CreateWorkoutInput{StudentID: ana.ID, Title: "new", ScheduledAt: at("2026-02-20T10:00:00Z")})
	require.NoError(t, err)

	all, err := env.works.ListForCoach(ctx, coach.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{all[0].Title, all[1].Title, all[2].Title})
	assert.Equal(t, "Bruno", all[1].StudentName)

	mine, err := env.works.ListForStudent(ctx, ana.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "new", mine[0].Title)
}
