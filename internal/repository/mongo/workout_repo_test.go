package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoWorkoutRepository_ConditionalWrites(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	coachID, studentID, workoutID := uuid.New(), uuid.New(), uuid.New()
	feedback := "felt strong"

	mt.Run("complete pending workout", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(updateResult(1))

		assert.NoError(mt, repo.Complete(ctx, workoutID, studentID, &feedback, time.Now().UTC()))
	})

	mt.Run("complete twice conflicts", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(updateResult(0))

		err := repo.Complete(ctx, workoutID, studentID, nil, time.Now().UTC())
		assert.ErrorIs(mt, err, repository.ErrConflict)
	})

	mt.Run("update completed workout conflicts", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(updateResult(0))

		err := repo.UpdatePending(ctx, &domain.Workout{ID: workoutID, CoachID: coachID, Title: "Legs"})
		assert.ErrorIs(mt, err, repository.ErrConflict)
	})

	mt.Run("delete completed workout conflicts", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(0)}))

		err := repo.DeletePending(ctx, workoutID, coachID)
		assert.ErrorIs(mt, err, repository.ErrConflict)
	})

	mt.Run("delete pending workout", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: int32(1)}))

		assert.NoError(mt, repo.DeletePending(ctx, workoutID, coachID))
	})

	mt.Run("replace blocks of missing workout", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(updateResult(0))

		err := repo.ReplaceBlocks(ctx, workoutID, []domain.Block{{CategoryID: uuid.New(), Description: "5x5", Order: 0}})
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})
}

func TestMongoWorkoutRepository_Reads(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	coachID, studentID, workoutID, categoryID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	scheduled := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	mt.Run("get for student of another student", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, workoutCollectionName), mtest.FirstBatch))

		_, err := repo.GetForStudent(ctx, workoutID, uuid.New())
		assert.ErrorIs(mt, err, repository.ErrNotFound)
	})

	mt.Run("get for coach hydrates names and orders blocks", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		doc := workoutDoc{
			ID:        workoutID.String(),
			CoachID:   coachID.String(),
			StudentID: studentID.String(),
			Title:     "Legs",
			Blocks: []blockDoc{
				{ID: uuid.NewString(), CategoryID: categoryID.String(), Description: "cooldown", Order: 1},
				{ID: uuid.NewString(), CategoryID: categoryID.String(), Description: "squats", Order: 0},
			},
			Status:      string(domain.WorkoutPending),
			ScheduledAt: scheduled,
			CreatedAt:   scheduled,
			UpdatedAt:   scheduled,
		}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns(mt, workoutCollectionName), mtest.FirstBatch, toD(mt.T, doc)),
			mtest.CreateCursorResponse(0, ns(mt, accountCollectionName), mtest.FirstBatch,
				bson.D{{Key: "_id", Value: coachID.String()}, {Key: "name", Value: "Carla"}},
				bson.D{{Key: "_id", Value: studentID.String()}, {Key: "name", Value: "Ana"}}),
			mtest.CreateCursorResponse(0, ns(mt, categoryCollectionName), mtest.FirstBatch,
				toD(mt.T, categoryDoc{ID: categoryID.String(), Name: "Strength", CreatedAt: scheduled})),
		)

		w, err := repo.GetForCoach(ctx, workoutID, coachID)
		require.NoError(mt, err)
		assert.Equal(mt, "Carla", w.CoachName)
		assert.Equal(mt, "Ana", w.StudentName)
		assert.True(mt, w.IsPending())
		require.Len(mt, w.Blocks, 2)
		assert.Equal(mt, "squats", w.Blocks[0].Description)
		assert.Equal(mt, "cooldown", w.Blocks[1].Description)
		assert.Equal(mt, "Strength", w.Blocks[0].CategoryName)
	})

	mt.Run("list for student with no workouts", func(mt *mtest.T) {
		repo := NewMongoWorkoutRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns(mt, workoutCollectionName), mtest.FirstBatch))

		workouts, err := repo.ListForStudent(ctx, studentID)
		require.NoError(mt, err)
		assert.NotNil(mt, workouts)
		assert.Empty(mt, workouts)
	})
}
