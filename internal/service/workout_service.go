package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AndersonGC/dryfit/internal/apperror"
	"github.com/AndersonGC/dryfit/internal/dayrange"
	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/logging"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/google/uuid"
)

const maxTitleLength = 200

// WorkoutService assigns workouts from coaches to their students.
type WorkoutService interface {
	Create(ctx context.Context, coachID uuid.UUID, in CreateWorkoutInput) (*domain.Workout, error)
	// ForStudentOnDate returns (nil, nil) when nothing is assigned that day.
	// A blank date means today (UTC).
	ForStudentOnDate(ctx context.Context, studentID uuid.UUID, date string) (*domain.Workout, error)
	// CoachStudentsForDate lists every student of the coach with that day's
	// workout, students without one first.
	CoachStudentsForDate(ctx context.Context, coachID uuid.UUID, date string) ([]domain.StudentDay, error)
	Complete(ctx context.Context, workoutID, studentID uuid.UUID, feedback *string) (*domain.Workout, error)
	Update(ctx context.Context, workoutID, coachID uuid.UUID, patch WorkoutPatchInput) (*domain.Workout, error)
	Delete(ctx context.Context, workoutID, coachID uuid.UUID) error
	ListForCoach(ctx context.Context, coachID uuid.UUID) ([]domain.Workout, error)
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Workout, error)
}

type BlockInput struct {
	CategoryID  uuid.UUID
	Description string
}

type CreateWorkoutInput struct {
	StudentID   uuid.UUID
	Title       string
	Description string
	VideoRef    string
	ScheduledAt *time.Time // nil means now
	Blocks      []BlockInput
}

// WorkoutPatchInput is a partial update; nil fields are left alone and a
// non-nil Blocks replaces the whole list.
type WorkoutPatchInput struct {
	Title       *string
	Description *string
	VideoRef    *string
	ScheduledAt *time.Time
	Blocks      *[]BlockInput
}

type workoutService struct {
	store repository.Store
	log   logging.Logger
	now   func() time.Time
}

func NewWorkoutService(store repository.Store, log logging.Logger) WorkoutService {
	return &workoutService{store: store, log: log, now: time.Now}
}

func (s *workoutService) Create(ctx context.Context, coachID uuid.UUID, in CreateWorkoutInput) (*domain.Workout, error) {
	title, err := checkTitle(in.Title)
	if err != nil {
		return nil, err
	}

	repos := s.store.Repos()
	if _, err := repos.Accounts.GetStudentOfCoach(ctx, coachID, in.StudentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrStudentNotOwned
		}
		return nil, err
	}

	blocks, err := s.buildBlocks(ctx, repos, in.Blocks)
	if err != nil {
		return nil, err
	}

	scheduledAt := s.now().UTC()
	if in.ScheduledAt != nil {
		scheduledAt = in.ScheduledAt.UTC()
	}

	workout := &domain.Workout{
		CoachID:     coachID,
		StudentID:   in.StudentID,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		VideoRef:    strings.TrimSpace(in.VideoRef),
		Blocks:      blocks,
		Status:      domain.WorkoutPending,
		ScheduledAt: scheduledAt,
	}
	if err := repos.Workouts.Create(ctx, workout); err != nil {
		return nil, err
	}
	s.log.Info(ctx, "workout created", "workout_id", workout.ID, "coach_id", coachID, "student_id", in.StudentID)

	return repos.Workouts.GetForCoach(ctx, workout.ID, coachID)
}

func (s *workoutService) ForStudentOnDate(ctx context.Context, studentID uuid.UUID, date string) (*domain.Workout, error) {
	day, err := dayrange.ParseOrToday(date, s.now())
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	workout, err := s.store.Repos().Workouts.LatestForStudentBetween(ctx, studentID, day.Start, day.End)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return workout, err
}

func (s *workoutService) CoachStudentsForDate(ctx context.Context, coachID uuid.UUID, date string) ([]domain.StudentDay, error) {
	if strings.TrimSpace(date) == "" {
		return nil, apperror.Validation("date is required (YYYY-MM-DD)")
	}
	day, err := dayrange.Parse(date)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	repos := s.store.Repos()
	students, err := repos.Accounts.ListStudentsByCoach(ctx, coachID)
	if err != nil {
		return nil, err
	}
	workouts, err := repos.Workouts.ListForCoachBetween(ctx, coachID, day.Start, day.End)
	if err != nil {
		return nil, err
	}

	// Workouts come newest first; keep the first seen per student.
	byStudent := make(map[uuid.UUID]*domain.Workout, len(workouts))
	for i := range workouts {
		if _, seen := byStudent[workouts[i].StudentID]; !seen {
			byStudent[workouts[i].StudentID] = &workouts[i]
		}
	}

	return partitionByWorkout(students, byStudent), nil
}

// partitionByWorkout puts students without a workout first. It is a
// stable partition: each group keeps the order of students.
func partitionByWorkout(students []domain.Account, byStudent map[uuid.UUID]*domain.Workout) []domain.StudentDay {
	free := make([]domain.StudentDay, 0, len(students))
	busy := make([]domain.StudentDay, 0, len(byStudent))
	for i := range students {
		row := domain.StudentDay{Student: students[i].Sanitized(), Workout: byStudent[students[i].ID]}
		if row.HasWorkout() {
			busy = append(busy, row)
		} else {
			free = append(free, row)
		}
	}
	return append(free, busy...)
}

func (s *workoutService) Complete(ctx context.Context, workoutID, studentID uuid.UUID, feedback *string) (*domain.Workout, error) {
	workouts := s.store.Repos().Workouts

	workout, err := s.getForStudent(ctx, workoutID, studentID)
	if err != nil {
		return nil, err
	}
	if !workout.IsPending() {
		return workout, nil
	}

	err = workouts.Complete(ctx, workoutID, studentID, feedback, s.now().UTC())
	if err != nil && !errors.Is(err, repository.ErrConflict) {
		return nil, err
	}
	// On ErrConflict a concurrent call completed it first; either way the
	// stored record is the answer.
	workout, err = s.getForStudent(ctx, workoutID, studentID)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "workout completed", "workout_id", workoutID, "student_id", studentID)
	return workout, nil
}

func (s *workoutService) Update(ctx context.Context, workoutID, coachID uuid.UUID, patch WorkoutPatchInput) (*domain.Workout, error) {
	repos := s.store.Repos()

	workout, err := s.getForCoach(ctx, workoutID, coachID)
	if err != nil {
		return nil, err
	}
	if !workout.IsPending() {
		return nil, ErrNotMutable
	}

	dp := domain.WorkoutPatch{Description: patch.Description, VideoRef: patch.VideoRef, ScheduledAt: patch.ScheduledAt}
	if patch.Title != nil {
		title, err := checkTitle(*patch.Title)
		if err != nil {
			return nil, err
		}
		dp.Title = &title
	}
	if patch.Blocks != nil {
		blocks, err := s.buildBlocks(ctx, repos, *patch.Blocks)
		if err != nil {
			return nil, err
		}
		dp.Blocks = &blocks
	}
	if dp.Empty() {
		return workout, nil
	}
	dp.Apply(workout)

	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := tx.Workouts.UpdatePending(ctx, workout); err != nil {
			return err
		}
		if dp.Blocks != nil {
			return tx.Workouts.ReplaceBlocks(ctx, workout.ID, *dp.Blocks)
		}
		return nil
	})
	if errors.Is(err, repository.ErrConflict) {
		return nil, ErrNotMutable
	}
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "workout updated", "workout_id", workoutID, "coach_id", coachID)
	return s.getForCoach(ctx, workoutID, coachID)
}

func (s *workoutService) Delete(ctx context.Context, workoutID, coachID uuid.UUID) error {
	workout, err := s.getForCoach(ctx, workoutID, coachID)
	if err != nil {
		return err
	}
	if !workout.IsPending() {
		return ErrNotMutable
	}

	if err := s.store.Repos().Workouts.DeletePending(ctx, workoutID, coachID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return ErrNotMutable
		}
		return err
	}
	s.log.Info(ctx, "workout deleted", "workout_id", workoutID, "coach_id", coachID)
	return nil
}

func (s *workoutService) ListForCoach(ctx context.Context, coachID uuid.UUID) ([]domain.Workout, error) {
	return s.store.Repos().Workouts.ListForCoach(ctx, coachID)
}

func (s *workoutService) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Workout, error) {
	return s.store.Repos().Workouts.ListForStudent(ctx, studentID)
}

func (s *workoutService) getForCoach(ctx context.Context, workoutID, coachID uuid.UUID) (*domain.Workout, error) {
	w, err := s.store.Repos().Workouts.GetForCoach(ctx, workoutID, coachID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrWorkoutNotFound
	}
	return w, err
}

func (s *workoutService) getForStudent(ctx context.Context, workoutID, studentID uuid.UUID) (*domain.Workout, error) {
	w, err := s.store.Repos().Workouts.GetForStudent(ctx, workoutID, studentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrWorkoutNotFound
	}
	return w, err
}

// buildBlocks checks that every category exists and numbers the blocks
// by their position.
func (s *workoutService) buildBlocks(ctx context.Context, repos repository.Repositories, in []BlockInput) ([]domain.Block, error) {
	blocks := make([]domain.Block, 0, len(in))
	if len(in) == 0 {
		return blocks, nil
	}

	ids := make([]uuid.UUID, 0, len(in))
	for i, b := range in {
		if b.CategoryID == uuid.Nil {
			return nil, apperror.Validation(fmt.Sprintf("block %d: categoryId is required", i+1))
		}
		ids = append(ids, b.CategoryID)
	}

	found, err := repos.Categories.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(found))
	for _, c := range found {
		names[c.ID] = c.Name
	}

	for i, b := range in {
		name, ok := names[b.CategoryID]
		if !ok {
			return nil, ErrUnknownCategory
		}
		blocks = append(blocks, domain.Block{
			CategoryID:   b.CategoryID,
			CategoryName: name,
			Description:  strings.TrimSpace(b.Description),
			Order:        i,
		})
	}
	return blocks, nil
}

func checkTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperror.Validation("title is required")
	}
	if len([]rune(title)) > maxTitleLength {
		return "", apperror.Validation(fmt.Sprintf("title must be at most %d characters", maxTitleLength))
	}
	return title, nil
}
