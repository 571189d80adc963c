package memory

import (
	"context"
	"slices"
	"time"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/google/uuid"
)

type workoutRepo struct{ conn }

func (r *workoutRepo) Create(_ context.Context, w *domain.Workout) error {
	defer r.lock()()

	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	if w.Status == "" {
		w.Status = domain.WorkoutPending
	}
	for i := range w.Blocks {
		if w.Blocks[i].ID == uuid.Nil {
			w.Blocks[i].ID = uuid.New()
		}
	}

	stored := *w
	stored.Blocks = append([]domain.Block(nil), w.Blocks...)
	r.s.data.workouts[w.ID] = stored
	return nil
}

func (r *workoutRepo) GetForCoach(_ context.Context, id, coachID uuid.UUID) (*domain.Workout, error) {
	return r.findOne(func(w domain.Workout) bool { return w.ID == id && w.CoachID == coachID })
}

func (r *workoutRepo) GetForStudent(_ context.Context, id, studentID uuid.UUID) (*domain.Workout, error) {
	return r.findOne(func(w domain.Workout) bool { return w.ID == id && w.StudentID == studentID })
}

func (r *workoutRepo) LatestForStudentBetween(_ context.Context, studentID uuid.UUID, from, to time.Time) (*domain.Workout, error) {
	matches := r.filter(func(w domain.Workout) bool {
		return w.StudentID == studentID && inRange(w.ScheduledAt, from, to)
	})
	if len(matches) == 0 {
		return nil, repository.ErrNotFound
	}
	return &matches[0], nil
}

func (r *workoutRepo) ListForCoachBetween(_ context.Context, coachID uuid.UUID, from, to time.Time) ([]domain.Workout, error) {
	return r.filter(func(w domain.Workout) bool {
		return w.CoachID == coachID && inRange(w.ScheduledAt, from, to)
	}), nil
}

func (r *workoutRepo) ListForCoach(_ context.Context, coachID uuid.UUID) ([]domain.Workout, error) {
	return r.filter(func(w domain.Workout) bool { return w.CoachID == coachID }), nil
}

func (r *workoutRepo) ListForStudent(_ context.Context, studentID uuid.UUID) ([]domain.Workout, error) {
	return r.filter(func(w domain.Workout) bool { return w.StudentID == studentID }), nil
}

func (r *workoutRepo) Complete(_ context.Context, id, studentID uuid.UUID, feedback *string, completedAt time.Time) error {
	defer r.lock()()

	w, ok := r.s.data.workouts[id]
	if !ok || w.StudentID != studentID || !w.IsPending() {
		return repository.ErrConflict
	}
	w.Status = domain.WorkoutCompleted
	w.CompletedAt = &completedAt
	w.Feedback = feedback
	w.UpdatedAt = completedAt
	r.s.data.workouts[id] = w
	return nil
}

func (r *workoutRepo) UpdatePending(_ context.Context, upd *domain.Workout) error {
	defer r.lock()()

	w, ok := r.s.data.workouts[upd.ID]
	if !ok || w.CoachID != upd.CoachID || !w.IsPending() {
		return repository.ErrConflict
	}
	upd.UpdatedAt = time.Now().UTC()
	w.Title = upd.Title
	w.Description = upd.Description
	w.VideoRef = upd.VideoRef
	w.ScheduledAt = upd.ScheduledAt
	w.UpdatedAt = upd.UpdatedAt
	r.s.data.workouts[upd.ID] = w
	return nil
}

func (r *workoutRepo) ReplaceBlocks(_ context.Context, workoutID uuid.UUID, blocks []domain.Block) error {
	defer r.lock()()

	w, ok := r.s.data.workouts[workoutID]
	if !ok {
		return repository.ErrNotFound
	}
	for i := range blocks {
		if blocks[i].ID == uuid.Nil {
			blocks[i].ID = uuid.New()
		}
	}
	w.Blocks = append([]domain.Block(nil), blocks...)
	r.s.data.workouts[workoutID] = w
	return nil
}

func (r *workoutRepo) DeletePending(_ context.Context, id, coachID uuid.UUID) error {
	defer r.lock()()

	w, ok := r.s.data.workouts[id]
	if !ok || w.CoachID != coachID || !w.IsPending() {
		return repository.ErrConflict
	}
	delete(r.s.data.workouts, id)
	return nil
}

func (r *workoutRepo) findOne(match func(domain.Workout) bool) (*domain.Workout, error) {
	found := r.filter(match)
	if len(found) == 0 {
		return nil, repository.ErrNotFound
	}
	return &found[0], nil
}

// filter returns hydrated copies, newest scheduled first.
func (r *workoutRepo) filter(match func(domain.Workout) bool) []domain.Workout {
	defer r.rlock()()

	out := []domain.Workout{}
	for _, w := range r.s.data.workouts {
		if match(w) {
			out = append(out, r.hydrate(w))
		}
	}
	slices.SortFunc(out, func(a, b domain.Workout) int {
		if c := b.ScheduledAt.Compare(a.ScheduledAt); c != 0 {
			return c
		}
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

// hydrate must be called with mu held.
func (r *workoutRepo) hydrate(w domain.Workout) domain.Workout {
	if coach, ok := r.s.data.accounts[w.CoachID]; ok {
		w.CoachName = coach.Name
	}
	if student, ok := r.s.data.accounts[w.StudentID]; ok {
		w.StudentName = student.Name
	}
	blocks := make([]domain.Block, len(w.Blocks))
	for i, b := range w.Blocks {
		if c, ok := r.s.data.categories[b.CategoryID]; ok {
			b.CategoryName = c.Name
		}
		blocks[i] = b
	}
	slices.SortStableFunc(blocks, func(a, b domain.Block) int { return a.Order - b.Order })
	w.Blocks = blocks
	return w
}

func inRange(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
