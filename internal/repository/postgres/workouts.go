package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/AndersonGC/dryfit/internal/dbx"
	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/google/uuid"
)

const workoutSelect = `SELECT w.id, w.coach_id, w.student_id, w.title, w.description, w.video_ref, w.status,
		 w.scheduled_at, w.completed_at, w.feedback, w.created_at, w.updated_at, c.name, s.name
		 FROM workouts w
		 JOIN accounts c ON c.id = w.coach_id
		 JOIN accounts s ON s.id = w.student_id`

const blockSelect = `SELECT b.id, b.workout_id, b.category_id, cat.name, b.description, b.position
		 FROM workout_blocks b
		 JOIN workout_categories cat ON cat.id = b.category_id
		 JOIN workouts w ON w.id = b.workout_id`

// WorkoutRepository stores workouts and their blocks. Create and
// ReplaceBlocks issue several statements and should run inside a
// transaction (repository.Store.WithTx).
type WorkoutRepository struct {
	db dbx.DBTX
}

func NewWorkoutRepository(db dbx.DBTX) *WorkoutRepository {
	return &WorkoutRepository{db: db}
}

func (r *WorkoutRepository) Create(ctx context.Context, w *domain.Workout) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	if w.Status == "" {
		w.Status = domain.WorkoutPending
	}

	query :=
		`INSERT INTO workouts (id, coach_id, student_id, title, description, video_ref, status, scheduled_at, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		w.ID, w.CoachID, w.StudentID, w.Title, nullString(w.Description), nullString(w.VideoRef),
		string(w.Status), w.ScheduledAt, w.CreatedAt, w.UpdatedAt)
	if err != nil {
		return dbError(err)
	}

	return r.insertBlocks(ctx, w.ID, w.Blocks)
}

func (r *WorkoutRepository) GetForCoach(ctx context.Context, id, coachID uuid.UUID) (*domain.Workout, error) {
	return r.getOne(ctx, `w.id = $1 AND w.coach_id = $2`, "", id, coachID)
}

func (r *WorkoutRepository) GetForStudent(ctx context.Context, id, studentID uuid.UUID) (*domain.Workout, error) {
	return r.getOne(ctx, `w.id = $1 AND w.student_id = $2`, "", id, studentID)
}

func (r *WorkoutRepository) LatestForStudentBetween(ctx context.Context, studentID uuid.UUID, from, to time.Time) (*domain.Workout, error) {
	return r.getOne(ctx,
		`w.student_id = $1 AND w.scheduled_at >= $2 AND w.scheduled_at < $3`,
		`ORDER BY w.scheduled_at DESC, w.created_at DESC LIMIT 1`,
		studentID, from, to)
}

func (r *WorkoutRepository) ListForCoachBetween(ctx context.Context, coachID uuid.UUID, from, to time.Time) ([]domain.Workout, error) {
	return r.list(ctx,
		`w.coach_id = $1 AND w.scheduled_at >= $2 AND w.scheduled_at < $3`,
		`ORDER BY w.scheduled_at DESC, w.created_at DESC`,
		coachID, from, to)
}

func (r *WorkoutRepository) ListForCoach(ctx context.Context, coachID uuid.UUID) ([]domain.Workout, error) {
	return r.list(ctx, `w.coach_id = $1`, `ORDER BY w.scheduled_at DESC, w.created_at DESC`, coachID)
}

func (r *WorkoutRepository) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Workout, error) {
	return r.list(ctx, `w.student_id = $1`, `ORDER BY w.scheduled_at DESC, w.created_at DESC`, studentID)
}

func (r *WorkoutRepository) Complete(ctx context.Context, id, studentID uuid.UUID, feedback *string, completedAt time.Time) error {
	query :=
		`UPDATE workouts SET status = 'COMPLETED', completed_at = $3, feedback = $4, updated_at = $3
		 WHERE id = $1 AND student_id = $2 AND status = 'PENDING'`

	res, err := r.db.ExecContext(ctx, query, id, studentID, completedAt, nullStringPtr(feedback))
	if err != nil {
		return dbError(err)
	}
	return expectOneRow(res, repository.ErrConflict)
}

func (r *WorkoutRepository) UpdatePending(ctx context.Context, w *domain.Workout) error {
	w.UpdatedAt = time.Now().UTC()

	query :=
		`UPDATE workouts SET title = $3, description = $4, video_ref = $5, scheduled_at = $6, updated_at = $7
		 WHERE id = $1 AND coach_id = $2 AND status = 'PENDING'`

	res, err := r.db.ExecContext(ctx, query,
		w.ID, w.CoachID, w.Title, nullString(w.Description), nullString(w.VideoRef), w.ScheduledAt, w.UpdatedAt)
	if err != nil {
		return dbError(err)
	}
	return expectOneRow(res, repository.ErrConflict)
}

func (r *WorkoutRepository) ReplaceBlocks(ctx context.Context, workoutID uuid.UUID, blocks []domain.Block) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM workout_blocks WHERE workout_id = $1`, workoutID); err != nil {
		return dbError(err)
	}
	return r.insertBlocks(ctx, workoutID, blocks)
}

func (r *WorkoutRepository) DeletePending(ctx context.Context, id, coachID uuid.UUID) error {
	query := `DELETE FROM workouts WHERE id = $1 AND coach_id = $2 AND status = 'PENDING'`

	res, err := r.db.ExecContext(ctx, query, id, coachID)
	if err != nil {
		return dbError(err)
	}
	return expectOneRow(res, repository.ErrConflict)
}

func (r *WorkoutRepository) insertBlocks(ctx context.Context, workoutID uuid.UUID, blocks []domain.Block) error {
	query :=
		`INSERT INTO workout_blocks (id, workout_id, category_id, description, position)
		 VALUES ($1, $2, $3, $4, $5)`

	for i := range blocks {
		if blocks[i].ID == uuid.Nil {
			blocks[i].ID = uuid.New()
		}
		_, err := r.db.ExecContext(ctx, query,
			blocks[i].ID, workoutID, blocks[i].CategoryID, blocks[i].Description, blocks[i].Order)
		if err != nil {
			return dbError(err)
		}
	}
	return nil
}

func (r *WorkoutRepository) getOne(ctx context.Context, where, suffix string, args ...any) (*domain.Workout, error) {
	query := workoutSelect + `
		 WHERE ` + where
	if suffix != "" {
		query += `
		 ` + suffix
	}

	w, err := scanWorkout(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, err
	}

	blocks, err := r.blocks(ctx, `w.id = $1`, w.ID)
	if err != nil {
		return nil, err
	}
	w.Blocks = blocks[w.ID]
	if w.Blocks == nil {
		w.Blocks = []domain.Block{}
	}
	return w, nil
}

func (r *WorkoutRepository) list(ctx context.Context, where, suffix string, args ...any) ([]domain.Workout, error) {
	query := workoutSelect + `
		 WHERE ` + where + `
		 ` + suffix

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	workouts := []domain.Workout{}
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if len(workouts) == 0 {
		return workouts, nil
	}

	// Same filter, so blocks of exactly these workouts come back in one query.
	blocks, err := r.blocks(ctx, where, args...)
	if err != nil {
		return nil, err
	}
	for i := range workouts {
		workouts[i].Blocks = blocks[workouts[i].ID]
		if workouts[i].Blocks == nil {
			workouts[i].Blocks = []domain.Block{}
		}
	}
	return workouts, nil
}

func (r *WorkoutRepository) blocks(ctx context.Context, where string, args ...any) (map[uuid.UUID][]domain.Block, error) {
	query := blockSelect + `
		 WHERE ` + where + `
		 ORDER BY b.workout_id, b.position ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	byWorkout := make(map[uuid.UUID][]domain.Block)
	for rows.Next() {
		var (
			b         domain.Block
			workoutID uuid.UUID
		)
		if err := rows.Scan(&b.ID, &workoutID, &b.CategoryID, &b.CategoryName, &b.Description, &b.Order); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		byWorkout[workoutID] = append(byWorkout[workoutID], b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return byWorkout, nil
}

func scanWorkout(row rowScanner) (*domain.Workout, error) {
	var (
		w           domain.Workout
		status      string
		description sql.NullString
		videoRef    sql.NullString
		completedAt sql.NullTime
		feedback    sql.NullString
	)
	err := row.Scan(&w.ID, &w.CoachID, &w.StudentID, &w.Title, &description, &videoRef, &status,
		&w.ScheduledAt, &completedAt, &feedback, &w.CreatedAt, &w.UpdatedAt, &w.CoachName, &w.StudentName)
	if err != nil {
		return nil, dbError(err)
	}
	w.Status = domain.WorkoutStatus(status)
	w.Description = description.String
	w.VideoRef = videoRef.String
	w.ScheduledAt = w.ScheduledAt.UTC()
	w.CompletedAt = timePtr(completedAt)
	w.Feedback = stringPtr(feedback)
	return &w, nil
}
