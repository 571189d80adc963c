package repository

import (
	"context"
	"time"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/google/uuid"
)

// Error constants for the repository layer.
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
	// ErrConflict means a conditional write matched no rows: the record
	// changed state (or ownership did not match) since it was read.
	ErrConflict = RepositoryError("conditional write matched no rows")
)

// RepositoryError helps distinguish repository errors.
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// AccountRepository stores coaches and students.
type AccountRepository interface {
	// Create assigns ID and timestamps. ErrDuplicate when the e-mail is taken.
	Create(ctx context.Context, account *domain.Account) error
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	// GetStudentOfCoach returns the student only when coachID owns it.
	GetStudentOfCoach(ctx context.Context, coachID, studentID uuid.UUID) (*domain.Account, error)
	// ListStudentsByCoach returns the coach's students ordered by name.
	ListStudentsByCoach(ctx context.Context, coachID uuid.UUID) ([]domain.Account, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatarKey string) error
}

// InviteCodeRepository stores coach invite codes.
type InviteCodeRepository interface {
	Create(ctx context.Context, invite *domain.InviteCode) error
	// GetByCode looks up a code joined with its coach's name.
	GetByCode(ctx context.Context, code string) (*domain.InviteCode, error)
	// MarkUsed stamps used_at/used_by only if the code is still unused.
	// Returns ErrConflict when it was already redeemed.
	MarkUsed(ctx context.Context, code string, usedBy uuid.UUID, usedAt time.Time) error
	// LatestUnused returns the newest unused code of the coach.
	LatestUnused(ctx context.Context, coachID uuid.UUID) (*domain.InviteCode, error)
	// ListByCoach returns all codes of the coach, newest first.
	ListByCoach(ctx context.Context, coachID uuid.UUID) ([]domain.InviteCode, error)
}

// VerificationRepository stores pending e-mail verifications, one per address.
type VerificationRepository interface {
	Upsert(ctx context.Context, v *domain.EmailVerification) error
	Get(ctx context.Context, email string) (*domain.EmailVerification, error)
	// Delete removes the record only if it still carries code.
	// Returns ErrNotFound when nothing matched.
	Delete(ctx context.Context, email, code string) error
}

// WorkoutRepository stores workouts and their content blocks.
type WorkoutRepository interface {
	// Create inserts the workout and its blocks, assigning IDs and timestamps.
	Create(ctx context.Context, workout *domain.Workout) error
	GetForCoach(ctx context.Context, id, coachID uuid.UUID) (*domain.Workout, error)
	GetForStudent(ctx context.Context, id, studentID uuid.UUID) (*domain.Workout, error)
	// LatestForStudentBetween returns the workout with the greatest
	// scheduled_at in [from, to), with the coach's name filled in.
	LatestForStudentBetween(ctx context.Context, studentID uuid.UUID, from, to time.Time) (*domain.Workout, error)
	// ListForCoachBetween returns the coach's workouts scheduled in [from, to).
	ListForCoachBetween(ctx context.Context, coachID uuid.UUID, from, to time.Time) ([]domain.Workout, error)
	// ListForCoach returns all workouts of the coach, newest scheduled
	// first, with student names.
	ListForCoach(ctx context.Context, coachID uuid.UUID) ([]domain.Workout, error)
	// ListForStudent returns the student's workouts, newest scheduled first.
	ListForStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Workout, error)
	// Complete moves a PENDING workout of the student to COMPLETED.
	// ErrConflict when no PENDING row matched.
	Complete(ctx context.Context, id, studentID uuid.UUID, feedback *string, completedAt time.Time) error
	// UpdatePending writes the scalar fields of w while it is still PENDING
	// and owned by w.CoachID. ErrConflict when no row matched.
	UpdatePending(ctx context.Context, w *domain.Workout) error
	// ReplaceBlocks swaps the whole block list of a workout.
	ReplaceBlocks(ctx context.Context, workoutID uuid.UUID, blocks []domain.Block) error
	// DeletePending hard-deletes a PENDING workout owned by coachID.
	// ErrConflict when no row matched.
	DeletePending(ctx context.Context, id, coachID uuid.UUID) error
}

// CategoryRepository stores the seeded workout categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]domain.WorkoutCategory, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.WorkoutCategory, error)
	// EnsureByName inserts the category when no category has that name.
	EnsureByName(ctx context.Context, name string) error
}

// Repositories groups the repositories bound to one connection or transaction.
type Repositories struct {
	Accounts      AccountRepository
	Invites       InviteCodeRepository
	Verifications VerificationRepository
	Workouts      WorkoutRepository
	Categories    CategoryRepository
}

// Store is a storage backend.
type Store interface {
	// Repos returns repositories that run each call on its own.
	Repos() Repositories
	// WithTx runs fn inside one transaction; fn must only use the
	// repositories (and context) it is given. An error from fn rolls back.
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
