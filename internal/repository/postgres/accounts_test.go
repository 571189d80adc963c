package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var accountCols = []string{"id", "email", "name", "password_hash", "role", "avatar_key", "coach_id", "created_at", "updated_at"}

func TestAccountCreate_Success(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)
	coachID := uuid.New()

	q := `(?s)^INSERT\s+INTO\s+accounts\s*\(id,\s*email,\s*name,\s*password_hash,\s*role,\s*avatar_key,\s*coach_id,\s*created_at,\s*updated_at\)\s*VALUES\s*\(\$1,.*\$9\)$`
	mock.ExpectExec(q).
		WithArgs(sqlmock.AnyArg(), "ana@dryfit.app", "Ana", "hash", "STUDENT", nil, coachID, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	acc := &domain.Account{Email: "ana@dryfit.app", Name: "Ana", PasswordHash: "hash", Role: domain.RoleStudent, CoachID: &coachID}
	require.NoError(t, repo.Create(context.Background(), acc))

	assert.NotEqual(t, uuid.Nil, acc.ID)
	assert.False(t, acc.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountCreate_DuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec(`INSERT\s+INTO\s+accounts`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &domain.Account{Email: "ana@dryfit.app", Role: domain.RoleCoach})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestAccountCreate_DBError(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)

	mock.ExpectExec(`INSERT\s+INTO\s+accounts`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &domain.Account{Email: "x@y.z", Role: domain.RoleCoach})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestAccountGetByEmail_Found(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)
	id, coachID := uuid.New(), uuid.New()
	now := time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)

	q := `(?s)^SELECT\s+id,\s*email,.*FROM\s+accounts\s+WHERE\s+email\s*=\s*\$1$`
	mock.ExpectQuery(q).
		WithArgs("ana@dryfit.app").
		WillReturnRows(sqlmock.NewRows(accountCols).
			AddRow(id.String(), "ana@dryfit.app", "Ana", "hash", "STUDENT", "avatars/a.png", coachID.String(), now, now))

	got, err := repo.GetByEmail(context.Background(), "ana@dryfit.app")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, domain.RoleStudent, got.Role)
	assert.Equal(t, "avatars/a.png", got.AvatarKey)
	require.NotNil(t, got.CoachID)
	assert.Equal(t, coachID, *got.CoachID)
}

func TestAccountGetByEmail_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)

	mock.ExpectQuery(`FROM\s+accounts\s+WHERE\s+email`).
		WithArgs("ghost@dryfit.app").
		WillReturnRows(sqlmock.NewRows(accountCols))

	_, err := repo.GetByEmail(context.Background(), "ghost@dryfit.app")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestAccountGetStudentOfCoach_ScopesByCoach(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)
	studentID, coachID := uuid.New(), uuid.New()

	q := `(?s)FROM\s+accounts\s+WHERE\s+id\s*=\s*\$1\s+AND\s+coach_id\s*=\s*\$2\s+AND\s+role\s*=\s*'STUDENT'`
	mock.ExpectQuery(q).
		WithArgs(studentID, coachID).
		WillReturnRows(sqlmock.NewRows(accountCols))

	_, err := repo.GetStudentOfCoach(context.Background(), coachID, studentID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAccountListStudentsByCoach(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)
	coachID := uuid.New()
	now := time.Now().UTC()

	q := `(?s)WHERE\s+coach_id\s*=\s*\$1\s+AND\s+role\s*=\s*'STUDENT'\s+ORDER\s+BY\s+name\s+ASC`
	mock.ExpectQuery(q).
		WithArgs(coachID).
		WillReturnRows(sqlmock.NewRows(accountCols).
			AddRow(uuid.NewString(), "ana@x.com", "Ana", "h", "STUDENT", nil, coachID.String(), now, now).
			AddRow(uuid.NewString(), "bruno@x.com", "Bruno", "h", "STUDENT", nil, coachID.String(), now, now))

	got, err := repo.ListStudentsByCoach(context.Background(), coachID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Ana", got[0].Name)
	assert.Equal(t, "Bruno", got[1].Name)
	assert.Empty(t, got[0].AvatarKey)
}

func TestAccountUpdateAvatar_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewAccountRepository(db)
	id := uuid.New()

	mock.ExpectExec(`(?s)UPDATE\s+accounts\s+SET\s+avatar_key\s*=\s*\$2`).
		WithArgs(id, "avatars/new.png", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateAvatar(context.Background(), id, "avatars/new.png")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
