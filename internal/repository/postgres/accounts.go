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

const accountColumns = `id, email, name, password_hash, role, avatar_key, coach_id, created_at, updated_at`

type AccountRepository struct {
	db dbx.DBTX
}

func NewAccountRepository(db dbx.DBTX) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now

	query :=
		`INSERT INTO accounts (id, email, name, password_hash, role, avatar_key, coach_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		account.ID, account.Email, account.Name, account.PasswordHash, string(account.Role),
		nullString(account.AvatarKey), nullUUID(account.CoachID), account.CreatedAt, account.UpdatedAt)
	if err != nil {
		return dbError(err)
	}
	return nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, email))
}

func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return scanAccount(r.db.QueryRowContext(ctx, query, id))
}

func (r *AccountRepository) GetStudentOfCoach(ctx context.Context, coachID, studentID uuid.UUID) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		 WHERE id = $1 AND coach_id = $2 AND role = 'STUDENT'`
	return scanAccount(r.db.QueryRowContext(ctx, query, studentID, coachID))
}

func (r *AccountRepository) ListStudentsByCoach(ctx context.Context, coachID uuid.UUID) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts
		 WHERE coach_id = $1 AND role = 'STUDENT'
		 ORDER BY name ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, coachID)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	students := []domain.Account{}
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return students, nil
}

func (r *AccountRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarKey string) error {
	query := `UPDATE accounts SET avatar_key = $2, updated_at = $3 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, nullString(avatarKey), time.Now().UTC())
	if err != nil {
		return dbError(err)
	}
	return expectOneRow(res, repository.ErrNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	var (
		a      domain.Account
		role   string
		avatar sql.NullString
		coach  uuid.NullUUID
	)
	err := row.Scan(&a.ID, &a.Email, &a.Name, &a.PasswordHash, &role, &avatar, &coach, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, dbError(err)
	}
	a.Role = domain.Role(role)
	a.AvatarKey = avatar.String
	a.CoachID = uuidPtr(coach)
	return &a, nil
}
