package postgres

import (
	"context"

	"github.com/AndersonGC/dryfit/internal/dbx"
	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/repository"
)

type VerificationRepository struct {
	db dbx.DBTX
}

func NewVerificationRepository(db dbx.DBTX) *VerificationRepository {
	return &VerificationRepository{db: db}
}

func (r *VerificationRepository) Upsert(ctx context.Context, v *domain.EmailVerification) error {
	query :=
		`INSERT INTO email_verifications (email, code, expires_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (email) DO UPDATE SET code = EXCLUDED.code, expires_at = EXCLUDED.expires_at`

	if _, err := r.db.ExecContext(ctx, query, v.Email, v.Code, v.ExpiresAt); err != nil {
		return dbError(err)
	}
	return nil
}

func (r *VerificationRepository) Get(ctx context.Context, email string) (*domain.EmailVerification, error) {
	query :=
		`SELECT email, code, expires_at FROM email_verifications
		 WHERE email = $1`

	var v domain.EmailVerification
	if err := r.db.QueryRowContext(ctx, query, email).Scan(&v.Email, &v.Code, &v.ExpiresAt); err != nil {
		return nil, dbError(err)
	}
	v.ExpiresAt = v.ExpiresAt.UTC()
	return &v, nil
}

func (r *VerificationRepository) Delete(ctx context.Context, email, code string) error {
	query := `DELETE FROM email_verifications WHERE email = $1 AND code = $2`

	res, err := r.db.ExecContext(ctx, query, email, code)
	if err != nil {
		return dbError(err)
	}
	return expectOneRow(res, repository.ErrNotFound)
}
