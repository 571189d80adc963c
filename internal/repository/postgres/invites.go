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

const inviteSelect = `SELECT i.code, i.coach_id, i.created_at, i.used_at, i.used_by, a.name
		 FROM invite_codes i
		 JOIN accounts a ON a.id = i.coach_id`

type InviteCodeRepository struct {
	db dbx.DBTX
}

func NewInviteCodeRepository(db dbx.DBTX) *InviteCodeRepository {
	return &InviteCodeRepository{db: db}
}

func (r *InviteCodeRepository) Create(ctx context.Context, invite *domain.InviteCode) error {
	if invite.CreatedAt.IsZero() {
		invite.CreatedAt = time.Now().UTC()
	}

	query :=
		`INSERT INTO invite_codes (code, coach_id, created_at)
		 VALUES ($1, $2, $3)`

	if _, err := r.db.ExecContext(ctx, query, invite.Code, invite.CoachID, invite.CreatedAt); err != nil {
		return dbError(err)
	}
	return nil
}

func (r *InviteCodeRepository) GetByCode(ctx context.Context, code string) (*domain.InviteCode, error) {
	query := inviteSelect + `
		 WHERE i.code = $1`
	return scanInvite(r.db.QueryRowContext(ctx, query, code))
}

func (r *InviteCodeRepository) MarkUsed(ctx context.Context, code string, usedBy uuid.UUID, usedAt time.Time) error {
	query :=
		`UPDATE invite_codes SET used_at = $3, used_by = $2
		 WHERE code = $1 AND used_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, code, usedBy, usedAt)
	if err != nil {
		return dbError(err)
	}
	return expectOneRow(res, repository.ErrConflict)
}

func (r *InviteCodeRepository) LatestUnused(ctx context.Context, coachID uuid.UUID) (*domain.InviteCode, error) {
	query := inviteSelect + `
		 WHERE i.coach_id = $1 AND i.used_at IS NULL
		 ORDER BY i.created_at DESC
		 LIMIT 1`
	return scanInvite(r.db.QueryRowContext(ctx, query, coachID))
}

func (r *InviteCodeRepository) ListByCoach(ctx context.Context, coachID uuid.UUID) ([]domain.InviteCode, error) {
	query := inviteSelect + `
		 WHERE i.coach_id = $1
		 ORDER BY i.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, coachID)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	invites := []domain.InviteCode{}
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, err
		}
		invites = append(invites, *inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return invites, nil
}

func scanInvite(row rowScanner) (*domain.InviteCode, error) {
	var (
		inv    domain.InviteCode
		usedAt sql.NullTime
		usedBy uuid.NullUUID
	)
	if err := row.Scan(&inv.Code, &inv.CoachID, &inv.CreatedAt, &usedAt, &usedBy, &inv.CoachName); err != nil {
		return nil, dbError(err)
	}
	inv.UsedAt = timePtr(usedAt)
	inv.UsedBy = uuidPtr(usedBy)
	return &inv, nil
}
