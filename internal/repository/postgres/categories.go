package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AndersonGC/dryfit/internal/dbx"
	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/google/uuid"
)

type CategoryRepository struct {
	db dbx.DBTX
}

func NewCategoryRepository(db dbx.DBTX) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.WorkoutCategory, error) {
	return r.query(ctx, `SELECT id, name, created_at FROM workout_categories ORDER BY name ASC`)
}

func (r *CategoryRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.WorkoutCategory, error) {
	if len(ids) == 0 {
		return []domain.WorkoutCategory{}, nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := `SELECT id, name, created_at FROM workout_categories
		 WHERE id IN (` + strings.Join(placeholders, ", ") + `)
		 ORDER BY name ASC`
	return r.query(ctx, query, args...)
}

func (r *CategoryRepository) EnsureByName(ctx context.Context, name string) error {
	query :=
		`INSERT INTO workout_categories (id, name, created_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, query, uuid.New(), name, time.Now().UTC()); err != nil {
		return dbError(err)
	}
	return nil
}

func (r *CategoryRepository) query(ctx context.Context, query string, args ...any) ([]domain.WorkoutCategory, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, dbError(err)
	}
	defer rows.Close()

	categories := []domain.WorkoutCategory{}
	for rows.Next() {
		var c domain.WorkoutCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return categories, nil
}
