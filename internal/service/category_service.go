package service

import (
	"context"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/logging"
	"github.com/AndersonGC/dryfit/internal/repository"
)

// DefaultCategories are seeded on a fresh database.
var DefaultCategories = []string{
	"Warm-up",
	"Strength",
	"Conditioning",
	"WOD",
	"HIIT",
	"Mobility",
	"Cool-down",
}

type CategoryService interface {
	List(ctx context.Context) ([]domain.WorkoutCategory, error)
	// EnsureDefaults inserts missing default categories; safe to rerun.
	EnsureDefaults(ctx context.Context) error
}

type categoryService struct {
	store repository.Store
	log   logging.Logger
}

func NewCategoryService(store repository.Store, log logging.Logger) CategoryService {
	return &categoryService{store: store, log: log}
}

func (s *categoryService) List(ctx context.Context) ([]domain.WorkoutCategory, error) {
	return s.store.Repos().Categories.List(ctx)
}

func (s *categoryService) EnsureDefaults(ctx context.Context) error {
	categories := s.store.Repos().Categories
	for _, name := range DefaultCategories {
		if err := categories.EnsureByName(ctx, name); err != nil {
			return err
		}
	}
	s.log.Info(ctx, "default categories ensured", "count", len(DefaultCategories))
	return nil
}
