// Package search keeps a per-coach student directory.
package search

import (
	"context"
	"strings"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/google/uuid"
)

// StudentIndex finds a coach's students by free text.
type StudentIndex interface {
	IndexStudent(ctx context.Context, student *domain.Account) error
	// Search returns the ids of the coach's students matching query, best
	// match first.
	Search(ctx context.Context, coachID uuid.UUID, query string) ([]uuid.UUID, error)
}

// Match is the fallback used when no index is configured: a
// case-insensitive substring match on name or e-mail.
func Match(student *domain.Account, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(student.Name), q) ||
		strings.Contains(strings.ToLower(student.Email), q)
}
