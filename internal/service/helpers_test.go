package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/AndersonGC/dryfit/internal/auth"
	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/logging"
	"github.com/AndersonGC/dryfit/internal/ratelimit"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/AndersonGC/dryfit/internal/repository/memory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeMailer struct {
	mu    sync.Mutex
	codes map[string]string
	sent  int
	err   error
}

func (m *fakeMailer) SendVerificationCode(_ context.Context, to, code string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.codes == nil {
		m.codes = map[string]string{}
	}
	m.codes[to] = code
	m.sent++
	return nil
}

func (m *fakeMailer) last(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

type fakeLimiter struct {
	allow   bool
	cleared []string
}

func (l *fakeLimiter) Allow(context.Context, string, time.Duration) (bool, error) {
	return l.allow, nil
}

func (l *fakeLimiter) Retry(context.Context, string) (time.Duration, error) {
	return time.Minute, nil
}

func (l *fakeLimiter) Clear(_ context.Context, key string) error {
	l.cleared = append(l.cleared, key)
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time     { return c.t }
func (c *clock) add(d time.Duration) { c.t = c.t.Add(d) }

type testEnv struct {
	store   *memory.Store
	tokens  *auth.TokenManager
	mail    *fakeMailer
	clock   *clock
	auth    *authService
	invites *inviteService
	works   *workoutService
}

func newTestEnv(t *testing.T, opts AuthOptions) *testEnv {
	t.Helper()

	store := memory.NewStore()
	tokens, err := auth.NewTokenManager("test-secret", time.Hour, 30*time.Minute)
	require.NoError(t, err)
	mail := &fakeMailer{}
	c := &clock{t: time.Date(2026, 2, 25, 12, 0, 0, 0, time.UTC)}

	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	authSvc := NewAuthService(store, tokens, mail, ratelimit.NewRedisLimiter(nil), nil, logging.Nop(), opts).(*authService)
	authSvc.now = c.now
	inviteSvc := NewInviteService(store, logging.Nop()).(*inviteService)
	inviteSvc.now = c.now
	workoutSvc := NewWorkoutService(store, logging.Nop()).(*workoutService)
	workoutSvc.now = c.now

	return &testEnv{
		store:   store,
		tokens:  tokens,
		mail:    mail,
		clock:   c,
		auth:    authSvc,
		invites: inviteSvc,
		works:   workoutSvc,
	}
}

func (e *testEnv) coach(t *testing.T, name string) *domain.Account {
	t.Helper()
	coach, err := e.auth.ProvisionCoach(context.Background(), name+"@coach.test", "secret123", name)
	require.NoError(t, err)
	return coach
}

func (e *testEnv) student(t *testing.T, coachID uuid.UUID, name string) *domain.Account {
	t.Helper()
	s := &domain.Account{Email: name + "@student.test", Name: name, Role: domain.RoleStudent, CoachID: &coachID}
	require.NoError(t, e.store.Repos().Accounts.Create(context.Background(), s))
	return s
}

func (e *testEnv) category(t *testing.T, name string) domain.WorkoutCategory {
	t.Helper()
	ctx := context.Background()
	repo := e.store.Repos().Categories
	require.NoError(t, repo.EnsureByName(ctx, name))
	all, err := repo.List(ctx)
	require.NoError(t, err)
	for _, c := range all {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("category %q not found", name)
	return domain.WorkoutCategory{}
}

func (e *testEnv) repos() repository.Repositories {
	return e.store.Repos()
}

type fakeIndex struct {
	indexed []domain.Account
	hits    []uuid.UUID
	err     error
}

func (f *fakeIndex) IndexStudent(_ context.Context, student *domain.Account) error {
	f.indexed = append(f.indexed, *student)
	return f.err
}

func (f *fakeIndex) Search(context.Context, uuid.UUID, string) ([]uuid.UUID, error) {
	return f.hits, f.err
}
