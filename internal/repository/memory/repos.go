package memory

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/google/uuid"
)

// --- Accounts ---

type accountRepo struct{ conn }

func (r *accountRepo) Create(_ context.Context, account *domain.Account) error {
	defer r.lock()()

	for _, a := range r.s.data.accounts {
		if a.Email == account.Email {
			return repository.ErrDuplicate
		}
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	r.s.data.accounts[account.ID] = *account
	return nil
}

func (r *accountRepo) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	defer r.rlock()()

	for _, a := range r.s.data.accounts {
		if a.Email == email {
			return &a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *accountRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Account, error) {
	defer r.rlock()()

	a, ok := r.s.data.accounts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *accountRepo) GetStudentOfCoach(_ context.Context, coachID, studentID uuid.UUID) (*domain.Account, error) {
	defer r.rlock()()

	a, ok := r.s.data.accounts[studentID]
	if !ok || !a.IsStudent() || a.CoachID == nil || *a.CoachID != coachID {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (r *accountRepo) ListStudentsByCoach(_ context.Context, coachID uuid.UUID) ([]domain.Account, error) {
	defer r.rlock()()

	students := []domain.Account{}
	for _, a := range r.s.data.accounts {
		if a.IsStudent() && a.CoachID != nil && *a.CoachID == coachID {
			students = append(students, a)
		}
	}
	slices.SortFunc(students, func(a, b domain.Account) int {
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.ID.String(), b.ID.String())
	})
	return students, nil
}

func (r *accountRepo) UpdateAvatar(_ context.Context, id uuid.UUID, avatarKey string) error {
	defer r.lock()()

	a, ok := r.s.data.accounts[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.AvatarKey = avatarKey
	a.UpdatedAt = time.Now().UTC()
	r.s.data.accounts[id] = a
	return nil
}

// --- Invite codes ---

type inviteRepo struct{ conn }

func (r *inviteRepo) Create(_ context.Context, invite *domain.InviteCode) error {
	defer r.lock()()

	if _, exists := r.s.data.invites[invite.Code]; exists {
		return repository.ErrDuplicate
	}
	if invite.CreatedAt.IsZero() {
		invite.CreatedAt = time.Now().UTC()
	}
	r.s.data.invites[invite.Code] = *invite
	return nil
}

func (r *inviteRepo) GetByCode(_ context.Context, code string) (*domain.InviteCode, error) {
	defer r.rlock()()

	inv, ok := r.s.data.invites[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return r.withCoach(inv), nil
}

func (r *inviteRepo) MarkUsed(_ context.Context, code string, usedBy uuid.UUID, usedAt time.Time) error {
	defer r.lock()()

	inv, ok := r.s.data.invites[code]
	if !ok || inv.UsedAt != nil {
		return repository.ErrConflict
	}
	inv.UsedAt = &usedAt
	inv.UsedBy = &usedBy
	r.s.data.invites[code] = inv
	return nil
}

func (r *inviteRepo) LatestUnused(ctx context.Context, coachID uuid.UUID) (*domain.InviteCode, error) {
	all, err := r.ListByCoach(ctx, coachID)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if !all[i].IsUsed() {
			return &all[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *inviteRepo) ListByCoach(_ context.Context, coachID uuid.UUID) ([]domain.InviteCode, error) {
	defer r.rlock()()

	invites := []domain.InviteCode{}
	for _, inv := range r.s.data.invites {
		if inv.CoachID == coachID {
			invites = append(invites, *r.withCoach(inv))
		}
	}
	slices.SortFunc(invites, func(a, b domain.InviteCode) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.Code, a.Code)
	})
	return invites, nil
}

// withCoach must be called with mu held.
func (r *inviteRepo) withCoach(inv domain.InviteCode) *domain.InviteCode {
	if coach, ok := r.s.data.accounts[inv.CoachID]; ok {
		inv.CoachName = coach.Name
	}
	return &inv
}

// --- E-mail verifications ---

type verificationRepo struct{ conn }

func (r *verificationRepo) Upsert(_ context.Context, v *domain.EmailVerification) error {
	defer r.lock()()

	r.s.data.verifications[v.Email] = *v
	return nil
}

func (r *verificationRepo) Get(_ context.Context, email string) (*domain.EmailVerification, error) {
	defer r.rlock()()

	v, ok := r.s.data.verifications[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &v, nil
}

func (r *verificationRepo) Delete(_ context.Context, email, code string) error {
	defer r.lock()()

	v, ok := r.s.data.verifications[email]
	if !ok || v.Code != code {
		return repository.ErrNotFound
	}
	delete(r.s.data.verifications, email)
	return nil
}

// --- Categories ---

type categoryRepo struct{ conn }

func (r *categoryRepo) List(_ context.Context) ([]domain.WorkoutCategory, error) {
	defer r.rlock()()

	out := make([]domain.WorkoutCategory, 0, len(r.s.data.categories))
	for _, c := range r.s.data.categories {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.WorkoutCategory) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *categoryRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]domain.WorkoutCategory, error) {
	defer r.rlock()()

	out := []domain.WorkoutCategory{}
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if c, ok := r.s.data.categories[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, c)
		}
	}
	slices.SortFunc(out, func(a, b domain.WorkoutCategory) int { return cmp.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *categoryRepo) EnsureByName(_ context.Context, name string) error {
	defer r.lock()()

	for _, c := range r.s.data.categories {
		if c.Name == name {
			return nil
		}
	}
	c := domain.WorkoutCategory{ID: uuid.New(), Name: name, CreatedAt: time.Now().UTC()}
	r.s.data.categories[c.ID] = c
	return nil
}
