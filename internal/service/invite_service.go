package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/AndersonGC/dryfit/internal/apperror"
	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/logging"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/google/uuid"
)

const (
	InvitePrefix = "DRFT-"
	// No 0/O or 1/I so codes survive being read aloud or retyped.
	InviteAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	InviteSuffixLen  = 6
	inviteCodeLength = len(InvitePrefix) + InviteSuffixLen

	maxInviteAttempts = 5
)

// InviteService manages coach invite codes.
type InviteService interface {
	Generate(ctx context.Context, coachID uuid.UUID) (*domain.InviteCode, error)
	// Current returns the newest unused code of the coach.
	Current(ctx context.Context, coachID uuid.UUID) (*domain.InviteCode, error)
	List(ctx context.Context, coachID uuid.UUID) ([]domain.InviteCode, error)
}

type inviteService struct {
	store repository.Store
	log   logging.Logger
	now   func() time.Time
}

func NewInviteService(store repository.Store, log logging.Logger) InviteService {
	return &inviteService{store: store, log: log, now: time.Now}
}

// Generate mints a fresh code. Outstanding codes stay valid.
func (s *inviteService) Generate(ctx context.Context, coachID uuid.UUID) (*domain.InviteCode, error) {
	repos := s.store.Repos()
	coach, err := repos.Accounts.GetByID(ctx, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if !coach.IsCoach() {
		return nil, apperror.Validation("only coaches can generate invite codes")
	}

	for attempt := 0; attempt < maxInviteAttempts; attempt++ {
		code, err := GenerateInviteCode()
		if err != nil {
			return nil, err
		}
		invite := &domain.InviteCode{Code: code, CoachID: coachID, CreatedAt: s.now().UTC()}
		err = repos.Invites.Create(ctx, invite)
		if errors.Is(err, repository.ErrDuplicate) {
			continue
		}
		if err != nil {
			return nil, err
		}
		invite.CoachName = coach.Name
		s.log.Info(ctx, "invite code generated", "coach_id", coachID, "code", code)
		return invite, nil
	}
	return nil, fmt.Errorf("could not generate a unique invite code after %d attempts", maxInviteAttempts)
}

func (s *inviteService) Current(ctx context.Context, coachID uuid.UUID) (*domain.InviteCode, error) {
	invite, err := s.store.Repos().Invites.LatestUnused(ctx, coachID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoActiveInviteCode
		}
		return nil, err
	}
	return invite, nil
}

func (s *inviteService) List(ctx context.Context, coachID uuid.UUID) ([]domain.InviteCode, error) {
	return s.store.Repos().Invites.ListByCoach(ctx, coachID)
}

// GenerateInviteCode returns a random code like DRFT-K7M2QX.
func GenerateInviteCode() (string, error) {
	var b strings.Builder
	b.Grow(inviteCodeLength)
	b.WriteString(InvitePrefix)
	max := big.NewInt(int64(len(InviteAlphabet)))
	for i := 0; i < InviteSuffixLen; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		b.WriteByte(InviteAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeInviteCode trims and upper-cases user input and checks its shape.
func NormalizeInviteCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != inviteCodeLength || !strings.HasPrefix(code, InvitePrefix) {
		return "", apperror.Validation(fmt.Sprintf("invite code must look like %sXXXXXX", InvitePrefix))
	}
	for _, r := range code[len(InvitePrefix):] {
		if !strings.ContainsRune(InviteAlphabet, r) {
			return "", ErrInvalidInviteCode
		}
	}
	return code, nil
}
