package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/AndersonGC/dryfit/internal/auth"
	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/logging"
	"github.com/AndersonGC/dryfit/internal/mailer"
	"github.com/AndersonGC/dryfit/internal/ratelimit"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/AndersonGC/dryfit/internal/search"
	"golang.org/x/crypto/bcrypt"
)

// AuthService covers identity: login, e-mail verification, student
// registration through invite codes and coach provisioning.
type AuthService interface {
	Authenticate(ctx context.Context, email, password string) (token string, account *domain.Account, err error)
	SendVerificationCode(ctx context.Context, email string) error
	// ConfirmVerificationCode consumes the code and returns an e-mail
	// verified assertion for RegisterStudent.
	ConfirmVerificationCode(ctx context.Context, email, code string) (verificationToken string, err error)
	RegisterStudent(ctx context.Context, in RegisterStudentInput) (token string, account *domain.Account, err error)
	ProvisionCoach(ctx context.Context, email, password, name string) (*domain.Account, error)
}

type RegisterStudentInput struct {
	Email             string
	Password          string
	Name              string
	InviteCode        string
	VerificationToken string
}

// AuthOptions tunes AuthService; zero values take the defaults.
type AuthOptions struct {
	BcryptCost               int
	CodeTTL                  time.Duration
	ResendCooldown           time.Duration
	RequireEmailVerification bool
}

type authService struct {
	store   repository.Store
	tokens  *auth.TokenManager
	mail    mailer.Mailer
	limiter ratelimit.Limiter
	index   search.StudentIndex // optional
	log     logging.Logger
	opts    AuthOptions
	now     func() time.Time
}

// NewAuthService creates a new instance of authService. index may be nil.
func NewAuthService(
	store repository.Store,
	tokens *auth.TokenManager,
	mail mailer.Mailer,
	limiter ratelimit.Limiter,
	index search.StudentIndex,
	log logging.Logger,
	opts AuthOptions,
) AuthService {
	if opts.BcryptCost == 0 {
		opts.BcryptCost = 12
	}
	if opts.CodeTTL <= 0 {
		opts.CodeTTL = 15 * time.Minute
	}
	return &authService{
		store:   store,
		tokens:  tokens,
		mail:    mail,
		limiter: limiter,
		index:   index,
		log:     log,
		opts:    opts,
		now:     time.Now,
	}
}

// Authenticate checks the credentials and issues a session token.
// Unknown e-mail and wrong password fail the same way.
func (s *authService) Authenticate(ctx context.Context, email, password string) (string, *domain.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}

	account, err := s.store.Repos().Accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.tokens.IssueSession(account)
	if err != nil {
		return "", nil, err
	}
	return token, account.Sanitized(), nil
}

func (s *authService) SendVerificationCode(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}

	if err := s.ensureEmailFree(ctx, email); err != nil {
		return err
	}

	limitKey := "verify-email:" + email
	allowed, err := s.limiter.Allow(ctx, limitKey, s.opts.ResendCooldown)
	if err != nil {
		// A broken limiter must not lock users out.
		s.log.Warn(ctx, "rate limiter unavailable", "error", err)
	} else if !allowed {
		return ErrResendTooSoon
	}

	code, err := generateNumericCode(6)
	if err != nil {
		return err
	}
	v := &domain.EmailVerification{Email: email, Code: code, ExpiresAt: s.now().UTC().Add(s.opts.CodeTTL)}
	if err := s.store.Repos().Verifications.Upsert(ctx, v); err != nil {
		return err
	}

	if err := s.mail.SendVerificationCode(ctx, email, code, s.opts.CodeTTL); err != nil {
		_ = s.limiter.Clear(ctx, limitKey)
		return fmt.Errorf("deliver verification code: %w", err)
	}
	s.log.Info(ctx, "verification code sent", "email", email)
	return nil
}

func (s *authService) ConfirmVerificationCode(ctx context.Context, email, code string) (string, error) {
	email = strings.TrimSpace(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return "", ErrInvalidCode
	}

	verifications := s.store.Repos().Verifications
	v, err := verifications.Get(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCode
		}
		return "", err
	}
	if v.Code != code {
		return "", ErrInvalidCode
	}
	if v.Expired(s.now()) {
		return "", ErrCodeExpired
	}

	// Conditional delete: of two concurrent confirmations only one wins.
	if err := verifications.Delete(ctx, email, code); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCode
		}
		return "", err
	}

	return s.tokens.IssueVerification(email)
}

func (s *authService) RegisterStudent(ctx context.Context, in RegisterStudentInput) (string, *domain.Account, error) {
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return "", nil, err
	}
	name, err := normalizeName(in.Name)
	if err != nil {
		return "", nil, err
	}
	if err := checkPassword(in.Password); err != nil {
		return "", nil, err
	}
	code, err := NormalizeInviteCode(in.InviteCode)
	if err != nil {
		return "", nil, err
	}

	if s.opts.RequireEmailVerification || in.VerificationToken != "" {
		verified, err := s.tokens.ParseVerification(in.VerificationToken)
		if err != nil || verified != email {
			return "", nil, ErrInvalidVerification
		}
	}

	repos := s.store.Repos()
	invite, err := repos.Invites.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidInviteCode
		}
		return "", nil, err
	}
	if invite.IsUsed() {
		return "", nil, ErrInviteAlreadyUsed
	}
	if err := s.ensureEmailFree(ctx, email); err != nil {
		return "", nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	coachID := invite.CoachID
	student := &domain.Account{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         domain.RoleStudent,
		CoachID:      &coachID,
	}

	// The checks above are advisory; the conditional MarkUsed inside the
	// transaction is what lets only one concurrent redemption commit.
	err = s.store.WithTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
		if err := tx.Accounts.Create(ctx, student); err != nil {
			return err
		}
		return tx.Invites.MarkUsed(ctx, code, student.ID, s.now().UTC())
	})
	switch {
	case errors.Is(err, repository.ErrConflict):
		return "", nil, ErrInviteAlreadyUsed
	case errors.Is(err, repository.ErrDuplicate):
		return "", nil, ErrEmailInUse
	case err != nil:
		return "", nil, err
	}

	s.log.Info(ctx, "student registered", "student_id", student.ID, "coach_id", coachID)

	if s.index != nil {
		if err := s.index.IndexStudent(ctx, student); err != nil {
			s.log.Warn(ctx, "failed to index student", "student_id", student.ID, "error", err)
		}
	}

	token, err := s.tokens.IssueSession(student)
	if err != nil {
		return "", nil, err
	}
	return token, student.Sanitized(), nil
}

// ProvisionCoach creates a coach account. Coaches are created out of band
// (admin CLI), never through the public API.
func (s *authService) ProvisionCoach(ctx context.Context, email, password, name string) (*domain.Account, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	name, err = normalizeName(name)
	if err != nil {
		return nil, err
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	coach := &domain.Account{Email: email, Name: name, PasswordHash: string(hash), Role: domain.RoleCoach}
	if err := s.store.Repos().Accounts.Create(ctx, coach); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailInUse
		}
		return nil, err
	}
	return coach.Sanitized(), nil
}

func (s *authService) ensureEmailFree(ctx context.Context, email string) error {
	_, err := s.store.Repos().Accounts.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return ErrEmailInUse
	case errors.Is(err, repository.ErrNotFound):
		return nil
	default:
		return err
	}
}

// generateNumericCode returns n random decimal digits.
func generateNumericCode(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}
