// Package auth issues and verifies the signed credentials handed to
// clients: session tokens and e-mail verified assertions.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	issuer = "dryfit"

	AudienceSession           = "session"
	AudienceEmailVerification = "email-verification"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

// SessionClaims is the payload of a session token.
type SessionClaims struct {
	UserID string      `json:"uid"`
	Role   domain.Role `json:"role"`
	Email  string      `json:"email"`
	Name   string      `json:"name"`
	jwt.RegisteredClaims
}

// Session is the verified identity carried by a session token.
type Session struct {
	UserID uuid.UUID
	Role   domain.Role
	Email  string
	Name   string
}

// TokenManager signs tokens with a shared HS256 secret.
type TokenManager struct {
	secret          []byte
	sessionTTL      time.Duration
	verificationTTL time.Duration
	now             func() time.Time
}

// NewTokenManager creates a TokenManager. Zero TTLs fall back to 7 days
// for sessions and 30 minutes for verification assertions.
func NewTokenManager(secret string, sessionTTL, verificationTTL time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret cannot be empty")
	}
	if sessionTTL <= 0 {
		sessionTTL = 7 * 24 * time.Hour
	}
	if verificationTTL <= 0 {
		verificationTTL = 30 * time.Minute
	}
	return &TokenManager{
		secret:          []byte(secret),
		sessionTTL:      sessionTTL,
		verificationTTL: verificationTTL,
		now:             time.Now,
	}, nil
}

// IssueSession creates a session token for the account.
func (m *TokenManager) IssueSession(account *domain.Account) (string, error) {
	now := m.now()
	claims := &SessionClaims{
		UserID: account.ID.String(),
		Role:   account.Role,
		Email:  account.Email,
		Name:   account.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			Audience:  jwt.ClaimStrings{AudienceSession},
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.sessionTTL)),
		},
	}
	return m.sign(claims)
}

// ParseSession verifies a session token.
func (m *TokenManager) ParseSession(tokenString string) (*Session, error) {
	claims := &SessionClaims{}
	if err := m.parse(tokenString, claims, AudienceSession); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return &Session{UserID: id, Role: claims.Role, Email: claims.Email, Name: claims.Name}, nil
}

// IssueVerification creates the short-lived assertion that email was
// proven to belong to the caller.
func (m *TokenManager) IssueVerification(email string) (string, error) {
	now := m.now()
	claims := &jwt.RegisteredClaims{
		Subject:   email,
		Audience:  jwt.ClaimStrings{AudienceEmailVerification},
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.verificationTTL)),
	}
	return m.sign(claims)
}

// ParseVerification verifies an e-mail verified assertion and returns
// the e-mail it was issued for.
func (m *TokenManager) ParseVerification(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if err := m.parse(tokenString, claims, AudienceEmailVerification); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

func (m *TokenManager) sign(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

type audienceClaims interface {
	jwt.Claims
	VerifyAudience(cmp string, req bool) bool
}

func (m *TokenManager) parse(tokenString string, claims audienceClaims, audience string) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ErrTokenExpired
		}
		return ErrInvalidToken
	}
	if !token.Valid || !claims.VerifyAudience(audience, true) {
		return ErrInvalidToken
	}
	return nil
}
