package auth

import (
	"testing"
	"time"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret", time.Hour, 30*time.Minute)
	require.NoError(t, err)
	return m
}

func TestNewTokenManager_EmptySecret(t *testing.T) {
	_, err := NewTokenManager("", 0, 0)
	assert.Error(t, err)
}

func TestSessionRoundTrip(t *testing.T) {
	m := newManager(t)
	account := &domain.Account{ID: uuid.New(), Email: "coach@dryfit.app", Name: "Maria", Role: domain.RoleCoach}

	token, err := m.IssueSession(account)
	require.NoError(t, err)

	session, err := m.ParseSession(token)
	require.NoError(t, err)
	assert.Equal(t, account.ID, session.UserID)
	assert.Equal(t, domain.RoleCoach, session.Role)
	assert.Equal(t, "coach@dryfit.app", session.Email)
	assert.Equal(t, "Maria", session.Name)
}

func TestParseSession_Expired(t *testing.T) {
	m := newManager(t)
	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := m.IssueSession(&domain.Account{ID: uuid.New(), Role: domain.RoleStudent})
	require.NoError(t, err)

	_, err = m.ParseSession(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseSession_WrongSecret(t *testing.T) {
	token, err := newManager(t).IssueSession(&domain.Account{ID: uuid.New(), Role: domain.RoleStudent})
	require.NoError(t, err)

	other, err := NewTokenManager("another-secret", time.Hour, time.Hour)
	require.NoError(t, err)
	_, err = other.ParseSession(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAudiencesAreNotInterchangeable(t *testing.T) {
	m := newManager(t)

	verification, err := m.IssueVerification("a@x.com")
	require.NoError(t, err)
	_, err = m.ParseSession(verification)
	assert.ErrorIs(t, err, ErrInvalidToken)

	session, err := m.IssueSession(&domain.Account{ID: uuid.New(), Email: "a@x.com", Role: domain.RoleStudent})
	require.NoError(t, err)
	_, err = m.ParseVerification(session)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerificationRoundTrip(t *testing.T) {
	m := newManager(t)

	token, err := m.IssueVerification("a@x.com")
	require.NoError(t, err)

	email, err := m.ParseVerification(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)
}

func TestParse_RejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "a@x.com",
		Audience:  jwt.ClaimStrings{AudienceEmailVerification},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = newManager(t).ParseVerification(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
