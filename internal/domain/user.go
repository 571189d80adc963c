package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role distinguishes coaches from students.
type Role string

const (
	RoleCoach   Role = "COACH"
	RoleStudent Role = "STUDENT"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleCoach || r == RoleStudent
}

// Account is a user of the system, either a Coach or a Student.
type Account struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"` // unique, exact match
	Name         string     `json:"name"`
	PasswordHash string     `json:"-"` // never exposed
	Role         Role       `json:"role"`
	AvatarKey    string     `json:"avatarKey,omitempty"` // object storage key, empty when unset
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	// Student only: the owning coach, fixed at registration.
	CoachID *uuid.UUID `json:"coachId,omitempty"`
}

func (a *Account) IsCoach() bool {
	return a.Role == RoleCoach
}

func (a *Account) IsStudent() bool {
	return a.Role == RoleStudent
}

// Sanitized returns a copy without the password hash.
func (a Account) Sanitized() *Account {
	a.PasswordHash = ""
	return &a
}
