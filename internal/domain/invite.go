package domain

import (
	"time"

	"github.com/google/uuid"
)

// InviteCode is a single-use credential a coach hands to a prospective
// student. UsedAt goes from nil to non-nil exactly once.
type InviteCode struct {
	Code      string     `json:"code"`
	CoachID   uuid.UUID  `json:"coachId"`
	CreatedAt time.Time  `json:"createdAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	UsedBy    *uuid.UUID `json:"usedBy,omitempty"`

	// Populated on lookups joined with the owning coach.
	CoachName string `json:"-"`
}

func (c *InviteCode) IsUsed() bool {
	return c.UsedAt != nil
}

// EmailVerification is a pending proof of e-mail ownership.
// There is at most one per e-mail; a new send replaces it.
type EmailVerification struct {
	Email     string
	Code      string
	ExpiresAt time.Time
}

func (v *EmailVerification) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}
