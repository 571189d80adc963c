package service

import "github.com/AndersonGC/dryfit/internal/apperror"

// Business failures returned by the services. Match them with errors.Is,
// either by value or by their apperror kind.
var (
	ErrInvalidCredentials   = apperror.New(apperror.ErrUnauthorized, "invalid email or password")
	ErrInvalidVerification  = apperror.New(apperror.ErrUnauthorized, "email verification is missing, invalid or expired")
	ErrEmailInUse           = apperror.New(apperror.ErrConflict, "this email is already registered")
	ErrInvalidCode          = apperror.New(apperror.ErrValidation, "invalid verification code")
	ErrCodeExpired          = apperror.New(apperror.ErrValidation, "verification code has expired, request a new one")
	ErrResendTooSoon        = apperror.New(apperror.ErrRateLimited, "a code was sent recently, wait before requesting another")
	ErrInvalidInviteCode    = apperror.New(apperror.ErrValidation, "invalid invite code, check it with your coach")
	ErrInviteAlreadyUsed    = apperror.New(apperror.ErrConflict, "this invite code has already been used")
	ErrNoActiveInviteCode   = apperror.New(apperror.ErrNotFound, "no unused invite code, generate a new one")
	ErrStudentNotOwned      = apperror.New(apperror.ErrNotFound, "student not found or not managed by this coach")
	ErrWorkoutNotFound      = apperror.New(apperror.ErrNotFound, "workout not found")
	ErrNotMutable           = apperror.New(apperror.ErrConflict, "workout is already completed and can no longer be changed")
	ErrUnknownCategory      = apperror.New(apperror.ErrValidation, "unknown workout category")
	ErrAccountNotFound      = apperror.New(apperror.ErrNotFound, "account not found")
	ErrAvatarsDisabled      = apperror.New(apperror.ErrValidation, "avatar uploads are not configured")
	ErrUnsupportedImageType = apperror.New(apperror.ErrValidation, "avatar must be a JPEG, PNG or WebP image")
	ErrInvalidAvatarKey     = apperror.New(apperror.ErrValidation, "avatar key does not belong to this account")
)
