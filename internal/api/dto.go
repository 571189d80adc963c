package api

import (
	"context"
	"time"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/service"
)

// --- Request DTOs ---

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ConfirmVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

type RegisterRequest struct {
	Email             string `json:"email" binding:"required,email"`
	Password          string `json:"password" binding:"required,min=6"`
	Name              string `json:"name" binding:"required,min=2"`
	InviteCode        string `json:"inviteCode" binding:"required"`
	VerificationToken string `json:"verificationToken"`
}

type BlockRequest struct {
	CategoryID  string `json:"categoryId" binding:"required,uuid"`
	Description string `json:"description"`
}

type CreateWorkoutRequest struct {
	StudentID   string         `json:"studentId" binding:"required,uuid"`
	Title       string         `json:"title" binding:"required,max=200"`
	Description string         `json:"description"`
	VideoRef    string         `json:"videoRef"`
	ScheduledAt string         `json:"scheduledAt"` // YYYY-MM-DD or RFC3339, optional
	Blocks      []BlockRequest `json:"blocks" binding:"omitempty,dive"`
}

type UpdateWorkoutRequest struct {
	Title       *string         `json:"title" binding:"omitempty,max=200"`
	Description *string         `json:"description"`
	VideoRef    *string         `json:"videoRef"`
	ScheduledAt *string         `json:"scheduledAt"`
	Blocks      *[]BlockRequest `json:"blocks" binding:"omitempty,dive"`
}

type CompleteWorkoutRequest struct {
	Feedback *string `json:"feedback"`
}

type AvatarUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type SetAvatarRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

// --- Response DTOs ---

type AccountResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CoachID   string    `json:"coachId,omitempty"`
	CoachName string    `json:"coachName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type LoginResponse struct {
	Token string          `json:"token"`
	User  AccountResponse `json:"user"`
}

type VerificationTokenResponse struct {
	VerificationToken string `json:"verificationToken"`
}

type AvatarUploadResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
	ExpiresIn int    `json:"expiresIn"` // seconds
}

type CategoryResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type InviteCodeResponse struct {
	Code      string     `json:"code"`
	CreatedAt time.Time  `json:"createdAt"`
	UsedAt    *time.Time `json:"usedAt,omitempty"`
	UsedBy    string     `json:"usedBy,omitempty"`
}

type BlockResponse struct {
	ID           string `json:"id"`
	CategoryID   string `json:"categoryId"`
	CategoryName string `json:"categoryName,omitempty"`
	Description  string `json:"description"`
	Order        int    `json:"order"`
}

type WorkoutResponse struct {
	ID          string          `json:"id"`
	CoachID     string          `json:"coachId"`
	CoachName   string          `json:"coachName,omitempty"`
	StudentID   string          `json:"studentId"`
	StudentName string          `json:"studentName,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	VideoRef    string          `json:"videoRef,omitempty"`
	Blocks      []BlockResponse `json:"blocks"`
	Status      string          `json:"status"`
	ScheduledAt time.Time       `json:"scheduledAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
	Feedback    *string         `json:"feedback,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// StudentDayResponse is one row of the coach's per-day roster.
type StudentDayResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	AvatarURL  string           `json:"avatarUrl,omitempty"`
	HasWorkout bool             `json:"hasWorkout"`
	Workout    *WorkoutResponse `json:"workout"`
}

// --- Mappers ---

// avatarURLFunc presigns an avatar key; see ProfileService.AvatarURL.
type avatarURLFunc func(ctx context.Context, key string) string

func MapAccountToResponse(a *domain.Account, avatarURL string) AccountResponse {
	resp := AccountResponse{
		ID:        a.ID.String(),
		Email:     a.Email,
		Name:      a.Name,
		Role:      string(a.Role),
		AvatarURL: avatarURL,
		CreatedAt: a.CreatedAt,
	}
	if a.CoachID != nil {
		resp.CoachID = a.CoachID.String()
	}
	return resp
}

func MapProfileToResponse(p *service.Profile) AccountResponse {
	resp := MapAccountToResponse(p.Account, p.AvatarURL)
	resp.CoachName = p.CoachName
	return resp
}

func MapCategoriesToResponse(categories []domain.WorkoutCategory) []CategoryResponse {
	resp := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		resp[i] = CategoryResponse{ID: c.ID.String(), Name: c.Name}
	}
	return resp
}

func MapInviteToResponse(inv *domain.InviteCode) InviteCodeResponse {
	resp := InviteCodeResponse{Code: inv.Code, CreatedAt: inv.CreatedAt, UsedAt: inv.UsedAt}
	if inv.UsedBy != nil {
		resp.UsedBy = inv.UsedBy.String()
	}
	return resp
}

func MapInvitesToResponse(invites []domain.InviteCode) []InviteCodeResponse {
	resp := make([]InviteCodeResponse, len(invites))
	for i := range invites {
		resp[i] = MapInviteToResponse(&invites[i])
	}
	return resp
}

func MapWorkoutToResponse(w *domain.Workout) WorkoutResponse {
	blocks := make([]BlockResponse, len(w.Blocks))
	for i, b := range w.Blocks {
		blocks[i] = BlockResponse{
			ID:           b.ID.String(),
			CategoryID:   b.CategoryID.String(),
			CategoryName: b.CategoryName,
			Description:  b.Description,
			Order:        b.Order,
		}
	}
	return WorkoutResponse{
		ID:          w.ID.String(),
		CoachID:     w.CoachID.String(),
		CoachName:   w.CoachName,
		StudentID:   w.StudentID.String(),
		StudentName: w.StudentName,
		Title:       w.Title,
		Description: w.Description,
		VideoRef:    w.VideoRef,
		Blocks:      blocks,
		Status:      string(w.Status),
		ScheduledAt: w.ScheduledAt,
		CompletedAt: w.CompletedAt,
		Feedback:    w.Feedback,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func MapWorkoutsToResponse(workouts []domain.Workout) []WorkoutResponse {
	resp := make([]WorkoutResponse, len(workouts))
	for i := range workouts {
		resp[i] = MapWorkoutToResponse(&workouts[i])
	}
	return resp
}

func MapStudentDaysToResponse(ctx context.Context, days []domain.StudentDay, avatarURL avatarURLFunc) []StudentDayResponse {
	resp := make([]StudentDayResponse, len(days))
	for i, d := range days {
		row := StudentDayResponse{
			ID:         d.Student.ID.String(),
			Name:       d.Student.Name,
			Email:      d.Student.Email,
			AvatarURL:  avatarURL(ctx, d.Student.AvatarKey),
			HasWorkout: d.HasWorkout(),
		}
		if d.Workout != nil {
			w := MapWorkoutToResponse(d.Workout)
			row.Workout = &w
		}
		resp[i] = row
	}
	return resp
}

func MapStudentsToResponse(ctx context.Context, students []domain.Account, avatarURL avatarURLFunc) []AccountResponse {
	resp := make([]AccountResponse, len(students))
	for i := range students {
		resp[i] = MapAccountToResponse(&students[i], avatarURL(ctx, students[i].AvatarKey))
	}
	return resp
}
