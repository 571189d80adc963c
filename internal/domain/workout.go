package domain

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutStatus is the two-state lifecycle flag. COMPLETED is terminal.
type WorkoutStatus string

const (
	WorkoutPending   WorkoutStatus = "PENDING"
	WorkoutCompleted WorkoutStatus = "COMPLETED"
)

// Workout is one day's assignment from a coach to one of their students.
type Workout struct {
	ID          uuid.UUID     `json:"id"`
	CoachID     uuid.UUID     `json:"coachId"`
	StudentID   uuid.UUID     `json:"studentId"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	VideoRef    string        `json:"videoRef,omitempty"` // external video id, e.g. YouTube
	Blocks      []Block       `json:"blocks"`
	Status      WorkoutStatus `json:"status"`
	ScheduledAt time.Time     `json:"scheduledAt"` // only the UTC calendar day matters
	CompletedAt *time.Time    `json:"completedAt,omitempty"`
	Feedback    *string       `json:"feedback,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`

	// Read-side joins, filled by some queries only.
	CoachName   string `json:"-"`
	StudentName string `json:"-"`
}

func (w *Workout) IsPending() bool {
	return w.Status == WorkoutPending
}

// Block is one category-tagged chunk of a workout's content.
type Block struct {
	ID           uuid.UUID `json:"id"`
	CategoryID   uuid.UUID `json:"categoryId"`
	CategoryName string    `json:"categoryName,omitempty"`
	Description  string    `json:"description"`
	Order        int       `json:"order"`
}

// WorkoutPatch carries the fields of a partial update. Nil means "leave as
// is"; a non-nil Blocks replaces the whole block list.
type WorkoutPatch struct {
	Title       *string
	Description *string
	VideoRef    *string
	ScheduledAt *time.Time
	Blocks      *[]Block
}

// Empty reports whether the patch changes nothing.
func (p WorkoutPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.VideoRef == nil && p.ScheduledAt == nil && p.Blocks == nil
}

// Apply copies the supplied fields onto w.
func (p WorkoutPatch) Apply(w *Workout) {
	if p.Title != nil {
		w.Title = *p.Title
	}
	if p.Description != nil {
		w.Description = *p.Description
	}
	if p.VideoRef != nil {
		w.VideoRef = *p.VideoRef
	}
	if p.ScheduledAt != nil {
		w.ScheduledAt = p.ScheduledAt.UTC()
	}
	if p.Blocks != nil {
		w.Blocks = *p.Blocks
	}
}

// WorkoutCategory is a system-wide, seeded taxonomy tag.
type WorkoutCategory struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// StudentDay is one row of a coach's per-day roster.
type StudentDay struct {
	Student *Account
	Workout *Workout // nil when nothing is assigned for the day
}

func (d StudentDay) HasWorkout() bool {
	return d.Workout != nil
}
