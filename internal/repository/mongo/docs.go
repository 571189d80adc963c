package mongo

import (
	"fmt"
	"time"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/google/uuid"
)

// Documents keep UUIDs as their canonical string form so that _id values
// read the same in the mongo shell as in API responses.

type accountDoc struct {
	ID           string    `bson:"_id"`
	Email        string    `bson:"email"`
	Name         string    `bson:"name"`
	PasswordHash string    `bson:"passwordHash"`
	Role         string    `bson:"role"`
	AvatarKey    string    `bson:"avatarKey,omitempty"`
	CoachID      *string   `bson:"coachId,omitempty"`
	CreatedAt    time.Time `bson:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt"`
}

func newAccountDoc(a *domain.Account) accountDoc {
	return accountDoc{
		ID:           a.ID.String(),
		Email:        a.Email,
		Name:         a.Name,
		PasswordHash: a.PasswordHash,
		Role:         string(a.Role),
		AvatarKey:    a.AvatarKey,
		CoachID:      idStringPtr(a.CoachID),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func (d accountDoc) toDomain() (*domain.Account, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, fmt.Errorf("account %q: %w", d.ID, err)
	}
	coachID, err := parseIDPtr(d.CoachID)
	if err != nil {
		return nil, fmt.Errorf("account %q coachId: %w", d.ID, err)
	}
	return &domain.Account{
		ID:           id,
		Email:        d.Email,
		Name:         d.Name,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		AvatarKey:    d.AvatarKey,
		CoachID:      coachID,
		CreatedAt:    d.CreatedAt.UTC(),
		UpdatedAt:    d.UpdatedAt.UTC(),
	}, nil
}

type inviteDoc struct {
	Code      string     `bson:"_id"`
	CoachID   string     `bson:"coachId"`
	CreatedAt time.Time  `bson:"createdAt"`
	UsedAt    *time.Time `bson:"usedAt,omitempty"`
	UsedBy    *string    `bson:"usedBy,omitempty"`
}

func (d inviteDoc) toDomain() (*domain.InviteCode, error) {
	coachID, err := uuid.Parse(d.CoachID)
	if err != nil {
		return nil, fmt.Errorf("invite %q coachId: %w", d.Code, err)
	}
	usedBy, err := parseIDPtr(d.UsedBy)
	if err != nil {
		return nil, fmt.Errorf("invite %q usedBy: %w", d.Code, err)
	}
	inv := &domain.InviteCode{Code: d.Code, CoachID: coachID, CreatedAt: d.CreatedAt.UTC(), UsedBy: usedBy}
	if d.UsedAt != nil {
		t := d.UsedAt.UTC()
		inv.UsedAt = &t
	}
	return inv, nil
}

type verificationDoc struct {
	Email     string    `bson:"_id"`
	Code      string    `bson:"code"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

type categoryDoc struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	CreatedAt time.Time `bson:"createdAt"`
}

func (d categoryDoc) toDomain() (domain.WorkoutCategory, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return domain.WorkoutCategory{}, fmt.Errorf("category %q: %w", d.ID, err)
	}
	return domain.WorkoutCategory{ID: id, Name: d.Name, CreatedAt: d.CreatedAt.UTC()}, nil
}

type blockDoc struct {
	ID          string `bson:"id"`
	CategoryID  string `bson:"categoryId"`
	Description string `bson:"description"`
	Order       int    `bson:"order"`
}

type workoutDoc struct {
	ID          string     `bson:"_id"`
	CoachID     string     `bson:"coachId"`
	StudentID   string     `bson:"studentId"`
	Title       string     `bson:"title"`
	Description string     `bson:"description,omitempty"`
	VideoRef    string     `bson:"videoRef,omitempty"`
	Blocks      []blockDoc `bson:"blocks"`
	Status      string     `bson:"status"`
	ScheduledAt time.Time  `bson:"scheduledAt"`
	CompletedAt *time.Time `bson:"completedAt,omitempty"`
	Feedback    *string    `bson:"feedback,omitempty"`
	CreatedAt   time.Time  `bson:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt"`
}

func newBlockDocs(blocks []domain.Block) []blockDoc {
	docs := make([]blockDoc, len(blocks))
	for i, b := range blocks {
		docs[i] = blockDoc{ID: b.ID.String(), CategoryID: b.CategoryID.String(), Description: b.Description, Order: b.Order}
	}
	return docs
}

func newWorkoutDoc(w *domain.Workout) workoutDoc {
	return workoutDoc{
		ID:          w.ID.String(),
		CoachID:     w.CoachID.String(),
		StudentID:   w.StudentID.String(),
		Title:       w.Title,
		Description: w.Description,
		VideoRef:    w.VideoRef,
		Blocks:      newBlockDocs(w.Blocks),
		Status:      string(w.Status),
		ScheduledAt: w.ScheduledAt,
		CompletedAt: w.CompletedAt,
		Feedback:    w.Feedback,
		CreatedAt:   w.CreatedAt,
		UpdatedAt:   w.UpdatedAt,
	}
}

func (d workoutDoc) toDomain() (*domain.Workout, error) {
	var ids [3]uuid.UUID
	for i, s := range []string{d.ID, d.CoachID, d.StudentID} {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("workout %q: %w", d.ID, err)
		}
		ids[i] = id
	}

	w := &domain.Workout{
		ID:          ids[0],
		CoachID:     ids[1],
		StudentID:   ids[2],
		Title:       d.Title,
		Description: d.Description,
		VideoRef:    d.VideoRef,
		Blocks:      make([]domain.Block, 0, len(d.Blocks)),
		Status:      domain.WorkoutStatus(d.Status),
		ScheduledAt: d.ScheduledAt.UTC(),
		Feedback:    d.Feedback,
		CreatedAt:   d.CreatedAt.UTC(),
		UpdatedAt:   d.UpdatedAt.UTC(),
	}
	if d.CompletedAt != nil {
		t := d.CompletedAt.UTC()
		w.CompletedAt = &t
	}
	for _, b := range d.Blocks {
		blockID, err := uuid.Parse(b.ID)
		if err != nil {
			return nil, fmt.Errorf("workout %q block: %w", d.ID, err)
		}
		catID, err := uuid.Parse(b.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("workout %q block category: %w", d.ID, err)
		}
		w.Blocks = append(w.Blocks, domain.Block{ID: blockID, CategoryID: catID, Description: b.Description, Order: b.Order})
	}
	return w, nil
}

func idStringPtr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
