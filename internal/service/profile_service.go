package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/logging"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/AndersonGC/dryfit/internal/search"
	"github.com/AndersonGC/dryfit/internal/storage"
	"github.com/google/uuid"
)

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Profile is an account as shown to its owner.
type Profile struct {
	Account   *domain.Account
	CoachName string // students only
	AvatarURL string // presigned, empty when no avatar
}

type AvatarUpload struct {
	UploadURL string
	ObjectKey string
	ExpiresIn time.Duration
}

// ProfileService serves the caller's own account and a coach's roster.
type ProfileService interface {
	Me(ctx context.Context, accountID uuid.UUID) (*Profile, error)
	RequestAvatarUpload(ctx context.Context, accountID uuid.UUID, contentType string) (*AvatarUpload, error)
	SetAvatar(ctx context.Context, accountID uuid.UUID, objectKey string) (*Profile, error)
	// Students lists the coach's students by name, filtered by query when
	// it is not blank.
	Students(ctx context.Context, coachID uuid.UUID, query string) ([]domain.Account, error)
	// AvatarURL presigns a download URL for key; empty when unavailable.
	AvatarURL(ctx context.Context, key string) string
}

type profileService struct {
	store     repository.Store
	files     storage.FileStorage // nil when avatars are disabled
	index     search.StudentIndex // nil when search is disabled
	urlExpiry time.Duration
	log       logging.Logger
}

func NewProfileService(store repository.Store, files storage.FileStorage, index search.StudentIndex, urlExpiry time.Duration, log logging.Logger) ProfileService {
	if urlExpiry <= 0 {
		urlExpiry = storage.DefaultPresignedURLExpiry
	}
	return &profileService{store: store, files: files, index: index, urlExpiry: urlExpiry, log: log}
}

func (s *profileService) Me(ctx context.Context, accountID uuid.UUID) (*Profile, error) {
	accounts := s.store.Repos().Accounts
	account, err := accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	profile := &Profile{Account: account.Sanitized(), AvatarURL: s.AvatarURL(ctx, account.AvatarKey)}
	if account.IsStudent() && account.CoachID != nil {
		coach, err := accounts.GetByID(ctx, *account.CoachID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		if coach != nil {
			profile.CoachName = coach.Name
		}
	}
	return profile, nil
}

func (s *profileService) RequestAvatarUpload(ctx context.Context, accountID uuid.UUID, contentType string) (*AvatarUpload, error) {
	if s.files == nil {
		return nil, ErrAvatarsDisabled
	}
	ext, ok := avatarExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return nil, ErrUnsupportedImageType
	}

	key := fmt.Sprintf("%s%s.%s", avatarPrefix(accountID), uuid.NewString(), ext)
	url, err := s.files.GeneratePresignedUploadURL(ctx, key, contentType, s.urlExpiry)
	if err != nil {
		return nil, err
	}
	return &AvatarUpload{UploadURL: url, ObjectKey: key, ExpiresIn: s.urlExpiry}, nil
}

func (s *profileService) SetAvatar(ctx context.Context, accountID uuid.UUID, objectKey string) (*Profile, error) {
	if s.files == nil {
		return nil, ErrAvatarsDisabled
	}
	if !strings.HasPrefix(objectKey, avatarPrefix(accountID)) || strings.Contains(objectKey, "..") {
		return nil, ErrInvalidAvatarKey
	}

	accounts := s.store.Repos().Accounts
	account, err := accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	previous := account.AvatarKey

	if err := accounts.UpdateAvatar(ctx, accountID, objectKey); err != nil {
		return nil, err
	}
	if previous != "" && previous != objectKey {
		if err := s.files.DeleteObject(ctx, previous); err != nil {
			s.log.Warn(ctx, "failed to delete previous avatar", "key", previous, "error", err)
		}
	}
	return s.Me(ctx, accountID)
}

func (s *profileService) Students(ctx context.Context, coachID uuid.UUID, query string) ([]domain.Account, error) {
	students, err := s.store.Repos().Accounts.ListStudentsByCoach(ctx, coachID)
	if err != nil {
		return nil, err
	}
	for i := range students {
		students[i].PasswordHash = ""
	}
	if strings.TrimSpace(query) == "" {
		return students, nil
	}

	if s.index != nil {
		ids, err := s.index.Search(ctx, coachID, query)
		if err == nil {
			return pickByID(students, ids), nil
		}
		s.log.Warn(ctx, "student search failed, falling back to local match", "error", err)
	}

	matched := make([]domain.Account, 0, len(students))
	for i := range students {
		if search.Match(&students[i], query) {
			matched = append(matched, students[i])
		}
	}
	return matched, nil
}

func (s *profileService) AvatarURL(ctx context.Context, key string) string {
	if key == "" || s.files == nil {
		return ""
	}
	url, err := s.files.GeneratePresignedDownloadURL(ctx, key, s.urlExpiry)
	if err != nil {
		s.log.Warn(ctx, "failed to presign avatar url", "key", key, "error", err)
		return ""
	}
	return url
}

func avatarPrefix(accountID uuid.UUID) string {
	return "avatars/" + accountID.String() + "/"
}

// pickByID returns the students whose id is in ids, in ids order. Ids
// the coach does not own are ignored.
func pickByID(students []domain.Account, ids []uuid.UUID) []domain.Account {
	byID := make(map[uuid.UUID]domain.Account, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}
	out := make([]domain.Account, 0, len(ids))
	for _, id := range ids {
		if st, ok := byID[id]; ok {
			out = append(out, st)
		}
	}
	return out
}
