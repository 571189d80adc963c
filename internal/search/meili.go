package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/logging"
	"github.com/google/uuid"
	"github.com/meilisearch/meilisearch-go"
)

const studentsIndex = "students"

type meiliStudentDoc struct {
	ID      string `json:"id"`
	CoachID string `json:"coach_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
}

type meiliStudentIndex struct {
	client meilisearch.ServiceManager
	log    logging.Logger
}

// NewMeiliStudentIndex connects to a Meilisearch host and configures the
// students index.
func NewMeiliStudentIndex(host, apiKey string, log logging.Logger) StudentIndex {
	client := meilisearch.New(host, meilisearch.WithAPIKey(apiKey))
	idx := &meiliStudentIndex{client: client, log: log}
	idx.initIndex()
	return idx
}

func (s *meiliStudentIndex) initIndex() {
	ctx := context.Background()
	filterable := []any{"coach_id"}
	if _, err := s.client.Index(studentsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		s.log.Warn(ctx, "failed to update students filterable attributes", "error", err)
	}
	searchable := []string{"name", "email"}
	if _, err := s.client.Index(studentsIndex).UpdateSearchableAttributes(&searchable); err != nil {
		s.log.Warn(ctx, "failed to update students searchable attributes", "error", err)
	}
}

func (s *meiliStudentIndex) IndexStudent(ctx context.Context, student *domain.Account) error {
	if student.CoachID == nil {
		return fmt.Errorf("student %s has no coach", student.ID)
	}
	doc := meiliStudentDoc{
		ID:      student.ID.String(),
		CoachID: student.CoachID.String(),
		Name:    student.Name,
		Email:   student.Email,
	}
	pk := "id"
	task, err := s.client.Index(studentsIndex).AddDocuments([]meiliStudentDoc{doc}, &pk)
	if err != nil {
		return err
	}
	s.log.Debug(ctx, "indexed student", "student_id", student.ID, "task_uid", task.TaskUID)
	return nil
}

func (s *meiliStudentIndex) Search(ctx context.Context, coachID uuid.UUID, query string) ([]uuid.UUID, error) {
	raw, err := s.client.Index(studentsIndex).SearchRaw(query, &meilisearch.SearchRequest{
		Filter: fmt.Sprintf("coach_id = %q", coachID.String()),
		Limit:  100,
	})
	if err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return decodeHits(*raw, coachID)
}

// decodeHits extracts ids from a raw search response, dropping hits that
// belong to another coach.
func decodeHits(raw []byte, coachID uuid.UUID) ([]uuid.UUID, error) {
	var resp struct {
		Hits []meiliStudentDoc `json:"hits"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		if hit.CoachID != coachID.String() {
			continue
		}
		id, err := uuid.Parse(hit.ID)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
