package mongo

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const workoutCollectionName = "workouts"

// mongoWorkoutRepository implements repository.WorkoutRepository.
// Blocks are embedded in the workout document, so every write is a
// single-document (atomic) operation.
type mongoWorkoutRepository struct {
	collection *mongo.Collection
	accounts   *mongoAccountRepository
	categories *mongoCategoryRepository
}

// NewMongoWorkoutRepository creates a new Workout repository.
func NewMongoWorkoutRepository(db *mongo.Database) repository.WorkoutRepository {
	return &mongoWorkoutRepository{
		collection: db.Collection(workoutCollectionName),
		accounts:   &mongoAccountRepository{collection: db.Collection(accountCollectionName)},
		categories: &mongoCategoryRepository{collection: db.Collection(categoryCollectionName)},
	}
}

var newestFirst = bson.D{{Key: "scheduledAt", Value: -1}, {Key: "createdAt", Value: -1}}

// Create inserts a new workout.
func (r *mongoWorkoutRepository) Create(ctx context.Context, w *domain.Workout) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	if w.Status == "" {
		w.Status = domain.WorkoutPending
	}
	for i := range w.Blocks {
		if w.Blocks[i].ID == uuid.Nil {
			w.Blocks[i].ID = uuid.New()
		}
	}

	_, err := r.collection.InsertOne(ctx, newWorkoutDoc(w))
	return err
}

func (r *mongoWorkoutRepository) GetForCoach(ctx context.Context, id, coachID uuid.UUID) (*domain.Workout, error) {
	return r.findOne(ctx, bson.M{"_id": id.String(), "coachId": coachID.String()}, nil)
}

func (r *mongoWorkoutRepository) GetForStudent(ctx context.Context, id, studentID uuid.UUID) (*domain.Workout, error) {
	return r.findOne(ctx, bson.M{"_id": id.String(), "studentId": studentID.String()}, nil)
}

func (r *mongoWorkoutRepository) LatestForStudentBetween(ctx context.Context, studentID uuid.UUID, from, to time.Time) (*domain.Workout, error) {
	filter := bson.M{
		"studentId":   studentID.String(),
		"scheduledAt": bson.M{"$gte": from, "$lt": to},
	}
	return r.findOne(ctx, filter, options.FindOne().SetSort(newestFirst))
}

func (r *mongoWorkoutRepository) ListForCoachBetween(ctx context.Context, coachID uuid.UUID, from, to time.Time) ([]domain.Workout, error) {
	return r.find(ctx, bson.M{
		"coachId":     coachID.String(),
		"scheduledAt": bson.M{"$gte": from, "$lt": to},
	})
}

func (r *mongoWorkoutRepository) ListForCoach(ctx context.Context, coachID uuid.UUID) ([]domain.Workout, error) {
	return r.find(ctx, bson.M{"coachId": coachID.String()})
}

func (r *mongoWorkoutRepository) ListForStudent(ctx context.Context, studentID uuid.UUID) ([]domain.Workout, error) {
	return r.find(ctx, bson.M{"studentId": studentID.String()})
}

func (r *mongoWorkoutRepository) Complete(ctx context.Context, id, studentID uuid.UUID, feedback *string, completedAt time.Time) error {
	filter := bson.M{"_id": id.String(), "studentId": studentID.String(), "status": domain.WorkoutPending}
	set := bson.M{"status": domain.WorkoutCompleted, "completedAt": completedAt, "updatedAt": completedAt}
	if feedback != nil {
		set["feedback"] = *feedback
	}
	return r.conditionalUpdate(ctx, filter, bson.M{"$set": set})
}

func (r *mongoWorkoutRepository) UpdatePending(ctx context.Context, w *domain.Workout) error {
	w.UpdatedAt = time.Now().UTC()
	filter := bson.M{"_id": w.ID.String(), "coachId": w.CoachID.String(), "status": domain.WorkoutPending}
	update := bson.M{"$set": bson.M{
		"title":       w.Title,
		"description": w.Description,
		"videoRef":    w.VideoRef,
		"scheduledAt": w.ScheduledAt,
		"updatedAt":   w.UpdatedAt,
	}}
	return r.conditionalUpdate(ctx, filter, update)
}

func (r *mongoWorkoutRepository) ReplaceBlocks(ctx context.Context, workoutID uuid.UUID, blocks []domain.Block) error {
	for i := range blocks {
		if blocks[i].ID == uuid.Nil {
			blocks[i].ID = uuid.New()
		}
	}
	update := bson.M{"$set": bson.M{"blocks": newBlockDocs(blocks), "updatedAt": time.Now().UTC()}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": workoutID.String()}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoWorkoutRepository) DeletePending(ctx context.Context, id, coachID uuid.UUID) error {
	filter := bson.M{"_id": id.String(), "coachId": coachID.String(), "status": domain.WorkoutPending}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrConflict
	}
	return nil
}

func (r *mongoWorkoutRepository) conditionalUpdate(ctx context.Context, filter, update bson.M) error {
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrConflict
	}
	return nil
}

func (r *mongoWorkoutRepository) findOne(ctx context.Context, filter bson.M, opts *options.FindOneOptions) (*domain.Workout, error) {
	if opts == nil {
		opts = options.FindOne()
	}
	var doc workoutDoc
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	workouts, err := r.hydrate(ctx, []workoutDoc{doc})
	if err != nil {
		return nil, err
	}
	return &workouts[0], nil
}

func (r *mongoWorkoutRepository) find(ctx context.Context, filter bson.M) ([]domain.Workout, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []workoutDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return r.hydrate(ctx, docs)
}

// hydrate converts documents and fills coach/student and category names.
func (r *mongoWorkoutRepository) hydrate(ctx context.Context, docs []workoutDoc) ([]domain.Workout, error) {
	workouts := []domain.Workout{}
	if len(docs) == 0 {
		return workouts, nil
	}

	var accountIDs, categoryIDs []string
	for _, d := range docs {
		accountIDs = append(accountIDs, d.CoachID, d.StudentID)
		for _, b := range d.Blocks {
			categoryIDs = append(categoryIDs, b.CategoryID)
		}
	}
	people, err := r.accounts.namesByID(ctx, accountIDs)
	if err != nil {
		return nil, err
	}
	categories, err := r.categories.namesByID(ctx, categoryIDs)
	if err != nil {
		return nil, err
	}

	for _, d := range docs {
		w, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		w.CoachName = people[d.CoachID]
		w.StudentName = people[d.StudentID]
		for i := range w.Blocks {
			w.Blocks[i].CategoryName = categories[w.Blocks[i].CategoryID.String()]
		}
		slices.SortStableFunc(w.Blocks, func(a, b domain.Block) int { return a.Order - b.Order })
		workouts = append(workouts, *w)
	}
	return workouts, nil
}

// EnsureWorkoutIndexes creates necessary indexes for the workouts collection.
func EnsureWorkoutIndexes(ctx context.Context, collection *mongo.Collection) error {
	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "studentId", Value: 1}, {Key: "scheduledAt", Value: -1}}},
		{Keys: bson.D{{Key: "coachId", Value: 1}, {Key: "scheduledAt", Value: -1}}},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
