package mongo

import (
	"context"
	"time"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const categoryCollectionName = "workout_categories"

type mongoCategoryRepository struct {
	collection *mongo.Collection
}

func NewMongoCategoryRepository(db *mongo.Database) repository.CategoryRepository {
	return &mongoCategoryRepository{collection: db.Collection(categoryCollectionName)}
}

func (r *mongoCategoryRepository) List(ctx context.Context) ([]domain.WorkoutCategory, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoCategoryRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.WorkoutCategory, error) {
	if len(ids) == 0 {
		return []domain.WorkoutCategory{}, nil
	}
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": strIDs}})
}

// EnsureByName upserts on name; existing categories are left untouched.
func (r *mongoCategoryRepository) EnsureByName(ctx context.Context, name string) error {
	update := bson.M{"$setOnInsert": bson.M{"_id": uuid.NewString(), "createdAt": time.Now().UTC()}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"name": name}, update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoCategoryRepository) find(ctx context.Context, filter bson.M) ([]domain.WorkoutCategory, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []categoryDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	categories := make([]domain.WorkoutCategory, 0, len(docs))
	for _, d := range docs {
		c, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, nil
}

// namesByID resolves category names for block hydration.
func (r *mongoCategoryRepository) namesByID(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	categories, err := r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	for _, c := range categories {
		names[c.ID.String()] = c.Name
	}
	return names, nil
}

// EnsureCategoryIndexes creates necessary indexes for the categories collection.
func EnsureCategoryIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
