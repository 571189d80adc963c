package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const inviteCollectionName = "invite_codes"

// mongoInviteRepository implements repository.InviteCodeRepository.
// The code itself is the document _id.
type mongoInviteRepository struct {
	collection *mongo.Collection
	accounts   *mongoAccountRepository
}

func NewMongoInviteRepository(db *mongo.Database) repository.InviteCodeRepository {
	return &mongoInviteRepository{
		collection: db.Collection(inviteCollectionName),
		accounts:   &mongoAccountRepository{collection: db.Collection(accountCollectionName)},
	}
}

func (r *mongoInviteRepository) Create(ctx context.Context, invite *domain.InviteCode) error {
	if invite.CreatedAt.IsZero() {
		invite.CreatedAt = time.Now().UTC()
	}
	doc := inviteDoc{Code: invite.Code, CoachID: invite.CoachID.String(), CreatedAt: invite.CreatedAt}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *mongoInviteRepository) GetByCode(ctx context.Context, code string) (*domain.InviteCode, error) {
	var doc inviteDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": code}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	invites, err := r.withCoachNames(ctx, []inviteDoc{doc})
	if err != nil {
		return nil, err
	}
	return &invites[0], nil
}

// MarkUsed only matches a code whose usedAt is still null or missing, so
// of two racing redemptions exactly one sees MatchedCount == 1.
func (r *mongoInviteRepository) MarkUsed(ctx context.Context, code string, usedBy uuid.UUID, usedAt time.Time) error {
	filter := bson.M{"_id": code, "usedAt": nil}
	update := bson.M{"$set": bson.M{"usedAt": usedAt, "usedBy": usedBy.String()}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrConflict
	}
	return nil
}

func (r *mongoInviteRepository) LatestUnused(ctx context.Context, coachID uuid.UUID) (*domain.InviteCode, error) {
	filter := bson.M{"coachId": coachID.String(), "usedAt": nil}
	findOptions := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	var doc inviteDoc
	if err := r.collection.FindOne(ctx, filter, findOptions).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	invites, err := r.withCoachNames(ctx, []inviteDoc{doc})
	if err != nil {
		return nil, err
	}
	return &invites[0], nil
}

func (r *mongoInviteRepository) ListByCoach(ctx context.Context, coachID uuid.UUID) ([]domain.InviteCode, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"coachId": coachID.String()}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []inviteDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return r.withCoachNames(ctx, docs)
}

func (r *mongoInviteRepository) withCoachNames(ctx context.Context, docs []inviteDoc) ([]domain.InviteCode, error) {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.CoachID)
	}
	names, err := r.accounts.namesByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	invites := make([]domain.InviteCode, 0, len(docs))
	for _, d := range docs {
		inv, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		inv.CoachName = names[d.CoachID]
		invites = append(invites, *inv)
	}
	return invites, nil
}

// EnsureInviteIndexes creates necessary indexes for the invite_codes collection.
func EnsureInviteIndexes(ctx context.Context, collection *mongo.Collection) error {
	_, err := collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "coachId", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}
