package mongo

import (
	"context"
	"errors"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const verificationCollectionName = "email_verifications"

// mongoVerificationRepository keys verifications by e-mail (_id), which
// gives the one-record-per-address invariant for free.
type mongoVerificationRepository struct {
	collection *mongo.Collection
}

func NewMongoVerificationRepository(db *mongo.Database) repository.VerificationRepository {
	return &mongoVerificationRepository{collection: db.Collection(verificationCollectionName)}
}

func (r *mongoVerificationRepository) Upsert(ctx context.Context, v *domain.EmailVerification) error {
	update := bson.M{"$set": bson.M{"code": v.Code, "expiresAt": v.ExpiresAt}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": v.Email}, update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoVerificationRepository) Get(ctx context.Context, email string) (*domain.EmailVerification, error) {
	var doc verificationDoc
	if err := r.collection.FindOne(ctx, bson.M{"_id": email}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &domain.EmailVerification{Email: doc.Email, Code: doc.Code, ExpiresAt: doc.ExpiresAt.UTC()}, nil
}

func (r *mongoVerificationRepository) Delete(ctx context.Context, email, code string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": email, "code": code})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
