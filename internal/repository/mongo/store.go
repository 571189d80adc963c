// Package mongo is the MongoDB storage backend.
package mongo

import (
	"context"
	"fmt"

	"github.com/AndersonGC/dryfit/internal/repository"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store implements repository.Store on a MongoDB database.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	repos  repository.Repositories
}

var _ repository.Store = (*Store)(nil)

// Open connects to uri and uses database name.
func Open(ctx context.Context, uri, name string) (*Store, error) {
	client, err := ConnectDB(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	return NewStore(client, name), nil
}

func NewStore(client *mongo.Client, name string) *Store {
	db := client.Database(name)
	return &Store{
		client: client,
		db:     db,
		repos: repository.Repositories{
			Accounts:      NewMongoAccountRepository(db),
			Invites:       NewMongoInviteRepository(db),
			Verifications: NewMongoVerificationRepository(db),
			Workouts:      NewMongoWorkoutRepository(db),
			Categories:    NewMongoCategoryRepository(db),
		},
	}
}

// Repos are safe to share: a call joins a transaction when it receives
// the session context handed out by WithTx.
func (s *Store) Repos() repository.Repositories {
	return s.repos
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	// fn runs exactly once; a TransientTransactionError is returned to the
	// caller like any other failure.
	if err := session.StartTransaction(); err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	sc := mongo.NewSessionContext(ctx, session)
	if err := fn(sc, s.repos); err != nil {
		_ = session.AbortTransaction(context.WithoutCancel(ctx))
		return err
	}
	if err := session.CommitTransaction(sc); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// EnsureIndexes creates the indexes every collection relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context, *mongo.Collection) error
	}{
		{accountCollectionName, EnsureAccountIndexes},
		{inviteCollectionName, EnsureInviteIndexes},
		{categoryCollectionName, EnsureCategoryIndexes},
		{workoutCollectionName, EnsureWorkoutIndexes},
	}
	for _, step := range steps {
		if err := step.fn(ctx, s.db.Collection(step.name)); err != nil {
			return fmt.Errorf("ensure %s indexes: %w", step.name, err)
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *Store) Close(ctx context.Context) error {
	return DisconnectDB(ctx, s.client)
}
