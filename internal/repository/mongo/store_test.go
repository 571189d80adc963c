package mongo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AndersonGC/dryfit/internal/domain"
	"github.com/AndersonGC/dryfit/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestStore_WithTx(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()
	verification := &domain.EmailVerification{
		Email:     "ana@dryfit.app",
		Code:      "123456",
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}

	mt.Run("commits", func(mt *mtest.T) {
		store := NewStore(mt.Client, mt.DB.Name())
		mt.AddMockResponses(
			updateResult(1),
			mtest.CreateSuccessResponse(), // commitTransaction
		)

		err := store.WithTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
			return tx.Verifications.Upsert(ctx, verification)
		})
		assert.NoError(mt, err)
	})

	mt.Run("aborts on callback error", func(mt *mtest.T) {
		store := NewStore(mt.Client, mt.DB.Name())
		mt.AddMockResponses(
			updateResult(1),
			mtest.CreateSuccessResponse(), // abortTransaction
		)

		boom := errors.New("boom")
		err := store.WithTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
			require.NoError(mt, tx.Verifications.Upsert(ctx, verification))
			return boom
		})
		assert.ErrorIs(mt, err, boom)
	})

	mt.Run("transient transaction error runs the callback once", func(mt *mtest.T) {
		store := NewStore(mt.Client, mt.DB.Name())
		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    112,
				Name:    "WriteConflict",
				Message: "write conflict",
				Labels:  []string{"TransientTransactionError"},
			}),
			mtest.CreateSuccessResponse(), // abortTransaction
			updateResult(1),
			mtest.CreateSuccessResponse(),
		)

		calls := 0
		err := store.WithTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
			calls++
			return tx.Verifications.Upsert(ctx, verification)
		})
		require.Error(mt, err)
		assert.Equal(mt, 1, calls)
	})

	mt.Run("conflict inside the transaction is returned as is", func(mt *mtest.T) {
		store := NewStore(mt.Client, mt.DB.Name())
		mt.AddMockResponses(
			updateResult(0),
			mtest.CreateSuccessResponse(), // abortTransaction
		)

		err := store.WithTx(ctx, func(ctx context.Context, tx repository.Repositories) error {
			return tx.Invites.MarkUsed(ctx, "DRFT-ABC234", uuid.New(), time.Now())
		})
		assert.ErrorIs(mt, err, repository.ErrConflict)
	})
}
