package couponRepo

import (
	"context"
	"errors"
	"testing"

	"homeservice/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoCouponRepo_MarkUsed(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("first call counts the booking", func(mt *mtest.T) {
		repo := NewMongoCouponRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		applied, err := repo.MarkUsed(context.Background(), "SAVE10", "b-1")
		require.NoError(t, err)
		assert.True(t, applied)
	})

	mt.Run("repeat for same booking is a no-op", func(mt *mtest.T) {
		repo := NewMongoCouponRepo(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "homeservice.coupons", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(1)}}),
		)

		applied, err := repo.MarkUsed(context.Background(), "SAVE10", "b-1")
		require.NoError(t, err)
		assert.False(t, applied)
	})

	mt.Run("unknown coupon", func(mt *mtest.T) {
		repo := NewMongoCouponRepo(mt.DB)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
			mtest.CreateCursorResponse(0, "homeservice.coupons", mtest.FirstBatch),
		)

		_, err := repo.MarkUsed(context.Background(), "NOPE", "b-1")
		assert.True(t, errors.Is(err, database.ErrNotFound))
	})
}
