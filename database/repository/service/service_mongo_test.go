package serviceRepo

import (
	"context"
	"errors"
	"testing"

	"homeservice/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoServiceRepo_GetByID(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes decimal price", func(mt *mtest.T) {
		repo := NewMongoServiceRepo(mt.DB)
		price, err := primitive.ParseDecimal128("499.50")
		require.NoError(t, err)
		mt.AddMockResponses(mtest.CreateCursorResponse(1, "homeservice.services", mtest.FirstBatch, bson.D{
			{Key: "id", Value: "svc-1"},
			{Key: "title", Value: "Bathroom cleaning"},
			{Key: "basePrice", Value: price},
			{Key: "isActive", Value: true},
		}))

		s, err := repo.GetByID(context.Background(), "svc-1")
		require.NoError(t, err)
		assert.Equal(t, "499.5", s.BasePrice.String())
		assert.True(t, s.IsActive)
	})

	mt.Run("missing", func(mt *mtest.T) {
		repo := NewMongoServiceRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "homeservice.services", mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), "nope")
		assert.True(t, errors.Is(err, database.ErrNotFound))
	})
}

func TestMongoServiceRepo_SetActive(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("unknown service", func(mt *mtest.T) {
		repo := NewMongoServiceRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		err := repo.SetActive(context.Background(), "nope", false)
		assert.True(t, errors.Is(err, database.ErrNotFound))
	})

	mt.Run("toggled", func(mt *mtest.T) {
		repo := NewMongoServiceRepo(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		require.NoError(t, repo.SetActive(context.Background(), "svc-1", false))
	})
}
