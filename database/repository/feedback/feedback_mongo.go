package feedbackRepo

import (
	"context"
	"fmt"
	"time"

	"homeservice/database"
	"homeservice/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// FeedbackRepository persists feedback. At most one record exists per booking.
type FeedbackRepository interface {
	Create(ctx context.Context, f *models.Feedback) error
	GetByID(ctx context.Context, id string) (*models.Feedback, error)
	GetByBookingID(ctx context.Context, bookingID string) (*models.Feedback, error)
	UpdateRatings(ctx context.Context, f *models.Feedback) error
	ListByProvider(ctx context.Context, providerID string) ([]models.Feedback, error)
	ServiceRatingStats(ctx context.Context, serviceID string) (float64, int, error)
}

// MongoFeedbackRepo implements FeedbackRepository using MongoDB.
type MongoFeedbackRepo struct {
	coll *mongo.Collection
}

func NewMongoFeedbackRepo(db *mongo.Database) *MongoFeedbackRepo {
	return &MongoFeedbackRepo{coll: db.Collection("feedback")}
}

// EnsureIndexes creates indexes for fields frequently used in queries.
// The unique bookingId index backs the one-feedback-per-booking rule.
func (r *MongoFeedbackRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := database.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "bookingId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "serviceId", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create feedback indexes: %w", err)
	}
	return nil
}

// Create inserts f. A second record for the same booking fails with database.ErrDuplicate.
func (r *MongoFeedbackRepo) Create(ctx context.Context, f *models.Feedback) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, f); err != nil {
		return fmt.Errorf("failed to create feedback for booking %s: %w", f.BookingID, database.Translate(err))
	}
	return nil
}

func (r *MongoFeedbackRepo) GetByID(ctx context.Context, id string) (*models.Feedback, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoFeedbackRepo) GetByBookingID(ctx context.Context, bookingID string) (*models.Feedback, error) {
	return r.findOne(ctx, bson.M{"bookingId": bookingID})
}

func (r *MongoFeedbackRepo) findOne(ctx context.Context, filter bson.M) (*models.Feedback, error) {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var f models.Feedback
	if err := r.coll.FindOne(ctx, filter).Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to fetch feedback: %w", database.Translate(err))
	}
	return &f, nil
}

// UpdateRatings rewrites only the rating and comment fields.
func (r *MongoFeedbackRepo) UpdateRatings(ctx context.Context, f *models.Feedback) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"providerRating":  f.ProviderRating,
		"providerComment": f.ProviderComment,
		"serviceRating":   f.ServiceRating,
		"serviceComment":  f.ServiceComment,
		"isEdited":        true,
		"updatedAt":       f.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": f.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update feedback %s: %w", f.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("feedback %s: %w", f.ID, database.ErrNotFound)
	}
	return nil
}

func (r *MongoFeedbackRepo) ListByProvider(ctx context.Context, providerID string) ([]models.Feedback, error) {
	ctx, cancel := database.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"providerId": providerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve feedback for provider %s: %w", providerID, err)
	}
	defer cursor.Close(ctx)

	records := []models.Feedback{}
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode feedback: %w", err)
	}
	return records, nil
}

// ServiceRatingStats averages serviceRating over every feedback for the service.
func (r *MongoFeedbackRepo) ServiceRatingStats(ctx context.Context, serviceID string) (float64, int, error) {
	ctx, cancel := database.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"serviceId": serviceID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$serviceRating"},
			"count": bson.M{"$sum": 1},
		}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to aggregate ratings for service %s: %w", serviceID, err)
	}
	defer cursor.Close(ctx)

	var out []struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}
	if err := cursor.All(ctx, &out); err != nil {
		return 0, 0, fmt.Errorf("failed to decode rating aggregate: %w", err)
	}
	if len(out) == 0 {
		return 0, 0, nil
	}
	return out[0].Avg, out[0].Count, nil
}
