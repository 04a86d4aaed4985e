package serviceRepo

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

// ServiceRepository persists the service catalog.
type ServiceRepository interface {
	Create(ctx context.Context, s *models.Service) error
	Update(ctx context.Context, s *models.Service) error
	GetByID(ctx context.Context, id string) (*models.Service, error)
	List(ctx context.Context, activeOnly bool) ([]models.Service, error)
	SetActive(ctx context.Context, id string, active bool) error
	UpdateRating(ctx context.Context, id string, average float64, count int) error
}

// MongoServiceRepo implements ServiceRepository using MongoDB.
type MongoServiceRepo struct {
	coll *mongo.Collection
}

// NewMongoServiceRepo creates a new instance of ServiceRepository using MongoDB.
func NewMongoServiceRepo(db *mongo.Database) *MongoServiceRepo {
	return &MongoServiceRepo{coll: db.Collection("services")}
}

// EnsureIndexes creates indexes for fields frequently used in queries.
func (r *MongoServiceRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := database.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "isActive", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create service indexes: %w", err)
	}
	return nil
}

func (r *MongoServiceRepo) Create(ctx context.Context, s *models.Service) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("failed to create service: %w", database.Translate(err))
	}
	return nil
}

// Update replaces the editable fields; rating aggregates are left alone.
func (r *MongoServiceRepo) Update(ctx context.Context, s *models.Service) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	s.UpdatedAt = time.Now()
	update := bson.M{"$set": bson.M{
		"title":           s.Title,
		"description":     s.Description,
		"category":        s.Category,
		"basePrice":       s.BasePrice,
		"durationMinutes": s.DurationMinutes,
		"imageUrl":        s.ImageURL,
		"isActive":        s.IsActive,
		"updatedAt":       s.UpdatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": s.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update service %s: %w", s.ID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("service %s: %w", s.ID, database.ErrNotFound)
	}
	return nil
}

func (r *MongoServiceRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.Service
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to fetch service with id %s: %w", id, database.Translate(err))
	}
	return &s, nil
}

func (r *MongoServiceRepo) List(ctx context.Context, activeOnly bool) ([]models.Service, error) {
	ctx, cancel := database.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "title", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve services: %w", err)
	}
	defer cursor.Close(ctx)

	services := []models.Service{}
	if err := cursor.All(ctx, &services); err != nil {
		return nil, fmt.Errorf("failed to decode services: %w", err)
	}
	return services, nil
}

func (r *MongoServiceRepo) SetActive(ctx context.Context, id string, active bool) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to toggle service %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("service %s: %w", id, database.ErrNotFound)
	}
	return nil
}

func (r *MongoServiceRepo) UpdateRating(ctx context.Context, id string, average float64, count int) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{
		"averageRating": average,
		"ratingCount":   count,
		"updatedAt":     time.Now(),
	}})
	if err != nil {
		return fmt.Errorf("failed to update rating for service %s: %w", id, err)
	}
	return nil
}
