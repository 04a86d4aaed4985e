package couponRepo

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

// CouponRepository provides lookup and mutation of coupons.
type CouponRepository interface {
	Create(ctx context.Context, c *models.Coupon) error
	GetByCode(ctx context.Context, code string) (*models.Coupon, error)
	List(ctx context.Context) ([]models.Coupon, error)
	ListAvailable(ctx context.Context, now time.Time) ([]models.Coupon, error)
	// MarkUsed counts bookingID against the coupon once. It reports whether
	// this call changed the counter.
	MarkUsed(ctx context.Context, code, bookingID string) (bool, error)
}

// MongoCouponRepo implements CouponRepository using MongoDB.
type MongoCouponRepo struct {
	coll *mongo.Collection
}

func NewMongoCouponRepo(db *mongo.Database) *MongoCouponRepo {
	return &MongoCouponRepo{coll: db.Collection("coupons")}
}

// EnsureIndexes creates indexes for fields frequently used in queries.
func (r *MongoCouponRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := database.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "expiryDate", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create coupon indexes: %w", err)
	}
	return nil
}

func (r *MongoCouponRepo) Create(ctx context.Context, c *models.Coupon) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.UsedBy == nil {
		c.UsedBy = []string{}
	}
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		return fmt.Errorf("failed to create coupon %s: %w", c.Code, database.Translate(err))
	}
	return nil
}

func (r *MongoCouponRepo) GetByCode(ctx context.Context, code string) (*models.Coupon, error) {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var c models.Coupon
	if err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to fetch coupon %s: %w", code, database.Translate(err))
	}
	return &c, nil
}

func (r *MongoCouponRepo) List(ctx context.Context) ([]models.Coupon, error) {
	return r.find(ctx, bson.M{})
}

// ListAvailable returns active, unexpired coupons that still have redemptions left.
func (r *MongoCouponRepo) ListAvailable(ctx context.Context, now time.Time) ([]models.Coupon, error) {
	filter := bson.M{
		"isActive":   true,
		"expiryDate": bson.M{"$gt": now},
		"$or": bson.A{
			bson.M{"usageLimit": 0},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$usedCount", "$usageLimit"}}},
		},
	}
	return r.find(ctx, filter)
}

func (r *MongoCouponRepo) find(ctx context.Context, filter bson.M) ([]models.Coupon, error) {
	ctx, cancel := database.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "expiryDate", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve coupons: %w", err)
	}
	defer cursor.Close(ctx)

	coupons := []models.Coupon{}
	if err := cursor.All(ctx, &coupons); err != nil {
		return nil, fmt.Errorf("failed to decode coupons: %w", err)
	}
	return coupons, nil
}

func (r *MongoCouponRepo) MarkUsed(ctx context.Context, code, bookingID string) (bool, error) {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// The usedBy guard makes retries for the same booking a no-op.
	filter := bson.M{"code": code, "usedBy": bson.M{"$ne": bookingID}}
	update := bson.M{
		"$inc":      bson.M{"usedCount": 1},
		"$addToSet": bson.M{"usedBy": bookingID},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to mark coupon %s used: %w", code, err)
	}
	if res.MatchedCount > 0 {
		return true, nil
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"code": code})
	if err != nil {
		return false, fmt.Errorf("failed to look up coupon %s: %w", code, err)
	}
	if n == 0 {
		return false, fmt.Errorf("coupon %s: %w", code, database.ErrNotFound)
	}
	return false, nil
}
