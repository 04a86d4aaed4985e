package bookingRepo

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

// BookingRepository persists bookings. Every status change is a conditional
// update on the expected current status, so concurrent callers cannot apply
// the same transition twice.
type BookingRepository interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	GetByPaymentOrder(ctx context.Context, orderID string) (*models.Booking, error)
	ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error)
	ListByProvider(ctx context.Context, providerID string) ([]models.Booking, error)
	AttachPaymentOrder(ctx context.Context, id string, details models.PaymentDetails) (bool, error)
	Confirm(ctx context.Context, id string, c Confirmation) (bool, error)
	Transition(ctx context.Context, id string, from, to models.BookingStatus, reason string, at time.Time) (bool, error)
	AssignProvider(ctx context.Context, id, providerID string) error
	ExpirePending(ctx context.Context, now time.Time) (int64, error)
	RecordLatePayment(ctx context.Context, id, paymentID string, at time.Time) (bool, error)
}

// Confirmation carries what the pending → confirmed transition writes.
type Confirmation struct {
	Method        models.PaymentMethod
	PaymentStatus models.PaymentStatus
	PaymentID     string
	At            time.Time
}

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

func NewMongoBookingRepo(db *mongo.Database) *MongoBookingRepo {
	return &MongoBookingRepo{coll: db.Collection("bookings")}
}

// EnsureIndexes creates indexes for fields frequently used in queries.
func (r *MongoBookingRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := database.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "customerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "providerId", Value: 1}, {Key: "date", Value: 1}}},
		{Keys: bson.D{{Key: "payment.orderId", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expiresAt", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to create booking: %w", database.Translate(err))
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"id": id})
}

func (r *MongoBookingRepo) GetByPaymentOrder(ctx context.Context, orderID string) (*models.Booking, error) {
	return r.findOne(ctx, bson.M{"payment.orderId": orderID})
}

func (r *MongoBookingRepo) findOne(ctx context.Context, filter bson.M) (*models.Booking, error) {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var b models.Booking
	if err := r.coll.FindOne(ctx, filter).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to fetch booking: %w", database.Translate(err))
	}
	return &b, nil
}

func (r *MongoBookingRepo) ListByCustomer(ctx context.Context, customerID string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"customerId": customerID})
}

func (r *MongoBookingRepo) ListByProvider(ctx context.Context, providerID string) ([]models.Booking, error) {
	return r.find(ctx, bson.M{"providerId": providerID})
}

func (r *MongoBookingRepo) find(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	ctx, cancel := database.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve bookings: %w", err)
	}
	defer cursor.Close(ctx)

	bookings := []models.Booking{}
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

// AttachPaymentOrder stores the gateway order on a booking that is still pending.
func (r *MongoBookingRepo) AttachPaymentOrder(ctx context.Context, id string, details models.PaymentDetails) (bool, error) {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": models.StatusPending}
	update := bson.M{"$set": bson.M{"payment": details, "updatedAt": time.Now()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to attach payment order to booking %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

// Confirm moves a pending booking to confirmed. It reports false when the
// booking was not pending.
func (r *MongoBookingRepo) Confirm(ctx context.Context, id string, c Confirmation) (bool, error) {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"status":        models.StatusConfirmed,
		"paymentMethod": c.Method,
		"paymentStatus": c.PaymentStatus,
		"confirmedAt":   c.At,
		"updatedAt":     c.At,
	}
	if c.PaymentID != "" {
		set["payment.paymentId"] = c.PaymentID
		set["payment.paidAt"] = c.At
	}

	filter := bson.M{"id": id, "status": models.StatusPending}
	update := bson.M{"$set": set, "$unset": bson.M{"expiresAt": ""}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to confirm booking %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}

// Transition applies from → to when the booking is still in from.
func (r *MongoBookingRepo) Transition(ctx context.Context, id string, from, to models.BookingStatus, reason string, at time.Time) (bool, error) {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"status": to, "updatedAt": at}
	switch to {
	case models.StatusCompleted:
		set["completedAt"] = at
	case models.StatusCancelled:
		set["cancelledAt"] = at
		if reason != "" {
			set["cancelReason"] = reason
		}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("failed to move booking %s to %s: %w", id, to, err)
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoBookingRepo) AssignProvider(ctx context.Context, id, providerID string) error {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": bson.M{"$in": bson.A{models.StatusPending, models.StatusConfirmed}}}
	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"providerId": providerID, "updatedAt": time.Now()}})
	if err != nil {
		return fmt.Errorf("failed to assign provider to booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("open booking %s: %w", id, database.ErrNotFound)
	}
	return nil
}

// ExpirePending cancels online bookings whose payment window has closed.
func (r *MongoBookingRepo) ExpirePending(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := database.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	filter := bson.M{
		"status":        models.StatusPending,
		"paymentMethod": models.PaymentOnline,
		"expiresAt":     bson.M{"$lte": now},
	}
	update := bson.M{"$set": bson.M{
		"status":       models.StatusCancelled,
		"cancelReason": "payment_timeout",
		"cancelledAt":  now,
		"updatedAt":    now,
	}}
	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to expire pending bookings: %w", err)
	}
	return res.ModifiedCount, nil
}

// RecordLatePayment stores a payment captured after the booking was
// cancelled and flags it for refund. The booking stays cancelled, and a
// booking already flagged is left alone.
func (r *MongoBookingRepo) RecordLatePayment(ctx context.Context, id, paymentID string, at time.Time) (bool, error) {
	ctx, cancel := database.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"id":            id,
		"status":        models.StatusCancelled,
		"paymentStatus": bson.M{"$ne": models.PaymentRefundDue},
	}
	update := bson.M{"$set": bson.M{
		"paymentStatus":     models.PaymentRefundDue,
		"payment.paymentId": paymentID,
		"payment.paidAt":    at,
		"updatedAt":         at,
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to record late payment for booking %s: %w", id, err)
	}
	return res.MatchedCount > 0, nil
}
