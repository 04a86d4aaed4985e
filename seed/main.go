// Command seed loads a demo catalog, a few coupons and an admin account.
package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"homeservice/config"
	"homeservice/database"
	couponRepo "homeservice/database/repository/coupon"
	serviceRepo "homeservice/database/repository/service"
	userRepo "homeservice/database/repository/user"
	"homeservice/models"
	"homeservice/utils"

	"github.com/google/uuid"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type demoService struct {
	title, category, description string
	price                        int64
	minutes                      int
}

var demoServices = []demoService{
	{"AC service and repair", "appliance", "Filter cleaning, gas top-up check and cooling test", 599, 60},
	{"Washing machine repair", "appliance", "Diagnosis and repair of front and top load machines", 449, 60},
	{"Full home deep cleaning", "cleaning", "Kitchen, bathrooms, floors and windows", 2999, 240},
	{"Bathroom cleaning", "cleaning", "Descaling, tiles and fittings", 499, 60},
	{"Sofa shampooing", "cleaning", "Per seat foam wash and vacuum", 299, 45},
	{"Tap and mixer repair", "plumbing", "Leak fixing and cartridge replacement", 199, 30},
	{"Switchboard repair", "electrical", "Switch, socket and MCB replacement", 149, 30},
	{"Men's haircut at home", "salon", "Haircut with beard trim", 349, 45},
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	database.InitDB()
	db := database.Database()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Clear existing demo data.
	for _, name := range []string{"services", "coupons"} {
		if _, err := db.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			logger.Fatal("Failed to clear collection", zap.String("collection", name), zap.Error(err))
		}
	}

	services := serviceRepo.NewMongoServiceRepo(db)
	coupons := couponRepo.NewMongoCouponRepo(db)
	users := userRepo.NewMongoUserRepo(db)
	for _, ensure := range []func(context.Context) error{services.EnsureIndexes, coupons.EnsureIndexes, users.EnsureIndexes} {
		if err := ensure(ctx); err != nil {
			logger.Fatal("Failed to create indexes", zap.Error(err))
		}
	}

	now := time.Now().UTC()
	for _, d := range demoServices {
		svc := &models.Service{
			ID:              uuid.New().String(),
			Title:           d.title,
			Description:     d.description,
			Category:        d.category,
			BasePrice:       models.MoneyFromInt(d.price),
			DurationMinutes: d.minutes,
			IsActive:        true,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := services.Create(ctx, svc); err != nil {
			logger.Fatal("Failed to insert service", zap.String("title", d.title), zap.Error(err))
		}
	}
	logger.Info("Seeded services", zap.Int("count", len(demoServices)))

	cap100 := models.MoneyFromInt(100)
	demoCoupons := []models.Coupon{
		{Code: "SAVE10", Description: "10% off, up to 100", DiscountType: models.DiscountPercentage,
			Value: models.MoneyFromInt(10), MaxDiscount: &cap100, MinBookingValue: models.MoneyFromInt(500),
			ExpiryDate: now.AddDate(0, 3, 0)},
		{Code: "FLAT50", Description: "50 off any booking above 300", DiscountType: models.DiscountFixed,
			Value: models.MoneyFromInt(50), MinBookingValue: models.MoneyFromInt(300),
			ExpiryDate: now.AddDate(0, 1, 0), UsageLimit: 100},
		{Code: "WELCOME", Description: "First booking offer", DiscountType: models.DiscountPercentage,
			Value: models.MoneyFromInt(20), MinBookingValue: models.MoneyFromInt(0),
			ExpiryDate: now.AddDate(1, 0, 0), UsageLimit: 1000},
	}
	for i := range demoCoupons {
		c := &demoCoupons[i]
		c.ID = uuid.New().String()
		c.IsActive = true
		c.UsedBy = []string{}
		c.CreatedAt = now
		c.UpdatedAt = now
		if err := coupons.Create(ctx, c); err != nil {
			logger.Fatal("Failed to insert coupon", zap.String("code", c.Code), zap.Error(err))
		}
	}
	logger.Info("Seeded coupons", zap.Int("count", len(demoCoupons)))

	seedAdmin(ctx, users, logger, now)
}

// seedAdmin creates the admin account from SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD when both are set.
func seedAdmin(ctx context.Context, users userRepo.UserRepository, logger *zap.Logger, now time.Time) {
	email := strings.ToLower(strings.TrimSpace(viper.GetString("SEED_ADMIN_EMAIL")))
	password := viper.GetString("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		logger.Info("SEED_ADMIN_EMAIL or SEED_ADMIN_PASSWORD not set; skipping admin account")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Fatal("Failed to hash admin password", zap.Error(err))
	}
	admin := &models.User{
		ID:           uuid.New().String(),
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			logger.Info("Admin account already exists", zap.String("email", email))
			return
		}
		logger.Fatal("Failed to create admin account", zap.Error(err))
	}
	logger.Info("Seeded admin account", zap.String("email", email))
}
