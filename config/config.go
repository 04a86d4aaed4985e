package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	JWTTTL            string `mapstructure:"JWT_TTL"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Business rules.
	BusinessTimezone  string `mapstructure:"BUSINESS_TIMEZONE"`
	Currency          string `mapstructure:"CURRENCY"`
	PendingPaymentTTL string `mapstructure:"PENDING_PAYMENT_TTL"`
	SupportContact    string `mapstructure:"SUPPORT_CONTACT"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Payment gateway: "razorpay" or "stripe".
	PaymentGateway    string `mapstructure:"PAYMENT_GATEWAY"`
	RazorpayKeyID     string `mapstructure:"RAZORPAY_KEY_ID"`
	RazorpayKeySecret string `mapstructure:"RAZORPAY_KEY_SECRET"`
	StripeKey         string `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookKey  string `mapstructure:"STRIPE_WEBHOOK_SECRET"`

	// Firebase service account used for push notifications. Empty disables push.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "homeservice")
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("JWT_TTL", "72h")
	viper.SetDefault("BUSINESS_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("CURRENCY", "INR")
	viper.SetDefault("PENDING_PAYMENT_TTL", "30m")
	viper.SetDefault("SUPPORT_CONTACT", "support@homeservice.example")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("PAYMENT_GATEWAY", "razorpay")
	viper.SetDefault("RAZORPAY_KEY_ID", "")
	viper.SetDefault("RAZORPAY_KEY_SECRET", "")
	viper.SetDefault("STRIPE_SECRET_KEY", "")
	viper.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location returns the business timezone, falling back to UTC when unset or unknown.
func Location() *time.Location {
	if AppConfig.BusinessTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(AppConfig.BusinessTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// PendingTTL is how long an online booking may wait for payment before the sweep cancels it.
func PendingTTL() time.Duration {
	return parseDuration(AppConfig.PendingPaymentTTL, 30*time.Minute)
}

// TokenTTL is the lifetime of issued access tokens.
func TokenTTL() time.Duration {
	return parseDuration(AppConfig.JWTTTL, 72*time.Hour)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
