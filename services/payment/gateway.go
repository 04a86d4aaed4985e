package payment

import (
	"context"
	"fmt"
	"strings"

	"homeservice/config"
)

// Gateway is a payment provider that sizes an order up front and later
// proves that the customer paid it.
type Gateway interface {
	Name() string
	// PublicKey is the client-side key the checkout widget needs, if any.
	PublicKey() string
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error)
	VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (bool, error)
}

// NewGatewayFromConfig picks the gateway named by PAYMENT_GATEWAY.
func NewGatewayFromConfig(cfg config.Config) (Gateway, error) {
	switch strings.ToLower(cfg.PaymentGateway) {
	case "", "razorpay":
		if cfg.RazorpayKeyID == "" || cfg.RazorpayKeySecret == "" {
			return nil, fmt.Errorf("razorpay gateway selected but RAZORPAY_KEY_ID or RAZORPAY_KEY_SECRET is empty")
		}
		return NewRazorpayGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret), nil
	case "stripe":
		if cfg.StripeKey == "" {
			return nil, fmt.Errorf("stripe gateway selected but STRIPE_SECRET_KEY is empty")
		}
		return NewStripeGateway(), nil
	default:
		return nil, fmt.Errorf("unknown payment gateway %q", cfg.PaymentGateway)
	}
}
