package payment

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
	razorpayutils "github.com/razorpay/razorpay-go/utils"
)

// RazorpayGateway creates Razorpay orders and checks checkout signatures locally.
type RazorpayGateway struct {
	client *razorpay.Client
	keyID  string
	secret string
}

func NewRazorpayGateway(keyID, secret string) *RazorpayGateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(keyID, secret),
		keyID:  keyID,
		secret: secret,
	}
}

func (g *RazorpayGateway) Name() string { return "razorpay" }

func (g *RazorpayGateway) PublicKey() string { return g.keyID }

func (g *RazorpayGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	if amountMinor <= 0 {
		return "", fmt.Errorf("order amount must be positive, got %d", amountMinor)
	}
	data := map[string]interface{}{
		"amount":          amountMinor,
		"currency":        currency,
		"receipt":         receipt,
		"payment_capture": 1,
	}
	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return "", fmt.Errorf("razorpay order create failed: %w", err)
	}
	id, ok := body["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("razorpay order create returned no id")
	}
	return id, nil
}

// VerifyPayment checks the checkout signature, HMAC-SHA256 of "orderID|paymentID".
func (g *RazorpayGateway) VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (bool, error) {
	if orderID == "" || paymentID == "" || signature == "" {
		return false, nil
	}
	return VerifySignature(orderID, paymentID, signature, g.secret), nil
}

// VerifySignature checks a checkout signature against the key secret.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	if signature == "" {
		return false
	}
	params := map[string]interface{}{
		"razorpay_order_id":   orderID,
		"razorpay_payment_id": paymentID,
	}
	return razorpayutils.VerifyPaymentSignature(params, signature, secret)
}
