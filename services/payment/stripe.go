package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
)

// StripeGateway maps orders onto PaymentIntents. The order id is the intent id.
// stripe.Key is set once at startup.
type StripeGateway struct{}

func NewStripeGateway() *StripeGateway {
	return &StripeGateway{}
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) PublicKey() string { return "" }

func (g *StripeGateway) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	if amountMinor <= 0 {
		return "", fmt.Errorf("order amount must be positive, got %d", amountMinor)
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(strings.ToLower(currency)),
	}
	params.Context = ctx
	params.AddMetadata("bookingId", receipt)
	params.SetIdempotencyKey("order-" + receipt)

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe payment intent create failed: %w", err)
	}
	return pi.ID, nil
}

// VerifyPayment retrieves the intent server-side. Client-supplied signatures
// carry no weight with Stripe.
func (g *StripeGateway) VerifyPayment(ctx context.Context, orderID, paymentID, _ string) (bool, error) {
	id := paymentID
	if id == "" {
		id = orderID
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx
	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return false, fmt.Errorf("stripe payment intent lookup failed: %w", err)
	}
	return pi.ID == orderID && pi.Status == stripe.PaymentIntentStatusSucceeded, nil
}

// ParseSucceededIntent verifies a webhook delivery and returns the intent when
// the event is payment_intent.succeeded. Other event types yield nil.
func ParseSucceededIntent(payload []byte, signatureHeader, secret string) (*stripe.PaymentIntent, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("stripe webhook signature check failed: %w", err)
	}
	if event.Type != stripe.EventTypePaymentIntentSucceeded {
		return nil, nil
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("failed to decode payment intent from webhook: %w", err)
	}
	return &pi, nil
}
