package models

// PaymentOrder is what the client needs to open the gateway checkout.
type PaymentOrder struct {
	BookingID   string `json:"bookingId"`
	Gateway     string `json:"gateway"`
	OrderID     string `json:"orderId"`
	AmountMinor int64  `json:"amountMinor"`
	Currency    string `json:"currency"`
	Amount      Money  `json:"amount"`
	PublicKey   string `json:"publicKey,omitempty"`
}

// VerifyPaymentRequest carries the gateway callback fields back to the server.
type VerifyPaymentRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	PaymentID string `json:"paymentId" binding:"required"`
	Signature string `json:"signature"`
}
