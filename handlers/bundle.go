package handlers

// HandlerBundle groups the endpoint handlers registered by routes.
type HandlerBundle struct {
	User     *UserHandler
	Catalog  *CatalogHandler
	Coupon   *CouponHandler
	Booking  *BookingHandler
	Payment  *PaymentHandler
	Feedback *FeedbackHandler
	Health   *HealthHandler
}
