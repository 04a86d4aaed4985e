package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"homeservice/models"
	"homeservice/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.Logger = zap.NewNop()
}

var customer = models.Identity{UserID: "cust-1", Role: models.RoleCustomer}

// asCaller stands in for JWTAuthMiddleware.
func asCaller(id models.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", id.UserID)
		c.Set("role", string(id.Role))
		c.Next()
	}
}

func send(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		switch v := body.(type) {
		case string:
			buf.WriteString(v)
		default:
			_ = json.NewEncoder(&buf).Encode(v)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func sendWithHeader(r http.Handler, method, path, body, key, value string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set(key, value)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var body utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Slots(ctx context.Context, date string) ([]models.TimeSlot, error) {
	args := m.Called(ctx, date)
	slots, _ := args.Get(0).([]models.TimeSlot)
	return slots, args.Error(1)
}

func (m *MockBookingService) Quote(ctx context.Context, req models.QuoteRequest) (*models.PriceQuote, error) {
	args := m.Called(ctx, req)
	q, _ := args.Get(0).(*models.PriceQuote)
	return q, args.Error(1)
}

func (m *MockBookingService) Create(ctx context.Context, identity models.Identity, req models.CreateBookingRequest) (*models.Booking, error) {
	args := m.Called(ctx, identity, req)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *MockBookingService) Get(ctx context.Context, identity models.Identity, bookingID string) (*models.Booking, error) {
	args := m.Called(ctx, identity, bookingID)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *MockBookingService) ListMine(ctx context.Context, identity models.Identity) ([]models.Booking, error) {
	args := m.Called(ctx, identity)
	list, _ := args.Get(0).([]models.Booking)
	return list, args.Error(1)
}

func (m *MockBookingService) ListForProvider(ctx context.Context, identity models.Identity, providerID string) ([]models.Booking, error) {
	args := m.Called(ctx, identity, providerID)
	list, _ := args.Get(0).([]models.Booking)
	return list, args.Error(1)
}

func (m *MockBookingService) Cancel(ctx context.Context, identity models.Identity, bookingID, reason string) (*models.Booking, error) {
	args := m.Called(ctx, identity, bookingID, reason)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *MockBookingService) Complete(ctx context.Context, identity models.Identity, bookingID string) (*models.Booking, error) {
	args := m.Called(ctx, identity, bookingID)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *MockBookingService) AssignProvider(ctx context.Context, identity models.Identity, bookingID, providerID string) (*models.Booking, error) {
	args := m.Called(ctx, identity, bookingID, providerID)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *MockBookingService) ExpireStalePending(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) InitiateOnline(ctx context.Context, identity models.Identity, bookingID string) (*models.PaymentOrder, error) {
	args := m.Called(ctx, identity, bookingID)
	o, _ := args.Get(0).(*models.PaymentOrder)
	return o, args.Error(1)
}

func (m *MockPaymentService) VerifyOnline(ctx context.Context, identity models.Identity, bookingID string, req models.VerifyPaymentRequest) (*models.Booking, error) {
	args := m.Called(ctx, identity, bookingID, req)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *MockPaymentService) ConfirmCash(ctx context.Context, identity models.Identity, bookingID string) (*models.Booking, error) {
	args := m.Called(ctx, identity, bookingID)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *MockPaymentService) HandleStripeWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	return m.Called(ctx, payload, sigHeader).Error(0)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) List(ctx context.Context, q models.ServiceQuery) ([]models.Service, error) {
	args := m.Called(ctx, q)
	list, _ := args.Get(0).([]models.Service)
	return list, args.Error(1)
}

func (m *MockCatalogService) Get(ctx context.Context, identity models.Identity, id string) (*models.Service, error) {
	args := m.Called(ctx, identity, id)
	s, _ := args.Get(0).(*models.Service)
	return s, args.Error(1)
}

func (m *MockCatalogService) Create(ctx context.Context, input models.ServiceInput) (*models.Service, error) {
	args := m.Called(ctx, input)
	s, _ := args.Get(0).(*models.Service)
	return s, args.Error(1)
}

func (m *MockCatalogService) Update(ctx context.Context, id string, input models.ServiceInput) (*models.Service, error) {
	args := m.Called(ctx, id, input)
	s, _ := args.Get(0).(*models.Service)
	return s, args.Error(1)
}

func (m *MockCatalogService) SetActive(ctx context.Context, id string, active bool) (*models.Service, error) {
	args := m.Called(ctx, id, active)
	s, _ := args.Get(0).(*models.Service)
	return s, args.Error(1)
}
