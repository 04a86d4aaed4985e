package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"homeservice/config"
	"homeservice/models"
	"homeservice/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setSecret(t *testing.T) {
	t.Helper()
	prev := config.AppConfig.JWTSecret
	config.AppConfig.JWTSecret = "middleware-secret"
	t.Cleanup(func() { config.AppConfig.JWTSecret = prev })
}

func protectedRouter(guards ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{JWTAuthMiddleware()}, guards...)
	handlers = append(handlers, func(c *gin.Context) {
		id := Identity(c)
		c.JSON(http.StatusOK, gin.H{"userID": id.UserID, "role": id.Role})
	})
	r.GET("/me", handlers...)
	return r
}

func call(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware_SetsIdentity(t *testing.T) {
	setSecret(t)
	token, err := utils.GenerateToken("user-1", "customer", time.Hour)
	require.NoError(t, err)

	w := call(protectedRouter(), token)
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body["userID"])
	assert.Equal(t, "customer", body["role"])
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	setSecret(t)
	expired, err := utils.GenerateToken("user-1", "customer", -time.Minute)
	require.NoError(t, err)
	badRole, err := utils.GenerateToken("user-1", "superuser", time.Hour)
	require.NoError(t, err)

	w := call(protectedRouter(), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(protectedRouter(), "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(protectedRouter(), expired)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Session expired")

	w = call(protectedRouter(), badRole)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	setSecret(t)
	router := protectedRouter(RequireRole(models.RoleProvider))

	customer, _ := utils.GenerateToken("c", "customer", time.Hour)
	provider, _ := utils.GenerateToken("p", "provider", time.Hour)
	admin, _ := utils.GenerateToken("a", "admin", time.Hour)

	assert.Equal(t, http.StatusForbidden, call(router, customer).Code)
	assert.Equal(t, http.StatusOK, call(router, provider).Code)
	assert.Equal(t, http.StatusOK, call(router, admin).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(2))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Real-IP", "198.51.100.1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimiterStore_Sweep(t *testing.T) {
	store := newRateLimiterStore(10)
	now := time.Now()
	store.getLimiter("a", now.Add(-time.Hour))
	store.getLimiter("b", now)

	store.sweep(now, limiterIdleTTL)
	assert.NotContains(t, store.visitors, "a")
	assert.Contains(t, store.visitors, "b")
}

func TestOptionalAuth(t *testing.T) {
	setSecret(t)
	r := gin.New()
	r.GET("/me", OptionalAuth(), func(c *gin.Context) {
		id := Identity(c)
		c.JSON(http.StatusOK, gin.H{"userID": id.UserID, "role": id.Role})
	})

	anon := call(r, "")
	require.Equal(t, http.StatusOK, anon.Code)
	assert.JSONEq(t, `{"userID":"","role":""}`, anon.Body.String())

	garbage := call(r, "not-a-token")
	require.Equal(t, http.StatusOK, garbage.Code)
	assert.JSONEq(t, `{"userID":"","role":""}`, garbage.Body.String())

	token, err := utils.GenerateToken("admin-1", "admin", time.Hour)
	require.NoError(t, err)
	authed := call(r, token)
	require.Equal(t, http.StatusOK, authed.Code)
	assert.JSONEq(t, `{"userID":"admin-1","role":"admin"}`, authed.Body.String())
}
