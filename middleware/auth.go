package middleware

import (
	"errors"
	"strings"

	"homeservice/models"
	"homeservice/utils"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID = "userID"
	ctxRole   = "role"
)

// JWTAuthMiddleware requires a valid bearer token and puts userID and role in the context.
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.RespondError(c, utils.NewUnauthorizedError("Missing or invalid Authorization header"))
			return
		}
		if err := authenticate(c, authHeader); err != nil {
			utils.RespondError(c, err)
			return
		}
		c.Next()
	}
}

// OptionalAuth sets the caller when a valid token is sent and stays anonymous otherwise.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			_ = authenticate(c, authHeader)
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, authHeader string) error {
	tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))

	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		if errors.Is(err, utils.ErrTokenExpired) {
			return utils.NewSessionExpiredError()
		}
		return utils.NewUnauthorizedError("Invalid token")
	}
	role := models.Role(claims.Role)
	if !role.IsValid() {
		return utils.NewUnauthorizedError("Invalid token")
	}

	c.Set(ctxUserID, claims.Subject)
	c.Set(ctxRole, string(role))
	return nil
}

// RequireRole lets through only the listed roles. Admins always pass.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := Identity(c)
		if id.IsAdmin() {
			c.Next()
			return
		}
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		utils.RespondError(c, utils.NewForbiddenError("You do not have permission to perform this action"))
	}
}

// Identity reads the caller set by JWTAuthMiddleware.
func Identity(c *gin.Context) models.Identity {
	return models.Identity{
		UserID: c.GetString(ctxUserID),
		Role:   models.Role(c.GetString(ctxRole)),
	}
}
