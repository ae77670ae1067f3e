// Package middleware provides HTTP middleware components for the application.
// It includes authentication and authorization middleware for the fiber web
// framework.
package middleware

import (
	"strings"

	"walletd/internal/utils"
	"walletd/internal/utils/response"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthMiddleware handles JWT token validation and user authentication.
// It extracts the JWT token from the Authorization header, validates it,
// and adds the user claims to the request context.
type AuthMiddleware struct {
	secret string
}

func NewAuthMiddleware(secret string) *AuthMiddleware {
	return &AuthMiddleware{secret: secret}
}

// Handler validates the bearer token and stores its claims in the request
// locals.
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return response.Error(c, fiber.StatusUnauthorized, "missing authorization header")
	}

	tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
	if !found {
		return response.Error(c, fiber.StatusUnauthorized, "invalid authorization format")
	}

	claims, err := utils.ParseToken(m.secret, tokenString)
	if err != nil {
		zap.L().Debug("token rejected", zap.String("path", c.Path()), zap.Error(err))
		return response.Error(c, fiber.StatusUnauthorized, "invalid token")
	}

	c.Locals(utils.ClaimsKey, claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
// Admins pass every check.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := utils.GetUserClaims(c)
		if err != nil {
			return response.Unauthorized(c)
		}
		if claims.Role == "admin" || claims.HasPermission(permission) {
			return c.Next()
		}
		zap.L().Info("permission denied",
			zap.String("user_id", claims.UserID),
			zap.String("permission", permission))
		return response.Forbidden(c)
	}
}
