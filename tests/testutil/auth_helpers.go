package testutil

import (
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/middleware"
)

// AdminScope is the scope test admins carry
const AdminScope = "admin:orders"

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, issuer string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  issuer,
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
		},
	}
}

// SetMockAuthContext sets up a mock authenticated context for testing
func SetMockAuthContext(c *gin.Context, userID string, issuer string, scopes []string) {
	claims := MockValidatedClaims(userID, issuer, scopes)
	c.Set(middleware.ContextUserID, userID)
	c.Set(middleware.ContextClaims, claims)
	c.Set(middleware.ContextAccessToken, "mock-token")
}

// MockAuthMiddleware stands in for EnsureValidToken, authenticating every request as userID
func MockAuthMiddleware(userID string, scopes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, userID, "https://test.auth0.com/", scopes)
		c.Next()
	}
}

// MockAdminAuth is the console guard used by router-level tests: mock authentication
// followed by the real scope check
func MockAdminAuth(scopes ...string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		MockAuthMiddleware("auth0|admin", scopes...),
		middleware.RequireScope(AdminScope),
	}
}
