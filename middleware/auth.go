package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/config"
	"github.com/otomono/jersey-orders-api/utils"
)

// Context keys set by EnsureValidToken
const (
	ContextUserID      = "user_id"
	ContextClaims      = "validated_claims"
	ContextAccessToken = "access_token"
)

// CustomClaims holds the permissions granted to the admin's access token
type CustomClaims struct {
	Scope string `json:"scope"`
}

// Validate satisfies validator.CustomClaims; scopes are checked per route
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// HasScope reports whether expectedScope is one of the space separated granted scopes
func (c CustomClaims) HasScope(expectedScope string) bool {
	for _, scope := range strings.Fields(c.Scope) {
		if scope == expectedScope {
			return true
		}
	}
	return false
}

const invalidTokenBody = `{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`

// newTokenValidator checks RS256 tokens issued by the configured Auth0 tenant for our audience
func newTokenValidator(cfg *config.Config) (*validator.Validator, error) {
	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		return nil, fmt.Errorf("parse issuer url: %w", err)
	}

	keys := jwks.NewCachingProvider(issuerURL, 5*time.Minute)
	return validator.New(
		keys.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(func() validator.CustomClaims { return &CustomClaims{} }),
		validator.WithAllowedClockSkew(time.Minute),
	)
}

func rejectToken(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("[auth] rejected token for %s %s: %v", r.Method, r.URL.Path, err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if _, writeErr := w.Write([]byte(invalidTokenBody)); writeErr != nil {
		log.Printf("[auth] failed to write error response: %v", writeErr)
	}
}

// EnsureValidToken authenticates console requests against Auth0 and stores the
// subject, claims and raw token on the gin context
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	tokenValidator, err := newTokenValidator(cfg)
	if err != nil {
		log.Fatalf("Failed to set up the jwt validator: %v", err)
	}

	checkJWT := jwtmiddleware.New(
		tokenValidator.ValidateToken,
		jwtmiddleware.WithErrorHandler(rejectToken),
	).CheckJWT

	return func(c *gin.Context) {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)
			c.Set(ContextUserID, claims.RegisteredClaims.Subject)
			c.Set(ContextClaims, claims)
			// the profile endpoint forwards it to Auth0 /userinfo
			if raw, err := jwtmiddleware.AuthHeaderTokenExtractor(r); err == nil && raw != "" {
				c.Set(ContextAccessToken, raw)
			}
			c.Request = r
			c.Next()
		})

		checkJWT(next).ServeHTTP(c.Writer, c.Request)
		if c.Writer.Written() && c.Writer.Status() == http.StatusUnauthorized {
			c.Abort()
		}
	}
}

// contextValue reads a value EnsureValidToken stored on the request
func contextValue[T any](c *gin.Context, key string, missing, invalid AuthError) (T, error) {
	var zero T
	raw, exists := c.Get(key)
	if !exists {
		return zero, &missing
	}
	value, ok := raw.(T)
	if !ok {
		return zero, &invalid
	}
	return value, nil
}

// GetUserID returns the Auth0 subject of the signed-in admin
func GetUserID(c *gin.Context) (string, error) {
	return contextValue[string](c, ContextUserID,
		AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"},
		AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"})
}

// GetAccessToken returns the raw bearer token of the current request, or ""
func GetAccessToken(c *gin.Context) string {
	return c.GetString(ContextAccessToken)
}

// GetClaims returns the validated JWT claims of the current request
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	return contextValue[*validator.ValidatedClaims](c, ContextClaims,
		AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"},
		AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"})
}

// RequireScope is a middleware that checks if the token has a specific scope
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := GetClaims(c)
		if err != nil {
			utils.RespondWithError(c, http.StatusUnauthorized, "MISSING_CLAIMS", "Could not retrieve token claims")
			c.Abort()
			return
		}

		customClaims, ok := claims.CustomClaims.(*CustomClaims)
		if !ok || !customClaims.HasScope(scope) {
			utils.RespondWithError(c, http.StatusForbidden, "INSUFFICIENT_SCOPE", "Insufficient permissions to access this resource")
			c.Abort()
			return
		}

		c.Next()
	}
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
