package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/routes"
	"github.com/otomono/jersey-orders-api/tests/testutil"
	"github.com/stretchr/testify/suite"
)

// AuthIntegrationTestSuite runs the production console guard on the full router.
// No request here carries a well-formed JWT, so the JWKS endpoint is never fetched.
type AuthIntegrationTestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (suite *AuthIntegrationTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	svc, _ := testutil.NewTestContainer(suite.T())
	suite.router = routes.SetupRouter(svc.Config, svc, routes.AdminAuth(svc.Config)...)
}

func (suite *AuthIntegrationTestSuite) serve(method, path, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AuthIntegrationTestSuite) TestPublicRoutes() {
	suite.Equal(http.StatusOK, suite.serve(http.MethodGet, "/api/v1/health", "").Code)
	suite.Equal(http.StatusOK, suite.serve(http.MethodGet, "/api/v1/database/status", "").Code)

	// the portal answers with its own link check
	w := suite.serve(http.MethodGet, "/customer?orderId=unknown&token=unknown", "")
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Contains(w.Body.String(), "INVALID_LINK")
}

func (suite *AuthIntegrationTestSuite) TestConsoleRoutesRejectMissingToken() {
	console := []struct{ method, path string }{
		{http.MethodGet, "/api/v1/orders"},
		{http.MethodPost, "/api/v1/orders"},
		{http.MethodGet, "/api/v1/customers"},
		{http.MethodGet, "/api/v1/reports"},
		{http.MethodPost, "/api/v1/mail/send"},
		{http.MethodGet, "/api/v1/dashboard"},
		{http.MethodGet, "/api/v1/live/orders"},
	}
	for _, r := range console {
		w := suite.serve(r.method, r.path, "")
		suite.Equal(http.StatusUnauthorized, w.Code, "%s %s", r.method, r.path)
	}
}

func (suite *AuthIntegrationTestSuite) TestConsoleRoutesRejectBadHeaders() {
	headers := map[string]string{
		"opaque token": "Bearer invalid-token-here",
		"no scheme":    "token-without-bearer",
		"basic scheme": "Basic dXNlcjpwYXNz",
		"empty token":  "Bearer ",
		"scheme only":  "Bearer",
	}
	for name, header := range headers {
		suite.Run(name, func() {
			w := suite.serve(http.MethodGet, "/api/v1/orders", header)
			suite.Equal(http.StatusUnauthorized, w.Code)
		})
	}
}

func (suite *AuthIntegrationTestSuite) TestRejectionEnvelope() {
	w := suite.serve(http.MethodGet, "/api/v1/orders", "")

	var response struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	suite.False(response.Success)
	suite.Equal("INVALID_TOKEN", response.Error.Code)
	suite.NotEmpty(response.Error.Message)
	suite.Equal("application/json", w.Header().Get("Content-Type"))
}

func TestAuthIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(AuthIntegrationTestSuite))
}
