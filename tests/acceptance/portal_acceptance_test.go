package acceptance

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/routes"
	"github.com/otomono/jersey-orders-api/services"
	"github.com/otomono/jersey-orders-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

// PortalAcceptanceTestSuite exercises the admin console and the customer portal over a real listener
type PortalAcceptanceTestSuite struct {
	suite.Suite
	server *httptest.Server
	svc    *services.Container
	mocks  *testutil.Mocks
}

// SetupTest starts a fresh server for each test
func (suite *PortalAcceptanceTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	testutil.MustSetTestEnvironment(suite.T())

	suite.svc, suite.mocks = testutil.NewTestContainer(suite.T())
	router := routes.SetupRouter(suite.svc.Config, suite.svc, testutil.MockAdminAuth(testutil.AdminScope)...)
	suite.server = httptest.NewServer(router)
}

// TearDownTest stops the server
func (suite *PortalAcceptanceTestSuite) TearDownTest() {
	suite.svc.Hub.Close()
	suite.server.Close()
}

// makeRequest is a helper to make HTTP requests; the body is returned undecoded
func (suite *PortalAcceptanceTestSuite) makeRequest(method, path string, body interface{}) (*http.Response, []byte) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, suite.server.URL+path, reader)
	suite.Require().NoError(err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	return resp, raw
}

// makeJSONRequest decodes the envelope's data object
func (suite *PortalAcceptanceTestSuite) makeJSONRequest(method, path string, body interface{}) (int, map[string]interface{}) {
	resp, raw := suite.makeRequest(method, path, body)
	var envelope struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	suite.Require().NoError(json.Unmarshal(raw, &envelope), string(raw))
	return resp.StatusCode, envelope.Data
}

func jerseyBody(n int) map[string]string {
	return map[string]string{
		"type":          "Away",
		"name":          fmt.Sprintf("Player %d", n),
		"number":        fmt.Sprintf("%d", 10+n),
		"size_category": "Kids",
		"size":          "S",
		"sleeve":        "Long",
		"shorts":        "S",
	}
}

// readSnapshot returns the data line of the next snapshot event
func readSnapshot(reader *bufio.Reader) (string, error) {
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(line) != "event:snapshot" {
			continue
		}
		data, err := reader.ReadString('\n')
		if err != nil {
			return "", err
		}
		return strings.TrimPrefix(strings.TrimSpace(data), "data:"), nil
	}
}

// TestCustomerLinkJourney_Acceptance follows one order from the console to the customer and back
func (suite *PortalAcceptanceTestSuite) TestCustomerLinkJourney_Acceptance() {
	// Step 1: the admin creates an order and texts the link
	status, order := suite.makeJSONRequest(http.MethodPost, "/api/v1/orders", map[string]string{
		"customer": "Northside Juniors",
		"mobile":   "09171234567",
		"material": "Cotton Blend",
	})
	suite.Require().Equal(http.StatusCreated, status)
	orderID := order["id"].(string)

	status, sms := suite.makeJSONRequest(http.MethodPost, "/api/v1/orders/"+orderID+"/link/sms", nil)
	suite.Require().Equal(http.StatusOK, status)
	assert.NotEmpty(suite.T(), sms["message_sid"])
	suite.Require().Len(suite.mocks.SMS.Messages, 1)
	assert.Equal(suite.T(), "09171234567", suite.mocks.SMS.Messages[0].To)

	customerLink := order["customer_link"].(string)
	link, err := url.Parse(customerLink)
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "orders.example.com", link.Host)
	assert.Contains(suite.T(), suite.mocks.SMS.Messages[0].Body, customerLink)
	query := "?" + link.RawQuery

	// Step 2: the customer opens the live portal view
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, suite.server.URL+"/customer/events"+query, nil)
	suite.Require().NoError(err)
	stream, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	defer stream.Body.Close()
	suite.Require().Equal(http.StatusOK, stream.StatusCode)
	events := bufio.NewReader(stream.Body)

	first, err := readSnapshot(events)
	suite.Require().NoError(err)
	assert.Contains(suite.T(), first, `"can_edit":true`)

	// Step 3: every buffered jersey refreshes the stream
	for i := 1; i <= 2; i++ {
		status, _ := suite.makeJSONRequest(http.MethodPost, "/customer/drafts"+query, jerseyBody(i))
		suite.Require().Equal(http.StatusCreated, status)

		snap, err := readSnapshot(events)
		suite.Require().NoError(err)
		assert.Contains(suite.T(), snap, fmt.Sprintf("Player %d", i))
	}

	// Step 4: submission is pushed as a read-only view
	status, result := suite.makeJSONRequest(http.MethodPost, "/customer/submit"+query, nil)
	suite.Require().Equal(http.StatusOK, status)
	assert.Equal(suite.T(), float64(2), result["jersey_count"])

	snap, err := readSnapshot(events)
	suite.Require().NoError(err)
	assert.Contains(suite.T(), snap, `"status":"submitted"`)
	assert.Contains(suite.T(), snap, `"can_edit":false`)

	// Step 5: the admin exports the jersey list
	resp, raw := suite.makeRequest(http.MethodGet, "/api/v1/orders/"+orderID+"/export", nil)
	suite.Require().Equal(http.StatusOK, resp.StatusCode)
	assert.Contains(suite.T(), resp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(suite.T(), string(raw), "Player 1")
	assert.Contains(suite.T(), string(raw), "Player 2")
}

// TestPortalRejectsForgedLinks_Acceptance checks that a guessed token reveals nothing
func (suite *PortalAcceptanceTestSuite) TestPortalRejectsForgedLinks_Acceptance() {
	status, order := suite.makeJSONRequest(http.MethodPost, "/api/v1/orders", map[string]string{
		"customer": "Northside Juniors",
		"mobile":   "09171234567",
		"material": "Cotton Blend",
	})
	suite.Require().Equal(http.StatusCreated, status)
	orderID := order["id"].(string)

	for _, path := range []string{"", "/drafts", "/events"} {
		resp, raw := suite.makeRequest(http.MethodGet, "/customer"+path+"?orderId="+orderID+"&token=forged", nil)
		assert.Equal(suite.T(), http.StatusForbidden, resp.StatusCode, path)
		assert.NotContains(suite.T(), string(raw), "Northside")
	}

	resp, _ := suite.makeRequest(http.MethodPost, "/customer/submit?orderId="+orderID+"&token=forged", nil)
	assert.Equal(suite.T(), http.StatusForbidden, resp.StatusCode)

	status, fetched := suite.makeJSONRequest(http.MethodGet, "/api/v1/orders/"+orderID, nil)
	suite.Require().Equal(http.StatusOK, status)
	assert.Equal(suite.T(), "pending", fetched["status"])
}

// TestPortalAcceptanceTestSuite runs the acceptance test suite
func TestPortalAcceptanceTestSuite(t *testing.T) {
	suite.Run(t, new(PortalAcceptanceTestSuite))
}
