package acceptance

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/routes"
	"github.com/otomono/jersey-orders-api/services"
	"github.com/otomono/jersey-orders-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13}

// CatalogAcceptanceTestSuite covers designs, reports and supplier mail over a real listener
type CatalogAcceptanceTestSuite struct {
	suite.Suite
	server *httptest.Server
	svc    *services.Container
	mocks  *testutil.Mocks
}

// SetupTest starts a fresh server for each test
func (suite *CatalogAcceptanceTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.svc, suite.mocks = testutil.NewTestContainer(suite.T())
	router := routes.SetupRouter(suite.svc.Config, suite.svc, testutil.MockAdminAuth(testutil.AdminScope)...)
	suite.server = httptest.NewServer(router)
}

// TearDownTest stops the server
func (suite *CatalogAcceptanceTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *CatalogAcceptanceTestSuite) postJSON(path string, body interface{}) (*http.Response, map[string]interface{}) {
	payload, err := json.Marshal(body)
	suite.Require().NoError(err)
	resp, err := http.Post(suite.server.URL+path, "application/json", bytes.NewReader(payload))
	suite.Require().NoError(err)
	defer resp.Body.Close()

	var response map[string]interface{}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	return resp, response
}

// TestDesignUpload_Acceptance uploads a PNG as multipart form data
func (suite *CatalogAcceptanceTestSuite) TestDesignUpload_Acceptance() {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	suite.Require().NoError(writer.WriteField("name", "Championship kit"))
	part, err := writer.CreateFormFile("image", "kit.png")
	suite.Require().NoError(err)
	_, err = part.Write(pngHeader)
	suite.Require().NoError(err)
	suite.Require().NoError(writer.Close())

	resp, err := http.Post(suite.server.URL+"/api/v1/designs", writer.FormDataContentType(), body)
	suite.Require().NoError(err)
	defer resp.Body.Close()
	suite.Require().Equal(http.StatusCreated, resp.StatusCode)

	var response struct {
		Success bool `json:"success"`
		Data    struct {
			ID       string  `json:"id"`
			Name     string  `json:"name"`
			ImageURL *string `json:"image_url"`
		} `json:"data"`
	}
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&response))
	assert.True(suite.T(), response.Success)
	assert.Equal(suite.T(), "Championship kit", response.Data.Name)
	suite.Require().NotNil(response.Data.ImageURL)
	assert.Contains(suite.T(), *response.Data.ImageURL, "mock=true")
	assert.Equal(suite.T(), 1, suite.mocks.Storage.Len())
}

// TestFinancialReport_Acceptance downloads a generated report and its archived copy
func (suite *CatalogAcceptanceTestSuite) TestFinancialReport_Acceptance() {
	payload, _ := json.Marshal(map[string]string{"type": "financial", "date_from": "2026-01-01", "date_to": "2026-12-31"})
	resp, err := http.Post(suite.server.URL+"/api/v1/reports", "application/json", bytes.NewReader(payload))
	suite.Require().NoError(err)
	defer resp.Body.Close()
	suite.Require().Equal(http.StatusCreated, resp.StatusCode)

	content, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	assert.Contains(suite.T(), resp.Header.Get("Content-Disposition"), "Financial_Report_")
	assert.NotEmpty(suite.T(), content)

	id := resp.Header.Get("X-Report-ID")
	suite.Require().NotEmpty(id)

	download, err := http.Get(suite.server.URL + "/api/v1/reports/" + id + "/download")
	suite.Require().NoError(err)
	defer download.Body.Close()
	assert.Equal(suite.T(), http.StatusOK, download.StatusCode)
}

// TestSupplierEmail_Acceptance sends a message to a supplier through the relay
func (suite *CatalogAcceptanceTestSuite) TestSupplierEmail_Acceptance() {
	resp, response := suite.postJSON("/api/v1/suppliers", map[string]string{
		"name":     "Fabric House",
		"email":    "orders@fabric.example",
		"location": "Quezon City",
	})
	suite.Require().Equal(http.StatusCreated, resp.StatusCode)
	id := response["data"].(map[string]interface{})["id"].(string)

	resp, response = suite.postJSON("/api/v1/suppliers/"+id+"/email", map[string]string{
		"subject": "Restock request",
		"message": "We need 40 yards of mesh by Friday.",
	})
	suite.Require().Equal(http.StatusOK, resp.StatusCode)
	assert.Equal(suite.T(), "orders@fabric.example", response["data"].(map[string]interface{})["to"])

	suite.Require().Len(suite.mocks.Mailer.Sent, 1)
	sent := suite.mocks.Mailer.Sent[0]
	assert.Equal(suite.T(), "Restock request", sent.Subject)
	assert.Equal(suite.T(), suite.svc.Config.MailSender, sent.SenderEmail)
	assert.Contains(suite.T(), sent.Body, "Dear Fabric House,")
}

// TestCatalogAcceptanceTestSuite runs the acceptance test suite
func TestCatalogAcceptanceTestSuite(t *testing.T) {
	suite.Run(t, new(CatalogAcceptanceTestSuite))
}
