package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/models"
	"github.com/otomono/jersey-orders-api/services"
	"github.com/otomono/jersey-orders-api/tests/testutil"
	"github.com/stretchr/testify/require"
)

type handlerFixture struct {
	router *gin.Engine
	h      *Handler
	svc    *services.Container
	mocks  *testutil.Mocks
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	gin.SetMode(gin.TestMode)
	svc, mocks := testutil.NewTestContainer(t)
	return &handlerFixture{
		router: gin.New(),
		h:      NewHandler(svc),
		svc:    svc,
		mocks:  mocks,
	}
}

// do sends a JSON request (body may be nil) and decodes the JSON response
func (f *handlerFixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	var response map[string]interface{}
	if bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func (f *handlerFixture) createOrder(t *testing.T, customer, mobile string) *models.Order {
	t.Helper()
	order, err := f.svc.Orders.CreateOrder(context.Background(), services.CreateOrderInput{
		Customer: customer,
		Mobile:   mobile,
		Email:    "team@example.com",
		Material: "Dri-Fit",
	})
	require.NoError(t, err)
	return order
}

// submitOrder buffers n jerseys as the customer and submits them
func (f *handlerFixture) submitOrder(t *testing.T, order *models.Order, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 1; i <= n; i++ {
		_, err := f.svc.Drafts.Append(ctx, order.ID, order.LinkToken, jerseyFields(i))
		require.NoError(t, err)
	}
	_, err := f.svc.Orders.SubmitJerseys(ctx, order.ID, order.LinkToken)
	require.NoError(t, err)
}

func jerseyFields(n int) models.JerseyFields {
	return models.JerseyFields{
		Type:         "Home",
		Name:         fmt.Sprintf("Player %d", n),
		Number:       fmt.Sprintf("%d", n),
		SizeCategory: "Adult",
		Size:         "L",
		Sleeve:       "Short",
		Shorts:       "L",
	}
}

func errorCode(response map[string]interface{}) string {
	errBody, ok := response["error"].(map[string]interface{})
	if !ok {
		return ""
	}
	code, _ := errBody["code"].(string)
	return code
}

func dataMap(t *testing.T, response map[string]interface{}) map[string]interface{} {
	t.Helper()
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "response data should be an object: %v", response)
	return data
}

func portalPath(order *models.Order, suffix string) string {
	return fmt.Sprintf("/customer%s?orderId=%s&token=%s", suffix, order.ID, order.LinkToken)
}
