package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/models"
	"github.com/otomono/jersey-orders-api/services"
	"github.com/otomono/jersey-orders-api/utils"
)

// Context keys set by RequirePortalLink
const (
	ContextPortalOrder = "portal_order"
	ContextPortalToken = "portal_token"
)

// InvalidLinkMessage is the only thing a rejected portal request learns
const InvalidLinkMessage = "This link is invalid or has expired. Please contact the shop for a new link."

// PortalAuthorizer checks a customer link
type PortalAuthorizer interface {
	AuthorizePortal(ctx context.Context, orderID, token string) (*models.Order, error)
}

// RequirePortalLink admits requests carrying a valid orderId and token query pair.
// Nothing about the order is revealed when the link does not check out.
func RequirePortalLink(orders PortalAuthorizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID := c.Query("orderId")
		token := c.Query("token")
		if orderID == "" || token == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "INVALID_LINK", InvalidLinkMessage)
			c.Abort()
			return
		}

		order, err := orders.AuthorizePortal(c.Request.Context(), orderID, token)
		if err != nil {
			if errors.Is(err, services.ErrInvalidLink) {
				log.Printf("[portal] rejected link for order %s from %s", orderID, c.ClientIP())
				utils.RespondWithError(c, http.StatusForbidden, "INVALID_LINK", InvalidLinkMessage)
			} else {
				log.Printf("[portal] link check failed for order %s: %v", orderID, err)
				utils.RespondWithError(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to verify link")
			}
			c.Abort()
			return
		}

		c.Set(ContextPortalOrder, order)
		c.Set(ContextPortalToken, token)
		c.Next()
	}
}

// GetPortalOrder returns the order admitted by RequirePortalLink
func GetPortalOrder(c *gin.Context) (*models.Order, string, bool) {
	v, ok := c.Get(ContextPortalOrder)
	if !ok {
		return nil, "", false
	}
	order, ok := v.(*models.Order)
	if !ok {
		return nil, "", false
	}
	return order, c.GetString(ContextPortalToken), true
}
