package controllers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/models"
	"github.com/otomono/jersey-orders-api/services"
	"github.com/otomono/jersey-orders-api/utils"
)

// UpdateStatusRequest represents the request body for a manual status change
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// OrderDetail is an order with its jerseys and display quantity
type OrderDetail struct {
	models.OrderView
	JerseyCount int `json:"jersey_count"`
}

func newOrderDetail(o *models.Order) OrderDetail {
	return OrderDetail{OrderView: models.NewOrderView(*o), JerseyCount: len(o.Jerseys)}
}

// CreateOrder handles POST /api/v1/orders - creates a pending order and mints its customer link
func (h *Handler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderInput
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.svc.Orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create order")
		return
	}

	utils.RespondWithData(c, http.StatusCreated, models.NewOrderView(*order))
}

// ListOrders handles GET /api/v1/orders - newest first, filtered by status and search
func (h *Handler) ListOrders(c *gin.Context) {
	page, limit := utils.PageParams(c, 20)
	orders, total, err := h.svc.Orders.ListOrders(c.Request.Context(), services.OrderQuery{
		Page:   page,
		Limit:  limit,
		Status: c.Query("status"),
		Search: c.Query("search"),
	})
	if err != nil {
		respondError(c, err, "Failed to retrieve orders")
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"orders":     models.NewOrderViews(orders),
		"pagination": utils.NewPagination(page, limit, total),
	})
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	order, err := h.svc.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve order")
		return
	}
	utils.RespondWithData(c, http.StatusOK, newOrderDetail(order))
}

// UpdateOrder handles PUT /api/v1/orders/:id - contact and material fields only
func (h *Handler) UpdateOrder(c *gin.Context) {
	var req services.UpdateOrderInput
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.svc.Orders.UpdateOrder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to update order")
		return
	}
	utils.RespondWithData(c, http.StatusOK, newOrderDetail(order))
}

// DeleteOrder handles DELETE /api/v1/orders/:id - removes the order, its jerseys and drafts
func (h *Handler) DeleteOrder(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Orders.DeleteOrder(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete order")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"id": id})
}

// UpdateOrderStatus handles PUT /api/v1/orders/:id/status
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := h.svc.Orders.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err, "Failed to update order status")
		return
	}
	utils.RespondWithData(c, http.StatusOK, newOrderDetail(order))
}

// AddJersey handles POST /api/v1/orders/:id/jerseys
func (h *Handler) AddJersey(c *gin.Context) {
	var req models.JerseyFields
	if !bindJSON(c, &req) {
		return
	}

	jersey, err := h.svc.Orders.AddJersey(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondError(c, err, "Failed to add jersey")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, jersey)
}

// UpdateJersey handles PUT /api/v1/orders/:id/jerseys/:jerseyId
func (h *Handler) UpdateJersey(c *gin.Context) {
	var req models.JerseyFields
	if !bindJSON(c, &req) {
		return
	}

	jersey, err := h.svc.Orders.UpdateJersey(c.Request.Context(), c.Param("id"), c.Param("jerseyId"), req)
	if err != nil {
		respondError(c, err, "Failed to update jersey")
		return
	}
	utils.RespondWithData(c, http.StatusOK, jersey)
}

// DeleteJersey handles DELETE /api/v1/orders/:id/jerseys/:jerseyId
func (h *Handler) DeleteJersey(c *gin.Context) {
	result, err := h.svc.Orders.DeleteJersey(c.Request.Context(), c.Param("id"), c.Param("jerseyId"), models.ActorAdmin)
	if err != nil {
		respondError(c, err, "Failed to delete jersey")
		return
	}
	utils.RespondWithData(c, http.StatusOK, result)
}

// ExportJerseys handles GET /api/v1/orders/:id/export - the jersey list as a CSV download
func (h *Handler) ExportJerseys(c *gin.Context) {
	order, err := h.svc.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve order")
		return
	}
	if len(order.Jerseys) == 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "NO_JERSEYS", "This order has no jersey details to export")
		return
	}

	name, content, err := services.JerseyExport(order, time.Now())
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to build export", err.Error())
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, services.CSVContentType, content)
}

// GetCustomerLink handles GET /api/v1/orders/:id/link
func (h *Handler) GetCustomerLink(c *gin.Context) {
	order, err := h.svc.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve order")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{
		"order_id":      order.ID,
		"customer_link": order.CustomerLink,
	})
}

// SendCustomerLinkSMS handles POST /api/v1/orders/:id/link/sms - texts the link to the order's mobile
func (h *Handler) SendCustomerLinkSMS(c *gin.Context) {
	if h.svc.SMS == nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "SMS_NOT_CONFIGURED", "Text messaging is not configured")
		return
	}

	order, err := h.svc.Orders.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve order")
		return
	}

	body := fmt.Sprintf("Hi %s, please enter your team's jersey details here: %s",
		utils.OrDefault(order.Customer, "there"), order.CustomerLink)
	sid, err := h.svc.SMS.SendSMS(c.Request.Context(), order.Mobile, body)
	if err != nil {
		log.Printf("[sms] failed to text link for order %s: %v", order.ID, err)
		utils.RespondWithError(c, http.StatusBadGateway, "SMS_FAILED", "Failed to send text message", err.Error())
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"order_id":    order.ID,
		"message_sid": sid,
	})
}
