package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/models"
	"github.com/otomono/jersey-orders-api/services"
	"github.com/otomono/jersey-orders-api/utils"
)

// liveLoader returns the full-collection read behind a live topic
func (h *Handler) liveLoader(collection string) (services.Loader, bool) {
	switch collection {
	case services.TopicOrders:
		return func(ctx context.Context) (interface{}, error) {
			orders, _, err := h.svc.Orders.ListOrders(ctx, services.OrderQuery{})
			if err != nil {
				return nil, err
			}
			return models.NewOrderViews(orders), nil
		}, true
	case services.TopicCustomers:
		return func(ctx context.Context) (interface{}, error) {
			customers, _, err := h.svc.Catalog.ListCustomers(ctx, 1, 0, "")
			return customers, err
		}, true
	case services.TopicMaterials:
		return func(ctx context.Context) (interface{}, error) {
			return h.svc.Catalog.ListMaterials(ctx)
		}, true
	case services.TopicSuppliers:
		return func(ctx context.Context) (interface{}, error) {
			return h.svc.Catalog.ListSuppliers(ctx)
		}, true
	case services.TopicNotifications:
		return func(ctx context.Context) (interface{}, error) {
			return h.svc.Notifications.List(ctx, false, 0)
		}, true
	case services.TopicDesigns:
		return func(ctx context.Context) (interface{}, error) {
			return h.svc.Designs.List(ctx)
		}, true
	case services.TopicReports:
		return func(ctx context.Context) (interface{}, error) {
			return h.svc.Reports.List(ctx, 0)
		}, true
	}
	return nil, false
}

// LiveCollection handles GET /api/v1/live/:collection - streams full snapshots as server-sent events
func (h *Handler) LiveCollection(c *gin.Context) {
	collection := c.Param("collection")
	load, ok := h.liveLoader(collection)
	if !ok {
		utils.RespondWithError(c, http.StatusNotFound, "UNKNOWN_COLLECTION", "No live feed for "+collection)
		return
	}
	serveLive(c, h.svc.Hub, collection, load)
}
