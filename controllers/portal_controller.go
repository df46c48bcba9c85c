package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/middleware"
	"github.com/otomono/jersey-orders-api/models"
	"github.com/otomono/jersey-orders-api/services"
	"github.com/otomono/jersey-orders-api/utils"
)

// PortalView is everything the customer page renders for one link
type PortalView struct {
	Order         models.OrderView     `json:"order"`
	Jerseys       []models.Jersey      `json:"jerseys"`
	Draft         *services.DraftState `json:"draft"`
	CanEdit       bool                 `json:"can_edit"`
	ShowEntryForm bool                 `json:"show_entry_form"`
}

// SaveFormRequest represents the in-progress entry form
type SaveFormRequest struct {
	FormData    map[string]string `json:"form_data"`
	FormEnabled bool              `json:"form_enabled"`
}

func (h *Handler) portalView(ctx context.Context, orderID, token string) (*PortalView, error) {
	order, err := h.svc.Orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	draft, err := h.svc.Drafts.Load(ctx, orderID, token)
	if err != nil {
		return nil, err
	}

	jerseys := order.Jerseys
	if jerseys == nil {
		jerseys = []models.Jersey{}
	}
	order.Jerseys = nil
	canEdit := models.CanTransition(order.Status, models.StatusSubmitted, models.ActorCustomer)

	return &PortalView{
		Order:         models.NewOrderView(*order),
		Jerseys:       jerseys,
		Draft:         draft,
		CanEdit:       canEdit,
		ShowEntryForm: canEdit && (draft.FormEnabled || (len(jerseys) == 0 && len(draft.Entries) == 0)),
	}, nil
}

func portalLink(c *gin.Context) (*models.Order, string, bool) {
	order, token, ok := middleware.GetPortalOrder(c)
	if !ok {
		utils.RespondWithError(c, http.StatusForbidden, "INVALID_LINK", middleware.InvalidLinkMessage)
		return nil, "", false
	}
	return order, token, true
}

func draftIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "INVALID_INDEX", "Draft index must be a non-negative integer")
		return 0, false
	}
	return index, true
}

// GetPortal handles GET /customer - the order, its saved jerseys and the buffered draft
func (h *Handler) GetPortal(c *gin.Context) {
	order, token, ok := portalLink(c)
	if !ok {
		return
	}
	view, err := h.portalView(c.Request.Context(), order.ID, token)
	if err != nil {
		respondError(c, err, "Failed to load order")
		return
	}
	utils.RespondWithData(c, http.StatusOK, view)
}

// GetDrafts handles GET /customer/drafts
func (h *Handler) GetDrafts(c *gin.Context) {
	order, token, ok := portalLink(c)
	if !ok {
		return
	}
	state, err := h.svc.Drafts.Load(c.Request.Context(), order.ID, token)
	if err != nil {
		respondError(c, err, "Failed to load draft")
		return
	}
	utils.RespondWithData(c, http.StatusOK, state)
}

// AddDraft handles POST /customer/drafts - buffers one more jersey
func (h *Handler) AddDraft(c *gin.Context) {
	order, token, ok := portalLink(c)
	if !ok {
		return
	}
	if !h.portalEditable(c, order) {
		return
	}
	var req models.JerseyFields
	if !bindJSON(c, &req) {
		return
	}
	state, err := h.svc.Drafts.Append(c.Request.Context(), order.ID, token, req)
	if err != nil {
		respondError(c, err, "Failed to save draft")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, state)
}

// UpdateDraft handles PUT /customer/drafts/:index
func (h *Handler) UpdateDraft(c *gin.Context) {
	order, token, ok := portalLink(c)
	if !ok {
		return
	}
	index, ok := draftIndex(c)
	if !ok || !h.portalEditable(c, order) {
		return
	}
	var req models.JerseyFields
	if !bindJSON(c, &req) {
		return
	}
	state, err := h.svc.Drafts.Replace(c.Request.Context(), order.ID, token, index, req)
	if err != nil {
		respondError(c, err, "Failed to save draft")
		return
	}
	utils.RespondWithData(c, http.StatusOK, state)
}

// DeleteDraft handles DELETE /customer/drafts/:index
func (h *Handler) DeleteDraft(c *gin.Context) {
	order, token, ok := portalLink(c)
	if !ok {
		return
	}
	index, ok := draftIndex(c)
	if !ok || !h.portalEditable(c, order) {
		return
	}
	state, err := h.svc.Drafts.Remove(c.Request.Context(), order.ID, token, index)
	if err != nil {
		respondError(c, err, "Failed to save draft")
		return
	}
	utils.RespondWithData(c, http.StatusOK, state)
}

// SaveDraftForm handles PUT /customer/drafts/form - keeps half-typed fields across reloads
func (h *Handler) SaveDraftForm(c *gin.Context) {
	order, token, ok := portalLink(c)
	if !ok {
		return
	}
	var req SaveFormRequest
	if !bindJSON(c, &req) {
		return
	}
	state, err := h.svc.Drafts.SaveForm(c.Request.Context(), order.ID, token, req.FormData, req.FormEnabled)
	if err != nil {
		respondError(c, err, "Failed to save form")
		return
	}
	utils.RespondWithData(c, http.StatusOK, state)
}

// DeletePortalJersey handles DELETE /customer/jerseys/:jerseyId - removes a saved jersey before submission
func (h *Handler) DeletePortalJersey(c *gin.Context) {
	order, _, ok := portalLink(c)
	if !ok {
		return
	}
	result, err := h.svc.Orders.DeleteJersey(c.Request.Context(), order.ID, c.Param("jerseyId"), models.ActorCustomer)
	if err != nil {
		respondError(c, err, "Failed to delete jersey")
		return
	}
	utils.RespondWithData(c, http.StatusOK, result)
}

// SubmitJerseys handles POST /customer/submit - saves every buffered jersey at once
func (h *Handler) SubmitJerseys(c *gin.Context) {
	order, token, ok := portalLink(c)
	if !ok {
		return
	}
	result, err := h.svc.Orders.SubmitJerseys(c.Request.Context(), order.ID, token)
	if err != nil {
		respondError(c, err, "Failed to submit jerseys")
		return
	}

	submitted := result.Order
	submitted.Jerseys = nil
	utils.RespondWithData(c, http.StatusOK, gin.H{
		"order":        models.NewOrderView(*submitted),
		"flushed":      result.Flushed,
		"jersey_count": result.JerseyCount,
	})
}

// PortalEvents handles GET /customer/events - live updates of the portal view
func (h *Handler) PortalEvents(c *gin.Context) {
	order, token, ok := portalLink(c)
	if !ok {
		return
	}
	orderID := order.ID
	serveLive(c, h.svc.Hub, services.OrderTopic(orderID), func(ctx context.Context) (interface{}, error) {
		return h.portalView(ctx, orderID, token)
	})
}

// portalEditable rejects buffer edits once the order has been submitted
func (h *Handler) portalEditable(c *gin.Context, order *models.Order) bool {
	if !models.CanTransition(order.Status, models.StatusSubmitted, models.ActorCustomer) {
		respondError(c, services.ErrAlreadySubmitted, "")
		return false
	}
	return true
}
