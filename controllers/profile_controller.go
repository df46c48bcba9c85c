package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/middleware"
	"github.com/otomono/jersey-orders-api/services"
	"github.com/otomono/jersey-orders-api/utils"
)

// GetProfile handles GET /api/v1/profile - the settings profile of the signed-in admin
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.svc.Profile.Get(c.Request.Context(), middleware.GetAccessToken(c))
	if err != nil {
		respondError(c, err, "Failed to retrieve profile")
		return
	}
	utils.RespondWithData(c, http.StatusOK, profile)
}

// UpdateProfile handles PUT /api/v1/profile
// The email is taken from Auth0 when the token resolves; the submitted email is only a fallback
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req services.ProfileInput
	if !bindJSON(c, &req) {
		return
	}
	profile, err := h.svc.Profile.Update(c.Request.Context(), middleware.GetAccessToken(c), req)
	if err != nil {
		respondError(c, err, "Failed to update profile")
		return
	}
	utils.RespondWithData(c, http.StatusOK, profile)
}

// GetDashboard handles GET /api/v1/dashboard - the console's KPI tiles
func (h *Handler) GetDashboard(c *gin.Context) {
	stats, err := h.svc.Dashboard.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to load dashboard")
		return
	}
	utils.RespondWithData(c, http.StatusOK, stats)
}
