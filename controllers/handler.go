package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/middleware"
	"github.com/otomono/jersey-orders-api/services"
	"github.com/otomono/jersey-orders-api/utils"
)

// Handler serves the admin API and the customer portal
type Handler struct {
	svc *services.Container
}

// NewHandler creates a handler around the service container
func NewHandler(svc *services.Container) *Handler {
	return &Handler{svc: svc}
}

// respondError maps service errors onto the API error envelope
func respondError(c *gin.Context, err error, fallback string) {
	var validation *services.ValidationError
	var upload *utils.FileUploadError

	switch {
	case errors.As(err, &validation):
		code := validation.Code
		if code == "" {
			code = "VALIDATION_ERROR"
		}
		var details []string
		if len(validation.Fields) > 0 {
			details = append(details, err.Error())
		}
		utils.RespondWithError(c, http.StatusBadRequest, code, validation.Message, details...)
	case errors.As(err, &upload):
		utils.RespondWithError(c, http.StatusBadRequest, upload.Code, upload.Message)
	case errors.Is(err, services.ErrOrderNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "ORDER_NOT_FOUND", "Order not found")
	case errors.Is(err, services.ErrJerseyNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "JERSEY_NOT_FOUND", "Jersey not found")
	case errors.Is(err, services.ErrDraftEntryNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "DRAFT_ENTRY_NOT_FOUND", "Draft entry not found")
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, "NOT_FOUND", "Record not found")
	case errors.Is(err, services.ErrInvalidLink):
		utils.RespondWithError(c, http.StatusForbidden, "INVALID_LINK", middleware.InvalidLinkMessage)
	case errors.Is(err, services.ErrOrderLocked):
		utils.RespondWithError(c, http.StatusLocked, "ORDER_LOCKED", services.ErrOrderLocked.Error())
	case errors.Is(err, services.ErrAlreadySubmitted):
		utils.RespondWithError(c, http.StatusConflict, "ORDER_ALREADY_SUBMITTED", services.ErrAlreadySubmitted.Error())
	case errors.Is(err, services.ErrInvalidTransition):
		utils.RespondWithError(c, http.StatusConflict, "INVALID_TRANSITION", services.ErrInvalidTransition.Error())
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, "DATABASE_ERROR", fallback, err.Error())
	}
}

// bindJSON decodes the request body, answering 400 on malformed input
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
		return false
	}
	return true
}
