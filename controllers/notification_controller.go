package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/models"
	"github.com/otomono/jersey-orders-api/utils"
)

// CreateNotificationRequest represents a manually posted notification
type CreateNotificationRequest struct {
	Type    string `json:"type"`
	Title   string `json:"title" binding:"required"`
	Message string `json:"message" binding:"required"`
}

// ListNotifications handles GET /api/v1/notifications?unread=true&limit=N
func (h *Handler) ListNotifications(c *gin.Context) {
	unread := c.Query("unread") == "true"
	limit, _ := strconv.Atoi(c.Query("limit"))

	notifications, err := h.svc.Notifications.List(c.Request.Context(), unread, limit)
	if err != nil {
		respondError(c, err, "Failed to retrieve notifications")
		return
	}
	count, err := h.svc.Notifications.UnreadCount(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to count notifications")
		return
	}

	utils.RespondWithData(c, http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  count,
	})
}

// UnreadCount handles GET /api/v1/notifications/unread-count
func (h *Handler) UnreadCount(c *gin.Context) {
	count, err := h.svc.Notifications.UnreadCount(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to count notifications")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"unread_count": count})
}

// CreateNotification handles POST /api/v1/notifications
func (h *Handler) CreateNotification(c *gin.Context) {
	var req CreateNotificationRequest
	if !bindJSON(c, &req) {
		return
	}
	n := &models.Notification{Type: req.Type, Title: req.Title, Message: req.Message}
	if err := h.svc.Notifications.Create(c.Request.Context(), n); err != nil {
		respondError(c, err, "Failed to create notification")
		return
	}
	utils.RespondWithData(c, http.StatusCreated, n)
}

// MarkNotificationRead handles PUT /api/v1/notifications/:id/read
func (h *Handler) MarkNotificationRead(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Notifications.MarkRead(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to update notification")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"id": id, "read": true})
}

// MarkAllNotificationsRead handles PUT /api/v1/notifications/read-all
func (h *Handler) MarkAllNotificationsRead(c *gin.Context) {
	updated, err := h.svc.Notifications.MarkAllRead(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to update notifications")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"updated": updated})
}

// DeleteNotification handles DELETE /api/v1/notifications/:id
func (h *Handler) DeleteNotification(c *gin.Context) {
	id := c.Param("id")
	if err := h.svc.Notifications.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err, "Failed to delete notification")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"id": id})
}

// ClearNotifications handles DELETE /api/v1/notifications
func (h *Handler) ClearNotifications(c *gin.Context) {
	deleted, err := h.svc.Notifications.ClearAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to clear notifications")
		return
	}
	utils.RespondWithData(c, http.StatusOK, gin.H{"deleted": deleted})
}
