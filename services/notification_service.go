package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/otomono/jersey-orders-api/models"
	"gorm.io/gorm"
)

// NotificationService manages the admin notification feed
type NotificationService struct {
	db  *gorm.DB
	hub Publisher
}

// NewNotificationService creates a notification service
func NewNotificationService(db *gorm.DB, hub Publisher) *NotificationService {
	return &NotificationService{db: db, hub: hub}
}

// List returns notifications newest first
func (s *NotificationService) List(ctx context.Context, unreadOnly bool, limit int) ([]models.Notification, error) {
	q := s.db.WithContext(ctx).Order("timestamp DESC")
	if unreadOnly {
		q = q.Where("read = ?", false)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var notifications []models.Notification
	if err := q.Find(&notifications).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

// UnreadCount returns the number of unread notifications
func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Notification{}).Where("read = ?", false).Count(&count).Error
	return count, err
}

// Create adds a notification to the feed
func (s *NotificationService) Create(ctx context.Context, n *models.Notification) error {
	if n.Title == "" || n.Message == "" {
		return newValidationError("VALIDATION_ERROR", "title and message are required")
	}
	switch n.Type {
	case "", "info", "success", "warning", "error":
	default:
		return newValidationError("VALIDATION_ERROR", "unknown notification type %q", n.Type)
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	s.hub.Publish(ctx, TopicNotifications)
	return nil
}

// MarkRead flags one notification as read
func (s *NotificationService) MarkRead(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).Where("id = ?", id).Update("read", true)
	if res.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.hub.Publish(ctx, TopicNotifications)
	return nil
}

// MarkAllRead flags every unread notification in one transaction
func (s *NotificationService) MarkAllRead(ctx context.Context) (int64, error) {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Notification{}).Where("read = ?", false).Update("read", true)
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	s.hub.Publish(ctx, TopicNotifications)
	return affected, nil
}

// Delete removes one notification
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Notification{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete notification: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.hub.Publish(ctx, TopicNotifications)
	return nil
}

// ClearAll removes every notification in one transaction
func (s *NotificationService) ClearAll(ctx context.Context) (int64, error) {
	var affected int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.Notification{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear notifications: %w", err)
	}
	s.hub.Publish(ctx, TopicNotifications)
	return affected, nil
}

// Get loads one notification
func (s *NotificationService) Get(ctx context.Context, id string) (*models.Notification, error) {
	var n models.Notification
	if err := s.db.WithContext(ctx).First(&n, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}
