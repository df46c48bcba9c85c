package services

import (
	"context"
	"fmt"
	"log"

	"github.com/otomono/jersey-orders-api/models"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// LowStockTitle is the notification title used by the stock sweep
const LowStockTitle = "Low Stock Alert"

// StockScheduler periodically raises notifications for materials that are running out
type StockScheduler struct {
	db            *gorm.DB
	notifications *NotificationService
	spec          string
	cron          *cron.Cron
}

// NewStockScheduler creates a scheduler running the sweep on the given cron spec
func NewStockScheduler(db *gorm.DB, notifications *NotificationService, spec string) *StockScheduler {
	return &StockScheduler{
		db:            db,
		notifications: notifications,
		spec:          spec,
		cron:          cron.New(),
	}
}

// Start registers the sweep and starts the cron runner
func (s *StockScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, func() {
		created, err := s.SweepLowStock(context.Background())
		if err != nil {
			log.Printf("[scheduler] low stock sweep failed: %v", err)
			return
		}
		log.Printf("[scheduler] low stock sweep raised %d notification(s)", created)
	}); err != nil {
		return fmt.Errorf("invalid low stock schedule %q: %w", s.spec, err)
	}
	s.cron.Start()
	log.Printf("[scheduler] low stock sweep scheduled (%s)", s.spec)
	return nil
}

// Stop halts the runner and waits for a running sweep to finish
func (s *StockScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// SweepLowStock creates one warning per low or empty material, skipping ones with an unread alert already
func (s *StockScheduler) SweepLowStock(ctx context.Context) (int, error) {
	var materials []models.Material
	if err := s.db.WithContext(ctx).
		Where("stock < ?", models.LowStockThreshold).
		Order("name ASC").
		Find(&materials).Error; err != nil {
		return 0, fmt.Errorf("failed to load materials: %w", err)
	}

	created := 0
	for _, m := range materials {
		message := lowStockMessage(m)

		var existing int64
		if err := s.db.WithContext(ctx).Model(&models.Notification{}).
			Where("title = ? AND message = ? AND read = ?", LowStockTitle, message, false).
			Count(&existing).Error; err != nil {
			return created, fmt.Errorf("failed to check existing alerts: %w", err)
		}
		if existing > 0 {
			continue
		}

		if err := s.notifications.Create(ctx, &models.Notification{
			Type:    "warning",
			Title:   LowStockTitle,
			Message: message,
		}); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func lowStockMessage(m models.Material) string {
	if m.Stock <= 0 {
		return fmt.Sprintf("%s is out of stock", m.Name)
	}
	return fmt.Sprintf("%s is running low (%d left)", m.Name, m.Stock)
}
