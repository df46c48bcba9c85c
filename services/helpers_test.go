package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/otomono/jersey-orders-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// Every connection to :memory: is a separate database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	if err := models.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// recordingHub remembers published topics instead of reloading them
type recordingHub struct {
	mu     sync.Mutex
	topics []string
}

func (h *recordingHub) Publish(ctx context.Context, topics ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.topics = append(h.topics, topics...)
}

func (h *recordingHub) published(topic string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range h.topics {
		if t == topic {
			return true
		}
	}
	return false
}

type lifecycleFixture struct {
	db            *gorm.DB
	hub           *recordingHub
	orders        *OrderService
	drafts        *DraftBuffer
	notifications *NotificationService
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	db := setupServiceTestDB(t)
	hub := &recordingHub{}
	notifications := NewNotificationService(db, hub)
	return &lifecycleFixture{
		db:            db,
		hub:           hub,
		orders:        NewOrderService(db, hub, notifications, "https://orders.example.com/"),
		drafts:        NewDraftBuffer(db, hub),
		notifications: notifications,
	}
}

func (f *lifecycleFixture) createOrder(t *testing.T, customer, mobile string) *models.Order {
	t.Helper()
	order, err := f.orders.CreateOrder(context.Background(), CreateOrderInput{
		Customer: customer,
		Mobile:   mobile,
		Email:    "team@example.com",
		Material: "Dri-Fit",
	})
	require.NoError(t, err)
	return order
}

func (f *lifecycleFixture) reload(t *testing.T, id string) *models.Order {
	t.Helper()
	order, err := f.orders.GetOrder(context.Background(), id)
	require.NoError(t, err)
	return order
}

func jerseyFields(n int) models.JerseyFields {
	return models.JerseyFields{
		Type:         "Home",
		Name:         fmt.Sprintf("Player %d", n),
		Number:       fmt.Sprintf("%d", n),
		SizeCategory: "Adult",
		Size:         "M",
		Sleeve:       "Short",
		Shorts:       "M",
	}
}
