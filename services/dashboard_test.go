package services

import (
	"context"
	"testing"
	"time"

	"github.com/otomono/jersey-orders-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardStats(t *testing.T) {
	db := setupServiceTestDB(t)
	now := time.Now().UTC()

	seedOrder(t, db, "A", "1", models.StatusPending, 0, 100, now)
	seedOrder(t, db, "B", "2", models.StatusDraft, 4, 100, now)
	seedOrder(t, db, "C", "3", models.StatusSubmitted, 3, 100, now)
	seedOrder(t, db, "D", "4", models.StatusCompleted, 2, 25, now)
	require.NoError(t, db.Create(&models.Customer{Name: "C", Phone: "3"}).Error)
	low := models.Material{Name: "Mesh", Type: "Synthetic", Price: decimal.NewFromInt(5), Stock: 2}
	require.NoError(t, db.Create(&low).Error)

	stats, err := NewDashboardService(db).Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), stats.TotalOrders)
	assert.Equal(t, int64(2), stats.PendingOrders)
	assert.Equal(t, int64(1), stats.TotalCustomers)
	assert.Equal(t, int64(1), stats.LowStockMaterials)
	assert.True(t, decimal.NewFromInt(350).Equal(stats.Revenue), "got %s", stats.Revenue)
}
