package services

import (
	"context"
	"testing"

	"github.com/otomono/jersey-orders-api/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweepLowStock(t *testing.T) {
	db := setupServiceTestDB(t)
	notifications := NewNotificationService(db, &recordingHub{})
	scheduler := NewStockScheduler(db, notifications, "@daily")
	ctx := context.Background()

	for _, m := range []models.Material{
		{Name: "Cotton", Type: "Natural", Price: decimal.NewFromInt(10), Stock: 0},
		{Name: "Dri-Fit", Type: "Synthetic", Price: decimal.NewFromInt(20), Stock: 3},
		{Name: "Mesh", Type: "Synthetic", Price: decimal.NewFromInt(5), Stock: 80},
	} {
		m := m
		require.NoError(t, db.Create(&m).Error)
	}

	created, err := scheduler.SweepLowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	list, err := notifications.List(ctx, false, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	messages := []string{list[0].Message, list[1].Message}
	assert.Contains(t, messages, "Cotton is out of stock")
	assert.Contains(t, messages, "Dri-Fit is running low (3 left)")
	assert.Equal(t, "warning", list[0].Type)

	// Unread alerts are not repeated
	created, err = scheduler.SweepLowStock(ctx)
	require.NoError(t, err)
	assert.Zero(t, created)

	// Once read, the next sweep raises them again
	_, err = notifications.MarkAllRead(ctx)
	require.NoError(t, err)
	created, err = scheduler.SweepLowStock(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, created)
}

func TestStockSchedulerStartStop(t *testing.T) {
	db := setupServiceTestDB(t)
	notifications := NewNotificationService(db, &recordingHub{})

	bad := NewStockScheduler(db, notifications, "not a schedule")
	assert.Error(t, bad.Start())

	good := NewStockScheduler(db, notifications, "0 8 * * *")
	require.NoError(t, good.Start())
	good.Stop()
}
