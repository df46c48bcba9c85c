package services

import (
	"context"
	"fmt"

	"github.com/otomono/jersey-orders-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardStats are the admin dashboard KPIs
type DashboardStats struct {
	TotalOrders       int64           `json:"total_orders"`
	PendingOrders     int64           `json:"pending_orders"`
	TotalCustomers    int64           `json:"total_customers"`
	Revenue           decimal.Decimal `json:"revenue"`
	LowStockMaterials int64           `json:"low_stock_materials"`
}

// DashboardService computes dashboard KPIs
type DashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a dashboard service
func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Stats gathers the KPIs; revenue counts submitted and completed orders only
func (s *DashboardService) Stats(ctx context.Context) (*DashboardStats, error) {
	db := s.db.WithContext(ctx)
	var stats DashboardStats

	if err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	if err := db.Model(&models.Order{}).
		Where("status IN ?", []string{models.StatusPending, models.StatusDraft}).
		Count(&stats.PendingOrders).Error; err != nil {
		return nil, fmt.Errorf("failed to count pending orders: %w", err)
	}
	if err := db.Model(&models.Customer{}).Count(&stats.TotalCustomers).Error; err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	if err := db.Model(&models.Material{}).
		Where("stock < ?", models.LowStockThreshold).
		Count(&stats.LowStockMaterials).Error; err != nil {
		return nil, fmt.Errorf("failed to count low stock materials: %w", err)
	}

	var billed []models.Order
	if err := db.Where("status IN ?", []string{models.StatusSubmitted, models.StatusCompleted}).
		Find(&billed).Error; err != nil {
		return nil, fmt.Errorf("failed to load billed orders: %w", err)
	}
	stats.Revenue = decimal.Zero
	for _, o := range billed {
		stats.Revenue = stats.Revenue.Add(OrderRevenue(o))
	}
	return &stats, nil
}
