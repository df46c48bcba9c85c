package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/otomono/jersey-orders-api/models"
	"github.com/otomono/jersey-orders-api/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func parseReport(t *testing.T, content []byte) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(content, []byte(utils.UTF8BOM)), "export must start with a BOM")
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(content, []byte(utils.UTF8BOM))))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)
	return rows
}

func findRow(rows [][]string, first string) []string {
	for _, row := range rows {
		if len(row) > 0 && row[0] == first {
			return row
		}
	}
	return nil
}

func seedOrder(t *testing.T, db *gorm.DB, customer, mobile, status string, amount int, price int64, date time.Time) models.Order {
	t.Helper()
	p := decimal.NewFromInt(price)
	o := models.Order{
		Customer:      customer,
		Mobile:        mobile,
		Material:      "Dri-Fit",
		MaterialPrice: &p,
		Status:        status,
		Amount:        amount,
		Date:          date,
	}
	require.NoError(t, db.Create(&o).Error)
	return o
}

func newReportFixture(t *testing.T) (*ReportService, *MockS3Service, *gorm.DB) {
	db := setupServiceTestDB(t)
	store := NewMockS3Service()
	svc := NewReportService(db, store, &recordingHub{})
	svc.now = func() time.Time { return time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC) }
	return svc, store, db
}

func TestSalesReport(t *testing.T) {
	svc, store, db := newReportFixture(t)
	ctx := context.Background()

	now := time.Now().UTC()
	seedOrder(t, db, "Lions FC", "111", models.StatusSubmitted, 5, 100, now)
	seedOrder(t, db, "Tigers, Inc", "222", models.StatusDraft, 3, 100, now)

	generated, err := svc.Generate(ctx, models.ReportSales, "", "")
	require.NoError(t, err)

	rows := parseReport(t, generated.Content)
	assert.Equal(t, []string{"Order ID", "Customer Name", "Mobile", "Material", "Quantity", "Status", "Date", "Revenue"}, rows[0])

	var draftRow []string
	for _, row := range rows[1:3] {
		if row[1] == "Tigers, Inc" {
			draftRow = row
		}
	}
	require.NotNil(t, draftRow, "commas in names must survive quoting")
	assert.Equal(t, "0", draftRow[4])
	assert.Equal(t, "$0.00", draftRow[7])

	assert.Equal(t, []string{"Total Orders", "2"}, findRow(rows, "Total Orders"))
	assert.Equal(t, []string{"Total Revenue", "$500.00"}, findRow(rows, "Total Revenue"))
	assert.Equal(t, []string{"Average Order Value", "$250.00"}, findRow(rows, "Average Order Value"))

	report := generated.Report
	assert.Equal(t, "Sales_Report_2026-03-14.csv", report.FileName)
	assert.Nil(t, report.DateFrom)
	assert.True(t, strings.HasPrefix(report.StorageKey, "reports/"))
	body, contentType, ok := store.Object(report.StorageKey)
	require.True(t, ok)
	assert.Equal(t, generated.Content, body)
	assert.Equal(t, CSVContentType, contentType)
}

func TestSalesReportDateRange(t *testing.T) {
	svc, _, db := newReportFixture(t)
	ctx := context.Background()

	seedOrder(t, db, "Early", "1", models.StatusSubmitted, 1, 10, time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC))
	seedOrder(t, db, "Inside", "2", models.StatusSubmitted, 2, 10, time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC))
	seedOrder(t, db, "Last day", "3", models.StatusSubmitted, 3, 10, time.Date(2026, 1, 31, 22, 0, 0, 0, time.UTC))
	seedOrder(t, db, "Late", "4", models.StatusSubmitted, 4, 10, time.Date(2026, 2, 1, 1, 0, 0, 0, time.UTC))

	generated, err := svc.Generate(ctx, models.ReportSales, "2026-01-01", "2026-01-31")
	require.NoError(t, err)

	rows := parseReport(t, generated.Content)
	assert.Equal(t, []string{"Total Orders", "2"}, findRow(rows, "Total Orders"))
	assert.Equal(t, []string{"Total Revenue", "$50.00"}, findRow(rows, "Total Revenue"))
	require.NotNil(t, generated.Report.DateFrom)
	assert.Equal(t, "2026-01-01", *generated.Report.DateFrom)

	_, err = svc.Generate(ctx, models.ReportSales, "2026-02-01", "2026-01-01")
	assert.True(t, IsValidation(err))
	_, err = svc.Generate(ctx, "weekly", "", "")
	assert.True(t, IsValidation(err))
}

func TestCustomerReport(t *testing.T) {
	svc, _, db := newReportFixture(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Customer{Name: "Lions FC", Phone: "111", Email: "lions@example.com"}).Error)
	require.NoError(t, db.Create(&models.Customer{Name: "Tigers", Phone: "222", Status: models.CustomerInactive}).Error)
	now := time.Now().UTC()
	seedOrder(t, db, "Lions FC", "111", models.StatusSubmitted, 1, 10, now)
	seedOrder(t, db, "Lions FC", "111", models.StatusPending, 0, 10, now)
	seedOrder(t, db, "Lions FC", "999", models.StatusPending, 0, 10, now)

	generated, err := svc.Generate(ctx, models.ReportCustomer, "", "")
	require.NoError(t, err)
	rows := parseReport(t, generated.Content)

	assert.Equal(t, []string{"Customer Name", "Email", "Phone", "Status", "Joined Date", "Total Orders"}, rows[0])
	lions := findRow(rows, "Lions FC")
	require.NotNil(t, lions)
	assert.Equal(t, "2", lions[5])
	tigers := findRow(rows, "Tigers")
	require.NotNil(t, tigers)
	assert.Equal(t, "N/A", tigers[1])
	assert.Equal(t, "0", tigers[5])

	assert.Equal(t, []string{"Total Customers", "2"}, findRow(rows, "Total Customers"))
	assert.Equal(t, []string{"Active Customers", "1"}, findRow(rows, "Active Customers"))
}

func TestInventoryReport(t *testing.T) {
	svc, _, db := newReportFixture(t)
	ctx := context.Background()

	for _, m := range []models.Material{
		{Name: "Cotton", Type: "Natural", Price: decimal.NewFromInt(10), Stock: 0},
		{Name: "Dri-Fit", Type: "Synthetic", Price: decimal.NewFromInt(20), Stock: 5},
		{Name: "Mesh", Type: "Synthetic", Price: decimal.RequireFromString("1.50"), Stock: 50},
	} {
		m := m
		require.NoError(t, db.Create(&m).Error)
	}

	generated, err := svc.Generate(ctx, models.ReportInventory, "", "")
	require.NoError(t, err)
	rows := parseReport(t, generated.Content)

	assert.Equal(t, []string{"Material Name", "Type", "Stock", "Price", "Status", "Low Stock Alert"}, rows[0])
	assert.Equal(t, []string{"Cotton", "Natural", "0", "$10.00", "Out of Stock", "Yes"}, findRow(rows, "Cotton"))
	assert.Equal(t, []string{"Dri-Fit", "Synthetic", "5", "$20.00", "Low Stock", "Yes"}, findRow(rows, "Dri-Fit"))
	assert.Equal(t, []string{"Mesh", "Synthetic", "50", "$1.50", "Available", "No"}, findRow(rows, "Mesh"))

	assert.Equal(t, []string{"Total Materials", "3"}, findRow(rows, "Total Materials"))
	assert.Equal(t, []string{"Out of Stock", "1"}, findRow(rows, "Out of Stock"))
	assert.Equal(t, []string{"Total Value", "$175.00"}, findRow(rows, "Total Value"))
}

func TestFinancialReport(t *testing.T) {
	svc, _, db := newReportFixture(t)
	ctx := context.Background()

	now := time.Now().UTC()
	seedOrder(t, db, "A", "1", models.StatusSubmitted, 4, 100, now)
	seedOrder(t, db, "B", "2", models.StatusCompleted, 2, 50, now)
	seedOrder(t, db, "C", "3", models.StatusPending, 9, 100, now)

	generated, err := svc.Generate(ctx, models.ReportFinancial, "", "")
	require.NoError(t, err)
	rows := parseReport(t, generated.Content)

	assert.Equal(t, "Financial Summary Report", rows[0][0])
	assert.Equal(t, []string{"Metrics", "Value"}, findRow(rows, "Metrics"))
	assert.Equal(t, []string{"Total Revenue", "$500.00"}, findRow(rows, "Total Revenue"))
	assert.Equal(t, []string{"Total Orders", "3"}, findRow(rows, "Total Orders"))
	assert.Equal(t, []string{"Total Quantity", "6"}, findRow(rows, "Total Quantity"))
	assert.Equal(t, []string{"Average Quantity per Order", "2.00"}, findRow(rows, "Average Quantity per Order"))
	assert.Equal(t, []string{"Status", "Count"}, findRow(rows, "Status"))
	assert.Equal(t, []string{"pending", "1"}, findRow(rows, "pending"))
	assert.Equal(t, []string{"submitted", "1"}, findRow(rows, "submitted"))
}

func TestReportListDownloadDelete(t *testing.T) {
	svc, store, _ := newReportFixture(t)
	ctx := context.Background()

	generated, err := svc.Generate(ctx, models.ReportInventory, "", "")
	require.NoError(t, err)

	reports, err := svc.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "Inventory_Report_2026-03-14.csv", reports[0].FileName)

	url, err := svc.DownloadURL(ctx, generated.Report.ID)
	require.NoError(t, err)
	assert.Contains(t, url, generated.Report.StorageKey)

	require.NoError(t, svc.Delete(ctx, generated.Report.ID))
	assert.Equal(t, 0, store.Len())
	assert.ErrorIs(t, svc.Delete(ctx, generated.Report.ID), ErrNotFound)
	_, err = svc.DownloadURL(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestJerseyExport(t *testing.T) {
	order := &models.Order{
		ID:       "0f8fad5b-d9cb-469f-a165-70867728950e",
		Customer: "Lions FC",
		Jerseys: []models.Jersey{
			{Type: "Home", Name: "Santos, Jr.", Number: "7", SizeCategory: "Adult", Size: "L", Sleeve: "Short", Shorts: "L"},
			{Type: "Away", Name: "Cruz", Number: "10", SizeCategory: "Kids", Size: "S", Sleeve: "Long", Shorts: ""},
		},
	}

	name, content, err := JerseyExport(order, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "jersey_details_Lions_FC_0f8fad5b-d9cb-469f-a165-70867728950e_2026-05-01.csv", name)

	rows := parseReport(t, content)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"#", "Type", "Name", "Number", "Size Category", "Size", "Sleeve", "Shorts"}, rows[0])
	assert.Equal(t, []string{"1", "Home", "Santos, Jr.", "7", "Adult", "L", "Short", "L"}, rows[1])
	assert.Equal(t, "N/A", rows[2][7])
}
