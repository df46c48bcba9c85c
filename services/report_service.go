package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/otomono/jersey-orders-api/models"
	"github.com/otomono/jersey-orders-api/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CSVContentType is served for every export
const CSVContentType = "text/csv; charset=utf-8"

// ReportService builds CSV reports and jersey exports
type ReportService struct {
	db    *gorm.DB
	store S3Interface
	hub   Publisher
	now   func() time.Time
}

// NewReportService creates a report service; store may be nil to skip archiving
func NewReportService(db *gorm.DB, store S3Interface, hub Publisher) *ReportService {
	return &ReportService{
		db:    db,
		store: store,
		hub:   hub,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// GeneratedReport is the stored record plus the CSV bytes
type GeneratedReport struct {
	Report  *models.Report
	Content []byte
}

// Generate builds a report for the optional YYYY-MM-DD range, archives it and records it
func (s *ReportService) Generate(ctx context.Context, reportType, dateFrom, dateTo string) (*GeneratedReport, error) {
	if !models.IsValidReportType(reportType) {
		return nil, newValidationError("INVALID_REPORT_TYPE", "unknown report type %q", reportType)
	}
	dateRange, err := utils.ParseDateRange(dateFrom, dateTo)
	if err != nil {
		return nil, newValidationError("INVALID_DATE_RANGE", "%s", err.Error())
	}

	var content []byte
	switch reportType {
	case models.ReportSales:
		content, err = s.salesReport(ctx, dateRange)
	case models.ReportCustomer:
		content, err = s.customerReport(ctx, dateRange)
	case models.ReportInventory:
		content, err = s.inventoryReport(ctx)
	case models.ReportFinancial:
		content, err = s.financialReport(ctx, dateRange, dateFrom, dateTo)
	}
	if err != nil {
		return nil, err
	}

	now := s.now()
	report := &models.Report{
		Type:      reportType,
		FileName:  ReportFileName(reportType, now),
		SizeKB:    sizeKB(len(content)),
		Generated: now,
	}
	if dateFrom != "" {
		report.DateFrom = &dateFrom
	}
	if dateTo != "" {
		report.DateTo = &dateTo
	}

	if s.store != nil {
		key := fmt.Sprintf("reports/%s/%s", now.Format("20060102T150405"), report.FileName)
		if err := s.store.PutObject(ctx, key, content, CSVContentType); err != nil {
			return nil, err
		}
		report.StorageKey = key
	}

	if err := s.db.WithContext(ctx).Create(report).Error; err != nil {
		return nil, fmt.Errorf("failed to record report: %w", err)
	}

	log.Printf("[reports] generated %s (%.2f KB)", report.FileName, report.SizeKB)
	s.hub.Publish(ctx, TopicReports)
	return &GeneratedReport{Report: report, Content: content}, nil
}

// ReportFileName is <Type>_Report_YYYY-MM-DD.csv
func ReportFileName(reportType string, at time.Time) string {
	title := strings.ToUpper(reportType[:1]) + reportType[1:]
	return fmt.Sprintf("%s_Report_%s.csv", title, utils.FileDate(at))
}

// List returns the most recent reports
func (s *ReportService) List(ctx context.Context, limit int) ([]models.Report, error) {
	var reports []models.Report
	q := s.db.WithContext(ctx).Order("generated DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&reports).Error; err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// DownloadURL returns a presigned link to an archived report
func (s *ReportService) DownloadURL(ctx context.Context, id string) (string, error) {
	report, err := s.get(ctx, id)
	if err != nil {
		return "", err
	}
	if s.store == nil || report.StorageKey == "" {
		return "", ErrNotFound
	}
	return s.store.GetPresignedURL(ctx, report.StorageKey)
}

// Delete removes the report record and its archived file
func (s *ReportService) Delete(ctx context.Context, id string) error {
	report, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if s.store != nil && report.StorageKey != "" {
		if err := s.store.DeleteFile(ctx, report.StorageKey); err != nil {
			return err
		}
	}
	if err := s.db.WithContext(ctx).Delete(report).Error; err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	s.hub.Publish(ctx, TopicReports)
	return nil
}

func (s *ReportService) get(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	if err := s.db.WithContext(ctx).First(&report, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &report, nil
}

func (s *ReportService) ordersInRange(ctx context.Context, r utils.DateRange) ([]models.Order, error) {
	q := s.db.WithContext(ctx).Order("date ASC")
	if r.From != nil {
		q = q.Where("date >= ?", *r.From)
	}
	if r.To != nil {
		q = q.Where("date <= ?", *r.To)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	return orders, nil
}

// OrderRevenue is the displayed quantity times the material price captured at creation
func OrderRevenue(o models.Order) decimal.Decimal {
	if o.MaterialPrice == nil {
		return decimal.Zero
	}
	return o.MaterialPrice.Mul(decimal.NewFromInt(int64(models.DisplayQuantity(o))))
}

func (s *ReportService) salesReport(ctx context.Context, r utils.DateRange) ([]byte, error) {
	orders, err := s.ordersInRange(ctx, r)
	if err != nil {
		return nil, err
	}

	b := utils.NewCSVBuilder()
	b.Row("Order ID", "Customer Name", "Mobile", "Material", "Quantity", "Status", "Date", "Revenue")

	total := decimal.Zero
	for _, o := range orders {
		revenue := OrderRevenue(o)
		total = total.Add(revenue)
		b.Row(
			o.ID,
			utils.OrDefault(o.Customer, "N/A"),
			utils.OrDefault(o.Mobile, "N/A"),
			utils.OrDefault(o.Material, "N/A"),
			strconv.Itoa(models.DisplayQuantity(o)),
			o.Status,
			o.Date.Format(utils.DateLayout),
			utils.FormatMoney(revenue),
		)
	}

	avg := decimal.Zero
	if len(orders) > 0 {
		avg = total.Div(decimal.NewFromInt(int64(len(orders))))
	}
	b.Blank()
	b.Row("Summary")
	b.Row("Total Orders", strconv.Itoa(len(orders)))
	b.Row("Total Revenue", utils.FormatMoney(total))
	b.Row("Average Order Value", utils.FormatMoney(avg))
	return b.Bytes()
}

func (s *ReportService) customerReport(ctx context.Context, r utils.DateRange) ([]byte, error) {
	q := s.db.WithContext(ctx).Order("joined ASC")
	if r.From != nil {
		q = q.Where("joined >= ?", *r.From)
	}
	if r.To != nil {
		q = q.Where("joined <= ?", *r.To)
	}
	var customers []models.Customer
	if err := q.Find(&customers).Error; err != nil {
		return nil, fmt.Errorf("failed to load customers: %w", err)
	}

	type key struct{ name, phone string }
	var counts []struct {
		Customer string
		Mobile   string
		Total    int
	}
	if err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("customer, mobile, COUNT(*) AS total").
		Group("customer, mobile").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count orders per customer: %w", err)
	}
	orderCount := make(map[key]int, len(counts))
	for _, c := range counts {
		orderCount[key{c.Customer, c.Mobile}] = c.Total
	}

	b := utils.NewCSVBuilder()
	b.Row("Customer Name", "Email", "Phone", "Status", "Joined Date", "Total Orders")
	active := 0
	for _, c := range customers {
		if c.Status == models.CustomerActive {
			active++
		}
		b.Row(
			utils.OrDefault(c.Name, "N/A"),
			utils.OrDefault(c.Email, "N/A"),
			utils.OrDefault(c.Phone, "N/A"),
			utils.OrDefault(c.Status, models.CustomerActive),
			c.Joined.Format(utils.DateLayout),
			strconv.Itoa(orderCount[key{c.Name, c.Phone}]),
		)
	}

	b.Blank()
	b.Row("Summary")
	b.Row("Total Customers", strconv.Itoa(len(customers)))
	b.Row("Active Customers", strconv.Itoa(active))
	return b.Bytes()
}

func (s *ReportService) inventoryReport(ctx context.Context) ([]byte, error) {
	var materials []models.Material
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to load materials: %w", err)
	}

	b := utils.NewCSVBuilder()
	b.Row("Material Name", "Type", "Stock", "Price", "Status", "Low Stock Alert")

	var available, low, out int
	value := decimal.Zero
	for _, m := range materials {
		status := "Available"
		alert := "No"
		switch {
		case m.Stock <= 0:
			status, alert = "Out of Stock", "Yes"
			out++
		case m.IsLowStock():
			status, alert = "Low Stock", "Yes"
			low++
			available++
		default:
			available++
		}
		value = value.Add(m.Price.Mul(decimal.NewFromInt(int64(m.Stock))))
		b.Row(
			utils.OrDefault(m.Name, "N/A"),
			utils.OrDefault(m.Type, "N/A"),
			strconv.Itoa(m.Stock),
			utils.FormatMoney(m.Price),
			status,
			alert,
		)
	}

	b.Blank()
	b.Row("Summary")
	b.Row("Total Materials", strconv.Itoa(len(materials)))
	b.Row("Available", strconv.Itoa(available))
	b.Row("Low Stock", strconv.Itoa(low))
	b.Row("Out of Stock", strconv.Itoa(out))
	b.Row("Total Value", utils.FormatMoney(value))
	return b.Bytes()
}

func (s *ReportService) financialReport(ctx context.Context, r utils.DateRange, dateFrom, dateTo string) ([]byte, error) {
	orders, err := s.ordersInRange(ctx, r)
	if err != nil {
		return nil, err
	}

	revenue := decimal.Zero
	quantity := 0
	statusCounts := map[string]int{}
	for _, o := range orders {
		revenue = revenue.Add(OrderRevenue(o))
		quantity += models.DisplayQuantity(o)
		statusCounts[o.Status]++
	}

	avgValue, avgQty := decimal.Zero, decimal.Zero
	if n := int64(len(orders)); n > 0 {
		avgValue = revenue.Div(decimal.NewFromInt(n))
		avgQty = decimal.NewFromInt(int64(quantity)).Div(decimal.NewFromInt(n))
	}

	b := utils.NewCSVBuilder()
	b.Row("Financial Summary Report")
	b.Row("Generated", s.now().Format(time.RFC3339))
	if dateFrom != "" {
		b.Row("Date From", dateFrom)
	}
	if dateTo != "" {
		b.Row("Date To", dateTo)
	}
	b.Blank()

	b.Row("Metrics", "Value")
	b.Row("Total Revenue", utils.FormatMoney(revenue))
	b.Row("Total Orders", strconv.Itoa(len(orders)))
	b.Row("Total Quantity", strconv.Itoa(quantity))
	b.Row("Average Order Value", utils.FormatMoney(avgValue))
	b.Row("Average Quantity per Order", avgQty.StringFixed(2))
	b.Blank()

	b.Row("Order Status Breakdown")
	b.Row("Status", "Count")
	statuses := make([]string, 0, len(statusCounts))
	for status := range statusCounts {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		b.Row(status, strconv.Itoa(statusCounts[status]))
	}
	return b.Bytes()
}

// JerseyExport builds the per-order jersey detail CSV and its file name
func JerseyExport(order *models.Order, at time.Time) (string, []byte, error) {
	b := utils.NewCSVBuilder()
	b.Row("#", "Type", "Name", "Number", "Size Category", "Size", "Sleeve", "Shorts")
	for i, j := range order.Jerseys {
		b.Row(
			strconv.Itoa(i+1),
			utils.OrDefault(j.Type, "N/A"),
			utils.OrDefault(j.Name, "N/A"),
			utils.OrDefault(j.Number, "N/A"),
			utils.OrDefault(j.SizeCategory, "N/A"),
			utils.OrDefault(j.Size, "N/A"),
			utils.OrDefault(j.Sleeve, "N/A"),
			utils.OrDefault(j.Shorts, "N/A"),
		)
	}
	content, err := b.Bytes()
	if err != nil {
		return "", nil, err
	}
	name := fmt.Sprintf("jersey_details_%s_%s_%s.csv",
		utils.SafeFileComponent(order.Customer), order.ID, utils.FileDate(at))
	return name, content, nil
}

func sizeKB(n int) float64 {
	kb, _ := decimal.NewFromInt(int64(n)).Div(decimal.NewFromInt(1024)).Round(2).Float64()
	return kb
}
