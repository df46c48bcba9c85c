package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/otomono/jersey-orders-api/models"
	"github.com/otomono/jersey-orders-api/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CatalogService manages customers, materials and suppliers
type CatalogService struct {
	db  *gorm.DB
	hub Publisher
}

// NewCatalogService creates a catalog service
func NewCatalogService(db *gorm.DB, hub Publisher) *CatalogService {
	return &CatalogService{db: db, hub: hub}
}

// CustomerInput carries customer fields; nil means unchanged on update
type CustomerInput struct {
	Name   *string `json:"name"`
	Phone  *string `json:"phone"`
	Email  *string `json:"email"`
	Status *string `json:"status"`
}

// MaterialInput carries material fields; nil means unchanged on update
type MaterialInput struct {
	Name  *string          `json:"name"`
	Type  *string          `json:"type"`
	Price *decimal.Decimal `json:"price"`
	Stock *int             `json:"stock"`
}

// SupplierInput carries supplier fields; nil means unchanged on update
type SupplierInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Status   *string `json:"status"`
	Location *string `json:"location"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func page(db *gorm.DB, pageNum, limit int) *gorm.DB {
	if limit > 0 {
		return db.Limit(limit).Offset((pageNum - 1) * limit)
	}
	return db
}

func findOne(ctx context.Context, db *gorm.DB, dest interface{}, id string) error {
	if err := db.WithContext(ctx).First(dest, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func deleteOne(ctx context.Context, db *gorm.DB, model interface{}, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCustomers returns one page of customers, most recently joined first
func (s *CatalogService) ListCustomers(ctx context.Context, pageNum, limit int, search string) ([]models.Customer, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.Customer{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		db = db.Where("LOWER(name) LIKE ? OR phone LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count customers: %w", err)
	}
	var customers []models.Customer
	if err := page(db, pageNum, limit).Order("joined DESC").Find(&customers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, total, nil
}

// GetCustomer loads one customer
func (s *CatalogService) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	var c models.Customer
	if err := findOne(ctx, s.db, &c, id); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCustomer adds a customer; (name, phone) must be unique
func (s *CatalogService) CreateCustomer(ctx context.Context, in CustomerInput) (*models.Customer, error) {
	c := &models.Customer{
		Name:   str(in.Name),
		Phone:  str(in.Phone),
		Email:  str(in.Email),
		Status: str(in.Status),
	}
	if missing := utils.MissingFields(map[string]string{"name": c.Name, "phone": c.Phone}); len(missing) > 0 {
		return nil, &ValidationError{Code: "VALIDATION_ERROR", Message: "missing required fields", Fields: missing}
	}
	if err := validateCustomer(c); err != nil {
		return nil, err
	}

	var dup int64
	if err := s.db.WithContext(ctx).Model(&models.Customer{}).
		Where("name = ? AND phone = ?", c.Name, c.Phone).Count(&dup).Error; err != nil {
		return nil, fmt.Errorf("failed to check customer: %w", err)
	}
	if dup > 0 {
		return nil, newValidationError("DUPLICATE_CUSTOMER", "customer %s with phone %s already exists", c.Name, c.Phone)
	}

	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	s.hub.Publish(ctx, TopicCustomers)
	return c, nil
}

// UpdateCustomer changes the provided customer fields
func (s *CatalogService) UpdateCustomer(ctx context.Context, id string, in CustomerInput) (*models.Customer, error) {
	c, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		c.Name = str(in.Name)
	}
	if in.Phone != nil {
		c.Phone = str(in.Phone)
	}
	if in.Email != nil {
		c.Email = str(in.Email)
	}
	if in.Status != nil {
		c.Status = str(in.Status)
	}
	if c.Name == "" || c.Phone == "" {
		return nil, newValidationError("VALIDATION_ERROR", "name and phone cannot be empty")
	}
	if err := validateCustomer(c); err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(c).Updates(map[string]interface{}{
		"name":   c.Name,
		"phone":  c.Phone,
		"email":  c.Email,
		"status": c.Status,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}
	s.hub.Publish(ctx, TopicCustomers)
	return c, nil
}

// DeleteCustomer removes a customer record; their orders are kept
func (s *CatalogService) DeleteCustomer(ctx context.Context, id string) error {
	if err := deleteOne(ctx, s.db, &models.Customer{}, id); err != nil {
		return err
	}
	s.hub.Publish(ctx, TopicCustomers)
	return nil
}

func validateCustomer(c *models.Customer) error {
	if c.Email != "" && !utils.IsValidEmail(c.Email) {
		return newValidationError("INVALID_EMAIL", "invalid email address")
	}
	switch c.Status {
	case "", models.CustomerActive, models.CustomerInactive:
	default:
		return newValidationError("INVALID_STATUS", "unknown customer status %q", c.Status)
	}
	return nil
}

// ListMaterials returns every material ordered by name
func (s *CatalogService) ListMaterials(ctx context.Context) ([]models.Material, error) {
	var materials []models.Material
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&materials).Error; err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	return materials, nil
}

// GetMaterial loads one material
func (s *CatalogService) GetMaterial(ctx context.Context, id string) (*models.Material, error) {
	var m models.Material
	if err := findOne(ctx, s.db, &m, id); err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMaterial adds a material; status is derived from stock
func (s *CatalogService) CreateMaterial(ctx context.Context, in MaterialInput) (*models.Material, error) {
	m := &models.Material{Name: str(in.Name), Type: str(in.Type)}
	if in.Price != nil {
		m.Price = *in.Price
	}
	if in.Stock != nil {
		m.Stock = *in.Stock
	}
	if missing := utils.MissingFields(map[string]string{"name": m.Name, "type": m.Type}); len(missing) > 0 {
		return nil, &ValidationError{Code: "VALIDATION_ERROR", Message: "missing required fields", Fields: missing}
	}
	if err := validateMaterial(m); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}
	s.hub.Publish(ctx, TopicMaterials)
	return m, nil
}

// UpdateMaterial changes the provided material fields
func (s *CatalogService) UpdateMaterial(ctx context.Context, id string, in MaterialInput) (*models.Material, error) {
	m, err := s.GetMaterial(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		m.Name = str(in.Name)
	}
	if in.Type != nil {
		m.Type = str(in.Type)
	}
	if in.Price != nil {
		m.Price = *in.Price
	}
	if in.Stock != nil {
		m.Stock = *in.Stock
	}
	if m.Name == "" || m.Type == "" {
		return nil, newValidationError("VALIDATION_ERROR", "name and type cannot be empty")
	}
	if err := validateMaterial(m); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return nil, fmt.Errorf("failed to update material: %w", err)
	}
	s.hub.Publish(ctx, TopicMaterials)
	return m, nil
}

// DeleteMaterial removes a material; orders keep their snapshot
func (s *CatalogService) DeleteMaterial(ctx context.Context, id string) error {
	if err := deleteOne(ctx, s.db, &models.Material{}, id); err != nil {
		return err
	}
	s.hub.Publish(ctx, TopicMaterials)
	return nil
}

func validateMaterial(m *models.Material) error {
	if !m.Price.IsPositive() {
		return newValidationError("INVALID_PRICE", "price must be greater than zero")
	}
	if m.Stock < 0 {
		return newValidationError("INVALID_STOCK", "stock cannot be negative")
	}
	return nil
}

// ListSuppliers returns every supplier ordered by name
func (s *CatalogService) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&suppliers).Error; err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return suppliers, nil
}

// GetSupplier loads one supplier
func (s *CatalogService) GetSupplier(ctx context.Context, id string) (*models.Supplier, error) {
	var sup models.Supplier
	if err := findOne(ctx, s.db, &sup, id); err != nil {
		return nil, err
	}
	return &sup, nil
}

// CreateSupplier adds a supplier
func (s *CatalogService) CreateSupplier(ctx context.Context, in SupplierInput) (*models.Supplier, error) {
	sup := &models.Supplier{
		Name:     str(in.Name),
		Email:    str(in.Email),
		Status:   str(in.Status),
		Location: str(in.Location),
	}
	if sup.Status == "" {
		sup.Status = models.SupplierActive
	}
	if missing := utils.MissingFields(map[string]string{
		"name":     sup.Name,
		"email":    sup.Email,
		"location": sup.Location,
	}); len(missing) > 0 {
		return nil, &ValidationError{Code: "VALIDATION_ERROR", Message: "missing required fields", Fields: missing}
	}
	if err := validateSupplier(sup); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(sup).Error; err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}
	s.hub.Publish(ctx, TopicSuppliers)
	return sup, nil
}

// UpdateSupplier changes the provided supplier fields
func (s *CatalogService) UpdateSupplier(ctx context.Context, id string, in SupplierInput) (*models.Supplier, error) {
	sup, err := s.GetSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		sup.Name = str(in.Name)
	}
	if in.Email != nil {
		sup.Email = str(in.Email)
	}
	if in.Status != nil {
		sup.Status = str(in.Status)
	}
	if in.Location != nil {
		sup.Location = str(in.Location)
	}
	if sup.Name == "" || sup.Location == "" {
		return nil, newValidationError("VALIDATION_ERROR", "name and location cannot be empty")
	}
	if err := validateSupplier(sup); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(sup).Updates(map[string]interface{}{
		"name":     sup.Name,
		"email":    sup.Email,
		"status":   sup.Status,
		"location": sup.Location,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	s.hub.Publish(ctx, TopicSuppliers)
	return sup, nil
}

// DeleteSupplier removes a supplier and clears it from orders
func (s *CatalogService) DeleteSupplier(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("supplier_id = ?", id).Update("supplier_id", nil).Error; err != nil {
			return err
		}
		return deleteOne(ctx, tx, &models.Supplier{}, id)
	})
	if err != nil {
		return err
	}
	s.hub.Publish(ctx, TopicSuppliers, TopicOrders)
	return nil
}

func validateSupplier(sup *models.Supplier) error {
	if !utils.IsValidEmail(sup.Email) {
		return newValidationError("INVALID_EMAIL", "invalid email address")
	}
	if !models.IsValidSupplierStatus(sup.Status) {
		return newValidationError("INVALID_STATUS", "unknown supplier status %q", sup.Status)
	}
	return nil
}
