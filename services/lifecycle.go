package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/otomono/jersey-orders-api/models"
	"github.com/otomono/jersey-orders-api/utils"
	"gorm.io/gorm"
)

// OrderService is the order and jersey lifecycle engine shared by the admin
// console and the customer portal
type OrderService struct {
	db            *gorm.DB
	hub           Publisher
	notifications *NotificationService
	baseURL       string
	now           func() time.Time
}

// NewOrderService creates the lifecycle engine
func NewOrderService(db *gorm.DB, hub Publisher, notifications *NotificationService, baseURL string) *OrderService {
	return &OrderService{
		db:            db,
		hub:           hub,
		notifications: notifications,
		baseURL:       strings.TrimRight(baseURL, "/"),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateOrderInput holds the admin-entered fields of a new order
type CreateOrderInput struct {
	Customer   string  `json:"customer"`
	Mobile     string  `json:"mobile"`
	Email      string  `json:"email"`
	Material   string  `json:"material"`
	MaterialID *string `json:"material_id"`
	SupplierID *string `json:"supplier_id"`
}

// UpdateOrderInput holds the editable contact and material fields; nil means unchanged
type UpdateOrderInput struct {
	Customer   *string `json:"customer"`
	Mobile     *string `json:"mobile"`
	Email      *string `json:"email"`
	Material   *string `json:"material"`
	MaterialID *string `json:"material_id"`
	SupplierID *string `json:"supplier_id"`
}

// OrderQuery filters and pages the order listing
type OrderQuery struct {
	Page   int
	Limit  int
	Status string
	Search string
}

// DeleteJerseyResult describes the sub-collection after a delete
type DeleteJerseyResult struct {
	Remaining     int  `json:"remaining"`
	ShowEntryForm bool `json:"show_entry_form"`
}

// SubmitResult describes a completed customer submission
type SubmitResult struct {
	Order       *models.Order `json:"order"`
	Flushed     int           `json:"flushed"`
	JerseyCount int           `json:"jersey_count"`
}

// CreateOrder validates and stores a new pending order with its portal link
func (s *OrderService) CreateOrder(ctx context.Context, in CreateOrderInput) (*models.Order, error) {
	in.Customer = strings.TrimSpace(in.Customer)
	in.Mobile = strings.TrimSpace(in.Mobile)
	in.Email = strings.TrimSpace(in.Email)
	in.Material = strings.TrimSpace(in.Material)

	if missing := utils.MissingFields(map[string]string{
		"customer": in.Customer,
		"mobile":   in.Mobile,
	}); len(missing) > 0 {
		return nil, &ValidationError{Code: "VALIDATION_ERROR", Message: "missing required fields", Fields: missing}
	}
	if in.Email != "" && !utils.IsValidEmail(in.Email) {
		return nil, newValidationError("INVALID_EMAIL", "invalid email address")
	}

	order := &models.Order{
		ID:         uuid.NewString(),
		Customer:   in.Customer,
		Mobile:     in.Mobile,
		Status:     models.StatusPending,
		SupplierID: in.SupplierID,
	}
	if in.Email != "" {
		order.Email = &in.Email
	}

	if err := s.applyMaterial(ctx, s.db, order, in.MaterialID, in.Material); err != nil {
		return nil, err
	}
	if err := s.checkSupplier(ctx, s.db, in.SupplierID); err != nil {
		return nil, err
	}

	token, err := GenerateLinkToken()
	if err != nil {
		return nil, err
	}
	order.LinkToken = token
	order.CustomerLink = BuildCustomerLink(s.baseURL, order.ID, token)

	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	log.Printf("[orders] created order %s for %s", order.ID, order.Customer)
	s.hub.Publish(ctx, TopicOrders)
	return order, nil
}

// applyMaterial snapshots the material name and price onto the order
func (s *OrderService) applyMaterial(ctx context.Context, db *gorm.DB, order *models.Order, materialID *string, name string) error {
	if materialID != nil && *materialID != "" {
		var material models.Material
		if err := db.WithContext(ctx).First(&material, "id = ?", *materialID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return newValidationError("MATERIAL_NOT_FOUND", "material %s does not exist", *materialID)
			}
			return fmt.Errorf("failed to load material: %w", err)
		}
		price := material.Price
		id := material.ID
		order.MaterialID = &id
		order.MaterialPrice = &price
		order.Material = material.Name
		order.Product = material.Name
		return nil
	}
	if name == "" {
		return &ValidationError{Code: "VALIDATION_ERROR", Message: "missing required fields", Fields: []string{"material"}}
	}
	order.Material = name
	order.Product = name
	return nil
}

func (s *OrderService) checkSupplier(ctx context.Context, db *gorm.DB, supplierID *string) error {
	if supplierID == nil || *supplierID == "" {
		return nil
	}
	var count int64
	if err := db.WithContext(ctx).Model(&models.Supplier{}).Where("id = ?", *supplierID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check supplier: %w", err)
	}
	if count == 0 {
		return newValidationError("SUPPLIER_NOT_FOUND", "supplier %s does not exist", *supplierID)
	}
	return nil
}

// ListOrders returns one page of orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, q OrderQuery) ([]models.Order, int64, error) {
	db := s.db.WithContext(ctx).Model(&models.Order{})
	if q.Status != "" {
		if !models.IsValidStatus(q.Status) {
			return nil, 0, newValidationError("INVALID_STATUS", "unknown status %q", q.Status)
		}
		db = db.Where("status = ?", q.Status)
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		db = db.Where("LOWER(customer) LIKE ? OR LOWER(mobile) LIKE ? OR LOWER(material) LIKE ? OR LOWER(id) LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	if q.Limit > 0 {
		db = db.Limit(q.Limit).Offset((q.Page - 1) * q.Limit)
	}
	var orders []models.Order
	if err := db.Order("date DESC").Find(&orders).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, total, nil
}

// GetOrder loads an order with its jerseys in creation order
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.loadOrder(ctx, s.db, id, true)
}

func (s *OrderService) loadOrder(ctx context.Context, db *gorm.DB, id string, withJerseys bool) (*models.Order, error) {
	q := db.WithContext(ctx)
	if withJerseys {
		q = q.Preload("Jerseys", func(db *gorm.DB) *gorm.DB {
			return db.Order("created ASC")
		})
	}
	var order models.Order
	if err := q.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to load order: %w", err)
	}
	return &order, nil
}

// UpdateOrder changes contact or material fields; status and amount are never set here
func (s *OrderService) UpdateOrder(ctx context.Context, id string, in UpdateOrderInput) (*models.Order, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.loadOrder(ctx, tx, id, false)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if in.Customer != nil {
			v := strings.TrimSpace(*in.Customer)
			if v == "" {
				return &ValidationError{Code: "VALIDATION_ERROR", Message: "missing required fields", Fields: []string{"customer"}}
			}
			updates["customer"] = v
		}
		if in.Mobile != nil {
			v := strings.TrimSpace(*in.Mobile)
			if v == "" {
				return &ValidationError{Code: "VALIDATION_ERROR", Message: "missing required fields", Fields: []string{"mobile"}}
			}
			updates["mobile"] = v
		}
		if in.Email != nil {
			v := strings.TrimSpace(*in.Email)
			if v != "" && !utils.IsValidEmail(v) {
				return newValidationError("INVALID_EMAIL", "invalid email address")
			}
			if v == "" {
				updates["email"] = nil
			} else {
				updates["email"] = v
			}
		}
		if in.MaterialID != nil || in.Material != nil {
			name := ""
			if in.Material != nil {
				name = strings.TrimSpace(*in.Material)
			}
			if err := s.applyMaterial(ctx, tx, order, in.MaterialID, name); err != nil {
				return err
			}
			updates["material"] = order.Material
			updates["product"] = order.Product
			updates["material_id"] = order.MaterialID
			updates["material_price"] = order.MaterialPrice
		}
		if in.SupplierID != nil {
			if *in.SupplierID == "" {
				updates["supplier_id"] = nil
			} else {
				if err := s.checkSupplier(ctx, tx, in.SupplierID); err != nil {
					return err
				}
				updates["supplier_id"] = *in.SupplierID
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ctx, TopicOrders, OrderTopic(id))
	return s.GetOrder(ctx, id)
}

// DeleteOrder removes an order together with its jerseys and buffered drafts
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.Jersey{}).Error; err != nil {
			return fmt.Errorf("failed to delete jerseys: %w", err)
		}
		if err := tx.Where("order_id = ?", id).Delete(&models.JerseyDraft{}).Error; err != nil {
			return fmt.Errorf("failed to delete drafts: %w", err)
		}
		res := tx.Where("id = ?", id).Delete(&models.Order{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrOrderNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[orders] deleted order %s", id)
	s.hub.Publish(ctx, TopicOrders, OrderTopic(id))
	return nil
}

// SetStatus applies a manual admin status change
func (s *OrderService) SetStatus(ctx context.Context, id, status string) (*models.Order, error) {
	if !models.IsValidStatus(status) {
		return nil, newValidationError("INVALID_STATUS", "unknown status %q", status)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.loadOrder(ctx, tx, id, false)
		if err != nil {
			return err
		}
		if !models.CanTransition(order.Status, status, models.ActorAdmin) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, status)
		}
		updates := map[string]interface{}{"status": status}
		if status == models.StatusDraft {
			updates["admin_modified"] = s.now()
		}
		return tx.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ctx, TopicOrders, OrderTopic(id))
	return s.GetOrder(ctx, id)
}

// ValidateJerseyFields trims the fields and checks that all seven are present
// and that the number is digits only
func ValidateJerseyFields(f models.JerseyFields) (models.JerseyFields, error) {
	f = models.JerseyFields{
		Type:         strings.TrimSpace(f.Type),
		Name:         strings.TrimSpace(f.Name),
		Number:       strings.TrimSpace(f.Number),
		SizeCategory: strings.TrimSpace(f.SizeCategory),
		Size:         strings.TrimSpace(f.Size),
		Sleeve:       strings.TrimSpace(f.Sleeve),
		Shorts:       strings.TrimSpace(f.Shorts),
	}
	if missing := utils.MissingFields(map[string]string{
		"type":          f.Type,
		"name":          f.Name,
		"number":        f.Number,
		"size_category": f.SizeCategory,
		"size":          f.Size,
		"sleeve":        f.Sleeve,
		"shorts":        f.Shorts,
	}); len(missing) > 0 {
		return f, &ValidationError{Code: "VALIDATION_ERROR", Message: "missing required fields", Fields: missing}
	}
	if !utils.IsNumeric(f.Number) {
		return f, newValidationError("INVALID_NUMBER", "jersey number must contain digits only")
	}
	return f, nil
}

// AddJersey creates a jersey as the admin, forces the order back to draft and recounts
func (s *OrderService) AddJersey(ctx context.Context, orderID string, fields models.JerseyFields) (*models.Jersey, error) {
	fields, err := ValidateJerseyFields(fields)
	if err != nil {
		return nil, err
	}

	jersey := &models.Jersey{OrderID: orderID}
	fields.Apply(jersey)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.lockForAdminEdit(ctx, tx, orderID); err != nil {
			return err
		}
		if err := tx.Create(jersey).Error; err != nil {
			return fmt.Errorf("failed to create jersey: %w", err)
		}
		return s.markAdminModified(ctx, tx, orderID)
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ctx, TopicOrders, OrderTopic(orderID))
	return jersey, nil
}

// UpdateJersey replaces all mutable fields of a jersey as the admin
func (s *OrderService) UpdateJersey(ctx context.Context, orderID, jerseyID string, fields models.JerseyFields) (*models.Jersey, error) {
	fields, err := ValidateJerseyFields(fields)
	if err != nil {
		return nil, err
	}

	var jersey models.Jersey
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.lockForAdminEdit(ctx, tx, orderID); err != nil {
			return err
		}
		res := tx.Model(&models.Jersey{}).
			Where("id = ? AND order_id = ?", jerseyID, orderID).
			Updates(fields.UpdateMap())
		if res.Error != nil {
			return fmt.Errorf("failed to update jersey: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrJerseyNotFound
		}
		if err := s.markAdminModified(ctx, tx, orderID); err != nil {
			return err
		}
		return tx.First(&jersey, "id = ?", jerseyID).Error
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ctx, TopicOrders, OrderTopic(orderID))
	return &jersey, nil
}

// DeleteJersey removes a persisted jersey and recounts. Admin deletes force the
// order to draft; customer deletes are only allowed before submission.
func (s *OrderService) DeleteJersey(ctx context.Context, orderID, jerseyID, actor string) (*DeleteJerseyResult, error) {
	result := &DeleteJerseyResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch actor {
		case models.ActorAdmin:
			if _, err := s.lockForAdminEdit(ctx, tx, orderID); err != nil {
				return err
			}
		case models.ActorCustomer:
			order, err := s.loadOrder(ctx, tx, orderID, false)
			if err != nil {
				return err
			}
			if !models.CanTransition(order.Status, models.StatusSubmitted, models.ActorCustomer) {
				return ErrAlreadySubmitted
			}
		default:
			return fmt.Errorf("unknown actor %q", actor)
		}

		res := tx.Where("id = ? AND order_id = ?", jerseyID, orderID).Delete(&models.Jersey{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete jersey: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrJerseyNotFound
		}

		var count int
		var err error
		if actor == models.ActorAdmin {
			err = s.markAdminModified(ctx, tx, orderID)
			if err == nil {
				count, err = countJerseys(ctx, tx, orderID)
			}
		} else {
			count, err = recount(ctx, tx, orderID)
		}
		if err != nil {
			return err
		}
		result.Remaining = count
		result.ShowEntryForm = count == 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Publish(ctx, TopicOrders, OrderTopic(orderID))
	return result, nil
}

// Recount sets the order amount to the number of persisted jerseys
func (s *OrderService) Recount(ctx context.Context, orderID string) (int, error) {
	var count int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.loadOrder(ctx, tx, orderID, false); err != nil {
			return err
		}
		var err error
		count, err = recount(ctx, tx, orderID)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.hub.Publish(ctx, TopicOrders, OrderTopic(orderID))
	return count, nil
}

// lockForAdminEdit loads the order and rejects edits the admin may not make
func (s *OrderService) lockForAdminEdit(ctx context.Context, tx *gorm.DB, orderID string) (*models.Order, error) {
	order, err := s.loadOrder(ctx, tx, orderID, false)
	if err != nil {
		return nil, err
	}
	if order.Status == models.StatusCompleted {
		return nil, ErrOrderLocked
	}
	if !models.CanTransition(order.Status, models.StatusDraft, models.ActorAdmin) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, models.StatusDraft)
	}
	return order, nil
}

// markAdminModified recounts and forces the order to draft
func (s *OrderService) markAdminModified(ctx context.Context, tx *gorm.DB, orderID string) error {
	count, err := countJerseys(ctx, tx, orderID)
	if err != nil {
		return err
	}
	return tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"amount":         count,
		"status":         models.StatusDraft,
		"admin_modified": s.now(),
	}).Error
}

func countJerseys(ctx context.Context, tx *gorm.DB, orderID string) (int, error) {
	var count int64
	if err := tx.WithContext(ctx).Model(&models.Jersey{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count jerseys: %w", err)
	}
	return int(count), nil
}

func recount(ctx context.Context, tx *gorm.DB, orderID string) (int, error) {
	count, err := countJerseys(ctx, tx, orderID)
	if err != nil {
		return 0, err
	}
	if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Update("amount", count).Error; err != nil {
		return 0, fmt.Errorf("failed to update amount: %w", err)
	}
	return count, nil
}

// AuthorizePortal returns the order only when the presented token matches.
// An unknown order and a wrong token are indistinguishable.
func (s *OrderService) AuthorizePortal(ctx context.Context, orderID, token string) (*models.Order, error) {
	if orderID == "" || token == "" {
		return nil, ErrInvalidLink
	}
	order, err := s.loadOrder(ctx, s.db, orderID, false)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return nil, ErrInvalidLink
		}
		return nil, err
	}
	if !TokensEqual(order.LinkToken, token) {
		return nil, ErrInvalidLink
	}
	return order, nil
}

// SubmitJerseys flushes the customer's buffered jerseys in one transaction,
// recounts from the persisted sub-collection and marks the order submitted
func (s *OrderService) SubmitJerseys(ctx context.Context, orderID, token string) (*SubmitResult, error) {
	order, err := s.AuthorizePortal(ctx, orderID, token)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(order.Status, models.StatusSubmitted, models.ActorCustomer) {
		return nil, ErrAlreadySubmitted
	}

	// Read, flush, recount and transition in one transaction. The buffer row
	// stays locked until commit so a concurrent append either lands before
	// the read or starts a fresh buffer after the delete.
	key := models.DraftStorageKey(orderID, token)
	result := &SubmitResult{}
	submittedAt := s.now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		state, err := loadDraftState(ctx, forUpdate(tx), key)
		if err != nil {
			return err
		}
		jerseys, err := buildSubmittedJerseys(orderID, state.Entries)
		if err != nil {
			return err
		}
		if len(jerseys) > 0 {
			if err := tx.Create(&jerseys).Error; err != nil {
				return fmt.Errorf("failed to save jerseys: %w", err)
			}
		}
		if err := tx.Where("storage_key = ?", key).Delete(&models.JerseyDraft{}).Error; err != nil {
			return fmt.Errorf("failed to clear draft: %w", err)
		}
		result.Flushed = len(jerseys)

		count, err := countJerseys(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if count == 0 {
			return newValidationError("NO_JERSEYS", "add at least one jersey before submitting")
		}

		res := tx.Model(&models.Order{}).
			Where("id = ? AND status IN ?", orderID, []string{models.StatusPending, models.StatusDraft}).
			Updates(map[string]interface{}{
				"status":       models.StatusSubmitted,
				"amount":       count,
				"submitted_at": submittedAt,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadySubmitted
		}
		result.JerseyCount = count
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err = s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	result.Order = order

	log.Printf("[portal] order %s submitted with %d jerseys (%d flushed)", orderID, result.JerseyCount, result.Flushed)

	// Secondary effects never fail the submission
	if err := s.notifySubmitted(ctx, order, result.JerseyCount); err != nil {
		log.Printf("[portal] failed to create submission notification for order %s: %v", orderID, err)
	}
	if _, err := s.UpsertCustomerForOrder(ctx, order); err != nil {
		log.Printf("[portal] failed to upsert customer for order %s: %v", orderID, err)
	}

	s.hub.Publish(ctx, TopicOrders, OrderTopic(orderID))
	return result, nil
}

// buildSubmittedJerseys validates every buffered entry and returns the
// cleaned rows to persist
func buildSubmittedJerseys(orderID string, entries []models.JerseyFields) ([]models.Jersey, error) {
	jerseys := make([]models.Jersey, 0, len(entries))
	for i, entry := range entries {
		clean, err := ValidateJerseyFields(entry)
		if err != nil {
			var v *ValidationError
			if errors.As(err, &v) {
				v.Message = fmt.Sprintf("jersey %d: %s", i+1, v.Message)
			}
			return nil, err
		}
		j := models.Jersey{OrderID: orderID}
		clean.Apply(&j)
		jerseys = append(jerseys, j)
	}
	return jerseys, nil
}

func (s *OrderService) notifySubmitted(ctx context.Context, order *models.Order, count int) error {
	if s.notifications == nil {
		return nil
	}
	name := utils.OrDefault(order.Customer, "Customer")
	shortID := order.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	id := order.ID
	return s.notifications.Create(ctx, &models.Notification{
		Type:         "success",
		Title:        "Jersey Details Submitted",
		Message:      fmt.Sprintf("%s has submitted %d jersey detail(s) for Order %s", name, count, shortID),
		OrderID:      &id,
		CustomerName: &name,
		JerseyCount:  &count,
	})
}

// UpsertCustomerForOrder refreshes or creates the customer matching the order's (name, phone)
func (s *OrderService) UpsertCustomerForOrder(ctx context.Context, order *models.Order) (*models.Customer, error) {
	if order.Customer == "" || order.Mobile == "" {
		return nil, newValidationError("VALIDATION_ERROR", "order has no customer name or mobile")
	}

	now := s.now()
	orderID := order.ID
	email := ""
	if order.Email != nil {
		email = strings.TrimSpace(*order.Email)
	}

	var customer models.Customer
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("name = ? AND phone = ?", order.Customer, order.Mobile).First(&customer).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{
				"last_order_date": now,
				"latest_order_id": orderID,
			}
			if email != "" {
				updates["email"] = email
			}
			if err := tx.Model(&customer).Updates(updates).Error; err != nil {
				return err
			}
			customer.LastOrderDate = &now
			customer.LatestOrderID = &orderID
			if email != "" {
				customer.Email = email
			}
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			customer = models.Customer{
				Name:          order.Customer,
				Phone:         order.Mobile,
				Email:         email,
				Status:        models.CustomerActive,
				Joined:        now,
				LastOrderDate: &now,
				LatestOrderID: &orderID,
			}
			return tx.Create(&customer).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert customer: %w", err)
	}

	s.hub.Publish(ctx, TopicCustomers)
	return &customer, nil
}
