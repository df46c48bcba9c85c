package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order statuses
const (
	StatusPending   = "pending"
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusCompleted = "completed"
)

// Actors that can move an order between statuses
const (
	ActorAdmin    = "admin"
	ActorCustomer = "customer"
)

// Order represents a customer's jersey production request
type Order struct {
	ID            string           `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Customer      string           `gorm:"not null" json:"customer"`
	Mobile        string           `gorm:"not null;index" json:"mobile"` // join key to customers
	Email         *string          `json:"email"`
	Material      string           `gorm:"not null" json:"material"`
	Product       string           `json:"product"`
	MaterialID    *string          `gorm:"type:varchar(36)" json:"material_id"`
	MaterialPrice *decimal.Decimal `gorm:"type:numeric(10,2)" json:"material_price"` // snapshot at creation, not live
	SupplierID    *string          `gorm:"type:varchar(36);index" json:"supplier_id"`
	Amount        int              `gorm:"not null;default:0" json:"amount"` // derived from the jersey count
	Status        string           `gorm:"not null;default:'pending';index" json:"status"`
	Date          time.Time        `gorm:"not null;index" json:"date"`
	CustomerLink  string           `json:"customer_link"`
	LinkToken     string           `gorm:"index" json:"-"`
	AdminModified *time.Time       `json:"admin_modified"`
	SubmittedAt   *time.Time       `json:"submitted_at"`
	Jerseys       []Jersey         `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"jerseys,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// BeforeCreate assigns the identifier and the immutable order date
func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	if o.Date.IsZero() {
		o.Date = time.Now().UTC()
	}
	if o.Status == "" {
		o.Status = StatusPending
	}
	return nil
}

// AfterFind rejects rows that are missing required fields instead of silently defaulting them
func (o *Order) AfterFind(tx *gorm.DB) error {
	return requireFields("order", o.ID, map[string]string{
		"customer": o.Customer,
		"mobile":   o.Mobile,
		"material": o.Material,
		"status":   o.Status,
	})
}

// DisplayQuantity is the quantity every view shows for an order.
// Pending and draft orders show 0 regardless of the stored amount.
func DisplayQuantity(o Order) int {
	if o.Status == StatusPending || o.Status == StatusDraft {
		return 0
	}
	return o.Amount
}

// IsValidStatus reports whether s is a known order status
func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusDraft, StatusSubmitted, StatusCompleted:
		return true
	}
	return false
}

// CanTransition reports whether actor may move an order from one status to another
func CanTransition(from, to, actor string) bool {
	switch actor {
	case ActorAdmin:
		switch to {
		case StatusDraft:
			return from == StatusPending || from == StatusDraft || from == StatusSubmitted
		case StatusCompleted:
			return from == StatusSubmitted
		case StatusSubmitted:
			return from == StatusCompleted
		}
	case ActorCustomer:
		return to == StatusSubmitted && (from == StatusPending || from == StatusDraft)
	}
	return false
}

// OrderView is the API representation of an order with its display quantity
type OrderView struct {
	Order
	DisplayQuantity int `json:"display_quantity"`
}

// NewOrderView wraps an order for rendering
func NewOrderView(o Order) OrderView {
	return OrderView{Order: o, DisplayQuantity: DisplayQuantity(o)}
}

// NewOrderViews wraps a list of orders for rendering
func NewOrderViews(orders []Order) []OrderView {
	views := make([]OrderView, len(orders))
	for i, o := range orders {
		views[i] = NewOrderView(o)
	}
	return views
}

// ErrMissingField is returned when a stored record lacks a required field
var ErrMissingField = errors.New("record is missing a required field")

func requireFields(kind, id string, fields map[string]string) error {
	var missing []string
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("%s %s: %w: %s", kind, id, ErrMissingField, strings.Join(missing, ", "))
}
