package models

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "orders", Order{}.TableName())
	assert.Equal(t, "jerseys", Jersey{}.TableName())
	assert.Equal(t, "customers", Customer{}.TableName())
	assert.Equal(t, "materials", Material{}.TableName())
	assert.Equal(t, "suppliers", Supplier{}.TableName())
	assert.Equal(t, "notifications", Notification{}.TableName())
	assert.Equal(t, "designs", Design{}.TableName())
	assert.Equal(t, "reports", Report{}.TableName())
	assert.Equal(t, "settings_profile", Profile{}.TableName())
	assert.Equal(t, "jersey_drafts", JerseyDraft{}.TableName())
}

func TestDisplayQuantity(t *testing.T) {
	tests := []struct {
		status string
		amount int
		want   int
	}{
		{StatusPending, 7, 0},
		{StatusDraft, 5, 0},
		{StatusSubmitted, 5, 5},
		{StatusCompleted, 12, 12},
		{StatusSubmitted, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			o := Order{Status: tt.status, Amount: tt.amount}
			assert.Equal(t, tt.want, DisplayQuantity(o))
			// The stored amount is never touched by the display rule
			assert.Equal(t, tt.amount, o.Amount)
		})
	}
}

func TestNewOrderViews(t *testing.T) {
	views := NewOrderViews([]Order{
		{ID: "a", Status: StatusDraft, Amount: 3},
		{ID: "b", Status: StatusSubmitted, Amount: 3},
	})

	assert.Len(t, views, 2)
	assert.Equal(t, 0, views[0].DisplayQuantity)
	assert.Equal(t, 3, views[0].Amount)
	assert.Equal(t, 3, views[1].DisplayQuantity)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name  string
		from  string
		to    string
		actor string
		want  bool
	}{
		{"admin edit on pending", StatusPending, StatusDraft, ActorAdmin, true},
		{"admin edit on draft", StatusDraft, StatusDraft, ActorAdmin, true},
		{"admin edit on submitted", StatusSubmitted, StatusDraft, ActorAdmin, true},
		{"admin edit on completed", StatusCompleted, StatusDraft, ActorAdmin, false},
		{"admin completes submitted", StatusSubmitted, StatusCompleted, ActorAdmin, true},
		{"admin cannot complete draft", StatusDraft, StatusCompleted, ActorAdmin, false},
		{"admin reopens completed", StatusCompleted, StatusSubmitted, ActorAdmin, true},
		{"customer submits pending", StatusPending, StatusSubmitted, ActorCustomer, true},
		{"customer resubmits draft", StatusDraft, StatusSubmitted, ActorCustomer, true},
		{"customer cannot resubmit submitted", StatusSubmitted, StatusSubmitted, ActorCustomer, false},
		{"customer cannot draft", StatusSubmitted, StatusDraft, ActorCustomer, false},
		{"unknown actor", StatusPending, StatusDraft, "robot", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to, tt.actor))
		})
	}
}

func TestOrderAfterFindRejectsMissingFields(t *testing.T) {
	o := &Order{ID: "o1", Customer: "Ali", Mobile: "", Material: "", Status: StatusPending}
	err := o.AfterFind(nil)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingField))
	assert.Contains(t, err.Error(), "material, mobile")
}

func TestJerseyAfterFind(t *testing.T) {
	complete := &Jersey{ID: "j1", Type: "Home", Name: "ALI", Number: "7", SizeCategory: "Adult", Size: "M", Sleeve: "Short", Shorts: "No"}
	assert.NoError(t, complete.AfterFind(nil))

	incomplete := &Jersey{ID: "j2", Type: "Home"}
	assert.ErrorIs(t, incomplete.AfterFind(nil), ErrMissingField)
}

func TestMaterialStatus(t *testing.T) {
	assert.Equal(t, MaterialAvailable, MaterialStatus(3))
	assert.Equal(t, MaterialOutOfStock, MaterialStatus(0))
	assert.Equal(t, MaterialOutOfStock, MaterialStatus(-1))

	m := &Material{Stock: 0, Status: MaterialAvailable}
	assert.NoError(t, m.BeforeSave(nil))
	assert.Equal(t, MaterialOutOfStock, m.Status, "status is always recomputed from stock")

	assert.True(t, Material{Stock: 4}.IsLowStock())
	assert.False(t, Material{Stock: 0}.IsLowStock())
	assert.False(t, Material{Stock: 10}.IsLowStock())
}

func TestJerseyFieldsRoundTrip(t *testing.T) {
	f := JerseyFields{Type: "Away", Name: "BOB", Number: "10", SizeCategory: "Kids", Size: "S", Sleeve: "Long", Shorts: "Yes"}
	var j Jersey
	f.Apply(&j)

	assert.Equal(t, f, j.Fields())
	assert.Len(t, f.UpdateMap(), 7)
}

func TestDraftStorageKey(t *testing.T) {
	assert.Equal(t, "jersey_data_o1_tok", DraftStorageKey("o1", "tok"))
}
