package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/otomono/jersey-orders-api/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DraftState is the customer's buffered, unsubmitted work for one order link
type DraftState struct {
	Entries     []models.JerseyFields `json:"entries"`
	FormData    map[string]string     `json:"form_data"`
	FormEnabled bool                  `json:"form_enabled"`
	UpdatedAt   *time.Time            `json:"updated_at"`
}

// DraftBuffer persists the customer's jersey entries between page loads.
// It is never the source of truth for the order's jersey count.
type DraftBuffer struct {
	db  *gorm.DB
	hub Publisher
}

// NewDraftBuffer creates a draft buffer
func NewDraftBuffer(db *gorm.DB, hub Publisher) *DraftBuffer {
	return &DraftBuffer{db: db, hub: hub}
}

// Load returns the buffered state, empty when nothing was saved yet
func (b *DraftBuffer) Load(ctx context.Context, orderID, token string) (*DraftState, error) {
	return loadDraftState(ctx, b.db, models.DraftStorageKey(orderID, token))
}

// Append validates and buffers one more jersey
func (b *DraftBuffer) Append(ctx context.Context, orderID, token string, fields models.JerseyFields) (*DraftState, error) {
	fields, err := ValidateJerseyFields(fields)
	if err != nil {
		return nil, err
	}
	return b.mutate(ctx, orderID, token, func(state *DraftState) error {
		state.Entries = append(state.Entries, fields)
		return nil
	})
}

// Replace validates and overwrites the buffered jersey at index
func (b *DraftBuffer) Replace(ctx context.Context, orderID, token string, index int, fields models.JerseyFields) (*DraftState, error) {
	fields, err := ValidateJerseyFields(fields)
	if err != nil {
		return nil, err
	}
	return b.mutate(ctx, orderID, token, func(state *DraftState) error {
		if index < 0 || index >= len(state.Entries) {
			return ErrDraftEntryNotFound
		}
		state.Entries[index] = fields
		return nil
	})
}

// Remove drops the buffered jersey at index
func (b *DraftBuffer) Remove(ctx context.Context, orderID, token string, index int) (*DraftState, error) {
	return b.mutate(ctx, orderID, token, func(state *DraftState) error {
		if index < 0 || index >= len(state.Entries) {
			return ErrDraftEntryNotFound
		}
		state.Entries = append(state.Entries[:index], state.Entries[index+1:]...)
		return nil
	})
}

// SaveForm stores the in-progress form fields and whether the form is open
func (b *DraftBuffer) SaveForm(ctx context.Context, orderID, token string, formData map[string]string, enabled bool) (*DraftState, error) {
	return b.mutate(ctx, orderID, token, func(state *DraftState) error {
		state.FormData = formData
		state.FormEnabled = enabled
		return nil
	})
}

// Clear discards the buffer
func (b *DraftBuffer) Clear(ctx context.Context, orderID, token string) error {
	key := models.DraftStorageKey(orderID, token)
	if err := b.db.WithContext(ctx).Where("storage_key = ?", key).Delete(&models.JerseyDraft{}).Error; err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	b.hub.Publish(ctx, OrderTopic(orderID))
	return nil
}

func (b *DraftBuffer) mutate(ctx context.Context, orderID, token string, apply func(*DraftState) error) (*DraftState, error) {
	key := models.DraftStorageKey(orderID, token)
	var state *DraftState
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		state, err = loadDraftState(ctx, forUpdate(tx), key)
		if err != nil {
			return err
		}
		if err := apply(state); err != nil {
			return err
		}
		return saveDraftState(ctx, tx, key, orderID, state)
	})
	if err != nil {
		return nil, err
	}
	b.hub.Publish(ctx, OrderTopic(orderID))
	return state, nil
}

// forUpdate locks the rows read through tx until commit. SQLite serializes
// writers itself and has no row locks.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

func loadDraftState(ctx context.Context, db *gorm.DB, key string) (*DraftState, error) {
	state := &DraftState{Entries: []models.JerseyFields{}, FormData: map[string]string{}}

	var draft models.JerseyDraft
	err := db.WithContext(ctx).First(&draft, "storage_key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return state, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}

	if len(draft.Entries) > 0 {
		if err := json.Unmarshal(draft.Entries, &state.Entries); err != nil {
			return nil, fmt.Errorf("failed to decode draft entries: %w", err)
		}
	}
	if len(draft.FormData) > 0 {
		if err := json.Unmarshal(draft.FormData, &state.FormData); err != nil {
			return nil, fmt.Errorf("failed to decode draft form: %w", err)
		}
	}
	state.FormEnabled = draft.FormEnabled
	updated := draft.UpdatedAt
	state.UpdatedAt = &updated
	return state, nil
}

func saveDraftState(ctx context.Context, tx *gorm.DB, key, orderID string, state *DraftState) error {
	entries, err := json.Marshal(state.Entries)
	if err != nil {
		return fmt.Errorf("failed to encode draft entries: %w", err)
	}
	formData, err := json.Marshal(state.FormData)
	if err != nil {
		return fmt.Errorf("failed to encode draft form: %w", err)
	}

	now := time.Now().UTC()
	draft := models.JerseyDraft{
		StorageKey:  key,
		OrderID:     orderID,
		Entries:     datatypes.JSON(entries),
		FormData:    datatypes.JSON(formData),
		FormEnabled: state.FormEnabled,
		UpdatedAt:   now,
	}
	if err := tx.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&draft).Error; err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	state.UpdatedAt = &now
	return nil
}
