package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/otomono/jersey-orders-api/models"
	"github.com/otomono/jersey-orders-api/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileInput is the editable part of the settings profile
type ProfileInput struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

// ProfileService reads and writes the admin settings profile
type ProfileService struct {
	db    *gorm.DB
	auth0 UserInfoFetcher
}

// NewProfileService creates a profile service; auth0 may be nil
func NewProfileService(db *gorm.DB, auth0 UserInfoFetcher) *ProfileService {
	return &ProfileService{db: db, auth0: auth0}
}

// Get returns the stored profile, or an empty one when none has been saved
func (s *ProfileService) Get(ctx context.Context, accessToken string) (*models.Profile, error) {
	var p models.Profile
	err := s.db.WithContext(ctx).First(&p, "id = ?", models.ProfileID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	p.ID = models.ProfileID
	if email := s.identityEmail(ctx, accessToken); email != "" {
		p.Email = email
	}
	return &p, nil
}

// Update validates and stores the profile; the signed-in identity's email wins over the submitted one
func (s *ProfileService) Update(ctx context.Context, accessToken string, in ProfileInput) (*models.Profile, error) {
	p := &models.Profile{
		ID:       models.ProfileID,
		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Updated:  time.Now().UTC(),
	}
	if p.FullName == "" {
		return nil, &ValidationError{Code: "VALIDATION_ERROR", Message: "missing required fields", Fields: []string{"full_name"}}
	}
	if email := s.identityEmail(ctx, accessToken); email != "" {
		p.Email = email
	}
	if p.Email != "" && !utils.IsValidEmail(p.Email) {
		return nil, newValidationError("INVALID_EMAIL", "invalid email address")
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(p).Error; err != nil {
		return nil, fmt.Errorf("failed to save profile: %w", err)
	}
	return p, nil
}

func (s *ProfileService) identityEmail(ctx context.Context, accessToken string) string {
	if s.auth0 == nil || accessToken == "" {
		return ""
	}
	info, err := s.auth0.GetUserInfo(ctx, accessToken)
	if err != nil {
		log.Printf("[profile] failed to fetch user info: %v", err)
		return ""
	}
	return info.Email
}
