package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/otomono/jersey-orders-api/models"
	"gorm.io/gorm"
)

// DesignService stores jersey artwork metadata and images
type DesignService struct {
	db     *gorm.DB
	images ImageService
	hub    Publisher
}

// NewDesignService creates a design service
func NewDesignService(db *gorm.DB, images ImageService, hub Publisher) *DesignService {
	return &DesignService{db: db, images: images, hub: hub}
}

// Create uploads the PNG and records the design
func (s *DesignService) Create(ctx context.Context, name string, content []byte) (*models.Design, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Code: "VALIDATION_ERROR", Message: "missing required fields", Fields: []string{"name"}}
	}

	key, err := s.images.UploadImage(ctx, content)
	if err != nil {
		return nil, err
	}

	design := &models.Design{Name: name, ImageKey: key}
	if err := s.db.WithContext(ctx).Create(design).Error; err != nil {
		if delErr := s.images.DeleteImage(ctx, key); delErr != nil {
			log.Printf("[designs] failed to remove orphaned image %s: %v", key, delErr)
		}
		return nil, fmt.Errorf("failed to create design: %w", err)
	}
	s.populateURL(ctx, design)

	s.hub.Publish(ctx, TopicDesigns)
	return design, nil
}

// List returns all designs, newest first, with presigned image URLs
func (s *DesignService) List(ctx context.Context) ([]models.Design, error) {
	var designs []models.Design
	if err := s.db.WithContext(ctx).Order("created DESC").Find(&designs).Error; err != nil {
		return nil, fmt.Errorf("failed to list designs: %w", err)
	}
	for i := range designs {
		s.populateURL(ctx, &designs[i])
	}
	return designs, nil
}

// Delete removes the design and its stored image
func (s *DesignService) Delete(ctx context.Context, id string) error {
	var design models.Design
	if err := findOne(ctx, s.db, &design, id); err != nil {
		return err
	}
	if err := s.images.DeleteImage(ctx, design.ImageKey); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&design).Error; err != nil {
		return fmt.Errorf("failed to delete design: %w", err)
	}
	s.hub.Publish(ctx, TopicDesigns)
	return nil
}

func (s *DesignService) populateURL(ctx context.Context, d *models.Design) {
	url, err := s.images.GetImageURL(ctx, d.ImageKey)
	if err != nil {
		log.Printf("[designs] failed to presign %s: %v", d.ImageKey, err)
		return
	}
	if url != "" {
		d.ImageURL = &url
	}
}
