package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/otomono/jersey-orders-api/utils"
)

// ImageService stores design artwork
type ImageService interface {
	// UploadImage validates PNG bytes and stores them, returning the storage key
	UploadImage(ctx context.Context, content []byte) (string, error)

	// GetImageURL generates a URL for accessing a stored image
	GetImageURL(ctx context.Context, imageKey string) (string, error)

	// DeleteImage removes an image from storage
	DeleteImage(ctx context.Context, imageKey string) error
}

// S3ImageService implements ImageService on top of object storage
type S3ImageService struct {
	store S3Interface
}

// NewImageService creates an image service backed by store
func NewImageService(store S3Interface) *S3ImageService {
	return &S3ImageService{store: store}
}

// UploadImage validates and stores a PNG under designs/
func (s *S3ImageService) UploadImage(ctx context.Context, content []byte) (string, error) {
	if err := utils.ValidatePNG(content); err != nil {
		return "", err
	}

	key := fmt.Sprintf("designs/%s.png", uuid.NewString())
	if err := s.store.PutObject(ctx, key, content, "image/png"); err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	return key, nil
}

// GetImageURL generates a presigned URL for an image
func (s *S3ImageService) GetImageURL(ctx context.Context, imageKey string) (string, error) {
	if imageKey == "" {
		return "", nil
	}

	url, err := s.store.GetPresignedURL(ctx, imageKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate image URL: %w", err)
	}
	return url, nil
}

// DeleteImage deletes a stored image
func (s *S3ImageService) DeleteImage(ctx context.Context, imageKey string) error {
	if imageKey == "" {
		return nil
	}

	if err := s.store.DeleteFile(ctx, imageKey); err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return nil
}
