package services

import (
	"context"
	"fmt"
	"sync"
)

// MockS3Service is an in-memory S3Interface for tests
type MockS3Service struct {
	objects map[string][]byte
	types   map[string]string
	mu      sync.RWMutex
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

// PutObject stores body under key
func (m *MockS3Service) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), body...)
	m.types[key] = contentType
	return nil
}

// GetPresignedURL returns a fake URL for a stored key
func (m *MockS3Service) GetPresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.objects[key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("file not found in mock S3: %s", key)
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// DeleteFile removes key
func (m *MockS3Service) DeleteFile(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	delete(m.types, key)
	m.mu.Unlock()
	return nil
}

// Object returns a stored object and its content type
func (m *MockS3Service) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	body, ok := m.objects[key]
	return body, m.types[key], ok
}

// Len returns the number of stored objects
func (m *MockS3Service) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
