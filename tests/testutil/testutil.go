package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/otomono/jersey-orders-api/config"
	"github.com/otomono/jersey-orders-api/models"
	"github.com/otomono/jersey-orders-api/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MustSetTestEnvironment sets GO_ENV to test and fails if it cannot be set.
// Use this in TestMain or suite setup functions.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("Failed to set GO_ENV=test: %v", err)
	}
	if os.Getenv("GO_ENV") != "test" {
		t.Fatal("Failed to verify GO_ENV=test")
	}
}

// TestConfig is a configuration that never reaches real infrastructure
func TestConfig() *config.Config {
	return &config.Config{
		Port:           "8080",
		GoEnv:          "test",
		Auth0Domain:    "test.auth0.com",
		Auth0Audience:  "https://api.test.com",
		AdminScope:     AdminScope,
		AWSRegion:      "us-east-1",
		AWSS3Bucket:    "test-bucket",
		MailTransport:  config.MailTransportSES,
		MailSender:     "orders@example.com",
		MailSenderName: "Jersey Orders",
		PublicBaseURL:  "https://orders.example.com",
		CORSOrigins:    []string{"http://localhost:3000"},
		DBWaitTimeout:  time.Second,
		LowStockCron:   "0 8 * * *",
	}
}

// NewTestDB opens a migrated in-memory SQLite database that is closed with the test
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get database instance: %v", err)
	}
	// Every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	if err := models.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// Mocks are the fake integrations behind a test container
type Mocks struct {
	Storage *services.MockS3Service
	Mailer  *services.MockMailer
	SMS     *services.MockSMSService
	Auth0   *StubUserInfo
}

// StubUserInfo answers Auth0 userinfo lookups with a fixed identity
type StubUserInfo struct {
	Info *services.Auth0UserInfo
	Err  error
}

// GetUserInfo returns the stubbed identity
func (s *StubUserInfo) GetUserInfo(ctx context.Context, accessToken string) (*services.Auth0UserInfo, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Info, nil
}

// NewTestContainer wires every service around a fresh database and mock integrations
func NewTestContainer(t *testing.T) (*services.Container, *Mocks) {
	t.Helper()

	mocks := &Mocks{
		Storage: services.NewMockS3Service(),
		Mailer:  &services.MockMailer{},
		SMS:     &services.MockSMSService{},
		Auth0:   &StubUserInfo{Info: &services.Auth0UserInfo{Sub: "auth0|admin", Email: "admin@example.com"}},
	}
	container := services.NewContainer(NewTestDB(t), TestConfig(), services.Externals{
		Storage: mocks.Storage,
		Mailer:  mocks.Mailer,
		SMS:     mocks.SMS,
		Auth0:   mocks.Auth0,
	})
	t.Cleanup(container.Close)
	return container, mocks
}
