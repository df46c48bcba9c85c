package config

import (
	"fmt"
	"os"
	"testing"
)

// variables a developer shell commonly exports that would leak into Load
var hostVariables = []string{
	"DATABASE_URL",
	"MAIL_TRANSPORT",
	"MAIL_RELAY_URL",
	"AWS_ACCESS_KEY_ID",
	"AWS_SECRET_ACCESS_KEY",
	"TWILIO_AUTH_TOKEN",
}

// TestMain refuses to run outside GO_ENV=test, since Load picks the .env file by environment
func TestMain(m *testing.M) {
	if env := os.Getenv("GO_ENV"); env != "test" {
		fmt.Fprintf(os.Stderr, "config tests require GO_ENV=test (got %q); run `GO_ENV=test go test ./...`\n", env)
		os.Exit(1)
	}

	for _, key := range hostVariables {
		os.Unsetenv(key)
	}

	os.Exit(m.Run())
}
