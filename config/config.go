package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Mail transports
const (
	MailTransportSES   = "ses"
	MailTransportSMTP  = "smtp"
	MailTransportRelay = "relay"
)

// Config holds all application configuration
type Config struct {
	DatabaseURL        string
	Port               string
	GoEnv              string
	Auth0Domain        string
	Auth0Audience      string
	AdminScope         string
	AWSRegion          string
	AWSS3Bucket        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	MailTransport      string
	MailSender         string
	MailSenderName     string
	MailAdminCC        string
	SMTPHost           string
	SMTPPort           int
	SMTPUsername       string
	SMTPPassword       string
	MailRelayURL       string
	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioPhoneNumber  string
	PublicBaseURL      string
	CORSOrigins        []string
	DBWaitTimeout      time.Duration
	LowStockCron       string
	LogLevel           string
}

var appConfig *Config

// Load loads the configuration from environment variables
// It automatically determines which .env file to load based on GO_ENV
func Load() (*Config, error) {
	env := os.Getenv("GO_ENV")
	if env == "" {
		env = "development"
	}

	// Try the environment-specific file first, then .env
	envFile := fmt.Sprintf(".env.%s", env)
	if err := godotenv.Load(envFile); err != nil {
		if err := godotenv.Load(); err != nil {
			// In production the variables are set directly on the host
			log.Printf("No .env file found, using system environment variables")
		}
	} else {
		log.Printf("Loaded configuration from %s", envFile)
	}

	smtpPort, err := strconv.Atoi(getEnv("SMTP_PORT", "587"))
	if err != nil {
		return nil, fmt.Errorf("SMTP_PORT must be a number: %w", err)
	}

	dbWait, err := time.ParseDuration(getEnv("DB_WAIT_TIMEOUT", "10s"))
	if err != nil {
		return nil, fmt.Errorf("DB_WAIT_TIMEOUT must be a duration: %w", err)
	}

	config := &Config{
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		Port:               getEnv("PORT", "8080"),
		GoEnv:              getEnv("GO_ENV", "development"),
		Auth0Domain:        getEnv("AUTH0_DOMAIN", ""),
		Auth0Audience:      getEnv("AUTH0_AUDIENCE", ""),
		AdminScope:         getEnv("AUTH0_ADMIN_SCOPE", "admin:orders"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSS3Bucket:        getEnv("AWS_S3_BUCKET", ""),
		AWSAccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		MailTransport:      strings.ToLower(getEnv("MAIL_TRANSPORT", MailTransportSES)),
		MailSender:         getEnv("MAIL_SENDER", ""),
		MailSenderName:     getEnv("MAIL_SENDER_NAME", "Jersey Orders"),
		MailAdminCC:        getEnv("MAIL_ADMIN_CC", ""),
		SMTPHost:           getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:           smtpPort,
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		MailRelayURL:       getEnv("MAIL_RELAY_URL", ""),
		TwilioAccountSID:   getEnv("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    getEnv("TWILIO_AUTH_TOKEN", ""),
		TwilioPhoneNumber:  getEnv("TWILIO_PHONE_NUMBER", ""),
		PublicBaseURL:      strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		CORSOrigins:        splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		DBWaitTimeout:      dbWait,
		LowStockCron:       getEnv("LOW_STOCK_CRON", "0 8 * * *"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfig = config
	return config, nil
}

// Validate checks that all required configuration values are set
func (c *Config) Validate() error {
	if c.IsProduction() && c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	switch c.MailTransport {
	case MailTransportSES, MailTransportSMTP, MailTransportRelay:
	default:
		return fmt.Errorf("MAIL_TRANSPORT must be one of ses, smtp, relay (got %q)", c.MailTransport)
	}
	if c.MailTransport == MailTransportRelay && c.MailRelayURL == "" {
		return fmt.Errorf("MAIL_RELAY_URL is required when MAIL_TRANSPORT is relay")
	}
	if c.DBWaitTimeout <= 0 {
		return fmt.Errorf("DB_WAIT_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.GoEnv == "production"
}

// IsTest returns true if the application is running in test mode
func (c *Config) IsTest() bool {
	return c.GoEnv == "test"
}

// IsDevelopment returns true if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.GoEnv == "development"
}

// GetDatabaseURL returns the database URL
func (c *Config) GetDatabaseURL() string {
	return c.DatabaseURL
}

// HasTwilio reports whether SMS delivery is configured
func (c *Config) HasTwilio() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioPhoneNumber != ""
}

// GetConfig returns the most recently loaded configuration
func GetConfig() *Config {
	return appConfig
}

// SetConfig sets the configuration instance (primarily for testing)
func SetConfig(cfg *Config) {
	appConfig = cfg
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
