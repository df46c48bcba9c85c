package services

import (
	"context"
	"log"

	"github.com/otomono/jersey-orders-api/config"
	"gorm.io/gorm"
)

// Externals are the outbound integrations; tests swap them for mocks
type Externals struct {
	Storage S3Interface
	Mailer  Mailer
	SMS     SMSSender // nil when Twilio is not configured
	Auth0   UserInfoFetcher
}

// Container holds every service the HTTP layer depends on
type Container struct {
	DB            *gorm.DB
	Config        *config.Config
	Hub           *Hub
	Orders        *OrderService
	Drafts        *DraftBuffer
	Catalog       *CatalogService
	Designs       *DesignService
	Reports       *ReportService
	Notifications *NotificationService
	Dashboard     *DashboardService
	Profile       *ProfileService
	Scheduler     *StockScheduler
	Storage       S3Interface
	Mailer        Mailer
	SMS           SMSSender
}

// NewExternals connects the AWS, mail, SMS and Auth0 clients from configuration
func NewExternals(ctx context.Context, cfg *config.Config) (Externals, error) {
	awsCfg, err := LoadAWSConfig(ctx, cfg)
	if err != nil {
		return Externals{}, err
	}
	mailer, err := NewMailer(ctx, cfg)
	if err != nil {
		return Externals{}, err
	}

	ext := Externals{
		Storage: NewS3Service(awsCfg, cfg.AWSS3Bucket),
		Mailer:  mailer,
		Auth0:   NewAuth0Service(cfg),
	}
	if cfg.HasTwilio() {
		ext.SMS = NewTwilioSMSService(cfg)
	} else {
		log.Printf("[sms] Twilio is not configured, link texting disabled")
	}
	return ext, nil
}

// NewContainer wires the services around db and the given integrations
func NewContainer(db *gorm.DB, cfg *config.Config, ext Externals) *Container {
	hub := NewHub(DefaultSubscriptionBuffer)
	notifications := NewNotificationService(db, hub)

	c := &Container{
		DB:            db,
		Config:        cfg,
		Hub:           hub,
		Orders:        NewOrderService(db, hub, notifications, cfg.PublicBaseURL),
		Drafts:        NewDraftBuffer(db, hub),
		Catalog:       NewCatalogService(db, hub),
		Designs:       NewDesignService(db, NewImageService(ext.Storage), hub),
		Reports:       NewReportService(db, ext.Storage, hub),
		Notifications: notifications,
		Dashboard:     NewDashboardService(db),
		Profile:       NewProfileService(db, ext.Auth0),
		Scheduler:     NewStockScheduler(db, notifications, cfg.LowStockCron),
		Storage:       ext.Storage,
		Mailer:        ext.Mailer,
		SMS:           ext.SMS,
	}
	return c
}

// Close stops background work and disconnects live subscribers
func (c *Container) Close() {
	c.Scheduler.Stop()
	c.Hub.Close()
}
