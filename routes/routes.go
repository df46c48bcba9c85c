package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/otomono/jersey-orders-api/config"
	"github.com/otomono/jersey-orders-api/controllers"
	"github.com/otomono/jersey-orders-api/middleware"
	"github.com/otomono/jersey-orders-api/services"
)

// SetupRouter builds the HTTP routes. adminAuth guards every console route;
// the portal is gated by the order link instead.
func SetupRouter(cfg *config.Config, svc *services.Container, adminAuth ...gin.HandlerFunc) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Report-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.PerformanceLogger())

	h := controllers.NewHandler(svc)

	// Customer portal
	portal := r.Group("/customer")
	portal.Use(middleware.RequirePortalLink(svc.Orders))
	{
		portal.GET("", h.GetPortal)
		portal.GET("/drafts", h.GetDrafts)
		portal.POST("/drafts", h.AddDraft)
		portal.PUT("/drafts/form", h.SaveDraftForm)
		portal.PUT("/drafts/:index", h.UpdateDraft)
		portal.DELETE("/drafts/:index", h.DeleteDraft)
		portal.DELETE("/jerseys/:jerseyId", h.DeletePortalJersey)
		portal.POST("/submit", h.SubmitJerseys)
		portal.GET("/events", h.PortalEvents)
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", controllers.HealthCheck)
		v1.GET("/database/status", h.DatabaseStatus)
	}

	admin := v1.Group("")
	admin.Use(adminAuth...)
	{
		orders := admin.Group("/orders")
		{
			orders.POST("", h.CreateOrder)
			orders.GET("", h.ListOrders)
			orders.GET("/:id", h.GetOrder)
			orders.PUT("/:id", h.UpdateOrder)
			orders.DELETE("/:id", h.DeleteOrder)
			orders.PUT("/:id/status", h.UpdateOrderStatus)
			orders.POST("/:id/jerseys", h.AddJersey)
			orders.PUT("/:id/jerseys/:jerseyId", h.UpdateJersey)
			orders.DELETE("/:id/jerseys/:jerseyId", h.DeleteJersey)
			orders.GET("/:id/export", h.ExportJerseys)
			orders.GET("/:id/link", h.GetCustomerLink)
			orders.POST("/:id/link/sms", h.SendCustomerLinkSMS)
		}

		customers := admin.Group("/customers")
		{
			customers.POST("", h.CreateCustomer)
			customers.GET("", h.ListCustomers)
			customers.GET("/:id", h.GetCustomer)
			customers.PUT("/:id", h.UpdateCustomer)
			customers.DELETE("/:id", h.DeleteCustomer)
		}

		materials := admin.Group("/materials")
		{
			materials.POST("", h.CreateMaterial)
			materials.GET("", h.ListMaterials)
			materials.GET("/:id", h.GetMaterial)
			materials.PUT("/:id", h.UpdateMaterial)
			materials.DELETE("/:id", h.DeleteMaterial)
		}

		suppliers := admin.Group("/suppliers")
		{
			suppliers.POST("", h.CreateSupplier)
			suppliers.GET("", h.ListSuppliers)
			suppliers.GET("/:id", h.GetSupplier)
			suppliers.PUT("/:id", h.UpdateSupplier)
			suppliers.DELETE("/:id", h.DeleteSupplier)
			suppliers.POST("/:id/email", h.EmailSupplier)
		}

		designs := admin.Group("/designs")
		{
			designs.POST("", h.CreateDesign)
			designs.GET("", h.ListDesigns)
			designs.DELETE("/:id", h.DeleteDesign)
		}

		reports := admin.Group("/reports")
		{
			reports.POST("", h.GenerateReport)
			reports.GET("", h.ListReports)
			reports.GET("/:id/download", h.DownloadReport)
			reports.DELETE("/:id", h.DeleteReport)
		}

		notifications := admin.Group("/notifications")
		{
			notifications.GET("", h.ListNotifications)
			notifications.POST("", h.CreateNotification)
			notifications.DELETE("", h.ClearNotifications)
			notifications.GET("/unread-count", h.UnreadCount)
			notifications.PUT("/read-all", h.MarkAllNotificationsRead)
			notifications.PUT("/:id/read", h.MarkNotificationRead)
			notifications.DELETE("/:id", h.DeleteNotification)
		}

		admin.GET("/profile", h.GetProfile)
		admin.PUT("/profile", h.UpdateProfile)
		admin.GET("/dashboard", h.GetDashboard)
		admin.POST("/mail/send", h.SendMail)
		admin.GET("/live/:collection", h.LiveCollection)
	}

	return r
}

// AdminAuth returns the production guard for console routes: a valid Auth0 token carrying the admin scope
func AdminAuth(cfg *config.Config) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		middleware.EnsureValidToken(cfg),
		middleware.RequireScope(cfg.AdminScope),
	}
}
