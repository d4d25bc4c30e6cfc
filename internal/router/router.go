// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/DaltonP93/prepaga-digital-sub002/internal/config"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/handlers"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/middleware"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/services"
	"github.com/DaltonP93/prepaga-digital-sub002/internal/utils"
)

// Initialize wires services, handlers and routes. The scheduler service is
// returned as well so the caller can hand it to the ticker runner.
func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, *services.SchedulerService) {
	// Initialize services
	notificationService := services.NewNotificationService(db, cfg)
	storageService, _ := services.NewStorageService(cfg)
	esignService := services.NewESignService(cfg)

	authService := services.NewAuthService(db, cfg)
	saleService := services.NewSaleService(db, notificationService)
	signatureService := services.NewSignatureService(db, cfg, saleService, notificationService, esignService)
	documentService := services.NewDocumentService(db, storageService)
	schedulerService := services.NewSchedulerService(db, cfg, notificationService, signatureService, documentService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	saleHandler := handlers.NewSaleHandler(saleService)
	signatureHandler := handlers.NewSignatureHandler(signatureService)
	documentHandler := handlers.NewDocumentHandler(documentService, saleService)
	publicHandler := handlers.NewPublicHandler(signatureService, saleService)
	webhookHandler := handlers.NewWebhookHandler(esignService, signatureService)
	jobsHandler := handlers.NewJobsHandler(schedulerService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.Frontend.BaseURL))
	r.Use(middleware.I18nMiddleware())
	r.Use(middleware.GeneralRateLimit())
	r.Use(middleware.AuditLogMiddleware(db))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// Public token-addressed routes used by the signing client
	public := r.Group("")
	public.Use(middleware.PublicRateLimit())
	{
		public.GET("/firmar/:token", publicHandler.ResolveLink)
		public.GET("/signature/:token", publicHandler.ResolveLink)
		public.GET("/questionnaire/:token", publicHandler.GetQuestionnaire)
		public.POST("/questionnaire/:token", publicHandler.SubmitQuestionnaire)
	}

	// Provider callbacks
	r.POST("/webhooks/esign", webhookHandler.HandleESign)

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Authentication routes
		auth := v1.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/me", middleware.AuthRequired(), authHandler.GetProfile)
		}

		// Sale routes
		sales := v1.Group("/sales")
		sales.Use(middleware.AuthRequired())
		{
			sales.POST("", saleHandler.Create)
			sales.GET("", saleHandler.List)
			sales.GET("/:id", saleHandler.Get)
			sales.PUT("/:id/status", saleHandler.ChangeStatus)
			sales.POST("/:id/cancel", saleHandler.Cancel)
			sales.GET("/:id/traces", saleHandler.Traces)

			// Audit decisions
			sales.POST("/:id/approve", middleware.AuditorRequired(), saleHandler.Approve)
			sales.POST("/:id/reject", middleware.AuditorRequired(), saleHandler.Reject)

			// Signature links
			sales.POST("/:id/signature-links", signatureHandler.Issue)
			sales.GET("/:id/signature-links", signatureHandler.ListForSale)

			// Documents
			sales.POST("/:id/packages", documentHandler.CreatePackage)
			sales.POST("/:id/documents/generate", documentHandler.GenerateDocument)
		}

		// Signature link routes
		links := v1.Group("/signature-links")
		links.Use(middleware.AuthRequired())
		{
			links.POST("/:id/resend", signatureHandler.Resend)
			links.POST("/:id/revoke", signatureHandler.Revoke)
		}

		// Document package routes
		packages := v1.Group("/packages")
		packages.Use(middleware.AuthRequired())
		{
			packages.GET("/:id", documentHandler.GetPackage)
			packages.DELETE("/:id", documentHandler.DeletePackage)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			jobs := admin.Group("/jobs")
			{
				jobs.POST("/send-reminders", jobsHandler.SendReminders)
				jobs.POST("/resend-expired", jobsHandler.ResendExpired)
				jobs.POST("/generate-documents", jobsHandler.GenerateDocuments)
			}
		}
	}

	return r, schedulerService
}
