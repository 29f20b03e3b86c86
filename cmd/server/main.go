package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	authapp "github.com/agencyhub/backend/internal/application/auth"
	billingapp "github.com/agencyhub/backend/internal/application/billing"
	crmapp "github.com/agencyhub/backend/internal/application/crm"
	dashboardapp "github.com/agencyhub/backend/internal/application/dashboard"
	emailapp "github.com/agencyhub/backend/internal/application/email"
	integrationapp "github.com/agencyhub/backend/internal/application/integration"
	jobsapp "github.com/agencyhub/backend/internal/application/jobs"
	messagingapp "github.com/agencyhub/backend/internal/application/messaging"
	projectapp "github.com/agencyhub/backend/internal/application/projects"
	proposalapp "github.com/agencyhub/backend/internal/application/proposals"
	seoapp "github.com/agencyhub/backend/internal/application/seo"
	"github.com/agencyhub/backend/internal/domain/jobs"
	"github.com/agencyhub/backend/internal/infrastructure/ai"
	infraauth "github.com/agencyhub/backend/internal/infrastructure/auth"
	"github.com/agencyhub/backend/internal/infrastructure/config"
	"github.com/agencyhub/backend/internal/infrastructure/crawler"
	"github.com/agencyhub/backend/internal/infrastructure/ecommerce"
	"github.com/agencyhub/backend/internal/infrastructure/logger"
	"github.com/agencyhub/backend/internal/infrastructure/mailer"
	"github.com/agencyhub/backend/internal/infrastructure/payment"
	"github.com/agencyhub/backend/internal/infrastructure/persistence"
	"github.com/agencyhub/backend/internal/infrastructure/printing"
	"github.com/agencyhub/backend/internal/infrastructure/queue"
	"github.com/agencyhub/backend/internal/infrastructure/storage"
	"github.com/agencyhub/backend/internal/infrastructure/telemetry"
	"github.com/agencyhub/backend/internal/infrastructure/worker"
	"github.com/agencyhub/backend/internal/interfaces/http/handler"
	"github.com/agencyhub/backend/internal/interfaces/http/middleware"
	"github.com/agencyhub/backend/internal/interfaces/http/router"

	_ "github.com/agencyhub/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//	@title			AgencyHub Backend API
//	@version		1.0
//	@description	Multi-tenant agency management API: CRM, projects, proposals, billing, email campaigns, client messaging, SEO tooling and store sync.

//	@contact.name	API Support
//	@contact.url	https://github.com/agencyhub/backend

//	@license.name	Apache 2.0
//	@license.url	http://www.apache.org/licenses/LICENSE-2.0.html

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting AgencyHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Tracing
	ctx := context.Background()
	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	// Database
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if cfg.Telemetry.Enabled {
		if err := telemetry.EnableDBTracing(db.DB, cfg.Database.DBName, log); err != nil {
			log.Error("Failed to enable database tracing", zap.Error(err))
		}
	}

	// Redis backs the job queue and the token blacklist. When it is not
	// reachable the server still starts with in-process fallbacks, which
	// is fine for a single instance but loses jobs on restart.
	var jobQueue queue.JobQueue
	var blacklist infraauth.TokenBlacklist
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	err = redisClient.Ping(pingCtx).Err()
	pingCancel()
	if err != nil {
		log.Warn("Redis unavailable, using in-process queue and blacklist", zap.Error(err))
		jobQueue = queue.NewMemoryJobQueue(1024)
		blacklist = infraauth.NewInMemoryTokenBlacklist()
	} else {
		log.Info("Redis connected successfully")
		jobQueue = queue.NewRedisJobQueue(redisClient)
		blacklist = infraauth.NewRedisTokenBlacklist(redisClient)
		defer func() {
			_ = redisClient.Close()
		}()
	}

	// Repositories
	orgRepo := persistence.NewGormOrganizationRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	projectRepo := persistence.NewGormProjectRepository(db.DB)
	proposalRepo := persistence.NewGormProposalRepository(db.DB)
	attachmentRepo := persistence.NewGormAttachmentRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	templateRepo := persistence.NewGormTemplateRepository(db.DB)
	listRepo := persistence.NewGormListRepository(db.DB)
	campaignRepo := persistence.NewGormCampaignRepository(db.DB)
	conversationRepo := persistence.NewGormConversationRepository(db.DB)
	messageRepo := persistence.NewGormMessageRepository(db.DB)
	siteRepo := persistence.NewGormSiteRepository(db.DB)
	pageRepo := persistence.NewGormPageRepository(db.DB)
	keywordRepo := persistence.NewGormKeywordRepository(db.DB)
	recRepo := persistence.NewGormRecommendationRepository(db.DB)
	connRepo := persistence.NewGormStoreConnectionRepository(db.DB)
	linkRepo := persistence.NewGormProductLinkRepository(db.DB)
	jobRepo := persistence.NewGormJobRepository(db.DB)

	// Outbound adapters. Each degrades to a harmless fallback when its
	// credentials are missing so a development instance runs end to end.
	var mail billingapp.Mailer
	if cfg.Mailer.APIKey != "" {
		resendMailer, err := mailer.NewResendMailer(&mailer.ResendConfig{
			APIKey:      cfg.Mailer.APIKey,
			DefaultFrom: cfg.Mailer.DefaultFrom,
		})
		if err != nil {
			log.Fatal("Failed to initialize mailer", zap.Error(err))
		}
		mail = resendMailer
	} else {
		log.Warn("Mailer not configured, outbound email will only be logged")
		mail = mailer.NewLogMailer(log)
	}

	var gateway billingapp.PaymentGateway
	if cfg.Payments.AccessToken != "" {
		squareAdapter, err := payment.NewSquareAdapter(&payment.SquareConfig{
			AccessToken: cfg.Payments.AccessToken,
			LocationID:  cfg.Payments.LocationID,
			Environment: cfg.Payments.Environment,
		})
		if err != nil {
			log.Fatal("Failed to initialize payment gateway", zap.Error(err))
		}
		gateway = squareAdapter
	} else {
		log.Warn("Payments not configured, card charges will be rejected")
		gateway = payment.NewDisabledGateway()
	}

	var assistant seoapp.Assistant
	if cfg.Assistant.Enabled && cfg.Assistant.APIKey != "" {
		openaiClient, err := ai.NewOpenAIClient(&ai.OpenAIConfig{
			APIKey:  cfg.Assistant.APIKey,
			Model:   cfg.Assistant.Model,
			BaseURL: cfg.Assistant.BaseURL,
		})
		if err != nil {
			log.Fatal("Failed to initialize writing assistant", zap.Error(err))
		}
		assistant = openaiClient
	} else {
		log.Info("Writing assistant disabled")
		assistant = ai.NewDisabledClient()
	}

	var objectStorage proposalapp.ObjectStorage
	if cfg.Storage.Bucket != "" {
		s3Storage, err := storage.NewS3ObjectStorage(&cfg.Storage, log)
		if err != nil {
			log.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		if err := s3Storage.EnsureBucket(ctx); err != nil {
			log.Warn("Could not ensure storage bucket", zap.Error(err))
		}
		objectStorage = s3Storage
	} else {
		log.Warn("Object storage not configured, attachments are kept in memory")
		objectStorage = storage.NewMemoryObjectStorage(cfg.Storage.PresignExpiry)
	}

	pageCrawler := crawler.NewPageCrawler()
	shopifyClient := ecommerce.NewShopifyClient()

	var pdfRenderer *printing.ChromedpRenderer
	if cfg.PDF.Enabled {
		pdfRenderer = printing.NewChromedpRenderer(printing.ChromedpConfig{
			RenderTimeout: cfg.PDF.RenderTimeout,
			NoSandbox:     cfg.App.Env != "production",
		}, log)
		defer pdfRenderer.Close()
	} else {
		log.Info("PDF rendering disabled")
	}

	// Application services
	jwtService := infraauth.NewJWTService(cfg.JWT)
	jobService := jobsapp.NewJobService(jobRepo, jobQueue, log)
	authService := authapp.NewAuthService(contactRepo, jwtService, blacklist, log)
	crmService := crmapp.NewCRMService(orgRepo, contactRepo, log)
	projectService := projectapp.NewProjectService(projectRepo, contactRepo, log)
	proposalService := proposalapp.NewProposalService(
		proposalRepo, attachmentRepo, contactRepo,
		mail, objectStorage, jobService, cfg.App.PublicBaseURL, log)
	billingService := billingapp.NewBillingService(
		invoiceRepo, contactRepo, gateway, mail, cfg.App.PublicBaseURL, log)
	emailService := emailapp.NewEmailService(
		templateRepo, listRepo, campaignRepo, contactRepo, mail, jobService, log)
	messagingService := messagingapp.NewMessagingService(
		conversationRepo, messageRepo, contactRepo, log)
	seoService := seoapp.NewSEOService(
		siteRepo, pageRepo, keywordRepo, recRepo,
		pageCrawler, assistant, jobService, log)
	integrationService := integrationapp.NewIntegrationService(
		connRepo, linkRepo, shopifyClient, jobService, log)
	dashboardService := dashboardapp.NewDashboardService(
		contactRepo, projectRepo, proposalRepo, invoiceRepo, jobRepo, log)

	// Background worker
	var workerCancel context.CancelFunc
	workerDone := make(chan struct{})
	if cfg.Worker.Enabled {
		dispatcher := worker.NewDispatcher(cfg.Worker, jobRepo, jobQueue, log)
		dispatcher.Register(jobs.JobKindCampaignSend, emailService.HandleCampaignSend)
		dispatcher.Register(jobs.JobKindSEOAudit, seoService.HandleAudit)
		dispatcher.Register(jobs.JobKindAssistantSEO, seoService.HandleAssist)
		if cfg.PDF.Enabled {
			pdfWorker := proposalapp.NewPDFWorker(
				proposalRepo, attachmentRepo, orgRepo, pdfRenderer, objectStorage, log)
			dispatcher.Register(jobs.JobKindProposalPDF, pdfWorker.Handle)
		} else {
			dispatcher.Register(jobs.JobKindProposalPDF, func(_ context.Context, _ *jobs.Job) (string, error) {
				return "", errors.New("pdf rendering is disabled")
			})
		}
		dispatcher.Register(jobs.JobKindStoreSync, integrationService.HandleStoreSync)
		dispatcher.Register(jobs.JobKindInvoiceSweep, func(ctx context.Context, _ *jobs.Job) (string, error) {
			return "", billingService.SweepOverdue(ctx)
		})
		dispatcher.Register(jobs.JobKindCampaignSweep, func(ctx context.Context, _ *jobs.Job) (string, error) {
			return "", emailService.SweepScheduled(ctx)
		})
		dispatcher.RegisterSweep("overdue_invoices", billingService.SweepOverdue)
		dispatcher.RegisterSweep("scheduled_campaigns", emailService.SweepScheduled)

		var workerCtx context.Context
		workerCtx, workerCancel = context.WithCancel(ctx)
		go func() {
			defer close(workerDone)
			dispatcher.Run(workerCtx)
		}()
	} else {
		close(workerDone)
		log.Info("Background worker disabled")
	}

	// Handlers
	authHandler := handler.NewAuthHandler(authService, crmService)
	organizationHandler := handler.NewOrganizationHandler(crmService)
	contactHandler := handler.NewContactHandler(crmService)
	projectHandler := handler.NewProjectHandler(projectService)
	proposalHandler := handler.NewProposalHandler(proposalService)
	invoiceHandler := handler.NewInvoiceHandler(billingService)
	emailHandler := handler.NewEmailHandler(emailService)
	messagingHandler := handler.NewMessagingHandler(messagingService)
	seoHandler := handler.NewSEOHandler(seoService)
	integrationHandler := handler.NewIntegrationHandler(integrationService)
	jobHandler := handler.NewJobHandler(jobService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	systemHandler := handler.NewSystemHandler()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()

	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	if tracerProvider.IsEnabled() {
		engine.Use(otelgin.Middleware(cfg.Telemetry.ServiceName))
	}

	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		engine.Use(middleware.RateLimitPathPrefix(authLimiter, "/api/v1/auth"))
	}

	// Health endpoint outside API versioning
	engine.GET("/health", healthHandler(db, redisClient))

	// JWT authentication for API routes. Public proposal and invoice
	// pages are token-addressed and skip it, as do the auth endpoints.
	jwtMiddleware := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		SkipPaths: []string{
			"/health",
			"/api/v1/auth/register",
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/system/ping",
			"/api/v1/system/info",
		},
		SkipPathPrefixes: []string{
			"/swagger",
			"/api/v1/public",
		},
		Logger: log,
	})
	engine.Use(jwtMiddleware)

	swaggerJWT := middleware.JWTAuthMiddlewareWithConfig(middleware.JWTMiddlewareConfig{
		JWTService:     jwtService,
		TokenBlacklist: blacklist,
		Logger:         log,
	})
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(middleware.SwaggerConfig{
			Enabled:     cfg.Swagger.Enabled,
			RequireAuth: cfg.Swagger.RequireAuth,
			AllowedIPs:  cfg.Swagger.AllowedIPs,
		}, swaggerJWT),
		ginSwagger.WrapHandler(swaggerFiles.Handler))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(authHandler).
		Register(organizationHandler).
		Register(contactHandler).
		Register(projectHandler).
		Register(proposalHandler).
		Register(invoiceHandler).
		Register(emailHandler).
		Register(messagingHandler).
		Register(seoHandler).
		Register(integrationHandler).
		Register(jobHandler).
		Register(dashboardHandler).
		Register(systemHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if workerCancel != nil {
		workerCancel()
	}
	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn("Worker did not finish in-flight jobs before timeout")
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports database and Redis reachability
func healthHandler(db *persistence.Database, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)
		status := http.StatusOK
		dbState := "ok"
		redisState := "ok"

		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			dbState = "error"
		}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			redisState = "unavailable"
		}

		body := gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": dbState,
			"redis":    redisState,
		}
		if status != http.StatusOK {
			body["status"] = "unhealthy"
		}
		c.JSON(status, body)
	}
}
