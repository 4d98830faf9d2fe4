package router

import (
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gradtrack/gradtrack-api/database"
	"github.com/gradtrack/gradtrack-api/handlers"
	auth_handlers "github.com/gradtrack/gradtrack-api/handlers/auth"
	document_handlers "github.com/gradtrack/gradtrack-api/handlers/document"
	program_handlers "github.com/gradtrack/gradtrack-api/handlers/program"
	requirement_handlers "github.com/gradtrack/gradtrack-api/handlers/requirement"
	"github.com/gradtrack/gradtrack-api/services"
	"github.com/gradtrack/gradtrack-api/utils/auth"
	"github.com/gradtrack/gradtrack-api/utils/cache"
	"github.com/gradtrack/gradtrack-api/utils/middleware"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := os.Getenv("JWT_ISSUER")
	if jwtIssuer == "" {
		jwtIssuer = "gradtrack-api"
	}

	jwtConfig := auth.JWTConfig{
		Secret:        jwtSecret,
		Expiry:        24 * time.Hour,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs the login brute force lockout. The API still runs
	// without it, just without the lockout.
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	redisCache, err := cache.NewRedisCache(redisURL)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Brute force protection will be disabled.", err)
	}

	var bruteForceProtection *middleware.BruteForceProtection
	if redisCache != nil {
		bruteForceProtection = middleware.NewBruteForceProtection(redisCache)
	}

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)

	programService := services.NewProgramService(db)
	programHandler := program_handlers.NewProgramHandler(db, programService)

	requirementService := services.NewRequirementService(db)
	requirementHandler := requirement_handlers.NewRequirementHandler(db, requirementService)

	documentService := services.NewDocumentService(db)
	documentHandler := document_handlers.NewDocumentHandler(db, documentService)

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,
		RateLimitWindow:   1 * time.Minute,
	})

	// Health check endpoint (public)
	app.Get("/ping", handlers.HealthCheck(store))

	api := app.Group("/api/v1")

	// Auth routes (public)
	authGroup := api.Group("/auth")
	authGroup.Post("/register", authHandler.Register)

	if bruteForceProtection != nil {
		authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}

	authGroup.Post("/refresh", authHandler.RefreshToken)

	// Protected auth routes
	authGroup.Post("/logout", authMiddleware.Required(), authHandler.Logout)
	authGroup.Post("/change-password", authMiddleware.Required(), authHandler.ChangePassword)
	authGroup.Post("/change-email", authMiddleware.Required(), authHandler.ChangeEmail)

	// Profile routes (protected)
	profileGroup := api.Group("/profile", authMiddleware.Required())
	profileGroup.Get("/", authHandler.GetProfile)
	profileGroup.Put("/", authHandler.UpdateProfile)

	// Program routes (protected, always scoped to the authenticated user)
	programs := api.Group("/programs", authMiddleware.Required())
	programs.Get("/", programHandler.ListPrograms)
	programs.Post("/", programHandler.CreateProgram)
	programs.Get("/:id", programHandler.GetProgram)
	programs.Put("/:id", programHandler.UpdateProgram)
	programs.Delete("/:id", programHandler.DeleteProgram)
	programs.Post("/:id/recount", programHandler.RecountProgram)

	// Requirement routes nested under their program
	programs.Get("/:program_id/requirements", requirementHandler.ListRequirements)
	programs.Post("/:program_id/requirements", requirementHandler.CreateRequirement)

	// Requirement routes addressed by requirement ID
	requirements := api.Group("/requirements", authMiddleware.Required())
	requirements.Put("/:id", requirementHandler.UpdateRequirement)
	requirements.Delete("/:id", requirementHandler.DeleteRequirement)
	requirements.Put("/:id/document", requirementHandler.AttachDocument)
	requirements.Delete("/:id/document", requirementHandler.DetachDocument)

	// Document routes (protected)
	documents := api.Group("/documents", authMiddleware.Required())
	documents.Get("/", documentHandler.ListDocuments)
	documents.Post("/", documentHandler.CreateDocument)
	documents.Get("/:id", documentHandler.GetDocument)
	documents.Put("/:id", documentHandler.UpdateDocument)
	documents.Delete("/:id", documentHandler.DeleteDocument)
	documents.Post("/:id/file", documentHandler.UploadFile)
	documents.Get("/:id/file", documentHandler.GetDownloadURL)
}
