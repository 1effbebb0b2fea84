package main

import (
	"log"
	"os"

	"chauffeur-backend/internal/cache"
	"chauffeur-backend/internal/database"
	"chauffeur-backend/internal/handler"
	"chauffeur-backend/internal/middleware"
	"chauffeur-backend/internal/repository"
	"chauffeur-backend/internal/service"
	"chauffeur-backend/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Chauffeur Quotation API
// @version         1.0
// @description     Quotation pricing and currency resolution API for chauffeured vehicle services.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "postgres")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	// Shared cache: Redis when configured, in-process otherwise
	var refCache cache.Cache
	if redisAddr := os.Getenv("REDIS_ADDR"); redisAddr != "" {
		refCache = cache.NewRedis(redisAddr, os.Getenv("REDIS_PASSWORD"))
		log.Printf("Using Redis cache at %s", redisAddr)
	} else {
		refCache = cache.NewMemory()
		log.Println("REDIS_ADDR not set, using in-memory cache")
	}

	// Static fallback pricing, overridable by config file
	fallbackTable, err := service.LoadFallbackTable(os.Getenv("FALLBACK_PRICING_FILE"))
	if err != nil {
		log.Fatalf("Fallback pricing table failed to load: %v", err)
	}

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	pricingItemRepo := repository.NewPricingItemRepository(db)
	packageRepo := repository.NewPackageRepository(db)
	promotionRepo := repository.NewPromotionRepository(db)
	timeRuleRepo := repository.NewTimeRuleRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)
	statisticsRepo := repository.NewStatisticsRepository(db)

	resolver := service.NewPriceResolver(pricingItemRepo, refCache, fallbackTable)
	userService := service.NewUserService(userRepo)
	pricingService := service.NewPricingService(pricingItemRepo, packageRepo, promotionRepo, activityRepo, refCache, wsHub)
	timeRuleService := service.NewTimeRuleService(timeRuleRepo, activityRepo, refCache, wsHub)
	currencyService := service.NewCurrencyService(os.Getenv("EXCHANGE_RATE_URL"), os.Getenv("EXCHANGE_RATE_BACKUP_URL"))
	activityService := service.NewActivityService(activityRepo)
	statisticsService := service.NewStatisticsService(statisticsRepo)
	quotationService := service.NewQuotationService(
		quotationRepo, packageRepo, promotionRepo, activityRepo,
		resolver, timeRuleService, currencyService, txManager, refCache, wsHub,
	)

	// Initialize Handlers
	userHandler := handler.NewUserHandler(userService)
	pricingHandler := handler.NewPricingHandler(pricingService)
	timeRuleHandler := handler.NewTimeRuleHandler(timeRuleService)
	currencyHandler := handler.NewCurrencyHandler(currencyService)
	quotationHandler := handler.NewQuotationHandler(quotationService)
	activityHandler := handler.NewActivityHandler(activityService)
	statisticsHandler := handler.NewStatisticsHandler(statisticsService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, middleware.GetJWTSecret())
	})

	// Register API Routes
	userHandler.RegisterRoutes(router.Group(""))
	pricingHandler.RegisterRoutes(router.Group(""))
	timeRuleHandler.RegisterRoutes(router.Group(""))
	currencyHandler.RegisterRoutes(router.Group(""))
	quotationHandler.RegisterRoutes(router.Group(""))
	activityHandler.RegisterRoutes(router.Group(""))
	statisticsHandler.RegisterRoutes(router.Group(""))

	port := envOr("PORT", "8080")

	log.Printf("Server listening on :%s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
