package main

import (
	stdlog "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"warehouse/internal/auth"
	"warehouse/internal/config"
	"warehouse/internal/database"
	"warehouse/internal/handlers"
	"warehouse/internal/logger"
	"warehouse/internal/middleware"
	"warehouse/internal/models"
	"warehouse/internal/repositories"
	"warehouse/internal/response"
	"warehouse/internal/services"
	"warehouse/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load configuration: %v", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = log.Sync() }()

	// --- Database ---
	db, err := database.Open(cfg.Database, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	// --- RabbitMQ (optional) ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL}, log)
		if err != nil {
			log.Warn("RabbitMQ unavailable, purchase events disabled", zap.Error(err))
		} else {
			defer func() { _ = mqClient.Close() }()
			publisher = mqClient

			if err := mqClient.ConsumePurchaseEvents(logPurchase(log)); err != nil {
				log.Error("Failed to start RabbitMQ consumer", zap.Error(err))
			}
		}
	}

	app, err := newApp(cfg, db, publisher, log)
	if err != nil {
		log.Fatal("Failed to build application", zap.Error(err))
	}

	// --- Start HTTP Server ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info("Starting server", zap.String("addr", cfg.AppPort))
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Error("Server stopped", zap.Error(err))
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("Error during Fiber shutdown", zap.Error(err))
	}
	log.Info("Server gracefully stopped")
}

// newApp wires repositories, services and handlers into a Fiber app.
// publisher may be nil.
func newApp(cfg *config.Config, db *gorm.DB, publisher services.EventPublisher, log *zap.Logger) (*fiber.App, error) {
	tokens, err := auth.NewTokenService(cfg.Token)
	if err != nil {
		return nil, err
	}
	hasher := auth.NewBcryptHasher(cfg.Hasher.Cost)

	authService := services.NewLoggingAuthenticator(
		services.NewAuthService(repositories.NewGORMUserRepository(db), hasher, tokens), log)
	inventory := services.NewLoggingInventory(
		services.NewInventoryService(repositories.NewGORMProductRepository(db), publisher, log), log)

	app := fiber.New(fiber.Config{
		ErrorHandler:          response.ErrorHandler,
		DisableStartupMessage: true,
	})
	app.Use(middleware.RequestLogger(log.Named("http")))

	authRequired := middleware.AuthRequired(authService)
	handlers.NewAuthHandler(authService).RegisterRoutes(app, authRequired)
	handlers.NewProductHandler(inventory).RegisterRoutes(app, authRequired)

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		status, code := "healthy", fiber.StatusOK
		if err := database.Ping(c.UserContext(), db); err != nil {
			log.Warn("Health check failed", zap.Error(err))
			status, code = "unhealthy", fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	return app, nil
}

// logPurchase handles purchase events received from the queue.
func logPurchase(log *zap.Logger) func(models.PurchaseEvent) error {
	log = log.Named("purchases")
	return func(event models.PurchaseEvent) error {
		log.Info("Received purchase event",
			zap.String("product_id", event.ProductID),
			zap.String("seller_id", event.SellerID),
			zap.String("buyer_id", event.BuyerID),
			zap.Int("quantity", event.Quantity),
			zap.Int("remaining", event.Remaining),
			zap.String("price", event.Price.StringFixed(2)),
		)
		return nil
	}
}
