package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"phsar/internal/config"
	"phsar/internal/database"
	"phsar/internal/handlers"
	"phsar/internal/middleware"
	"phsar/internal/repositories"
	"phsar/internal/services"
	"phsar/pkg/eventledger"
	"phsar/pkg/metrics"
	"phsar/pkg/rabbitmq"
	"phsar/pkg/stripeclient"
)

// dependencies are the collaborators newApp wires into the services.
// publisher, ledger and metrics may be nil.
type dependencies struct {
	db        *gorm.DB
	gateway   services.PaymentGateway
	publisher services.EventPublisher
	ledger    services.EventLedger
	metrics   *metrics.ServerMetrics
}

func main() {
	// --- Configuration ---
	cfg, err := config.Load(viper.New())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// --- Database ---
	db, err := database.Setup(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	deps := dependencies{
		db: db,
		gateway: stripeclient.New(stripeclient.Config{
			SecretKey:     cfg.StripeSecretKey,
			WebhookSecret: cfg.StripeWebhookSecret,
			SuccessURL:    cfg.StripeSuccessURL,
			CancelURL:     cfg.StripeCancelURL,
			Currency:      cfg.StripeCurrency,
			APIURL:        cfg.StripeAPIURL,
		}),
		metrics: metrics.NewServerMetrics("api"),
	}

	// --- RabbitMQ (optional) ---
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		defer mqClient.Close()
		deps.publisher = mqClient
	} else {
		log.Println("RABBITMQ_URL not set. Order events will not be published.")
	}

	// --- Webhook event ledger (optional) ---
	if cfg.RedisAddr != "" {
		ledger := eventledger.NewRedisLedger(cfg.RedisAddr, cfg.EventLedgerTTL)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		pingErr := ledger.Ping(ctx)
		cancel()
		if pingErr != nil {
			log.Printf("Warning: Redis unavailable, webhook ledger disabled: %v", pingErr)
			ledger.Close()
		} else {
			defer ledger.Close()
			deps.ledger = ledger
		}
	}

	app := newApp(cfg, deps)

	// --- RabbitMQ consumer ---
	if mqClient != nil {
		go func() {
			log.Println("Starting RabbitMQ consumer for order events...")
			if err := mqClient.ConsumeOrderEvents(rabbitmq.LogOrderEvent); err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}()
	}

	// --- Start HTTP Server ---
	log.Printf("Starting server on port %s", cfg.AppPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	log.Println("Server gracefully stopped")
}

// newApp builds the services and handlers and mounts every route.
func newApp(cfg *config.Config, deps dependencies) *fiber.App {
	store := repositories.NewGORMStore(deps.db)

	authService := services.NewAuthService(cfg.JWTSecret)
	customerService := services.NewCustomerService(store)
	catalogService := services.NewCatalogService(store)
	cartService := services.NewCartService(store)
	checkoutService := services.NewCheckoutService(store, deps.gateway, deps.publisher, deps.metrics)
	paymentService := services.NewPaymentService(store, deps.gateway, deps.ledger, deps.publisher, deps.metrics,
		services.RedirectConfig{AppScheme: cfg.AppScheme, WebBaseURL: cfg.WebBaseURL})
	orderService := services.NewOrderService(store, deps.publisher, deps.metrics)

	app := fiber.New()

	// --- Middleware ---
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(deps.metrics.Middleware())

	auth := middleware.AuthRequired(authService)

	// --- Gateway callbacks and redirects ---
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	paymentHandler.RegisterGatewayRoutes(app)

	// --- API Routes ---
	apiV1 := app.Group("/api/v1")
	paymentHandler.RegisterRoutes(apiV1)
	handlers.NewCatalogHandler(catalogService).RegisterRoutes(apiV1, auth)
	handlers.NewCustomerHandler(customerService).RegisterRoutes(apiV1, auth)
	handlers.NewCartHandler(cartService).RegisterRoutes(apiV1, auth)
	handlers.NewCheckoutHandler(checkoutService).RegisterRoutes(apiV1, auth)
	handlers.NewOrderHandler(orderService).RegisterRoutes(apiV1, auth)

	// --- Health and metrics ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":      "healthy",
			"time":        time.Now().Format(time.RFC3339),
			"rabbitmq":    enabled(deps.publisher != nil),
			"eventLedger": enabled(deps.ledger != nil),
		})
	})
	if deps.metrics != nil {
		app.Get("/metrics", deps.metrics.Handler())
	}

	return app
}

func enabled(ok bool) string {
	if ok {
		return "enabled"
	}
	return "disabled"
}
