package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/vinohrad/shop/internal"
	"github.com/vinohrad/shop/internal/billing"
	"github.com/vinohrad/shop/internal/catalog"
	"github.com/vinohrad/shop/internal/dedup"
	"github.com/vinohrad/shop/internal/email"
	"github.com/vinohrad/shop/internal/handler/api"
	"github.com/vinohrad/shop/internal/handler/webhook"
	"github.com/vinohrad/shop/internal/invoicing"
	"github.com/vinohrad/shop/internal/middleware"
	"github.com/vinohrad/shop/internal/router"
	"github.com/vinohrad/shop/internal/routes"
	"github.com/vinohrad/shop/internal/service"
	"github.com/vinohrad/shop/internal/settings"
	"github.com/vinohrad/shop/internal/telemetry"
)

func run() error {
	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Load catalog and checkout settings
	catalogStore, err := catalog.NewStaticStore(wineCatalog())
	if err != nil {
		return fmt.Errorf("catalog initialization failed: %w", err)
	}
	settingsStore := settings.NewStaticStore(settings.Defaults())
	logger.Info("Catalog and settings loaded", "products", len(catalogStore.List()))

	// Initialize Stripe billing provider
	stripeConfig := billing.StripeConfig{
		APIKey:              cfg.Stripe.SecretKey,
		WebhookSecret:       cfg.Stripe.WebhookSecret,
		StatementDescriptor: "VINOHRAD",
	}
	billingProvider, err := billing.NewStripeProvider(stripeConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize Stripe provider: %w", err)
	}
	logger.Info("Stripe billing provider initialized", "test_mode", stripeConfig.IsTestMode())

	// Initialize invoicing
	sfClient := invoicing.NewSuperFakturaClient(cfg.SuperFaktura.Email, cfg.SuperFaktura.APIKey, cfg.SuperFaktura.BaseURL)
	invoicingService := invoicing.NewService(sfClient, logger)
	logger.Info("SuperFaktura invoicing initialized")

	// Initialize email
	sender := email.NewResendSender(cfg.Email.ResendAPIKey)
	emailService := email.NewService(sender, cfg.Email.From, cfg.Email.FromName, cfg.Email.AdminAddress)
	logger.Info("Email sender initialized", "from", cfg.Email.From)

	// Initialize webhook dedup store
	var dedupStore dedup.Store
	if cfg.Dedup.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Dedup.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid redis URL: %w", err)
		}
		dedupStore = dedup.NewRedisStore(redis.NewClient(opts), cfg.Dedup.Window)
		logger.Info("Webhook dedup using Redis", "window", cfg.Dedup.Window)
	} else {
		memStore := dedup.NewMemoryStore(cfg.Dedup.Window)
		defer memStore.Close()
		dedupStore = memStore
		logger.Info("Webhook dedup using in-memory store", "window", cfg.Dedup.Window)
	}

	// Initialize metrics
	businessMetrics := telemetry.NewBusinessMetrics("vinohrad", prometheus.DefaultRegisterer)
	httpMetrics := middleware.NewMetrics("vinohrad", prometheus.DefaultRegisterer)

	// Initialize services
	validator := service.NewValidator(catalogStore, settingsStore, logger)
	dispatcher := service.NewDispatcher(emailService, invoicingService, settingsStore, businessMetrics, logger)
	finalizer := service.NewFinalizer(invoicingService, dispatcher, businessMetrics, logger)
	checkout := service.NewCheckout(validator, billingProvider, settingsStore, finalizer, businessMetrics, logger)

	// Build route dependencies
	apiDeps := routes.APIDeps{
		CheckoutHandler:   api.NewCheckoutHandler(checkout, logger),
		StorefrontHandler: api.NewStorefrontHandler(catalogStore, settingsStore),
	}

	stripeWebhookHandler := webhook.NewStripeHandler(billingProvider, finalizer, dedupStore, businessMetrics, logger, webhook.StripeWebhookConfig{
		WebhookSecret:             cfg.Stripe.WebhookSecret,
		SkipSignatureVerification: cfg.Webhook.SkipSignatureVerification,
		Environment:               cfg.Env,
		RefetchAttempts:           cfg.Webhook.RefetchAttempts,
		RefetchDelay:              cfg.Webhook.RefetchDelay,
	})
	webhookDeps := routes.WebhookDeps{
		StripeHandler: stripeWebhookHandler.HandleWebhook,
	}

	// Create router and register routes
	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		httpMetrics.Middleware,
		router.Logger(logger),
		router.CORS(cfg.CORSOrigins),
	)

	// Metrics endpoint (no auth required, but should be protected in production via firewall)
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		httpMetrics.Handler().ServeHTTP(w, req)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	routes.RegisterAPIRoutes(r, apiDeps)
	routes.RegisterWebhookRoutes(r, webhookDeps)

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.Info("Starting server", "address", addr, "env", cfg.Env)

	if err := http.ListenAndServe(addr, r); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// wineCatalog returns the products the shop sells. Prices are in euros;
// a sale price, when present, is what customers are charged.
func wineCatalog() []catalog.Product {
	sale := func(v float64) *decimal.Decimal {
		d := decimal.NewFromFloat(v)
		return &d
	}
	return []catalog.Product{
		{ID: "frankovka-modra-2022", Title: "Frankovka modrá 2022", Category: "red", RegularPrice: decimal.NewFromFloat(8.90)},
		{ID: "svatovavrinecke-2021", Title: "Svätovavrinecké 2021", Category: "red", RegularPrice: decimal.NewFromFloat(9.50)},
		{ID: "rizling-vlassky-2023", Title: "Rizling vlašský 2023", Category: "white", RegularPrice: decimal.NewFromFloat(11.50)},
		{ID: "veltlin-zeleny-2023", Title: "Veltlínske zelené 2023", Category: "white", RegularPrice: decimal.NewFromFloat(7.90)},
		{ID: "rose-frankovka-2024", Title: "Rosé Frankovka 2024", Category: "rose", RegularPrice: decimal.NewFromFloat(9.90), SalePrice: sale(7.50)},
		{ID: "muskat-moravsky-2023", Title: "Muškát moravský 2023", Category: "white", RegularPrice: decimal.NewFromFloat(8.50)},
	}
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
