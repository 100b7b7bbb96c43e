package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/wholesale-storefront/api/routes"
	"github.com/angelmondragon/wholesale-storefront/internal/cart"
	"github.com/angelmondragon/wholesale-storefront/internal/catalog"
	"github.com/angelmondragon/wholesale-storefront/internal/checkout"
	"github.com/angelmondragon/wholesale-storefront/internal/orders"
	"github.com/angelmondragon/wholesale-storefront/internal/rfq"
	"github.com/angelmondragon/wholesale-storefront/pkg/airwallex"
	"github.com/angelmondragon/wholesale-storefront/pkg/config"
	"github.com/angelmondragon/wholesale-storefront/pkg/db"
	"github.com/angelmondragon/wholesale-storefront/pkg/enums"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
	"github.com/angelmondragon/wholesale-storefront/pkg/metrics"
	"github.com/angelmondragon/wholesale-storefront/pkg/migrate"
	"github.com/angelmondragon/wholesale-storefront/pkg/pubsub"
	"github.com/angelmondragon/wholesale-storefront/pkg/redis"
	"github.com/angelmondragon/wholesale-storefront/pkg/woocommerce"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	var pubsubClient *pubsub.Client
	if cfg.PubSub.Enabled() {
		pubsubClient, err = pubsub.NewClient(ctx, cfg.PubSub, logg)
		if err != nil {
			logg.Error(ctx, "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(ctx, "pubsub not configured, rfq notifications disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	upstream := metrics.NewUpstreamMetrics(registry)

	wcClient := woocommerce.NewClient(cfg.WooCommerce,
		woocommerce.WithLogger(logg),
		woocommerce.WithMetrics(upstream),
	)
	awxClient := airwallex.NewClient(cfg.Airwallex,
		airwallex.WithLogger(logg),
		airwallex.WithMetrics(upstream),
	)

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Store:             wcClient,
		Logger:            logg,
		DefaultPerPage:    cfg.WooCommerce.ProductsPerPage,
		EnrichConcurrency: cfg.Catalog.EnrichConcurrency,
		LowCountThreshold: cfg.Catalog.LowCountThreshold,
	})
	requireService(ctx, logg, "catalog", err)

	cartStorage, err := cart.NewRedisStorage(redisClient, cfg.Redis.CartTTL)
	requireService(ctx, logg, "cart storage", err)
	cartService, err := cart.NewService(cartStorage, logg)
	requireService(ctx, logg, "cart", err)

	rfqParams := rfq.ServiceParams{
		Repository: rfq.NewRepository(dbClient.DB()),
		Logger:     logg,
	}
	if pubsubClient != nil {
		if notifier := rfq.NewPubSubNotifier(pubsubClient.RFQPublisher()); notifier != nil {
			rfqParams.Notifier = notifier
		}
	}
	rfqService, err := rfq.NewService(rfqParams)
	requireService(ctx, logg, "rfq", err)

	ordersService, err := orders.NewService(wcClient, logg)
	requireService(ctx, logg, "orders", err)

	rates, err := checkout.RatesFromConfig(cfg.Checkout)
	requireService(ctx, logg, "checkout rates", err)
	currency, err := enums.ParseCurrency(cfg.Airwallex.DefaultCurrency)
	if err != nil {
		logg.Warn(ctx, "invalid default currency, falling back to USD")
		currency = enums.CurrencyUSD
	}
	incoterm, err := enums.ParseIncoterm(cfg.Checkout.DefaultIncoterm)
	if err != nil {
		logg.Warn(ctx, "invalid default incoterm, falling back to FOB")
		incoterm = enums.IncotermFOB
	}
	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Cart:     cartService,
		Orders:   ordersService,
		Payments: awxClient,
		Receipts: checkout.NewReceiptRepository(dbClient.DB()),
		Elements: func(payment checkout.PaymentInput) checkout.PaymentElement {
			return checkout.NewAirwallexElement(awxClient, payment.IntentID, payment.ClientSecret)
		},
		Rates:           &rates,
		DefaultCurrency: currency,
		DefaultIncoterm: incoterm,
		Logger:          logg,
	})
	requireService(ctx, logg, "checkout", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})

	server := &http.Server{
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			DB:          dbClient,
			Redis:       redisClient,
			Idempotency: redisClient,
			RateLimiter: redisClient,
			Metrics:     registry,
			Catalog:     catalogService,
			Cart:        cartService,
			RFQ:         rfqService,
			RFQPanels:   rfq.NewRegistry(rfqService),
			Orders:      ordersService,
			Checkout:    checkoutService,
			Payments:    awxClient,
		}),
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting storefront api")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	closeErr := server.Shutdown(shutdownCtx)
	if pubsubClient != nil {
		closeErr = multierr.Append(closeErr, pubsubClient.Close())
	}
	closeErr = multierr.Append(closeErr, redisClient.Close())
	closeErr = multierr.Append(closeErr, dbClient.Close())
	if closeErr != nil {
		logg.Error(shutdownCtx, "error during shutdown", closeErr)
		exitCode = 1
	}
	logg.Info(shutdownCtx, "storefront api stopped")
	os.Exit(exitCode)
}

func requireService(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to create "+name+" service", err)
	os.Exit(1)
}
