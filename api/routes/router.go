package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/wholesale-storefront/api/controllers"
	cartcontrollers "github.com/angelmondragon/wholesale-storefront/api/controllers/cart"
	rfqcontrollers "github.com/angelmondragon/wholesale-storefront/api/controllers/rfq"
	"github.com/angelmondragon/wholesale-storefront/api/middleware"
	"github.com/angelmondragon/wholesale-storefront/internal/cart"
	"github.com/angelmondragon/wholesale-storefront/internal/catalog"
	"github.com/angelmondragon/wholesale-storefront/internal/checkout"
	"github.com/angelmondragon/wholesale-storefront/internal/orders"
	"github.com/angelmondragon/wholesale-storefront/internal/rfq"
	"github.com/angelmondragon/wholesale-storefront/pkg/config"
	"github.com/angelmondragon/wholesale-storefront/pkg/logger"
	pkgredis "github.com/angelmondragon/wholesale-storefront/pkg/redis"
)

// RateLimiter is the fixed-window counter behind submission throttling.
type RateLimiter interface {
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Dependencies are the services and stores the HTTP surface is wired to.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       controllers.Pinger
	Idempotency pkgredis.IdempotencyStore
	RateLimiter RateLimiter
	Metrics     prometheus.Gatherer

	Catalog   catalog.Service
	Cart      cart.Service
	RFQ       rfq.Service
	RFQPanels *rfq.Registry
	Orders    orders.Service
	Checkout  checkout.Service
	Payments  controllers.PaymentGateway
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg,
			controllers.ReadinessCheck{Name: "db", Pinger: deps.DB},
			controllers.ReadinessCheck{Name: "redis", Pinger: deps.Redis},
		))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	// Idempotency runs inline so it sees the full route pattern.
	idempotent := middleware.Idempotency(deps.Idempotency, logg)
	checkoutLimit := middleware.SubmitRateLimit(
		middleware.NewSubmitRateLimitPolicy("checkout", cfg.RateLimit.CheckoutWindow, cfg.RateLimit.CheckoutLimit),
		deps.RateLimiter, logg,
	)
	rfqLimit := middleware.SubmitRateLimit(
		middleware.NewSubmitRateLimitPolicy("rfq", cfg.RateLimit.RFQWindow, cfg.RateLimit.RFQLimit),
		deps.RateLimiter, logg,
	)

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.CartSession(cfg.Redis.CartTTL, cfg.App.IsProd(), logg))

		r.Get("/products", controllers.Products(deps.Catalog, logg))
		r.Get("/categories", controllers.Categories(deps.Catalog, logg))
		r.With(checkoutLimit, idempotent).Post("/checkout", controllers.Checkout(deps.Orders, logg))

		r.Route("/airwallex", func(r chi.Router) {
			r.Post("/auth", controllers.AirwallexAuth(deps.Payments, logg))
			r.Post("/create-payment-intent", controllers.AirwallexCreatePaymentIntent(deps.Payments, logg))
		})

		r.Route("/v1/cart", func(r chi.Router) {
			r.Get("/", cartcontrollers.CartFetch(deps.Cart, logg))
			r.Delete("/", cartcontrollers.CartClear(deps.Cart, logg))
			r.Post("/items", cartcontrollers.CartAddItem(deps.Cart, deps.Catalog, logg))
			r.Patch("/items/{productId}", cartcontrollers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items/{productId}", cartcontrollers.CartRemoveItem(deps.Cart, logg))

			r.Get("/checkout/totals", cartcontrollers.CheckoutTotals(deps.Checkout, logg))
			r.Post("/checkout/intent", cartcontrollers.CheckoutIntent(deps.Checkout, logg))
			r.With(checkoutLimit, idempotent).Post("/checkout", cartcontrollers.CheckoutSubmit(deps.Checkout, logg))
		})

		r.Route("/v1/rfq", func(r chi.Router) {
			r.Get("/", rfqcontrollers.PanelFetch(deps.RFQPanels, logg))
			r.With(rfqLimit, idempotent).Post("/", rfqcontrollers.Submit(deps.RFQ, logg))
			r.Post("/open", rfqcontrollers.PanelOpen(deps.RFQPanels, logg))
			r.Post("/close", rfqcontrollers.PanelClose(deps.RFQPanels, logg))
			r.With(rfqLimit, idempotent).Post("/submit", rfqcontrollers.PanelSubmit(deps.RFQPanels, logg))
		})
	})

	return r
}
