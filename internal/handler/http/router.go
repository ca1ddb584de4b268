package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/w24010/delightful/internal/service"
	"github.com/w24010/delightful/pkg/health"
	"github.com/w24010/delightful/pkg/middleware"
)

// Services are the application services exposed over HTTP.
type Services struct {
	Catalog  *service.CatalogService
	Cart     *service.CartService
	Address  *service.AddressService
	Checkout *service.CheckoutService
}

// RouterConfig holds the transport settings of the router.
type RouterConfig struct {
	ServiceName string
	PprofCIDRs  []string
	CORS        middleware.CORSConfig

	// RequestTimeout bounds every REST request. Progress streams are exempt.
	RequestTimeout time.Duration

	// CatalogMaxAge is the Cache-Control max-age of catalog responses, in seconds.
	CatalogMaxAge int

	// LocateLimiter throttles current-location lookups per client. Optional.
	LocateLimiter *middleware.RateLimiter

	// ProgressInterval is the tick period of order progress streams.
	ProgressInterval time.Duration
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(svcs Services, healthHandler *health.Handler, logger *slog.Logger, cfg RouterConfig) http.Handler {
	if cfg.ServiceName == "" {
		cfg.ServiceName = "storefront"
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics(cfg.ServiceName))
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.Session())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	catalogHandler := NewCatalogHandler(svcs.Catalog, logger)
	cartHandler := NewCartHandler(svcs.Cart, logger)
	addressHandler := NewAddressHandler(svcs.Address, logger)
	checkoutHandler := NewCheckoutHandler(svcs.Checkout, logger)
	orderHandler := NewOrderHandler(svcs.Checkout, logger, cfg.ProgressInterval, cfg.CORS.Origins())

	r.Route("/api/v1", func(r chi.Router) {
		// Progress streams outlive the request timeout and must stay hijackable.
		r.Get("/orders/{orderId}/progress", orderHandler.StreamProgress)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Compress(5))
			r.Use(chimw.Timeout(cfg.RequestTimeout))
			r.Use(ContentTypeJSON)

			r.Route("/catalog", func(r chi.Router) {
				r.Use(middleware.CacheControl(cfg.CatalogMaxAge))

				r.Get("/restaurants", catalogHandler.ListRestaurants)
				r.Get("/restaurants/{id}", catalogHandler.GetRestaurant)
				r.Get("/restaurants/{id}/menu", catalogHandler.GetMenu)
				r.Get("/categories", catalogHandler.ListFeaturedCategories)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Use(middleware.NoStore)

				r.Get("/confirmation", orderHandler.GetConfirmation)
				r.Get("/stages", orderHandler.ListStages)
			})

			// Session-scoped state.
			r.Group(func(r chi.Router) {
				r.Use(middleware.NoStore)
				r.Use(middleware.RequireSession())

				r.Get("/cart", cartHandler.GetCart)
				r.Delete("/cart", cartHandler.ClearCart)
				r.Post("/cart/items", cartHandler.AddItem)
				r.Put("/cart/items/{itemId}", cartHandler.UpdateItemQuantity)
				r.Delete("/cart/items/{itemId}", cartHandler.RemoveItem)

				r.Get("/address", addressHandler.GetAddress)
				r.Put("/address", addressHandler.SubmitAddress)
				r.Delete("/address", addressHandler.ClearAddress)
				r.Post("/address/check", addressHandler.CheckAddress)
				r.With(locateLimit(cfg.LocateLimiter)).Post("/address/locate", addressHandler.LocateCurrent)

				r.Get("/checkout", checkoutHandler.GetCheckout)
				r.Post("/checkout/format", checkoutHandler.FormatCard)
				r.Post("/checkout/validate", checkoutHandler.ValidateCard)
				r.Post("/checkout/orders", checkoutHandler.PlaceOrder)
			})
		})
	})

	return r
}

func locateLimit(rl *middleware.RateLimiter) func(http.Handler) http.Handler {
	if rl == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return rl.Handler
}
