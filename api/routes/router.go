package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/admin"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/profiles"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

// CacheStore is the Redis surface the HTTP layer needs.
type CacheStore interface {
	pkgredis.IdempotencyStore
	middleware.WindowCounter
	Ping(ctx context.Context) error
}

// Services groups the domain services exposed over HTTP.
type Services struct {
	Auth     auth.Service
	Catalog  catalog.Service
	Cart     cart.Service
	Checkout checkout.Service
	Orders   orders.Service
	Profiles profiles.Service
	Admin    admin.Service
}

// Observability carries the Prometheus wiring. Both fields are optional.
type Observability struct {
	HTTP     *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	cache CacheStore,
	sessionManager session.AccessSessionChecker,
	cookies sessions.Store,
	obs Observability,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(obs.HTTP),
		middleware.CORS(cfg.HTTP.CORSOrigins),
	)

	var redisP controllers.Pinger
	if cache != nil {
		redisP = cache
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})
	if obs.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(obs.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/products", controllers.ProductList(svc.Catalog, logg))
	r.Get("/products/{slug}", controllers.ProductDetail(svc.Catalog, logg))
	r.Get("/categories", controllers.CategoryList(svc.Catalog, logg))

	loginThrottle := middleware.LoginThrottle(cfg.AuthRateLimit)
	registerThrottle := middleware.RegisterThrottle(cfg.AuthRateLimit)

	// Cookie-identified routes.
	r.Group(func(r chi.Router) {
		if cookies != nil {
			r.Use(middleware.SessionIdentity(cookies, cfg.Session.CookieName, logg))
		}
		r.Use(middleware.CSRF(cfg.FeatureFlags.CSRF, cfg.Session, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, sessionManager, logg))
			r.Get("/", controllers.CartView(svc.Cart, logg))
			r.Get("/count", controllers.CartCount(svc.Cart, logg))
			r.Post("/add/{productId}", controllers.CartAdd(svc.Cart, logg))
			r.Post("/remove/{itemId}", controllers.CartRemove(svc.Cart, logg))
			r.Post("/update/{itemId}", controllers.CartUpdate(svc.Cart, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
			r.Use(middleware.Idempotency(cache, logg))
			r.Post("/create", controllers.OrderCreate(svc.Checkout, logg))
			r.Get("/success/{orderId}", controllers.OrderSuccess(svc.Orders, logg))
			r.Get("/history", controllers.OrderHistory(svc.Orders, logg))
			r.Get("/detail/{orderId}", controllers.OrderDetail(svc.Orders, logg))
			r.Post("/cancel/{orderId}", controllers.OrderCancel(svc.Orders, logg))
		})

		r.Route("/accounts", func(r chi.Router) {
			r.With(
				middleware.Throttle(registerThrottle, cache, logg),
				middleware.Idempotency(cache, logg),
			).Post("/register", controllers.AccountRegister(svc.Auth, logg))
			r.With(middleware.Throttle(loginThrottle, cache, logg)).Post("/login", controllers.AccountLogin(svc.Auth, logg))
			r.Post("/refresh", controllers.AccountRefresh(svc.Auth, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
				r.Post("/logout", controllers.AccountLogout(svc.Auth, logg))
				r.Get("/profile", controllers.ProfileGet(svc.Profiles, logg))
				r.Post("/profile", controllers.ProfileUpdate(svc.Profiles, logg))
			})
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))
		r.Use(middleware.RequireRole(logg, enums.UserRoleStaff))
		r.Use(middleware.Idempotency(cache, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.AdminOrderList(svc.Admin, logg))
			r.Post("/status", controllers.AdminOrderStatus(svc.Admin, logg))
			r.Get("/{orderId}", controllers.AdminOrderDetail(svc.Admin, logg))
		})
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminProductList(svc.Admin, logg))
			r.Post("/", controllers.AdminProductCreate(svc.Admin, logg))
			r.Post("/actions", controllers.AdminProductAction(svc.Admin, logg))
			r.Patch("/{productId}", controllers.AdminProductUpdate(svc.Admin, logg))
		})
		r.Route("/categories", func(r chi.Router) {
			r.Get("/", controllers.AdminCategoryList(svc.Admin, logg))
			r.Post("/", controllers.AdminCategoryCreate(svc.Admin, logg))
		})
		r.Get("/carts", controllers.AdminCartList(svc.Admin, logg))
	})

	return r
}
