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

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/routes"
	"github.com/angelmondragon/storefront-backend/internal/admin"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/profiles"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/auth/session"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/db"
	"github.com/angelmondragon/storefront-backend/pkg/instance"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	"github.com/angelmondragon/storefront-backend/pkg/migrate"
	"github.com/angelmondragon/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Environment: cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(logg, "database", err)
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	requireResource(logg, "session manager", err)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storeMetrics := metrics.NewStoreMetrics(reg)

	services, err := buildServices(cfg, logg, dbClient, sessionManager, storeMetrics)
	requireResource(logg, "services", err)

	cookies, err := middleware.NewCookieStore(cfg.Session)
	requireResource(logg, "cookie store", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"addr":     addr,
		"instance": instance.ID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, cookies,
			routes.Observability{HTTP: metrics.NewHTTPMetrics(reg), Gatherer: reg},
			services,
		),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logg.Info(ctx, "shutting down api server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}()

	logg.Info(ctx, "starting api server")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	sessionManager *session.Manager,
	storeMetrics *metrics.StoreMetrics,
) (routes.Services, error) {
	conn := dbClient.DB()

	cartRepo := cart.NewRepository(conn)
	carts, err := cart.NewService(cart.ServiceParams{
		Repo:    cartRepo,
		Tx:      dbClient,
		Logger:  logg,
		Metrics: storeMetrics,
	})
	if err != nil {
		return routes.Services{}, err
	}

	ordersRepo := orders.NewRepository(conn)
	orderSvc, err := orders.NewService(ordersRepo, logg, storeMetrics)
	if err != nil {
		return routes.Services{}, err
	}

	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	if err != nil {
		return routes.Services{}, err
	}

	checkoutSvc, err := checkout.NewService(dbClient, cartRepo, ordersRepo,
		checkout.WithLogger(logg),
		checkout.WithMetrics(storeMetrics),
	)
	if err != nil {
		return routes.Services{}, err
	}

	usersRepo := users.NewRepository(conn)
	profileSvc, err := profiles.NewService(profiles.NewRepository(conn), usersRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}

	registrar, err := auth.NewAccountRegistrar(dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		SessionManager: sessionManager,
		Carts:          carts,
		Registrar:      registrar,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	adminSvc, err := admin.NewService(admin.ServiceParams{
		Orders:  ordersRepo,
		Status:  orderSvc,
		Catalog: catalogSvc,
		Carts:   carts,
		Logger:  logg,
	})
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Auth:     authSvc,
		Catalog:  catalogSvc,
		Cart:     carts,
		Checkout: checkoutSvc,
		Orders:   orderSvc,
		Profiles: profileSvc,
		Admin:    adminSvc,
	}, nil
}

func requireResource(logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(context.Background(), "resource not working: "+resource, err)
	os.Exit(1)
}
