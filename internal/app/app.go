package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/Elaba987/pry-Inventario/internal/checkout"
	"github.com/Elaba987/pry-Inventario/internal/domain/cart"
	"github.com/Elaba987/pry-Inventario/internal/domain/product"
	"github.com/Elaba987/pry-Inventario/internal/domain/report"
	"github.com/Elaba987/pry-Inventario/internal/domain/sale"
	"github.com/Elaba987/pry-Inventario/internal/domain/supplier"
	"github.com/Elaba987/pry-Inventario/internal/handler"
	"github.com/Elaba987/pry-Inventario/internal/storage"
	"github.com/Elaba987/pry-Inventario/internal/storage/memory"
	"github.com/Elaba987/pry-Inventario/internal/storage/postgres"
	"github.com/Elaba987/pry-Inventario/internal/storage/redisstore"
	"github.com/Elaba987/pry-Inventario/pkg/health"
	"github.com/Elaba987/pry-Inventario/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Backend),
	)

	healthSvc := health.New()
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))

	gw, closeGateway, err := openGateway(ctx, cfg, healthSvc)
	if err != nil {
		return errors.Wrap(err, "open storage gateway")
	}
	defer closeGateway()

	// Stores degrade to in-memory operation when their record cannot be
	// read; the failure is reported, not fatal.
	inventory, err := product.Load(ctx, gw)
	if err != nil {
		lg.Warn("catalog not loaded, starting empty", zap.Error(err))
	}
	ledger, err := sale.Load(ctx, gw)
	if err != nil {
		lg.Warn("sales ledger not loaded, starting empty", zap.Error(err))
	}
	suppliers, err := supplier.Load(ctx, gw)
	if err != nil {
		lg.Warn("supplier directory not loaded, starting empty", zap.Error(err))
	}

	cartSession := cart.NewSession(inventory)
	checkoutSvc := checkout.NewService(inventory, ledger, lg.Named("checkout"))
	reports := report.NewAggregator(ledger)
	dashboard := report.NewDashboard(inventory, suppliers, ledger, cfg.LowStock.Threshold)

	h := handler.New(
		handler.Config{LowStockThreshold: cfg.LowStock.Threshold},
		inventory,
		cartSession,
		ledger,
		suppliers,
		reports,
		dashboard,
		checkoutSvc,
	)

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	api := httpmiddleware.Wrap(mux,
		httpmiddleware.Recovery(),
		httpmiddleware.CORS(httpmiddleware.CORSConfig{
			AllowOrigins:     cfg.CORS.Origins,
			AllowHeaders:     []string{"Content-Type"},
			AllowCredentials: cfg.CORS.AllowCredentials,
			MaxAge:           86400,
		}),
		httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
		}),
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.LogRequests(),
	)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: otelhttp.NewHandler(api, "tienda-api",
			otelhttp.WithTracerProvider(m.TracerProvider()),
			otelhttp.WithMeterProvider(m.MeterProvider()),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// openGateway constructs the configured storage backend and registers its
// readiness check. The returned close function is a no-op for the memory
// backend.
func openGateway(ctx context.Context, cfg *Config, healthSvc *health.Health) (storage.Gateway, func(), error) {
	switch cfg.Storage.Backend {
	case BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.RunMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, errors.Wrap(err, "run migrations")
		}
		healthSvc.AddReadinessCheck("postgres", 5*time.Second, func(ctx context.Context) error {
			return pool.Ping(ctx)
		})
		return postgres.NewGateway(pool), pool.Close, nil

	case BackendRedis:
		gw, err := redisstore.Open(ctx, cfg.Storage.RedisURL)
		if err != nil {
			return nil, nil, errors.Wrap(err, "open redis")
		}
		healthSvc.AddReadinessCheck("redis", 5*time.Second, gw.Ping)
		return gw, func() { _ = gw.Close() }, nil

	default:
		return memory.New(), func() {}, nil
	}
}
