// Package main is the entry point for the data catalog API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"datacatalog/internal/config"
	"datacatalog/internal/domain/audit"
	"datacatalog/internal/domain/auth"
	"datacatalog/internal/domain/product"
	"datacatalog/internal/domain/users"
	"datacatalog/internal/infrastructure/cache"
	v1 "datacatalog/internal/infrastructure/http/v1"
	"datacatalog/internal/infrastructure/http/v1/handlers"
	"datacatalog/internal/infrastructure/metrics"
	"datacatalog/internal/infrastructure/oidc"
	"datacatalog/internal/infrastructure/storage/postgres"
	"datacatalog/internal/infrastructure/storage/postgres/audit_repo"
	"datacatalog/internal/infrastructure/storage/postgres/auth_repo"
	"datacatalog/internal/infrastructure/storage/postgres/product_repo"
	"datacatalog/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		Service:     "datacatalog",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	if err := run(ctx, cfg, log); err != nil {
		log.Fatalw("server failed", "error", err)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	log.Infow("starting datacatalog server", "version", handlers.Version)

	// --- Database ---
	if cfg.Database.AutoMigrate {
		if err := migrate(ctx, cfg.Database.DSN); err != nil {
			return err
		}
	}

	pool, err := postgres.NewPool(ctx, postgres.PoolConfig{
		DSN:               cfg.Database.DSN,
		MaxConns:          cfg.Database.MaxConns,
		MinConns:          cfg.Database.MinConns,
		MaxConnLifetime:   cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:   cfg.Database.MaxConnIdleTime,
		HealthCheckPeriod: postgres.DefaultPoolConfig("").HealthCheckPeriod,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txOpts := postgres.DefaultTxOptions()
	txOpts.StatementTimeout = cfg.Database.StatementTimeout
	txManager := postgres.NewTxManager(pool, txOpts)

	// --- Repositories ---
	userRepo := auth_repo.NewUserRepo(txManager)
	tokenRepo := auth_repo.NewTokenRepo(txManager)
	productRepo := product_repo.NewProductRepo(txManager)
	tagRepo := product_repo.NewTagRepo(txManager)
	auditRepo, err := audit_repo.NewAuditRepo(txManager, cfg.Audit.CompressThreshold)
	if err != nil {
		return fmt.Errorf("create audit repo: %w", err)
	}

	// --- Services ---
	m := metrics.New("datacatalog", nil)
	recorder := audit.NewRecorder(auditRepo, m.AuditObserver())

	roles := auth.NewRoleResolver(userRepo, cache.NewRoleCache(cfg.Cache.RoleSize, cfg.Cache.RoleTTL))

	jwtService := auth.NewJWTService(auth.JWTConfig{
		Secret:         cfg.Auth.JWTSecret,
		Issuer:         cfg.Auth.JWTIssuer,
		AccessTokenTTL: cfg.Auth.AccessTokenTTL,
	})
	authService := auth.NewService(userRepo, tokenRepo, recorder, txManager, jwtService,
		auth.ServiceConfig{RefreshTokenExpiry: cfg.Auth.RefreshTokenTTL})

	productCfg := product.ServiceConfig{
		Repo:      productRepo,
		Tags:      tagRepo,
		Recorder:  recorder,
		TxManager: txManager,
	}

	routerCfg := v1.RouterConfig{
		Logger:       log,
		Metrics:      m,
		JWTValidator: jwtService,
		Roles:        roles,
		AuthService:  authService,
		AuditService: audit.NewService(auditRepo),
		UserService:  users.NewService(userRepo, roles, cfg.Auth.BcryptCost),
		Database:     pool,
	}

	if cfg.Redis.URL != "" {
		tagCache, err := cache.NewTagCacheFromURL(ctx, cfg.Redis.URL, cfg.Cache.TagTTL)
		if err != nil {
			// The catalog works without the cache.
			log.Warnw("tag cache disabled", "error", err)
		} else {
			defer func() { _ = tagCache.Close() }()
			productCfg.TagCache = tagCache
			routerCfg.Cache = tagCache
			log.Info("tag cache connected")
		}
	}
	routerCfg.ProductService = product.NewService(productCfg)

	if cfg.Idempotency.Enabled {
		routerCfg.Idempotency = postgres.NewIdempotencyStore(txManager, cfg.Idempotency.TTL)
	}

	if cfg.Google.Enabled() {
		google, err := oidc.NewGoogleProvider(ctx, oidc.Config{
			Issuer:       cfg.Google.Issuer,
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			CookieKey:    []byte(cfg.Google.CookieKey),
			SecureCookie: cfg.Google.SecureCookie,
		})
		if err != nil {
			return fmt.Errorf("configure google sign-in: %w", err)
		}
		routerCfg.Google = google
		log.Info("google sign-in enabled")
	}

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      v1.NewRouter(routerCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

func migrate(ctx context.Context, dsn string) error {
	migrator, err := postgres.NewMigrator(dsn)
	if err != nil {
		return fmt.Errorf("open migrator: %w", err)
	}
	defer func() { _ = migrator.Close() }()

	if err := migrator.Up(ctx); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}
