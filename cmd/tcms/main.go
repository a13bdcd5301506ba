// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/olegiv/tcms-go/internal/auth"
	"github.com/olegiv/tcms-go/internal/cache"
	"github.com/olegiv/tcms-go/internal/config"
	"github.com/olegiv/tcms-go/internal/geoip"
	"github.com/olegiv/tcms-go/internal/handler/api"
	"github.com/olegiv/tcms-go/internal/i18n"
	"github.com/olegiv/tcms-go/internal/imaging"
	"github.com/olegiv/tcms-go/internal/logging"
	"github.com/olegiv/tcms-go/internal/middleware"
	"github.com/olegiv/tcms-go/internal/scheduler"
	"github.com/olegiv/tcms-go/internal/store"
	"github.com/olegiv/tcms-go/internal/upload"
	"github.com/olegiv/tcms-go/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// jobTimeout bounds a single scheduled job run.
const jobTimeout = 10 * time.Minute

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "tCMS - bilingual tourism content API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TCMS_JWT_SECRET          Token signing key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TCMS_DB_DRIVER           mysql|sqlite (default: mysql)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TCMS_DB_HOST, TCMS_DB_PORT, TCMS_DB_USER, TCMS_DB_PASSWORD, TCMS_DB_NAME\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TCMS_DB_PATH             SQLite database path (default: ./data/tcms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TCMS_SERVER_PORT         Server port (default: 5000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TCMS_ENV                 development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TCMS_FRONTEND_URL        Public site origin allowed by CORS\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TCMS_ADMIN_URL           Admin panel origin allowed by CORS\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TCMS_REDIS_URL           Redis URL for the response cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  TCMS_SEED_ADMIN_PASSWORD Password of the first admin account\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(cfg.IsDevelopment(), cfg.LogLevel)
	slog.SetDefault(logger)

	if err := i18n.Init(logger); err != nil {
		return fmt.Errorf("initializing i18n: %w", err)
	}

	if cfg.DBDriver == config.DriverSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	dbCfg := store.DefaultDBConfig()
	if cfg.DBMaxOpenConns > 0 {
		dbCfg.MaxOpenConns = cfg.DBMaxOpenConns
		dbCfg.MaxIdleConns = min(dbCfg.MaxIdleConns, cfg.DBMaxOpenConns)
	}

	slog.Info("connecting to database", "driver", cfg.DBDriver)
	db, err := store.NewDB(cfg.DBDriver, cfg.DSN(), dbCfg)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sqlx.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	ctx := context.Background()

	slog.Info("running database migrations")
	if err := store.Migrate(ctx, db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	if err := store.SeedAdmin(ctx, db, store.SeedAdminParams{
		Username: cfg.SeedAdminUsername,
		Email:    cfg.SeedAdminEmail,
		Password: cfg.SeedAdminPassword,
	}); err != nil {
		return fmt.Errorf("seeding admin user: %w", err)
	}
	slog.Info("database ready")

	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	responseCache := cache.New(cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      cacheTTL,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	}, logger)
	defer func() { _ = responseCache.Close() }()

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip disabled", "error", err)
	}
	defer func() { _ = geo.Close() }()

	processor := imaging.NewProcessor(cfg.UploadsDir, cfg.UploadMaxDimension)
	if err := os.MkdirAll(processor.Dir(), 0o755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
	}

	sched := scheduler.New(logger, jobTimeout)

	h := api.NewHandler(api.Deps{
		DB:       db,
		Cache:    responseCache,
		CacheTTL: cacheTTL,
		Tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		Uploads:  upload.NewService(processor, cfg.UploadMaxBytes),
		Login: middleware.NewLoginProtection(middleware.LoginProtectionConfig{
			IPRateLimit: cfg.LoginRate,
			IPBurst:     cfg.LoginBurst,
		}),
		GeoIP:       geo,
		Scheduler:   sched,
		Logger:      logger,
		Development: cfg.IsDevelopment(),
		Version:     info,
	})

	router := api.NewRouter(h, api.RouterConfig{
		Logger: logger,
		CORS: middleware.CORSConfig{
			AllowedOrigins:   cfg.AllowedOrigins(),
			AllowCredentials: true,
		},
		Security:   middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment()),
		APIRate:    cfg.APIRate,
		APIBurst:   cfg.APIBurst,
		UploadsDir: cfg.UploadsDir,
	})

	sweeper := upload.NewSweeper(processor.Dir(), cfg.UploadSweepGrace, func(ctx context.Context) (map[string]struct{}, error) {
		return store.ReferencedImages(ctx, db)
	}, logger)
	if err := sched.Add("upload-sweep", cfg.UploadSweepSpec, func(ctx context.Context) error {
		res, err := sweeper.Run(ctx)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "upload sweep finished", "scanned", res.Scanned, "removed", res.Removed, "kept", res.Kept)
		return nil
	}); err != nil {
		return fmt.Errorf("scheduling upload sweep: %w", err)
	}
	if cfg.GeoIPEnabled() {
		if err := sched.Add("geoip-reload", "@daily", func(context.Context) error {
			return geo.Reload()
		}); err != nil {
			return fmt.Errorf("scheduling geoip reload: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // uploads
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		return fmt.Errorf("server: %w", err)
	}

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
