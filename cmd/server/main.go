package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/everafterhq/everafter/internal/api"
	"github.com/everafterhq/everafter/internal/app"
	"github.com/everafterhq/everafter/internal/app/dispatch"
	iauth "github.com/everafterhq/everafter/internal/auth"
	"github.com/everafterhq/everafter/internal/cache"
	"github.com/everafterhq/everafter/internal/database"
	"github.com/everafterhq/everafter/internal/services"
	"github.com/everafterhq/everafter/pkg/logger"
	"github.com/everafterhq/everafter/pkg/mail"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("everafter-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	var configPath string
	fs.StringVar(&configPath, "config", "", "Path to configuration directory or file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadApplicationConfig(configPath)
	if err != nil {
		return err
	}

	generated, err := app.ApplyRuntimeDefaults(cfg)
	if err != nil {
		return err
	}

	if err := app.ConfigureLogging(cfg.Server.LogLevel); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer logger.Sync() // best effort

	log := logger.WithModule("bootstrap")
	for key := range generated {
		log.Info("generated runtime secret", zap.String("key", key))
	}

	if strings.TrimSpace(cfg.Auth.JWT.Secret) == "" {
		return errors.New("auth.jwt.secret must be configured")
	}

	db, err := initialiseDatabase(cfg)
	if err != nil {
		return err
	}
	defer closeDatabase(db, log)

	store, closeStore := initialiseCache(cfg, db, log)
	defer closeStore()

	jwtService, err := iauth.NewJWTService(cfg.Auth.JWTServiceConfig())
	if err != nil {
		return fmt.Errorf("initialise jwt service: %w", err)
	}

	var mfaService *iauth.MFAService
	if cfg.Auth.MFA.Enabled {
		mfaService, err = iauth.NewMFAService(db, iauth.WithMFAIssuer(cfg.Auth.MFA.Issuer))
		if err != nil {
			return fmt.Errorf("initialise mfa service: %w", err)
		}
	}

	var oidcAuth *iauth.OIDCAuthenticator
	if cfg.Auth.OIDC.Enabled {
		oidcAuth, err = iauth.NewOIDCAuthenticator(ctx, cfg.Auth.OIDCConfig())
		if err != nil {
			return fmt.Errorf("initialise oidc: %w", err)
		}
	}

	mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
	if err != nil {
		return fmt.Errorf("initialise mailer: %w", err)
	}

	broadcasts := services.NewBroadcastService(db, mailer)

	svcs := api.Services{
		Auth:       services.NewAuthService(db, jwtService, mfaService),
		Weddings:   services.NewWeddingService(db),
		Guests:     services.NewGuestService(db),
		Events:     services.NewEventService(db),
		RSVPs:      services.NewRSVPService(db),
		Seating:    services.NewSeatingService(db),
		Gifts:      services.NewGiftService(db),
		Broadcasts: broadcasts,
		Photos:     services.NewPhotoService(db),
		Admin:      services.NewAdminService(db),
		OIDC:       oidcAuth,
		MFA:        mfaService,
	}

	if cfg.Dispatch.Enabled {
		dispatcher := dispatch.New(broadcasts, store, dispatch.WithSchedule(cfg.Dispatch.Schedule))
		if err := dispatcher.Start(); err != nil {
			return fmt.Errorf("start dispatcher: %w", err)
		}
		defer dispatcher.Stop()
	}

	router, err := api.NewRouter(db, cfg, jwtService, store, svcs)
	if err != nil {
		return fmt.Errorf("build api router: %w", err)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	if err, ok := <-serverErr; ok && err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.DatabaseOptions()

	db, err := database.Open(dbCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := database.AutoMigrateAndSeed(db); err != nil {
		return nil, fmt.Errorf("auto-migrate database: %w", err)
	}

	logger.WithModule("database").Info("database connected",
		zap.String("driver", strings.ToLower(strings.TrimSpace(dbCfg.Driver))))

	return db, nil
}

// initialiseCache returns the cache store backing rate limiting and the
// dispatcher sweep: Redis when enabled and reachable, the database store
// otherwise. Redis failures fall back rather than aborting start-up.
func initialiseCache(cfg *app.Config, db *gorm.DB, log *zap.Logger) (cache.Store, func()) {
	if cfg.Cache.Redis.Enabled {
		client, err := cache.NewRedisClient(cfg.Cache.RedisClientConfig())
		if err != nil {
			log.Warn("redis unavailable; falling back to database cache", zap.Error(err))
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
			return client, func() { _ = client.Close() }
		}
	}

	return cache.NewDatabaseStore(db), func() {}
}

func closeDatabase(db *gorm.DB, log *zap.Logger) {
	if db == nil {
		return
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("failed to obtain underlying sql DB for closing", zap.Error(err))
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Warn("failed to close database", zap.Error(err))
	}
}
