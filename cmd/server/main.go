package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"quotecompare/internal/config"
	"quotecompare/internal/handlers"
	"quotecompare/internal/metrics"
	"quotecompare/internal/middleware"
	"quotecompare/internal/repositories/cached"
	"quotecompare/internal/repositories/interfaces"
	"quotecompare/internal/repositories/memory"
	"quotecompare/internal/repositories/mongodb"
	"quotecompare/internal/repositories/postgres"
	"quotecompare/internal/services"
	"quotecompare/internal/utils"
	"quotecompare/pkg/cache"
	"quotecompare/pkg/database"
	"quotecompare/pkg/logger"
	"quotecompare/pkg/websocket"
	"quotecompare/routes"
)

type store struct {
	users     interfaces.UserRepository
	referrals interfaces.ReferralRepository
	signups   interfaces.SignupRepository
	pinger    handlers.Pinger
	close     func() error
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:   logger.LogLevel(cfg.Log.Level),
		Format:  cfg.Log.Format,
		Output:  cfg.Log.Output,
		Caller:  cfg.Log.Caller,
		AppName: cfg.App.Name,
		Version: cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg.Database, appLogger)
	if err != nil {
		appLogger.WithError(err).WithField("driver", cfg.Database.Driver).Fatal("Failed to open store")
	}
	defer st.close()

	users := st.users
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.Redis.ToCache())
		if err != nil {
			appLogger.WithError(err).Warn("Redis unavailable, serving user lookups from the store")
		} else {
			defer redisCache.Close()
			users = cached.NewUserRepository(users, redisCache, cfg.Referral.UserCacheTTL, appLogger.Entry())
			appLogger.Info("Redis user cache enabled")
		}
	}

	appMetrics := metrics.New()

	// stream stays a nil interface when websockets are disabled
	var notifier services.UserNotifier
	var stream handlers.DashboardStream
	if cfg.WebSocket.Enabled {
		wsHandler := websocket.NewHandler(ctx, appLogger.Entry(), cfg.WebSocket.AllowedOrigins)
		notifier = wsHandler
		stream = wsHandler
	}

	// Initialize services
	referralService := services.NewReferralService(users, st.referrals, notifier, appMetrics, appLogger, cfg.Referral.BonusAmount)
	signupService := services.NewSignupService(st.signups, referralService, appMetrics, appLogger)
	quoteService := services.NewQuoteService()

	// Initialize Gin router
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		appLogger.WithError(err).Fatal("Invalid trusted proxies")
	}

	// Global middleware
	router.Use(middleware.RecoveryMiddleware(appLogger))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins))
	router.Use(middleware.LoggingMiddleware(appLogger))
	router.Use(middleware.MetricsMiddleware(appMetrics))

	var metricsHandler http.Handler
	if cfg.Metrics.Enabled {
		metricsHandler = appMetrics.Handler()
	}

	routes.SetupRoutes(router, &routes.Handlers{
		Referral: handlers.NewReferralHandler(referralService, stream, appLogger),
		Signup:   handlers.NewSignupHandler(signupService, appLogger),
		Quote:    handlers.NewQuoteHandler(quoteService),
		Health:   handlers.NewHealthHandler(st.pinger, cfg.App.Version, appLogger),
	}, cfg.Metrics.Path, metricsHandler)

	server := &http.Server{
		Addr:         cfg.App.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
	}

	go func() {
		appLogger.WithFields(map[string]interface{}{
			"addr":   server.Addr,
			"driver": cfg.Database.Driver,
			"env":    cfg.App.Environment,
		}).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Graceful shutdown failed")
	}
}

func openStore(cfg *config.DatabaseConfig, appLogger *logger.Logger) (*store, error) {
	switch cfg.Driver {
	case utils.DriverPostgres:
		if cfg.AutoMigrate {
			if err := migratePostgres(cfg.Postgres.URL); err != nil {
				return nil, err
			}
		}

		pg, err := database.NewPostgres(cfg.Postgres.ToDatabase())
		if err != nil {
			return nil, err
		}
		return &store{
			users:     postgres.NewUserRepository(pg.Pool),
			referrals: postgres.NewReferralRepository(pg.Pool),
			signups:   postgres.NewSignupRepository(pg.Pool),
			pinger:    pg,
			close:     pg.Close,
		}, nil

	case utils.DriverMongoDB:
		mdb, err := database.NewMongoDB(cfg.Mongo.ToDatabase())
		if err != nil {
			return nil, err
		}
		if cfg.AutoMigrate {
			if err := database.NewMigrator(mdb.Database, appLogger.Entry()).Up(); err != nil {
				mdb.Close()
				return nil, fmt.Errorf("mongodb migrations: %w", err)
			}
		}
		return &store{
			users:     mongodb.NewUserRepository(mdb.Database),
			referrals: mongodb.NewReferralRepository(mdb.Database),
			signups:   mongodb.NewSignupRepository(mdb.Database),
			pinger:    mdb,
			close:     mdb.Close,
		}, nil

	case utils.DriverMemory:
		appLogger.Warn("Using the in-memory store; data is lost on restart")
		mem := memory.NewStore()
		return &store{
			users:     mem.Users(),
			referrals: mem.Referrals(),
			signups:   mem.Signups(),
			pinger:    mem,
			close:     func() error { return nil },
		}, nil
	}

	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

func migratePostgres(url string) error {
	migrator, err := database.NewSQLMigrator(url)
	if err != nil {
		return err
	}
	defer migrator.Close()

	if err := migrator.Up(); err != nil {
		return fmt.Errorf("%w: %w", database.ErrStoreUnavailable, err)
	}
	return nil
}
