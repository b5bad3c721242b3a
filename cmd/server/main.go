// @title         habits API
// @version       1.0
// @description   Auth and habit catalog service for the habit tracker app.
// @BasePath      /api/v1
// @schemes       http
// @host          localhost:8080
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Token in the form "Bearer <JWT>".
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	swagger "github.com/gofiber/swagger"
	"go.uber.org/zap"

	_ "github.com/artem13815/habits/docs"

	// internal imports
	"github.com/artem13815/habits/api/http"
	"github.com/artem13815/habits/api/http/handlers"
	"github.com/artem13815/habits/pkg/auth"
	"github.com/artem13815/habits/pkg/config"
	"github.com/artem13815/habits/pkg/habit"
	"github.com/artem13815/habits/pkg/health"
	healthcheck "github.com/artem13815/habits/pkg/health/checkers"
	"github.com/artem13815/habits/pkg/logging"
	"github.com/artem13815/habits/pkg/mail"
	pgrepo "github.com/artem13815/habits/pkg/repository/postgres"
	"github.com/artem13815/habits/pkg/security/jwt"
	"github.com/artem13815/habits/pkg/storage/postgres"
	"github.com/artem13815/habits/pkg/throttle"
)

func main() {
	// Load configuration from env/.env
	cfg := config.Load()

	logger, err := logging.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL and bring the schema up to date
	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.PoolOptions{
		MaxConns:     int32(cfg.DBMaxConns),
		ConnLifetime: cfg.DBConnTTL,
	})
	if err != nil {
		logger.Fatal("postgres connect", zap.Error(err))
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		logger.Fatal("postgres migrate", zap.Error(err))
	}

	checkers := []health.Checker{healthcheck.NewPostgresChecker(pool)}

	var resetThrottle auth.ResetThrottle
	if cfg.RedisURL != "" {
		rdb, err := throttle.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis connect", zap.Error(err))
		}
		defer rdb.Close()
		resetThrottle = throttle.NewRedis(rdb, "habits:reset:", cfg.ResetThrottle, logger)
		checkers = append(checkers, healthcheck.NewRedisChecker(rdb))
	}

	var mailer auth.Mailer
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		logger.Warn("SMTP_HOST is not set, reset codes will only be logged")
		mailer = mail.NewLogMailer(logger, cfg.IsDevelopment())
	}

	// Wire dependencies
	userRepo := pgrepo.NewUserRepository(pool)
	habitRepo := pgrepo.NewHabitRepository(pool)
	tokens := jwt.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)

	authUC := auth.NewAuthService(userRepo, tokens, mailer, resetThrottle, cfg.ResetCodeTTL)
	authHandler := handlers.NewAuthHandler(authUC, logger)
	habitHandler := handlers.NewHabitHandler(habit.NewService(habitRepo), logger)
	healthHandler := handlers.NewHealthHandler(health.NewService(checkers...))

	app := http.NewApp(logger)
	http.Register(app, authHandler, habitHandler, healthHandler, jwt.NewAuthMiddleware(tokens))

	// Swagger UI
	app.Get("/swagger/*", swagger.HandlerDefault)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("HTTP server listening", zap.String("port", cfg.Port))
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
