package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/artem13815/habits/api/http/handlers"
	"github.com/artem13815/habits/api/http/presenter"
	"github.com/artem13815/habits/pkg/logging"
	"github.com/artem13815/habits/pkg/metrics"
)

// CORS is set per route group so a preflight only advertises the methods
// that group actually serves.
var (
	authCORS = cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
		MaxAge:       86400,
	}
	readOnlyCORS = cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,OPTIONS",
		AllowHeaders: "Content-Type,Authorization",
		MaxAge:       86400,
	}
)

// NewApp builds the Fiber app with the shared middleware stack.
func NewApp(log *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "habits",
		ErrorHandler: presenter.ErrorHandler(log),
	})
	app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: logging.RequestIDKey,
	}))
	app.Use(logging.Middleware(log))
	app.Use(metrics.Middleware())
	app.Use(recover.New())
	return app
}

// Register wires all HTTP routes onto given Fiber app.
func Register(app *fiber.App, auth *handlers.AuthHandler, habits *handlers.HabitHandler, health *handlers.HealthHandler, authMW fiber.Handler) {
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api")
	v1 := api.Group("/v1")

	readOnly := cors.New(readOnlyCORS)
	v1.Use("/auth", cors.New(authCORS))
	v1.Use("/habits", readOnly)
	v1.Use("/health", readOnly)
	v1.Use("/ready", readOnly)

	v1.Get("/health", health.Health)
	v1.Get("/ready", health.Ready)

	v1.Post("/auth", auth.Dispatch)
	v1.Get("/auth", authMW, auth.Me)

	a := v1.Group("/auth")
	a.Post("/register", auth.Register)
	a.Post("/login", auth.Login)
	a.Post("/verify", auth.Verify)
	a.Post("/reset-password", auth.ResetPassword)
	a.Post("/confirm-reset", auth.ConfirmReset)

	v1.Get("/habits", habits.List)
}
