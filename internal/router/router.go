package router

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/skillproof/skillproof-api/internal/config"
	"github.com/skillproof/skillproof-api/internal/handler"
	"github.com/skillproof/skillproof-api/internal/middleware"
	"github.com/skillproof/skillproof-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	TaskHandler       *handler.TaskHandler
	SubmissionHandler *handler.SubmissionHandler
	RecruiterHandler  *handler.RecruiterHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	if deps.TaskHandler != nil {
		tasks := api.Group("/tasks", jwtMiddleware)
		deps.TaskHandler.Register(tasks)
	}

	if deps.SubmissionHandler != nil {
		submissions := api.Group("/submissions", jwtMiddleware)
		// Intake fans out to GitHub and the evaluator, so it gets a
		// tighter limit than the read endpoints.
		deps.SubmissionHandler.Register(submissions, middleware.RateLimit("submission_create", 10, time.Minute))
	}

	if deps.RecruiterHandler != nil {
		recruiters := api.Group("/recruiters", jwtMiddleware)
		deps.RecruiterHandler.Register(recruiters)
	}
}
