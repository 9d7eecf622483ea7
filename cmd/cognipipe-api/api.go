package main

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/dukex/cognipipe/pkg/ratelimit"
	"github.com/dukex/cognipipe/pkg/registry"
	"github.com/dukex/cognipipe/pkg/web"
)

const banner = "Cognipipe API"

type API struct {
	logger    *slog.Logger
	registry  *registry.Registry
	runner    web.PipelineRunner
	dataset   web.DatasetSource
	rateLimit ratelimit.Config
	checkers  map[string]web.HealthChecker
	validate  *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	registry *registry.Registry,
	runner web.PipelineRunner,
	dataset web.DatasetSource,
	rateLimit ratelimit.Config,
) *API {
	return &API{
		logger:    logger,
		registry:  registry,
		runner:    runner,
		dataset:   dataset,
		rateLimit: rateLimit,
		checkers:  map[string]web.HealthChecker{},
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// AddHealthCheck reports check under name in GET /health.
func (a *API) AddHealthCheck(name string, check web.HealthChecker) {
	a.checkers[name] = check
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.registry, a.runner, a.dataset, a.validate)
	for name, check := range a.checkers {
		handlers.AddHealthCheck(name, check)
	}

	app := fiber.New(fiber.Config{
		AppName:      banner,
		ErrorHandler: web.ErrorHandler,
	})
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString(banner)
	})

	app.Get("/health", handlers.HealthCheck)

	n := app.Group("/nodes")
	n.Get("/", handlers.ListNodes)
	n.Get("/:name", handlers.GetNode)

	app.Post("/run", ratelimit.New(a.rateLimit), handlers.RunPipeline)
	app.Get("/passengers", handlers.GetPassengers)
	app.Post("/describe", handlers.Describe)

	return app
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (a *API) Start(ctx context.Context, port int) error {
	app := a.App()

	go func() {
		<-ctx.Done()

		a.logger.Info("Shutting down API server")

		if err := app.ShutdownWithContext(context.WithoutCancel(ctx)); err != nil {
			a.logger.Error("Failed to shut down API server", "error", err)
		}
	}()

	return app.Listen(":" + strconv.Itoa(port))
}
