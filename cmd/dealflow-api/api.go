// Package main provides the Dealflow API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/paddockhq/dealflow/pkg/engine"
	"github.com/paddockhq/dealflow/pkg/eventbus"
	"github.com/paddockhq/dealflow/pkg/locks"
	"github.com/paddockhq/dealflow/pkg/persistence"
	"github.com/paddockhq/dealflow/pkg/registry"
	"github.com/paddockhq/dealflow/pkg/services"
	"github.com/paddockhq/dealflow/pkg/web"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventBus
	locker      locks.DealLocker
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	store persistence.Persistence,
	eventBus eventbus.EventBus,
	locker locks.DealLocker,
) *API {
	return &API{
		logger:      logger,
		persistence: store,
		eventBus:    eventBus,
		locker:      locker,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	reg := registry.NewRegistry()
	dealService := services.NewDeal(a.persistence, reg, a.locker)
	workflowEngine := engine.New(a.logger, reg, a.persistence, a.locker, a.eventBus)

	handlers := web.NewAPIHandlers(dealService, workflowEngine, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Dealflow API")
	})

	handlers.Register(app)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
