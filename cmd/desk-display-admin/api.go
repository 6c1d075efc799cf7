// Package main provides the desk-display admin API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/mrjrask/desk-display/pkg/store"
	"github.com/mrjrask/desk-display/pkg/web"
)

type API struct {
	logger   *slog.Logger
	store    *store.Store
	validate *validator.Validate
}

func NewAPI(logger *slog.Logger, configStore *store.Store) *API {
	return &API{
		logger:   logger,
		store:    configStore,
		validate: validator.New(),
	}
}

func (a *API) App() *fiber.App {
	handlers := web.NewAPIHandlers(a.store, a.validate, a.logger)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("desk-display admin API")
	})

	api := app.Group("/api")
	api.Get("/config", handlers.GetConfig)
	api.Put("/config", handlers.SaveConfig)
	api.Get("/config/versions", handlers.ListVersions)
	api.Get("/config/versions/:id", handlers.GetVersion)
	api.Post("/config/versions/:id/rollback", handlers.Rollback)
	api.Get("/screens", handlers.GetScreens)

	return app
}

func (a *API) Start(port int) error {
	return a.App().Listen(":" + strconv.Itoa(port))
}
