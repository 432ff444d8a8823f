// Package httpapi exposes the summarizer over HTTP.
package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nguyentantai21042004/yt-summarizer/internal/logger"
	"github.com/nguyentantai21042004/yt-summarizer/internal/processor"
	"github.com/nguyentantai21042004/yt-summarizer/internal/store"
)

const (
	appName = "YouTube Summarizer API"
	Version = "1.0.0"
)

// Options wires the API. Store may be nil.
type Options struct {
	Processor    processor.Processor
	Store        store.Store
	Providers    []string
	Logger       logger.Logger
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// BaseContext is the parent of every request pipeline; cancelling it
	// stops in-flight summaries on shutdown.
	BaseContext context.Context
}

type handler struct {
	proc      processor.Processor
	store     store.Store
	providers []string
	logger    logger.Logger
	baseCtx   context.Context
}

// New builds the fiber app with all routes registered.
func New(opts Options) *fiber.App {
	if opts.BaseContext == nil {
		opts.BaseContext = context.Background()
	}
	h := &handler{
		proc:      opts.Processor,
		store:     opts.Store,
		providers: opts.Providers,
		logger:    opts.Logger,
		baseCtx:   opts.BaseContext,
	}

	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
		ReadTimeout:           opts.ReadTimeout,
		WriteTimeout:          opts.WriteTimeout,
		ErrorHandler:          h.handleError,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,PATCH,DELETE,OPTIONS,HEAD",
		AllowHeaders: "*",
	}))
	app.Use(h.logRequest)

	h.routes(app)
	return app
}

func (h *handler) routes(app *fiber.App) {
	app.Get("/", h.root)

	api := app.Group("/api")
	api.Post("/summarize", h.summarize)
	api.Get("/summaries", h.listSummaries)
	api.Get("/summaries/:id", h.getSummary)
	api.Get("/providers", h.listProviders)
}

// handleError renders every error as {"detail": "..."}.
func (h *handler) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		h.logger.Error(c.UserContext(), "%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{"detail": err.Error()})
}

func (h *handler) logRequest(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	h.logger.Debug(c.UserContext(), "%s %s -> %d (%s)", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start))
	return err
}
