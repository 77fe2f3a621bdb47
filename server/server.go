// Package server exposes projects, diagram import/export and the contract
// backend over HTTP.
package server

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"

	"github.com/meikuraledutech/chainchart"
	"github.com/meikuraledutech/chainchart/internal/logging"
)

// Config wires the API to its dependencies.
type Config struct {
	Store chainchart.Store
	// Compiler may be nil; contract routes then answer 503.
	Compiler chainchart.Compiler
	Logger   *slog.Logger

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int

	// Now stamps export file names. Defaults to time.Now.
	Now func() time.Time
}

type handler struct {
	store    chainchart.Store
	compiler chainchart.Compiler
	logger   *slog.Logger
	now      func() time.Time
}

// New builds the fiber app with every route registered.
func New(cfg Config) *fiber.App {
	h := &handler{
		store:    cfg.Store,
		compiler: cfg.Compiler,
		logger:   cfg.Logger,
		now:      cfg.Now,
	}
	if h.logger == nil {
		h.logger = logging.Discard()
	}
	if h.now == nil {
		h.now = time.Now
	}

	app := fiber.New(fiber.Config{
		AppName:      "chainchart",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		BodyLimit:    cfg.BodyLimit,
	})
	app.Use(recoverer.New())
	app.Use(requestid.New())
	app.Use(h.logRequests)

	// ── Schema ────────────────────────────────────────────────────────
	app.Post("/schema", h.createSchema)
	app.Delete("/schema", h.dropSchema)

	// ── Palette ───────────────────────────────────────────────────────
	app.Get("/node-types", h.nodeTypes)

	// ── Projects ──────────────────────────────────────────────────────
	app.Get("/projects", h.listProjects)
	app.Post("/projects", h.createProject)
	app.Get("/projects/:id", h.getProject)
	app.Put("/projects/:id", h.replaceProject)
	app.Delete("/projects/:id", h.deleteProject)

	// ── Import / export ───────────────────────────────────────────────
	app.Get("/projects/:id/export", h.exportProject)
	app.Post("/projects/:id/import", h.importProject)
	app.Post("/diagram/validate", h.validateDiagram)

	// ── Contracts ─────────────────────────────────────────────────────
	app.Post("/compile", h.requireCompiler, h.compile)
	app.Post("/projects/:id/compile", h.requireCompiler, h.compileProject)
	app.Post("/deploy", h.requireCompiler, h.deploy)
	app.Post("/execute", h.requireCompiler, h.execute)

	return app
}

// logRequests logs one line per request once the handler chain is done.
func (h *handler) logRequests(c fiber.Ctx) error {
	start := time.Now()
	rid := requestid.FromContext(c)
	c.SetContext(logging.WithRequestID(c.Context(), rid))

	err := c.Next()

	status := c.Response().StatusCode()
	level := slog.LevelInfo
	if status >= 500 {
		level = slog.LevelError
	}
	h.logger.Log(c.Context(), level, "request",
		"method", c.Method(),
		"path", c.Path(),
		"status", status,
		"duration", time.Since(start),
	)
	return err
}
