package server

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/meikuraledutech/chainchart"
	"github.com/meikuraledutech/chainchart/backend"
)

// fail maps err onto a status code and writes the {"error": ...} body.
func (h *handler) fail(c fiber.Ctx, err error) error {
	var be *backend.Error
	switch {
	case errors.Is(err, chainchart.ErrInvalidDiagram),
		errors.Is(err, chainchart.ErrUnknownNodeType),
		errors.Is(err, chainchart.ErrInvalidPortRef),
		errors.Is(err, backend.ErrInvalidPrivateKey):
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, chainchart.ErrProjectNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "project not found"})
	case errors.As(err, &be) && be.Rejected():
		body := fiber.Map{"error": be.Message}
		if len(be.CompileErrors) > 0 {
			body["compile_errors"] = be.CompileErrors
		}
		return c.Status(422).JSON(body)
	case errors.As(err, &be):
		h.logger.WarnContext(c.Context(), "backend failure", "op", be.Op, "status", be.Status, "error", be.Message)
		return c.Status(502).JSON(fiber.Map{"error": be.Message})
	}
	h.logger.ErrorContext(c.Context(), "request failed", "path", c.Path(), "error", err)
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}
