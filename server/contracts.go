package server

import (
	"github.com/gofiber/fiber/v3"

	"github.com/meikuraledutech/chainchart"
)

// decodeDiagram reads and validates a diagram request body.
func decodeDiagram(c fiber.Ctx) (chainchart.Diagram, error) {
	d, err := chainchart.ParseDiagram(c.Body())
	if err != nil {
		return chainchart.Diagram{}, err
	}
	return *d, nil
}

// requireCompiler answers 503 when no contract backend is wired.
func (h *handler) requireCompiler(c fiber.Ctx) error {
	if h.compiler == nil {
		return c.Status(503).JSON(fiber.Map{"error": "contract backend not configured"})
	}
	return c.Next()
}

func (h *handler) compile(c fiber.Ctx) error {
	d, err := decodeDiagram(c)
	if err != nil {
		return h.fail(c, err)
	}
	art, err := h.compiler.Compile(c.Context(), d)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(art)
}

func (h *handler) compileProject(c fiber.Ctx) error {
	p, err := h.loadProject(c)
	if err != nil {
		return h.fail(c, err)
	}
	art, err := h.compiler.Compile(c.Context(), p.Diagram())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(art)
}

func (h *handler) deploy(c fiber.Ctx) error {
	var req chainchart.DeployRequest
	if err := c.Bind().JSON(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	dep, err := h.compiler.Deploy(c.Context(), req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(dep)
}

func (h *handler) execute(c fiber.Ctx) error {
	d, err := decodeDiagram(c)
	if err != nil {
		return h.fail(c, err)
	}
	exec, err := h.compiler.Execute(c.Context(), d)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(exec)
}
