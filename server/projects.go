package server

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"github.com/meikuraledutech/chainchart"
)

func (h *handler) createSchema(c fiber.Ctx) error {
	if err := h.store.CreateSchema(c.Context()); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "schema created"})
}

func (h *handler) dropSchema(c fiber.Ctx) error {
	if err := h.store.DropSchema(c.Context()); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "schema dropped"})
}

type nodeTypeView struct {
	Type  chainchart.NodeType `json:"type"`
	Size  float64             `json:"size"`
	Ports []chainchart.Port   `json:"ports"`
}

func (h *handler) nodeTypes(c fiber.Ctx) error {
	out := make([]nodeTypeView, 0, len(chainchart.NodeTypes))
	for _, t := range chainchart.NodeTypes {
		out = append(out, nodeTypeView{Type: t, Size: chainchart.NodeSize(t), Ports: chainchart.Ports(t)})
	}
	return c.JSON(out)
}

func (h *handler) listProjects(c fiber.Ctx) error {
	projects, err := h.store.ListProjects(c.Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(projects)
}

// projectBody is what clients send to create or replace a project.
type projectBody struct {
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Status      chainchart.ProjectStatus `json:"status"`
	Nodes       []chainchart.Node        `json:"nodes"`
	Edges       []chainchart.Edge        `json:"edges"`
}

// project validates the body's diagram and returns it as a project with
// normalised node metadata.
func (b projectBody) project(id string) (*chainchart.Project, error) {
	d := chainchart.Diagram{Nodes: b.Nodes, Edges: b.Edges}
	if err := chainchart.ValidateDiagram(d); err != nil {
		return nil, err
	}
	if b.Status != "" && !b.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", chainchart.ErrInvalidDiagram, b.Status)
	}
	d = chainchart.NewGraphFrom(d).Snapshot()
	return &chainchart.Project{
		ID:          id,
		Name:        b.Name,
		Description: b.Description,
		Status:      b.Status,
		Nodes:       d.Nodes,
		Edges:       d.Edges,
	}, nil
}

func (h *handler) createProject(c fiber.Ctx) error {
	var body projectBody
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	p, err := body.project("")
	if err != nil {
		return h.fail(c, err)
	}
	if _, err := h.store.SaveProject(c.Context(), p); err != nil {
		return h.fail(c, err)
	}
	return c.Status(201).JSON(p)
}

func (h *handler) getProject(c fiber.Ctx) error {
	p, err := h.store.GetProject(c.Context(), c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	if p == nil {
		return h.fail(c, chainchart.ErrProjectNotFound)
	}
	return c.JSON(p)
}

func (h *handler) replaceProject(c fiber.Ctx) error {
	id := c.Params("id")
	existing, err := h.store.GetProject(c.Context(), id)
	if err != nil {
		return h.fail(c, err)
	}
	if existing == nil {
		return h.fail(c, chainchart.ErrProjectNotFound)
	}

	var body projectBody
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
	}
	if body.Status == "" {
		body.Status = existing.Status
	}
	p, err := body.project(id)
	if err != nil {
		return h.fail(c, err)
	}
	if _, err := h.store.SaveProject(c.Context(), p); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p)
}

func (h *handler) deleteProject(c fiber.Ctx) error {
	if err := h.store.DeleteProject(c.Context(), c.Params("id")); err != nil {
		return h.fail(c, err)
	}
	return c.SendStatus(204)
}

// loadProject fetches the :id project or reports ErrProjectNotFound.
func (h *handler) loadProject(c fiber.Ctx) (*chainchart.Project, error) {
	p, err := h.store.GetProject(c.Context(), c.Params("id"))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, chainchart.ErrProjectNotFound
	}
	return p, nil
}

func (h *handler) exportProject(c fiber.Ctx) error {
	p, err := h.loadProject(c)
	if err != nil {
		return h.fail(c, err)
	}
	data, err := chainchart.MarshalDiagram(p.Diagram())
	if err != nil {
		return h.fail(c, err)
	}
	c.Attachment(chainchart.ExportFileName(p.Name, h.now()))
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(data)
}

// importProject replaces a project's diagram with an uploaded file. A file
// that fails validation leaves the project as it was.
func (h *handler) importProject(c fiber.Ctx) error {
	p, err := h.loadProject(c)
	if err != nil {
		return h.fail(c, err)
	}
	g := chainchart.NewGraph()
	if err := g.Import(c.Body()); err != nil {
		return h.fail(c, err)
	}
	d := g.Snapshot()
	p.Nodes, p.Edges = d.Nodes, d.Edges
	if _, err := h.store.SaveProject(c.Context(), p); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(p)
}

func (h *handler) validateDiagram(c fiber.Ctx) error {
	d, err := chainchart.ParseDiagram(c.Body())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"valid": true, "nodes": len(d.Nodes), "edges": len(d.Edges)})
}
