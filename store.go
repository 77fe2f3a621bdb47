package chainchart

import (
	"context"
	"errors"
)

var (
	ErrProjectNotFound = errors.New("chainchart: project not found")
	ErrInvalidDiagram  = errors.New("chainchart: invalid diagram")
	ErrUnknownNodeType = errors.New("chainchart: unknown node type")
	ErrInvalidPortRef  = errors.New("chainchart: invalid port reference")
)

// Store defines the contract for persisting and retrieving projects.
// Nodes and edges must round-trip without loss.
type Store interface {
	// Schema
	CreateSchema(ctx context.Context) error
	DropSchema(ctx context.Context) error

	// SaveProject creates the project when p.ID is empty and replaces it otherwise.
	// It returns the persisted ID.
	SaveProject(ctx context.Context, p *Project) (string, error)
	// GetProject returns nil, nil when the project does not exist.
	GetProject(ctx context.Context, id string) (*Project, error)
	// ListProjects returns summaries (no nodes or edges), most recently updated first.
	ListProjects(ctx context.Context) ([]Project, error)
	DeleteProject(ctx context.Context, id string) error
}

// Compiler is the external backend that turns a diagram into a deployable contract.
type Compiler interface {
	Compile(ctx context.Context, d Diagram) (*Artifact, error)
	Deploy(ctx context.Context, req DeployRequest) (*Deployment, error)
	Execute(ctx context.Context, d Diagram) (*Execution, error)
}
