// Package backend talks to the contract compiler service: it turns diagrams
// into Neo smart contracts, deploys them and executes them.
package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3/client"

	"github.com/meikuraledutech/chainchart"
)

// DefaultBaseURL is where the compiler service listens by default.
const DefaultBaseURL = "http://localhost:8000"

// DefaultTimeout bounds every backend call. Compiling and deploying a
// contract can take a while.
const DefaultTimeout = 60 * time.Second

// ErrInvalidPrivateKey is returned for keys that are not in WIF format.
var ErrInvalidPrivateKey = errors.New("backend: invalid private key format, must be WIF (starts with L or K)")

// Client is a chainchart.Compiler over the backend's HTTP API.
type Client struct {
	baseURL string
	http    *client.Client
	logger  *slog.Logger
}

var _ chainchart.Compiler = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.SetTimeout(d) }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New creates a client for the backend at baseURL. An empty baseURL means
// DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	c := &Client{
		baseURL: baseURL,
		http:    client.New().SetBaseURL(baseURL).SetTimeout(DefaultTimeout),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// envelope is the status part every backend response carries.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Detail  string `json:"detail,omitempty"`
}

type compileResponse struct {
	envelope
	chainchart.Artifact
}

type deployResponse struct {
	envelope
	TxHash       *string `json:"tx_hash"`
	ContractHash *string `json:"contract_hash"`
	Mock         bool    `json:"mock"`
}

type executeResponse struct {
	envelope
	chainchart.Execution
}

type exportRequest struct {
	chainchart.Diagram
	UserID    string `json:"user_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
}

// Compile turns d into contract source, a base64 NEF and a manifest.
func (c *Client) Compile(ctx context.Context, d chainchart.Diagram) (*chainchart.Artifact, error) {
	var out compileResponse
	if err := c.post(ctx, "compile", "/compile-contract", wireDiagram(d), &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, rejected("compile", out.envelope, out.CompileErrors)
	}
	return &out.Artifact, nil
}

// Export compiles d and has the backend keep the NEF and manifest. The
// returned artifact carries their paths and a contract id usable by Deploy.
func (c *Client) Export(ctx context.Context, d chainchart.Diagram, userID, projectID string) (*chainchart.Artifact, error) {
	var out compileResponse
	req := exportRequest{Diagram: wireDiagram(d), UserID: userID, ProjectID: projectID}
	if err := c.post(ctx, "export", "/export-contract", req, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, rejected("export", out.envelope, out.CompileErrors)
	}
	return &out.Artifact, nil
}

// Deploy publishes a contract. Empty connection fields are left to the
// backend's own configuration.
func (c *Client) Deploy(ctx context.Context, req chainchart.DeployRequest) (*chainchart.Deployment, error) {
	body, err := deployBody(req)
	if err != nil {
		return nil, err
	}

	var out deployResponse
	if err := c.post(ctx, "deploy", "/deploy-contract", body, &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, rejected("deploy", out.envelope, nil)
	}
	dep := &chainchart.Deployment{Mock: out.Mock}
	if out.TxHash != nil {
		dep.TxHash = *out.TxHash
	}
	if out.ContractHash != nil {
		dep.ContractHash = *out.ContractHash
	}
	return dep, nil
}

// Execute runs d against the deployed contract and returns its trace.
func (c *Client) Execute(ctx context.Context, d chainchart.Diagram) (*chainchart.Execution, error) {
	var out executeResponse
	if err := c.post(ctx, "execute", "/execute-chainchart", wireDiagram(d), &out); err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, rejected("execute", out.envelope, nil)
	}
	exec := out.Execution
	if exec.Logs == nil {
		exec.Logs = []json.RawMessage{}
	}
	if exec.FinalMemory == nil {
		exec.FinalMemory = map[string]any{}
	}
	return &exec, nil
}

// ValidatePrivateKey trims key and checks it looks like a WIF key.
// An empty key is allowed: the backend then uses its own.
func ValidatePrivateKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", nil
	}
	if !strings.HasPrefix(key, "L") && !strings.HasPrefix(key, "K") {
		return "", ErrInvalidPrivateKey
	}
	return key, nil
}

// deployBody picks the contract source: a stored contract id wins over an
// inline NEF and manifest, which are only sent as a pair.
func deployBody(req chainchart.DeployRequest) (chainchart.DeployRequest, error) {
	key, err := ValidatePrivateKey(req.PrivateKey)
	if err != nil {
		return chainchart.DeployRequest{}, err
	}
	out := chainchart.DeployRequest{
		PrivateKey: key,
		RPCURL:     strings.TrimSpace(req.RPCURL),
		Network:    strings.TrimSpace(req.Network),
	}
	switch {
	case req.ContractID != "":
		out.ContractID = req.ContractID
		out.UserID = req.UserID
	case req.NEF != "" && len(req.Manifest) > 0:
		out.NEF = req.NEF
		out.Manifest = req.Manifest
	}
	return out, nil
}

// wireDiagram makes sure empty collections go out as [] rather than null.
func wireDiagram(d chainchart.Diagram) chainchart.Diagram {
	if d.Nodes == nil {
		d.Nodes = []chainchart.Node{}
	}
	if d.Edges == nil {
		d.Edges = []chainchart.Edge{}
	}
	return d
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	start := time.Now()
	resp, err := c.http.Post(path, client.Config{Ctx: ctx, Body: body})
	if err != nil {
		c.logger.Warn("backend unreachable", "op", op, "url", c.baseURL, "error", err)
		return &Error{
			Op:      op,
			Message: fmt.Sprintf("cannot connect to backend server at %s: %v", c.baseURL, err),
			Err:     err,
		}
	}
	defer resp.Close()

	status := resp.StatusCode()
	c.logger.Debug("backend call", "op", op, "path", path, "status", status, "duration", time.Since(start))

	if status < 200 || status > 299 {
		var env envelope
		_ = json.Unmarshal(resp.Body(), &env)
		msg := env.Detail
		if msg == "" {
			msg = env.Error
		}
		if msg == "" {
			msg = fmt.Sprintf("HTTP error! status: %d", status)
		}
		return &Error{Op: op, Status: status, Message: msg}
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return &Error{Op: op, Status: status, Message: "malformed response: " + err.Error(), Err: err}
	}
	return nil
}
