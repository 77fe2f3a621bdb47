package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNew_JSONWithCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := New("info", "json", &buf)

	ctx := WithProjectID(WithRequestID(context.Background(), "req-1"), "proj-9")
	logger.InfoContext(ctx, "saved", "nodes", 3)
	logger.Debug("hidden")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "saved", rec["msg"])
	assert.Equal(t, "req-1", rec["request_id"])
	assert.Equal(t, "proj-9", rec["project_id"])
	assert.Equal(t, float64(3), rec["nodes"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	New("debug", "text", &buf).With("component", "canvas").Debug("mode", "to", "idle")
	assert.Contains(t, buf.String(), "component=canvas")
	assert.Contains(t, buf.String(), "to=idle")
	assert.NotContains(t, buf.String(), "request_id")
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))
	assert.Empty(t, ProjectID(ctx))
	assert.Equal(t, "r", RequestID(WithRequestID(ctx, "r")))
}
