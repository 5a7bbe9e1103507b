package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry), "bad json: %s", buf.String())
	return entry
}

func TestSetupJSONCarriesServiceIdentity(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "authcore", Version: "1.2.3", Format: "json", Writer: &buf})

	logger.Info("hello")

	entry := decode(t, &buf)
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "authcore", entry["service"])
	assert.Equal(t, "1.2.3", entry["version"])
}

func TestSetupTextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "loadtest", Format: "text", Writer: &buf})

	logger.Info("hello")

	assert.Contains(t, buf.String(), "service=loadtest")
}

func TestSetupRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Level: "warn", Writer: &buf})

	logger.Info("dropped")
	assert.Zero(t, buf.Len())

	logger.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestHandlerAddsTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "authcore", Writer: &buf})

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: traceID,
		SpanID:  spanID,
	}))

	logger.InfoContext(ctx, "traced")

	entry := decode(t, &buf)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", entry["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", entry["span_id"])
}

func TestWithAttrsKeepsCorrelation(t *testing.T) {
	var buf bytes.Buffer
	logger := Setup(Options{Service: "authcore", Writer: &buf}).With("component", "engine")

	logger.Info("hello")

	entry := decode(t, &buf)
	assert.Equal(t, "engine", entry["component"])
	assert.Equal(t, "authcore", entry["service"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
}

func TestLogErrorExpandsOops(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	err := oops.In("authcore").Code("AUTH_INFRASTRUCTURE").With("operation", "save_session").Wrap(errors.New("redis down"))
	LogError(context.Background(), logger, "issue failed", err)

	entry := decode(t, &buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "AUTH_INFRASTRUCTURE", entry["code"])
	assert.Equal(t, "authcore", entry["domain"])
	fields, ok := entry["context"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "save_session", fields["operation"])
}

func TestLogErrorPlain(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	LogError(context.Background(), logger, "failed", errors.New("plain"), "user_id", "u1")

	entry := decode(t, &buf)
	assert.Equal(t, "plain", entry["error"])
	assert.Equal(t, "u1", entry["user_id"])
}

func TestLogErrorIgnoresNil(t *testing.T) {
	var buf bytes.Buffer
	LogError(context.Background(), slog.New(slog.NewJSONHandler(&buf, nil)), "x", nil)
	assert.Zero(t, buf.Len())
}
