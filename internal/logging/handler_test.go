// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 OpenLot Contributors

package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"

	"github.com/openlot/openlot/internal/logging"
)

func logLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	return entry
}

func TestSetup(t *testing.T) {
	t.Run("json records carry service identity", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.Setup(logging.Options{
			Service: "openlot",
			Version: "1.2.3",
			Writer:  &buf,
		})

		logger.Info("server started", "addr", "127.0.0.1:9100")

		entry := logLine(t, &buf)
		assert.Equal(t, "openlot", entry["service"])
		assert.Equal(t, "1.2.3", entry["version"])
		assert.Equal(t, "server started", entry["msg"])
		assert.Equal(t, "127.0.0.1:9100", entry["addr"])
	})

	t.Run("text format", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.Setup(logging.Options{
			Service: "openlot",
			Format:  "text",
			Writer:  &buf,
		})

		logger.Info("hello")
		assert.Contains(t, buf.String(), "msg=hello")
		assert.Contains(t, buf.String(), "service=openlot")
	})

	t.Run("level filters records", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.Setup(logging.Options{
			Level:  slog.LevelWarn,
			Writer: &buf,
		})

		logger.Info("dropped")
		assert.Empty(t, buf.String())

		logger.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})

	t.Run("trace context is stamped when present", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.Setup(logging.Options{Writer: &buf})

		traceID := trace.TraceID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10}
		spanID := trace.SpanID{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08}
		spanCtx := trace.NewSpanContext(trace.SpanContextConfig{
			TraceID: traceID,
			SpanID:  spanID,
		})
		ctx := trace.ContextWithSpanContext(context.Background(), spanCtx)

		logger.InfoContext(ctx, "traced")

		entry := logLine(t, &buf)
		assert.Equal(t, traceID.String(), entry["trace_id"])
		assert.Equal(t, spanID.String(), entry["span_id"])
	})

	t.Run("no trace context means no trace fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.Setup(logging.Options{Writer: &buf})

		logger.Info("untraced")

		entry := logLine(t, &buf)
		assert.NotContains(t, entry, "trace_id")
		assert.NotContains(t, entry, "span_id")
	})

	t.Run("with attrs and groups survive wrapping", func(t *testing.T) {
		var buf bytes.Buffer
		logger := logging.Setup(logging.Options{Service: "openlot", Writer: &buf})

		logger.With("request_id", "abc").WithGroup("db").Info("query", "table", "cars")

		entry := logLine(t, &buf)
		assert.Equal(t, "abc", entry["request_id"])
		db, ok := entry["db"].(map[string]any)
		require.True(t, ok, "expected db group")
		assert.Equal(t, "cars", db["table"])
	})
}
