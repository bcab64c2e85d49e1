package middleware

import (
	"bytes"
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCtxHandlerAddsRequestFields(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(&ctxHandler{slog.NewJSONHandler(&buf, nil)})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, TraceIDKey, "trace-1")
	ctx = WithUserID(ctx, 42)
	l.InfoContext(ctx, "hello")

	out := buf.String()
	assert.Contains(t, out, `"request_id":"req-1"`)
	assert.Contains(t, out, `"trace_id":"trace-1"`)
	assert.Contains(t, out, `"user_id":42`)

	buf.Reset()
	l.InfoContext(WithUserID(context.Background(), 0), "anon")
	assert.NotContains(t, buf.String(), "user_id")
}

func TestSetLogLevel(t *testing.T) {
	t.Cleanup(func() { SetLogLevel("info") })

	for in, want := range map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	} {
		SetLogLevel(in)
		assert.Equal(t, want, logLevel.Level(), in)
	}
}

func TestTracingMiddlewareSetsTraceHeader(t *testing.T) {
	app := fiber.New()
	app.Use(TracingMiddleware())

	var seen string
	app.Get("/posts/:id", func(c *fiber.Ctx) error {
		seen, _ = c.UserContext().Value(TraceIDKey).(string)
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/posts/7", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Len(t, resp.Header.Get("X-Trace-ID"), 32)
	assert.Equal(t, resp.Header.Get("X-Trace-ID"), seen)
}
