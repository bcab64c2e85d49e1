package middleware

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Logger is the process logger. Records logged with a request context pick
// up request_id, user_id and trace_id automatically.
var Logger *slog.Logger

var logLevel = new(slog.LevelVar)

type contextKey string

// Context keys read by the log handler.
const (
	RequestIDKey contextKey = "request_id"
	UserIDKey    contextKey = "user_id"
	TraceIDKey   contextKey = "trace_id"
)

type ctxHandler struct {
	slog.Handler
}

func (h *ctxHandler) Handle(ctx context.Context, r slog.Record) error {
	if rid, ok := ctx.Value(RequestIDKey).(string); ok && rid != "" {
		r.AddAttrs(slog.String("request_id", rid))
	}
	if uid, ok := ctx.Value(UserIDKey).(uint); ok && uid != 0 {
		r.AddAttrs(slog.Uint64("user_id", uint64(uid)))
	}
	if tid, ok := ctx.Value(TraceIDKey).(string); ok && tid != "" {
		r.AddAttrs(slog.String("trace_id", tid))
	}
	return h.Handler.Handle(ctx, r)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{h.Handler.WithAttrs(attrs)}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{h.Handler.WithGroup(name)}
}

// JSON in production, text elsewhere.
func init() {
	opts := &slog.HandlerOptions{Level: logLevel}
	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if env := os.Getenv("APP_ENV"); env == "production" || env == "prod" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	Logger = slog.New(&ctxHandler{h})
}

// SetLogLevel applies LOG_LEVEL. Unknown values mean info.
func SetLogLevel(level string) {
	level = strings.TrimSpace(level)
	if strings.EqualFold(level, "warning") {
		level = "warn"
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	logLevel.Set(l)
}

// WithUserID stores the authenticated viewer on ctx.
func WithUserID(ctx context.Context, userID uint) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// UserIDFromContext returns the authenticated viewer, or 0 when the request is anonymous.
func UserIDFromContext(ctx context.Context) uint {
	uid, _ := ctx.Value(UserIDKey).(uint)
	return uid
}

// ContextMiddleware copies the fiber request id onto the request context.
// Tracing adds the trace id and auth adds the viewer further down the chain.
func ContextMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rid, ok := c.Locals("requestid").(string); ok {
			c.SetUserContext(context.WithValue(c.UserContext(), RequestIDKey, rid))
		}
		return c.Next()
	}
}

// StructuredLogger logs one line per request at a level that follows the
// status: 5xx as error, 4xx as warn, the rest as info.
func StructuredLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		} else if err != nil {
			status = fiber.StatusInternalServerError
		}

		attrs := []any{
			slog.Int("status", status),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.String("ip", c.IP()),
			slog.Duration("latency", time.Since(start)),
		}
		if route := c.Route(); route != nil && route.Path != c.Path() {
			attrs = append(attrs, slog.String("route", route.Path))
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		// The viewer is bound on the fiber locals after this middleware ran.
		ctx := c.UserContext()
		if uid := CurrentUserID(c); uid != 0 && UserIDFromContext(ctx) == 0 {
			ctx = WithUserID(ctx, uid)
		}

		switch {
		case status >= fiber.StatusInternalServerError:
			Logger.ErrorContext(ctx, "request failed", attrs...)
		case status >= fiber.StatusBadRequest:
			Logger.WarnContext(ctx, "request rejected", attrs...)
		default:
			Logger.InfoContext(ctx, "request served", attrs...)
		}
		return err
	}
}
