package tools

import (
	"context"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Reporter sends progress and log messages to the calling client while a
// long-running tool works.
type Reporter interface {
	Progress(ctx context.Context, progress, total float64, message string)
	Log(ctx context.Context, level mcp.LoggingLevel, message string)
}

type reporterKey struct{}

// WithReporter returns a context carrying r
func WithReporter(ctx context.Context, r Reporter) context.Context {
	return context.WithValue(ctx, reporterKey{}, r)
}

// ReporterFrom returns the reporter on ctx, or one that only logs locally
func ReporterFrom(ctx context.Context, logger *slog.Logger) Reporter {
	if r, ok := ctx.Value(reporterKey{}).(Reporter); ok && r != nil {
		return r
	}
	return &sessionReporter{logger: logger}
}

// sessionReporter forwards to the MCP session that issued the call and
// mirrors every message to slog. Progress is only sent when the client
// asked for it with a progress token.
type sessionReporter struct {
	session *mcp.ServerSession
	token   any
	tool    string
	logger  *slog.Logger
}

func newSessionReporter(req *mcp.CallToolRequest, tool string, logger *slog.Logger) *sessionReporter {
	r := &sessionReporter{tool: tool, logger: logger}
	if req != nil {
		r.session = req.Session
		if req.Params != nil {
			r.token = req.Params.GetProgressToken()
		}
	}
	return r
}

func (r *sessionReporter) Progress(ctx context.Context, progress, total float64, message string) {
	if r.session == nil || r.token == nil {
		return
	}
	err := r.session.NotifyProgress(ctx, &mcp.ProgressNotificationParams{
		ProgressToken: r.token,
		Progress:      progress,
		Total:         total,
		Message:       message,
	})
	if err != nil && r.logger != nil {
		r.logger.Debug("Progress notification failed", "tool", r.tool, "error", err)
	}
}

func (r *sessionReporter) Log(ctx context.Context, level mcp.LoggingLevel, message string) {
	if r.logger != nil {
		r.logger.Log(ctx, slogLevel(level), message, "tool", r.tool)
	}
	if r.session == nil {
		return
	}
	_ = r.session.Log(ctx, &mcp.LoggingMessageParams{
		Level:  level,
		Logger: r.tool,
		Data:   message,
	})
}

func slogLevel(level mcp.LoggingLevel) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warning", "notice":
		return slog.LevelWarn
	case "error", "critical", "alert", "emergency":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
