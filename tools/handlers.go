package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/stash-mcp-server/internal/catalog"
	"github.com/olgasafonova/stash-mcp-server/internal/config"
	"github.com/olgasafonova/stash-mcp-server/internal/stash"
	"github.com/olgasafonova/stash-mcp-server/metrics"
	"github.com/olgasafonova/stash-mcp-server/tracing"
)

// Connection is the part of the connection manager the tools need
type Connection interface {
	catalog.Connector
	Connect(ctx context.Context) stash.Catalog
}

// Settings are the tool defaults taken from configuration
type Settings struct {
	MaxBatchPerformers int
	Ratings            config.Ratings
}

// DefaultSettings returns the stock batch cap and rating tiers
func DefaultSettings() Settings {
	return Settings{
		MaxBatchPerformers: 10,
		Ratings:            config.Ratings{Excellent: 90, Good: 70, Average: 50},
	}
}

// HandlerRegistry provides type-safe tool registration by mapping
// tool names to their concrete handler implementations.
type HandlerRegistry struct {
	service  *catalog.Service
	conn     Connection
	settings Settings
	logger   *slog.Logger
}

// NewHandlerRegistry creates a new handler registry.
func NewHandlerRegistry(service *catalog.Service, conn Connection, settings Settings, logger *slog.Logger) *HandlerRegistry {
	if settings.MaxBatchPerformers <= 0 {
		settings.MaxBatchPerformers = DefaultSettings().MaxBatchPerformers
	}
	if settings.Ratings == (config.Ratings{}) {
		settings.Ratings = DefaultSettings().Ratings
	}
	return &HandlerRegistry{
		service:  service,
		conn:     conn,
		settings: settings,
		logger:   logger,
	}
}

// RegisterAll registers all tools with the MCP server.
func (h *HandlerRegistry) RegisterAll(server *mcp.Server) {
	for _, spec := range AllTools {
		h.registerByName(server, spec)
	}
	h.logger.Info("Registered all tools", "count", len(AllTools))
}

// registerByName dispatches to the correct typed registration function.
func (h *HandlerRegistry) registerByName(server *mcp.Server, spec ToolSpec) {
	tool := h.buildTool(spec)

	switch spec.Method {
	case "PerformerInfo":
		register(h, server, tool, spec, h.PerformerInfo)
	case "AllPerformers":
		register(h, server, tool, spec, h.AllPerformers)
	case "AllScenes":
		register(h, server, tool, spec, h.AllScenes)
	case "PerformerScenes":
		register(h, server, tool, spec, h.PerformerScenes)
	case "HealthCheck":
		register(h, server, tool, spec, h.HealthCheck)
	case "AdvancedPerformerAnalysis":
		register(h, server, tool, spec, h.AdvancedPerformerAnalysis)
	case "BatchPerformerInsights":
		register(h, server, tool, spec, h.BatchPerformerInsights)
	default:
		h.logger.Error("Unknown method, tool not registered", "method", spec.Method, "tool", spec.Name)
	}
}

// buildTool creates an mcp.Tool from a ToolSpec.
func (h *HandlerRegistry) buildTool(spec ToolSpec) *mcp.Tool {
	annotations := &mcp.ToolAnnotations{
		Title:          spec.Title,
		ReadOnlyHint:   spec.ReadOnly,
		IdempotentHint: spec.Idempotent,
		OpenWorldHint:  ptr(spec.OpenWorld),
	}

	return &mcp.Tool{
		Name:        spec.Name,
		Description: spec.Description,
		Annotations: annotations,
	}
}

// register is a generic helper that registers a tool with the MCP server.
// It wraps the handler method with panic recovery, metrics, tracing, and
// logging. Errors and panics reach the client as an {"error": ...} payload
// in an IsError result; the output schema is not applied to them.
func register[Args, Result any](
	h *HandlerRegistry,
	server *mcp.Server,
	tool *mcp.Tool,
	spec ToolSpec,
	method func(context.Context, Args) (Result, error),
) {
	mcp.AddTool(server, tool, func(ctx context.Context, req *mcp.CallToolRequest, args Args) (res *mcp.CallToolResult, out Result, err error) {
		var zero Result
		defer func() {
			if rec := recover(); rec != nil {
				h.logPanic(spec.Name, rec)
				metrics.RecordRequest(spec.Name, 0, false)
				res, out, err = nil, zero, &ToolError{Message: fmt.Sprintf("internal error: %v", rec)}
			}
		}()

		ctx, span := tracing.StartSpan(ctx, "mcp.tool."+spec.Name)
		defer span.End()
		tracing.AddToolAttributes(span, spec.Name, spec.Category)
		span.SetAttributes(attribute.Bool("mcp.tool.readonly", spec.ReadOnly))

		metrics.RequestInFlight.WithLabelValues(spec.Name).Inc()
		defer metrics.RequestInFlight.WithLabelValues(spec.Name).Dec()

		if spec.Progress {
			ctx = WithReporter(ctx, newSessionReporter(req, spec.Name, h.logger))
		}

		start := time.Now()
		result, err := method(ctx, args)
		duration := time.Since(start).Seconds()

		span.SetAttributes(attribute.Float64("mcp.tool.duration_seconds", duration))

		if err != nil {
			tracing.RecordError(span, err)
			metrics.RecordRequest(spec.Name, duration, false)
			h.logger.Warn("Tool failed", "tool", spec.Name, "error", err)
			return nil, zero, &ToolError{Message: err.Error()}
		}

		span.SetStatus(codes.Ok, "")
		metrics.RecordRequest(spec.Name, duration, true)
		h.logExecution(spec, args, result)
		return nil, result, nil
	})
}

// ToolError is a failed tool call. The SDK reports a handler error as an
// IsError result whose text is Error(), so Error renders the {"error": ...}
// payload rather than the bare message.
type ToolError struct {
	Message string
}

func (e *ToolError) Error() string {
	data, _ := json.Marshal(map[string]string{"error": e.Message})
	return string(data)
}

// logPanic records a recovered panic from a tool handler.
func (h *HandlerRegistry) logPanic(toolName string, rec any) {
	metrics.PanicsRecovered.WithLabelValues(toolName).Inc()
	h.logger.Error("Panic recovered",
		"tool", toolName,
		"panic", rec,
		"stack", string(debug.Stack()))
}

// logExecution logs tool execution details.
func (h *HandlerRegistry) logExecution(spec ToolSpec, args, result any) {
	attrs := []any{"tool", spec.Name, "category", spec.Category}

	switch a := args.(type) {
	case PerformerInfoArgs:
		attrs = append(attrs, "performer", a.PerformerName)
	case PerformerScenesArgs:
		attrs = append(attrs, "performer", a.PerformerName)
	case AllScenesArgs:
		if a.IncludeTags != "" {
			attrs = append(attrs, "include_tags", a.IncludeTags)
		}
		if a.ExcludeTags != "" {
			attrs = append(attrs, "exclude_tags", a.ExcludeTags)
		}
	case AdvancedAnalysisArgs:
		attrs = append(attrs, "performer", a.PerformerName)
	case BatchInsightsArgs:
		attrs = append(attrs, "requested", len(a.PerformerNames))
	}

	switch r := result.(type) {
	case PerformerInfoResult:
		attrs = append(attrs, "found", r.Found)
	case PerformersResult:
		attrs = append(attrs, "results_count", r.Count)
	case ScenesResult:
		attrs = append(attrs, "results_count", r.Count)
	case HealthCheckResult:
		attrs = append(attrs, "connected", r.Connected)
	case AdvancedAnalysisResult:
		attrs = append(attrs, "total_scenes", r.SceneStatistics.TotalScenes, "analysis_id", r.AnalysisMetadata.AnalysisID)
	case BatchInsightsResult:
		attrs = append(attrs, "processed", r.Summary.TotalProcessed, "failed", r.Summary.TotalFailed)
	}

	h.logger.Info("Tool executed", attrs...)
}
