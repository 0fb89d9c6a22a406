// Package resources implements the read-only stash:// MCP resources.
//
// Every resource queries Stash directly, without the memoized catalog layer,
// and answers with a JSON document carrying a "success" flag. Failures are
// reported inside the document and never as protocol errors.
package resources

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/stash-mcp-server/internal/catalog"
	apierrors "github.com/olgasafonova/stash-mcp-server/internal/errors"
	"github.com/olgasafonova/stash-mcp-server/internal/stash"
	"github.com/olgasafonova/stash-mcp-server/metrics"
	"github.com/olgasafonova/stash-mcp-server/tracing"
)

// Scheme prefixes every resource URI
const Scheme = "stash://"

const mimeJSON = "application/json"

// readFunc builds the success document for one read. param is the decoded
// template variable, empty for static resources.
type readFunc func(ctx context.Context, cat stash.Catalog, param string) (any, error)

// Definition describes one resource or resource template
type Definition struct {
	// Path follows the scheme, e.g. "performer/{name}"
	Path        string
	Name        string
	Description string

	read readFunc
}

// URI returns the full URI or URI template
func (d Definition) URI() string {
	return Scheme + d.Path
}

// Templated reports whether the path has a variable segment
func (d Definition) Templated() bool {
	return strings.Contains(d.Path, "{")
}

// param extracts the decoded variable from a concrete URI
func (d Definition) param(uri string) (string, error) {
	if !d.Templated() {
		return "", nil
	}
	prefix := Scheme + d.Path[:strings.Index(d.Path, "{")]
	raw := strings.TrimPrefix(uri, prefix)
	value, err := url.PathUnescape(raw)
	if err != nil {
		return "", apierrors.NewValidationError("uri", uri, "invalid escape in resource path")
	}
	if value == "" {
		return "", apierrors.NewValidationError("uri", uri, "missing resource name")
	}
	return value, nil
}

// Handler serves the stash:// resources.
type Handler struct {
	conn          catalog.Connector
	favoritesOnly bool
	logger        *slog.Logger
}

// NewHandler creates a resource Handler. favoritesOnly limits the performer
// listings and statistics to favorite performers.
func NewHandler(conn catalog.Connector, favoritesOnly bool, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{conn: conn, favoritesOnly: favoritesOnly, logger: logger}
}

// Definitions lists every resource the handler serves
func (h *Handler) Definitions() []Definition {
	return []Definition{
		{Path: "performer/all", Name: "All Performers", Description: "List of all favorite performers in the Stash database", read: h.allPerformers},
		{Path: "performer/stats", Name: "Performer Statistics", Description: "Statistical summary of all performers in the database", read: h.performerStats},
		{Path: "performer/{name}", Name: "Performer Information", Description: "Detailed information about a specific performer", read: h.performer},
		{Path: "performer/country/{country}", Name: "Performers by Country", Description: "List of performers from a specific country", read: h.performersByCountry},
		{Path: "performer/ethnicity/{ethnicity}", Name: "Performers by Ethnicity", Description: "List of performers with a specific ethnicity", read: h.performersByEthnicity},
		{Path: "studio/all", Name: "All Studios", Description: "List of all studios in the Stash database", read: h.allStudios},
		{Path: "studio/stats", Name: "Studio Statistics", Description: "Statistical summary of all studios in the database", read: h.studioStats},
		{Path: "studio/{name}", Name: "Studio Information", Description: "Detailed information about a specific studio", read: h.studio},
		{Path: "tag/all", Name: "All Tags", Description: "List of all tags in the Stash database", read: h.allTags},
		{Path: "tag/stats", Name: "Tag Statistics", Description: "Statistical summary of all tags in the database", read: h.tagStats},
		{Path: "tag/{name}", Name: "Tag Information", Description: "Detailed information about a specific tag", read: h.tag},
	}
}

// Register adds every resource and resource template to server.
func (h *Handler) Register(server *mcp.Server) {
	defs := h.Definitions()
	for _, def := range defs {
		if def.Templated() {
			server.AddResourceTemplate(&mcp.ResourceTemplate{
				URITemplate: def.URI(),
				Name:        def.Name,
				Description: def.Description,
				MIMEType:    mimeJSON,
			}, h.handle(def))
			continue
		}
		server.AddResource(&mcp.Resource{
			URI:         def.URI(),
			Name:        def.Name,
			Description: def.Description,
			MIMEType:    mimeJSON,
		}, h.handle(def))
	}
	h.logger.Info("Registered all resources", "count", len(defs))
}

func (h *Handler) handle(def Definition) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		uri := req.Params.URI
		text, err := h.Read(ctx, def, uri)
		if err != nil {
			return nil, err
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{URI: uri, MIMEType: mimeJSON, Text: text}},
		}, nil
	}
}

// Read renders the document for uri. Only an encoding failure is returned as
// an error; everything else is reported in the document.
func (h *Handler) Read(ctx context.Context, def Definition, uri string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "mcp.resource.read")
	defer span.End()
	tracing.AddResourceAttributes(span, uri)

	doc, err := h.read(ctx, def, uri)
	if err != nil {
		if apierrors.IsNotFound(err) {
			h.logger.Warn("Resource entity not found", "resource", def.Path, "uri", uri, "error", err)
		} else {
			h.logger.Error("Resource read failed", "resource", def.Path, "uri", uri, "error", err)
		}
		tracing.RecordError(span, err)
		metrics.RecordResourceRead(def.Path, false)
		return encode(failure{Success: false, Error: err.Error()})
	}

	span.SetStatus(codes.Ok, "")
	metrics.RecordResourceRead(def.Path, true)
	return encode(doc)
}

func (h *Handler) read(ctx context.Context, def Definition, uri string) (any, error) {
	param, err := def.param(uri)
	if err != nil {
		return nil, err
	}
	cat, err := h.conn.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	return def.read(ctx, cat, param)
}

// failure is the document of a read that did not succeed
type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// encode renders v as indented JSON without HTML or non-ASCII escaping
func encode(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// positive returns v when it points at a value above zero
func positive(v *int) *int {
	if v == nil || *v <= 0 {
		return nil
	}
	return v
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func tagNames(tags []stash.TagRef) []string {
	if len(tags) == 0 {
		return nil
	}
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = orDefault(t.Name, "Unknown")
	}
	return names
}
