// Package stash provides a GraphQL client for the Stash media organizer API.
package stash

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/codes"

	"github.com/olgasafonova/stash-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/stash-mcp-server/internal/errors"
	"github.com/olgasafonova/stash-mcp-server/internal/filter"
	"github.com/olgasafonova/stash-mcp-server/metrics"
	"github.com/olgasafonova/stash-mcp-server/tracing"
)

const (
	// DefaultPort is used when the endpoint does not name one
	DefaultPort = "9999"

	apiKeyHeader = "ApiKey"
	graphqlPath  = "/graphql"
)

// Catalog is the read-only query surface of a Stash server. Single-record
// lookups return nil and no error when nothing matches.
type Catalog interface {
	FindPerformer(ctx context.Context, name string) (*Performer, error)
	FindPerformers(ctx context.Context, f filter.Filters) ([]Performer, error)
	FindScenes(ctx context.Context, f filter.Filters) ([]Scene, error)
	FindStudio(ctx context.Context, name string) (*Studio, error)
	FindStudios(ctx context.Context, f filter.Filters) ([]Studio, error)
	FindTag(ctx context.Context, name string) (*Tag, error)
	FindTags(ctx context.Context, f filter.Filters) ([]Tag, error)
	Endpoint() string
}

// Client is a Stash GraphQL client
type Client struct {
	*base.Client
	endpoint   string
	graphqlURL string
	apiKey     string
}

var _ Catalog = (*Client)(nil)

// NewClient creates a client for the given endpoint. It fails with
// ErrClientUnavailable when the endpoint cannot be used.
func NewClient(endpoint, apiKey string, opts ...base.ClientOption) (*Client, error) {
	normalized, err := NormalizeEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	return &Client{
		Client:     base.NewClient(opts...),
		endpoint:   normalized,
		graphqlURL: normalized + graphqlPath,
		apiKey:     apiKey,
	}, nil
}

// NormalizeEndpoint reduces an endpoint URL to scheme://host:port. A missing
// scheme becomes http and a missing port becomes 9999.
func NormalizeEndpoint(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: endpoint is empty", apierrors.ErrClientUnavailable)
	}
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: invalid endpoint %q: %v", apierrors.ErrClientUnavailable, raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", apierrors.ErrClientUnavailable, u.Scheme)
	}
	host := u.Hostname()
	if host == "" {
		return "", fmt.Errorf("%w: endpoint %q has no host", apierrors.ErrClientUnavailable, raw)
	}
	port := u.Port()
	if port == "" {
		port = DefaultPort
	}
	return u.Scheme + "://" + net.JoinHostPort(host, port), nil
}

// Endpoint returns the normalized endpoint
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Ping checks that the server answers and accepts the API key. It returns the
// server version.
func (c *Client) Ping(ctx context.Context) (string, error) {
	var data struct {
		Version struct {
			Version string `json:"version"`
		} `json:"version"`
	}
	if err := c.query(ctx, opVersion, "", versionQuery, nil, &data); err != nil {
		return "", err
	}
	return data.Version.Version, nil
}

type graphqlRequest struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// query runs one GraphQL operation and decodes its data into out.
func (c *Client) query(ctx context.Context, operation, lookup, query string, vars map[string]any, out any) (err error) {
	ctx, span := tracing.StartSpan(ctx, "stash."+operation)
	defer span.End()
	tracing.AddStashAttributes(span, operation, lookup)

	start := time.Now()
	defer func() {
		metrics.RecordAPICall(operation, time.Since(start).Seconds(), err == nil)
		if err != nil {
			tracing.RecordError(span, err)
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}()

	payload, err := json.Marshal(graphqlRequest{OperationName: operation, Query: query, Variables: vars})
	if err != nil {
		return apierrors.NewQueryError(operation, fmt.Errorf("encode request: %w", err))
	}

	body, status, err := c.DoRequest(ctx, base.RequestConfig{
		URL:       c.graphqlURL,
		Body:      payload,
		Headers:   map[string]string{apiKeyHeader: c.apiKey},
		Operation: operation,
	})
	if err != nil {
		return apierrors.NewQueryError(operation, err)
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return apierrors.NewQueryError(operation, fmt.Errorf("api key rejected (status %d)", status))
	case status < 200 || status >= 300:
		return apierrors.NewQueryError(operation, fmt.Errorf("unexpected status %d: %s", status, truncate(string(body), 200)))
	}

	var resp graphqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return apierrors.NewQueryError(operation, fmt.Errorf("decode response: %w", err))
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return apierrors.NewQueryError(operation, fmt.Errorf("graphql: %s", strings.Join(msgs, "; ")))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Data, out); err != nil {
		return apierrors.NewQueryError(operation, fmt.Errorf("decode data: %w", err))
	}
	return nil
}

func findVars(ff findFilter, filterArg string, f filter.Filters) map[string]any {
	vars := map[string]any{"filter": ff}
	if len(f) > 0 {
		vars[filterArg] = f
	}
	return vars
}

// FindPerformers returns every performer matching f
func (c *Client) FindPerformers(ctx context.Context, f filter.Filters) ([]Performer, error) {
	return c.findPerformers(ctx, "", allResults(), f)
}

// FindPerformer returns the performer whose name or alias equals name, ignoring case
func (c *Client) FindPerformer(ctx context.Context, name string) (*Performer, error) {
	performers, err := c.findPerformers(ctx, name, nameSearch(name), nil)
	if err != nil {
		return nil, err
	}
	for i := range performers {
		if matchesName(name, performers[i].Name, performers[i].AliasList) {
			return &performers[i], nil
		}
	}
	return nil, nil
}

func (c *Client) findPerformers(ctx context.Context, lookup string, ff findFilter, f filter.Filters) ([]Performer, error) {
	var data struct {
		FindPerformers struct {
			Count      int         `json:"count"`
			Performers []Performer `json:"performers"`
		} `json:"findPerformers"`
	}
	if err := c.query(ctx, opFindPerformers, lookup, findPerformersQuery, findVars(ff, "performer_filter", f), &data); err != nil {
		return nil, err
	}
	return data.FindPerformers.Performers, nil
}

// FindScenes returns every scene matching f
func (c *Client) FindScenes(ctx context.Context, f filter.Filters) ([]Scene, error) {
	var data struct {
		FindScenes struct {
			Count  int     `json:"count"`
			Scenes []Scene `json:"scenes"`
		} `json:"findScenes"`
	}
	if err := c.query(ctx, opFindScenes, "", findScenesQuery, findVars(allResults(), "scene_filter", f), &data); err != nil {
		return nil, err
	}
	return data.FindScenes.Scenes, nil
}

// FindStudios returns every studio matching f
func (c *Client) FindStudios(ctx context.Context, f filter.Filters) ([]Studio, error) {
	return c.findStudios(ctx, "", allResults(), f)
}

// FindStudio returns the studio whose name or alias equals name, ignoring case
func (c *Client) FindStudio(ctx context.Context, name string) (*Studio, error) {
	studios, err := c.findStudios(ctx, name, nameSearch(name), nil)
	if err != nil {
		return nil, err
	}
	for i := range studios {
		if matchesName(name, studios[i].Name, studios[i].Aliases) {
			return &studios[i], nil
		}
	}
	return nil, nil
}

func (c *Client) findStudios(ctx context.Context, lookup string, ff findFilter, f filter.Filters) ([]Studio, error) {
	var data struct {
		FindStudios struct {
			Count   int      `json:"count"`
			Studios []Studio `json:"studios"`
		} `json:"findStudios"`
	}
	if err := c.query(ctx, opFindStudios, lookup, findStudiosQuery, findVars(ff, "studio_filter", f), &data); err != nil {
		return nil, err
	}
	return data.FindStudios.Studios, nil
}

// FindTags returns every tag matching f
func (c *Client) FindTags(ctx context.Context, f filter.Filters) ([]Tag, error) {
	return c.findTags(ctx, "", allResults(), f)
}

// FindTag returns the tag whose name or alias equals name, ignoring case
func (c *Client) FindTag(ctx context.Context, name string) (*Tag, error) {
	tags, err := c.findTags(ctx, name, nameSearch(name), nil)
	if err != nil {
		return nil, err
	}
	for i := range tags {
		if matchesName(name, tags[i].Name, tags[i].Aliases) {
			return &tags[i], nil
		}
	}
	return nil, nil
}

func (c *Client) findTags(ctx context.Context, lookup string, ff findFilter, f filter.Filters) ([]Tag, error) {
	var data struct {
		FindTags struct {
			Count int   `json:"count"`
			Tags  []Tag `json:"tags"`
		} `json:"findTags"`
	}
	if err := c.query(ctx, opFindTags, lookup, findTagsQuery, findVars(ff, "tag_filter", f), &data); err != nil {
		return nil, err
	}
	return data.FindTags.Tags, nil
}

func matchesName(want, name string, aliases []string) bool {
	want = strings.TrimSpace(want)
	if strings.EqualFold(want, name) {
		return true
	}
	for _, alias := range aliases {
		if strings.EqualFold(want, alias) {
			return true
		}
	}
	return false
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
