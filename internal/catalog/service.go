// Package catalog provides the memoized Stash queries behind the MCP tools.
package catalog

import (
	"context"
	"log/slog"

	"github.com/olgasafonova/stash-mcp-server/internal/filter"
	"github.com/olgasafonova/stash-mcp-server/internal/infra"
	"github.com/olgasafonova/stash-mcp-server/internal/stash"
)

// Cache names, used as metric labels and in health reports
const (
	PerformerCache  = "performer_cache"
	PerformersCache = "all_performers_cache"
	ScenesCache     = "all_scenes_cache"
)

const (
	DefaultPerformerCacheSize  = 256
	DefaultPerformersCacheSize = 64
	DefaultScenesCacheSize     = 64
)

// Connector hands out the live Stash handle
type Connector interface {
	Catalog(ctx context.Context) (stash.Catalog, error)
}

// Options sizes the caches. Zero values use the defaults.
type Options struct {
	PerformerCacheSize  int
	PerformersCacheSize int
	ScenesCacheSize     int
}

// CacheReport holds the statistics of every memoized query
type CacheReport struct {
	Performer  infra.CacheStats `json:"performer_cache"`
	Performers infra.CacheStats `json:"all_performers_cache"`
	Scenes     infra.CacheStats `json:"all_scenes_cache"`
}

// Service runs Stash queries through per-query LRU memoizers. Outcomes are
// cached by exact normalized arguments, and failures are cached like results.
type Service struct {
	conn   Connector
	logger *slog.Logger

	performer  *infra.Memo[*stash.Performer]
	performers *infra.Memo[[]stash.Performer]
	scenes     *infra.Memo[[]stash.Scene]
}

// NewService creates a query service backed by conn
func NewService(conn Connector, logger *slog.Logger, opts Options) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.PerformerCacheSize <= 0 {
		opts.PerformerCacheSize = DefaultPerformerCacheSize
	}
	if opts.PerformersCacheSize <= 0 {
		opts.PerformersCacheSize = DefaultPerformersCacheSize
	}
	if opts.ScenesCacheSize <= 0 {
		opts.ScenesCacheSize = DefaultScenesCacheSize
	}
	return &Service{
		conn:       conn,
		logger:     logger,
		performer:  infra.NewMemo[*stash.Performer](PerformerCache, opts.PerformerCacheSize),
		performers: infra.NewMemo[[]stash.Performer](PerformersCache, opts.PerformersCacheSize),
		scenes:     infra.NewMemo[[]stash.Scene](ScenesCache, opts.ScenesCacheSize),
	}
}

// PerformerInfo returns the performer with exactly this name or alias, or nil
// when there is none.
func (s *Service) PerformerInfo(ctx context.Context, name string) (*stash.Performer, error) {
	return s.performer.Do(ctx, name, func(ctx context.Context) (*stash.Performer, error) {
		cat, err := s.conn.Catalog(ctx)
		if err != nil {
			s.logger.Error("Performer lookup failed", "performer", name, "error", err)
			return nil, err
		}
		p, err := cat.FindPerformer(ctx, name)
		if err != nil {
			s.logger.Error("Performer lookup failed", "performer", name, "error", err)
			return nil, err
		}
		if p == nil {
			s.logger.Info("Performer not found", "performer", name)
			return nil, nil
		}
		s.logger.Info("Found performer", "performer", p.Name, "id", p.ID)
		return p, nil
	})
}

// Performers lists performers matching q
func (s *Service) Performers(ctx context.Context, q PerformerQuery) ([]stash.Performer, error) {
	q = q.normalize()
	return s.performers.Do(ctx, key(q), func(ctx context.Context) ([]stash.Performer, error) {
		cat, err := s.conn.Catalog(ctx)
		if err != nil {
			s.logger.Error("Performer listing failed", "error", err)
			return nil, err
		}
		performers, err := cat.FindPerformers(ctx, q.Filters())
		if err != nil {
			s.logger.Error("Performer listing failed", "error", err)
			return nil, err
		}
		s.logger.Info("Found performers"+q.active(), "count", len(performers))
		return performers, nil
	})
}

// Scenes lists tagged scenes matching q
func (s *Service) Scenes(ctx context.Context, q SceneQuery) ([]stash.Scene, error) {
	return s.scenes.Do(ctx, key(q), func(ctx context.Context) ([]stash.Scene, error) {
		cat, err := s.conn.Catalog(ctx)
		if err != nil {
			s.logger.Error("Scene listing failed", "error", err)
			return nil, err
		}
		f, err := s.sceneFilters(ctx, cat, q)
		if err != nil {
			s.logger.Error("Scene listing failed", "error", err)
			return nil, err
		}
		scenes, err := cat.FindScenes(ctx, f)
		if err != nil {
			s.logger.Error("Scene listing failed", "error", err)
			return nil, err
		}
		s.logger.Info("Found scenes"+q.describe(), "count", len(scenes))
		return scenes, nil
	})
}

func (s *Service) sceneFilters(ctx context.Context, cat stash.Catalog, q SceneQuery) (filter.Filters, error) {
	f := filter.Filters{}
	if q.OrganizedOnly {
		f["organized"] = true
	}
	f["tag_count"] = &filter.Criterion{Value: 0, Modifier: filter.GreaterThan}

	if len(filter.SplitNames(q.IncludeTags)) > 0 && len(filter.SplitNames(q.ExcludeTags)) > 0 {
		s.logger.Warn("Both include and exclude tags given, using include tags only",
			"include_tags", q.IncludeTags,
			"exclude_tags", q.ExcludeTags,
		)
	}
	tags, err := filter.Tags(ctx, tagResolver(cat), q.IncludeTags, q.ExcludeTags)
	if err != nil {
		return nil, err
	}
	if tags != nil {
		f["tags"] = tags
	}

	if rating := filter.Rating(q.MinRating, q.MaxRating); rating != nil {
		f["rating100"] = rating
	}
	return f, nil
}

func tagResolver(cat stash.Catalog) filter.TagResolver {
	return func(ctx context.Context, name string) (string, bool, error) {
		tag, err := cat.FindTag(ctx, name)
		if err != nil || tag == nil {
			return "", false, err
		}
		return tag.ID, true, nil
	}
}

// ScenesForPerformer lists a performer's scenes by exact name. It is not cached.
func (s *Service) ScenesForPerformer(ctx context.Context, name string, organizedOnly bool) ([]stash.Scene, error) {
	cat, err := s.conn.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	f := filter.Filters{
		"performers_filter": map[string]any{
			"name": &filter.Criterion{Value: name, Modifier: filter.Equals},
		},
	}
	if organizedOnly {
		f["organized"] = true
	}
	scenes, err := cat.FindScenes(ctx, f)
	if err != nil {
		s.logger.Error("Performer scene listing failed", "performer", name, "error", err)
		return nil, err
	}
	suffix := ""
	if organizedOnly {
		suffix = " (organized only)"
	}
	s.logger.Info("Found performer scenes"+suffix, "performer", name, "count", len(scenes))
	return scenes, nil
}

// CacheStats reports every memoizer's statistics
func (s *Service) CacheStats() CacheReport {
	return CacheReport{
		Performer:  s.performer.Stats(),
		Performers: s.performers.Stats(),
		Scenes:     s.scenes.Stats(),
	}
}

// ClearCaches drops every memoized outcome
func (s *Service) ClearCaches() {
	s.performer.Clear()
	s.performers.Clear()
	s.scenes.Clear()
}
