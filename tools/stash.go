package tools

import (
	"context"

	"github.com/olgasafonova/stash-mcp-server/internal/catalog"
	"github.com/olgasafonova/stash-mcp-server/internal/filter"
	"github.com/olgasafonova/stash-mcp-server/internal/stash"
)

// PerformerInfo looks up one performer by name. Lookup failures read as not found.
func (h *HandlerRegistry) PerformerInfo(ctx context.Context, args PerformerInfoArgs) (PerformerInfoResult, error) {
	p, err := h.service.PerformerInfo(ctx, args.PerformerName)
	if err != nil {
		h.logger.Error("Error getting performer info", "performer", args.PerformerName, "error", err)
		return PerformerInfoResult{Found: false}, nil
	}
	if p == nil {
		return PerformerInfoResult{Found: false}, nil
	}
	return PerformerInfoResult{Found: true, Performer: p}, nil
}

// AllPerformers lists performers matching the filters. Invalid modifiers are
// rejected before Stash is queried.
func (h *HandlerRegistry) AllPerformers(ctx context.Context, args AllPerformersArgs) (PerformersResult, error) {
	q, err := args.query()
	if err != nil {
		return PerformersResult{}, err
	}

	performers, err := h.service.Performers(ctx, q)
	if err != nil {
		h.logger.Error("Error getting performers", "error", err)
		performers = nil
	}
	if performers == nil {
		performers = []stash.Performer{}
	}
	return PerformersResult{Performers: performers, Count: len(performers)}, nil
}

// query converts the tool arguments into a catalog query
func (a AllPerformersArgs) query() (catalog.PerformerQuery, error) {
	q := catalog.PerformerQuery{
		FavoritesOnly:  boolOr(a.FavoritesOnly, true),
		Country:        a.Country,
		Ethnicity:      a.Ethnicity,
		EyeColor:       a.EyeColor,
		HairColor:      a.HairColor,
		HeightCm:       a.HeightCm,
		HeightCmValue2: a.HeightCmValue2,
		Measurements:   a.Measurements,
		Piercings:      a.Piercings,
		Tattoos:        a.Tattoos,
		Weight:         a.Weight,
		WeightValue2:   a.WeightValue2,
	}

	modifiers := []struct {
		raw string
		dst *filter.Modifier
	}{
		{a.CountryModifier, &q.CountryModifier},
		{a.EthnicityModifier, &q.EthnicityModifier},
		{a.EyeColorModifier, &q.EyeColorModifier},
		{a.HairColorModifier, &q.HairColorModifier},
		{a.HeightCmModifier, &q.HeightCmModifier},
		{a.MeasurementsModifier, &q.MeasurementsModifier},
		{a.WeightModifier, &q.WeightModifier},
	}
	for _, m := range modifiers {
		mod, err := filter.ParseModifier(m.raw)
		if err != nil {
			return catalog.PerformerQuery{}, err
		}
		*m.dst = mod
	}
	return q, nil
}

// AllScenes lists tagged scenes matching the filters
func (h *HandlerRegistry) AllScenes(ctx context.Context, args AllScenesArgs) (ScenesResult, error) {
	scenes, err := h.service.Scenes(ctx, catalog.SceneQuery{
		OrganizedOnly: boolOr(args.OrganizedOnly, true),
		ExcludeTags:   args.ExcludeTags,
		IncludeTags:   args.IncludeTags,
		MinRating:     args.MinRating,
		MaxRating:     args.MaxRating,
	})
	if err != nil {
		h.logger.Error("Error getting scenes", "error", err)
		scenes = nil
	}
	return scenesResult(scenes), nil
}

// PerformerScenes lists every scene of one performer
func (h *HandlerRegistry) PerformerScenes(ctx context.Context, args PerformerScenesArgs) (ScenesResult, error) {
	scenes, err := h.service.ScenesForPerformer(ctx, args.PerformerName, boolOr(args.OrganizedOnly, true))
	if err != nil {
		h.logger.Error("Error getting scenes from performer", "performer", args.PerformerName, "error", err)
		scenes = nil
	}
	return scenesResult(scenes), nil
}

// HealthCheck reports connectivity and cache statistics. A failed connection
// is reported, never returned as an error.
func (h *HandlerRegistry) HealthCheck(ctx context.Context, _ HealthCheckArgs) (HealthCheckResult, error) {
	report := h.service.CacheStats()
	result := HealthCheckResult{
		PerformerCache:     report.Performer,
		AllPerformersCache: report.Performers,
		AllScenesCache:     report.Scenes,
	}

	if handle := h.conn.Connect(ctx); handle != nil {
		endpoint := handle.Endpoint()
		result.Connected = true
		result.Endpoint = &endpoint
	}
	return result, nil
}

func scenesResult(scenes []stash.Scene) ScenesResult {
	if scenes == nil {
		scenes = []stash.Scene{}
	}
	return ScenesResult{Scenes: scenes, Count: len(scenes)}
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
