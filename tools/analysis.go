package tools

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/olgasafonova/stash-mcp-server/internal/catalog"
	"github.com/olgasafonova/stash-mcp-server/internal/stash"
	"github.com/olgasafonova/stash-mcp-server/internal/stats"
)

const (
	topRatedThreshold = 80
	topRatedLimit     = 5
	similarLimit      = 5
	commonTagsLimit   = 10
)

// Log levels used for client-visible messages
const (
	levelInfo    mcp.LoggingLevel = "info"
	levelWarning mcp.LoggingLevel = "warning"
	levelError   mcp.LoggingLevel = "error"
)

// AdvancedPerformerAnalysis runs a phased deep dive on one performer. Only a
// missing performer aborts the run; later phases degrade to empty results.
func (h *HandlerRegistry) AdvancedPerformerAnalysis(ctx context.Context, args AdvancedAnalysisArgs) (AdvancedAnalysisResult, error) {
	r := ReporterFrom(ctx, h.logger)
	name := args.PerformerName
	includeSimilar := boolOr(args.IncludeSimilar, true)
	deep := boolOr(args.DeepSceneAnalysis, false)

	r.Log(ctx, levelInfo, "Starting advanced analysis for: "+name)
	r.Progress(ctx, 0, 100, "")

	// Phase 1: performer
	r.Log(ctx, levelInfo, "Getting basic performer information...")
	performer, err := h.service.PerformerInfo(ctx, name)
	if err != nil || performer == nil {
		msg := fmt.Sprintf("Performer '%s' not found", name)
		r.Log(ctx, levelError, msg)
		return AdvancedAnalysisResult{}, errors.New(msg)
	}
	r.Progress(ctx, 20, 100, "")

	// Phase 2: scenes
	r.Log(ctx, levelInfo, "Analyzing performer scenes...")
	scenes, err := h.service.ScenesForPerformer(ctx, name, false)
	if err != nil {
		r.Log(ctx, levelWarning, fmt.Sprintf("Error getting scenes: %v", err))
		scenes = nil
	}
	r.Progress(ctx, 40, 100, "")

	tags := stats.TagFrequency(scenes)
	result := AdvancedAnalysisResult{
		PerformerInfo:   performer,
		SceneStatistics: sceneStatistics(scenes, tags),
	}
	r.Progress(ctx, 60, 100, "")

	// Phase 3: similar performers
	if includeSimilar {
		r.Log(ctx, levelInfo, "Searching for similar performers...")
		similar, err := h.similarPerformers(ctx, performer, name)
		if err != nil {
			r.Log(ctx, levelWarning, fmt.Sprintf("Error searching similar performers: %v", err))
			similar = []stash.Performer{}
		}
		result.SimilarPerformers = &similar
	}
	r.Progress(ctx, 80, 100, "")

	// Phase 4: deep scene analysis
	if deep {
		result.DetailedSceneAnalysis = &DetailedSceneAnalysis{}
		if len(scenes) > 0 {
			r.Log(ctx, levelInfo, "Performing deep scene analysis...")
			result.DetailedSceneAnalysis = h.detailedAnalysis(scenes, tags)
		}
	}

	r.Progress(ctx, 100, 100, "")
	r.Log(ctx, levelInfo, "Analysis completed for "+name)

	result.AnalysisMetadata = AnalysisMetadata{
		AnalysisID:          uuid.NewString(),
		AnalysisTimestamp:   float64(time.Now().UnixNano()) / float64(time.Second),
		TotalProcessingTime: "< 1 minute",
		IncludeSimilar:      includeSimilar,
		DeepAnalysis:        deep,
	}
	return result, nil
}

func sceneStatistics(scenes []stash.Scene, tags *stats.Counter) SceneStatistics {
	st := SceneStatistics{
		TotalScenes:    len(scenes),
		AverageRating:  stats.AverageRating(scenes),
		TopRatedScenes: topRated(scenes),
		AllTags:        tags.Keys(),
		TagFrequency:   make(map[string]int, tags.Len()),
	}
	for _, tag := range st.AllTags {
		st.TagFrequency[tag] = tags.Get(tag)
	}
	return st
}

// topRated returns the best scenes rated above the threshold, highest first
func topRated(scenes []stash.Scene) []stash.Scene {
	top := []stash.Scene{}
	for _, s := range scenes {
		if s.Rating100 != nil && *s.Rating100 > topRatedThreshold {
			top = append(top, s)
		}
	}
	sort.SliceStable(top, func(i, j int) bool {
		return *top[i].Rating100 > *top[j].Rating100
	})
	if len(top) > topRatedLimit {
		top = top[:topRatedLimit]
	}
	return top
}

// similarPerformers finds performers sharing the country and ethnicity of p
func (h *HandlerRegistry) similarPerformers(ctx context.Context, p *stash.Performer, name string) ([]stash.Performer, error) {
	q := catalog.PerformerQuery{FavoritesOnly: false}
	if p.Country != "" {
		country := p.Country
		q.Country = &country
	}
	if p.Ethnicity != "" {
		ethnicity := p.Ethnicity
		q.Ethnicity = &ethnicity
	}

	all, err := h.service.Performers(ctx, q)
	if err != nil {
		return nil, err
	}

	similar := []stash.Performer{}
	for _, other := range all {
		if strings.EqualFold(other.Name, name) {
			continue
		}
		similar = append(similar, other)
		if len(similar) == similarLimit {
			break
		}
	}
	return similar, nil
}

func (h *HandlerRegistry) detailedAnalysis(scenes []stash.Scene, tags *stats.Counter) *DetailedSceneAnalysis {
	tiers := h.settings.Ratings
	excellent := tiers.Excellent
	goodMax := tiers.Good - 1
	average := tiers.Average

	return &DetailedSceneAnalysis{
		ScenesByRating: &RatingBuckets{
			Excellent:    stats.CountScenesByRating(scenes, tiers.Excellent, nil),
			Good:         stats.CountScenesByRating(scenes, tiers.Good, &excellent),
			Average:      stats.CountScenesByRating(scenes, tiers.Average, &goodMax),
			BelowAverage: stats.CountScenesByRating(scenes, 0, &average),
		},
		ScenesPerYear:  stats.ScenesPerYear(scenes),
		MostCommonTags: tags.Top(commonTagsLimit),
	}
}

// BatchPerformerInsights processes up to max_performers names in order and
// aggregates the ones that were found. Names beyond the cap are never queried.
func (h *HandlerRegistry) BatchPerformerInsights(ctx context.Context, args BatchInsightsArgs) (BatchInsightsResult, error) {
	r := ReporterFrom(ctx, h.logger)
	names := args.PerformerNames
	limit := args.MaxPerformers
	if limit <= 0 {
		limit = h.settings.MaxBatchPerformers
	}

	r.Log(ctx, levelInfo, fmt.Sprintf("Starting batch analysis of %d performers", len(names)))
	if len(names) > limit {
		r.Log(ctx, levelWarning, fmt.Sprintf("Limiting analysis to %d performers (from %d requested)", limit, len(names)))
		names = names[:limit]
	}

	total := len(names)
	processed := []PerformerInsight{}
	failed := []string{}

	for i, name := range names {
		r.Progress(ctx, float64(i*100/total), 100, "")
		r.Log(ctx, levelInfo, fmt.Sprintf("Processing performer %d/%d: %s", i+1, total, name))

		info, err := h.service.PerformerInfo(ctx, name)
		if err != nil {
			r.Log(ctx, levelWarning, fmt.Sprintf("Error processing %s: %v", name, err))
		}
		if err != nil || info == nil {
			failed = append(failed, name)
			continue
		}

		// Scene errors leave the performer with no scenes
		scenes, _ := h.service.ScenesForPerformer(ctx, name, false)
		processed = append(processed, PerformerInsight{
			Name:          name,
			Info:          info,
			SceneCount:    len(scenes),
			AverageRating: stats.AverageRating(scenes),
		})
	}

	r.Progress(ctx, 100, 100, "")
	r.Log(ctx, levelInfo, fmt.Sprintf("Analysis completed. Processed: %d, Failed: %d", len(processed), len(failed)))

	result := BatchInsightsResult{
		Summary: BatchSummary{
			TotalProcessed: len(processed),
			TotalFailed:    len(failed),
		},
		FailedPerformers: failed,
	}
	if len(processed) == 0 {
		return result, nil
	}

	var sceneSum int
	var ratingSum float64
	countries, ethnicities := stats.NewCounter(), stats.NewCounter()
	for _, p := range processed {
		sceneSum += p.SceneCount
		ratingSum += p.AverageRating
		if p.Info.Country != "" {
			countries.Add(p.Info.Country)
		}
		if p.Info.Ethnicity != "" {
			ethnicities.Add(p.Info.Ethnicity)
		}
	}
	n := float64(len(processed))
	avgScenes := float64(sceneSum) / n
	avgRating := ratingSum / n
	result.Summary.AverageScenesPerPerformer = &avgScenes
	result.Summary.AverageRatingAcrossAll = &avgRating
	result.Demographics = &Demographics{
		Countries:             countries.Keys(),
		CountryDistribution:   distribution(countries),
		Ethnicities:           ethnicities.Keys(),
		EthnicityDistribution: distribution(ethnicities),
	}
	result.Performers = processed
	return result, nil
}

func distribution(c *stats.Counter) map[string]int {
	m := make(map[string]int, c.Len())
	for _, k := range c.Keys() {
		m[k] = c.Get(k)
	}
	return m
}
