package resources

import (
	"context"
	"sort"

	apierrors "github.com/olgasafonova/stash-mcp-server/internal/errors"
	"github.com/olgasafonova/stash-mcp-server/internal/filter"
	"github.com/olgasafonova/stash-mcp-server/internal/stash"
	"github.com/olgasafonova/stash-mcp-server/internal/stats"
)

type studioSummary struct {
	Name       string `json:"name"`
	SceneCount int    `json:"scene_count"`
	URL        string `json:"url,omitempty"`
	Rating100  *int   `json:"rating100,omitempty"`
	Favorite   bool   `json:"favorite"`
}

type studioList struct {
	Success bool            `json:"success"`
	Total   int             `json:"total"`
	Studios []studioSummary `json:"studios"`
}

type studioDetail struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	URL          string           `json:"url,omitempty"`
	Details      string           `json:"details,omitempty"`
	Rating100    *int             `json:"rating100,omitempty"`
	Favorite     bool             `json:"favorite"`
	SceneCount   int              `json:"scene_count"`
	ParentStudio *stash.NamedRef  `json:"parent_studio,omitempty"`
	ChildStudios []stash.NamedRef `json:"child_studios,omitempty"`
	Aliases      []string         `json:"aliases,omitempty"`
	Tags         []string         `json:"tags,omitempty"`
}

type studioDoc struct {
	Success bool         `json:"success"`
	Studio  studioDetail `json:"studio"`
}

type sceneCount struct {
	Name       string `json:"name"`
	SceneCount int    `json:"scene_count"`
}

type studioStatistics struct {
	TotalScenes            int            `json:"total_scenes"`
	AverageScenesPerStudio float64        `json:"average_scenes_per_studio"`
	RatedStudios           int            `json:"rated_studios"`
	Rating                 *stats.Summary `json:"rating,omitempty"`
	StudiosWithParent      int            `json:"studios_with_parent"`
	StudiosWithChildren    int            `json:"studios_with_children"`
	TopStudios             []sceneCount   `json:"top_studios"`
}

// studioStatsDoc carries an empty statistics object when there are no studios
type studioStatsDoc struct {
	Success      bool `json:"success"`
	TotalStudios int  `json:"total_studios"`
	Statistics   any  `json:"statistics"`
}

func (h *Handler) allStudios(ctx context.Context, cat stash.Catalog, _ string) (any, error) {
	studios, err := cat.FindStudios(ctx, filter.Filters{})
	if err != nil {
		return nil, err
	}
	h.logger.Info("Retrieved studios for resource", "count", len(studios))

	doc := studioList{Success: true, Total: len(studios), Studios: make([]studioSummary, 0, len(studios))}
	for _, s := range studios {
		doc.Studios = append(doc.Studios, studioSummary{
			Name:       orDefault(s.Name, "Unknown"),
			SceneCount: s.SceneCount,
			URL:        s.URL,
			Rating100:  s.Rating100,
			Favorite:   s.Favorite,
		})
	}
	return doc, nil
}

func (h *Handler) studio(ctx context.Context, cat stash.Catalog, name string) (any, error) {
	s, err := cat.FindStudio(ctx, name)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, apierrors.NewNotFoundError("studio", name)
	}
	h.logger.Info("Retrieved studio for resource", "studio", name)

	return studioDoc{Success: true, Studio: studioDetail{
		ID:           s.ID,
		Name:         s.Name,
		URL:          s.URL,
		Details:      s.Details,
		Rating100:    s.Rating100,
		Favorite:     s.Favorite,
		SceneCount:   s.SceneCount,
		ParentStudio: s.ParentStudio,
		ChildStudios: s.ChildStudios,
		Aliases:      s.Aliases,
		Tags:         tagNames(s.Tags),
	}}, nil
}

func (h *Handler) studioStats(ctx context.Context, cat stash.Catalog, _ string) (any, error) {
	studios, err := cat.FindStudios(ctx, filter.Filters{})
	if err != nil {
		return nil, err
	}
	doc := studioStatsDoc{Success: true, TotalStudios: len(studios), Statistics: struct{}{}}
	if len(studios) == 0 {
		return doc, nil
	}
	h.logger.Info("Generated studio statistics", "count", len(studios))

	st := studioStatistics{}
	var ratings []int
	for _, s := range studios {
		st.TotalScenes += s.SceneCount
		if s.Rating100 != nil {
			ratings = append(ratings, *s.Rating100)
		}
		if s.ParentStudio != nil {
			st.StudiosWithParent++
		}
		if len(s.ChildStudios) > 0 {
			st.StudiosWithChildren++
		}
	}
	st.AverageScenesPerStudio = stats.Round1(float64(st.TotalScenes) / float64(len(studios)))
	st.RatedStudios = len(ratings)
	if summary, ok := stats.Summarize(ratings); ok {
		st.Rating = &summary
	}

	ranked := make([]sceneCount, len(studios))
	for i, s := range studios {
		ranked[i] = sceneCount{Name: s.Name, SceneCount: s.SceneCount}
	}
	st.TopStudios = topByScenes(ranked)
	doc.Statistics = st
	return doc, nil
}

// topByScenes orders by scene count descending, keeping input order on ties,
// and keeps the first topN
func topByScenes(ranked []sceneCount) []sceneCount {
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SceneCount > ranked[j].SceneCount
	})
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}
