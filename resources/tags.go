package resources

import (
	"context"

	apierrors "github.com/olgasafonova/stash-mcp-server/internal/errors"
	"github.com/olgasafonova/stash-mcp-server/internal/filter"
	"github.com/olgasafonova/stash-mcp-server/internal/stash"
	"github.com/olgasafonova/stash-mcp-server/internal/stats"
)

type tagSummary struct {
	Name             string `json:"name"`
	SceneCount       int    `json:"scene_count"`
	Description      string `json:"description,omitempty"`
	SceneMarkerCount int    `json:"scene_marker_count,omitempty"`
}

type tagList struct {
	Success bool         `json:"success"`
	Total   int          `json:"total"`
	Tags    []tagSummary `json:"tags"`
}

type tagDoc struct {
	Success bool      `json:"success"`
	Tag     stash.Tag `json:"tag"`
}

type tagStatistics struct {
	TotalSceneAssociations  int          `json:"total_scene_associations"`
	TotalMarkerAssociations int          `json:"total_marker_associations"`
	AverageScenesPerTag     float64      `json:"average_scenes_per_tag"`
	TagsWithParents         int          `json:"tags_with_parents"`
	TagsWithChildren        int          `json:"tags_with_children"`
	TopTags                 []sceneCount `json:"top_tags"`
}

type tagStatsDoc struct {
	Success    bool `json:"success"`
	TotalTags  int  `json:"total_tags"`
	Statistics any  `json:"statistics"`
}

func (h *Handler) allTags(ctx context.Context, cat stash.Catalog, _ string) (any, error) {
	tags, err := cat.FindTags(ctx, filter.Filters{})
	if err != nil {
		return nil, err
	}
	h.logger.Info("Retrieved tags for resource", "count", len(tags))

	doc := tagList{Success: true, Total: len(tags), Tags: make([]tagSummary, 0, len(tags))}
	for _, t := range tags {
		doc.Tags = append(doc.Tags, tagSummary{
			Name:             orDefault(t.Name, "Unknown"),
			SceneCount:       t.SceneCount,
			Description:      t.Description,
			SceneMarkerCount: t.SceneMarkerCount,
		})
	}
	return doc, nil
}

func (h *Handler) tag(ctx context.Context, cat stash.Catalog, name string) (any, error) {
	t, err := cat.FindTag(ctx, name)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, apierrors.NewNotFoundError("tag", name)
	}
	h.logger.Info("Retrieved tag for resource", "tag", name)
	return tagDoc{Success: true, Tag: *t}, nil
}

func (h *Handler) tagStats(ctx context.Context, cat stash.Catalog, _ string) (any, error) {
	tags, err := cat.FindTags(ctx, filter.Filters{})
	if err != nil {
		return nil, err
	}
	doc := tagStatsDoc{Success: true, TotalTags: len(tags), Statistics: struct{}{}}
	if len(tags) == 0 {
		return doc, nil
	}
	h.logger.Info("Generated tag statistics", "count", len(tags))

	st := tagStatistics{}
	ranked := make([]sceneCount, len(tags))
	for i, t := range tags {
		st.TotalSceneAssociations += t.SceneCount
		st.TotalMarkerAssociations += t.SceneMarkerCount
		if len(t.Parents) > 0 {
			st.TagsWithParents++
		}
		if len(t.Children) > 0 {
			st.TagsWithChildren++
		}
		ranked[i] = sceneCount{Name: t.Name, SceneCount: t.SceneCount}
	}
	st.AverageScenesPerTag = stats.Round1(float64(st.TotalSceneAssociations) / float64(len(tags)))
	st.TopTags = topByScenes(ranked)
	doc.Statistics = st
	return doc, nil
}
