package tools

import (
	"github.com/olgasafonova/stash-mcp-server/internal/infra"
	"github.com/olgasafonova/stash-mcp-server/internal/stash"
	"github.com/olgasafonova/stash-mcp-server/internal/stats"
)

// PerformerInfoArgs contains parameters for a single performer lookup
type PerformerInfoArgs struct {
	PerformerName string `json:"performer_name" jsonschema:"required" jsonschema_description:"Exact name or alias of the performer"`
}

// PerformerInfoResult is the result of a performer lookup
type PerformerInfoResult struct {
	Found     bool             `json:"found"`
	Performer *stash.Performer `json:"performer,omitempty"`
}

// AllPerformersArgs contains performer list filters. Modifiers default to EQUALS.
type AllPerformersArgs struct {
	FavoritesOnly        *bool   `json:"favorites_only,omitempty" jsonschema_description:"Only favorite performers (default: true)"`
	Country              *string `json:"country,omitempty" jsonschema_description:"Filter by country"`
	CountryModifier      string  `json:"country_modifier,omitempty" jsonschema_description:"Modifier for country (default: EQUALS)"`
	Ethnicity            *string `json:"ethnicity,omitempty" jsonschema_description:"Filter by ethnicity"`
	EthnicityModifier    string  `json:"ethnicity_modifier,omitempty" jsonschema_description:"Modifier for ethnicity (default: EQUALS)"`
	EyeColor             *string `json:"eye_color,omitempty" jsonschema_description:"Filter by eye color"`
	EyeColorModifier     string  `json:"eye_color_modifier,omitempty" jsonschema_description:"Modifier for eye color (default: EQUALS)"`
	HairColor            *string `json:"hair_color,omitempty" jsonschema_description:"Filter by hair color"`
	HairColorModifier    string  `json:"hair_color_modifier,omitempty" jsonschema_description:"Modifier for hair color (default: EQUALS)"`
	HeightCm             *int    `json:"height_cm,omitempty" jsonschema_description:"Filter by height in centimeters"`
	HeightCmModifier     string  `json:"height_cm_modifier,omitempty" jsonschema_description:"Modifier for height (default: EQUALS)"`
	HeightCmValue2       *int    `json:"height_cm_value2,omitempty" jsonschema_description:"Upper height for BETWEEN/NOT_BETWEEN"`
	Measurements         *string `json:"measurements,omitempty" jsonschema_description:"Filter by measurements"`
	MeasurementsModifier string  `json:"measurements_modifier,omitempty" jsonschema_description:"Modifier for measurements (default: EQUALS)"`
	Piercings            *string `json:"piercings,omitempty" jsonschema_description:"Piercings must include this text"`
	Tattoos              *string `json:"tattoos,omitempty" jsonschema_description:"Tattoos must include this text"`
	Weight               *int    `json:"weight,omitempty" jsonschema_description:"Filter by weight in kilograms"`
	WeightModifier       string  `json:"weight_modifier,omitempty" jsonschema_description:"Modifier for weight (default: EQUALS)"`
	WeightValue2         *int    `json:"weight_value2,omitempty" jsonschema_description:"Upper weight for BETWEEN/NOT_BETWEEN"`
}

// PerformersResult is a list of performers
type PerformersResult struct {
	Performers []stash.Performer `json:"performers"`
	Count      int               `json:"count"`
}

// AllScenesArgs contains scene list filters
type AllScenesArgs struct {
	OrganizedOnly *bool  `json:"organized_only,omitempty" jsonschema_description:"Only organized scenes (default: true)"`
	ExcludeTags   string `json:"exclude_tags,omitempty" jsonschema_description:"Comma-separated tag names to exclude"`
	IncludeTags   string `json:"include_tags,omitempty" jsonschema_description:"Comma-separated tag names that must be present"`
	MinRating     *int   `json:"min_rating,omitempty" jsonschema_description:"Minimum rating (0-100), inclusive"`
	MaxRating     *int   `json:"max_rating,omitempty" jsonschema_description:"Maximum rating (0-100), inclusive"`
}

// PerformerScenesArgs contains parameters for a performer's scenes
type PerformerScenesArgs struct {
	PerformerName string `json:"performer_name" jsonschema:"required" jsonschema_description:"Exact performer name"`
	OrganizedOnly *bool  `json:"organized_only,omitempty" jsonschema_description:"Only organized scenes (default: true)"`
}

// ScenesResult is a list of scenes
type ScenesResult struct {
	Scenes []stash.Scene `json:"scenes"`
	Count  int           `json:"count"`
}

// HealthCheckArgs takes no parameters
type HealthCheckArgs struct{}

// HealthCheckResult reports connectivity and cache usage
type HealthCheckResult struct {
	Connected          bool             `json:"connected"`
	Endpoint           *string          `json:"endpoint"`
	PerformerCache     infra.CacheStats `json:"performer_cache"`
	AllPerformersCache infra.CacheStats `json:"all_performers_cache"`
	AllScenesCache     infra.CacheStats `json:"all_scenes_cache"`
}

// AdvancedAnalysisArgs contains parameters for a performer deep dive
type AdvancedAnalysisArgs struct {
	PerformerName     string `json:"performer_name" jsonschema:"required" jsonschema_description:"Name of the performer to analyze"`
	IncludeSimilar    *bool  `json:"include_similar,omitempty" jsonschema_description:"Include similar performers (default: true)"`
	DeepSceneAnalysis *bool  `json:"deep_scene_analysis,omitempty" jsonschema_description:"Include rating buckets and common tags (default: false)"`
}

// SceneStatistics summarizes a performer's scenes
type SceneStatistics struct {
	TotalScenes    int            `json:"total_scenes"`
	AverageRating  float64        `json:"average_rating"`
	TopRatedScenes []stash.Scene  `json:"top_rated_scenes"`
	AllTags        []string       `json:"all_tags"`
	TagFrequency   map[string]int `json:"tag_frequency"`
}

// RatingBuckets counts scenes per rating tier
type RatingBuckets struct {
	Excellent    int `json:"excellent"`
	Good         int `json:"good"`
	Average      int `json:"average"`
	BelowAverage int `json:"below_average"`
}

// DetailedSceneAnalysis is only filled when the performer has scenes
type DetailedSceneAnalysis struct {
	ScenesByRating *RatingBuckets `json:"scenes_by_rating,omitempty"`
	ScenesPerYear  map[string]int `json:"scenes_per_year,omitempty"`
	MostCommonTags []stats.Count  `json:"most_common_tags,omitempty"`
}

// AnalysisMetadata describes an analysis run
type AnalysisMetadata struct {
	AnalysisID          string  `json:"analysis_id"`
	AnalysisTimestamp   float64 `json:"analysis_timestamp"`
	TotalProcessingTime string  `json:"total_processing_time"`
	IncludeSimilar      bool    `json:"include_similar"`
	DeepAnalysis        bool    `json:"deep_analysis"`
}

// AdvancedAnalysisResult is the full performer analysis
type AdvancedAnalysisResult struct {
	PerformerInfo         *stash.Performer       `json:"performer_info"`
	SceneStatistics       SceneStatistics        `json:"scene_statistics"`
	SimilarPerformers     *[]stash.Performer     `json:"similar_performers,omitempty"`
	DetailedSceneAnalysis *DetailedSceneAnalysis `json:"detailed_scene_analysis,omitempty"`
	AnalysisMetadata      AnalysisMetadata       `json:"analysis_metadata"`
}

// BatchInsightsArgs contains parameters for batch performer insights
type BatchInsightsArgs struct {
	PerformerNames []string `json:"performer_names" jsonschema:"required" jsonschema_description:"Performer names to analyze"`
	MaxPerformers  int      `json:"max_performers,omitempty" jsonschema_description:"Maximum number of performers to process (default: 10)"`
}

// PerformerInsight is the per-performer part of a batch
type PerformerInsight struct {
	Name          string           `json:"name"`
	Info          *stash.Performer `json:"info"`
	SceneCount    int              `json:"scene_count"`
	AverageRating float64          `json:"average_rating"`
}

// BatchSummary aggregates a batch
type BatchSummary struct {
	TotalProcessed            int      `json:"total_processed"`
	TotalFailed               int      `json:"total_failed"`
	AverageScenesPerPerformer *float64 `json:"average_scenes_per_performer,omitempty"`
	AverageRatingAcrossAll    *float64 `json:"average_rating_across_all,omitempty"`
}

// Demographics holds the country and ethnicity spread of a batch
type Demographics struct {
	Countries             []string       `json:"countries"`
	CountryDistribution   map[string]int `json:"country_distribution"`
	Ethnicities           []string       `json:"ethnicities"`
	EthnicityDistribution map[string]int `json:"ethnicity_distribution"`
}

// BatchInsightsResult is the result of batch performer insights. Only the
// summary and failed names are present when nothing was processed.
type BatchInsightsResult struct {
	Summary          BatchSummary       `json:"summary"`
	Demographics     *Demographics      `json:"demographics,omitempty"`
	Performers       []PerformerInsight `json:"performers,omitempty"`
	FailedPerformers []string           `json:"failed_performers"`
}
