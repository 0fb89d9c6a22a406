package tools

// AllTools contains all tool specifications for the Stash MCP server.
// Tool descriptions follow a structured format for optimal LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	// ==========================================================================
	// PERFORMER TOOLS
	// ==========================================================================
	{
		Name:     "get_performer_info",
		Method:   "PerformerInfo",
		Title:    "Get Performer Information",
		Category: "performers",
		Description: `Return detailed information for a single performer.

USE WHEN: User asks "who is X", "tell me about X", "what country is X from".

NOT FOR: Listing or filtering many performers (use get_all_performers).

PARAMETERS:
- performer_name: Exact performer name or alias (required)

RETURNS: found flag and the performer record (country, ethnicity, eye/hair color, height, weight, measurements, piercings, tattoos, details, tags). Results are cached.`,
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:     "get_all_performers",
		Method:   "AllPerformers",
		Title:    "Get All Performers",
		Category: "performers",
		Description: `Return a list of performers with advanced filtering options.

USE WHEN: User asks "list my favorite performers", "performers from Canada", "performers taller than 170cm".

NOT FOR: Details of one known performer (use get_performer_info).

PARAMETERS:
- favorites_only: Only favorite performers (default true)
- country, ethnicity, eye_color, hair_color, measurements: Text filters, each with a *_modifier
- height_cm, weight: Numeric filters with *_modifier and *_value2 for BETWEEN/NOT_BETWEEN
- piercings, tattoos: Substring filters (always INCLUDES)
- Modifiers: EQUALS (default), NOT_EQUALS, GREATER_THAN, LESS_THAN, BETWEEN, NOT_BETWEEN, INCLUDES, EXCLUDES

RETURNS: performers and count. Results are cached per exact filter set.`,
		ReadOnly:   true,
		Idempotent: true,
	},

	// ==========================================================================
	// SCENE TOOLS
	// ==========================================================================
	{
		Name:     "get_all_scenes",
		Method:   "AllScenes",
		Title:    "Get All Scenes",
		Category: "scenes",
		Description: `Return all tagged scenes with advanced filtering options.

USE WHEN: User asks "show my best rated scenes", "scenes tagged outdoor", "scenes rated between 60 and 80".

NOT FOR: Scenes of one performer (use get_all_scenes_from_performer).

PARAMETERS:
- organized_only: Only organized scenes (default true)
- include_tags: Comma-separated tag names that must be present (wins over exclude_tags)
- exclude_tags: Comma-separated tag names to exclude
- min_rating, max_rating: Inclusive rating bounds on the 0-100 scale

RETURNS: scenes and count. Results are cached per exact filter set.`,
		ReadOnly:   true,
		Idempotent: true,
	},
	{
		Name:     "get_all_scenes_from_performer",
		Method:   "PerformerScenes",
		Title:    "Get All Scenes from Performer",
		Category: "scenes",
		Description: `Return all scenes for a given performer.

USE WHEN: User asks "what scenes is X in", "list X's scenes".

PARAMETERS:
- performer_name: Exact performer name (required)
- organized_only: Only organized scenes (default true)

RETURNS: scenes and count. Not cached.`,
		ReadOnly:   true,
		Idempotent: true,
	},

	// ==========================================================================
	// SYSTEM TOOLS
	// ==========================================================================
	{
		Name:     "health_check",
		Method:   "HealthCheck",
		Title:    "Health Check",
		Category: "system",
		Description: `Return basic health and connectivity information for the MCP server.

USE WHEN: User asks "is Stash reachable", "check the connection", "how are the caches doing".

RETURNS: connected flag, endpoint (when connected), and hits/misses/currsize/maxsize for performer_cache, all_performers_cache and all_scenes_cache.`,
		ReadOnly:   true,
		Idempotent: false,
	},

	// ==========================================================================
	// ANALYSIS TOOLS
	// ==========================================================================
	{
		Name:     "advanced_performer_analysis",
		Method:   "AdvancedPerformerAnalysis",
		Title:    "Advanced Performer Analysis",
		Category: "analysis",
		Description: `Advanced performer analysis with progress reporting and contextual logging.

USE WHEN: User asks "analyze performer X", "give me a deep dive on X", "find performers similar to X".

NOT FOR: A quick profile lookup (use get_performer_info).

PARAMETERS:
- performer_name: Performer to analyze (required)
- include_similar: Add up to 5 performers sharing country and ethnicity (default true)
- deep_scene_analysis: Add rating buckets and the 10 most common tags (default false)

RETURNS: performer_info, scene_statistics (total, average rating, top rated scenes, tag frequency), optional similar_performers and detailed_scene_analysis, and analysis_metadata.`,
		ReadOnly: true,
		Progress: true,
	},
	{
		Name:     "batch_performer_insights",
		Method:   "BatchPerformerInsights",
		Title:    "Batch Performer Insights",
		Category: "analysis",
		Description: `Generate insights for multiple performers with detailed progress.

USE WHEN: User asks "compare these performers", "summarize performers A, B and C".

PARAMETERS:
- performer_names: Performer names to analyze (required)
- max_performers: Cap on how many names are processed (default 10); extra names are ignored

RETURNS: summary (processed/failed counts, average scenes and rating), demographics (country and ethnicity distributions), per-performer results and failed names.`,
		ReadOnly: true,
		Progress: true,
	},
}
