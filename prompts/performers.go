package prompts

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AnalyzePerformerPrompt handles the analyze-performer prompt.
type AnalyzePerformerPrompt struct{}

// NewAnalyzePerformerPrompt creates an AnalyzePerformerPrompt.
func NewAnalyzePerformerPrompt() *AnalyzePerformerPrompt {
	return &AnalyzePerformerPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *AnalyzePerformerPrompt) Definition() *mcp.Prompt {
	return &mcp.Prompt{
		Name: "analyze-performer",
		Description: "Generates a complete analysis of a performer including " +
			"statistics, popular scenes, frequent tags and similar recommendations",
		Arguments: []*mcp.PromptArgument{
			{Name: "performer_name", Description: "Name of the performer to analyze", Required: true},
		},
	}
}

// Handle renders the analysis instructions for one performer.
func (p *AnalyzePerformerPrompt) Handle(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name, err := argument(req, "performer_name")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Completely analyze the performer '%[1]s' using the available Stash MCP server tools.\n\n"+
		"REQUIRED ANALYSIS:\n\n"+
		"1. **Basic Performer Information:**\n"+
		"   - Call `get_performer_info` with performer_name \"%[1]s\" to get demographic data\n"+
		"   - Include: country, ethnicity, physical characteristics, measurements, tattoos, piercings\n\n"+
		"2. **Scene Analysis:**\n"+
		"   - Call `get_all_scenes_from_performer` with performer_name \"%[1]s\" to get all their scenes\n"+
		"   - Calculate statistics: total number of scenes, average rating, date range\n"+
		"   - Identify top-rated scenes (rating > 80)\n\n"+
		"3. **Tag Analysis:**\n"+
		"   - Extract all unique tags from their scenes\n"+
		"   - Identify most frequent tags (top 10)\n"+
		"   - Categorize tags by type (genre, position, characteristics, etc.)\n\n"+
		"4. **Similar Performers:**\n"+
		"   - Call `get_all_performers` with filters based on the performer's physical characteristics\n"+
		"   - Find performers with similar characteristics (country, ethnicity, physical measurements)\n"+
		"   - Suggest up to 5 similar performers\n"+
		"   - `advanced_performer_analysis` combines steps 1 to 4 in one call when a quick overview is enough\n\n"+
		"5. **Recommendations:**\n"+
		"   - Suggest standout scenes to watch first\n"+
		"   - Identify gaps in the collection (popular tags that are missing)\n"+
		"   - Recommend related searches\n\n"+
		"OUTPUT FORMAT:\n"+
		"- Use markdown to format the response\n"+
		"- Include clear numerical statistics\n"+
		"- Provide actionable insights\n"+
		"- Highlight interesting or unusual findings", name)

	return userMessage(fmt.Sprintf("Analyze performer: %s", name), text), nil
}

// DiscoverPerformersPrompt handles the discover-performers prompt.
type DiscoverPerformersPrompt struct{}

// NewDiscoverPerformersPrompt creates a DiscoverPerformersPrompt.
func NewDiscoverPerformersPrompt() *DiscoverPerformersPrompt {
	return &DiscoverPerformersPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *DiscoverPerformersPrompt) Definition() *mcp.Prompt {
	return &mcp.Prompt{
		Name:        "discover-performers",
		Description: "Discover performers based on specific user criteria",
		Arguments: []*mcp.PromptArgument{
			{Name: "criteria", Description: "Search criteria in free text", Required: true},
		},
	}
}

// Handle renders the discovery instructions for the given criteria.
func (p *DiscoverPerformersPrompt) Handle(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	criteria, err := argument(req, "criteria")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Discover performers that match the following criteria: \"%[1]s\"\n\n"+
		"DISCOVERY PROCESS:\n\n"+
		"1. **Criteria Interpretation:**\n"+
		"   - Analyze criteria: \"%[1]s\"\n"+
		"   - Identify applicable filters:\n"+
		"     * Physical characteristics (height, weight, measurements)\n"+
		"     * Demographics (country, ethnicity)\n"+
		"     * Distinctive features (tattoos, piercings)\n"+
		"     * Content preferences (common tags)\n\n"+
		"2. **Stratified Search:**\n"+
		"   - **Level 1**: Exact search with all criteria\n"+
		"   - **Level 2**: Relaxed search (main criteria)\n"+
		"   - **Level 3**: Exploratory search (similar criteria)\n\n"+
		"3. **Analysis of Each Found Performer:**\n"+
		"   - Call `get_performer_info` for detailed data\n"+
		"   - Call `get_all_scenes_from_performer` to evaluate content\n"+
		"   - Calculate quality metrics: number of scenes, average rating\n"+
		"   - `batch_performer_insights` summarizes many candidates in one call\n\n"+
		"4. **Result Categorization:**\n"+
		"   - **Perfect Matches**: Meet all criteria\n"+
		"   - **Strong Matches**: Meet main criteria\n"+
		"   - **Interesting Discoveries**: Partial criteria but high potential\n"+
		"   - **Suggested Alternatives**: Similar but with interesting variations\n\n"+
		"5. **Diversity Analysis:**\n"+
		"   - Ensure variety in selection\n"+
		"   - Avoid results that are too similar\n"+
		"   - Include options from different backgrounds if appropriate\n\n"+
		"OUTPUT FORMAT:\n"+
		"For each performer include:\n"+
		"- **Performer Name**\n"+
		"- **Demographics**: Country, ethnicity, age (if available)\n"+
		"- **Physical Characteristics**: Height, weight, measurements, distinctive features\n"+
		"- **Content Statistics**: Number of scenes, average rating\n"+
		"- **Criteria Match**: Specific explanation of how they meet criteria\n"+
		"- **Highlights**: What makes this performer unique\n"+
		"- **Recommendation Level**: High/Medium/Exploratory\n\n"+
		"ADDITIONAL SECTIONS:\n"+
		"- **Executive Summary**: Top 3 recommendations with justification\n"+
		"- **Search Statistics**: How many performers evaluated, filters applied\n"+
		"- **Refinement Suggestions**: How to adjust criteria for better results", criteria)

	return userMessage("Discover performers", text), nil
}
