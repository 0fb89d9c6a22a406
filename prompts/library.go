package prompts

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// LibraryInsightsPrompt handles the library-insights prompt.
type LibraryInsightsPrompt struct{}

// NewLibraryInsightsPrompt creates a LibraryInsightsPrompt.
func NewLibraryInsightsPrompt() *LibraryInsightsPrompt {
	return &LibraryInsightsPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *LibraryInsightsPrompt) Definition() *mcp.Prompt {
	return &mcp.Prompt{
		Name: "library-insights",
		Description: "Generates insights about the library: trends, metadata gaps, " +
			"organization recommendations",
	}
}

// Handle renders the library review instructions. It takes no arguments.
func (p *LibraryInsightsPrompt) Handle(_ context.Context, _ *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := "Analyze the complete Stash library and provide strategic insights using the available MCP tools.\n\n" +
		"REQUIRED ANALYSIS:\n\n" +
		"1. **Library Overview:**\n" +
		"   - Call `health_check` to get connectivity and cache statistics\n" +
		"   - Call `get_all_performers` with favorites_only false to get performer statistics\n" +
		"   - Read the `stash://performer/stats`, `stash://studio/stats` and `stash://tag/stats` resources\n" +
		"   - Calculate: total performers, geographic distribution, ethnic diversity\n\n" +
		"2. **Favorites Analysis:**\n" +
		"   - Compare `get_all_performers` with favorites_only true against favorites_only false\n" +
		"   - Calculate percentage of favorites\n" +
		"   - Identify patterns in favorite performers (common characteristics)\n\n" +
		"3. **Content Analysis:**\n" +
		"   - For a sample of favorite performers, analyze their scenes\n" +
		"   - Identify most popular genres/tags\n" +
		"   - Calculate rating statistics\n\n" +
		"4. **Gap Detection:**\n" +
		"   - Identify underrepresented countries/ethnicities\n" +
		"   - Find physical characteristic ranges with few performers\n" +
		"   - Suggest areas to expand the collection\n\n" +
		"5. **Organization Recommendations:**\n" +
		"   - Suggest consistent tagging strategies\n" +
		"   - Identify performers that might need more attention\n" +
		"   - Propose useful filters for content discovery\n\n" +
		"6. **System Optimization:**\n" +
		"   - Analyze cache efficiency\n" +
		"   - Suggest performance improvements based on usage patterns\n\n" +
		"OUTPUT FORMAT:\n" +
		"- Use markdown with clear sections\n" +
		"- Include specific statistics and percentages\n" +
		"- Provide actionable recommendations\n" +
		"- Highlight improvement opportunities"

	return userMessage("Stash library insights", text), nil
}

// RecommendScenesPrompt handles the recommend-scenes prompt.
type RecommendScenesPrompt struct{}

// NewRecommendScenesPrompt creates a RecommendScenesPrompt.
func NewRecommendScenesPrompt() *RecommendScenesPrompt {
	return &RecommendScenesPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *RecommendScenesPrompt) Definition() *mcp.Prompt {
	return &mcp.Prompt{
		Name: "recommend-scenes",
		Description: "Based on user preferences, recommends specific scenes with " +
			"explanation of why each recommendation",
		Arguments: []*mcp.PromptArgument{
			{Name: "preferences", Description: "User preferences (tags, characteristics, etc.)", Required: true},
		},
	}
}

// Handle renders the recommendation instructions for the given preferences.
func (p *RecommendScenesPrompt) Handle(_ context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	preferences, err := argument(req, "preferences")
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("Generate personalized scene recommendations based on the following user preferences: \"%[1]s\"\n\n"+
		"RECOMMENDATION PROCESS:\n\n"+
		"1. **Preference Analysis:**\n"+
		"   - Extract key keywords from preferences: \"%[1]s\"\n"+
		"   - Identify preferred physical characteristics\n"+
		"   - Detect tags/genres of interest\n"+
		"   - Determine if there are geographic/ethnic preferences\n\n"+
		"2. **Search for Relevant Performers:**\n"+
		"   - Call `get_all_performers` with appropriate filters based on preferences\n"+
		"   - If specific physical characteristics are mentioned, use them as filters\n"+
		"   - Prioritize favorite performers if no specific criteria\n\n"+
		"3. **Scene Analysis by Performer:**\n"+
		"   - For each relevant performer, call `get_all_scenes_from_performer`\n"+
		"   - Filter scenes with high ratings (rating > 75)\n"+
		"   - Identify scenes that match preferred tags\n"+
		"   - `get_all_scenes` with include_tags and min_rating narrows the whole library at once\n\n"+
		"4. **Scoring System:**\n"+
		"   - Rate each scene based on:\n"+
		"     * Match with preferences (40%%)\n"+
		"     * Scene rating (30%%)\n"+
		"     * Performer popularity (20%%)\n"+
		"     * Variety to avoid monotony (10%%)\n\n"+
		"5. **Final Selection:**\n"+
		"   - Select top 10 recommended scenes\n"+
		"   - Ensure diversity in selection\n"+
		"   - Include a mix of safe favorites and new discoveries\n\n"+
		"OUTPUT FORMAT:\n"+
		"For each recommended scene include:\n"+
		"- **Scene Title**\n"+
		"- **Performer(s)**: Names and brief description\n"+
		"- **Rating**: Numerical rating\n"+
		"- **Why it's recommended**: Specific explanation of how it matches preferences\n"+
		"- **Relevant tags**: Tags that match interests\n"+
		"- **Match level**: Percentage match with preferences\n\n"+
		"ADDITIONAL INSTRUCTIONS:\n"+
		"- Order by relevance (highest match first)\n"+
		"- If few exact matches, suggest similar alternatives\n"+
		"- Include a \"Discoveries\" section with unexpected but potentially interesting options", preferences)

	return userMessage("Scene recommendations", text), nil
}
