// Package prompts implements the MCP prompt templates of the Stash server.
//
// Prompts are user-triggered workflows: each one renders a fixed set of
// instructions that tell the model which Stash tools to call and how to
// present the answer. They do not touch Stash themselves.
package prompts

import (
	"context"
	"log/slog"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	apierrors "github.com/olgasafonova/stash-mcp-server/internal/errors"
)

// Prompt is one registrable prompt template.
type Prompt interface {
	Definition() *mcp.Prompt
	Handle(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error)
}

// All returns every prompt in registration order.
func All() []Prompt {
	return []Prompt{
		NewAnalyzePerformerPrompt(),
		NewLibraryInsightsPrompt(),
		NewRecommendScenesPrompt(),
		NewDiscoverPerformersPrompt(),
	}
}

// Register adds every prompt to server.
func Register(server *mcp.Server, logger *slog.Logger) {
	all := All()
	for _, p := range all {
		server.AddPrompt(p.Definition(), p.Handle)
	}
	if logger != nil {
		logger.Info("Registered all prompts", "count", len(all))
	}
}

// argument returns the trimmed value of a required prompt argument.
func argument(req *mcp.GetPromptRequest, name string) (string, error) {
	var value string
	if req != nil && req.Params != nil {
		value = strings.TrimSpace(req.Params.Arguments[name])
	}
	if value == "" {
		return "", apierrors.NewValidationError(name, "", "argument is required")
	}
	return value, nil
}

func userMessage(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{Role: "user", Content: &mcp.TextContent{Text: text}},
		},
	}
}
