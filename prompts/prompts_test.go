package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	apierrors "github.com/olgasafonova/stash-mcp-server/internal/errors"
)

func request(args map[string]string) *mcp.GetPromptRequest {
	return &mcp.GetPromptRequest{Params: &mcp.GetPromptParams{Arguments: args}}
}

func promptText(t *testing.T, res *mcp.GetPromptResult) string {
	t.Helper()
	if len(res.Messages) != 1 {
		t.Fatalf("len(Messages) = %d, want 1", len(res.Messages))
	}
	msg := res.Messages[0]
	if msg.Role != "user" {
		t.Errorf("Role = %q, want user", msg.Role)
	}
	text, ok := msg.Content.(*mcp.TextContent)
	if !ok {
		t.Fatalf("Content = %T, want *mcp.TextContent", msg.Content)
	}
	return text.Text
}

func TestAllPrompts(t *testing.T) {
	want := []string{"analyze-performer", "library-insights", "recommend-scenes", "discover-performers"}
	all := All()
	if len(all) != len(want) {
		t.Fatalf("len(All) = %d, want %d", len(all), len(want))
	}
	for i, p := range all {
		def := p.Definition()
		if def.Name != want[i] {
			t.Errorf("prompt %d = %q, want %q", i, def.Name, want[i])
		}
		if def.Description == "" {
			t.Errorf("prompt %s has no description", def.Name)
		}
	}
}

func TestPromptArguments(t *testing.T) {
	tests := []struct {
		prompt   Prompt
		argument string
	}{
		{NewAnalyzePerformerPrompt(), "performer_name"},
		{NewRecommendScenesPrompt(), "preferences"},
		{NewDiscoverPerformersPrompt(), "criteria"},
	}

	for _, tt := range tests {
		def := tt.prompt.Definition()
		t.Run(def.Name, func(t *testing.T) {
			if len(def.Arguments) != 1 || def.Arguments[0].Name != tt.argument || !def.Arguments[0].Required {
				t.Fatalf("Arguments = %+v, want required %s", def.Arguments, tt.argument)
			}

			_, err := tt.prompt.Handle(context.Background(), request(map[string]string{tt.argument: "  "}))
			if !apierrors.IsValidation(err) {
				t.Errorf("blank %s error = %v, want ValidationError", tt.argument, err)
			}

			res, err := tt.prompt.Handle(context.Background(), request(map[string]string{tt.argument: "tall redheads"}))
			if err != nil {
				t.Fatalf("Handle failed: %v", err)
			}
			text := promptText(t, res)
			if !strings.Contains(text, "tall redheads") {
				t.Errorf("prompt text does not mention the argument:\n%s", text)
			}
		})
	}
}

func TestAnalyzePerformerPrompt(t *testing.T) {
	res, err := NewAnalyzePerformerPrompt().Handle(context.Background(), request(map[string]string{"performer_name": "Jane Doe"}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	if res.Description != "Analyze performer: Jane Doe" {
		t.Errorf("Description = %q", res.Description)
	}
	text := promptText(t, res)
	for _, want := range []string{
		"Completely analyze the performer 'Jane Doe'",
		"`get_performer_info` with performer_name \"Jane Doe\"",
		"`get_all_scenes_from_performer`",
		"rating > 80",
		"up to 5 similar performers",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("prompt text missing %q", want)
		}
	}
}

func TestRecommendScenesPrompt_Percentages(t *testing.T) {
	res, err := NewRecommendScenesPrompt().Handle(context.Background(), request(map[string]string{"preferences": "outdoor"}))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := promptText(t, res)
	if !strings.Contains(text, "Match with preferences (40%)") {
		t.Error("scoring weights should render as plain percentages")
	}
	if strings.Contains(text, "%!") {
		t.Errorf("prompt text has a formatting error:\n%s", text)
	}
}

func TestLibraryInsightsPrompt(t *testing.T) {
	res, err := NewLibraryInsightsPrompt().Handle(context.Background(), request(nil))
	if err != nil {
		t.Fatalf("Handle failed: %v", err)
	}
	text := promptText(t, res)
	if !strings.Contains(text, "`health_check`") || !strings.Contains(text, "favorites_only false") {
		t.Errorf("library prompt should reference health_check and the unfiltered listing:\n%s", text)
	}
	if len(NewLibraryInsightsPrompt().Definition().Arguments) != 0 {
		t.Error("library-insights takes no arguments")
	}
}

func TestRegister_GetPromptOverSession(t *testing.T) {
	ctx := context.Background()
	server := mcp.NewServer(&mcp.Implementation{Name: "stash-test", Version: "test"}, nil)
	Register(server, nil)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	list, err := session.ListPrompts(ctx, nil)
	if err != nil {
		t.Fatalf("ListPrompts failed: %v", err)
	}
	if len(list.Prompts) != 4 {
		t.Errorf("len(Prompts) = %d, want 4", len(list.Prompts))
	}

	res, err := session.GetPrompt(ctx, &mcp.GetPromptParams{
		Name:      "discover-performers",
		Arguments: map[string]string{"criteria": "from Canada"},
	})
	if err != nil {
		t.Fatalf("GetPrompt failed: %v", err)
	}
	if !strings.Contains(promptText(t, res), "\"from Canada\"") {
		t.Error("rendered prompt should quote the criteria")
	}
}
