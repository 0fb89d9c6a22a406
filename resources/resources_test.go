package resources

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	apierrors "github.com/olgasafonova/stash-mcp-server/internal/errors"
	"github.com/olgasafonova/stash-mcp-server/internal/stash"
	"github.com/olgasafonova/stash-mcp-server/internal/stashtest"
)

func newTestHandler(cat *stashtest.Catalog) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(stashtest.Connector{Handle: cat}, true, logger)
}

func definition(t *testing.T, h *Handler, path string) Definition {
	t.Helper()
	for _, def := range h.Definitions() {
		if def.Path == path {
			return def
		}
	}
	t.Fatalf("no resource %q", path)
	return Definition{}
}

// readDoc reads uri through the definition at path and decodes the document
func readDoc(t *testing.T, h *Handler, path, uri string) (string, map[string]any) {
	t.Helper()
	text, err := h.Read(context.Background(), definition(t, h, path), uri)
	if err != nil {
		t.Fatalf("Read(%s) failed: %v", uri, err)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(text), &doc); err != nil {
		t.Fatalf("document is not JSON: %v\n%s", err, text)
	}
	return text, doc
}

func TestDefinitions(t *testing.T) {
	h := newTestHandler(&stashtest.Catalog{})
	defs := h.Definitions()

	if len(defs) != 11 {
		t.Errorf("len(Definitions) = %d, want 11", len(defs))
	}
	templated := 0
	for _, def := range defs {
		if !strings.HasPrefix(def.URI(), "stash://") {
			t.Errorf("URI %q lacks the stash scheme", def.URI())
		}
		if def.read == nil {
			t.Errorf("resource %s has no reader", def.Path)
		}
		if def.Templated() {
			templated++
		}
	}
	if templated != 5 {
		t.Errorf("templated resources = %d, want 5", templated)
	}
}

func TestDefinitionParam(t *testing.T) {
	def := Definition{Path: "performer/country/{country}"}

	tests := []struct {
		uri     string
		want    string
		wantErr bool
	}{
		{"stash://performer/country/Canada", "Canada", false},
		{"stash://performer/country/United%20States", "United States", false},
		{"stash://performer/country/", "", true},
		{"stash://performer/country/%zz", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			got, err := def.param(tt.uri)
			if (err != nil) != tt.wantErr {
				t.Fatalf("param(%q) error = %v, wantErr %v", tt.uri, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("param(%q) = %q, want %q", tt.uri, got, tt.want)
			}
		})
	}
}

func TestPerformerResource_NotFound(t *testing.T) {
	h := newTestHandler(&stashtest.Catalog{})

	_, doc := readDoc(t, h, "performer/{name}", "stash://performer/Nobody")

	if doc["success"] != false {
		t.Errorf("success = %v, want false", doc["success"])
	}
	msg, _ := doc["error"].(string)
	if !strings.Contains(msg, "not found") {
		t.Errorf("error = %q, want it to mention not found", msg)
	}
	if _, ok := doc["performer"]; ok {
		t.Error("a missing performer should not produce a performer key")
	}
}

func TestPerformerResource_Detail(t *testing.T) {
	cat := &stashtest.Catalog{Performers: []stash.Performer{{
		ID:        "1",
		Name:      "Jane Doe",
		Country:   "CA",
		HeightCm:  stashtest.Int(170),
		Weight:    stashtest.Int(0),
		Tattoos:   "rose",
		Details:   "Bio text",
		Tags:      []stash.TagRef{{Name: "favorite"}},
		EyeColor:  "Blue",
		HairColor: "",
	}}}
	h := newTestHandler(cat)

	_, doc := readDoc(t, h, "performer/{name}", "stash://performer/Jane%20Doe")

	if doc["success"] != true {
		t.Fatalf("success = %v, want true", doc["success"])
	}
	p := doc["performer"].(map[string]any)
	checks := map[string]any{
		"name":       "Jane Doe",
		"country":    "CA",
		"ethnicity":  "Not specified",
		"eye_color":  "Blue",
		"hair_color": "Not specified",
		"height_cm":  float64(170),
		"bio":        "Bio text",
	}
	for key, want := range checks {
		if p[key] != want {
			t.Errorf("performer[%s] = %v, want %v", key, p[key], want)
		}
	}
	if _, ok := p["weight"]; ok {
		t.Error("a zero weight should be omitted")
	}
	physical, ok := p["physical_characteristics"].(map[string]any)
	if !ok || physical["tattoos"] != "rose" {
		t.Errorf("physical_characteristics = %v, want tattoos rose", p["physical_characteristics"])
	}
	if _, ok := physical["piercings"]; ok {
		t.Error("empty piercings should be omitted")
	}
}

func TestAllPerformersResource(t *testing.T) {
	cat := &stashtest.Catalog{Performers: []stash.Performer{
		{Name: "A & B <x>", Country: "CA", Weight: stashtest.Int(55)},
		{Name: ""},
	}}
	h := newTestHandler(cat)

	text, doc := readDoc(t, h, "performer/all", "stash://performer/all")

	if !strings.Contains(text, "A & B <x>") {
		t.Errorf("HTML characters should not be escaped:\n%s", text)
	}
	if !strings.Contains(text, "\n  \"success\": true") {
		t.Errorf("document should be indented with two spaces:\n%s", text)
	}
	if doc["total"] != float64(2) {
		t.Errorf("total = %v, want 2", doc["total"])
	}
	performers := doc["performers"].([]any)
	second := performers[1].(map[string]any)
	if second["name"] != "Unknown" || second["country"] != "Unknown" || second["ethnicity"] != "Unknown" {
		t.Errorf("performers[1] = %v, want Unknown defaults", second)
	}
	if cat.Filters(stashtest.FindPerformers)[0]["filter_favorites"] != true {
		t.Error("listing should be limited to favorites")
	}
}

func TestAllPerformersResource_AllPerformers(t *testing.T) {
	cat := &stashtest.Catalog{}
	h := NewHandler(stashtest.Connector{Handle: cat}, false, nil)

	_, doc := readDoc(t, h, "performer/all", "stash://performer/all")

	if doc["total"] != float64(0) {
		t.Errorf("total = %v, want 0", doc["total"])
	}
	if performers, ok := doc["performers"].([]any); !ok || len(performers) != 0 {
		t.Errorf("performers = %v, want []", doc["performers"])
	}
	if _, ok := cat.Filters(stashtest.FindPerformers)[0]["filter_favorites"]; ok {
		t.Error("filter_favorites should be absent when favorites are disabled")
	}
}

func TestPerformersByCountryResource(t *testing.T) {
	cat := &stashtest.Catalog{Performers: []stash.Performer{{Name: "Jane", Ethnicity: "Asian"}}}
	h := newTestHandler(cat)

	_, doc := readDoc(t, h, "performer/country/{country}", "stash://performer/country/United%20States")

	if doc["country"] != "United States" {
		t.Errorf("country = %v, want United States", doc["country"])
	}
	f := cat.Filters(stashtest.FindPerformers)[0]
	data, _ := json.Marshal(f["country"])
	if string(data) != `{"value":"United States","modifier":"EQUALS"}` {
		t.Errorf("country filter = %s", data)
	}
	first := doc["performers"].([]any)[0].(map[string]any)
	if first["ethnicity"] != "Asian" {
		t.Errorf("performers[0] = %v, want ethnicity Asian", first)
	}
}

func TestPerformerStatsResource(t *testing.T) {
	cat := &stashtest.Catalog{Performers: []stash.Performer{
		{Name: "A", Country: "US", HeightCm: stashtest.Int(160)},
		{Name: "B", Country: "CA", HeightCm: stashtest.Int(171)},
		{Name: "C", Country: "CA", Ethnicity: "Latin"},
	}}
	h := newTestHandler(cat)

	text, doc := readDoc(t, h, "performer/stats", "stash://performer/stats")

	if doc["total_performers"] != float64(3) {
		t.Errorf("total_performers = %v, want 3", doc["total_performers"])
	}
	st := doc["statistics"].(map[string]any)
	geo := st["geographic_distribution"].(map[string]any)
	if geo["total_countries"] != float64(2) {
		t.Errorf("total_countries = %v, want 2", geo["total_countries"])
	}
	if strings.Index(text, `"CA": 2`) > strings.Index(text, `"US": 1`) {
		t.Errorf("countries should be ordered by count:\n%s", text)
	}
	height := st["physical_statistics"].(map[string]any)["height"].(map[string]any)
	if height["average_cm"] != 165.5 || height["min_cm"] != float64(160) || height["max_cm"] != float64(171) {
		t.Errorf("height = %v, want average 165.5, min 160, max 171", height)
	}
	if _, ok := st["physical_statistics"].(map[string]any)["weight"]; ok {
		t.Error("weight statistics should be absent without weights")
	}
}

func TestPerformerStatsResource_Empty(t *testing.T) {
	h := newTestHandler(&stashtest.Catalog{})

	_, doc := readDoc(t, h, "performer/stats", "stash://performer/stats")

	if st, ok := doc["statistics"].(map[string]any); !ok || len(st) != 0 {
		t.Errorf("statistics = %v, want {}", doc["statistics"])
	}
}

func TestStudioResources(t *testing.T) {
	cat := &stashtest.Catalog{Studios: []stash.Studio{
		{ID: "1", Name: "Big", SceneCount: 30, Rating100: stashtest.Int(80), ChildStudios: []stash.NamedRef{{ID: "2", Name: "Small"}}},
		{ID: "2", Name: "Small", SceneCount: 10, Rating100: stashtest.Int(60), ParentStudio: &stash.NamedRef{ID: "1", Name: "Big"}},
		{ID: "3", Name: "Indie", SceneCount: 20, Tags: []stash.TagRef{{Name: "arthouse"}}},
	}}
	h := newTestHandler(cat)

	t.Run("stats", func(t *testing.T) {
		_, doc := readDoc(t, h, "studio/stats", "stash://studio/stats")
		st := doc["statistics"].(map[string]any)
		if st["total_scenes"] != float64(60) || st["average_scenes_per_studio"] != float64(20) {
			t.Errorf("statistics = %v, want 60 scenes, 20 per studio", st)
		}
		if st["rated_studios"] != float64(2) || st["studios_with_parent"] != float64(1) || st["studios_with_children"] != float64(1) {
			t.Errorf("statistics = %v", st)
		}
		rating := st["rating"].(map[string]any)
		if rating["average"] != float64(70) {
			t.Errorf("rating = %v, want average 70", rating)
		}
		top := st["top_studios"].([]any)
		if top[0].(map[string]any)["name"] != "Big" || top[1].(map[string]any)["name"] != "Indie" {
			t.Errorf("top_studios = %v, want Big then Indie", top)
		}
	})

	t.Run("detail", func(t *testing.T) {
		_, doc := readDoc(t, h, "studio/{name}", "stash://studio/indie")
		studio := doc["studio"].(map[string]any)
		if studio["id"] != "3" {
			t.Errorf("studio = %v, want id 3", studio)
		}
		if tags := studio["tags"].([]any); len(tags) != 1 || tags[0] != "arthouse" {
			t.Errorf("tags = %v, want [arthouse]", studio["tags"])
		}
	})

	t.Run("missing", func(t *testing.T) {
		_, doc := readDoc(t, h, "studio/{name}", "stash://studio/Nope")
		if doc["error"] != "Studio 'Nope' not found in the database" {
			t.Errorf("error = %v", doc["error"])
		}
	})
}

func TestTagResources(t *testing.T) {
	cat := &stashtest.Catalog{Tags: []stash.Tag{
		{ID: "1", Name: "outdoor", SceneCount: 5, SceneMarkerCount: 2, Children: []stash.NamedRef{{ID: "2"}}},
		{ID: "2", Name: "beach", SceneCount: 3, Parents: []stash.NamedRef{{ID: "1"}}, Description: "Sand"},
	}}
	h := newTestHandler(cat)

	_, doc := readDoc(t, h, "tag/stats", "stash://tag/stats")
	st := doc["statistics"].(map[string]any)
	if st["total_scene_associations"] != float64(8) || st["total_marker_associations"] != float64(2) {
		t.Errorf("statistics = %v", st)
	}
	if st["average_scenes_per_tag"] != float64(4) {
		t.Errorf("average_scenes_per_tag = %v, want 4", st["average_scenes_per_tag"])
	}

	_, doc = readDoc(t, h, "tag/all", "stash://tag/all")
	tags := doc["tags"].([]any)
	if _, ok := tags[1].(map[string]any)["scene_marker_count"]; ok {
		t.Error("a zero marker count should be omitted from the listing")
	}

	_, doc = readDoc(t, h, "tag/{name}", "stash://tag/beach")
	tag := doc["tag"].(map[string]any)
	if tag["description"] != "Sand" || tag["scene_count"] != float64(3) {
		t.Errorf("tag = %v", tag)
	}
}

func TestResource_Failures(t *testing.T) {
	t.Run("connection unavailable", func(t *testing.T) {
		conn := stashtest.Connector{Err: &apierrors.ConnectionUnavailableError{Endpoint: "http://stash", Attempts: 3}}
		h := NewHandler(conn, true, nil)

		_, doc := readDoc(t, h, "tag/all", "stash://tag/all")
		if doc["success"] != false {
			t.Errorf("success = %v, want false", doc["success"])
		}
		if msg, _ := doc["error"].(string); !strings.Contains(msg, "not available") {
			t.Errorf("error = %q", msg)
		}
	})

	t.Run("query error", func(t *testing.T) {
		cat := &stashtest.Catalog{}
		cat.Fail(stashtest.FindStudios, errors.New("boom"))
		h := newTestHandler(cat)

		_, doc := readDoc(t, h, "studio/all", "stash://studio/all")
		if doc["success"] != false || doc["error"] != "boom" {
			t.Errorf("doc = %v, want a boom failure", doc)
		}
	})
}

func TestRegister_ReadOverSession(t *testing.T) {
	ctx := context.Background()
	cat := &stashtest.Catalog{Performers: []stash.Performer{{Name: "Jane", Country: "CA"}}}
	h := newTestHandler(cat)

	server := mcp.NewServer(&mcp.Implementation{Name: "stash-test", Version: "test"}, nil)
	h.Register(server)

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

	for _, uri := range []string{"stash://performer/all", "stash://performer/Jane"} {
		res, err := session.ReadResource(ctx, &mcp.ReadResourceParams{URI: uri})
		if err != nil {
			t.Fatalf("ReadResource(%s) failed: %v", uri, err)
		}
		if len(res.Contents) != 1 {
			t.Fatalf("ReadResource(%s) returned %d contents, want 1", uri, len(res.Contents))
		}
		if res.Contents[0].MIMEType != "application/json" {
			t.Errorf("MIMEType = %q, want application/json", res.Contents[0].MIMEType)
		}
		if !strings.Contains(res.Contents[0].Text, `"success": true`) {
			t.Errorf("ReadResource(%s) = %s, want success", uri, res.Contents[0].Text)
		}
	}
}
