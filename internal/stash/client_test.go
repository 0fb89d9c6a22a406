package stash

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/olgasafonova/stash-mcp-server/internal/base"
	apierrors "github.com/olgasafonova/stash-mcp-server/internal/errors"
	"github.com/olgasafonova/stash-mcp-server/internal/filter"
)

type recordedRequest struct {
	Header http.Header
	Path   string
	Body   graphqlRequest
}

// newTestServer answers every GraphQL request with the given data payload.
func newTestServer(t *testing.T, data string, requests *[]recordedRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var req graphqlRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			t.Errorf("request body is not JSON: %v", err)
		}
		if requests != nil {
			*requests = append(*requests, recordedRequest{Header: r.Header.Clone(), Path: r.URL.Path, Body: req})
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":` + data + `}`))
	}))
}

func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := NewClient(serverURL, "test-key", base.WithLogger(logger))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func TestNormalizeEndpoint(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"http://localhost:9999", "http://localhost:9999", false},
		{"http://localhost", "http://localhost:9999", false},
		{"https://stash.example.com/", "https://stash.example.com:9999", false},
		{"https://stash.example.com:443/graphql", "https://stash.example.com:443", false},
		{"192.168.1.10:8080", "http://192.168.1.10:8080", false},
		{"stash.lan", "http://stash.lan:9999", false},
		{"ftp://stash.lan", "", true},
		{"http://", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeEndpoint(tt.input)
			if tt.wantErr {
				if !errors.Is(err, apierrors.ErrClientUnavailable) {
					t.Errorf("NormalizeEndpoint(%q) error = %v, want ErrClientUnavailable", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("NormalizeEndpoint(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("NormalizeEndpoint(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewClient_InvalidEndpoint(t *testing.T) {
	_, err := NewClient("gopher://x", "key")
	if !errors.Is(err, apierrors.ErrClientUnavailable) {
		t.Errorf("NewClient error = %v, want ErrClientUnavailable", err)
	}
}

func TestPing(t *testing.T) {
	var requests []recordedRequest
	server := newTestServer(t, `{"version":{"version":"v0.27.2"}}`, &requests)
	defer server.Close()

	client := newTestClient(t, server.URL)

	version, err := client.Ping(context.Background())
	if err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if version != "v0.27.2" {
		t.Errorf("version = %q, want v0.27.2", version)
	}
	if len(requests) != 1 {
		t.Fatalf("requests = %d, want 1", len(requests))
	}
	if requests[0].Path != "/graphql" {
		t.Errorf("path = %q, want /graphql", requests[0].Path)
	}
	if requests[0].Header.Get("ApiKey") != "test-key" {
		t.Errorf("ApiKey header = %q, want test-key", requests[0].Header.Get("ApiKey"))
	}
	if requests[0].Body.OperationName != "Version" {
		t.Errorf("operationName = %q, want Version", requests[0].Body.OperationName)
	}
}

func TestFindPerformer_MatchesNameOrAlias(t *testing.T) {
	data := `{"findPerformers":{"count":2,"performers":[
		{"id":"1","name":"Jane Doe Jr","alias_list":[]},
		{"id":"2","name":"Janet","alias_list":["Jane Doe"],"height_cm":170,"tags":[{"name":"blonde"}]}
	]}}`
	var requests []recordedRequest
	server := newTestServer(t, data, &requests)
	defer server.Close()

	client := newTestClient(t, server.URL)

	p, err := client.FindPerformer(context.Background(), "jane doe")
	if err != nil {
		t.Fatalf("FindPerformer failed: %v", err)
	}
	if p == nil || p.ID != "2" {
		t.Fatalf("FindPerformer = %+v, want performer 2", p)
	}
	if p.HeightCm == nil || *p.HeightCm != 170 {
		t.Errorf("HeightCm = %v, want 170", p.HeightCm)
	}
	if len(p.Tags) != 1 || p.Tags[0].Name != "blonde" {
		t.Errorf("Tags = %+v, want [blonde]", p.Tags)
	}

	vars := requests[0].Body.Variables
	ff, _ := vars["filter"].(map[string]any)
	if ff["q"] != "jane doe" || ff["per_page"] != float64(-1) {
		t.Errorf("filter = %v, want q and per_page -1", ff)
	}
	if _, ok := vars["performer_filter"]; ok {
		t.Error("name lookup should not send performer_filter")
	}
}

func TestFindPerformer_NoMatch(t *testing.T) {
	server := newTestServer(t, `{"findPerformers":{"count":1,"performers":[{"id":"1","name":"Someone Else"}]}}`, nil)
	defer server.Close()

	client := newTestClient(t, server.URL)

	p, err := client.FindPerformer(context.Background(), "Nobody")
	if err != nil {
		t.Fatalf("FindPerformer failed: %v", err)
	}
	if p != nil {
		t.Errorf("FindPerformer = %+v, want nil", p)
	}
}

func TestFindPerformers_SendsFilter(t *testing.T) {
	var requests []recordedRequest
	server := newTestServer(t, `{"findPerformers":{"count":1,"performers":[{"id":"1","name":"A","country":"US"}]}}`, &requests)
	defer server.Close()

	client := newTestClient(t, server.URL)

	country := "US"
	f := filter.Filters{"filter_favorites": true}
	filter.Add(f, "country", &country, filter.Equals, nil)

	performers, err := client.FindPerformers(context.Background(), f)
	if err != nil {
		t.Fatalf("FindPerformers failed: %v", err)
	}
	if len(performers) != 1 || performers[0].Country != "US" {
		t.Errorf("performers = %+v", performers)
	}

	pf, ok := requests[0].Body.Variables["performer_filter"].(map[string]any)
	if !ok {
		t.Fatalf("performer_filter missing: %v", requests[0].Body.Variables)
	}
	if pf["filter_favorites"] != true {
		t.Errorf("filter_favorites = %v, want true", pf["filter_favorites"])
	}
	c, _ := pf["country"].(map[string]any)
	if c["value"] != "US" || c["modifier"] != "EQUALS" {
		t.Errorf("country criterion = %v", c)
	}
	if !strings.Contains(requests[0].Body.Query, "alias_list") {
		t.Error("performer query should select alias_list")
	}
}

func TestFindScenes(t *testing.T) {
	data := `{"findScenes":{"count":2,"scenes":[
		{"id":"10","title":"One","rating100":80,"performers":[{"name":"A"}],"tags":[{"name":"x"}]},
		{"id":"11","title":"Two","rating100":null}
	]}}`
	var requests []recordedRequest
	server := newTestServer(t, data, &requests)
	defer server.Close()

	client := newTestClient(t, server.URL)

	scenes, err := client.FindScenes(context.Background(), filter.Filters{"organized": true})
	if err != nil {
		t.Fatalf("FindScenes failed: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("scenes = %d, want 2", len(scenes))
	}
	if scenes[0].Rating100 == nil || *scenes[0].Rating100 != 80 {
		t.Errorf("rating = %v, want 80", scenes[0].Rating100)
	}
	if scenes[1].Rating100 != nil {
		t.Errorf("rating = %v, want nil", *scenes[1].Rating100)
	}
	if _, ok := requests[0].Body.Variables["scene_filter"]; !ok {
		t.Error("scene_filter missing")
	}
}

func TestFindStudioAndTag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		switch req.OperationName {
		case "FindStudios":
			_, _ = w.Write([]byte(`{"data":{"findStudios":{"count":1,"studios":[{"id":"5","name":"Acme","scene_count":12,"aliases":["ACME Films"],"parent_studio":{"id":"1","name":"Parent"}}]}}}`))
		case "FindTags":
			_, _ = w.Write([]byte(`{"data":{"findTags":{"count":1,"tags":[{"id":"7","name":"Outdoor","scene_count":3,"scene_marker_count":1}]}}}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()

	studio, err := client.FindStudio(ctx, "acme films")
	if err != nil {
		t.Fatalf("FindStudio failed: %v", err)
	}
	if studio == nil || studio.SceneCount != 12 || studio.ParentStudio == nil || studio.ParentStudio.Name != "Parent" {
		t.Errorf("FindStudio = %+v", studio)
	}

	tag, err := client.FindTag(ctx, "outdoor")
	if err != nil {
		t.Fatalf("FindTag failed: %v", err)
	}
	if tag == nil || tag.ID != "7" || tag.SceneMarkerCount != 1 {
		t.Errorf("FindTag = %+v", tag)
	}

	missing, err := client.FindTag(ctx, "indoor")
	if err != nil || missing != nil {
		t.Errorf("FindTag(indoor) = %+v, %v; want nil, nil", missing, err)
	}
}

func TestQuery_GraphQLErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"message":"unknown field"},{"message":"bad filter"}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.FindScenes(context.Background(), nil)
	var qe *apierrors.QueryError
	if !errors.As(err, &qe) {
		t.Fatalf("error = %v, want QueryError", err)
	}
	if qe.Operation != "FindScenes" {
		t.Errorf("Operation = %q, want FindScenes", qe.Operation)
	}
	if !strings.Contains(err.Error(), "unknown field; bad filter") {
		t.Errorf("error = %q, want both messages", err.Error())
	}
}

func TestQuery_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.Ping(context.Background())
	if err == nil || !strings.Contains(err.Error(), "api key rejected") {
		t.Errorf("Ping error = %v, want api key rejected", err)
	}
}

func TestQuery_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>not graphql</html>`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	_, err := client.FindTags(context.Background(), nil)
	var qe *apierrors.QueryError
	if !errors.As(err, &qe) {
		t.Errorf("error = %v, want QueryError", err)
	}
}

func TestFindQueryShape(t *testing.T) {
	if !strings.Contains(findScenesQuery, "findScenes(filter: $filter, scene_filter: $scene_filter)") {
		t.Errorf("unexpected scenes query:\n%s", findScenesQuery)
	}
	if !strings.Contains(findTagsQuery, "$tag_filter: TagFilterType") {
		t.Errorf("unexpected tags query:\n%s", findTagsQuery)
	}
}

func TestMatchesName(t *testing.T) {
	tests := []struct {
		want    string
		name    string
		aliases []string
		match   bool
	}{
		{"jane", "Jane", nil, true},
		{" Jane ", "jane", nil, true},
		{"JD", "Jane", []string{"jd"}, true},
		{"Jan", "Jane", []string{"Janey"}, false},
	}
	for _, tt := range tests {
		if got := matchesName(tt.want, tt.name, tt.aliases); got != tt.match {
			t.Errorf("matchesName(%q, %q, %v) = %v, want %v", tt.want, tt.name, tt.aliases, got, tt.match)
		}
	}
}
