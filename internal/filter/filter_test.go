package filter

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	apierrors "github.com/olgasafonova/stash-mcp-server/internal/errors"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestParseModifier(t *testing.T) {
	tests := []struct {
		input   string
		want    Modifier
		wantErr bool
	}{
		{"", Equals, false},
		{"EQUALS", Equals, false},
		{"between", Between, false},
		{"  not_between ", NotBetween, false},
		{"Includes", Includes, false},
		{"ROUGHLY", "", true},
		{"LIKE", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseModifier(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseModifier(%q) expected error", tt.input)
				}
				if !apierrors.IsValidation(err) {
					t.Errorf("ParseModifier(%q) error = %T, want ValidationError", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseModifier(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseModifier(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAdd_OmitsNilValue(t *testing.T) {
	for _, mod := range Modifiers {
		f := Filters{}
		Add[int](f, "height_cm", nil, mod, intPtr(180))
		if len(f) != 0 {
			t.Errorf("Add with nil value and %s added %v", mod, f)
		}
	}
}

func TestAdd_Value2OnlyForRanges(t *testing.T) {
	for _, mod := range Modifiers {
		t.Run(string(mod), func(t *testing.T) {
			f := Filters{}
			Add(f, "weight", intPtr(60), mod, intPtr(80))

			c, ok := f["weight"].(*Criterion)
			if !ok {
				t.Fatalf("weight criterion missing: %v", f)
			}
			if c.Modifier != mod {
				t.Errorf("Modifier = %q, want %q", c.Modifier, mod)
			}
			if c.Value != 60 {
				t.Errorf("Value = %v, want 60", c.Value)
			}
			if mod.Ranged() {
				if c.Value2 != 80 {
					t.Errorf("Value2 = %v, want 80", c.Value2)
				}
			} else if c.Value2 != nil {
				t.Errorf("Value2 = %v, want nil for %s", c.Value2, mod)
			}
		})
	}
}

func TestAdd_RangeWithoutValue2(t *testing.T) {
	f := Filters{}
	Add(f, "height_cm", intPtr(170), Between, nil)

	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(data), `{"height_cm":{"value":170,"modifier":"BETWEEN"}}`; got != want {
		t.Errorf("json = %s, want %s", got, want)
	}
}

func TestAdd_String(t *testing.T) {
	f := Filters{}
	Add(f, "country", strPtr("US"), NotEquals, nil)

	data, _ := json.Marshal(f)
	if got, want := string(data), `{"country":{"value":"US","modifier":"NOT_EQUALS"}}`; got != want {
		t.Errorf("json = %s, want %s", got, want)
	}
}

func TestRating(t *testing.T) {
	tests := []struct {
		name     string
		min, max *int
		want     *Criterion
	}{
		{"min only", intPtr(70), nil, &Criterion{Value: 69, Modifier: GreaterThan}},
		{"max only", nil, intPtr(90), &Criterion{Value: 91, Modifier: LessThan}},
		{"both", intPtr(60), intPtr(90), &Criterion{Value: 60, Modifier: Between, Value2: 90}},
		{"neither", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Rating(tt.min, tt.max)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Rating() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func fakeResolver(known map[string]string) TagResolver {
	return func(_ context.Context, name string) (string, bool, error) {
		id, ok := known[name]
		return id, ok, nil
	}
}

func TestTags(t *testing.T) {
	resolve := fakeResolver(map[string]string{"outdoor": "1", "indoor": "2", "pov": "3"})
	ctx := context.Background()

	tests := []struct {
		name             string
		include, exclude string
		want             *Criterion
	}{
		{"include", "outdoor, pov", "", &Criterion{Value: []string{"1", "3"}, Modifier: Includes}},
		{"exclude", "", "indoor", &Criterion{Value: []string{"2"}, Modifier: Excludes}},
		{"include wins", "outdoor", "indoor", &Criterion{Value: []string{"1"}, Modifier: Includes}},
		{"neither", "", "", nil},
		{"blank include falls back to exclude", " , ", "pov", &Criterion{Value: []string{"3"}, Modifier: Excludes}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Tags(ctx, resolve, tt.include, tt.exclude)
			if err != nil {
				t.Fatalf("Tags() error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestTags_UnresolvedName(t *testing.T) {
	resolve := fakeResolver(map[string]string{"outdoor": "1"})

	_, err := Tags(context.Background(), resolve, "outdoor,missing", "")
	if !apierrors.IsNotFound(err) {
		t.Fatalf("Tags() error = %v, want NotFoundError", err)
	}
	if got, want := err.Error(), "Tag 'missing' not found in the database"; got != want {
		t.Errorf("error = %q, want %q", got, want)
	}
}

func TestTags_ResolverError(t *testing.T) {
	boom := errors.New("boom")
	resolve := func(context.Context, string) (string, bool, error) { return "", false, boom }

	_, err := Tags(context.Background(), resolve, "", "x")
	if !errors.Is(err, boom) {
		t.Errorf("Tags() error = %v, want wrapped boom", err)
	}
}

func TestSplitNames(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"   ", nil},
		{"a", []string{"a"}},
		{" a , b,,c ", []string{"a", "b", "c"}},
	}
	for _, tt := range tests {
		if got := SplitNames(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitNames(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	extra := orderedmap.New[string, any]()
	extra.Set("country", "US")
	extra.Set("ethnicity", nil)
	extra.Set("favorites_only", true)

	tests := []struct {
		name string
		d    Description
		want string
	}{
		{"empty", Description{}, ""},
		{
			"scene filters",
			Description{OrganizedOnly: true, IncludeTags: "a, b", MinRating: intPtr(70)},
			" (organized only, including tags: a, b, min rating: 70)",
		},
		{
			"exclude and max",
			Description{ExcludeTags: "x", MaxRating: intPtr(90)},
			" (excluding tags: x, max rating: 90)",
		},
		{"extra in order", Description{Extra: extra}, " (country: US, favorites_only: true)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.d); got != tt.want {
				t.Errorf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}
