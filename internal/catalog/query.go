package catalog

import (
	"encoding/json"
	"strings"

	"github.com/olgasafonova/stash-mcp-server/internal/filter"
)

// PerformerQuery selects performers. Nil fields are not filtered on.
type PerformerQuery struct {
	FavoritesOnly bool `json:"favorites_only"`

	Country              *string         `json:"country,omitempty"`
	CountryModifier      filter.Modifier `json:"country_modifier"`
	Ethnicity            *string         `json:"ethnicity,omitempty"`
	EthnicityModifier    filter.Modifier `json:"ethnicity_modifier"`
	EyeColor             *string         `json:"eye_color,omitempty"`
	EyeColorModifier     filter.Modifier `json:"eye_color_modifier"`
	HairColor            *string         `json:"hair_color,omitempty"`
	HairColorModifier    filter.Modifier `json:"hair_color_modifier"`
	HeightCm             *int            `json:"height_cm,omitempty"`
	HeightCmModifier     filter.Modifier `json:"height_cm_modifier"`
	HeightCmValue2       *int            `json:"height_cm_value2,omitempty"`
	Measurements         *string         `json:"measurements,omitempty"`
	MeasurementsModifier filter.Modifier `json:"measurements_modifier"`
	Piercings            *string         `json:"piercings,omitempty"`
	Tattoos              *string         `json:"tattoos,omitempty"`
	Weight               *int            `json:"weight,omitempty"`
	WeightModifier       filter.Modifier `json:"weight_modifier"`
	WeightValue2         *int            `json:"weight_value2,omitempty"`
}

// normalize fills blank modifiers with EQUALS
func (q PerformerQuery) normalize() PerformerQuery {
	for _, m := range []*filter.Modifier{
		&q.CountryModifier, &q.EthnicityModifier, &q.EyeColorModifier,
		&q.HairColorModifier, &q.HeightCmModifier, &q.MeasurementsModifier,
		&q.WeightModifier,
	} {
		if *m == "" {
			*m = filter.Equals
		}
	}
	return q
}

// Filters builds the performer_filter object. Piercings and tattoos always
// match with INCLUDES.
func (q PerformerQuery) Filters() filter.Filters {
	q = q.normalize()
	f := filter.Filters{}
	if q.FavoritesOnly {
		f["filter_favorites"] = true
	}
	filter.Add(f, "country", q.Country, q.CountryModifier, nil)
	filter.Add(f, "ethnicity", q.Ethnicity, q.EthnicityModifier, nil)
	filter.Add(f, "eye_color", q.EyeColor, q.EyeColorModifier, nil)
	filter.Add(f, "hair_color", q.HairColor, q.HairColorModifier, nil)
	filter.Add(f, "height_cm", q.HeightCm, q.HeightCmModifier, q.HeightCmValue2)
	filter.Add(f, "measurements", q.Measurements, q.MeasurementsModifier, nil)
	filter.Add(f, "piercings", q.Piercings, filter.Includes, nil)
	filter.Add(f, "tattoos", q.Tattoos, filter.Includes, nil)
	filter.Add(f, "weight", q.Weight, q.WeightModifier, q.WeightValue2)
	return f
}

// active lists the filters in use, for logging
func (q PerformerQuery) active() string {
	var names []string
	if q.FavoritesOnly {
		names = append(names, "favorites")
	}
	fields := []struct {
		name string
		set  bool
	}{
		{"country", q.Country != nil},
		{"ethnicity", q.Ethnicity != nil},
		{"eye_color", q.EyeColor != nil},
		{"hair_color", q.HairColor != nil},
		{"height_cm", q.HeightCm != nil},
		{"measurements", q.Measurements != nil},
		{"piercings", q.Piercings != nil},
		{"tattoos", q.Tattoos != nil},
		{"weight", q.Weight != nil},
	}
	for _, f := range fields {
		if f.set {
			names = append(names, f.name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return " (filters: " + strings.Join(names, ", ") + ")"
}

// SceneQuery selects scenes that carry at least one tag
type SceneQuery struct {
	OrganizedOnly bool   `json:"organized_only"`
	ExcludeTags   string `json:"exclude_tags,omitempty"`
	IncludeTags   string `json:"include_tags,omitempty"`
	MinRating     *int   `json:"min_rating,omitempty"`
	MaxRating     *int   `json:"max_rating,omitempty"`
}

func (q SceneQuery) describe() string {
	return filter.Describe(filter.Description{
		OrganizedOnly: q.OrganizedOnly,
		IncludeTags:   q.IncludeTags,
		ExcludeTags:   q.ExcludeTags,
		MinRating:     q.MinRating,
		MaxRating:     q.MaxRating,
	})
}

// key is the cache key of a normalized query
func key(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		// Query structs hold only strings, ints and bools
		panic(err)
	}
	return string(data)
}
