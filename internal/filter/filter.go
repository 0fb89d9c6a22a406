// Package filter builds the criterion objects accepted by Stash's find* queries.
//
// A criterion has the shape {value, modifier[, value2]}. Modifiers are a closed
// set so that a bad modifier is rejected before any request leaves the process.
package filter

import (
	"context"
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	apierrors "github.com/olgasafonova/stash-mcp-server/internal/errors"
)

// Modifier is a Stash criterion modifier.
type Modifier string

const (
	Equals      Modifier = "EQUALS"
	NotEquals   Modifier = "NOT_EQUALS"
	GreaterThan Modifier = "GREATER_THAN"
	LessThan    Modifier = "LESS_THAN"
	Between     Modifier = "BETWEEN"
	NotBetween  Modifier = "NOT_BETWEEN"
	Includes    Modifier = "INCLUDES"
	Excludes    Modifier = "EXCLUDES"
)

// Modifiers lists every supported modifier in declaration order.
var Modifiers = []Modifier{Equals, NotEquals, GreaterThan, LessThan, Between, NotBetween, Includes, Excludes}

// Valid reports whether m is one of the supported modifiers.
func (m Modifier) Valid() bool {
	for _, known := range Modifiers {
		if m == known {
			return true
		}
	}
	return false
}

// Ranged reports whether m takes a second value.
func (m Modifier) Ranged() bool {
	return m == Between || m == NotBetween
}

// ParseModifier converts user input into a Modifier. Matching is
// case-insensitive and an empty string means EQUALS.
func ParseModifier(s string) (Modifier, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Equals, nil
	}
	m := Modifier(s)
	if !m.Valid() {
		names := make([]string, len(Modifiers))
		for i, known := range Modifiers {
			names[i] = string(known)
		}
		return "", apierrors.NewValidationError("modifier", s,
			"unknown filter modifier, expected one of "+strings.Join(names, ", "))
	}
	return m, nil
}

// Criterion is a single filter fragment.
type Criterion struct {
	Value    any      `json:"value"`
	Modifier Modifier `json:"modifier"`
	Value2   any      `json:"value2,omitempty"`
}

// Filters is a Stash filter object keyed by field name.
type Filters map[string]any

// Add sets field to a criterion built from value. Nothing is added when value
// is nil. value2 is only carried for BETWEEN and NOT_BETWEEN.
func Add[T any](f Filters, field string, value *T, mod Modifier, value2 *T) {
	if value == nil {
		return
	}
	c := &Criterion{Value: *value, Modifier: mod}
	if value2 != nil && mod.Ranged() {
		c.Value2 = *value2
	}
	f[field] = c
}

// Rating builds an inclusive rating100 range. Stash treats GREATER_THAN and
// LESS_THAN as strict, so single bounds are shifted by one.
func Rating(min, max *int) *Criterion {
	switch {
	case min != nil && max != nil:
		return &Criterion{Value: *min, Modifier: Between, Value2: *max}
	case min != nil:
		return &Criterion{Value: *min - 1, Modifier: GreaterThan}
	case max != nil:
		return &Criterion{Value: *max + 1, Modifier: LessThan}
	}
	return nil
}

// TagResolver looks up a tag id by name.
type TagResolver func(ctx context.Context, name string) (id string, found bool, err error)

// Tags builds a tag criterion from comma-separated include and exclude lists.
// Include wins when both are given. A name that does not resolve fails with a
// NotFoundError rather than sending an empty id to Stash.
func Tags(ctx context.Context, resolve TagResolver, include, exclude string) (*Criterion, error) {
	if names := SplitNames(include); len(names) > 0 {
		ids, err := resolveTags(ctx, resolve, names)
		if err != nil {
			return nil, err
		}
		return &Criterion{Value: ids, Modifier: Includes}, nil
	}
	if names := SplitNames(exclude); len(names) > 0 {
		ids, err := resolveTags(ctx, resolve, names)
		if err != nil {
			return nil, err
		}
		return &Criterion{Value: ids, Modifier: Excludes}, nil
	}
	return nil, nil
}

func resolveTags(ctx context.Context, resolve TagResolver, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		id, found, err := resolve(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve tag %q: %w", name, err)
		}
		if !found {
			return nil, apierrors.NewNotFoundError("tag", name)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// SplitNames splits a comma-separated list, trimming blanks and dropping empty items.
func SplitNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// Description holds the parts of a query rendered by Describe.
type Description struct {
	OrganizedOnly bool
	IncludeTags   string
	ExcludeTags   string
	MinRating     *int
	MaxRating     *int

	// Extra is rendered after the fixed parts in insertion order. Nil values are skipped.
	Extra *orderedmap.OrderedMap[string, any]
}

// Describe renders a filter summary such as " (organized only, min rating: 70)".
// It returns "" when no filter is active.
func Describe(d Description) string {
	var parts []string
	if d.OrganizedOnly {
		parts = append(parts, "organized only")
	}
	if d.IncludeTags != "" {
		parts = append(parts, "including tags: "+d.IncludeTags)
	}
	if d.ExcludeTags != "" {
		parts = append(parts, "excluding tags: "+d.ExcludeTags)
	}
	if d.MinRating != nil {
		parts = append(parts, fmt.Sprintf("min rating: %d", *d.MinRating))
	}
	if d.MaxRating != nil {
		parts = append(parts, fmt.Sprintf("max rating: %d", *d.MaxRating))
	}
	if d.Extra != nil {
		for pair := d.Extra.Oldest(); pair != nil; pair = pair.Next() {
			if pair.Value == nil {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s: %v", pair.Key, pair.Value))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}
