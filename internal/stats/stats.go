// Package stats computes summaries over Stash records.
package stats

import (
	"encoding/json"
	"math"
	"sort"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/olgasafonova/stash-mcp-server/internal/stash"
)

// AverageRating returns the mean rating100 of the rated scenes, or 0 when
// none are rated.
func AverageRating(scenes []stash.Scene) float64 {
	var sum, n int
	for _, s := range scenes {
		if s.Rating100 != nil {
			sum += *s.Rating100
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

// CountScenesByRating counts rated scenes in a range. With a nil max it counts
// ratings strictly above min; with min 0 it counts ratings strictly below max;
// otherwise the range is inclusive on both ends.
func CountScenesByRating(scenes []stash.Scene, min int, max *int) int {
	count := 0
	for _, s := range scenes {
		if s.Rating100 == nil {
			continue
		}
		r := *s.Rating100
		switch {
		case max == nil:
			if r > min {
				count++
			}
		case min == 0:
			if r < *max {
				count++
			}
		default:
			if r >= min && r <= *max {
				count++
			}
		}
	}
	return count
}

// TagFrequency counts tag occurrences across scenes in first-seen order.
func TagFrequency(scenes []stash.Scene) *Counter {
	c := NewCounter()
	for _, s := range scenes {
		for _, t := range s.Tags {
			c.Add(t.Name)
		}
	}
	return c
}

// ScenesPerYear counts dated scenes by year.
func ScenesPerYear(scenes []stash.Scene) map[string]int {
	years := make(map[string]int)
	for i := range scenes {
		if y := scenes[i].Year(); y != "" {
			years[y]++
		}
	}
	return years
}

// Count is one entry of a ranked distribution.
type Count struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Counter counts string keys and remembers the order they were first seen.
type Counter struct {
	m *orderedmap.OrderedMap[string, int]
}

// NewCounter returns an empty Counter.
func NewCounter() *Counter {
	return &Counter{m: orderedmap.New[string, int]()}
}

// Add increments key by one.
func (c *Counter) Add(key string) {
	n, _ := c.m.Get(key)
	c.m.Set(key, n+1)
}

// Get returns the count for key.
func (c *Counter) Get(key string) int {
	n, _ := c.m.Get(key)
	return n
}

// Len returns the number of distinct keys.
func (c *Counter) Len() int {
	return c.m.Len()
}

// Keys returns the distinct keys in first-seen order.
func (c *Counter) Keys() []string {
	keys := make([]string, 0, c.m.Len())
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Top returns up to n entries ordered by count descending. Ties keep
// first-seen order. n <= 0 returns every entry.
func (c *Counter) Top(n int) []Count {
	ranked := make([]Count, 0, c.m.Len())
	for pair := c.m.Oldest(); pair != nil; pair = pair.Next() {
		ranked = append(ranked, Count{Name: pair.Key, Count: pair.Value})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// TopMap is Top as an ordered map, which encodes as a JSON object in rank order.
func (c *Counter) TopMap(n int) *orderedmap.OrderedMap[string, int] {
	top := orderedmap.New[string, int]()
	for _, e := range c.Top(n) {
		top.Set(e.Name, e.Count)
	}
	return top
}

// MarshalJSON encodes the counts as an object in first-seen order.
func (c *Counter) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.m)
}

// Summary describes a set of integer measurements.
type Summary struct {
	Average float64 `json:"average"`
	Min     int     `json:"min"`
	Max     int     `json:"max"`
	Count   int     `json:"count"`
}

// Summarize returns the summary of values and false when values is empty.
// The average is rounded to one decimal.
func Summarize(values []int) (Summary, bool) {
	if len(values) == 0 {
		return Summary{}, false
	}
	s := Summary{Min: values[0], Max: values[0], Count: len(values)}
	sum := 0
	for _, v := range values {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Average = Round1(float64(sum) / float64(len(values)))
	return s, true
}

// Round1 rounds to one decimal place.
func Round1(f float64) float64 {
	return math.Round(f*10) / 10
}
