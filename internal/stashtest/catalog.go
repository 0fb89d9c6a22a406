// Package stashtest provides an in-memory stash.Catalog for tests.
package stashtest

import (
	"context"
	"strings"
	"sync"

	"github.com/olgasafonova/stash-mcp-server/internal/filter"
	"github.com/olgasafonova/stash-mcp-server/internal/stash"
)

// Method names accepted by Calls, Filters and Fail.
const (
	FindPerformer  = "FindPerformer"
	FindPerformers = "FindPerformers"
	FindScenes     = "FindScenes"
	FindStudio     = "FindStudio"
	FindStudios    = "FindStudios"
	FindTag        = "FindTag"
	FindTags       = "FindTags"
)

// Catalog serves fixed records. List methods ignore filters unless the
// matching Func hook is set; every call and filter is recorded.
type Catalog struct {
	Performers []stash.Performer
	Scenes     []stash.Scene
	Studios    []stash.Studio
	Tags       []stash.Tag

	// Optional hooks that replace the default list behaviour.
	PerformersFunc func(f filter.Filters) ([]stash.Performer, error)
	ScenesFunc     func(f filter.Filters) ([]stash.Scene, error)

	EndpointURL string

	mu      sync.Mutex
	calls   map[string]int
	names   map[string][]string
	filters map[string][]filter.Filters
	errs    map[string]error
}

var _ stash.Catalog = (*Catalog)(nil)

// Fail makes every later call to method return err. A nil err clears it.
func (c *Catalog) Fail(method string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.errs == nil {
		c.errs = make(map[string]error)
	}
	if err == nil {
		delete(c.errs, method)
		return
	}
	c.errs[method] = err
}

// Calls returns how many times method was invoked.
func (c *Catalog) Calls(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[method]
}

// Names returns the names passed to a single-record lookup, in call order.
func (c *Catalog) Names(method string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.names[method]...)
}

// Filters returns the filters passed to a list method, in call order.
func (c *Catalog) Filters(method string) []filter.Filters {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]filter.Filters(nil), c.filters[method]...)
}

func (c *Catalog) record(method, name string, f filter.Filters) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = make(map[string]int)
		c.names = make(map[string][]string)
		c.filters = make(map[string][]filter.Filters)
	}
	c.calls[method]++
	if name != "" {
		c.names[method] = append(c.names[method], name)
	}
	if f != nil {
		c.filters[method] = append(c.filters[method], f)
	}
	return c.errs[method]
}

func (c *Catalog) Endpoint() string {
	if c.EndpointURL == "" {
		return "http://stash.test:9999"
	}
	return c.EndpointURL
}

func (c *Catalog) FindPerformer(_ context.Context, name string) (*stash.Performer, error) {
	if err := c.record(FindPerformer, name, nil); err != nil {
		return nil, err
	}
	for _, p := range c.Performers {
		if strings.EqualFold(p.Name, name) {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (c *Catalog) FindPerformers(_ context.Context, f filter.Filters) ([]stash.Performer, error) {
	if err := c.record(FindPerformers, "", f); err != nil {
		return nil, err
	}
	if c.PerformersFunc != nil {
		return c.PerformersFunc(f)
	}
	return append([]stash.Performer(nil), c.Performers...), nil
}

func (c *Catalog) FindScenes(_ context.Context, f filter.Filters) ([]stash.Scene, error) {
	if err := c.record(FindScenes, "", f); err != nil {
		return nil, err
	}
	if c.ScenesFunc != nil {
		return c.ScenesFunc(f)
	}
	return append([]stash.Scene(nil), c.Scenes...), nil
}

func (c *Catalog) FindStudio(_ context.Context, name string) (*stash.Studio, error) {
	if err := c.record(FindStudio, name, nil); err != nil {
		return nil, err
	}
	for _, s := range c.Studios {
		if strings.EqualFold(s.Name, name) {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (c *Catalog) FindStudios(_ context.Context, f filter.Filters) ([]stash.Studio, error) {
	if err := c.record(FindStudios, "", f); err != nil {
		return nil, err
	}
	return append([]stash.Studio(nil), c.Studios...), nil
}

func (c *Catalog) FindTag(_ context.Context, name string) (*stash.Tag, error) {
	if err := c.record(FindTag, name, nil); err != nil {
		return nil, err
	}
	for _, t := range c.Tags {
		if strings.EqualFold(t.Name, name) {
			found := t
			return &found, nil
		}
	}
	return nil, nil
}

func (c *Catalog) FindTags(_ context.Context, f filter.Filters) ([]stash.Tag, error) {
	if err := c.record(FindTags, "", f); err != nil {
		return nil, err
	}
	return append([]stash.Tag(nil), c.Tags...), nil
}

// Connector hands out a fixed catalog, or Err when it is set.
type Connector struct {
	Handle stash.Catalog
	Err    error
}

func (c Connector) Catalog(context.Context) (stash.Catalog, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Handle, nil
}

// Connect is Catalog without the error.
func (c Connector) Connect(ctx context.Context) stash.Catalog {
	cat, err := c.Catalog(ctx)
	if err != nil {
		return nil
	}
	return cat
}

// Int returns a pointer to v.
func Int(v int) *int {
	return &v
}
