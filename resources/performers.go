package resources

import (
	"context"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	apierrors "github.com/olgasafonova/stash-mcp-server/internal/errors"
	"github.com/olgasafonova/stash-mcp-server/internal/filter"
	"github.com/olgasafonova/stash-mcp-server/internal/stash"
	"github.com/olgasafonova/stash-mcp-server/internal/stats"
)

const topN = 10

type performerSummary struct {
	Name      string   `json:"name"`
	Country   string   `json:"country"`
	Ethnicity string   `json:"ethnicity"`
	HeightCm  *int     `json:"height_cm,omitempty"`
	Weight    *int     `json:"weight,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

type performerList struct {
	Success    bool               `json:"success"`
	Total      int                `json:"total"`
	Performers []performerSummary `json:"performers"`
}

type physicalCharacteristics struct {
	Piercings string `json:"piercings,omitempty"`
	Tattoos   string `json:"tattoos,omitempty"`
}

type performerDetail struct {
	Name                    string                   `json:"name"`
	Country                 string                   `json:"country"`
	Ethnicity               string                   `json:"ethnicity"`
	EyeColor                string                   `json:"eye_color"`
	HairColor               string                   `json:"hair_color"`
	HeightCm                *int                     `json:"height_cm,omitempty"`
	Weight                  *int                     `json:"weight,omitempty"`
	Measurements            string                   `json:"measurements,omitempty"`
	PhysicalCharacteristics *physicalCharacteristics `json:"physical_characteristics,omitempty"`
	Bio                     string                   `json:"bio,omitempty"`
	Tags                    []string                 `json:"tags,omitempty"`
}

type performerDoc struct {
	Success   bool            `json:"success"`
	Performer performerDetail `json:"performer"`
}

type countryEntry struct {
	Name      string `json:"name"`
	Ethnicity string `json:"ethnicity"`
}

type countryList struct {
	Success    bool           `json:"success"`
	Country    string         `json:"country"`
	Total      int            `json:"total"`
	Performers []countryEntry `json:"performers"`
}

type ethnicityEntry struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

type ethnicityList struct {
	Success    bool             `json:"success"`
	Ethnicity  string           `json:"ethnicity"`
	Total      int              `json:"total"`
	Performers []ethnicityEntry `json:"performers"`
}

type geographicDistribution struct {
	TotalCountries int                                 `json:"total_countries"`
	Countries      *orderedmap.OrderedMap[string, int] `json:"countries"`
}

type ethnicDistribution struct {
	TotalEthnicities int                                 `json:"total_ethnicities"`
	Ethnicities      *orderedmap.OrderedMap[string, int] `json:"ethnicities"`
}

type heightStats struct {
	AverageCm float64 `json:"average_cm"`
	MinCm     int     `json:"min_cm"`
	MaxCm     int     `json:"max_cm"`
	Count     int     `json:"count"`
}

type weightStats struct {
	AverageKg float64 `json:"average_kg"`
	MinKg     int     `json:"min_kg"`
	MaxKg     int     `json:"max_kg"`
	Count     int     `json:"count"`
}

type physicalStatistics struct {
	Height *heightStats `json:"height,omitempty"`
	Weight *weightStats `json:"weight,omitempty"`
}

type performerStatistics struct {
	GeographicDistribution *geographicDistribution `json:"geographic_distribution,omitempty"`
	EthnicDistribution     *ethnicDistribution     `json:"ethnic_distribution,omitempty"`
	PhysicalStatistics     *physicalStatistics     `json:"physical_statistics,omitempty"`
}

type performerStatsDoc struct {
	Success         bool                `json:"success"`
	TotalPerformers int                 `json:"total_performers"`
	Statistics      performerStatistics `json:"statistics"`
}

// performerFilters is the base filter of every performer listing
func (h *Handler) performerFilters() filter.Filters {
	f := filter.Filters{}
	if h.favoritesOnly {
		f["filter_favorites"] = true
	}
	return f
}

func (h *Handler) allPerformers(ctx context.Context, cat stash.Catalog, _ string) (any, error) {
	performers, err := cat.FindPerformers(ctx, h.performerFilters())
	if err != nil {
		return nil, err
	}
	h.logger.Info("Retrieved performers for resource", "count", len(performers), "favorites_only", h.favoritesOnly)

	doc := performerList{Success: true, Total: len(performers), Performers: make([]performerSummary, 0, len(performers))}
	for _, p := range performers {
		doc.Performers = append(doc.Performers, performerSummary{
			Name:      orDefault(p.Name, "Unknown"),
			Country:   orDefault(p.Country, "Unknown"),
			Ethnicity: orDefault(p.Ethnicity, "Unknown"),
			HeightCm:  positive(p.HeightCm),
			Weight:    positive(p.Weight),
			Tags:      tagNames(p.Tags),
		})
	}
	return doc, nil
}

func (h *Handler) performer(ctx context.Context, cat stash.Catalog, name string) (any, error) {
	p, err := cat.FindPerformer(ctx, name)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierrors.NewNotFoundError("performer", name)
	}
	h.logger.Info("Retrieved performer for resource", "performer", name)

	const unspecified = "Not specified"
	detail := performerDetail{
		Name:         orDefault(p.Name, "Unknown"),
		Country:      orDefault(p.Country, unspecified),
		Ethnicity:    orDefault(p.Ethnicity, unspecified),
		EyeColor:     orDefault(p.EyeColor, unspecified),
		HairColor:    orDefault(p.HairColor, unspecified),
		HeightCm:     positive(p.HeightCm),
		Weight:       positive(p.Weight),
		Measurements: p.Measurements,
		Bio:          p.Details,
		Tags:         tagNames(p.Tags),
	}
	if p.Piercings != "" || p.Tattoos != "" {
		detail.PhysicalCharacteristics = &physicalCharacteristics{Piercings: p.Piercings, Tattoos: p.Tattoos}
	}
	return performerDoc{Success: true, Performer: detail}, nil
}

func (h *Handler) performersByCountry(ctx context.Context, cat stash.Catalog, country string) (any, error) {
	f := h.performerFilters()
	filter.Add(f, "country", &country, filter.Equals, nil)
	performers, err := cat.FindPerformers(ctx, f)
	if err != nil {
		return nil, err
	}
	h.logger.Info("Retrieved performers by country", "country", country, "count", len(performers))

	doc := countryList{Success: true, Country: country, Total: len(performers), Performers: make([]countryEntry, 0, len(performers))}
	for _, p := range performers {
		doc.Performers = append(doc.Performers, countryEntry{
			Name:      orDefault(p.Name, "Unknown"),
			Ethnicity: orDefault(p.Ethnicity, "Unknown"),
		})
	}
	return doc, nil
}

func (h *Handler) performersByEthnicity(ctx context.Context, cat stash.Catalog, ethnicity string) (any, error) {
	f := h.performerFilters()
	filter.Add(f, "ethnicity", &ethnicity, filter.Equals, nil)
	performers, err := cat.FindPerformers(ctx, f)
	if err != nil {
		return nil, err
	}
	h.logger.Info("Retrieved performers by ethnicity", "ethnicity", ethnicity, "count", len(performers))

	doc := ethnicityList{Success: true, Ethnicity: ethnicity, Total: len(performers), Performers: make([]ethnicityEntry, 0, len(performers))}
	for _, p := range performers {
		doc.Performers = append(doc.Performers, ethnicityEntry{
			Name:    orDefault(p.Name, "Unknown"),
			Country: orDefault(p.Country, "Unknown"),
		})
	}
	return doc, nil
}

func (h *Handler) performerStats(ctx context.Context, cat stash.Catalog, _ string) (any, error) {
	performers, err := cat.FindPerformers(ctx, h.performerFilters())
	if err != nil {
		return nil, err
	}
	doc := performerStatsDoc{Success: true, TotalPerformers: len(performers)}
	if len(performers) == 0 {
		return doc, nil
	}
	h.logger.Info("Generated performer statistics", "count", len(performers))

	countries, ethnicities := stats.NewCounter(), stats.NewCounter()
	var heights, weights []int
	for _, p := range performers {
		if p.Country != "" {
			countries.Add(p.Country)
		}
		if p.Ethnicity != "" {
			ethnicities.Add(p.Ethnicity)
		}
		if v := positive(p.HeightCm); v != nil {
			heights = append(heights, *v)
		}
		if v := positive(p.Weight); v != nil {
			weights = append(weights, *v)
		}
	}

	doc.Statistics.GeographicDistribution = &geographicDistribution{
		TotalCountries: countries.Len(),
		Countries:      countries.TopMap(topN),
	}
	doc.Statistics.EthnicDistribution = &ethnicDistribution{
		TotalEthnicities: ethnicities.Len(),
		Ethnicities:      ethnicities.TopMap(topN),
	}

	var physical physicalStatistics
	if s, ok := stats.Summarize(heights); ok {
		physical.Height = &heightStats{AverageCm: s.Average, MinCm: s.Min, MaxCm: s.Max, Count: s.Count}
	}
	if s, ok := stats.Summarize(weights); ok {
		physical.Weight = &weightStats{AverageKg: s.Average, MinKg: s.Min, MaxKg: s.Max, Count: s.Count}
	}
	if physical.Height != nil || physical.Weight != nil {
		doc.Statistics.PhysicalStatistics = &physical
	}
	return doc, nil
}
