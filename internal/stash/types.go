package stash

// TagRef is a tag reference embedded in other records.
type TagRef struct {
	Name string `json:"name"`
}

// NamedRef is a reference to a related studio or tag.
type NamedRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Performer is a performer record as selected by performerFields.
type Performer struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Country      string   `json:"country,omitempty"`
	Details      string   `json:"details,omitempty"`
	Ethnicity    string   `json:"ethnicity,omitempty"`
	EyeColor     string   `json:"eye_color,omitempty"`
	HairColor    string   `json:"hair_color,omitempty"`
	HeightCm     *int     `json:"height_cm,omitempty"`
	Measurements string   `json:"measurements,omitempty"`
	Piercings    string   `json:"piercings,omitempty"`
	Tattoos      string   `json:"tattoos,omitempty"`
	Tags         []TagRef `json:"tags,omitempty"`
	Weight       *int     `json:"weight,omitempty"`
	AliasList    []string `json:"alias_list,omitempty"`
}

// ScenePerformer is the performer summary embedded in a scene.
type ScenePerformer struct {
	Name      string   `json:"name"`
	Rating100 *int     `json:"rating100,omitempty"`
	Tags      []TagRef `json:"tags,omitempty"`
}

// Scene is a scene record as selected by sceneFields.
type Scene struct {
	ID         string           `json:"id"`
	Title      string           `json:"title,omitempty"`
	Details    string           `json:"details,omitempty"`
	Date       string           `json:"date,omitempty"` // YYYY-MM-DD
	Rating100  *int             `json:"rating100,omitempty"`
	Performers []ScenePerformer `json:"performers,omitempty"`
	Tags       []TagRef         `json:"tags,omitempty"`
}

// Studio is a studio record as selected by studioFields.
type Studio struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	URL          string     `json:"url,omitempty"`
	Details      string     `json:"details,omitempty"`
	Rating100    *int       `json:"rating100,omitempty"`
	Favorite     bool       `json:"favorite"`
	SceneCount   int        `json:"scene_count"`
	ParentStudio *NamedRef  `json:"parent_studio,omitempty"`
	ChildStudios []NamedRef `json:"child_studios,omitempty"`
	Aliases      []string   `json:"aliases,omitempty"`
	Tags         []TagRef   `json:"tags,omitempty"`
}

// Tag is a tag record as selected by tagFields.
type Tag struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	Favorite         bool       `json:"favorite"`
	SceneCount       int        `json:"scene_count"`
	SceneMarkerCount int        `json:"scene_marker_count"`
	Aliases          []string   `json:"aliases,omitempty"`
	Parents          []NamedRef `json:"parents,omitempty"`
	Children         []NamedRef `json:"children,omitempty"`
}

// Year returns the four-digit year of the scene date, or "" when undated.
func (s *Scene) Year() string {
	if len(s.Date) < 4 {
		return ""
	}
	return s.Date[:4]
}
