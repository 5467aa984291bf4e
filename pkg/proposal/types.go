// Package proposal holds the proposal document records and the field
// registries that make projects and team members filterable.
package proposal

// Project is one entry of a document's project portfolio.
// Value and Year are free-form text and are compared numerically when filtered.
type Project struct {
	ID          string   `json:"id,omitempty" yaml:"id,omitempty"`
	Name        string   `json:"name,omitempty" yaml:"name,omitempty"`
	Entity      string   `json:"entity,omitempty" yaml:"entity,omitempty"`
	Client      string   `json:"client,omitempty" yaml:"client,omitempty"`
	Location    string   `json:"location,omitempty" yaml:"location,omitempty"`
	Country     string   `json:"country,omitempty" yaml:"country,omitempty"`
	Value       string   `json:"value,omitempty" yaml:"value,omitempty"`
	Year        string   `json:"year,omitempty" yaml:"year,omitempty"`
	Services    string   `json:"services,omitempty" yaml:"services,omitempty"` // semicolon separated
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	ImageURL    string   `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
}

// TeamMember is one bio of a document's team tab.
type TeamMember struct {
	ID              string  `json:"id,omitempty" yaml:"id,omitempty"`
	Name            string  `json:"name,omitempty" yaml:"name,omitempty"`
	Title           string  `json:"title,omitempty" yaml:"title,omitempty"`
	Bio             string  `json:"bio,omitempty" yaml:"bio,omitempty"`
	KeySkills       string  `json:"keySkills,omitempty" yaml:"keySkills,omitempty"`
	YearsExperience float64 `json:"yearsExperience,omitempty" yaml:"yearsExperience,omitempty"`
	Email           string  `json:"email,omitempty" yaml:"email,omitempty"`
	ImageURL        string  `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	Order           int     `json:"order,omitempty" yaml:"order,omitempty"`
}

type TabKind string

const (
	TabRichText TabKind = "richtext"
	TabMarkdown TabKind = "markdown"
	TabTeam     TabKind = "team"
	TabProjects TabKind = "projects"
)

type Tab struct {
	ID      string  `json:"id" yaml:"id"`
	Title   string  `json:"title" yaml:"title"`
	Kind    TabKind `json:"kind" yaml:"kind"`
	Content string  `json:"content,omitempty" yaml:"content,omitempty"`
}

type Theme struct {
	PrimaryColor string `json:"primaryColor,omitempty" yaml:"primaryColor,omitempty"`
	AccentColor  string `json:"accentColor,omitempty" yaml:"accentColor,omitempty"`
	Font         string `json:"font,omitempty" yaml:"font,omitempty"`
	LogoURL      string `json:"logoUrl,omitempty" yaml:"logoUrl,omitempty"`
}

// Document is a named proposal with its tabs, theme and records.
type Document struct {
	Name     string       `json:"name" yaml:"name"`
	Title    string       `json:"title,omitempty" yaml:"title,omitempty"`
	Tabs     []Tab        `json:"tabs,omitempty" yaml:"tabs,omitempty"`
	Theme    Theme        `json:"theme,omitempty" yaml:"theme,omitempty"`
	Projects []Project    `json:"projects,omitempty" yaml:"projects,omitempty"`
	Team     []TeamMember `json:"team,omitempty" yaml:"team,omitempty"`
}

// DocumentSummary is the listing view of a document.
type DocumentSummary struct {
	Name        string `json:"name" yaml:"name"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Tabs        int    `json:"tabs" yaml:"tabs"`
	Projects    int    `json:"projects" yaml:"projects"`
	TeamMembers int    `json:"teamMembers" yaml:"teamMembers"`
}

// Summary returns the listing view of d.
func (d *Document) Summary() DocumentSummary {
	return DocumentSummary{
		Name:        d.Name,
		Title:       d.Title,
		Tabs:        len(d.Tabs),
		Projects:    len(d.Projects),
		TeamMembers: len(d.Team),
	}
}
