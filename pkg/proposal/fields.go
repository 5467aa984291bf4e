package proposal

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bascanada/proposalviewer/pkg/filter"
)

// ProjectFields is the field registry of projects.
var ProjectFields = NewRegistry(
	Field[Project]{
		Name: "name", Aliases: []string{"projectname"}, Searchable: true,
		Description: "project name",
		Values:      func(p Project) []string { return []string{p.Name} },
	},
	Field[Project]{
		Name: "entity", Searchable: true,
		Description: "owning entity, falling back to the project name",
		Values:      func(p Project) []string { return []string{p.Entity, p.Name} },
	},
	Field[Project]{
		Name: "client", Searchable: true,
		Values: func(p Project) []string { return []string{p.Client} },
	},
	Field[Project]{
		Name: "location", Searchable: true,
		Values: func(p Project) []string { return []string{p.Location} },
	},
	Field[Project]{
		Name: "country", Searchable: true,
		Values: func(p Project) []string { return []string{p.Country} },
	},
	Field[Project]{
		Name: "value", Aliases: []string{"projectvalue"}, Kind: Numeric,
		Description: "contract value",
		Values:      func(p Project) []string { return []string{p.Value} },
	},
	Field[Project]{
		Name: "year", Aliases: []string{"projectyear"}, Kind: Numeric,
		Description: "completion year",
		Values:      func(p Project) []string { return []string{p.Year} },
	},
	Field[Project]{
		Name: "services", Searchable: true,
		Description: "semicolon separated services",
		Values:      func(p Project) []string { return []string{p.Services} },
	},
	Field[Project]{
		Name: "description", Searchable: true,
		Values: func(p Project) []string { return []string{p.Description} },
	},
)

// TeamFields is the field registry of team members.
var TeamFields = NewRegistry(
	Field[TeamMember]{
		Name: "name", Aliases: []string{"projectname"}, Searchable: true,
		Values: func(m TeamMember) []string { return []string{m.Name} },
	},
	Field[TeamMember]{
		Name: "title", Searchable: true,
		Description: "job title",
		Values:      func(m TeamMember) []string { return []string{m.Title} },
	},
	Field[TeamMember]{
		Name: "bio", Searchable: true,
		Values: func(m TeamMember) []string { return []string{m.Bio} },
	},
	Field[TeamMember]{
		Name: "skills", Aliases: []string{"keyskills"}, Searchable: true,
		Description: "key skills",
		Values:      func(m TeamMember) []string { return []string{m.KeySkills} },
	},
	Field[TeamMember]{
		Name: "experience", Kind: NumericRange,
		Description: "years of experience",
		Values: func(m TeamMember) []string {
			return []string{strconv.FormatFloat(m.YearsExperience, 'f', -1, 64)}
		},
	},
)

// FilterProjects returns the projects matching filterText in their original
// order. Empty text returns projects unchanged.
func FilterProjects(projects []Project, filterText string, opts ...filter.Option) []Project {
	return ProjectFields.Filter(projects, filterText, opts...)
}

// FilterTeamMembers returns the team members matching filterText in their
// original order. Empty text returns members unchanged.
func FilterTeamMembers(members []TeamMember, filterText string, opts ...filter.Option) []TeamMember {
	return TeamFields.Filter(members, filterText, opts...)
}

// RecordKind names a filterable record collection.
type RecordKind string

const (
	KindProjects RecordKind = "projects"
	KindTeam     RecordKind = "team"
)

var ErrUnknownKind = errors.New("unknown record kind")

// ParseKind accepts the kind names used by the CLI and the API.
func ParseKind(s string) (RecordKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "projects", "project":
		return KindProjects, nil
	case "team", "members", "teammembers", "team-members":
		return KindTeam, nil
	}
	return "", fmt.Errorf("%w: %q (expected projects or team)", ErrUnknownKind, s)
}

// FieldsOf lists the registered fields of kind.
func FieldsOf(kind RecordKind) []FieldInfo {
	if kind == KindTeam {
		return TeamFields.Fields()
	}
	return ProjectFields.Fields()
}

// Explain parses filterText the way the records of kind would be filtered.
func Explain(kind RecordKind, filterText string, opts ...filter.Option) *filter.Filter {
	if kind == KindTeam {
		return TeamFields.Parse(filterText, opts...)
	}
	return ProjectFields.Parse(filterText, opts...)
}

// FieldNames lists every accepted field name of kind, aliases included.
func FieldNames(kind RecordKind) []string {
	if kind == KindTeam {
		return TeamFields.Names()
	}
	return ProjectFields.Names()
}
