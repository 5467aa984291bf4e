// Package printer writes filtered records, field listings and parsed filters
// to the terminal as aligned tables, colored JSON or user templates.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"text/template"

	"github.com/TylerBrock/colorjson"

	"github.com/bascanada/proposalviewer/pkg/filter"
	"github.com/bascanada/proposalviewer/pkg/proposal"
)

// Format selects how records are written.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

type Options struct {
	Format Format
	// Template is a text/template executed once per record, overriding Format.
	Template string
	// Color forces color on or off; nil detects it from the writer.
	Color *bool
}

type Printer struct {
	w    io.Writer
	opts Options
	tmpl *template.Template
}

func New(w io.Writer, opts Options) (*Printer, error) {
	InitColorState(opts.Color, w)

	p := &Printer{w: w, opts: opts}
	if opts.Template != "" {
		tmpl, err := template.New("record").Funcs(GetTemplateFunctionsMap()).Parse(opts.Template + "\n")
		if err != nil {
			return nil, fmt.Errorf("invalid template: %w", err)
		}
		p.tmpl = tmpl
	}
	return p, nil
}

// Projects writes the matched projects followed by a matched/total footer.
func (p *Printer) Projects(projects []proposal.Project, total int) error {
	if p.opts.Format == FormatJSON {
		return p.JSON(projects)
	}
	if p.tmpl != nil {
		return p.execute(projects)
	}

	w := tabwriter.NewWriter(p.w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, header("NAME", "ENTITY", "CLIENT", "COUNTRY", "YEAR", "VALUE", "SERVICES"))
	for _, pr := range projects {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			Default(pr.Name, "-"), Default(pr.Entity, "-"), Default(pr.Client, "-"),
			Default(pr.Country, "-"), Default(pr.Year, "-"), Default(pr.Value, "-"),
			Truncate(40, strings.Join(Services(pr.Services), ", ")))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return p.footer(len(projects), total, "projects")
}

// Team writes the matched team members followed by a matched/total footer.
func (p *Printer) Team(members []proposal.TeamMember, total int) error {
	if p.opts.Format == FormatJSON {
		return p.JSON(members)
	}
	if p.tmpl != nil {
		return p.execute(members)
	}

	w := tabwriter.NewWriter(p.w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, header("NAME", "TITLE", "EXPERIENCE", "SKILLS"))
	for _, m := range members {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			Default(m.Name, "-"), Default(m.Title, "-"), Years(m.YearsExperience),
			Truncate(40, Default(m.KeySkills, "-")))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return p.footer(len(members), total, "team members")
}

// Fields writes a registry listing.
func (p *Printer) Fields(fields []proposal.FieldInfo) error {
	if p.opts.Format == FormatJSON {
		return p.JSON(fields)
	}

	w := tabwriter.NewWriter(p.w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, header("FIELD", "ALIASES", "KIND", "BARE TERMS", "DESCRIPTION"))
	for _, f := range fields {
		search := ""
		if f.Searchable {
			search = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			f.Name, Default(strings.Join(f.Aliases, ", "), "-"), f.Kind, Default(search, "-"), f.Description)
	}
	return w.Flush()
}

// Documents writes document summaries, marking current.
func (p *Printer) Documents(docs []proposal.DocumentSummary, current string) error {
	if p.opts.Format == FormatJSON {
		return p.JSON(docs)
	}

	w := tabwriter.NewWriter(p.w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, header("CURRENT", "NAME", "TITLE", "TABS", "PROJECTS", "TEAM"))
	for _, d := range docs {
		prefix := " "
		if d.Name == current {
			prefix = "*"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n", prefix, d.Name, Default(d.Title, "-"), d.Tabs, d.Projects, d.TeamMembers)
	}
	return w.Flush()
}

// Filter writes a parsed filter as its canonical text and an indented tree.
func (p *Printer) Filter(f *filter.Filter) error {
	if p.opts.Format == FormatJSON {
		return p.JSON(f)
	}

	fmt.Fprintf(p.w, "%s %s\n", headerColor.Sprint("parsed:"), f.String())
	var b strings.Builder
	writeTree(&b, f, 0)
	_, err := io.WriteString(p.w, b.String())
	return err
}

func writeTree(b *strings.Builder, f *filter.Filter, depth int) {
	indent := strings.Repeat("  ", depth)
	switch {
	case f == nil || f.IsEmpty():
		fmt.Fprintf(b, "%s%s\n", indent, mutedColor.Sprint("(match all)"))
	case f.Logic != "":
		fmt.Fprintf(b, "%s%s\n", indent, logicColor.Sprint(string(f.Logic)))
		for i := range f.Filters {
			writeTree(b, &f.Filters[i], depth+1)
		}
	default:
		field := f.Field
		if f.Bare {
			field = "any field"
		}
		fmt.Fprintf(b, "%s%s %s %q\n", indent, Highlight(field), f.Op, f.Value)
	}
}

// JSON writes v indented, colored when color is enabled.
func (p *Printer) JSON(v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if IsColorEnabled() {
		var obj interface{}
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		f := colorjson.NewFormatter()
		f.Indent = 2
		if data, err = f.Marshal(obj); err != nil {
			return err
		}
	} else {
		var buf strings.Builder
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return err
		}
		_, err := io.WriteString(p.w, buf.String())
		return err
	}

	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

func (p *Printer) execute(records interface{}) error {
	switch rs := records.(type) {
	case []proposal.Project:
		for _, r := range rs {
			if err := p.tmpl.Execute(p.w, r); err != nil {
				return err
			}
		}
	case []proposal.TeamMember:
		for _, r := range rs {
			if err := p.tmpl.Execute(p.w, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *Printer) footer(matched, total int, noun string) error {
	_, err := fmt.Fprintln(p.w, mutedColor.Sprintf("%d/%d %s", matched, total, noun))
	return err
}

// header joins table columns. Colors would skew tabwriter widths.
func header(cols ...string) string {
	return strings.Join(cols, "\t")
}
