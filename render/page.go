package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"slices"

	"volmap/filter"
	"volmap/models"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Mode selects which view the page renders.
type Mode string

const (
	CardView Mode = "Card View"
	MapView  Mode = "Map View"
)

// Modes lists the view choices in selector order.
var Modes = []Mode{CardView, MapView}

// ParseMode maps a request value onto a Mode, defaulting to the card view.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case MapView:
		return MapView
	default:
		return CardView
	}
}

type SearchInput struct {
	Name  string
	Value string
}

type Choice struct {
	Value    string
	Selected bool
}

type Dropdown struct {
	Column  string
	Choices []Choice
}

type Checkbox struct {
	Label   string
	Checked bool
}

// PageInput is everything one render pass needs.
type PageInput struct {
	Result    *models.Table
	Criteria  filter.Criteria
	Options   []filter.Option
	Mode      Mode
	Viewport  Viewport
	ExportURL string
}

// Page is the template model for the browser page.
type Page struct {
	Title        string
	Count        int
	ExportURL    string
	ExportName   string
	Mode         Mode
	Modes        []Mode
	Search       []SearchInput
	Dropdowns    []Dropdown
	Checkboxes   []Checkbox
	Cards        []Card
	EmptyMessage string
	Markers      []Marker
	Viewport     Viewport
}

func (p *Page) MapMode() bool { return p.Mode == MapView }

// NewPage builds the template model. Only the active view is computed.
func NewPage(in PageInput) *Page {
	p := &Page{
		Title:      "Volunteer Opportunities",
		Count:      in.Result.Len(),
		ExportURL:  in.ExportURL,
		ExportName: ExportFileName,
		Mode:       in.Mode,
		Modes:      Modes,
		Viewport:   in.Viewport,
	}

	for _, f := range models.SearchFields {
		p.Search = append(p.Search, SearchInput{Name: f.Name, Value: in.Criteria.Text[f.Name]})
	}
	for _, opt := range in.Options {
		selected := in.Criteria.Categories[opt.Column]
		d := Dropdown{Column: opt.Column}
		for _, v := range opt.Values {
			d.Choices = append(d.Choices, Choice{Value: v, Selected: slices.Contains(selected, v)})
		}
		p.Dropdowns = append(p.Dropdowns, d)
	}
	for _, f := range models.FocusAreas {
		p.Checkboxes = append(p.Checkboxes, Checkbox{Label: f.Label, Checked: in.Criteria.Flags[f.Label]})
	}

	if p.MapMode() {
		p.Markers = Markers(in.Result)
	} else if in.Result.Empty() {
		p.EmptyMessage = EmptyMessage
	} else {
		p.Cards = Cards(in.Result)
	}
	return p
}

// Renderer executes the embedded page template.
type Renderer struct {
	tmpl *template.Template
}

func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

func (r *Renderer) Render(w io.Writer, p *Page) error {
	return r.tmpl.ExecuteTemplate(w, "page", p)
}
