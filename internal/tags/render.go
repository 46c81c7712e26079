package tags

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// Template names, one per tag
const (
	TemplateAirmass                 = "airmass.html"
	TemplateAirmassCollapse         = "airmass_collapse.html"
	TemplateLightcurve              = "lightcurve.html"
	TemplateLightcurveCollapse      = "lightcurve_collapse.html"
	TemplateMoon                    = "moon.html"
	TemplateSpectra                 = "spectra.html"
	TemplateSpectraCollapse         = "spectra_collapse.html"
	TemplateAladinCollapse          = "aladin_collapse.html"
	TemplateClassificationsDropdown = "classifications_dropdown.html"
	TemplateScienceTagsDropdown     = "science_tags_dropdown.html"
	TemplateCustomUploadDataProduct = "custom_upload_dataproduct.html"
	TemplateDashLightcurve          = "dash_lightcurve.html"
	TemplateDataProductUpdate       = "dataproduct_update.html"
)

// Renderer executes the tag templates
type Renderer struct {
	templates *template.Template
}

var funcs = template.FuncMap{
	"toJSON": func(v any) (string, error) {
		out, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(out), nil
	},
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	t, err := template.New("tags").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse tag templates: %w", err)
	}
	return &Renderer{templates: t}, nil
}

// Render writes the named template filled with c
func (r *Renderer) Render(w io.Writer, name string, c Context) error {
	if r.templates.Lookup(name) == nil {
		return fmt.Errorf("unknown template %q", name)
	}
	if err := r.templates.ExecuteTemplate(w, name, c); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	return nil
}

// RenderString renders the named template into a string
func (r *Renderer) RenderString(name string, c Context) (string, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, c); err != nil {
		return "", err
	}
	return buf.String(), nil
}
