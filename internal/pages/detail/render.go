package detail

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"io"

	"github.com/okian/projdash/internal/domain/model"
	"github.com/okian/projdash/internal/domain/viewstate"
	"github.com/okian/projdash/internal/pages/layout"
	"github.com/okian/projdash/internal/pages/routes"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(layout.Parse(PageName, templateFS, "templates/*.html"))

// searchItem is the marketplace search control shown above the record.
type searchItem struct {
	Action          string
	InitialDropdown string
	Options         []string
}

type view struct {
	Title  string
	Kind   string
	Search searchItem
	Dump   string
}

// Render writes the page for st. Loading and error both render the spinner.
func Render(w io.Writer, st viewstate.State[model.ProjectSummary]) error {
	v := view{
		Title: "Marketplace",
		Kind:  st.Kind().String(),
		Search: searchItem{
			Action:          routes.MarketplaceAI,
			InitialDropdown: "ai",
			Options:         []string{"ai", "dataset"},
		},
	}
	if project, ok := st.Value(); ok {
		dump, err := dumpJSON(project)
		if err != nil {
			return err
		}
		v.Dump = dump
	}
	return pageTemplate.ExecuteTemplate(w, "base", v)
}

// dumpJSON encodes v without HTML escaping; the template escapes the result once.
func dumpJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}
