// Package layout provides the document shell shared by the dashboard pages.
package layout

import (
	"embed"
	"html/template"
	"io/fs"
)

//go:embed templates/*.html
var shellFS embed.FS

// Parse builds a page template named name from the shared shell plus the page
// templates matched by patterns in fsys. The page must define "content" and may
// override "sidebar".
func Parse(name string, fsys fs.FS, patterns ...string) (*template.Template, error) {
	t, err := template.New(name).ParseFS(shellFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return t.ParseFS(fsys, patterns...)
}
