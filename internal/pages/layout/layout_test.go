package layout

import (
	"bytes"
	"testing"
	"testing/fstest"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given a page template defining content", t, func() {
		page := fstest.MapFS{
			"page.html": {Data: []byte(`{{define "content"}}<p>{{.Body}}</p>{{end}}`)},
		}

		tmpl, err := Parse("page", page, "page.html")
		So(err, ShouldBeNil)

		Convey("When executing the shell", func() {
			var buf bytes.Buffer
			err := tmpl.ExecuteTemplate(&buf, "base", map[string]string{
				"Title": "Demo",
				"Kind":  "ready",
				"Body":  "<hello>",
			})

			Convey("Then the page content is wrapped and escaped", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldContainSubstring, "<title>Demo</title>")
				So(buf.String(), ShouldContainSubstring, `data-state="ready"`)
				So(buf.String(), ShouldContainSubstring, "<p>&lt;hello&gt;</p>")
			})
		})

		Convey("When the page pattern does not match", func() {
			_, err := Parse("page", page, "missing.html")
			So(err, ShouldNotBeNil)
		})
	})
}
