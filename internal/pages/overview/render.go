package overview

import (
	"embed"
	"fmt"
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

// SidebarTitle heads the project navigation.
const SidebarTitle = "Celebrity Look-alike Recommender"

type navLink struct {
	Label  string
	Href   string
	Active bool
}

type experimentRow struct {
	Name           string
	Epoch          int
	TrainLoss      string
	ValidationLoss string
	Score          string
	DeployHref     string
	RowClass       string
}

type view struct {
	Title   string
	Kind    string
	Message string

	SidebarTitle string
	Nav          []navLink

	Project           model.ProjectSummary
	UploadHref        string
	DetailsHref       string
	Feeds             []model.FeedEntry
	ExperimentsHeader string
	Experiments       []experimentRow
}

// Render writes the page for st.
func Render(w io.Writer, st viewstate.State[Data]) error {
	v := view{
		Title:        "Project Overview",
		Kind:         st.Kind().String(),
		SidebarTitle: SidebarTitle,
		Nav: []navLink{
			{Label: "Overview", Href: routes.ProjectOverview, Active: true},
			{Label: "Experiments", Href: routes.Experiments},
			{Label: "Settings", Href: routes.Settings},
		},
	}
	if msg, ok := st.Message(); ok {
		v.Message = msg
	}
	if data, ok := st.Value(); ok {
		v.Title = data.Project.Name
		v.Project = data.Project
		v.UploadHref = routes.ExperimentUpload
		v.DetailsHref = routes.ExperimentDetails
		v.Feeds = data.Feeds
		v.ExperimentsHeader = experimentsHeader(len(data.Experiments))
		v.Experiments = experimentRows(data.Project, data.Experiments)
	}
	return pageTemplate.ExecuteTemplate(w, "base", v)
}

func experimentsHeader(n int) string {
	if n == 0 {
		return "Running Experiments"
	}
	return fmt.Sprintf("Running Experiments (%d)", n)
}

func experimentRows(project model.ProjectSummary, experiments []model.ExperimentSummary) []experimentRow {
	rows := make([]experimentRow, 0, len(experiments))
	deploy := routes.Deploy(project.ID, project.Name)
	for i, exp := range experiments {
		row := experimentRow{
			Name:           exp.Name,
			Epoch:          exp.Epoch,
			TrainLoss:      model.FormatLoss(exp.TrainLoss),
			ValidationLoss: model.FormatLoss(exp.ValidationLoss),
			Score:          exp.Score.String(),
			DeployHref:     deploy,
			RowClass:       "bg-white",
		}
		if i%2 == 1 {
			row.RowClass = "bg-gray-50"
		}
		rows = append(rows, row)
	}
	return rows
}
