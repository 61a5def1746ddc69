// Package routes reads route parameters and builds outbound page links.
package routes

import "net/url"

// Page paths served or linked by the dashboard.
const (
	MarketplaceAI     = "/marketplace/ai"
	ProjectOverview   = "/project/overview"
	Experiments       = "/project/experiments"
	ExperimentUpload  = "/project/experiments/upload"
	ExperimentDeploy  = "/project/experiments/deploy"
	ExperimentDetails = "/project/experiments/details"
	Settings          = "#"
)

// QueryID returns the id query parameter when it is present exactly once and non-empty.
// A repeated parameter is a list, not a string, and is rejected.
func QueryID(q url.Values) (string, bool) {
	vals, ok := q["id"]
	if !ok || len(vals) != 1 || vals[0] == "" {
		return "", false
	}
	return vals[0], true
}

// Deploy links to the deploy page for the given project.
func Deploy(projectID, projectName string) string {
	q := url.Values{}
	q.Set("projectId", projectID)
	q.Set("projectName", projectName)
	return ExperimentDeploy + "?" + q.Encode()
}
