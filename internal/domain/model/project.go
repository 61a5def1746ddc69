// Package model contains domain records passed between the collaborators and the pages.
package model

import "errors"

// Sentinel kinds for collaborator failures. Pages surface both as a single message.
var (
	ErrNotFound  = errors.New("not found")
	ErrTransport = errors.New("transport failure")
)

// ProjectSummary describes a project shown in the marketplace and on the overview page.
type ProjectSummary struct {
	ID               string `json:"_id" yaml:"_id"`
	Name             string `json:"name" yaml:"name"`
	Src              string `json:"src" yaml:"src"`                           // banner image
	TotalExperiments int    `json:"totalExperiments" yaml:"totalExperiments"` // aggregate counter
	Deploy           Scalar `json:"deploy" yaml:"deploy"`                     // deployment status, rendered verbatim
}
