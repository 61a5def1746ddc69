package model

import "strconv"

// ExperimentSummary is a running experiment row.
type ExperimentSummary struct {
	ID             string   `json:"_id" yaml:"_id"`
	Name           string   `json:"name" yaml:"name"`
	Epoch          int      `json:"epoch" yaml:"epoch"`
	TrainLoss      *float64 `json:"trainLoss,omitempty" yaml:"trainLoss,omitempty"`
	ValidationLoss *float64 `json:"validationLoss,omitempty" yaml:"validationLoss,omitempty"`
	Score          Scalar   `json:"score" yaml:"score"`
}

// FormatLoss renders an optional loss value; a missing value renders empty.
func FormatLoss(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
