package annotation

import "photoapp/models"

// State of one asset with respect to label analysis.
type State int

const (
	StateUnknownAsset State = iota
	StateNotAnalyzed
	StateAnalyzed
	// StateAnalysisEmpty is a vision call that found nothing. Nothing is
	// stored for it, so the next request sees StateNotAnalyzed again.
	StateAnalysisEmpty
)

func (s State) String() string {
	switch s {
	case StateUnknownAsset:
		return "UNKNOWN_ASSET"
	case StateNotAnalyzed:
		return "NOT_ANALYZED"
	case StateAnalyzed:
		return "ANALYZED"
	case StateAnalysisEmpty:
		return "ANALYSIS_EMPTY"
	}
	return "INVALID"
}

// Result of annotating one asset.
type Result struct {
	State  State
	Asset  models.Asset
	Labels []models.Label
}
