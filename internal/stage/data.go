package stage

import (
	"context"

	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
)

// DataAgent runs the stage-3 Data Feasibility interview and produces
// the data feasibility report with per-dimension quality scores.
type DataAgent struct {
	interviewer *Interviewer
}

// StageNumber implements Agent.
func (a *DataAgent) StageNumber() int { return 3 }

// Name implements Agent.
func (a *DataAgent) Name() string { return constants.StageNameDataFeasibility }

// ConductInterview implements Agent.
func (a *DataAgent) ConductInterview(ctx context.Context, sess *domain.Session) (domain.StageDeliverable, []domain.Message, error) {
	answers, transcript, err := a.interviewer.Run(ctx, sess.ID, a.StageNumber())
	if err != nil {
		return nil, transcript, err
	}

	// Keep only recognized dimensions; the gate reports any that remain
	// unscored, so stray labels are dropped rather than guessed at.
	parsed := ParseScores(answers["quality_scores"])
	scores := make(map[string]float64, len(constants.QualityDimensions))
	for _, dim := range constants.QualityDimensions {
		if score, ok := parsed[dim]; ok {
			scores[dim] = score
		}
	}

	deliverable := domain.DataFeasibilityReport{
		DataSources:       SplitList(answers["data_sources"]),
		QualityScores:     scores,
		AccessConstraints: answers["access_constraints"],
		LabelingStrategy:  answers["labeling_strategy"],
		EstimatedVolume:   answers["estimated_volume"],
		RefreshCadence:    answers["refresh_cadence"],
	}
	return deliverable, transcript, nil
}
