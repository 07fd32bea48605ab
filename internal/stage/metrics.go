package stage

import (
	"context"

	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
)

// MetricsAgent runs the stage-2 Value Quantification interview and
// produces the metric alignment map.
type MetricsAgent struct {
	interviewer *Interviewer
}

// StageNumber implements Agent.
func (a *MetricsAgent) StageNumber() int { return 2 }

// Name implements Agent.
func (a *MetricsAgent) Name() string { return constants.StageNameValueQuantification }

// ConductInterview implements Agent.
func (a *MetricsAgent) ConductInterview(ctx context.Context, sess *domain.Session) (domain.StageDeliverable, []domain.Message, error) {
	answers, transcript, err := a.interviewer.Run(ctx, sess.ID, a.StageNumber())
	if err != nil {
		return nil, transcript, err
	}

	deliverable := domain.MetricAlignment{
		BusinessKPIs: []domain.MetricPair{{
			BusinessKPI: answers["business_kpi"],
			ModelMetric: answers["model_metric"],
			Baseline:    answers["baseline"],
			Target:      answers["target"],
		}},
		SuccessCriteria: answers["success_criteria"],
		EstimatedValue:  answers["estimated_value"],
		MeasurementPlan: answers["measurement_plan"],
	}
	return deliverable, transcript, nil
}
