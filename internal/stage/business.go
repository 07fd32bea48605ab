package stage

import (
	"context"

	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
)

// BusinessAgent runs the stage-1 Business Translation interview and
// produces the problem statement, including the inferred ML archetype.
type BusinessAgent struct {
	interviewer *Interviewer
}

// StageNumber implements Agent.
func (a *BusinessAgent) StageNumber() int { return 1 }

// Name implements Agent.
func (a *BusinessAgent) Name() string { return constants.StageNameBusinessTranslation }

// ConductInterview implements Agent.
func (a *BusinessAgent) ConductInterview(ctx context.Context, sess *domain.Session) (domain.StageDeliverable, []domain.Message, error) {
	answers, transcript, err := a.interviewer.Run(ctx, sess.ID, a.StageNumber())
	if err != nil {
		return nil, transcript, err
	}

	deliverable := domain.ProblemStatement{
		BusinessObjective:        answers["business_objective"],
		AINecessityJustification: answers["ai_necessity_justification"],
		InputFeatures:            SplitList(answers["input_features"]),
		TargetOutput:             answers["target_output"],
		MLArchetype:              InferArchetype(answers["target_output"], answers["business_objective"]),
		MLArchetypeJustification: answers["ml_archetype_justification"],
		Stakeholders:             answers["stakeholders"],
	}
	return deliverable, transcript, nil
}
