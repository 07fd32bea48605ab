package stage

import (
	"context"

	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
)

// UXAgent runs the stage-4 User Experience interview and produces the
// UX plan.
type UXAgent struct {
	interviewer *Interviewer
}

// StageNumber implements Agent.
func (a *UXAgent) StageNumber() int { return 4 }

// Name implements Agent.
func (a *UXAgent) Name() string { return constants.StageNameUserExperience }

// ConductInterview implements Agent.
func (a *UXAgent) ConductInterview(ctx context.Context, sess *domain.Session) (domain.StageDeliverable, []domain.Message, error) {
	answers, transcript, err := a.interviewer.Run(ctx, sess.ID, a.StageNumber())
	if err != nil {
		return nil, transcript, err
	}

	deliverable := domain.UXPlan{
		PrimaryPersona:    answers["primary_persona"],
		InteractionMode:   answers["interaction_mode"],
		FailureExperience: answers["failure_experience"],
		FeedbackMechanism: answers["feedback_mechanism"],
		AdoptionRisks:     answers["adoption_risks"],
	}
	return deliverable, transcript, nil
}
