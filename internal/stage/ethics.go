package stage

import (
	"context"
	"fmt"
	"strings"

	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
)

// EthicsAgent runs the stage-5 Ethical Governance interview. Beyond
// collecting the per-principle assessments it derives the governance
// decision from the scored residual risks.
type EthicsAgent struct {
	interviewer *Interviewer
	bands       domain.RiskBands
}

// StageNumber implements Agent.
func (a *EthicsAgent) StageNumber() int { return 5 }

// Name implements Agent.
func (a *EthicsAgent) Name() string { return constants.StageNameEthicalGovernance }

// ConductInterview implements Agent.
func (a *EthicsAgent) ConductInterview(ctx context.Context, sess *domain.Session) (domain.StageDeliverable, []domain.Message, error) {
	answers, transcript, err := a.interviewer.Run(ctx, sess.ID, a.StageNumber())
	if err != nil {
		return nil, transcript, err
	}

	assessments := make(map[string]string, len(constants.EthicalPrinciples))
	for _, principle := range constants.EthicalPrinciples {
		assessments[principle] = answers["principle_"+principle]
	}

	risks := ParseRisks(answers["residual_risks"])
	decision := domain.DeriveGovernanceDecision(risks, a.bands)

	deliverable := domain.EthicalAssessment{
		PrincipleAssessments: assessments,
		ResidualRisks:        risks,
		Mitigations:          answers["mitigations"],
		Decision:             decision.String(),
		DecisionRationale:    a.rationale(risks, decision),
	}
	return deliverable, transcript, nil
}

// rationale explains the derived decision in terms of the band counts.
func (a *EthicsAgent) rationale(risks []domain.ResidualRisk, decision constants.GovernanceDecision) string {
	if len(risks) == 0 {
		return "no residual risks were identified"
	}

	counts := map[constants.RiskSeverity]int{}
	for _, r := range risks {
		counts[a.bands.Classify(r.Score)]++
	}

	var parts []string
	for _, severity := range []constants.RiskSeverity{
		constants.RiskCritical, constants.RiskHigh, constants.RiskMedium, constants.RiskLow,
	} {
		if n := counts[severity]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, severity))
		}
	}

	return fmt.Sprintf("residual risks (%s) require %s", strings.Join(parts, ", "), decision)
}
