package domain

import "github.com/uaip-labs/uaip/internal/constants"

// RiskBands holds the residual-risk severity band boundaries. The
// default boundaries come from the governing policy document; they are
// configuration, not inferred business logic.
type RiskBands struct {
	// CriticalMin is the minimum score classified as CRITICAL.
	CriticalMin int `json:"critical_min" mapstructure:"critical_min"`

	// HighMin is the minimum score classified as HIGH.
	HighMin int `json:"high_min" mapstructure:"high_min"`

	// MediumMin is the minimum score classified as MEDIUM.
	MediumMin int `json:"medium_min" mapstructure:"medium_min"`
}

// DefaultRiskBands returns the policy-default band boundaries.
func DefaultRiskBands() RiskBands {
	return RiskBands{
		CriticalMin: constants.RiskScoreCriticalMin,
		HighMin:     constants.RiskScoreHighMin,
		MediumMin:   constants.RiskScoreMediumMin,
	}
}

// Classify maps a residual-risk score to its severity band.
func (b RiskBands) Classify(score int) constants.RiskSeverity {
	switch {
	case score >= b.CriticalMin:
		return constants.RiskCritical
	case score >= b.HighMin:
		return constants.RiskHigh
	case score >= b.MediumMin:
		return constants.RiskMedium
	default:
		return constants.RiskLow
	}
}

// DeriveGovernanceDecision applies the governance rules to a set of
// residual risks:
//
//	any CRITICAL       → halt
//	two or more HIGH   → submit_to_committee
//	exactly one HIGH   → revise
//	any MEDIUM         → proceed_with_monitoring
//	otherwise          → proceed
func DeriveGovernanceDecision(risks []ResidualRisk, bands RiskBands) constants.GovernanceDecision {
	var highs, mediums int
	for _, r := range risks {
		switch bands.Classify(r.Score) {
		case constants.RiskCritical:
			return constants.GovernanceHalt
		case constants.RiskHigh:
			highs++
		case constants.RiskMedium:
			mediums++
		case constants.RiskLow:
		}
	}
	switch {
	case highs >= 2:
		return constants.GovernanceSubmitToCommittee
	case highs == 1:
		return constants.GovernanceRevise
	case mediums > 0:
		return constants.GovernanceProceedWithMonitoring
	default:
		return constants.GovernanceProceed
	}
}

// FeasibilityFromDecision derives the charter-level feasibility from the
// stage-5 governance decision. Ethical governance is the authoritative
// feasibility source; the consistency report is a secondary sanity pass.
func FeasibilityFromDecision(d constants.GovernanceDecision) constants.CharterFeasibility {
	switch d {
	case constants.GovernanceHalt:
		return constants.CharterNotFeasible
	case constants.GovernanceSubmitToCommittee, constants.GovernanceRevise:
		return constants.CharterLow
	case constants.GovernanceProceedWithMonitoring:
		return constants.CharterMedium
	case constants.GovernanceProceed:
		return constants.CharterFeasible
	}
	// Unknown decisions are treated conservatively.
	return constants.CharterLow
}
