package domain

import "github.com/uaip-labs/uaip/internal/constants"

// StageValidation is the transient output of a stage-gate check. It is
// never persisted; the orchestrator converts a failing validation into a
// StageGateError for the caller.
type StageValidation struct {
	// CanProceed is true only if there are zero missing items, zero
	// concerns, and the completeness score meets the gate threshold.
	CanProceed bool `json:"can_proceed"`

	// CompletenessScore is passed checks over total checks (0.0-1.0).
	// Forced to 0.0 when the stage input is entirely empty.
	CompletenessScore float64 `json:"completeness_score"`

	// MissingItems names the mandatory fields that are absent or empty.
	MissingItems []string `json:"missing_items,omitempty"`

	// Concerns lists stage-specific semantic rule violations.
	Concerns []string `json:"validation_concerns,omitempty"`

	// Recommendations suggest how to resolve the missing items/concerns.
	Recommendations []string `json:"recommendations,omitempty"`
}

// QualityAssessment is the transient result of scoring one user
// response. Scores are clamped to [0,10].
type QualityAssessment struct {
	// QualityScore is the overall response score (0-10).
	QualityScore int `json:"quality_score"`

	// IsAcceptable is true when the score meets the configured threshold.
	IsAcceptable bool `json:"is_acceptable"`

	// Issues describes what is lacking in the response.
	Issues []string `json:"issues,omitempty"`

	// SuggestedFollowups are validator-proposed follow-up questions,
	// preferred over LLM-synthesized ones.
	SuggestedFollowups []string `json:"suggested_followups,omitempty"`

	// ExamplesToProvide are concrete examples to show the user.
	ExamplesToProvide []string `json:"examples_to_provide,omitempty"`
}

// Contradiction records one cross-stage inconsistency found by the
// consistency checker.
type Contradiction struct {
	StageFrom   int    `json:"stage_from"`
	StageTo     int    `json:"stage_to"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

// ConsistencyReport is the transient output of the cross-stage
// consistency check. Consistency findings are advisory: only the
// INFEASIBLE tier blocks charter generation.
type ConsistencyReport struct {
	IsConsistent       bool                  `json:"is_consistent"`
	OverallFeasibility constants.Feasibility `json:"overall_feasibility"`
	Contradictions     []Contradiction       `json:"contradictions,omitempty"`
	RiskAreas          []string              `json:"risk_areas,omitempty"`
	Recommendations    []string              `json:"recommendations,omitempty"`
}

// Charter is the final aggregated document combining all five stage
// deliverables plus the governance decision.
type Charter struct {
	SessionID          string                       `json:"session_id"`
	ProjectName        string                       `json:"project_name"`
	GeneratedAt        string                       `json:"generated_at"`
	ProblemStatement   ProblemStatement             `json:"problem_statement"`
	MetricAlignment    MetricAlignment              `json:"metric_alignment"`
	DataFeasibility    DataFeasibilityReport        `json:"data_feasibility"`
	UXPlan             UXPlan                       `json:"ux_plan"`
	EthicalAssessment  EthicalAssessment            `json:"ethical_assessment"`
	GovernanceDecision constants.GovernanceDecision `json:"governance_decision"`
	OverallFeasibility constants.CharterFeasibility `json:"overall_feasibility"`
	ConsistencyReport  *ConsistencyReport           `json:"consistency_report,omitempty"`
}
