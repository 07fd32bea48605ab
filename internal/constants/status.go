package constants

// SessionStatus represents the state of a scoping session.
// Status values use snake_case for JSON serialization compatibility.
type SessionStatus string

// Session status constants define the valid states a session can be in.
//
//	InProgress → Paused, Abandoned, Completed (after stage 5 accepted)
//	Paused     → InProgress, Abandoned
//	Completed, Abandoned are terminal.
const (
	// SessionStatusInProgress indicates the interview is underway.
	SessionStatusInProgress SessionStatus = "in_progress"

	// SessionStatusCompleted indicates stage 5's output was accepted and
	// the session is eligible for charter generation.
	SessionStatusCompleted SessionStatus = "completed"

	// SessionStatusAbandoned indicates the session was given up, either
	// explicitly or by an external inactivity policy.
	SessionStatusAbandoned SessionStatus = "abandoned"

	// SessionStatusPaused indicates the session was interrupted and can
	// be resumed from its latest checkpoint.
	SessionStatusPaused SessionStatus = "paused"
)

// String implements fmt.Stringer for convenient logging.
func (s SessionStatus) String() string {
	return string(s)
}

// EngineState represents the state of the per-question conversation engine.
type EngineState string

// Engine state constants.
//
//	Idle → WaitingForResponse (StartTurn)
//	WaitingForResponse → Validating (ProcessResponse)
//	Validating → WaitingForResponse (follow-up) | Complete (accept/escalate)
//	any → Error (unrecoverable failure)
const (
	// EngineStateIdle is the initial state; no question is in flight.
	EngineStateIdle EngineState = "idle"

	// EngineStateWaitingForResponse means a question was asked and the
	// engine is waiting for user input.
	EngineStateWaitingForResponse EngineState = "waiting_for_response"

	// EngineStateValidating means a response is being quality-checked.
	EngineStateValidating EngineState = "validating"

	// EngineStateComplete means the question was resolved (accepted or
	// escalated). A new turn may be started from this state.
	EngineStateComplete EngineState = "complete"

	// EngineStateError means an unrecoverable failure occurred.
	EngineStateError EngineState = "error"
)

// String implements fmt.Stringer.
func (s EngineState) String() string {
	return string(s)
}

// MessageRole identifies the author of a conversation message.
type MessageRole string

// Message role constants.
const (
	// RoleAssistant marks questions and follow-ups asked by the system.
	RoleAssistant MessageRole = "assistant"

	// RoleUser marks responses typed by the user.
	RoleUser MessageRole = "user"

	// RoleSystem marks engine-generated annotations (escalations, errors).
	RoleSystem MessageRole = "system"
)

// Feasibility is the overall feasibility tier reported by the
// consistency checker and recorded in the charter.
type Feasibility string

// Feasibility tiers, from best to worst.
const (
	FeasibilityHigh       Feasibility = "HIGH"
	FeasibilityMedium     Feasibility = "MEDIUM"
	FeasibilityLow        Feasibility = "LOW"
	FeasibilityInfeasible Feasibility = "INFEASIBLE"
)

// CharterFeasibility is the charter-level outcome derived from the
// stage-5 governance decision (not from the consistency report).
type CharterFeasibility string

// Charter feasibility values.
const (
	CharterFeasible    CharterFeasibility = "HIGH"
	CharterMedium      CharterFeasibility = "MEDIUM"
	CharterLow         CharterFeasibility = "LOW"
	CharterNotFeasible CharterFeasibility = "NOT_FEASIBLE"
)

// GovernanceDecision is the automated proceed/revise/halt recommendation
// derived from the stage-5 ethical risk assessment.
type GovernanceDecision string

// Governance decision constants, from most to least permissive.
const (
	GovernanceProceed               GovernanceDecision = "proceed"
	GovernanceProceedWithMonitoring GovernanceDecision = "proceed_with_monitoring"
	GovernanceRevise                GovernanceDecision = "revise"
	GovernanceSubmitToCommittee     GovernanceDecision = "submit_to_committee"
	GovernanceHalt                  GovernanceDecision = "halt"
)

// String implements fmt.Stringer.
func (d GovernanceDecision) String() string {
	return string(d)
}

// RiskSeverity classifies a residual ethical risk score.
type RiskSeverity string

// Risk severity constants.
const (
	RiskCritical RiskSeverity = "CRITICAL"
	RiskHigh     RiskSeverity = "HIGH"
	RiskMedium   RiskSeverity = "MEDIUM"
	RiskLow      RiskSeverity = "LOW"
)
