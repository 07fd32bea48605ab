// Package errors provides centralized error handling for the U-AIP
// scoping assistant.
//
// This package defines sentinel errors used for programmatic error
// categorization throughout the application. All error types can be
// checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import "errors"

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrSessionNotFound indicates the requested session exists neither
	// in memory nor in the store.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExists indicates an attempt to register a session ID
	// that is already registered.
	ErrSessionExists = errors.New("session already exists")

	// ErrInvalidStageNumber indicates a stage outside the range [1,5].
	ErrInvalidStageNumber = errors.New("invalid stage number")

	// ErrStageSkip indicates a request for a stage more than one ahead
	// of the session's current stage.
	ErrStageSkip = errors.New("stage skip not allowed")

	// ErrStageGateFailed indicates the stage-gate validator refused
	// advancement. Wrapped by StageGateError, which carries the missing
	// items and concerns for user display.
	ErrStageGateFailed = errors.New("stage gate failed")

	// ErrStageDataMissing indicates a stage deliverable expected to be
	// present was not found on the session.
	ErrStageDataMissing = errors.New("stage data missing")

	// ErrCharterGeneration indicates charter generation was requested
	// before completion, with missing stage data, or was blocked by an
	// infeasible consistency result. Wrapped by CharterError.
	ErrCharterGeneration = errors.New("charter generation failed")

	// ErrConversationState indicates an engine operation was invoked
	// from the wrong state.
	ErrConversationState = errors.New("invalid conversation state")

	// ErrPromptInjection indicates input was rejected by the
	// sanitization layer. The offending text must never reach an LLM
	// prompt.
	ErrPromptInjection = errors.New("prompt injection detected")

	// ErrEmptyQuestion indicates StartTurn was called with an empty
	// question.
	ErrEmptyQuestion = errors.New("question cannot be empty")

	// ErrQuestionTooLong indicates a question exceeded the length bound.
	ErrQuestionTooLong = errors.New("question exceeds length limit")

	// ErrResponseTooLong indicates a user response exceeded the length
	// bound.
	ErrResponseTooLong = errors.New("response exceeds length limit")

	// ErrPersistence wraps underlying store errors. The handling policy
	// differs by call site: session-creation failures are logged and
	// swallowed, stage-output failures are fatal and re-raised.
	ErrPersistence = errors.New("persistence failure")

	// ErrSessionTerminal indicates an operation was attempted on a
	// completed or abandoned session.
	ErrSessionTerminal = errors.New("session is in a terminal state")

	// ErrCheckpointNotFound indicates no checkpoint exists for the
	// requested session.
	ErrCheckpointNotFound = errors.New("checkpoint not found")

	// ErrStageAgentNotFound indicates no interview agent is registered
	// for the requested stage.
	ErrStageAgentNotFound = errors.New("stage agent not found")

	// ErrLLMEmptyResponse indicates the LLM router returned an empty
	// response body.
	ErrLLMEmptyResponse = errors.New("llm returned empty response")

	// ErrLLMInvalidFormat indicates the LLM response was not in the
	// expected structured format.
	ErrLLMInvalidFormat = errors.New("llm response not in expected format")

	// ErrUnknownDeliverableKind indicates a persisted deliverable
	// envelope carried an unrecognized kind tag.
	ErrUnknownDeliverableKind = errors.New("unknown deliverable kind")

	// ErrLockTimeout indicates a file lock could not be acquired within
	// the timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrValueOutOfRange indicates a configuration value is outside the
	// allowed range.
	ErrValueOutOfRange = errors.New("value out of range")

	// ErrInterviewAborted indicates the user interrupted the interview.
	ErrInterviewAborted = errors.New("interview aborted")
)
