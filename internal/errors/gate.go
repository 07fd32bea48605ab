package errors

import (
	"errors"
	"fmt"
	"strings"
)

// StageGateError is returned when advancement is refused by the
// stage-gate validator. It wraps ErrStageGateFailed and carries the
// missing items and concerns so callers can show the user exactly what
// is blocking the stage.
type StageGateError struct {
	Stage        int
	MissingItems []string
	Concerns     []string
	Score        float64
}

// NewStageGateError builds a StageGateError for the given stage.
func NewStageGateError(stage int, missing, concerns []string, score float64) *StageGateError {
	return &StageGateError{
		Stage:        stage,
		MissingItems: missing,
		Concerns:     concerns,
		Score:        score,
	}
}

// Error implements the error interface.
func (e *StageGateError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "stage gate failed: stage %d (score %.2f)", e.Stage, e.Score)
	if len(e.MissingItems) > 0 {
		fmt.Fprintf(&sb, "; missing: %s", strings.Join(e.MissingItems, ", "))
	}
	if len(e.Concerns) > 0 {
		fmt.Fprintf(&sb, "; concerns: %s", strings.Join(e.Concerns, "; "))
	}
	return sb.String()
}

// Unwrap makes errors.Is(err, ErrStageGateFailed) work.
func (e *StageGateError) Unwrap() error {
	return ErrStageGateFailed
}

// IsStageGateError extracts a StageGateError from an error chain.
func IsStageGateError(err error) (*StageGateError, bool) {
	var e *StageGateError
	ok := errors.As(err, &e)
	return e, ok
}

// CharterError is returned when charter generation cannot proceed. It
// wraps ErrCharterGeneration and enumerates either the missing stages or
// the blocking contradictions, depending on what failed.
type CharterError struct {
	Reason         string
	MissingStages  []int
	Contradictions []string
}

// Error implements the error interface.
func (e *CharterError) Error() string {
	var sb strings.Builder
	sb.WriteString("charter generation failed: ")
	sb.WriteString(e.Reason)
	if len(e.MissingStages) > 0 {
		fmt.Fprintf(&sb, " (missing stages: %v)", e.MissingStages)
	}
	if len(e.Contradictions) > 0 {
		fmt.Fprintf(&sb, " (contradictions: %s)", strings.Join(e.Contradictions, "; "))
	}
	return sb.String()
}

// Unwrap makes errors.Is(err, ErrCharterGeneration) work.
func (e *CharterError) Unwrap() error {
	return ErrCharterGeneration
}
