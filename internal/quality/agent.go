// Package quality scores user responses against the question that was
// asked. The conversation engine consumes the Agent interface; the
// default implementation reasons over an LLM router.
package quality

import (
	"context"

	"github.com/uaip-labs/uaip/internal/domain"
)

// Agent evaluates one user response in the context of its question and
// the conversation so far.
//
// Implementations are called under a deadline set by the conversation
// engine. A returned error is absorbed by the engine into a degraded
// low-quality assessment, never propagated to the interview.
type Agent interface {
	EvaluateResponse(ctx context.Context, question, response string, history []domain.Message) (*domain.QualityAssessment, error)
}

// AgentFunc adapts a function to the Agent interface. Used by tests to
// script assessments.
type AgentFunc func(ctx context.Context, question, response string, history []domain.Message) (*domain.QualityAssessment, error)

// EvaluateResponse implements Agent.
func (f AgentFunc) EvaluateResponse(ctx context.Context, question, response string, history []domain.Message) (*domain.QualityAssessment, error) {
	return f(ctx, question, response, history)
}
