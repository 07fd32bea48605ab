package conversation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/uaip-labs/uaip/internal/clock"
	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
	uaiperrors "github.com/uaip-labs/uaip/internal/errors"
	"github.com/uaip-labs/uaip/internal/llm"
	"github.com/uaip-labs/uaip/internal/quality"
)

// genericFollowUp is the last-resort follow-up when neither the
// evaluator nor the LLM produced one.
const genericFollowUp = "Could you expand on that? Specific examples, numbers, or named systems make the answer much more useful."

// TurnResult is the structured outcome of processing one user response.
type TurnResult struct {
	// QualityScore is the (possibly degraded) 0-10 score.
	QualityScore int

	// IsAcceptable is true when the score met the evaluator's threshold.
	IsAcceptable bool

	// Issues describes what the evaluator found lacking.
	Issues []string

	// SuggestedFollowups are the evaluator's proposed follow-ups.
	SuggestedFollowups []string

	// Escalated is true when the response was force-accepted after
	// exhausting the retry budget.
	Escalated bool

	// FollowUpQuestion is set when the engine asked a follow-up and is
	// waiting for another response.
	FollowUpQuestion string

	// Complete is true when the question is resolved (accepted or
	// escalated) and a new turn may be started.
	Complete bool
}

// Engine drives a single question through ask, validate, follow-up, and
// accept/escalate. It is NOT safe for concurrent use: one engine serves
// one question thread at a time, matching the one-context-per-question
// lifecycle.
type Engine struct {
	cctx        *Context
	state       constants.EngineState
	evaluator   quality.Agent
	router      llm.Router
	clk         clock.Clock
	logger      zerolog.Logger
	evalTimeout time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithClock overrides the engine's clock, for tests.
func WithClock(c clock.Clock) EngineOption {
	return func(e *Engine) {
		e.clk = c
	}
}

// WithEvaluationTimeout overrides the quality-evaluation timeout.
func WithEvaluationTimeout(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.evalTimeout = d
	}
}

// NewEngine creates a conversation engine for one question thread.
// The evaluator scores responses; the router synthesizes follow-up
// questions when the evaluator does not suggest one.
func NewEngine(cctx *Context, evaluator quality.Agent, router llm.Router, logger zerolog.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		cctx:        cctx,
		state:       constants.EngineStateIdle,
		evaluator:   evaluator,
		router:      router,
		clk:         clock.System{},
		logger:      logger,
		evalTimeout: constants.DefaultEvaluationTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State returns the current engine state.
func (e *Engine) State() constants.EngineState {
	return e.state
}

// Context returns the engine's conversation context.
func (e *Engine) Context() *Context {
	return e.cctx
}

// StartTurn begins a new question. Valid only from the idle or complete
// states. The question is recorded as an assistant message and the
// engine waits for a response.
func (e *Engine) StartTurn(question string) error {
	if e.state != constants.EngineStateIdle && e.state != constants.EngineStateComplete {
		return fmt.Errorf("%w: cannot start turn from state %s",
			uaiperrors.ErrConversationState, e.state)
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return uaiperrors.ErrEmptyQuestion
	}
	if len(question) > constants.MaxQuestionLength {
		return fmt.Errorf("%w: %d chars (limit %d)",
			uaiperrors.ErrQuestionTooLong, len(question), constants.MaxQuestionLength)
	}

	e.cctx.SetQuestion(question)
	e.cctx.AddMessage(constants.RoleAssistant, question, e.clk.Now(), nil)
	e.state = constants.EngineStateWaitingForResponse

	e.logger.Debug().
		Str("session_id", e.cctx.SessionID).
		Int("stage", e.cctx.StageNumber).
		Msg("turn started")

	return nil
}

// ProcessResponse handles one user response. Valid only from the
// waiting_for_response state.
//
// Injection-matching input is rejected fail-closed before any state
// changes. Quality evaluation runs under a bounded timeout; evaluator
// failure degrades to a low-quality assessment rather than aborting the
// interview. Exhausting the attempt budget force-accepts the response
// with Escalated=true.
func (e *Engine) ProcessResponse(ctx context.Context, response string) (*TurnResult, error) {
	if e.state != constants.EngineStateWaitingForResponse {
		return nil, fmt.Errorf("%w: cannot process response from state %s",
			uaiperrors.ErrConversationState, e.state)
	}

	if strings.TrimSpace(response) == "" {
		return nil, fmt.Errorf("%w: response", uaiperrors.ErrEmptyValue)
	}
	if len(response) > constants.MaxResponseLength {
		return nil, fmt.Errorf("%w: %d chars (limit %d)",
			uaiperrors.ErrResponseTooLong, len(response), constants.MaxResponseLength)
	}

	// Fail closed on injection: no message is recorded, no attempt is
	// consumed, and the state stays waiting_for_response.
	if DetectInjection(response) {
		e.logger.Warn().
			Str("session_id", e.cctx.SessionID).
			Int("stage", e.cctx.StageNumber).
			Msg("prompt injection rejected")
		return nil, uaiperrors.ErrPromptInjection
	}

	if err := ctx.Err(); err != nil {
		e.state = constants.EngineStateError
		return nil, err
	}

	e.state = constants.EngineStateValidating
	e.cctx.AttemptCount++
	e.cctx.AddMessage(constants.RoleUser, response, e.clk.Now(), map[string]any{
		"attempt": e.cctx.AttemptCount,
	})

	assessment := e.evaluate(ctx, response)

	result := &TurnResult{
		QualityScore:       assessment.QualityScore,
		IsAcceptable:       assessment.IsAcceptable,
		Issues:             assessment.Issues,
		SuggestedFollowups: assessment.SuggestedFollowups,
	}

	switch {
	case assessment.IsAcceptable:
		e.state = constants.EngineStateComplete
		result.Complete = true

	case e.cctx.AttemptsExhausted():
		// Force-accept: visible to the user as "accepted with quality
		// concerns", never a silent pass.
		e.cctx.AddMessage(constants.RoleSystem,
			"response accepted with quality concerns after maximum attempts",
			e.clk.Now(), map[string]any{
				"type":    "escalation",
				"attempt": e.cctx.AttemptCount,
			})
		e.state = constants.EngineStateComplete
		result.Escalated = true
		result.Complete = true

		e.logger.Info().
			Str("session_id", e.cctx.SessionID).
			Int("stage", e.cctx.StageNumber).
			Int("attempts", e.cctx.AttemptCount).
			Msg("response escalated after max attempts")

	default:
		followUp := e.generateFollowUp(ctx, assessment, response)
		e.cctx.AddMessage(constants.RoleAssistant, followUp, e.clk.Now(), map[string]any{
			"type":    "follow_up",
			"attempt": e.cctx.AttemptCount,
		})
		e.state = constants.EngineStateWaitingForResponse
		result.FollowUpQuestion = followUp
	}

	return result, nil
}

// evaluate scores the response under a bounded timeout. Evaluator
// failure or timeout yields a degraded assessment: one bad validator
// call must not abort the whole interview.
func (e *Engine) evaluate(ctx context.Context, response string) *domain.QualityAssessment {
	evalCtx, cancel := context.WithTimeout(ctx, e.evalTimeout)
	defer cancel()

	assessment, err := e.evaluator.EvaluateResponse(evalCtx, e.cctx.CurrentQuestion, response, e.cctx.History)
	if err != nil || assessment == nil {
		e.logger.Warn().
			Err(err).
			Str("session_id", e.cctx.SessionID).
			Int("stage", e.cctx.StageNumber).
			Msg("quality evaluation failed, degrading to low-quality assessment")
		return &domain.QualityAssessment{
			QualityScore: constants.DegradedQualityScore,
			IsAcceptable: false,
			Issues:       []string{"quality evaluation unavailable"},
		}
	}
	return assessment
}

// generateFollowUp picks the follow-up question to ask next: an
// evaluator suggestion if present, an LLM-synthesized question second,
// and a generic prompt as the last resort.
func (e *Engine) generateFollowUp(ctx context.Context, assessment *domain.QualityAssessment, response string) string {
	if len(assessment.SuggestedFollowups) > 0 {
		if s := strings.TrimSpace(assessment.SuggestedFollowups[0]); s != "" {
			return s
		}
	}

	prompt := fmt.Sprintf(
		"The interview question was: %s\nThe answer was: %s\nIdentified gaps: %s\nWrite ONE short follow-up question that elicits the missing detail. Reply with the question only.",
		SanitizeForPrompt(e.cctx.CurrentQuestion),
		SanitizeForPrompt(response),
		SanitizeForPrompt(strings.Join(assessment.Issues, "; ")),
	)

	resp, err := e.router.Route(ctx, &llm.Request{
		Prompt:          prompt,
		ModelPreference: "fast",
	})
	if err != nil || resp == nil || strings.TrimSpace(resp.Content) == "" {
		e.logger.Debug().
			Err(err).
			Str("session_id", e.cctx.SessionID).
			Msg("follow-up synthesis failed, using generic prompt")
		return genericFollowUp
	}

	followUp := strings.TrimSpace(resp.Content)
	if len(followUp) > constants.MaxQuestionLength {
		followUp = followUp[:constants.MaxQuestionLength]
	}
	return followUp
}
