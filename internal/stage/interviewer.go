package stage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/uaip-labs/uaip/internal/conversation"
	"github.com/uaip-labs/uaip/internal/domain"
	uaiperrors "github.com/uaip-labs/uaip/internal/errors"
	"github.com/uaip-labs/uaip/internal/llm"
	"github.com/uaip-labs/uaip/internal/quality"
)

// injectionRetryNotice is prepended to the re-asked question after a
// rejected input so the user knows the previous text was discarded.
const injectionRetryNotice = "That input could not be accepted. Please answer the question directly: "

// Interviewer walks a stage's question bank through the conversation
// quality loop and collects the accepted answers. One interviewer is
// shared by all stage agents.
type Interviewer struct {
	evaluator   quality.Agent
	router      llm.Router
	responder   Responder
	logger      zerolog.Logger
	maxAttempts int
	engineOpts  []conversation.EngineOption
}

// InterviewerOption configures an Interviewer.
type InterviewerOption func(*Interviewer)

// WithMaxAttempts overrides the per-question retry budget.
func WithMaxAttempts(n int) InterviewerOption {
	return func(iv *Interviewer) {
		iv.maxAttempts = n
	}
}

// WithEngineOptions passes options through to each question's engine.
func WithEngineOptions(opts ...conversation.EngineOption) InterviewerOption {
	return func(iv *Interviewer) {
		iv.engineOpts = opts
	}
}

// NewInterviewer creates an interviewer.
func NewInterviewer(evaluator quality.Agent, router llm.Router, responder Responder, logger zerolog.Logger, opts ...InterviewerOption) *Interviewer {
	iv := &Interviewer{
		evaluator: evaluator,
		router:    router,
		responder: responder,
		logger:    logger.With().Str("component", "interviewer").Logger(),
	}
	for _, opt := range opts {
		opt(iv)
	}
	return iv
}

// Run asks every question in the stage's bank, driving each through the
// quality loop, and returns the accepted answers keyed by question key
// plus the full interview transcript.
//
// Rejected inputs (injection, empty, oversized) do not consume quality
// attempts; the question is re-asked. Repeated rejections abort the
// interview with ErrInterviewAborted so a hostile or broken input stream
// cannot loop forever.
func (iv *Interviewer) Run(ctx context.Context, sessionID string, stageNumber int) (map[string]string, []domain.Message, error) {
	questions := Questions(stageNumber)
	if len(questions) == 0 {
		return nil, nil, fmt.Errorf("%w: %d", uaiperrors.ErrInvalidStageNumber, stageNumber)
	}

	cctx := conversation.NewContext(sessionID, stageNumber, iv.maxAttempts)
	engine := conversation.NewEngine(cctx, iv.evaluator, iv.router, iv.logger, iv.engineOpts...)

	answers := make(map[string]string, len(questions))
	for _, q := range questions {
		answer, err := iv.askOne(ctx, engine, cctx, q)
		if err != nil {
			return nil, cctx.Messages(), err
		}
		answers[q.Key] = answer
	}

	iv.logger.Debug().
		Str("session_id", sessionID).
		Int("stage", stageNumber).
		Int("questions", len(questions)).
		Msg("stage interview complete")

	return answers, cctx.Messages(), nil
}

// askOne drives a single question to acceptance. All responses the user
// gave for the question (initial plus follow-up answers) are joined into
// the accepted answer, since follow-ups add detail rather than replace it.
func (iv *Interviewer) askOne(ctx context.Context, engine *conversation.Engine, cctx *conversation.Context, q Question) (string, error) {
	if err := engine.StartTurn(q.Prompt); err != nil {
		return "", err
	}

	prompt := q.Prompt
	rejections := 0
	var parts []string

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		response, err := iv.responder.Respond(ctx, cctx.StageNumber, prompt)
		if err != nil {
			return "", fmt.Errorf("%w: %s", uaiperrors.ErrInterviewAborted, err)
		}

		result, err := engine.ProcessResponse(ctx, response)
		switch {
		case err == nil:
			// fall through below

		case errors.Is(err, uaiperrors.ErrPromptInjection),
			errors.Is(err, uaiperrors.ErrEmptyValue),
			errors.Is(err, uaiperrors.ErrResponseTooLong):
			rejections++
			if rejections > cctx.MaxAttempts {
				return "", fmt.Errorf("%w: question %q rejected %d inputs",
					uaiperrors.ErrInterviewAborted, q.Key, rejections)
			}
			prompt = injectionRetryNotice + q.Prompt
			continue

		default:
			return "", err
		}

		parts = append(parts, strings.TrimSpace(response))

		if result.Complete {
			if result.Escalated {
				iv.logger.Warn().
					Str("session_id", cctx.SessionID).
					Int("stage", cctx.StageNumber).
					Str("question", q.Key).
					Msg("answer accepted with quality concerns")
			}
			return strings.Join(parts, "\n"), nil
		}

		prompt = result.FollowUpQuestion
	}
}
