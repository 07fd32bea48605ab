package quality

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/ctxutil"
	"github.com/uaip-labs/uaip/internal/domain"
	"github.com/uaip-labs/uaip/internal/llm"
)

// evaluationSystemPrompt instructs the model to return a strict JSON
// assessment. The five scoring dimensions match the interview rubric.
const evaluationSystemPrompt = `You are a response quality evaluator for an AI project scoping interview.
Score the user's answer to the given question across five dimensions:
specificity, relevance, completeness, measurability, and clarity.
Respond with ONLY a JSON object:
{"quality_score": <0-10 integer>, "issues": [<strings>], "suggested_followups": [<strings>], "examples_to_provide": [<strings>]}`

// LLMAgent implements Agent by asking an LLM router to score the
// response and parsing its structured output.
type LLMAgent struct {
	router    llm.Router
	threshold int
	logger    zerolog.Logger
}

// NewLLMAgent creates an LLM-backed quality agent. The threshold is the
// minimum score (0-10) for a response to be acceptable.
func NewLLMAgent(router llm.Router, threshold int, logger zerolog.Logger) *LLMAgent {
	return &LLMAgent{
		router:    router,
		threshold: threshold,
		logger:    logger,
	}
}

// assessmentWire is the JSON shape expected from the model.
type assessmentWire struct {
	QualityScore       int      `json:"quality_score"`
	Issues             []string `json:"issues"`
	SuggestedFollowups []string `json:"suggested_followups"`
	ExamplesToProvide  []string `json:"examples_to_provide"`
}

// EvaluateResponse implements Agent. Router failures are returned to the
// caller (the engine converts them to a degraded assessment); malformed
// model output is absorbed here into a conservative assessment because
// the response text itself may still be fine.
func (a *LLMAgent) EvaluateResponse(ctx context.Context, question, response string, history []domain.Message) (*domain.QualityAssessment, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	resp, err := a.router.Route(ctx, &llm.Request{
		Prompt:          a.buildPrompt(question, response, history),
		SystemPrompt:    evaluationSystemPrompt,
		ModelPreference: "fast",
		ResponseFormat:  "json",
	})
	if err != nil {
		return nil, fmt.Errorf("quality evaluation failed: %w", err)
	}

	block := llm.ExtractJSONBlock(resp.Content)
	if block == "" {
		a.logger.Warn().
			Str("model", resp.Model).
			Msg("quality evaluation returned no JSON, using conservative assessment")
		return a.conservativeAssessment(), nil
	}

	var wire assessmentWire
	if err := json.Unmarshal([]byte(block), &wire); err != nil {
		a.logger.Warn().
			Err(err).
			Str("model", resp.Model).
			Msg("quality evaluation JSON malformed, using conservative assessment")
		return a.conservativeAssessment(), nil
	}

	score := clampScore(wire.QualityScore)
	return &domain.QualityAssessment{
		QualityScore:       score,
		IsAcceptable:       score >= a.threshold,
		Issues:             wire.Issues,
		SuggestedFollowups: wire.SuggestedFollowups,
		ExamplesToProvide:  wire.ExamplesToProvide,
	}, nil
}

// buildPrompt assembles the evaluation prompt. Only a bounded tail of
// the thread history is included to keep the prompt small.
func (a *LLMAgent) buildPrompt(question, response string, history []domain.Message) string {
	var sb strings.Builder
	sb.WriteString("Question:\n")
	sb.WriteString(question)
	sb.WriteString("\n\nUser response:\n")
	sb.WriteString(response)

	const maxHistory = 6
	if len(history) > 0 {
		sb.WriteString("\n\nEarlier turns in this thread:\n")
		start := 0
		if len(history) > maxHistory {
			start = len(history) - maxHistory
		}
		for _, m := range history[start:] {
			fmt.Fprintf(&sb, "[%s] %s\n", m.Role, m.Content)
		}
	}
	return sb.String()
}

// conservativeAssessment is returned when the model output cannot be
// parsed: below threshold so the interview asks a follow-up.
func (a *LLMAgent) conservativeAssessment() *domain.QualityAssessment {
	return &domain.QualityAssessment{
		QualityScore: constants.DegradedQualityScore,
		IsAcceptable: false,
		Issues:       []string{"response quality could not be assessed"},
	}
}

// clampScore bounds a model-reported score to [0,10].
func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 10 {
		return 10
	}
	return score
}

// Compile-time check that LLMAgent implements Agent.
var _ Agent = (*LLMAgent)(nil)
