// Package consistency implements the cross-stage consistency checker:
// an LLM-assisted review that compares adjacent stage deliverables for
// contradictions before a charter is generated.
package consistency

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
	"github.com/uaip-labs/uaip/internal/llm"
)

const reviewSystemPrompt = `You review AI project scoping documents for internal contradictions.
You are given two consecutive stage deliverables from the same project.
Identify statements in the later stage that contradict, undermine, or are
incompatible with the earlier stage. Respond with JSON only:
{"contradictions":[{"description":"...","severity":"high|medium|low"}],"risk_areas":["..."],"recommendations":["..."]}
Report an empty contradictions array when the stages agree.`

// manualReviewNote flags a pair whose LLM review could not be parsed.
const manualReviewNote = "needs manual review"

// Checker compares adjacent stage deliverables pairwise. Reviews run
// concurrently; a failed or malformed review degrades that pair to a
// manual-review flag instead of failing the whole check.
type Checker struct {
	router llm.Router
	logger zerolog.Logger
}

// NewChecker creates a consistency checker backed by the given router.
func NewChecker(router llm.Router, logger zerolog.Logger) *Checker {
	return &Checker{
		router: router,
		logger: logger.With().Str("component", "consistency").Logger(),
	}
}

// reviewWire is the JSON shape expected from a pair review.
type reviewWire struct {
	Contradictions []struct {
		Description string `json:"description"`
		Severity    string `json:"severity"`
	} `json:"contradictions"`
	RiskAreas       []string `json:"risk_areas"`
	Recommendations []string `json:"recommendations"`
}

// pairResult is the outcome of reviewing one adjacent stage pair.
type pairResult struct {
	from, to        int
	contradictions  []domain.Contradiction
	riskAreas       []string
	recommendations []string
	degraded        bool
}

// Check reviews the collected stage data for cross-stage contradictions.
//
// Empty stage data short-circuits to an inconsistent, low-feasibility
// report without calling the LLM. With data present, each adjacent pair
// of collected stages is reviewed concurrently; pairs whose review fails
// or returns unparseable output are flagged for manual review rather
// than erroring. The only error returned is context cancellation.
func (c *Checker) Check(ctx context.Context, stageData domain.StageData) (*domain.ConsistencyReport, error) {
	if len(stageData) == 0 {
		return &domain.ConsistencyReport{
			IsConsistent:       false,
			OverallFeasibility: constants.FeasibilityLow,
			RiskAreas:          []string{"no stage data collected"},
			Recommendations:    []string{"complete at least one interview stage before checking consistency"},
		}, nil
	}

	pairs := adjacentPairs(stageData)
	if len(pairs) == 0 {
		return &domain.ConsistencyReport{
			IsConsistent:       true,
			OverallFeasibility: constants.FeasibilityMedium,
			Recommendations:    []string{"complete additional stages to enable cross-stage validation"},
		}, nil
	}

	results := make([]pairResult, len(pairs))
	g, gctx := errgroup.WithContext(ctx)
	for i, pair := range pairs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.reviewPair(gctx, pair[0], pair[1], stageData[pair[0]], stageData[pair[1]])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return aggregate(results), nil
}

// reviewPair runs one LLM review. Any failure degrades to a
// manual-review result.
func (c *Checker) reviewPair(ctx context.Context, from, to int, earlier, later domain.StageDeliverable) pairResult {
	result := pairResult{from: from, to: to}

	prompt, err := buildPairPrompt(from, to, earlier, later)
	if err != nil {
		c.logger.Warn().Err(err).Int("from", from).Int("to", to).Msg("pair prompt build failed")
		return degradedPair(result)
	}

	resp, err := c.router.Route(ctx, &llm.Request{
		Prompt:         prompt,
		SystemPrompt:   reviewSystemPrompt,
		ResponseFormat: "json",
	})
	if err != nil || resp == nil {
		c.logger.Warn().Err(err).Int("from", from).Int("to", to).Msg("pair review call failed")
		return degradedPair(result)
	}

	raw := llm.ExtractJSONBlock(resp.Content)
	if raw == "" {
		c.logger.Warn().Int("from", from).Int("to", to).Msg("pair review returned no JSON")
		return degradedPair(result)
	}

	var wire reviewWire
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		c.logger.Warn().Err(err).Int("from", from).Int("to", to).Msg("pair review JSON malformed")
		return degradedPair(result)
	}

	for _, contradiction := range wire.Contradictions {
		desc := strings.TrimSpace(contradiction.Description)
		if desc == "" {
			continue
		}
		result.contradictions = append(result.contradictions, domain.Contradiction{
			StageFrom:   from,
			StageTo:     to,
			Description: desc,
			Severity:    normalizeSeverity(contradiction.Severity),
		})
	}
	result.riskAreas = wire.RiskAreas
	result.recommendations = wire.Recommendations
	return result
}

// degradedPair marks a pair as needing human eyes.
func degradedPair(result pairResult) pairResult {
	result.degraded = true
	result.riskAreas = []string{
		fmt.Sprintf("stage %d to stage %d comparison %s", result.from, result.to, manualReviewNote),
	}
	result.recommendations = []string{
		fmt.Sprintf("manually compare %s and %s outputs",
			constants.StageName(result.from), constants.StageName(result.to)),
	}
	return result
}

// aggregate folds pair results into a single report. Feasibility is
// conservative: two or more high-severity contradictions mean the
// stages cannot all be true at once (INFEASIBLE), one high gives LOW,
// any other contradiction or a degraded pair gives MEDIUM, and a clean
// run gives HIGH.
func aggregate(results []pairResult) *domain.ConsistencyReport {
	report := &domain.ConsistencyReport{IsConsistent: true}

	anyDegraded := false
	highs := 0
	for _, r := range results {
		report.Contradictions = append(report.Contradictions, r.contradictions...)
		report.RiskAreas = append(report.RiskAreas, r.riskAreas...)
		report.Recommendations = append(report.Recommendations, r.recommendations...)
		if r.degraded {
			anyDegraded = true
		}
		for _, contradiction := range r.contradictions {
			if contradiction.Severity == "high" {
				highs++
			}
		}
	}

	if len(report.Contradictions) > 0 || anyDegraded {
		report.IsConsistent = false
	}

	switch {
	case highs >= 2:
		report.OverallFeasibility = constants.FeasibilityInfeasible
	case highs == 1:
		report.OverallFeasibility = constants.FeasibilityLow
	case len(report.Contradictions) > 0 || anyDegraded:
		report.OverallFeasibility = constants.FeasibilityMedium
	default:
		report.OverallFeasibility = constants.FeasibilityHigh
	}

	return report
}

// adjacentPairs returns the consecutive stage-number pairs for which
// both deliverables are present, in ascending order.
func adjacentPairs(stageData domain.StageData) [][2]int {
	stages := make([]int, 0, len(stageData))
	for stage := range stageData {
		stages = append(stages, stage)
	}
	sort.Ints(stages)

	var pairs [][2]int
	for i := 1; i < len(stages); i++ {
		if stages[i] == stages[i-1]+1 {
			pairs = append(pairs, [2]int{stages[i-1], stages[i]})
		}
	}
	return pairs
}

// buildPairPrompt serializes both deliverables into the review prompt.
func buildPairPrompt(from, to int, earlier, later domain.StageDeliverable) (string, error) {
	earlierJSON, err := json.MarshalIndent(earlier, "", "  ")
	if err != nil {
		return "", err
	}
	laterJSON, err := json.MarshalIndent(later, "", "  ")
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stage %d (%s):\n%s\n\n", from, constants.StageName(from), earlierJSON)
	fmt.Fprintf(&b, "Stage %d (%s):\n%s\n", to, constants.StageName(to), laterJSON)
	return b.String(), nil
}

// normalizeSeverity maps free-form severity text onto high/medium/low,
// defaulting unknown values to medium.
func normalizeSeverity(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return "high"
	case "low":
		return "low"
	default:
		return "medium"
	}
}
