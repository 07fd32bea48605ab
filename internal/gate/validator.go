// Package gate implements the stage-gate validator: the rule-based
// completeness and consistency check that must pass before a session may
// advance to its next stage.
//
// Validation is a pure function of (stage number, deliverable). It never
// calls external capabilities and never fails for well-formed stage
// numbers; only an out-of-range stage returns an error.
package gate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
	uaiperrors "github.com/uaip-labs/uaip/internal/errors"
)

// knownArchetypes are the ML archetypes the stage-1 heuristic can
// propose. An unrecognized archetype is flagged as a concern, not an
// error, so a hand-edited deliverable still validates field presence.
//
//nolint:gochecknoglobals // Read-only lookup table
var knownArchetypes = map[string]bool{
	"classification":    true,
	"regression":        true,
	"clustering":        true,
	"recommendation":    true,
	"anomaly_detection": true,
	"forecasting":       true,
	"generation":        true,
	"ranking":           true,
}

// Validator gates stage advancement. CanProceed requires zero missing
// items, zero concerns, and a completeness score at or above the
// threshold; all three conditions are independent.
type Validator struct {
	threshold float64
}

// NewValidator creates a validator with the given completeness
// threshold. A non-positive threshold falls back to the default.
func NewValidator(threshold float64) *Validator {
	if threshold <= 0 {
		threshold = constants.DefaultGateThreshold
	}
	return &Validator{threshold: threshold}
}

// check is one named validation rule outcome.
type check struct {
	passed  bool
	missing string // set when a mandatory field is absent
	concern string // set when a semantic rule is violated
}

// ValidateStage checks the deliverable collected for a stage and
// reports whether the session may advance. A nil deliverable yields a
// zero completeness score and an unconditional refusal. An error is
// returned only for stage numbers outside [1,5].
func (v *Validator) ValidateStage(stage int, deliverable domain.StageDeliverable) (*domain.StageValidation, error) {
	if stage < constants.MinStage || stage > constants.MaxStage {
		return nil, fmt.Errorf("%w: %d", uaiperrors.ErrInvalidStageNumber, stage)
	}

	if deliverable == nil {
		return &domain.StageValidation{
			CanProceed:        false,
			CompletenessScore: 0.0,
			MissingItems:      []string{fmt.Sprintf("stage %d deliverable", stage)},
			Recommendations:   []string{fmt.Sprintf("complete the %s interview", constants.StageName(stage))},
		}, nil
	}

	var checks []check
	if deliverable.StageNumber() != stage {
		checks = []check{{
			concern: fmt.Sprintf("deliverable belongs to stage %d, not stage %d",
				deliverable.StageNumber(), stage),
		}}
	} else {
		checks = v.checksFor(deliverable)
	}

	return v.summarize(checks), nil
}

// checksFor dispatches to the per-stage rule set. The type switch is
// exhaustive over the deliverable sum type.
func (v *Validator) checksFor(deliverable domain.StageDeliverable) []check {
	switch d := deliverable.(type) {
	case domain.ProblemStatement:
		return problemStatementChecks(d)
	case *domain.ProblemStatement:
		return problemStatementChecks(*d)
	case domain.MetricAlignment:
		return metricAlignmentChecks(d)
	case *domain.MetricAlignment:
		return metricAlignmentChecks(*d)
	case domain.DataFeasibilityReport:
		return dataFeasibilityChecks(d)
	case *domain.DataFeasibilityReport:
		return dataFeasibilityChecks(*d)
	case domain.UXPlan:
		return uxPlanChecks(d)
	case *domain.UXPlan:
		return uxPlanChecks(*d)
	case domain.EthicalAssessment:
		return ethicalAssessmentChecks(d)
	case *domain.EthicalAssessment:
		return ethicalAssessmentChecks(*d)
	}
	// Unreachable with the current sum type; treat as fully unknown.
	return []check{{concern: fmt.Sprintf("unrecognized deliverable type %T", deliverable)}}
}

// summarize folds rule outcomes into a StageValidation.
func (v *Validator) summarize(checks []check) *domain.StageValidation {
	result := &domain.StageValidation{}

	passed := 0
	for _, c := range checks {
		if c.passed {
			passed++
			continue
		}
		if c.missing != "" {
			result.MissingItems = append(result.MissingItems, c.missing)
			result.Recommendations = append(result.Recommendations,
				fmt.Sprintf("provide %s", c.missing))
		}
		if c.concern != "" {
			result.Concerns = append(result.Concerns, c.concern)
		}
	}

	if len(checks) > 0 {
		result.CompletenessScore = float64(passed) / float64(len(checks))
	}

	result.CanProceed = len(result.MissingItems) == 0 &&
		len(result.Concerns) == 0 &&
		result.CompletenessScore >= v.threshold

	return result
}

// fieldCheck validates a mandatory string field.
func fieldCheck(name, value string) check {
	if strings.TrimSpace(value) == "" {
		return check{missing: name}
	}
	return check{passed: true}
}

// listCheck validates a mandatory non-empty list field.
func listCheck(name string, values []string) check {
	for _, val := range values {
		if strings.TrimSpace(val) != "" {
			return check{passed: true}
		}
	}
	return check{missing: name}
}

func problemStatementChecks(d domain.ProblemStatement) []check {
	checks := []check{
		fieldCheck("business_objective", d.BusinessObjective),
		fieldCheck("ai_necessity_justification", d.AINecessityJustification),
		listCheck("input_features", d.InputFeatures),
		fieldCheck("target_output", d.TargetOutput),
		fieldCheck("ml_archetype", d.MLArchetype),
		fieldCheck("ml_archetype_justification", d.MLArchetypeJustification),
	}
	if d.MLArchetype != "" && !knownArchetypes[d.MLArchetype] {
		checks = append(checks, check{
			concern: fmt.Sprintf("unrecognized ml_archetype %q", d.MLArchetype),
		})
	} else {
		checks = append(checks, check{passed: true})
	}
	return checks
}

func metricAlignmentChecks(d domain.MetricAlignment) []check {
	checks := []check{
		fieldCheck("success_criteria", d.SuccessCriteria),
		fieldCheck("estimated_value", d.EstimatedValue),
		fieldCheck("measurement_plan", d.MeasurementPlan),
	}
	if len(d.BusinessKPIs) == 0 {
		checks = append(checks, check{missing: "business_kpis"})
	} else {
		checks = append(checks, check{passed: true})
		for i, pair := range d.BusinessKPIs {
			if strings.TrimSpace(pair.BusinessKPI) == "" ||
				strings.TrimSpace(pair.ModelMetric) == "" ||
				strings.TrimSpace(pair.Baseline) == "" ||
				strings.TrimSpace(pair.Target) == "" {
				checks = append(checks, check{
					concern: fmt.Sprintf("business_kpis[%d] is missing a kpi, metric, baseline, or target", i),
				})
			} else {
				checks = append(checks, check{passed: true})
			}
		}
	}
	return checks
}

func dataFeasibilityChecks(d domain.DataFeasibilityReport) []check {
	checks := []check{
		listCheck("data_sources", d.DataSources),
		fieldCheck("access_constraints", d.AccessConstraints),
		fieldCheck("labeling_strategy", d.LabelingStrategy),
		fieldCheck("estimated_volume", d.EstimatedVolume),
	}

	// All six quality dimensions must be scored.
	for _, dim := range constants.QualityDimensions {
		score, ok := d.QualityScores[dim]
		switch {
		case !ok:
			checks = append(checks, check{
				concern: fmt.Sprintf("quality dimension %q not scored", dim),
			})
		case score < 0 || score > 10:
			checks = append(checks, check{
				concern: fmt.Sprintf("quality dimension %q score %.1f outside [0,10]", dim, score),
			})
		default:
			checks = append(checks, check{passed: true})
		}
	}
	return checks
}

func uxPlanChecks(d domain.UXPlan) []check {
	return []check{
		fieldCheck("primary_persona", d.PrimaryPersona),
		fieldCheck("interaction_mode", d.InteractionMode),
		fieldCheck("failure_experience", d.FailureExperience),
		fieldCheck("feedback_mechanism", d.FeedbackMechanism),
	}
}

func ethicalAssessmentChecks(d domain.EthicalAssessment) []check {
	checks := []check{
		fieldCheck("decision", d.Decision),
	}

	// All five ethical principles must be assessed.
	for _, principle := range constants.EthicalPrinciples {
		if strings.TrimSpace(d.PrincipleAssessments[principle]) == "" {
			checks = append(checks, check{
				concern: fmt.Sprintf("ethical principle %q not assessed", principle),
			})
		} else {
			checks = append(checks, check{passed: true})
		}
	}

	// Residual risks may be empty, but any present risk needs a
	// description and an in-range score.
	for i, risk := range d.ResidualRisks {
		switch {
		case strings.TrimSpace(risk.Description) == "":
			checks = append(checks, check{
				concern: fmt.Sprintf("residual_risks[%d] has no description", i),
			})
		case risk.Score < 0 || risk.Score > 10:
			checks = append(checks, check{
				concern: fmt.Sprintf("residual_risks[%d] score %d outside [0,10]", i, risk.Score),
			})
		default:
			checks = append(checks, check{passed: true})
		}
	}
	return checks
}

// SortedMissing returns missing items in deterministic order, for
// stable error messages in tests and user display.
func SortedMissing(v *domain.StageValidation) []string {
	out := make([]string, len(v.MissingItems))
	copy(out, v.MissingItems)
	sort.Strings(out)
	return out
}
