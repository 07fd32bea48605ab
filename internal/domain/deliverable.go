package domain

import (
	"encoding/json"
	"fmt"
	"strconv"

	uaiperrors "github.com/uaip-labs/uaip/internal/errors"
)

// Deliverable kind tags used in the JSON envelope. Stable on-disk
// identifiers; do not rename.
const (
	KindProblemStatement  = "problem_statement"
	KindMetricAlignment   = "metric_alignment"
	KindDataFeasibility   = "data_feasibility"
	KindUXPlan            = "ux_plan"
	KindEthicalAssessment = "ethical_assessment"
)

// StageDeliverable is the closed set of per-stage interview outputs.
// Exactly one concrete type exists per stage; the gate validator
// type-switches over them exhaustively.
type StageDeliverable interface {
	// StageNumber returns the stage this deliverable belongs to.
	StageNumber() int

	// Kind returns the stable envelope tag for serialization.
	Kind() string
}

// ProblemStatement is the stage 1 (Business Translation) deliverable.
type ProblemStatement struct {
	BusinessObjective        string   `json:"business_objective"`
	AINecessityJustification string   `json:"ai_necessity_justification"`
	InputFeatures            []string `json:"input_features"`
	TargetOutput             string   `json:"target_output"`
	MLArchetype              string   `json:"ml_archetype"`
	MLArchetypeJustification string   `json:"ml_archetype_justification"`
	Stakeholders             string   `json:"stakeholders,omitempty"`
}

// StageNumber implements StageDeliverable.
func (ProblemStatement) StageNumber() int { return 1 }

// Kind implements StageDeliverable.
func (ProblemStatement) Kind() string { return KindProblemStatement }

// MetricAlignment is the stage 2 (Value Quantification) deliverable.
// It maps business KPIs to model metrics with baselines and targets.
type MetricAlignment struct {
	BusinessKPIs    []MetricPair `json:"business_kpis"`
	SuccessCriteria string       `json:"success_criteria"`
	EstimatedValue  string       `json:"estimated_value"`
	MeasurementPlan string       `json:"measurement_plan"`
}

// MetricPair links one business KPI to the model metric that proxies it.
type MetricPair struct {
	BusinessKPI string `json:"business_kpi"`
	ModelMetric string `json:"model_metric"`
	Baseline    string `json:"baseline"`
	Target      string `json:"target"`
}

// StageNumber implements StageDeliverable.
func (MetricAlignment) StageNumber() int { return 2 }

// Kind implements StageDeliverable.
func (MetricAlignment) Kind() string { return KindMetricAlignment }

// DataFeasibilityReport is the stage 3 (Data Feasibility) deliverable.
// QualityScores must cover all six quality dimensions before the stage
// gate can pass.
type DataFeasibilityReport struct {
	DataSources       []string           `json:"data_sources"`
	QualityScores     map[string]float64 `json:"quality_scores"`
	AccessConstraints string             `json:"access_constraints"`
	LabelingStrategy  string             `json:"labeling_strategy"`
	EstimatedVolume   string             `json:"estimated_volume"`
	RefreshCadence    string             `json:"refresh_cadence,omitempty"`
}

// StageNumber implements StageDeliverable.
func (DataFeasibilityReport) StageNumber() int { return 3 }

// Kind implements StageDeliverable.
func (DataFeasibilityReport) Kind() string { return KindDataFeasibility }

// UXPlan is the stage 4 (User Experience) deliverable.
type UXPlan struct {
	PrimaryPersona    string `json:"primary_persona"`
	InteractionMode   string `json:"interaction_mode"`
	FailureExperience string `json:"failure_experience"`
	FeedbackMechanism string `json:"feedback_mechanism"`
	AdoptionRisks     string `json:"adoption_risks,omitempty"`
}

// StageNumber implements StageDeliverable.
func (UXPlan) StageNumber() int { return 4 }

// Kind implements StageDeliverable.
func (UXPlan) Kind() string { return KindUXPlan }

// EthicalAssessment is the stage 5 (Ethical Governance) deliverable.
// PrincipleAssessments must cover all five ethical principles before the
// stage gate can pass. The governance decision is derived from the
// residual risks, not entered by the user.
type EthicalAssessment struct {
	PrincipleAssessments map[string]string `json:"principle_assessments"`
	ResidualRisks        []ResidualRisk    `json:"residual_risks"`
	Mitigations          string            `json:"mitigations"`
	Decision             string            `json:"decision"`
	DecisionRationale    string            `json:"decision_rationale,omitempty"`
}

// ResidualRisk is one identified risk remaining after mitigations, with
// a 0-10 severity score.
type ResidualRisk struct {
	Description string `json:"description"`
	Score       int    `json:"score"`
}

// StageNumber implements StageDeliverable.
func (EthicalAssessment) StageNumber() int { return 5 }

// Kind implements StageDeliverable.
func (EthicalAssessment) Kind() string { return KindEthicalAssessment }

// StageData maps stage number to deliverable. A custom JSON envelope
// (kind tag + payload) preserves the concrete types across
// serialization, which keeps checkpoint restore lossless.
type StageData map[int]StageDeliverable

// envelope is the on-disk representation of one deliverable.
type envelope struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON implements json.Marshaler.
func (d StageData) MarshalJSON() ([]byte, error) {
	out := make(map[string]envelope, len(d))
	for stage, deliverable := range d {
		data, err := json.Marshal(deliverable)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal stage %d deliverable: %w", stage, err)
		}
		out[strconv.Itoa(stage)] = envelope{Kind: deliverable.Kind(), Data: data}
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *StageData) UnmarshalJSON(b []byte) error {
	var raw map[string]envelope
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal stage data: %w", err)
	}
	out := make(StageData, len(raw))
	for key, env := range raw {
		stage, err := strconv.Atoi(key)
		if err != nil {
			return fmt.Errorf("invalid stage key %q: %w", key, err)
		}
		deliverable, err := decodeDeliverable(env)
		if err != nil {
			return fmt.Errorf("stage %d: %w", stage, err)
		}
		out[stage] = deliverable
	}
	*d = out
	return nil
}

// decodeDeliverable decodes one envelope into its concrete type.
func decodeDeliverable(env envelope) (StageDeliverable, error) {
	switch env.Kind {
	case KindProblemStatement:
		var v ProblemStatement
		return v, json.Unmarshal(env.Data, &v)
	case KindMetricAlignment:
		var v MetricAlignment
		return v, json.Unmarshal(env.Data, &v)
	case KindDataFeasibility:
		var v DataFeasibilityReport
		return v, json.Unmarshal(env.Data, &v)
	case KindUXPlan:
		var v UXPlan
		return v, json.Unmarshal(env.Data, &v)
	case KindEthicalAssessment:
		var v EthicalAssessment
		return v, json.Unmarshal(env.Data, &v)
	default:
		return nil, fmt.Errorf("%w: %q", uaiperrors.ErrUnknownDeliverableKind, env.Kind)
	}
}

// Clone returns a deep copy of the stage data. Used when taking
// checkpoint snapshots so later mutations cannot leak into a stored
// checkpoint. Deliverables are plain value structs, so only their slice
// and map fields need copying; the copy cannot fail.
func (d StageData) Clone() StageData {
	if d == nil {
		return nil
	}
	out := make(StageData, len(d))
	for stage, deliverable := range d {
		out[stage] = cloneDeliverable(deliverable)
	}
	return out
}

// cloneDeliverable deep-copies one deliverable's reference fields.
func cloneDeliverable(d StageDeliverable) StageDeliverable {
	switch v := d.(type) {
	case ProblemStatement:
		v.InputFeatures = cloneStrings(v.InputFeatures)
		return v
	case MetricAlignment:
		if v.BusinessKPIs != nil {
			kpis := make([]MetricPair, len(v.BusinessKPIs))
			copy(kpis, v.BusinessKPIs)
			v.BusinessKPIs = kpis
		}
		return v
	case DataFeasibilityReport:
		v.DataSources = cloneStrings(v.DataSources)
		if v.QualityScores != nil {
			scores := make(map[string]float64, len(v.QualityScores))
			for k, s := range v.QualityScores {
				scores[k] = s
			}
			v.QualityScores = scores
		}
		return v
	case UXPlan:
		return v
	case EthicalAssessment:
		if v.PrincipleAssessments != nil {
			pa := make(map[string]string, len(v.PrincipleAssessments))
			for k, s := range v.PrincipleAssessments {
				pa[k] = s
			}
			v.PrincipleAssessments = pa
		}
		if v.ResidualRisks != nil {
			risks := make([]ResidualRisk, len(v.ResidualRisks))
			copy(risks, v.ResidualRisks)
			v.ResidualRisks = risks
		}
		return v
	default:
		return d
	}
}

// cloneStrings copies a string slice, preserving nil.
func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
