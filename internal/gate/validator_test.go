package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
	uaiperrors "github.com/uaip-labs/uaip/internal/errors"
)

func completeProblemStatement() domain.ProblemStatement {
	return domain.ProblemStatement{
		BusinessObjective:        "Reduce customer churn by 15% within two quarters",
		AINecessityJustification: "Churn drivers are nonlinear across 40+ behavioral features",
		InputFeatures:            []string{"login_frequency", "support_tickets", "plan_tier"},
		TargetOutput:             "churn probability per account",
		MLArchetype:              "classification",
		MLArchetypeJustification: "Binary churn label with tabular features",
		Stakeholders:             "VP Customer Success, retention team",
	}
}

func completeDataFeasibility() domain.DataFeasibilityReport {
	scores := make(map[string]float64, len(constants.QualityDimensions))
	for _, dim := range constants.QualityDimensions {
		scores[dim] = 8
	}
	return domain.DataFeasibilityReport{
		DataSources:       []string{"billing warehouse", "product event stream"},
		QualityScores:     scores,
		AccessConstraints: "PII columns restricted to the analytics role",
		LabelingStrategy:  "churn label derived from subscription cancellation events",
		EstimatedVolume:   "1.2M accounts, 3 years of history",
		RefreshCadence:    "daily",
	}
}

func completeEthicalAssessment() domain.EthicalAssessment {
	assessments := make(map[string]string, len(constants.EthicalPrinciples))
	for _, p := range constants.EthicalPrinciples {
		assessments[p] = "assessed, no material concern"
	}
	return domain.EthicalAssessment{
		PrincipleAssessments: assessments,
		ResidualRisks:        []domain.ResidualRisk{{Description: "proxy discrimination via plan tier", Score: 3}},
		Mitigations:          "quarterly fairness audit on protected cohorts",
		Decision:             string(constants.GovernanceProceedWithMonitoring),
		DecisionRationale:    "one medium residual risk remains",
	}
}

func TestValidateStage_InvalidStageNumber(t *testing.T) {
	t.Parallel()

	v := NewValidator(0)
	for _, stage := range []int{0, -1, 6, 100} {
		_, err := v.ValidateStage(stage, completeProblemStatement())
		require.Error(t, err)
		assert.ErrorIs(t, err, uaiperrors.ErrInvalidStageNumber)
	}
}

func TestValidateStage_NilDeliverable(t *testing.T) {
	t.Parallel()

	v := NewValidator(0)
	result, err := v.ValidateStage(2, nil)
	require.NoError(t, err)

	assert.False(t, result.CanProceed)
	assert.Equal(t, 0.0, result.CompletenessScore)
	assert.Contains(t, result.MissingItems, "stage 2 deliverable")
	assert.NotEmpty(t, result.Recommendations)
}

func TestValidateStage_CompleteProblemStatement(t *testing.T) {
	t.Parallel()

	v := NewValidator(0)
	result, err := v.ValidateStage(1, completeProblemStatement())
	require.NoError(t, err)

	assert.True(t, result.CanProceed)
	assert.Equal(t, 1.0, result.CompletenessScore)
	assert.Empty(t, result.MissingItems)
	assert.Empty(t, result.Concerns)
}

func TestValidateStage_MissingArchetypeJustification(t *testing.T) {
	t.Parallel()

	ps := completeProblemStatement()
	ps.MLArchetypeJustification = ""

	v := NewValidator(0)
	result, err := v.ValidateStage(1, ps)
	require.NoError(t, err)

	assert.False(t, result.CanProceed)
	assert.Contains(t, result.MissingItems, "ml_archetype_justification")
	assert.Contains(t, result.Recommendations, "provide ml_archetype_justification")
	assert.Less(t, result.CompletenessScore, 1.0)
}

func TestValidateStage_PointerDeliverable(t *testing.T) {
	t.Parallel()

	ps := completeProblemStatement()
	v := NewValidator(0)
	result, err := v.ValidateStage(1, &ps)
	require.NoError(t, err)
	assert.True(t, result.CanProceed)
}

func TestValidateStage_UnknownArchetypeIsConcern(t *testing.T) {
	t.Parallel()

	ps := completeProblemStatement()
	ps.MLArchetype = "quantum_vibes"

	v := NewValidator(0)
	result, err := v.ValidateStage(1, ps)
	require.NoError(t, err)

	assert.False(t, result.CanProceed)
	assert.Empty(t, result.MissingItems)
	require.Len(t, result.Concerns, 1)
	assert.Contains(t, result.Concerns[0], "quantum_vibes")
}

func TestValidateStage_StageMismatch(t *testing.T) {
	t.Parallel()

	v := NewValidator(0)
	result, err := v.ValidateStage(2, completeProblemStatement())
	require.NoError(t, err)

	assert.False(t, result.CanProceed)
	assert.Equal(t, 0.0, result.CompletenessScore)
	require.Len(t, result.Concerns, 1)
	assert.Contains(t, result.Concerns[0], "stage 1")
}

func TestValidateStage_MetricAlignment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		mutate      func(*domain.MetricAlignment)
		wantProceed bool
		wantMissing []string
		wantConcern bool
	}{
		{
			name:        "complete",
			mutate:      func(*domain.MetricAlignment) {},
			wantProceed: true,
		},
		{
			name: "no kpi pairs",
			mutate: func(m *domain.MetricAlignment) {
				m.BusinessKPIs = nil
			},
			wantMissing: []string{"business_kpis"},
		},
		{
			name: "kpi pair missing baseline",
			mutate: func(m *domain.MetricAlignment) {
				m.BusinessKPIs[0].Baseline = ""
			},
			wantConcern: true,
		},
		{
			name: "blank measurement plan",
			mutate: func(m *domain.MetricAlignment) {
				m.MeasurementPlan = "   "
			},
			wantMissing: []string{"measurement_plan"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ma := domain.MetricAlignment{
				BusinessKPIs: []domain.MetricPair{{
					BusinessKPI: "monthly churn rate",
					ModelMetric: "recall at 80% precision",
					Baseline:    "4.2%",
					Target:      "3.6%",
				}},
				SuccessCriteria: "churn down 15% without increasing discount spend",
				EstimatedValue:  "$2.4M retained ARR per year",
				MeasurementPlan: "holdout cohort compared monthly",
			}
			tt.mutate(&ma)

			v := NewValidator(0)
			result, err := v.ValidateStage(2, ma)
			require.NoError(t, err)

			assert.Equal(t, tt.wantProceed, result.CanProceed)
			for _, m := range tt.wantMissing {
				assert.Contains(t, result.MissingItems, m)
			}
			if tt.wantConcern {
				assert.NotEmpty(t, result.Concerns)
			}
		})
	}
}

func TestValidateStage_DataFeasibilityDimensions(t *testing.T) {
	t.Parallel()

	t.Run("complete report proceeds", func(t *testing.T) {
		t.Parallel()
		v := NewValidator(0)
		result, err := v.ValidateStage(3, completeDataFeasibility())
		require.NoError(t, err)
		assert.True(t, result.CanProceed)
		assert.Equal(t, 1.0, result.CompletenessScore)
	})

	t.Run("unscored dimension is a concern", func(t *testing.T) {
		t.Parallel()
		report := completeDataFeasibility()
		delete(report.QualityScores, "timeliness")

		v := NewValidator(0)
		result, err := v.ValidateStage(3, report)
		require.NoError(t, err)

		assert.False(t, result.CanProceed)
		require.Len(t, result.Concerns, 1)
		assert.Contains(t, result.Concerns[0], "timeliness")
	})

	t.Run("out of range score is a concern", func(t *testing.T) {
		t.Parallel()
		report := completeDataFeasibility()
		report.QualityScores["validity"] = 11

		v := NewValidator(0)
		result, err := v.ValidateStage(3, report)
		require.NoError(t, err)

		assert.False(t, result.CanProceed)
		require.Len(t, result.Concerns, 1)
		assert.Contains(t, result.Concerns[0], "validity")
	})
}

func TestValidateStage_UXPlan(t *testing.T) {
	t.Parallel()

	plan := domain.UXPlan{
		PrimaryPersona:    "retention specialist triaging at-risk accounts",
		InteractionMode:   "ranked daily queue in the CRM",
		FailureExperience: "low-confidence accounts fall back to the manual review list",
		FeedbackMechanism: "thumbs up/down per recommendation, reviewed weekly",
		AdoptionRisks:     "specialists may distrust opaque rankings",
	}

	v := NewValidator(0)
	result, err := v.ValidateStage(4, plan)
	require.NoError(t, err)
	assert.True(t, result.CanProceed)

	plan.FailureExperience = ""
	result, err = v.ValidateStage(4, plan)
	require.NoError(t, err)
	assert.False(t, result.CanProceed)
	assert.Contains(t, result.MissingItems, "failure_experience")
}

func TestValidateStage_EthicalAssessment(t *testing.T) {
	t.Parallel()

	t.Run("complete assessment proceeds", func(t *testing.T) {
		t.Parallel()
		v := NewValidator(0)
		result, err := v.ValidateStage(5, completeEthicalAssessment())
		require.NoError(t, err)
		assert.True(t, result.CanProceed)
	})

	t.Run("unassessed principle is a concern", func(t *testing.T) {
		t.Parallel()
		ea := completeEthicalAssessment()
		delete(ea.PrincipleAssessments, "human_oversight")

		v := NewValidator(0)
		result, err := v.ValidateStage(5, ea)
		require.NoError(t, err)

		assert.False(t, result.CanProceed)
		require.Len(t, result.Concerns, 1)
		assert.Contains(t, result.Concerns[0], "human_oversight")
	})

	t.Run("risk score out of range is a concern", func(t *testing.T) {
		t.Parallel()
		ea := completeEthicalAssessment()
		ea.ResidualRisks = append(ea.ResidualRisks, domain.ResidualRisk{
			Description: "automated denial without recourse",
			Score:       12,
		})

		v := NewValidator(0)
		result, err := v.ValidateStage(5, ea)
		require.NoError(t, err)
		assert.False(t, result.CanProceed)
	})

	t.Run("empty residual risks allowed", func(t *testing.T) {
		t.Parallel()
		ea := completeEthicalAssessment()
		ea.ResidualRisks = nil

		v := NewValidator(0)
		result, err := v.ValidateStage(5, ea)
		require.NoError(t, err)
		assert.True(t, result.CanProceed)
	})
}

func TestValidateStage_ThresholdBlocksBorderline(t *testing.T) {
	t.Parallel()

	// 6 of 7 checks pass: 0.857 is under the 0.9 default even before
	// the missing item independently blocks advancement.
	ps := completeProblemStatement()
	ps.TargetOutput = ""

	v := NewValidator(constants.DefaultGateThreshold)
	result, err := v.ValidateStage(1, ps)
	require.NoError(t, err)

	assert.False(t, result.CanProceed)
	assert.InDelta(t, 6.0/7.0, result.CompletenessScore, 0.001)
}

func TestSortedMissing(t *testing.T) {
	t.Parallel()

	validation := &domain.StageValidation{
		MissingItems: []string{"target_output", "business_objective", "ml_archetype"},
	}
	assert.Equal(t,
		[]string{"business_objective", "ml_archetype", "target_output"},
		SortedMissing(validation))
	// Original order untouched.
	assert.Equal(t, "target_output", validation.MissingItems[0])
}
