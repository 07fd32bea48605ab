package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
	uaiperrors "github.com/uaip-labs/uaip/internal/errors"
)

// GenerateCharter aggregates the five stage deliverables into the final
// project charter.
//
// Preconditions: the session must be completed with all five stages
// collected. The consistency check runs first; an INFEASIBLE verdict
// blocks generation, while lesser inconsistencies are recorded in the
// charter and logged. The governance decision from stage 5 determines
// the charter's overall feasibility. The rendered markdown is persisted
// alongside the session.
func (m *SessionManager) GenerateCharter(ctx context.Context, sessionID string) (*domain.Charter, error) {
	ms, err := m.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ms.mu.Lock()
	if ms.sess.Status != constants.SessionStatusCompleted {
		status := ms.sess.Status
		missing := ms.sess.MissingStages()
		ms.mu.Unlock()
		return nil, &uaiperrors.CharterError{
			Reason:        fmt.Sprintf("session is %s, not completed", status),
			MissingStages: missing,
		}
	}
	if missing := ms.sess.MissingStages(); len(missing) > 0 {
		ms.mu.Unlock()
		return nil, &uaiperrors.CharterError{
			Reason:        "stage deliverables are incomplete",
			MissingStages: missing,
		}
	}
	data := ms.sess.StageData.Clone()
	projectName := ms.sess.ProjectName
	ms.mu.Unlock()

	report, err := m.checker.Check(ctx, data)
	if err != nil {
		return nil, err
	}
	if report.OverallFeasibility == constants.FeasibilityInfeasible {
		contradictions := make([]string, 0, len(report.Contradictions))
		for _, c := range report.Contradictions {
			contradictions = append(contradictions, c.Description)
		}
		return nil, &uaiperrors.CharterError{
			Reason:         "consistency check found the project infeasible",
			Contradictions: contradictions,
		}
	}
	if !report.IsConsistent {
		m.logger.Warn().
			Str("session_id", sessionID).
			Int("contradictions", len(report.Contradictions)).
			Msg("charter generated with unresolved consistency findings")
	}

	charter, err := assembleCharter(sessionID, projectName, m.clk.Now(), data, report)
	if err != nil {
		return nil, err
	}

	markdown, err := RenderCharterMarkdown(charter)
	if err != nil {
		return nil, fmt.Errorf("%w: rendering: %s", uaiperrors.ErrCharterGeneration, err)
	}
	if err := m.store.SaveCharter(ctx, sessionID, []byte(markdown)); err != nil {
		return nil, fmt.Errorf("%w: charter: %s", uaiperrors.ErrPersistence, err)
	}

	m.logger.Info().
		Str("session_id", sessionID).
		Str("decision", charter.GovernanceDecision.String()).
		Str("feasibility", string(charter.OverallFeasibility)).
		Msg("charter generated")

	return charter, nil
}

// assembleCharter extracts the typed deliverables and derives the
// governance outcome.
func assembleCharter(sessionID, projectName string, now time.Time, data domain.StageData, report *domain.ConsistencyReport) (*domain.Charter, error) {
	ps, ok := asProblemStatement(data[1])
	if !ok {
		return nil, charterTypeError(1)
	}
	ma, ok := asMetricAlignment(data[2])
	if !ok {
		return nil, charterTypeError(2)
	}
	df, ok := asDataFeasibility(data[3])
	if !ok {
		return nil, charterTypeError(3)
	}
	ux, ok := asUXPlan(data[4])
	if !ok {
		return nil, charterTypeError(4)
	}
	ea, ok := asEthicalAssessment(data[5])
	if !ok {
		return nil, charterTypeError(5)
	}

	decision := constants.GovernanceDecision(ea.Decision)

	return &domain.Charter{
		SessionID:          sessionID,
		ProjectName:        projectName,
		GeneratedAt:        now.UTC().Format(time.RFC3339),
		ProblemStatement:   ps,
		MetricAlignment:    ma,
		DataFeasibility:    df,
		UXPlan:             ux,
		EthicalAssessment:  ea,
		GovernanceDecision: decision,
		OverallFeasibility: domain.FeasibilityFromDecision(decision),
		ConsistencyReport:  report,
	}, nil
}

func charterTypeError(stage int) error {
	return &uaiperrors.CharterError{
		Reason: fmt.Sprintf("stage %d deliverable has the wrong type", stage),
	}
}

func asProblemStatement(d domain.StageDeliverable) (domain.ProblemStatement, bool) {
	switch v := d.(type) {
	case domain.ProblemStatement:
		return v, true
	case *domain.ProblemStatement:
		return *v, true
	}
	return domain.ProblemStatement{}, false
}

func asMetricAlignment(d domain.StageDeliverable) (domain.MetricAlignment, bool) {
	switch v := d.(type) {
	case domain.MetricAlignment:
		return v, true
	case *domain.MetricAlignment:
		return *v, true
	}
	return domain.MetricAlignment{}, false
}

func asDataFeasibility(d domain.StageDeliverable) (domain.DataFeasibilityReport, bool) {
	switch v := d.(type) {
	case domain.DataFeasibilityReport:
		return v, true
	case *domain.DataFeasibilityReport:
		return *v, true
	}
	return domain.DataFeasibilityReport{}, false
}

func asUXPlan(d domain.StageDeliverable) (domain.UXPlan, bool) {
	switch v := d.(type) {
	case domain.UXPlan:
		return v, true
	case *domain.UXPlan:
		return *v, true
	}
	return domain.UXPlan{}, false
}

func asEthicalAssessment(d domain.StageDeliverable) (domain.EthicalAssessment, bool) {
	switch v := d.(type) {
	case domain.EthicalAssessment:
		return v, true
	case *domain.EthicalAssessment:
		return *v, true
	}
	return domain.EthicalAssessment{}, false
}

// charterTemplate renders the charter as markdown. Kept deliberately
// plain so the output reads well both raw and through a terminal
// renderer.
const charterTemplate = `# AI Project Charter: {{.ProjectName}}

Session {{.SessionID}}, generated {{.GeneratedAt}}.

**Governance decision:** {{.GovernanceDecision}}
**Overall feasibility:** {{.OverallFeasibility}}

## 1. Problem Statement

- **Business objective:** {{.ProblemStatement.BusinessObjective}}
- **Why AI:** {{.ProblemStatement.AINecessityJustification}}
- **Inputs:** {{join .ProblemStatement.InputFeatures ", "}}
- **Output:** {{.ProblemStatement.TargetOutput}}
- **ML archetype:** {{.ProblemStatement.MLArchetype}} ({{.ProblemStatement.MLArchetypeJustification}})
- **Stakeholders:** {{.ProblemStatement.Stakeholders}}

## 2. Metric Alignment
{{range .MetricAlignment.BusinessKPIs}}
- **{{.BusinessKPI}}** tracked by {{.ModelMetric}} (baseline {{.Baseline}}, target {{.Target}})
{{- end}}

- **Success criteria:** {{.MetricAlignment.SuccessCriteria}}
- **Estimated value:** {{.MetricAlignment.EstimatedValue}}
- **Measurement plan:** {{.MetricAlignment.MeasurementPlan}}

## 3. Data Feasibility

- **Sources:** {{join .DataFeasibility.DataSources ", "}}
- **Access constraints:** {{.DataFeasibility.AccessConstraints}}
- **Labeling strategy:** {{.DataFeasibility.LabelingStrategy}}
- **Volume:** {{.DataFeasibility.EstimatedVolume}}
- **Refresh cadence:** {{.DataFeasibility.RefreshCadence}}

Quality scores:
{{range $dim, $score := .DataFeasibility.QualityScores}}
- {{$dim}}: {{printf "%.1f" $score}}/10
{{- end}}

## 4. User Experience

- **Primary persona:** {{.UXPlan.PrimaryPersona}}
- **Interaction mode:** {{.UXPlan.InteractionMode}}
- **Failure experience:** {{.UXPlan.FailureExperience}}
- **Feedback mechanism:** {{.UXPlan.FeedbackMechanism}}
- **Adoption risks:** {{.UXPlan.AdoptionRisks}}

## 5. Ethical Governance

{{range $principle, $assessment := .EthicalAssessment.PrincipleAssessments}}
- **{{$principle}}:** {{$assessment}}
{{- end}}

Residual risks:
{{if .EthicalAssessment.ResidualRisks}}{{range .EthicalAssessment.ResidualRisks}}
- {{.Description}} (severity {{.Score}}/10)
{{- end}}{{else}}
- none identified
{{end}}
- **Mitigations:** {{.EthicalAssessment.Mitigations}}
- **Decision rationale:** {{.EthicalAssessment.DecisionRationale}}
{{if .ConsistencyReport}}
## Consistency Review

- **Consistent:** {{.ConsistencyReport.IsConsistent}}
- **Feasibility tier:** {{.ConsistencyReport.OverallFeasibility}}
{{- range .ConsistencyReport.Contradictions}}
- Contradiction (stage {{.StageFrom}} to {{.StageTo}}, {{.Severity}}): {{.Description}}
{{- end}}
{{- range .ConsistencyReport.RiskAreas}}
- Risk area: {{.}}
{{- end}}
{{end}}`

//nolint:gochecknoglobals // parsed once; the template is a compile-time constant
var charterTmpl = template.Must(template.New("charter").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(charterTemplate))

// RenderCharterMarkdown renders the charter document as markdown.
func RenderCharterMarkdown(charter *domain.Charter) (string, error) {
	var buf bytes.Buffer
	if err := charterTmpl.Execute(&buf, charter); err != nil {
		return "", err
	}
	return buf.String(), nil
}
