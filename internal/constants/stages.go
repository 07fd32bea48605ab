package constants

// Stage names, indexed by stage number. These appear in logs, the CLI,
// and the generated charter.
const (
	StageNameBusinessTranslation = "Business Translation"
	StageNameValueQuantification = "Value Quantification"
	StageNameDataFeasibility     = "Data Feasibility"
	StageNameUserExperience      = "User Experience"
	StageNameEthicalGovernance   = "Ethical Governance"
)

// StageName returns the display name for a stage number, or "unknown"
// for out-of-range values.
func StageName(stage int) string {
	switch stage {
	case 1:
		return StageNameBusinessTranslation
	case 2:
		return StageNameValueQuantification
	case 3:
		return StageNameDataFeasibility
	case 4:
		return StageNameUserExperience
	case 5:
		return StageNameEthicalGovernance
	default:
		return "unknown"
	}
}

// QualityDimensions are the six data-quality dimensions that stage 3
// must score before its gate can pass.
//
//nolint:gochecknoglobals // Read-only lookup table
var QualityDimensions = []string{
	"completeness",
	"accuracy",
	"consistency",
	"timeliness",
	"validity",
	"uniqueness",
}

// EthicalPrinciples are the five principles that stage 5 must assess
// before its gate can pass.
//
//nolint:gochecknoglobals // Read-only lookup table
var EthicalPrinciples = []string{
	"fairness",
	"accountability",
	"transparency",
	"privacy",
	"human_oversight",
}

// Residual-risk severity band boundaries. The bands are carried over
// from the governing policy document as-is; they are surfaced through
// configuration rather than inferred.
const (
	// RiskScoreCriticalMin is the minimum residual-risk score classified
	// as CRITICAL.
	RiskScoreCriticalMin = 8

	// RiskScoreHighMin is the minimum residual-risk score classified as HIGH.
	RiskScoreHighMin = 6

	// RiskScoreMediumMin is the minimum residual-risk score classified as MEDIUM.
	RiskScoreMediumMin = 4
)
