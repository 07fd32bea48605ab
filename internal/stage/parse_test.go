package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"commas", "a, b, c", []string{"a", "b", "c"}},
		{"semicolons", "a; b;c", []string{"a", "b", "c"}},
		{"newlines", "a\nb\n\nc", []string{"a", "b", "c"}},
		{"mixed", "a, b;\nc", []string{"a", "b", "c"}},
		{"single item", "billing warehouse", []string{"billing warehouse"}},
		{"empty", "", nil},
		{"only separators", ", ;\n", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, SplitList(tt.input))
		})
	}
}

func TestParseScores(t *testing.T) {
	t.Parallel()

	got := ParseScores("completeness: 8, accuracy=7, Timeliness 9.5")
	assert.Equal(t, map[string]float64{
		"completeness": 8,
		"accuracy":     7,
		"timeliness":   9.5,
	}, got)
}

func TestParseScores_SkipsUnscored(t *testing.T) {
	t.Parallel()

	got := ParseScores("completeness: 8, accuracy is fine, validity: high")
	assert.Equal(t, map[string]float64{"completeness": 8}, got)
}

func TestParseScores_MultiWordNames(t *testing.T) {
	t.Parallel()

	got := ParseScores("human oversight: 6")
	assert.Equal(t, map[string]float64{"human_oversight": 6}, got)
}

func TestParseRisks(t *testing.T) {
	t.Parallel()

	risks := ParseRisks("proxy discrimination via postcode: 6, stale training data: 3")
	require.Len(t, risks, 2)
	assert.Equal(t, "proxy discrimination via postcode", risks[0].Description)
	assert.Equal(t, 6, risks[0].Score)
	assert.Equal(t, "stale training data", risks[1].Description)
	assert.Equal(t, 3, risks[1].Score)
}

func TestParseRisks_UnscoredKeptAtZero(t *testing.T) {
	t.Parallel()

	risks := ParseRisks("possible automation bias")
	require.Len(t, risks, 1)
	assert.Equal(t, "possible automation bias", risks[0].Description)
	assert.Equal(t, 0, risks[0].Score)
}

func TestParseRisks_None(t *testing.T) {
	t.Parallel()

	assert.Empty(t, ParseRisks("none"))
	assert.Empty(t, ParseRisks("N/A"))
	assert.Empty(t, ParseRisks(""))
}

func TestInferArchetype(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		target    string
		objective string
		want      string
	}{
		{"churn probability", "churn probability per account", "reduce churn", "classification"},
		{"fraud flag", "flag suspicious transactions", "cut fraud losses", "classification"},
		{"recommendation", "recommend the next course for each learner", "increase engagement", "recommendation"},
		{"ranking", "rank support tickets by urgency", "faster triage", "ranking"},
		{"regression", "estimate how much a claim will cost", "reduce payout variance", "regression"},
		{"anomaly", "surface unusual sensor readings", "catch failures early", "anomaly_detection"},
		{"clustering", "segment customers into behavior groups", "tailor campaigns", "clustering"},
		{"forecasting", "forecast next quarter demand per SKU", "reduce stockouts", "forecasting"},
		{"generation", "draft a summary of each incident report", "save analyst time", "generation"},
		{"falls back to objective", "a useful output", "detect fraudulent invoices", "classification"},
		{"default", "something helpful", "make things better", "classification"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, InferArchetype(tt.target, tt.objective))
		})
	}
}
