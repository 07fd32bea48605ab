package stage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uaip-labs/uaip/internal/constants"
)

func TestEmbeddedQuestionBank(t *testing.T) {
	t.Parallel()

	for stage := constants.MinStage; stage <= constants.MaxStage; stage++ {
		questions := Questions(stage)
		require.NotEmpty(t, questions, "stage %d must have questions", stage)

		seen := make(map[string]bool)
		for _, q := range questions {
			assert.NotEmpty(t, q.Key)
			assert.NotEmpty(t, q.Prompt)
			assert.LessOrEqual(t, len(q.Prompt), constants.MaxQuestionLength)
			assert.False(t, seen[q.Key], "duplicate key %q in stage %d", q.Key, stage)
			seen[q.Key] = true
		}
	}
}

func TestEmbeddedQuestionBank_CoversPrinciples(t *testing.T) {
	t.Parallel()

	keys := make(map[string]bool)
	for _, q := range Questions(5) {
		keys[q.Key] = true
	}
	for _, principle := range constants.EthicalPrinciples {
		assert.True(t, keys["principle_"+principle], "stage 5 must ask about %s", principle)
	}
}

func TestParseQuestionBank_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
	}{
		{"not yaml", "{{{"},
		{"missing stages", "stages:\n  - stage: 1\n    questions:\n      - key: a\n        prompt: b\n"},
		{"out of range stage", "stages:\n  - stage: 9\n    questions:\n      - key: a\n        prompt: b\n"},
		{"empty key", "stages:\n  - stage: 1\n    questions:\n      - key: \"\"\n        prompt: b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := parseQuestionBank([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}
