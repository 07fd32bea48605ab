// Package stage implements the five interview stage agents. Each agent
// walks its question bank through the conversation quality loop and
// assembles the stage deliverable from the accepted answers.
package stage

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/uaip-labs/uaip/internal/constants"
)

//go:embed questions.yaml
var questionsYAML []byte

// Question is one item from a stage's question bank.
type Question struct {
	// Key identifies which deliverable field the answer feeds.
	Key string `yaml:"key"`

	// Prompt is the question text shown to the user.
	Prompt string `yaml:"prompt"`
}

// stageBank is one stage's entry in the embedded question bank.
type stageBank struct {
	Stage     int        `yaml:"stage"`
	Name      string     `yaml:"name"`
	Questions []Question `yaml:"questions"`
}

// questionBank holds the parsed per-stage question lists.
//
//nolint:gochecknoglobals // loaded once from the embedded bank at init
var questionBank map[int][]Question

// init parses the embedded question bank at startup.
//
//nolint:gochecknoinits // required to preload the embedded question bank
func init() {
	var err error
	questionBank, err = parseQuestionBank(questionsYAML)
	if err != nil {
		// The bank is embedded, so a parse failure is a compile-time bug
		// we want to know about immediately.
		panic(fmt.Sprintf("failed to load embedded question bank: %v", err))
	}
}

// parseQuestionBank decodes and validates the YAML question bank.
func parseQuestionBank(raw []byte) (map[int][]Question, error) {
	var doc struct {
		Stages []stageBank `yaml:"stages"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing question bank: %w", err)
	}

	bank := make(map[int][]Question, len(doc.Stages))
	for _, sb := range doc.Stages {
		if sb.Stage < constants.MinStage || sb.Stage > constants.MaxStage {
			return nil, fmt.Errorf("question bank has out-of-range stage %d", sb.Stage)
		}
		if len(sb.Questions) == 0 {
			return nil, fmt.Errorf("question bank stage %d has no questions", sb.Stage)
		}
		for _, q := range sb.Questions {
			if q.Key == "" || q.Prompt == "" {
				return nil, fmt.Errorf("question bank stage %d has a question with an empty key or prompt", sb.Stage)
			}
		}
		bank[sb.Stage] = sb.Questions
	}

	for stage := constants.MinStage; stage <= constants.MaxStage; stage++ {
		if _, ok := bank[stage]; !ok {
			return nil, fmt.Errorf("question bank is missing stage %d", stage)
		}
	}
	return bank, nil
}

// Questions returns the question bank for a stage. The returned slice
// must not be modified.
func Questions(stage int) []Question {
	return questionBank[stage]
}
