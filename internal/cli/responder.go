package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh"
)

// formRunner matches huh.Form's Run method so tests can inject mocks.
type formRunner interface {
	Run() error
}

// createQuestionForm is the factory for interview question forms.
// Overridable in tests.
//
//nolint:gochecknoglobals // test injection point
var createQuestionForm = defaultCreateQuestionForm

// defaultCreateQuestionForm builds the huh form for one interview
// question. A multi-line text field fits the long-form answers the
// quality loop expects.
func defaultCreateQuestionForm(stageNumber int, question string, answer *string) formRunner {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title(fmt.Sprintf("Stage %d", stageNumber)).
				Description(question).
				Value(answer),
		),
	)
}

// huhResponder collects interview answers interactively.
type huhResponder struct{}

// newHuhResponder creates the interactive interview responder.
func newHuhResponder() *huhResponder {
	return &huhResponder{}
}

// Respond implements stage.Responder by prompting the user in the
// terminal.
func (r *huhResponder) Respond(ctx context.Context, stageNumber int, question string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	var answer string
	form := createQuestionForm(stageNumber, question, &answer)
	if err := form.Run(); err != nil {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return answer, nil
}
