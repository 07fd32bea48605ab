package stage

import "context"

// Responder supplies the user's answer to one interview question. The
// CLI implementation prompts interactively; tests script answers.
type Responder interface {
	// Respond returns the user's answer to the question. An error aborts
	// the interview.
	Respond(ctx context.Context, stageNumber int, question string) (string, error)
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(ctx context.Context, stageNumber int, question string) (string, error)

// Respond implements Responder.
func (f ResponderFunc) Respond(ctx context.Context, stageNumber int, question string) (string, error) {
	return f(ctx, stageNumber, question)
}
