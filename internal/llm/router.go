// Package llm defines the contract for the model-routing client used to
// generate follow-up questions and reasoning. The routing implementation
// itself lives outside this repository; callers here always bound calls
// with context timeouts and absorb failures into degraded results.
package llm

import "context"

// Request is one routed prompt.
type Request struct {
	// Prompt is the user-level prompt text.
	Prompt string

	// SystemPrompt optionally sets the system instruction.
	SystemPrompt string

	// ModelPreference optionally requests a specific model tier
	// (e.g. "fast", "reasoning"). Routers may ignore it.
	ModelPreference string

	// ResponseFormat optionally requests a structured output format
	// (e.g. "json"). Routers may ignore it.
	ResponseFormat string
}

// Response is the routed model output.
type Response struct {
	// Content is the raw response text.
	Content string

	// Model identifies which model produced the response.
	Model string
}

// Router routes a prompt to an appropriate model and returns its
// response. Implementations must respect context cancellation; they are
// always invoked under a deadline.
type Router interface {
	Route(ctx context.Context, req *Request) (*Response, error)
}

// RouterFunc adapts a function to the Router interface. Used by tests
// to script responses.
type RouterFunc func(ctx context.Context, req *Request) (*Response, error)

// Route implements Router.
func (f RouterFunc) Route(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}
