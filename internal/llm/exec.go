package llm

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"

	uaiperrors "github.com/uaip-labs/uaip/internal/errors"
)

// CommandExecutor abstracts command execution so tests can script
// responses without spawning subprocesses.
type CommandExecutor interface {
	// Execute runs the command and returns stdout, stderr, and any error.
	Execute(ctx context.Context, cmd *exec.Cmd) (stdout, stderr []byte, err error)
}

// DefaultExecutor runs commands with the operating system's process
// execution.
type DefaultExecutor struct{}

// Execute runs the command and captures its output.
func (e *DefaultExecutor) Execute(_ context.Context, cmd *exec.Cmd) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// ExecRouter routes prompts to an external model CLI (claude, codex,
// gemini, or anything prompt-in/text-out). The prompt is passed on
// stdin; the system prompt, when supported, rides along as an extra
// argument. Model selection and retry policy belong to the external
// tool.
type ExecRouter struct {
	command   string
	args      []string
	systemArg string
	executor  CommandExecutor
	logger    zerolog.Logger
}

// ExecRouterOption configures an ExecRouter.
type ExecRouterOption func(*ExecRouter)

// WithExecutor overrides the subprocess executor. Used by tests.
func WithExecutor(e CommandExecutor) ExecRouterOption {
	return func(r *ExecRouter) {
		r.executor = e
	}
}

// WithSystemArg sets the flag used to pass the system prompt to the
// external command (e.g. "--append-system-prompt" for claude). Empty
// disables system-prompt forwarding; it is then prepended to the prompt.
func WithSystemArg(flag string) ExecRouterOption {
	return func(r *ExecRouter) {
		r.systemArg = flag
	}
}

// NewExecRouter creates a router that shells out to an external model
// CLI. The default configuration targets claude in print mode.
func NewExecRouter(command string, args []string, logger zerolog.Logger, opts ...ExecRouterOption) *ExecRouter {
	if command == "" {
		command = "claude"
	}
	if args == nil {
		args = []string{"-p", "--output-format", "text"}
	}
	r := &ExecRouter{
		command:   command,
		args:      args,
		systemArg: "--append-system-prompt",
		executor:  &DefaultExecutor{},
		logger:    logger.With().Str("component", "llm").Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Route implements Router by running the external command once.
func (r *ExecRouter) Route(ctx context.Context, req *Request) (*Response, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	args := make([]string, len(r.args))
	copy(args, r.args)

	prompt := req.Prompt
	if req.SystemPrompt != "" {
		if r.systemArg != "" {
			args = append(args, r.systemArg, req.SystemPrompt)
		} else {
			prompt = req.SystemPrompt + "\n\n" + prompt
		}
	}

	cmd := exec.CommandContext(ctx, r.command, args...) //#nosec G204 // command comes from operator config
	cmd.Stdin = strings.NewReader(prompt)

	stdout, stderr, err := r.executor.Execute(ctx, cmd)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("failed to run %s: %w (stderr: %s)", r.command, err, truncate(string(stderr), 500))
	}

	content := strings.TrimSpace(string(stdout))
	if content == "" {
		return nil, fmt.Errorf("%w: %s produced no output", uaiperrors.ErrLLMEmptyResponse, r.command)
	}

	r.logger.Debug().
		Str("command", r.command).
		Int("prompt_len", len(req.Prompt)).
		Int("response_len", len(content)).
		Msg("routed prompt to external model CLI")

	return &Response{Content: content, Model: r.command}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
