package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/uaip-labs/uaip/internal/config"
	"github.com/uaip-labs/uaip/internal/consistency"
	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/conversation"
	"github.com/uaip-labs/uaip/internal/gate"
	"github.com/uaip-labs/uaip/internal/llm"
	"github.com/uaip-labs/uaip/internal/orchestrator"
	"github.com/uaip-labs/uaip/internal/quality"
	"github.com/uaip-labs/uaip/internal/session"
	"github.com/uaip-labs/uaip/internal/stage"
)

// app bundles the wired service graph behind a CLI command.
type app struct {
	cfg     *config.Config
	home    string
	store   session.Store
	manager *orchestrator.SessionManager
	logger  zerolog.Logger
}

// newApp loads configuration and wires the session manager. The
// responder supplies interview answers; non-interactive commands pass
// nil since their code paths never reach a question.
func newApp(ctx context.Context, responder stage.Responder, logger zerolog.Logger) (*app, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	return newAppWithConfig(cfg, responder, logger)
}

// newAppWithConfig wires the service graph from an explicit config.
// Split out so tests can inject scripted routers via config overrides.
func newAppWithConfig(cfg *config.Config, responder stage.Responder, logger zerolog.Logger) (*app, error) {
	home, err := config.HomeDir(cfg.Home)
	if err != nil {
		return nil, err
	}

	store, err := session.NewFileStore(home)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	router := llm.NewExecRouter(cfg.LLM.Command, cfg.LLM.Args, logger,
		llm.WithSystemArg(cfg.LLM.SystemArg))
	evaluator := quality.NewLLMAgent(router, cfg.Quality.Threshold, logger)

	registry := stage.NewDefaultRegistry(stage.Deps{
		Evaluator:   evaluator,
		Router:      router,
		Responder:   responder,
		Logger:      logger,
		RiskBands:   cfg.Risk,
		MaxAttempts: cfg.Quality.MaxAttempts,
		InterviewerOpts: []stage.InterviewerOption{
			stage.WithEngineOptions(conversation.WithEvaluationTimeout(cfg.Quality.EvaluationTimeout)),
		},
	})

	manager := orchestrator.NewSessionManager(
		store,
		registry,
		gate.NewValidator(cfg.Gate.Threshold),
		consistency.NewChecker(router, logger),
		logger,
	)

	return &app{
		cfg:     cfg,
		home:    home,
		store:   store,
		manager: manager,
		logger:  logger,
	}, nil
}

// charterPath returns the on-disk location of a session's charter.
func (a *app) charterPath(sessionID string) string {
	return filepath.Join(a.home, constants.SessionsDir, sessionID, constants.CharterFileName)
}
