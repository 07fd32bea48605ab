package stage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/uaip-labs/uaip/internal/domain"
	uaiperrors "github.com/uaip-labs/uaip/internal/errors"
	"github.com/uaip-labs/uaip/internal/llm"
	"github.com/uaip-labs/uaip/internal/quality"
)

// Agent conducts one stage's interview and assembles its deliverable.
type Agent interface {
	// StageNumber is the stage this agent serves (1-5).
	StageNumber() int

	// Name is the stage's display name.
	Name() string

	// ConductInterview runs the interview and returns the deliverable
	// plus the interview transcript for the session history.
	ConductInterview(ctx context.Context, sess *domain.Session) (domain.StageDeliverable, []domain.Message, error)
}

// Registry maps stage numbers to their agents.
// It provides thread-safe registration and lookup of agents.
type Registry struct {
	mu     sync.RWMutex
	agents map[int]Agent
}

// NewRegistry creates a new empty agent registry.
func NewRegistry() *Registry {
	return &Registry{
		agents: make(map[int]Agent),
	}
}

// Register adds an agent for its stage number.
// If an agent already exists for the stage, it is replaced.
func (r *Registry) Register(agent Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.agents[agent.StageNumber()] = agent
}

// Get retrieves the agent for a stage number.
// Returns ErrStageAgentNotFound if no agent is registered for the stage.
func (r *Registry) Get(stageNumber int) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agent, ok := r.agents[stageNumber]
	if !ok {
		return nil, fmt.Errorf("%w: stage %d", uaiperrors.ErrStageAgentNotFound, stageNumber)
	}
	return agent, nil
}

// Has checks if an agent is registered for the stage.
func (r *Registry) Has(stageNumber int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.agents[stageNumber]
	return ok
}

// Stages returns all registered stage numbers in ascending order.
func (r *Registry) Stages() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stages := make([]int, 0, len(r.agents))
	for stage := range r.agents {
		stages = append(stages, stage)
	}
	sort.Ints(stages)
	return stages
}

// Deps bundles the capabilities the default agents need.
type Deps struct {
	Evaluator quality.Agent
	Router    llm.Router
	Responder Responder
	Logger    zerolog.Logger

	// RiskBands drive the stage-5 governance decision.
	RiskBands domain.RiskBands

	// MaxAttempts bounds each question's quality-retry loop; zero means
	// the default.
	MaxAttempts int

	// InterviewerOpts pass through to the shared interviewer.
	InterviewerOpts []InterviewerOption
}

// NewDefaultRegistry creates a registry with all five stage agents
// wired to a shared interviewer.
func NewDefaultRegistry(deps Deps) *Registry {
	opts := append([]InterviewerOption{WithMaxAttempts(deps.MaxAttempts)}, deps.InterviewerOpts...)
	interviewer := NewInterviewer(deps.Evaluator, deps.Router, deps.Responder, deps.Logger, opts...)

	r := NewRegistry()
	r.Register(&BusinessAgent{interviewer: interviewer})
	r.Register(&MetricsAgent{interviewer: interviewer})
	r.Register(&DataAgent{interviewer: interviewer})
	r.Register(&UXAgent{interviewer: interviewer})
	r.Register(&EthicsAgent{interviewer: interviewer, bands: deps.RiskBands})
	return r
}
