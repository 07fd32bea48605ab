// Package orchestrator implements the stage-gate state machine that
// drives a scoping session from creation through charter generation.
//
// Locking protocol: the manager's own mutex guards only structural
// mutation of the session arena (adding or evicting entries). Each
// managed session carries its own mutex, held for state reads and
// mutations but never across interviews, LLM calls, or store I/O.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/uaip-labs/uaip/internal/clock"
	"github.com/uaip-labs/uaip/internal/consistency"
	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
	uaiperrors "github.com/uaip-labs/uaip/internal/errors"
	"github.com/uaip-labs/uaip/internal/gate"
	"github.com/uaip-labs/uaip/internal/session"
	"github.com/uaip-labs/uaip/internal/stage"
)

// createPersistTimeout bounds the background persist of a new session.
const createPersistTimeout = 10 * time.Second

// SessionManager owns the in-memory session arena and coordinates the
// stage agents, gate validator, consistency checker, and store.
type SessionManager struct {
	arena *arena

	store    session.Store
	registry *stage.Registry
	gate     *gate.Validator
	checker  *consistency.Checker
	clk      clock.Clock
	logger   zerolog.Logger
}

// ManagerOption configures a SessionManager.
type ManagerOption func(*SessionManager)

// WithClock overrides the manager's clock, for tests.
func WithClock(c clock.Clock) ManagerOption {
	return func(m *SessionManager) {
		m.clk = c
	}
}

// NewSessionManager creates a session manager.
func NewSessionManager(store session.Store, registry *stage.Registry, validator *gate.Validator, checker *consistency.Checker, logger zerolog.Logger, opts ...ManagerOption) *SessionManager {
	m := &SessionManager{
		arena:    newArena(),
		store:    store,
		registry: registry,
		gate:     validator,
		checker:  checker,
		clk:      clock.System{},
		logger:   logger.With().Str("component", "orchestrator").Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateSession starts a new scoping session at stage 1. The session is
// immediately usable; the initial persist runs in the background and a
// failure there is logged, not fatal, because the first stage
// advancement persists the full state anyway.
func (m *SessionManager) CreateSession(ctx context.Context, userID, projectName string) (*domain.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if userID == "" {
		return nil, fmt.Errorf("create session: user ID %w", uaiperrors.ErrEmptyValue)
	}
	if projectName == "" {
		return nil, fmt.Errorf("create session: project name %w", uaiperrors.ErrEmptyValue)
	}

	now := m.clk.Now()
	sess := &domain.Session{
		ID:            session.GenerateSessionID(),
		UserID:        userID,
		ProjectName:   projectName,
		CurrentStage:  constants.MinStage,
		Status:        constants.SessionStatusInProgress,
		StartedAt:     now,
		LastUpdatedAt: now,
		StageData:     domain.StageData{},
		SchemaVersion: constants.SessionSchemaVersion,
	}

	ms, err := m.arena.add(sess)
	if err != nil {
		return nil, err
	}

	// Best-effort initial persist, off the caller's critical path. Later
	// persists wait for this attempt to finish before writing.
	snapshot := copySession(sess)
	go func() {
		defer close(ms.created)
		pctx, cancel := context.WithTimeout(context.Background(), createPersistTimeout)
		defer cancel()
		if err := m.store.Create(pctx, snapshot); err != nil {
			m.logger.Warn().
				Err(err).
				Str("session_id", sess.ID).
				Msg("initial session persist failed; will retry on next update")
		}
	}()

	m.logger.Info().
		Str("session_id", sess.ID).
		Str("project", projectName).
		Msg("session created")

	return copySession(sess), nil
}

// GetSession returns a snapshot of the session state.
func (m *SessionManager) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	ms, err := m.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()
	return copySession(ms.sess), nil
}

// ListSessions returns all persisted sessions, newest first.
func (m *SessionManager) ListSessions(ctx context.Context) ([]*domain.Session, error) {
	return m.store.List(ctx)
}

// RunStage conducts the interview for a stage and stores its
// deliverable on the session.
//
// The requested stage must not be ahead of the session's current stage
// (ErrStageSkip); re-running an earlier accepted stage overwrites its
// deliverable. The session lock is NOT held during the interview, only
// around the state reads before it and the mutation after it. The
// post-interview persist is mandatory: a store failure fails the call
// with ErrPersistence.
func (m *SessionManager) RunStage(ctx context.Context, sessionID string, stageNumber int) (domain.StageDeliverable, error) {
	if stageNumber < constants.MinStage || stageNumber > constants.MaxStage {
		return nil, fmt.Errorf("%w: %d", uaiperrors.ErrInvalidStageNumber, stageNumber)
	}

	ms, err := m.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ms.mu.Lock()
	if ms.sess.IsTerminal() {
		status := ms.sess.Status
		ms.mu.Unlock()
		return nil, fmt.Errorf("%w: session is %s", uaiperrors.ErrSessionTerminal, status)
	}
	if stageNumber > ms.sess.CurrentStage {
		current := ms.sess.CurrentStage
		ms.mu.Unlock()
		return nil, fmt.Errorf("%w: requested stage %d but session is at stage %d",
			uaiperrors.ErrStageSkip, stageNumber, current)
	}
	snapshot := copySession(ms.sess)
	ms.mu.Unlock()

	agent, err := m.registry.Get(stageNumber)
	if err != nil {
		return nil, err
	}

	m.logger.Info().
		Str("session_id", sessionID).
		Int("stage", stageNumber).
		Str("stage_name", agent.Name()).
		Msg("stage interview starting")

	// Interview runs without the session lock; it blocks on user input
	// and LLM calls.
	deliverable, transcript, err := agent.ConductInterview(ctx, snapshot)
	if err != nil {
		return nil, fmt.Errorf("stage %d interview: %w", stageNumber, err)
	}

	ms.mu.Lock()
	if ms.sess.StageData == nil {
		ms.sess.StageData = domain.StageData{}
	}
	ms.sess.StageData[stageNumber] = deliverable
	ms.sess.ConversationHistory = append(ms.sess.ConversationHistory, transcript...)
	ms.sess.LastUpdatedAt = m.clk.Now()
	persistCopy := copySession(ms.sess)
	ms.mu.Unlock()

	// Stage output must land on disk; losing it silently would discard
	// the user's whole interview.
	if err := m.persist(ctx, ms, persistCopy); err != nil {
		return nil, err
	}

	return deliverable, nil
}

// AdvanceToNextStage validates the current stage's deliverable against
// the gate and, if it passes, advances the session and records a
// checkpoint. A failing gate refuses advancement with a StageGateError
// and leaves the session unchanged. Completing stage 5 marks the
// session completed instead of advancing.
func (m *SessionManager) AdvanceToNextStage(ctx context.Context, sessionID string) (*domain.Session, error) {
	ms, err := m.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ms.mu.Lock()
	if ms.sess.IsTerminal() {
		status := ms.sess.Status
		ms.mu.Unlock()
		return nil, fmt.Errorf("%w: session is %s", uaiperrors.ErrSessionTerminal, status)
	}

	current := ms.sess.CurrentStage
	deliverable := ms.sess.StageData[current]

	// Gate validation is pure and cheap, fine to run under the lock.
	validation, err := m.gate.ValidateStage(current, deliverable)
	if err != nil {
		ms.mu.Unlock()
		return nil, err
	}
	if !validation.CanProceed {
		ms.mu.Unlock()
		m.logger.Info().
			Str("session_id", sessionID).
			Int("stage", current).
			Float64("score", validation.CompletenessScore).
			Strs("missing", validation.MissingItems).
			Msg("stage gate refused advancement")
		return nil, uaiperrors.NewStageGateError(current,
			validation.MissingItems, validation.Concerns, validation.CompletenessScore)
	}

	if current == constants.MaxStage {
		ms.sess.Status = constants.SessionStatusCompleted
	} else {
		ms.sess.CurrentStage = current + 1
	}
	ms.sess.LastUpdatedAt = m.clk.Now()

	checkpoint := domain.Checkpoint{
		StageNumber:      current,
		Timestamp:        m.clk.Now(),
		ValidationStatus: true,
		Snapshot: domain.Snapshot{
			CurrentStage:        ms.sess.CurrentStage,
			StageData:           ms.sess.StageData.Clone(),
			ConversationHistory: copyMessages(ms.sess.ConversationHistory),
		},
	}
	ms.sess.Checkpoints = append(ms.sess.Checkpoints, checkpoint)

	persistCopy := copySession(ms.sess)
	ms.mu.Unlock()

	if err := m.persist(ctx, ms, persistCopy); err != nil {
		return nil, err
	}
	if err := m.store.AppendCheckpoint(ctx, sessionID, &checkpoint); err != nil {
		return nil, fmt.Errorf("%w: checkpoint: %s", uaiperrors.ErrPersistence, err)
	}

	m.logger.Info().
		Str("session_id", sessionID).
		Int("completed_stage", current).
		Int("current_stage", persistCopy.CurrentStage).
		Str("status", persistCopy.Status.String()).
		Msg("stage advanced")

	return persistCopy, nil
}

// RunConsistencyCheck reviews the collected stage data for cross-stage
// contradictions. The session lock is released before the LLM calls.
func (m *SessionManager) RunConsistencyCheck(ctx context.Context, sessionID string) (*domain.ConsistencyReport, error) {
	ms, err := m.acquire(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ms.mu.Lock()
	data := ms.sess.StageData.Clone()
	ms.mu.Unlock()

	return m.checker.Check(ctx, data)
}

// PauseSession marks the session paused so it can be resumed later.
func (m *SessionManager) PauseSession(ctx context.Context, sessionID string) error {
	return m.setStatus(ctx, sessionID, constants.SessionStatusPaused)
}

// AbandonSession marks the session abandoned. Abandoned sessions are
// terminal.
func (m *SessionManager) AbandonSession(ctx context.Context, sessionID string) error {
	return m.setStatus(ctx, sessionID, constants.SessionStatusAbandoned)
}

// setStatus transitions the session's lifecycle status and persists.
func (m *SessionManager) setStatus(ctx context.Context, sessionID string, status constants.SessionStatus) error {
	ms, err := m.acquire(ctx, sessionID)
	if err != nil {
		return err
	}

	ms.mu.Lock()
	if ms.sess.IsTerminal() {
		current := ms.sess.Status
		ms.mu.Unlock()
		return fmt.Errorf("%w: session is %s", uaiperrors.ErrSessionTerminal, current)
	}
	ms.sess.Status = status
	ms.sess.LastUpdatedAt = m.clk.Now()
	persistCopy := copySession(ms.sess)
	ms.mu.Unlock()

	return m.persist(ctx, ms, persistCopy)
}

// ResumeSession loads a session from the store and restores its state
// from the latest checkpoint, which is authoritative over the session
// file for stage data and position. Paused sessions return to
// in_progress.
func (m *SessionManager) ResumeSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.IsTerminal() {
		return nil, fmt.Errorf("%w: session is %s", uaiperrors.ErrSessionTerminal, sess.Status)
	}

	checkpoint, err := m.store.LatestCheckpoint(ctx, sessionID)
	switch {
	case err == nil:
		restoreSnapshot(sess, checkpoint)
	case errors.Is(err, uaiperrors.ErrCheckpointNotFound):
		// The checkpoint log can be missing even after completed stages
		// (lost or never written); the checkpoint list embedded in the
		// session file is the fallback. If both are empty no stage was
		// ever completed and the session file is all there is.
		if cp := sess.LatestCheckpoint(); cp != nil {
			restoreSnapshot(sess, cp)
		}
	default:
		return nil, err
	}

	if sess.Status == constants.SessionStatusPaused {
		sess.Status = constants.SessionStatusInProgress
	}
	sess.LastUpdatedAt = m.clk.Now()

	ms := m.arena.replace(sess)

	if err := m.persist(ctx, ms, copySession(sess)); err != nil {
		return nil, err
	}

	m.logger.Info().
		Str("session_id", sessionID).
		Int("current_stage", sess.CurrentStage).
		Msg("session resumed")

	return copySession(sess), nil
}

// acquire returns the managed session, lazily loading it from the store
// on first access so single-shot CLI invocations see persisted state.
func (m *SessionManager) acquire(ctx context.Context, sessionID string) (*managedSession, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID %w", uaiperrors.ErrEmptyValue)
	}
	if ms, ok := m.arena.get(sessionID); ok {
		return ms, nil
	}

	sess, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return m.arena.getOrAdd(sess), nil
}

// persist writes the session state, hard-failing with ErrPersistence.
// It waits for the session's initial background create to finish first
// so the create cannot land after (and clobber) this newer state.
func (m *SessionManager) persist(ctx context.Context, ms *managedSession, sess *domain.Session) error {
	if ms.created != nil {
		select {
		case <-ms.created:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := m.store.Update(ctx, sess); err != nil {
		if errors.Is(err, uaiperrors.ErrSessionNotFound) {
			// The async create may not have landed yet (or failed); fall
			// back to creating the session file now.
			if createErr := m.store.Create(ctx, sess); createErr == nil {
				return nil
			}
		}
		return fmt.Errorf("%w: %s", uaiperrors.ErrPersistence, err)
	}
	return nil
}

// restoreSnapshot overwrites the session's restorable state from a
// checkpoint snapshot.
func restoreSnapshot(sess *domain.Session, cp *domain.Checkpoint) {
	sess.CurrentStage = cp.Snapshot.CurrentStage
	sess.StageData = cp.Snapshot.StageData.Clone()
	sess.ConversationHistory = copyMessages(cp.Snapshot.ConversationHistory)
}

// copySession returns a deep copy safe to hand outside the lock.
func copySession(sess *domain.Session) *domain.Session {
	out := *sess
	out.StageData = sess.StageData.Clone()
	out.ConversationHistory = copyMessages(sess.ConversationHistory)
	out.Checkpoints = make([]domain.Checkpoint, len(sess.Checkpoints))
	copy(out.Checkpoints, sess.Checkpoints)
	return &out
}

// copyMessages copies a message slice.
func copyMessages(msgs []domain.Message) []domain.Message {
	if msgs == nil {
		return nil
	}
	out := make([]domain.Message, len(msgs))
	copy(out, msgs)
	return out
}
