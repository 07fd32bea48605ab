package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uaip-labs/uaip/internal/config"
	"github.com/uaip-labs/uaip/internal/consistency"
	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
	"github.com/uaip-labs/uaip/internal/gate"
	"github.com/uaip-labs/uaip/internal/llm"
	"github.com/uaip-labs/uaip/internal/orchestrator"
	"github.com/uaip-labs/uaip/internal/quality"
	"github.com/uaip-labs/uaip/internal/session"
	"github.com/uaip-labs/uaip/internal/stage"
)

// newTestApp wires an app against a temp home with scripted answers in
// place of the interactive form and a canned consistency review in
// place of the external model CLI.
func newTestApp(t *testing.T) *app {
	t.Helper()

	home := t.TempDir()
	store, err := session.NewFileStore(home)
	require.NoError(t, err)

	router := llm.RouterFunc(func(_ context.Context, _ *llm.Request) (*llm.Response, error) {
		return &llm.Response{Content: `{"contradictions":[]}`, Model: "test"}, nil
	})
	acceptAll := quality.AgentFunc(func(_ context.Context, _, _ string, _ []domain.Message) (*domain.QualityAssessment, error) {
		return &domain.QualityAssessment{QualityScore: 9, IsAcceptable: true}, nil
	})
	// The scores string doubles as a generic answer: stage 3 parses the
	// six dimension scores out of it, every other field just needs
	// non-empty text.
	responder := stage.ResponderFunc(func(_ context.Context, stageNumber int, _ string) (string, error) {
		return fmt.Sprintf("stage %d detail, completeness: 7, accuracy: 7, consistency: 7, timeliness: 7, validity: 7, uniqueness: 7", stageNumber), nil
	})

	registry := stage.NewDefaultRegistry(stage.Deps{
		Evaluator: acceptAll,
		Router:    router,
		Responder: responder,
		Logger:    zerolog.Nop(),
		RiskBands: domain.DefaultRiskBands(),
	})

	manager := orchestrator.NewSessionManager(
		store,
		registry,
		gate.NewValidator(0),
		consistency.NewChecker(router, zerolog.Nop()),
		zerolog.Nop(),
	)

	return &app{
		cfg:     config.Default(),
		home:    home,
		store:   store,
		manager: manager,
		logger:  zerolog.Nop(),
	}
}

func createTestSession(t *testing.T, a *app) *domain.Session {
	t.Helper()
	sess, err := a.manager.CreateSession(context.Background(), "tester", "churn-predictor")
	require.NoError(t, err)

	// The initial persist is asynchronous; wait for it so store-backed
	// commands (list) see the session.
	require.Eventually(t, func() bool {
		_, getErr := a.store.Get(context.Background(), sess.ID)
		return getErr == nil
	}, 2*time.Second, 10*time.Millisecond)

	return sess
}

func TestRunSessionCreate(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	var buf bytes.Buffer

	err := runSessionCreate(context.Background(), a, &buf, "churn-predictor", "dana", OutputText)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "churn-predictor")
	assert.Contains(t, out, "dana")
	assert.Contains(t, out, "Next: uaip run sess-")

	// The initial persist is asynchronous; wait for it so cleanup of the
	// temp home does not race with the background write.
	require.Eventually(t, func() bool {
		sessions, listErr := a.store.List(context.Background())
		return listErr == nil && len(sessions) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunSessionCreate_JSON(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	var buf bytes.Buffer

	err := runSessionCreate(context.Background(), a, &buf, "churn-predictor", "dana", OutputJSON)
	require.NoError(t, err)

	var sess domain.Session
	require.NoError(t, json.Unmarshal(buf.Bytes(), &sess))
	assert.Equal(t, "churn-predictor", sess.ProjectName)
	assert.Equal(t, 1, sess.CurrentStage)

	// The initial persist is asynchronous; wait for it so cleanup of the
	// temp home does not race with the background write.
	require.Eventually(t, func() bool {
		_, getErr := a.store.Get(context.Background(), sess.ID)
		return getErr == nil
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunSessionList(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	ctx := context.Background()

	var empty bytes.Buffer
	require.NoError(t, runSessionList(ctx, a, &empty, OutputText))
	assert.Contains(t, empty.String(), "No sessions found")

	sess := createTestSession(t, a)

	var buf bytes.Buffer
	require.NoError(t, runSessionList(ctx, a, &buf, OutputText))
	assert.Contains(t, buf.String(), sess.ID)
	assert.Contains(t, buf.String(), "churn-predictor")
}

func TestRunStageCommand(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	sess := createTestSession(t, a)
	var buf bytes.Buffer

	err := runStage(context.Background(), a, &buf, sess.ID, 0, OutputText)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Stage 1: "+constants.StageNameBusinessTranslation)
	assert.Contains(t, out, "Stage 1 interview complete.")

	stored, err := a.manager.GetSession(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Contains(t, stored.StageData, 1)
}

func TestRunAdvance_GateRefusalListsMissing(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	sess := createTestSession(t, a)
	var buf bytes.Buffer

	// No interview has run, so the stage 1 deliverable is missing.
	err := runAdvance(context.Background(), a, &buf, sess.ID, OutputText)
	require.Error(t, err)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
	assert.Contains(t, buf.String(), "gate refused")
	assert.Contains(t, buf.String(), "Missing:")
}

func TestRunAdvance_MovesToNextStage(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	sess := createTestSession(t, a)
	ctx := context.Background()

	var runBuf bytes.Buffer
	require.NoError(t, runStage(ctx, a, &runBuf, sess.ID, 0, OutputText))

	var buf bytes.Buffer
	err := runAdvance(ctx, a, &buf, sess.ID, OutputText)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Advanced to stage 2")
}

func TestFullLifecycleThroughCharter(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	sess := createTestSession(t, a)
	ctx := context.Background()

	for stageNumber := 1; stageNumber <= 5; stageNumber++ {
		var buf bytes.Buffer
		require.NoError(t, runStage(ctx, a, &buf, sess.ID, 0, OutputText), "stage %d", stageNumber)
		require.NoError(t, runAdvance(ctx, a, &buf, sess.ID, OutputText), "advance %d", stageNumber)
	}

	var buf bytes.Buffer
	err := runCharter(ctx, a, &buf, sess.ID, OutputText)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "AI Project Charter: churn-predictor")
	assert.Contains(t, buf.String(), "Saved to")
}

func TestRunPauseAndResume(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	sess := createTestSession(t, a)
	ctx := context.Background()

	var pauseBuf bytes.Buffer
	require.NoError(t, runPause(ctx, a, &pauseBuf, sess.ID, OutputText))
	assert.Contains(t, pauseBuf.String(), "Session paused")

	var resumeBuf bytes.Buffer
	require.NoError(t, runResume(ctx, a, &resumeBuf, sess.ID, OutputText))
	assert.Contains(t, resumeBuf.String(), "in_progress")
}

func TestRunAbandon_Forced(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	sess := createTestSession(t, a)
	var buf bytes.Buffer

	err := runAbandon(context.Background(), a, &buf, sess.ID, true, OutputText)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "abandoned")

	// A second abandon hits the terminal-state guard.
	err = runAbandon(context.Background(), a, &buf, sess.ID, true, OutputText)
	require.Error(t, err)
}

func TestRunCheck(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	sess := createTestSession(t, a)
	ctx := context.Background()

	var runBuf bytes.Buffer
	require.NoError(t, runStage(ctx, a, &runBuf, sess.ID, 0, OutputText))
	require.NoError(t, runAdvance(ctx, a, &runBuf, sess.ID, OutputText))
	require.NoError(t, runStage(ctx, a, &runBuf, sess.ID, 0, OutputText))

	var buf bytes.Buffer
	require.NoError(t, runCheck(ctx, a, &buf, sess.ID, OutputText))
	assert.Contains(t, buf.String(), "Consistent: true")
	assert.Contains(t, buf.String(), "Feasibility: HIGH")
}

func TestRunCharter_BeforeCompletionBlocked(t *testing.T) {
	t.Parallel()

	a := newTestApp(t)
	sess := createTestSession(t, a)
	var buf bytes.Buffer

	err := runCharter(context.Background(), a, &buf, sess.ID, OutputText)
	require.Error(t, err)
	assert.Contains(t, buf.String(), "Charter blocked")
}
