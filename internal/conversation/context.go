// Package conversation implements the per-question interview state
// machine: ask, validate, follow up, accept or escalate.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors,
//     internal/llm, internal/quality, internal/clock, internal/ctxutil, std lib
//   - MUST NOT import: internal/orchestrator, internal/stage, internal/cli
package conversation

import (
	"time"

	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
)

// Context is the ephemeral state for one in-flight question. It is
// created by the calling stage agent and discarded once the question is
// resolved; the thread history is folded into the session's conversation
// history by the caller. Never persisted on its own.
type Context struct {
	// SessionID is a non-owning back-reference to the session.
	SessionID string

	// StageNumber is the stage this question belongs to (1-5).
	StageNumber int

	// CurrentQuestion is the question currently awaiting an answer.
	CurrentQuestion string

	// History is the message thread for this question only.
	History []domain.Message

	// AttemptCount is the number of responses processed for the current
	// question. Resets to zero whenever the question changes.
	AttemptCount int

	// MaxAttempts bounds the quality-retry loop; on reaching it the
	// response is force-accepted (escalated).
	MaxAttempts int
}

// NewContext creates a conversation context for one question thread.
// A non-positive maxAttempts falls back to the default.
func NewContext(sessionID string, stageNumber, maxAttempts int) *Context {
	if maxAttempts <= 0 {
		maxAttempts = constants.DefaultMaxAttempts
	}
	return &Context{
		SessionID:   sessionID,
		StageNumber: stageNumber,
		MaxAttempts: maxAttempts,
	}
}

// SetQuestion switches the context to a new question and resets the
// attempt counter.
func (c *Context) SetQuestion(question string) {
	c.CurrentQuestion = question
	c.AttemptCount = 0
}

// AddMessage appends a message to the question thread.
func (c *Context) AddMessage(role constants.MessageRole, content string, at time.Time, metadata map[string]any) {
	c.History = append(c.History, domain.Message{
		Role:      role,
		Content:   content,
		Timestamp: at,
		Metadata:  metadata,
	})
}

// Messages returns a copy of the thread history so callers can fold it
// into the session without aliasing the live slice.
func (c *Context) Messages() []domain.Message {
	out := make([]domain.Message, len(c.History))
	copy(out, c.History)
	return out
}

// AttemptsExhausted reports whether the retry budget is spent.
func (c *Context) AttemptsExhausted() bool {
	return c.AttemptCount >= c.MaxAttempts
}
