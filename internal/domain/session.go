// Package domain provides shared domain types for the U-AIP scoping
// assistant. These types are used across all internal packages to ensure
// consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case.
package domain

import (
	"time"

	"github.com/uaip-labs/uaip/internal/constants"
)

// Session is the root aggregate for one scoping interview. It is created
// once by the orchestrator and mutated only while the per-session lock
// is held.
//
// Invariants:
//   - CurrentStage never decreases.
//   - StageData keys form a contiguous prefix of {1..CurrentStage-1}
//     once a stage has been accepted, possibly plus the in-progress
//     current stage.
type Session struct {
	// ID is the unique, immutable session identifier.
	// Format: sess-<uuid>
	ID string `json:"id"`

	// UserID identifies the session owner.
	UserID string `json:"user_id"`

	// ProjectName is the human-readable name of the AI project being scoped.
	ProjectName string `json:"project_name"`

	// CurrentStage is the stage currently being executed (1-5).
	CurrentStage int `json:"current_stage"`

	// Status is the lifecycle state of the session.
	Status constants.SessionStatus `json:"status"`

	// StartedAt is when the session was created.
	StartedAt time.Time `json:"started_at"`

	// LastUpdatedAt is when the session was last modified.
	LastUpdatedAt time.Time `json:"last_updated_at"`

	// StageData maps stage number to that stage's accepted deliverable.
	StageData StageData `json:"stage_data"`

	// ConversationHistory is the full ordered message log across stages.
	ConversationHistory []Message `json:"conversation_history"`

	// Checkpoints is the append-only, timestamp-ordered checkpoint list.
	Checkpoints []Checkpoint `json:"checkpoints"`

	// SchemaVersion enables forward-compatible schema migrations.
	SchemaVersion int `json:"schema_version"`
}

// HasStage reports whether the session has an accepted deliverable for
// the given stage.
func (s *Session) HasStage(stage int) bool {
	if s.StageData == nil {
		return false
	}
	_, ok := s.StageData[stage]
	return ok
}

// MissingStages returns the stage numbers in [1,5] with no deliverable,
// in ascending order.
func (s *Session) MissingStages() []int {
	var missing []int
	for stage := constants.MinStage; stage <= constants.MaxStage; stage++ {
		if !s.HasStage(stage) {
			missing = append(missing, stage)
		}
	}
	return missing
}

// IsTerminal reports whether the session can accept no further stage work.
func (s *Session) IsTerminal() bool {
	return s.Status == constants.SessionStatusCompleted ||
		s.Status == constants.SessionStatusAbandoned
}

// LatestCheckpoint returns the most recent checkpoint, or nil if none
// exist. Checkpoints are append-only, so the last entry is authoritative.
func (s *Session) LatestCheckpoint() *Checkpoint {
	if len(s.Checkpoints) == 0 {
		return nil
	}
	return &s.Checkpoints[len(s.Checkpoints)-1]
}

// Message is an immutable record of one conversation turn.
type Message struct {
	// Role identifies the author (assistant, user, system).
	Role constants.MessageRole `json:"role"`

	// Content is the message text. USER content is bounded to
	// 1-10,000 characters by the conversation engine.
	Content string `json:"content"`

	// Timestamp is when the message was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Metadata holds free-form annotations, e.g.
	// {"type": "follow_up", "attempt": 2}.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Checkpoint is a durable snapshot taken at stage completion. It is
// created exactly once per successful stage advancement and never
// mutated or deleted by the core.
type Checkpoint struct {
	// StageNumber is the stage that was just completed.
	StageNumber int `json:"stage_number"`

	// Timestamp is when the checkpoint was taken.
	Timestamp time.Time `json:"timestamp"`

	// Snapshot is the restorable state captured at checkpoint time.
	Snapshot Snapshot `json:"snapshot"`

	// ValidationStatus records whether the stage gate passed.
	ValidationStatus bool `json:"validation_status"`
}

// Snapshot is the restorable portion of a session captured by a
// checkpoint. Restoring a snapshot into a fresh Session reproduces
// StageData and CurrentStage exactly.
type Snapshot struct {
	// CurrentStage is the session's current stage after advancement.
	CurrentStage int `json:"current_stage"`

	// StageData is a deep copy of the accepted deliverables.
	StageData StageData `json:"stage_data"`

	// ConversationHistory is the serialized message log at snapshot time.
	ConversationHistory []Message `json:"conversation_history"`
}
