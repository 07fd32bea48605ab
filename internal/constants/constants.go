// Package constants defines shared constant values for the U-AIP
// scoping assistant. It must not import any other internal packages.
package constants

import "time"

// UAIPHome is the default directory name (under $HOME) for session
// state, logs, and configuration.
const UAIPHome = ".uaip"

// Directory names under the UAIP home.
const (
	// SessionsDir holds one subdirectory per session.
	SessionsDir = "sessions"

	// LogsDir holds rotated log files.
	LogsDir = "logs"
)

// CLILogFileName is the rotated log file under LogsDir.
const CLILogFileName = "uaip.log"

// File names inside a session directory.
const (
	// SessionFileName is the JSON file holding the session aggregate.
	SessionFileName = "session.json"

	// CheckpointsFileName is the JSON-lines file of appended checkpoints.
	CheckpointsFileName = "checkpoints.jsonl"

	// CharterFileName is the generated charter artifact.
	CharterFileName = "charter.md"
)

// SessionSchemaVersion is the current version of the persisted Session
// schema. Bump when the on-disk format changes incompatibly.
const SessionSchemaVersion = 1

// Stage boundaries. Stages are numbered 1 through 5 and executed in order.
const (
	// MinStage is the first interview stage (business translation).
	MinStage = 1

	// MaxStage is the last interview stage (ethical governance).
	MaxStage = 5
)

// Conversation engine bounds.
const (
	// MaxQuestionLength is the maximum length of an interview question.
	MaxQuestionLength = 500

	// MaxResponseLength is the maximum length of a user response.
	MaxResponseLength = 10_000

	// DefaultMaxAttempts is the number of quality-retry attempts per
	// question before the response is force-accepted (escalated).
	DefaultMaxAttempts = 3

	// DefaultQualityThreshold is the minimum quality score (0-10) for a
	// response to be accepted without a follow-up.
	DefaultQualityThreshold = 7

	// DefaultEvaluationTimeout bounds a single quality-evaluation call.
	// On expiry the engine degrades to a low-quality assessment instead
	// of failing the turn.
	DefaultEvaluationTimeout = 30 * time.Second
)

// DefaultGateThreshold is the minimum completeness score required by the
// stage-gate validator. A stage may not advance below this score even if
// no individual item is reported missing.
const DefaultGateThreshold = 0.9

// DegradedQualityScore is the score assigned when quality evaluation
// fails or times out. Deliberately below the acceptance threshold so the
// interview asks a follow-up rather than silently accepting.
const DegradedQualityScore = 5
