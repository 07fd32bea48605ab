// Package session provides scoping-session persistence.
// This package implements the storage layer for session state files,
// with atomic writes and file locking for data integrity.
package session

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/uaip-labs/uaip/internal/constants"
	"github.com/uaip-labs/uaip/internal/domain"
	uaiperrors "github.com/uaip-labs/uaip/internal/errors"
)

// LockTimeout is the maximum duration to wait for acquiring a file lock.
const LockTimeout = 5 * time.Second

// Directory and file permission constants.
const (
	dirPerm  = 0o750 // Secure directory permissions
	filePerm = 0o600 // Secure file permissions
)

// validSessionIDRegex matches valid session IDs (sess-<uuid>).
var validSessionIDRegex = regexp.MustCompile(
	`^sess-[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

// Store defines the interface for session persistence operations.
type Store interface {
	// Create creates a new session on disk.
	// Returns ErrSessionExists if the session already exists.
	Create(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by ID.
	// Returns ErrSessionNotFound if the session doesn't exist.
	Get(ctx context.Context, sessionID string) (*domain.Session, error)

	// Update saves the current session state (atomic write).
	// Returns ErrSessionNotFound if the session doesn't exist.
	Update(ctx context.Context, session *domain.Session) error

	// List returns all sessions, sorted by start time (newest first).
	List(ctx context.Context) ([]*domain.Session, error)

	// Delete removes a session and all its artifacts.
	Delete(ctx context.Context, sessionID string) error

	// AppendCheckpoint appends a checkpoint to the session's checkpoint
	// log (JSON-lines format).
	AppendCheckpoint(ctx context.Context, sessionID string, checkpoint *domain.Checkpoint) error

	// LatestCheckpoint returns the most recent checkpoint from the log.
	// Returns ErrCheckpointNotFound when no checkpoint has been written.
	LatestCheckpoint(ctx context.Context, sessionID string) (*domain.Checkpoint, error)

	// SaveCharter writes the rendered charter document for the session.
	SaveCharter(ctx context.Context, sessionID string, data []byte) error
}

// FileStore implements Store using the local filesystem.
type FileStore struct {
	uaipHome string // Usually ~/.uaip
}

// NewFileStore creates a new FileStore with the given home directory.
// If uaipHome is empty, uses the default ~/.uaip directory.
func NewFileStore(uaipHome string) (*FileStore, error) {
	if uaipHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		uaipHome = filepath.Join(home, constants.UAIPHome)
	}
	return &FileStore{uaipHome: uaipHome}, nil
}

// Create creates a new session on disk.
func (s *FileStore) Create(ctx context.Context, session *domain.Session) error {
	// Check for cancellation at entry
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if session == nil {
		return fmt.Errorf("failed to create session: session %w", uaiperrors.ErrEmptyValue)
	}
	if session.ID == "" {
		return fmt.Errorf("failed to create session: session ID %w", uaiperrors.ErrEmptyValue)
	}

	sessionDir := s.sessionDir(session.ID)

	// Check if session already exists
	if _, err := os.Stat(sessionDir); err == nil {
		return fmt.Errorf("failed to create session '%s': %w", session.ID, uaiperrors.ErrSessionExists)
	}

	if err := os.MkdirAll(sessionDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	// Set schema version before saving
	session.SchemaVersion = constants.SessionSchemaVersion

	lockFile, err := s.acquireLock(ctx, session.ID)
	if err != nil {
		// Clean up directory on lock failure
		_ = os.RemoveAll(sessionDir)
		return fmt.Errorf("failed to create session '%s': %w", session.ID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		_ = os.RemoveAll(sessionDir)
		return fmt.Errorf("failed to create session '%s': %w", session.ID, err)
	}

	if err := atomicWrite(s.sessionFilePath(session.ID), data); err != nil {
		_ = os.RemoveAll(sessionDir)
		return fmt.Errorf("failed to create session '%s': %w", session.ID, err)
	}

	return nil
}

// Get retrieves a session by ID.
func (s *FileStore) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	// Check for cancellation at entry
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if sessionID == "" {
		return nil, fmt.Errorf("failed to get session: session ID %w", uaiperrors.ErrEmptyValue)
	}

	sessionDir := s.sessionDir(sessionID)
	if _, err := os.Stat(sessionDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to get session '%s': %w", sessionID, uaiperrors.ErrSessionNotFound)
	}

	lockFile, err := s.acquireLock(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session '%s': %w", sessionID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	data, err := os.ReadFile(s.sessionFilePath(sessionID)) //#nosec G304 -- path is validated and constructed from trusted base
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to get session '%s': %w", sessionID, uaiperrors.ErrSessionNotFound)
		}
		return nil, fmt.Errorf("failed to read session '%s': %w", sessionID, err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to parse session '%s': corrupted state file: %w", sessionID, err)
	}

	return &session, nil
}

// Update saves the current session state (atomic write).
func (s *FileStore) Update(ctx context.Context, session *domain.Session) error {
	// Check for cancellation at entry
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if session == nil {
		return fmt.Errorf("failed to update session: session %w", uaiperrors.ErrEmptyValue)
	}
	if session.ID == "" {
		return fmt.Errorf("failed to update session: session ID %w", uaiperrors.ErrEmptyValue)
	}

	sessionDir := s.sessionDir(session.ID)
	if _, err := os.Stat(sessionDir); os.IsNotExist(err) {
		return fmt.Errorf("failed to update session '%s': %w", session.ID, uaiperrors.ErrSessionNotFound)
	}

	lockFile, err := s.acquireLock(ctx, session.ID)
	if err != nil {
		return fmt.Errorf("failed to update session '%s': %w", session.ID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	session.LastUpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to update session '%s': %w", session.ID, err)
	}

	if err := atomicWrite(s.sessionFilePath(session.ID), data); err != nil {
		return fmt.Errorf("failed to update session '%s': %w", session.ID, err)
	}

	return nil
}

// List returns all sessions, sorted by start time (newest first).
func (s *FileStore) List(ctx context.Context) ([]*domain.Session, error) {
	// Check for cancellation at entry
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	sessionsDir := s.sessionsDir()

	// Return empty slice if sessions directory doesn't exist
	if _, err := os.Stat(sessionsDir); os.IsNotExist(err) {
		return []*domain.Session{}, nil
	}

	entries, err := os.ReadDir(sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*domain.Session, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if !validSessionIDRegex.MatchString(entry.Name()) {
			continue
		}

		// Check for cancellation during iteration
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		session, err := s.Get(ctx, entry.Name())
		if err != nil {
			// Skip directories without a valid session.json
			continue
		}
		sessions = append(sessions, session)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.After(sessions[j].StartedAt)
	})

	return sessions, nil
}

// Delete removes a session and all its artifacts.
func (s *FileStore) Delete(ctx context.Context, sessionID string) error {
	// Check for cancellation at entry
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if sessionID == "" {
		return fmt.Errorf("failed to delete session: session ID %w", uaiperrors.ErrEmptyValue)
	}

	sessionDir := s.sessionDir(sessionID)
	if _, err := os.Stat(sessionDir); os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session '%s': %w", sessionID, uaiperrors.ErrSessionNotFound)
	}

	lockFile, err := s.acquireLock(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to delete session '%s': %w", sessionID, err)
	}
	// Release lock before removal since lock file is inside session directory
	_ = s.releaseLock(lockFile)

	if err := os.RemoveAll(sessionDir); err != nil {
		return fmt.Errorf("failed to delete session '%s': %w", sessionID, err)
	}

	return nil
}

// AppendCheckpoint appends a checkpoint to the session's checkpoint log.
func (s *FileStore) AppendCheckpoint(ctx context.Context, sessionID string, checkpoint *domain.Checkpoint) error {
	// Check for cancellation at entry
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if sessionID == "" {
		return fmt.Errorf("failed to append checkpoint: session ID %w", uaiperrors.ErrEmptyValue)
	}
	if checkpoint == nil {
		return fmt.Errorf("failed to append checkpoint: checkpoint %w", uaiperrors.ErrEmptyValue)
	}

	sessionDir := s.sessionDir(sessionID)
	if _, err := os.Stat(sessionDir); os.IsNotExist(err) {
		return fmt.Errorf("failed to append checkpoint: session '%s' %w", sessionID, uaiperrors.ErrSessionNotFound)
	}

	lockFile, err := s.acquireLock(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to append checkpoint: %w", err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	entry, err := json.Marshal(checkpoint)
	if err != nil {
		return fmt.Errorf("failed to append checkpoint: %w", err)
	}

	f, err := os.OpenFile(s.checkpointFilePath(sessionID), os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to append checkpoint: %w", err)
	}
	defer func() { _ = f.Close() }()

	entry = append(entry, '\n')
	if _, err := f.Write(entry); err != nil {
		return fmt.Errorf("failed to append checkpoint: %w", err)
	}

	// Sync to disk
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync checkpoint log: %w", err)
	}

	return nil
}

// LatestCheckpoint returns the most recent checkpoint from the log.
func (s *FileStore) LatestCheckpoint(ctx context.Context, sessionID string) (*domain.Checkpoint, error) {
	// Check for cancellation at entry
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if sessionID == "" {
		return nil, fmt.Errorf("failed to load checkpoint: session ID %w", uaiperrors.ErrEmptyValue)
	}

	sessionDir := s.sessionDir(sessionID)
	if _, err := os.Stat(sessionDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load checkpoint: session '%s' %w", sessionID, uaiperrors.ErrSessionNotFound)
	}

	lockFile, err := s.acquireLock(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	f, err := os.Open(s.checkpointFilePath(sessionID)) //#nosec G304 -- path is constructed internally
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session '%s': %w", sessionID, uaiperrors.ErrCheckpointNotFound)
		}
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}
	defer func() { _ = f.Close() }()

	// The last parseable line wins; a torn trailing line from a crashed
	// append is skipped rather than treated as corruption.
	var latest *domain.Checkpoint
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var checkpoint domain.Checkpoint
		if err := json.Unmarshal([]byte(line), &checkpoint); err != nil {
			continue
		}
		latest = &checkpoint
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to load checkpoint: %w", err)
	}

	if latest == nil {
		return nil, fmt.Errorf("session '%s': %w", sessionID, uaiperrors.ErrCheckpointNotFound)
	}
	return latest, nil
}

// SaveCharter writes the rendered charter document for the session.
func (s *FileStore) SaveCharter(ctx context.Context, sessionID string, data []byte) error {
	// Check for cancellation at entry
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if sessionID == "" {
		return fmt.Errorf("failed to save charter: session ID %w", uaiperrors.ErrEmptyValue)
	}

	sessionDir := s.sessionDir(sessionID)
	if _, err := os.Stat(sessionDir); os.IsNotExist(err) {
		return fmt.Errorf("failed to save charter: session '%s' %w", sessionID, uaiperrors.ErrSessionNotFound)
	}

	if err := atomicWrite(filepath.Join(sessionDir, constants.CharterFileName), data); err != nil {
		return fmt.Errorf("failed to save charter for '%s': %w", sessionID, err)
	}

	return nil
}

// Helper methods for path construction

// sessionsDir returns the path to the sessions directory.
func (s *FileStore) sessionsDir() string {
	return filepath.Join(s.uaipHome, constants.SessionsDir)
}

// sessionDir returns the path to a specific session's directory.
func (s *FileStore) sessionDir(sessionID string) string {
	return filepath.Join(s.sessionsDir(), sessionID)
}

// sessionFilePath returns the path to a session's JSON file.
func (s *FileStore) sessionFilePath(sessionID string) string {
	return filepath.Join(s.sessionDir(sessionID), constants.SessionFileName)
}

// checkpointFilePath returns the path to a session's checkpoint log.
func (s *FileStore) checkpointFilePath(sessionID string) string {
	return filepath.Join(s.sessionDir(sessionID), constants.CheckpointsFileName)
}

// lockFilePath returns the path to a session's lock file.
func (s *FileStore) lockFilePath(sessionID string) string {
	return filepath.Join(s.sessionDir(sessionID), constants.SessionFileName+".lock")
}

// acquireLock acquires an exclusive file lock for the session.
// It respects context cancellation during the lock acquisition retry loop.
func (s *FileStore) acquireLock(ctx context.Context, sessionID string) (*os.File, error) {
	lockPath := s.lockFilePath(sessionID)

	// Ensure session directory exists for lock file
	if err := os.MkdirAll(s.sessionDir(sessionID), dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePerm) //#nosec G302,G304 -- lock file needs write access, path is constructed from validated ID
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	// Try to acquire lock with timeout
	deadline := time.Now().Add(LockTimeout)
	for {
		// Check for context cancellation
		select {
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		default:
		}

		// LOCK_EX = exclusive lock, LOCK_NB = non-blocking
		err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			return f, nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("failed to acquire lock: %w", uaiperrors.ErrLockTimeout)
		}

		// Wait a bit before retrying
		time.Sleep(50 * time.Millisecond)
	}
}

// releaseLock releases a file lock.
func (s *FileStore) releaseLock(f *os.File) error {
	if f == nil {
		return nil
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_UN); err != nil {
		// Still try to close the file
		_ = f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}

	return f.Close()
}

// atomicWrite writes data to a file atomically using write-then-rename.
// Uses filePerm (0o600) for secure file permissions.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}

	// Sync to disk (ensure data is persisted before rename)
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}

	// Close file before rename
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	return nil
}

// GenerateSessionID generates a unique session ID with format sess-<uuid>.
func GenerateSessionID() string {
	return "sess-" + uuid.NewString()
}

// ValidSessionID reports whether the ID matches the sess-<uuid> format.
func ValidSessionID(id string) bool {
	return validSessionIDRegex.MatchString(id)
}
