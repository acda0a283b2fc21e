package tracker

import (
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stipendium/internal/common"
	"github.com/ternarybob/stipendium/internal/models"
)

// Sessions manages the lifecycle of processing sessions in the status store
type Sessions struct {
	store  *Store
	logger arbor.ILogger
}

// NewSessions creates a session lifecycle manager over the given store
func NewSessions(store *Store, logger arbor.ILogger) *Sessions {
	return &Sessions{
		store:  store,
		logger: logger,
	}
}

// Start creates a new in-progress session with zeroed counters, persists it,
// and returns the session ID. The employee total is unknown at this point;
// UpdateMetadata fills it in once the source has been downloaded and parsed,
// so a session exists even when the download itself fails.
func (m *Sessions) Start(sourceFileID, outputFolderID string) (string, error) {
	sessionID := common.NewSessionID()

	session := &models.Session{
		ID:             sessionID,
		SourceFileID:   sourceFileID,
		OutputFolderID: outputFolderID,
		StartedAt:      m.store.now().Format(time.RFC3339),
		Status:         models.SessionStatusInProgress,
	}

	m.store.UpsertSession(session)
	if err := m.store.Save(); err != nil {
		return "", err
	}

	m.logger.Info().Str("session_id", sessionID).Msg("Processing session started")
	return sessionID, nil
}

// Finish transitions the session to completed and stamps the finish time.
// Unknown sessions are a no-op, and so is a second Finish: the first finish
// timestamp is retained.
func (m *Sessions) Finish(sessionID string) error {
	session := m.store.GetSession(sessionID)
	if session == nil {
		return nil
	}
	if session.Status == models.SessionStatusCompleted {
		return nil
	}

	session.Status = models.SessionStatusCompleted
	session.FinishedAt = m.store.now().Format(time.RFC3339)

	m.store.UpsertSession(session)
	if err := m.store.Save(); err != nil {
		return err
	}

	m.logger.Info().Str("session_id", sessionID).Msg("Processing session finished")
	return nil
}

// MarkFailed transitions the session to failed with the given error message.
// Used for batch-level aborts before normal completion; unknown sessions are
// a no-op.
func (m *Sessions) MarkFailed(sessionID, errorMessage string) error {
	session := m.store.GetSession(sessionID)
	if session == nil {
		return nil
	}

	session.Status = models.SessionStatusFailed
	session.Error = errorMessage
	session.FinishedAt = m.store.now().Format(time.RFC3339)

	m.store.UpsertSession(session)
	if err := m.store.Save(); err != nil {
		return err
	}

	m.logger.Warn().Str("session_id", sessionID).Str("error", errorMessage).Msg("Processing session failed")
	return nil
}

// UpdateMetadata enriches a session once the employee list is known
func (m *Sessions) UpdateMetadata(sessionID string, totalEmployees int, sourceFileName string) error {
	session := m.store.GetSession(sessionID)
	if session == nil {
		return nil
	}

	session.TotalEmployees = totalEmployees
	session.SourceFileName = sourceFileName

	m.store.UpsertSession(session)
	return m.store.Save()
}

// PruneOlderThan deletes every session whose start time is older than the
// cutoff. A start time that does not parse is treated as eligible for
// deletion. Employee records are never touched; their session back-references
// may go stale, which is accepted. Returns the number of sessions removed.
func (m *Sessions) PruneOlderThan(days int) (int, error) {
	cutoff := m.store.now().AddDate(0, 0, -days)

	var toRemove []string
	for sessionID, session := range m.store.data.Sessions {
		startedAt, err := time.Parse(time.RFC3339, session.StartedAt)
		if err != nil || startedAt.Before(cutoff) {
			toRemove = append(toRemove, sessionID)
		}
	}

	for _, sessionID := range toRemove {
		delete(m.store.data.Sessions, sessionID)
	}

	if len(toRemove) > 0 {
		if err := m.store.Save(); err != nil {
			return 0, err
		}
		m.logger.Info().Int("removed", len(toRemove)).Int("days", days).Msg("Pruned old sessions")
	}

	return len(toRemove), nil
}
