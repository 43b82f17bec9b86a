package service

import (
	"sync"

	"lexintent-backend/models"
)

// SessionState names the lifecycle of the current analysis session.
type SessionState string

const (
	SessionIdle    SessionState = "idle"
	SessionRunning SessionState = "running"
	SessionReady   SessionState = "ready"
	SessionFailed  SessionState = "failed"
)

// AnalysisSession is the single "current analysis" slot. Begin claims it
// and bumps the generation; completions present the generation and law id
// they started under and are discarded if either no longer matches, so the
// newest request always wins regardless of finish order. The result is
// replaced wholesale on every commit, never merged.
type AnalysisSession struct {
	mu         sync.Mutex
	generation uint64
	lawID      string
	state      SessionState
	result     *models.AnalysisResult
	errMessage string
}

// SessionSnapshot is a point-in-time copy of the session.
type SessionSnapshot struct {
	Generation uint64                 `json:"generation"`
	LawID      string                 `json:"law_id,omitempty"`
	State      SessionState           `json:"state"`
	Result     *models.AnalysisResult `json:"result,omitempty"`
	Error      string                 `json:"error,omitempty"`
}

// NewAnalysisSession creates an idle session
func NewAnalysisSession() *AnalysisSession {
	return &AnalysisSession{state: SessionIdle}
}

// Begin claims the session for lawID and returns the new generation.
func (s *AnalysisSession) Begin(lawID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.lawID = lawID
	s.state = SessionRunning
	s.result = nil
	s.errMessage = ""
	return s.generation
}

// Complete publishes a finished analysis. It reports false, leaving the
// session untouched, when a newer Begin has superseded gen or retargeted
// the session since.
func (s *AnalysisSession) Complete(gen uint64, lawID string, result *models.AnalysisResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || lawID != s.lawID {
		return false
	}
	s.state = SessionReady
	s.result = result
	s.errMessage = ""
	return true
}

// Fail records a failed run under the same staleness rules as Complete,
// so a failure never leaves the session stuck in the running state.
func (s *AnalysisSession) Fail(gen uint64, lawID string, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation || lawID != s.lawID {
		return false
	}
	s.state = SessionFailed
	s.result = nil
	s.errMessage = message
	return true
}

// Snapshot returns a copy of the current session.
func (s *AnalysisSession) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionSnapshot{
		Generation: s.generation,
		LawID:      s.lawID,
		State:      s.state,
		Result:     s.result,
		Error:      s.errMessage,
	}
}
