package service

import (
	"testing"

	"lexintent-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionInitialState(t *testing.T) {
	s := NewAnalysisSession()
	snap := s.Snapshot()
	assert.Equal(t, SessionIdle, snap.State)
	assert.Zero(t, snap.Generation)
	assert.Nil(t, snap.Result)
}

func TestSessionBeginComplete(t *testing.T) {
	s := NewAnalysisSession()
	gen := s.Begin("IRPA-36")

	snap := s.Snapshot()
	assert.Equal(t, SessionRunning, snap.State)
	assert.Equal(t, "IRPA-36", snap.LawID)

	result := &models.AnalysisResult{Summary: "done"}
	assert.True(t, s.Complete(gen, "IRPA-36", result))

	snap = s.Snapshot()
	assert.Equal(t, SessionReady, snap.State)
	require.NotNil(t, snap.Result)
	assert.Equal(t, "done", snap.Result.Summary)
}

func TestSessionLatestWins(t *testing.T) {
	// Run A starts, run B starts, A finishes late: A's completion is
	// dropped and the session stays on B.
	s := NewAnalysisSession()
	genA := s.Begin("IRPA-36")
	genB := s.Begin("CA-5")

	accepted := s.Complete(genA, "IRPA-36", &models.AnalysisResult{Summary: "from A"})
	assert.False(t, accepted)

	snap := s.Snapshot()
	assert.Equal(t, SessionRunning, snap.State)
	assert.Equal(t, "CA-5", snap.LawID)
	assert.Nil(t, snap.Result)

	assert.True(t, s.Complete(genB, "CA-5", &models.AnalysisResult{Summary: "from B"}))
	snap = s.Snapshot()
	assert.Equal(t, SessionReady, snap.State)
	assert.Equal(t, "from B", snap.Result.Summary)
}

func TestSessionResultReplacedWholesale(t *testing.T) {
	s := NewAnalysisSession()
	gen := s.Begin("IRPA-36")
	require.True(t, s.Complete(gen, "IRPA-36", &models.AnalysisResult{
		Summary:      "first",
		KeyArguments: []string{"one", "two"},
	}))

	gen = s.Begin("IRPA-36")
	require.True(t, s.Complete(gen, "IRPA-36", &models.AnalysisResult{Summary: "second"}))

	snap := s.Snapshot()
	assert.Equal(t, "second", snap.Result.Summary)
	assert.Nil(t, snap.Result.KeyArguments)
}

func TestSessionFail(t *testing.T) {
	s := NewAnalysisSession()
	gen := s.Begin("IRPA-36")

	assert.True(t, s.Fail(gen, "IRPA-36", "generation failed"))
	snap := s.Snapshot()
	assert.Equal(t, SessionFailed, snap.State)
	assert.Equal(t, "generation failed", snap.Error)
	assert.Nil(t, snap.Result)
}

func TestSessionStaleFailDropped(t *testing.T) {
	s := NewAnalysisSession()
	genA := s.Begin("IRPA-36")
	s.Begin("CA-5")

	assert.False(t, s.Fail(genA, "IRPA-36", "late failure"))
	snap := s.Snapshot()
	assert.Equal(t, SessionRunning, snap.State)
	assert.Empty(t, snap.Error)
}

func TestSessionCompleteClearsError(t *testing.T) {
	s := NewAnalysisSession()
	gen := s.Begin("IRPA-36")
	require.True(t, s.Fail(gen, "IRPA-36", "first attempt failed"))

	gen = s.Begin("IRPA-36")
	require.True(t, s.Complete(gen, "IRPA-36", &models.AnalysisResult{Summary: "recovered"}))

	snap := s.Snapshot()
	assert.Equal(t, SessionReady, snap.State)
	assert.Empty(t, snap.Error)
}
