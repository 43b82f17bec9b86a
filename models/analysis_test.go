package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControversyLevelForScore(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{0, ControversyUnknown},
		{-2, ControversyUnknown},
		{1, ControversyLow},
		{4, ControversyLow},
		{5, ControversyMedium},
		{7, ControversyMedium},
		{8, ControversyHigh},
		{10, ControversyHigh},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, ControversyLevelForScore(tc.score), "score %d", tc.score)
	}
}

func TestScoreForControversyLevel(t *testing.T) {
	assert.Equal(t, 2, ScoreForControversyLevel(ControversyLow))
	assert.Equal(t, 6, ScoreForControversyLevel(ControversyMedium))
	assert.Equal(t, 9, ScoreForControversyLevel(ControversyHigh))
	assert.Equal(t, 0, ScoreForControversyLevel(""))
	assert.Equal(t, 0, ScoreForControversyLevel("severe"))
}

func TestScoreLevelRoundTrip(t *testing.T) {
	// Each legacy level's representative score maps back to the same bucket.
	for _, level := range []string{ControversyLow, ControversyMedium, ControversyHigh} {
		assert.Equal(t, level, ControversyLevelForScore(ScoreForControversyLevel(level)))
	}
}

func TestConsensusColorValid(t *testing.T) {
	assert.True(t, ConsensusGreen.Valid())
	assert.True(t, ConsensusYellow.Valid())
	assert.True(t, ConsensusRed.Valid())
	assert.True(t, ConsensusGray.Valid())
	assert.False(t, ConsensusColor("purple").Valid())
	assert.False(t, ConsensusColor("").Valid())
}
