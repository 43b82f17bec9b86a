package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"lexintent-backend/models"
)

// ErrMalformedResponse is returned when the model's analysis output cannot
// be parsed as the required JSON contract. The caller does not retry; the
// broken payload is surfaced as an error.
var ErrMalformedResponse = errors.New("model returned malformed analysis response")

// stripCodeFences removes a surrounding markdown code fence, with or
// without a json language tag.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// ParseAnalysisResponse validates and normalizes a raw model response into
// an AnalysisResult. Unparseable JSON or a missing summary yields
// ErrMalformedResponse. The consensus color is coerced into its enumeration
// with gray as the default. Controversy is normalized to the 1-10 score; a
// legacy Low/Medium/High level is accepted and mapped to 2/6/9.
func ParseAnalysisResponse(raw string) (*models.AnalysisResult, error) {
	cleaned := stripCodeFences(raw)

	var payload struct {
		Summary          string            `json:"summary"`
		ControversyScore float64           `json:"controversy_score"`
		ControversyLevel string            `json:"controversy_level"`
		ConsensusColor   string            `json:"consensus_color"`
		Citations        []models.Citation `json:"citations"`
		KeyArguments     []string          `json:"key_arguments"`
	}
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if strings.TrimSpace(payload.Summary) == "" {
		return nil, fmt.Errorf("%w: missing summary", ErrMalformedResponse)
	}

	color := models.ConsensusColor(strings.ToLower(strings.TrimSpace(payload.ConsensusColor)))
	if !color.Valid() {
		color = models.ConsensusGray
	}

	score := int(math.Round(payload.ControversyScore))
	if score < 1 {
		score = models.ScoreForControversyLevel(payload.ControversyLevel)
	}
	if score > 10 {
		score = 10
	}

	return &models.AnalysisResult{
		Summary:          payload.Summary,
		ControversyScore: score,
		ControversyLevel: models.ControversyLevelForScore(score),
		ConsensusColor:   color,
		KeyArguments:     payload.KeyArguments,
		Citations:        payload.Citations,
	}, nil
}
