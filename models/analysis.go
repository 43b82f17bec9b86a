package models

// ConsensusColor encodes the cross-party consensus verdict of an analysis.
type ConsensusColor string

const (
	ConsensusGreen  ConsensusColor = "green"
	ConsensusYellow ConsensusColor = "yellow"
	ConsensusRed    ConsensusColor = "red"
	ConsensusGray   ConsensusColor = "gray"
)

// Valid reports whether c is one of the recognized consensus colors.
func (c ConsensusColor) Valid() bool {
	switch c {
	case ConsensusGreen, ConsensusYellow, ConsensusRed, ConsensusGray:
		return true
	}
	return false
}

// Controversy level buckets derived from the 1-10 controversy score.
const (
	ControversyLow     = "Low"
	ControversyMedium  = "Medium"
	ControversyHigh    = "High"
	ControversyUnknown = "Unknown"
)

// ControversyLevelForScore buckets a 1-10 controversy score:
// 1-4 Low, 5-7 Medium, 8-10 High. Scores below 1 are Unknown.
func ControversyLevelForScore(score int) string {
	switch {
	case score < 1:
		return ControversyUnknown
	case score <= 4:
		return ControversyLow
	case score <= 7:
		return ControversyMedium
	default:
		return ControversyHigh
	}
}

// ScoreForControversyLevel maps a legacy level string onto a representative
// score inside its bucket. Unrecognized levels map to 0.
func ScoreForControversyLevel(level string) int {
	switch level {
	case ControversyLow:
		return 2
	case ControversyMedium:
		return 6
	case ControversyHigh:
		return 9
	}
	return 0
}

// Citation ties an analysis claim back to a debate excerpt.
type Citation struct {
	Speaker   string  `json:"speaker"`
	Party     string  `json:"party"`
	Date      string  `json:"date"`
	Text      string  `json:"text"`
	Sentiment float64 `json:"sentiment"`
	Topic     string  `json:"topic,omitempty"`
}

// LawReference is a resolved inline statute mention inside rendered text.
type LawReference struct {
	LawID   string `json:"law_id"`
	Display string `json:"display"`
}

// AnalysisResult is the validated product of an intent analysis run.
// ControversyScore is canonical; ControversyLevel is derived from it for
// older clients. The whole struct is replaced per request, never merged.
type AnalysisResult struct {
	Summary          string          `json:"summary"`
	ControversyScore int             `json:"controversy_score"`
	ControversyLevel string          `json:"controversy_level"`
	ConsensusColor   ConsensusColor  `json:"consensus_color"`
	KeyArguments     []string        `json:"key_arguments"`
	Citations        []Citation      `json:"citations"`
	References       []LawReference  `json:"references,omitempty"`
	Timeline         []TimelineEvent `json:"timeline,omitempty"`
}

// QuerySource points at one piece of grounding behind a direct answer.
type QuerySource struct {
	Type      string  `json:"type"`
	ID        string  `json:"id,omitempty"`
	Relevance float64 `json:"relevance,omitempty"`
	Speaker   string  `json:"speaker,omitempty"`
}

// QueryAnswer is the product of a direct question, as opposed to a full
// intent analysis of a law section.
type QueryAnswer struct {
	Answer     string         `json:"answer"`
	References []LawReference `json:"references,omitempty"`
	Sources    []QuerySource  `json:"sources"`
	Confidence float64        `json:"confidence"`
}
