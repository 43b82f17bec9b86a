package models

// Debate represents one parliamentary intervention from the corpus.
// Date is kept exactly as captured from the source sitting record; it is a
// free-form string ("Monday, June 13, 2022", "2022-06-13", or "Unknown").
type Debate struct {
	ID             string  `json:"id"`
	SpeakerName    string  `json:"speaker_name"`
	Party          string  `json:"party"`
	Constituency   string  `json:"constituency,omitempty"`
	Date           string  `json:"date"`
	Topic          string  `json:"topic"`
	Text           string  `json:"text"`
	SentimentScore float64 `json:"sentiment_score"`
	SourceURL      string  `json:"source_url,omitempty"`
	Distance       float64 `json:"distance,omitempty"` // vector similarity distance when ranked
}

// DebateMetadata mirrors the metadata block of debate snapshot files.
// SentimentScore is a pointer so ingestion can tell "missing" from 0.0 and
// backfill the score.
type DebateMetadata struct {
	SpeakerName       string   `json:"speaker_name"`
	Party             string   `json:"party"`
	Constituency      string   `json:"constituency,omitempty"`
	Date              string   `json:"date"`
	Topic             string   `json:"topic"`
	SentimentScore    *float64 `json:"sentiment_score,omitempty"`
	SourceURL         string   `json:"source_url,omitempty"`
	ParliamentSession string   `json:"parliament_session,omitempty"`
	Sitting           int      `json:"sitting,omitempty"`
}

// DebateSnapshotRecord is one entry of a debates corpus snapshot file
type DebateSnapshotRecord struct {
	ID       string         `json:"id"`
	Document string         `json:"document"`
	Metadata DebateMetadata `json:"metadata"`
}
