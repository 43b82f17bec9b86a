package models

// LawType categorizes a statute record
type LawType string

const (
	LawTypeAct        LawType = "act"
	LawTypeRegulation LawType = "regulation"
	LawTypeRules      LawType = "rules"
)

// LawMetadata carries the descriptive fields attached to an indexed law section
type LawMetadata struct {
	LawName      string  `json:"law_name"`
	LawCode      string  `json:"law_code"`
	Section      string  `json:"section"`
	SectionTitle string  `json:"section_title,omitempty"`
	LawType      LawType `json:"law_type"`
	DateEnacted  string  `json:"date_enacted,omitempty"`
}

// Law represents a single section of a statute or regulation.
// Identity is ID ("<CODE>-<SECTION>"); records are immutable once fetched.
type Law struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"` // "<law_name> - Section <section>"
	LawName      string  `json:"law_name"`
	LawCode      string  `json:"law_code"`
	Section      string  `json:"section"`
	SectionTitle string  `json:"section_title,omitempty"`
	LawType      LawType `json:"type"`
	Text         string  `json:"text"`
	DateEnacted  string  `json:"date"`
}

// DisplayTitle builds the listing title for a law section
func DisplayTitle(lawName, section string) string {
	return lawName + " - Section " + section
}

// SearchResult represents one ranked law returned by semantic search
type SearchResult struct {
	ID             string      `json:"id"`
	Document       string      `json:"document"`
	Metadata       LawMetadata `json:"metadata"`
	RelevanceScore float64     `json:"relevance_score"`
}

// AsLaw converts a search hit into the Law shape used by detail views
func (r *SearchResult) AsLaw() *Law {
	return &Law{
		ID:           r.ID,
		Title:        DisplayTitle(r.Metadata.LawName, r.Metadata.Section),
		LawName:      r.Metadata.LawName,
		LawCode:      r.Metadata.LawCode,
		Section:      r.Metadata.Section,
		SectionTitle: r.Metadata.SectionTitle,
		LawType:      r.Metadata.LawType,
		Text:         r.Document,
		DateEnacted:  r.Metadata.DateEnacted,
	}
}

// LawSnapshotRecord is one entry of a laws corpus snapshot file
type LawSnapshotRecord struct {
	ID       string      `json:"id"`
	Document string      `json:"document"`
	Metadata LawMetadata `json:"metadata"`
}
