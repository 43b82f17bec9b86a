package service

import (
	"regexp"
	"sort"
	"strings"

	"lexintent-backend/models"
)

// SpanKind tags one segment of tokenized text.
type SpanKind int

const (
	SpanPlainText SpanKind = iota
	SpanLawReference
)

// Span is one segment of resolver output. Concatenating the Text fields of
// a span list reproduces the input byte for byte; unresolved mentions keep
// their original characters inside plain-text spans.
type Span struct {
	Kind  SpanKind
	Text  string
	LawID string // set when Kind is SpanLawReference
}

var (
	// Bracketed ids like [IRPA-36], matched case-sensitively.
	bracketRefPattern = regexp.MustCompile(`\[([A-Z0-9-]+)\]`)

	// Prose mentions like "Section 36 of IRPA", "Article 11.2 de IRPR",
	// "§ 5 of the CA". The statute code is validated separately.
	sectionRefPattern = regexp.MustCompile(`(?i)(?:\b(?:Section|Article)|§)\s+(\d+(?:\.\d+)?)\s+(?:of|de)\s+(?:the\s+)?([A-Za-z]+)`)
)

// CitationResolver finds inline law mentions and binds them to known law
// ids. It holds the id set it resolves against; refresh by constructing a
// new resolver when the corpus changes.
type CitationResolver struct {
	codes  map[string]struct{}
	ids    map[string]struct{}
	sorted []string
}

// NewCitationResolver builds a resolver over the given law ids. codes are
// the statute short codes recognized in prose mentions, compared
// case-insensitively.
func NewCitationResolver(lawIDs []string, codes []string) *CitationResolver {
	r := &CitationResolver{
		codes: make(map[string]struct{}, len(codes)),
		ids:   make(map[string]struct{}, len(lawIDs)),
	}
	for _, code := range codes {
		r.codes[strings.ToUpper(code)] = struct{}{}
	}
	for _, id := range lawIDs {
		if _, seen := r.ids[id]; seen {
			continue
		}
		r.ids[id] = struct{}{}
		r.sorted = append(r.sorted, id)
	}
	sort.Strings(r.sorted)
	return r
}

type refMatch struct {
	start, end int
	lawID      string
}

// Resolve tokenizes text into plain-text and law-reference spans. Bracketed
// ids resolve by exact match. Prose mentions resolve through the candidate
// id "<CODE>-<number>" with dots folded to hyphens, exact match first, then
// the lexicographically first id with that prefix. Overlapping matches keep
// the earliest; resolving already-resolved output classifies identically
// because reference spans carry their original text.
func (r *CitationResolver) Resolve(text string) []Span {
	var matches []refMatch

	for _, m := range bracketRefPattern.FindAllStringSubmatchIndex(text, -1) {
		id := text[m[2]:m[3]]
		if _, ok := r.ids[id]; ok {
			matches = append(matches, refMatch{start: m[0], end: m[1], lawID: id})
		}
	}

	for _, m := range sectionRefPattern.FindAllStringSubmatchIndex(text, -1) {
		code := strings.ToUpper(text[m[4]:m[5]])
		if _, ok := r.codes[code]; !ok {
			continue
		}
		number := strings.ReplaceAll(text[m[2]:m[3]], ".", "-")
		if id, ok := r.lookup(code + "-" + number); ok {
			matches = append(matches, refMatch{start: m[0], end: m[1], lawID: id})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].start != matches[j].start {
			return matches[i].start < matches[j].start
		}
		return matches[i].end > matches[j].end
	})

	var spans []Span
	pos := 0
	for _, m := range matches {
		if m.start < pos {
			continue
		}
		if m.start > pos {
			spans = append(spans, Span{Kind: SpanPlainText, Text: text[pos:m.start]})
		}
		spans = append(spans, Span{Kind: SpanLawReference, Text: text[m.start:m.end], LawID: m.lawID})
		pos = m.end
	}
	if pos < len(text) {
		spans = append(spans, Span{Kind: SpanPlainText, Text: text[pos:]})
	}

	return spans
}

// lookup resolves a candidate id exactly, then by prefix.
func (r *CitationResolver) lookup(candidate string) (string, bool) {
	if _, ok := r.ids[candidate]; ok {
		return candidate, true
	}
	for _, id := range r.sorted {
		if strings.HasPrefix(id, candidate) {
			return id, true
		}
	}
	return "", false
}

// References returns the distinct law references resolved in text, in
// order of first appearance.
func (r *CitationResolver) References(text string) []models.LawReference {
	seen := make(map[string]struct{})
	var refs []models.LawReference
	for _, span := range r.Resolve(text) {
		if span.Kind != SpanLawReference {
			continue
		}
		if _, dup := seen[span.LawID]; dup {
			continue
		}
		seen[span.LawID] = struct{}{}
		refs = append(refs, models.LawReference{LawID: span.LawID, Display: span.Text})
	}
	return refs
}

// FlattenSpans reassembles text from a span list.
func FlattenSpans(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
