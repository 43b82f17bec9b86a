package service

import (
	"fmt"
	"strings"

	"lexintent-backend/models"
)

// Excerpt widths are part of the context format, not truncation applied to
// oversized input. Records are only ever dropped whole, before assembly.
const (
	intentLawExcerptLen    = 300
	questionLawExcerptLen  = 500
	questionDebExcerptLen  = 300
)

// EstimateTokens approximates the model token count of s at four bytes per
// token, rounded up.
func EstimateTokens(s string) int {
	if s == "" {
		return 0
	}
	return (len(s) + 3) / 4
}

// runePrefix returns the first limit runes of s.
func runePrefix(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// excerpt returns the first limit runes of s with an ellipsis when s was
// longer.
func excerpt(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// BuildIntentContext formats grounding material for an intent analysis:
// one Speaker/Party/Date/Topic/Text block per debate, then the related law
// sections as bracketed-id lines.
func BuildIntentContext(debates []*models.Debate, laws []models.SearchResult) string {
	var b strings.Builder

	for _, d := range debates {
		b.WriteString(fmt.Sprintf("Speaker: %s\n", orDefault(d.SpeakerName, "Unknown")))
		b.WriteString(fmt.Sprintf("Party: %s\n", orDefault(d.Party, "Unknown")))
		b.WriteString(fmt.Sprintf("Date: %s\n", orDefault(d.Date, "Unknown")))
		b.WriteString(fmt.Sprintf("Topic: %s\n", orDefault(d.Topic, "General")))
		b.WriteString(fmt.Sprintf("Text: %s\n\n", d.Text))
	}

	if len(laws) > 0 {
		b.WriteString("\nRELATED LAW SECTIONS:\n")
		for _, law := range laws {
			b.WriteString(fmt.Sprintf("[%s-%s] %s...\n\n",
				law.Metadata.LawCode,
				law.Metadata.Section,
				runePrefix(law.Document, intentLawExcerptLen)))
		}
	}

	return b.String()
}

// BuildQuestionContext formats grounding material for a direct question:
// a RELEVANT LAWS listing followed by a RELEVANT DEBATES listing.
func BuildQuestionContext(laws []models.SearchResult, debates []*models.Debate) string {
	var parts []string

	if len(laws) > 0 {
		parts = append(parts, "RELEVANT LAWS:")
		for _, law := range laws {
			parts = append(parts, fmt.Sprintf("[%s] %s: %s",
				law.ID,
				orDefault(law.Metadata.LawName, "Unknown"),
				runePrefix(law.Document, questionLawExcerptLen)))
		}
	}

	if len(debates) > 0 {
		parts = append(parts, "\nRELEVANT DEBATES:")
		for _, d := range debates {
			parts = append(parts, fmt.Sprintf("[%s - %s]: %s",
				orDefault(d.SpeakerName, "Unknown"),
				orDefault(d.Party, "Unknown"),
				runePrefix(d.Text, questionDebExcerptLen)))
		}
	}

	return strings.Join(parts, "\n")
}

// FitIntentContext assembles intent-mode context within the token budget,
// dropping whole trailing law records first, then trailing debates. At
// least one debate survives; a budget of zero disables the check.
func FitIntentContext(debates []*models.Debate, laws []models.SearchResult, budget int) string {
	for {
		assembled := BuildIntentContext(debates, laws)
		if budget <= 0 || EstimateTokens(assembled) <= budget {
			return assembled
		}
		if len(laws) > 0 {
			laws = laws[:len(laws)-1]
			continue
		}
		if len(debates) > 1 {
			debates = debates[:len(debates)-1]
			continue
		}
		return assembled
	}
}

// FitQuestionContext assembles question-mode context within the token
// budget, dropping whole trailing debates first, then trailing laws. At
// least one law survives; a budget of zero disables the check.
func FitQuestionContext(laws []models.SearchResult, debates []*models.Debate, budget int) string {
	for {
		assembled := BuildQuestionContext(laws, debates)
		if budget <= 0 || EstimateTokens(assembled) <= budget {
			return assembled
		}
		if len(debates) > 0 {
			debates = debates[:len(debates)-1]
			continue
		}
		if len(laws) > 1 {
			laws = laws[:len(laws)-1]
			continue
		}
		return assembled
	}
}
