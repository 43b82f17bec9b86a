package service

import (
	"strings"
	"testing"

	"lexintent-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, EstimateTokens(""))
	assert.Equal(t, 1, EstimateTokens("abcd"))
	assert.Equal(t, 2, EstimateTokens("abcde"))
	assert.Equal(t, 25, EstimateTokens(strings.Repeat("a", 100)))
}

func testDebate(id, text string) *models.Debate {
	return &models.Debate{
		ID:          id,
		SpeakerName: "Speaker " + id,
		Party:       "Liberal",
		Date:        "2022-06-13",
		Topic:       "Immigration",
		Text:        text,
	}
}

func testLawResult(code, section, doc string) models.SearchResult {
	return models.SearchResult{
		ID:       code + "-" + section,
		Document: doc,
		Metadata: models.LawMetadata{
			LawName: "Some Act",
			LawCode: code,
			Section: section,
		},
	}
}

func TestBuildIntentContext(t *testing.T) {
	debates := []*models.Debate{testDebate("d1", "the debate text")}
	laws := []models.SearchResult{testLawResult("IRPA", "36", "the law text")}

	out := BuildIntentContext(debates, laws)
	assert.Contains(t, out, "Speaker: Speaker d1")
	assert.Contains(t, out, "Party: Liberal")
	assert.Contains(t, out, "Date: 2022-06-13")
	assert.Contains(t, out, "Topic: Immigration")
	assert.Contains(t, out, "Text: the debate text")
	assert.Contains(t, out, "RELATED LAW SECTIONS:")
	assert.Contains(t, out, "[IRPA-36] the law text...")
}

func TestBuildIntentContextDefaults(t *testing.T) {
	out := BuildIntentContext([]*models.Debate{{ID: "d1", Text: "words"}}, nil)
	assert.Contains(t, out, "Speaker: Unknown")
	assert.Contains(t, out, "Party: Unknown")
	assert.Contains(t, out, "Date: Unknown")
	assert.Contains(t, out, "Topic: General")
	assert.NotContains(t, out, "RELATED LAW SECTIONS")
}

func TestBuildQuestionContext(t *testing.T) {
	laws := []models.SearchResult{testLawResult("IRPA", "36", "inadmissibility provisions")}
	debates := []*models.Debate{testDebate("d1", "house discussion")}

	out := BuildQuestionContext(laws, debates)
	assert.Contains(t, out, "RELEVANT LAWS:")
	assert.Contains(t, out, "[IRPA-36] Some Act: inadmissibility provisions")
	assert.Contains(t, out, "RELEVANT DEBATES:")
	assert.Contains(t, out, "[Speaker d1 - Liberal]: house discussion")
}

func TestFitIntentContextBudgetDisabled(t *testing.T) {
	debates := []*models.Debate{testDebate("d1", strings.Repeat("x", 10000))}
	out := FitIntentContext(debates, nil, 0)
	assert.Contains(t, out, strings.Repeat("x", 10000))
}

func TestFitIntentContextDropsLawsFirst(t *testing.T) {
	debates := []*models.Debate{
		testDebate("d1", strings.Repeat("a", 400)),
		testDebate("d2", strings.Repeat("b", 400)),
	}
	laws := []models.SearchResult{
		testLawResult("IRPA", "36", strings.Repeat("c", 400)),
		testLawResult("IRPA", "40", strings.Repeat("d", 400)),
	}

	full := BuildIntentContext(debates, laws)
	budget := EstimateTokens(full) - 1

	out := FitIntentContext(debates, laws, budget)

	// The second law goes first; both debates survive untruncated.
	assert.NotContains(t, out, "[IRPA-40]")
	assert.Contains(t, out, "[IRPA-36]")
	assert.Contains(t, out, strings.Repeat("a", 400))
	assert.Contains(t, out, strings.Repeat("b", 400))
}

func TestFitIntentContextDropsDebatesAfterLaws(t *testing.T) {
	debates := []*models.Debate{
		testDebate("d1", strings.Repeat("a", 400)),
		testDebate("d2", strings.Repeat("b", 400)),
		testDebate("d3", strings.Repeat("c", 400)),
	}
	budget := EstimateTokens(BuildIntentContext(debates[:1], nil)) + 1

	out := FitIntentContext(debates, nil, budget)
	assert.Contains(t, out, strings.Repeat("a", 400))
	assert.NotContains(t, out, strings.Repeat("b", 400))
	assert.NotContains(t, out, strings.Repeat("c", 400))
}

func TestFitIntentContextKeepsLastDebate(t *testing.T) {
	// Even an impossible budget keeps one whole debate; records are dropped
	// whole or not at all.
	debate := testDebate("d1", strings.Repeat("a", 4000))
	out := FitIntentContext([]*models.Debate{debate}, nil, 1)
	assert.Contains(t, out, strings.Repeat("a", 4000))
}

func TestFitQuestionContextDropsDebatesFirst(t *testing.T) {
	laws := []models.SearchResult{testLawResult("IRPA", "36", strings.Repeat("l", 400))}
	debates := []*models.Debate{
		testDebate("d1", strings.Repeat("a", 400)),
		testDebate("d2", strings.Repeat("b", 400)),
	}

	full := BuildQuestionContext(laws, debates)
	budget := EstimateTokens(full) - 1

	out := FitQuestionContext(laws, debates, budget)
	assert.Contains(t, out, strings.Repeat("l", 400))
	assert.Contains(t, out, "Speaker d1")
	assert.NotContains(t, out, "Speaker d2")
}

func TestFitQuestionContextKeepsLastLaw(t *testing.T) {
	laws := []models.SearchResult{testLawResult("IRPA", "36", strings.Repeat("l", 4000))}
	out := FitQuestionContext(laws, nil, 1)
	assert.Contains(t, out, "[IRPA-36]")
}

func TestExcerpt(t *testing.T) {
	assert.Equal(t, "short", excerpt("short", 10))
	assert.Equal(t, "abcde...", excerpt("abcdefgh", 5))
	// Rune-aware: no mid-character cuts.
	assert.Equal(t, "héllo...", excerpt("héllo wörld", 5))
}
