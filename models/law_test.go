package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayTitle(t *testing.T) {
	assert.Equal(t,
		"Immigration and Refugee Protection Act - Section 36",
		DisplayTitle("Immigration and Refugee Protection Act", "36"))
}

func TestSearchResultAsLaw(t *testing.T) {
	hit := SearchResult{
		ID:       "IRPA-36",
		Document: "the full text",
		Metadata: LawMetadata{
			LawName:     "Immigration and Refugee Protection Act",
			LawCode:     "IRPA",
			Section:     "36",
			LawType:     LawTypeAct,
			DateEnacted: "2001-11-01",
		},
	}

	law := hit.AsLaw()
	assert.Equal(t, "IRPA-36", law.ID)
	assert.Equal(t, "Immigration and Refugee Protection Act - Section 36", law.Title)
	assert.Equal(t, "the full text", law.Text)
	assert.Equal(t, LawTypeAct, law.LawType)
	assert.Equal(t, "2001-11-01", law.DateEnacted)
}

func TestDatasetValid(t *testing.T) {
	assert.True(t, DatasetLaws.Valid())
	assert.True(t, DatasetDebates.Valid())
	assert.False(t, Dataset("petitions").Valid())
	assert.False(t, Dataset("").Valid())
}
