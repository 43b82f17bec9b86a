package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCitationDate(t *testing.T) {
	june13 := time.Date(2022, time.June, 13, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
		want  time.Time
		ok    bool
	}{
		{"verbose sitting format", "Monday, June 13, 2022", june13, true},
		{"iso format", "2022-06-13", june13, true},
		{"month day year", "June 13, 2022", june13, true},
		{"slash ymd", "2022/06/13", june13, true},
		{"slash dmy", "13/06/2022", june13, true},
		{"unknown marker", "Unknown", time.Time{}, false},
		{"empty", "", time.Time{}, false},
		{"whitespace only", "   ", time.Time{}, false},
		{"garbage", "sometime last spring", time.Time{}, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseCitationDate(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.True(t, tc.want.Equal(got), "got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestParseCitationDateVerboseRejections(t *testing.T) {
	// A string shaped like the verbose sitting format but with an unknown
	// month must fail outright instead of being retried against the other
	// layouts.
	t.Run("french month", func(t *testing.T) {
		_, ok := ParseCitationDate("Lundi, Juin 13, 2022")
		assert.False(t, ok)
	})

	t.Run("abbreviated month", func(t *testing.T) {
		_, ok := ParseCitationDate("Monday, Jun 13, 2022")
		assert.False(t, ok)
	})

	t.Run("impossible day", func(t *testing.T) {
		_, ok := ParseCitationDate("Monday, February 30, 2022")
		assert.False(t, ok)
	})

	t.Run("non numeric year", func(t *testing.T) {
		_, ok := ParseCitationDate("Monday, June 13, twenty-two")
		assert.False(t, ok)
	})
}

func TestParseCitationDateTrimsWhitespace(t *testing.T) {
	got, ok := ParseCitationDate("  2022-06-13  ")
	assert.True(t, ok)
	assert.Equal(t, 2022, got.Year())
}
