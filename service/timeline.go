package service

import (
	"errors"
	"fmt"
	"sort"

	"lexintent-backend/models"
)

// ErrNoTimeline is returned when no event carries a parseable date.
var ErrNoTimeline = errors.New("no events with parseable dates")

const (
	timelinePreviewLen = 150

	// Horizontal positions are percentages padded away from the edges.
	timelineLeftEdge = 5.0
	timelineWidth    = 90.0
)

// LayoutTimeline positions events on a 0-100 horizontal axis. Events whose
// date does not parse are dropped. The survivors are sorted ascending; a
// single event sits at 50, otherwise positions interpolate between
// timelineLeftEdge and timelineLeftEdge+timelineWidth. Each returned event
// keeps its original date string so a rendered point can be traced back to
// its citation.
func LayoutTimeline(events []models.TimelineEvent) ([]models.TimelineEvent, error) {
	var kept []models.TimelineEvent
	for _, ev := range events {
		when, ok := ParseCitationDate(ev.Date)
		if !ok {
			continue
		}
		ev.When = when
		kept = append(kept, ev)
	}

	if len(kept) == 0 {
		return nil, ErrNoTimeline
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].When.Before(kept[j].When)
	})

	if len(kept) == 1 {
		kept[0].Position = 50
		return kept, nil
	}

	tmin := kept[0].When
	span := kept[len(kept)-1].When.Sub(tmin).Seconds()
	if span == 0 {
		// All events share one date; they stack on the left edge.
		span = 1
	}

	for i := range kept {
		kept[i].Position = timelineLeftEdge + timelineWidth*kept[i].When.Sub(tmin).Seconds()/span
	}

	return kept, nil
}

// TimelineEventsFromDebates converts retrieved debates into unpositioned
// timeline events.
func TimelineEventsFromDebates(debates []*models.Debate) []models.TimelineEvent {
	events := make([]models.TimelineEvent, 0, len(debates))
	for _, d := range debates {
		events = append(events, models.TimelineEvent{
			ID:        d.ID,
			Date:      d.Date,
			Label:     fmt.Sprintf("%s (%s)", d.SpeakerName, d.Party),
			Topic:     d.Topic,
			Sentiment: d.SentimentScore,
			Preview:   excerpt(d.Text, timelinePreviewLen),
		})
	}
	return events
}

// TimelineEventsFromCitations converts the citation list of an analysis
// into unpositioned timeline events.
func TimelineEventsFromCitations(citations []models.Citation) []models.TimelineEvent {
	events := make([]models.TimelineEvent, 0, len(citations))
	for i, c := range citations {
		events = append(events, models.TimelineEvent{
			ID:        fmt.Sprintf("citation-%d", i+1),
			Date:      c.Date,
			Label:     fmt.Sprintf("%s (%s)", c.Speaker, c.Party),
			Topic:     c.Topic,
			Sentiment: c.Sentiment,
			Preview:   excerpt(c.Text, timelinePreviewLen),
		})
	}
	return events
}
