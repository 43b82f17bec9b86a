package models

import "time"

// TimelineEvent is one debate placed on a horizontal timeline.
// Date keeps the original corpus string so the client can echo it back when
// an event is clicked; When is the parsed instant used only for layout.
type TimelineEvent struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"`
	Label     string    `json:"label"`
	Topic     string    `json:"topic"`
	Sentiment float64   `json:"sentiment"`
	Preview   string    `json:"preview"`
	Position  float64   `json:"position"`
	When      time.Time `json:"-"`
}
