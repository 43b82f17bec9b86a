package models

import (
	"time"

	"github.com/google/uuid"
)

// Dataset names one of the two corpus collections.
type Dataset string

const (
	DatasetLaws    Dataset = "laws"
	DatasetDebates Dataset = "debates"
)

// Valid reports whether d names a known dataset.
func (d Dataset) Valid() bool {
	return d == DatasetLaws || d == DatasetDebates
}

// CorpusSnapshot records an uploaded corpus file held in snapshot storage.
// IngestedAt is nil until the snapshot has been embedded and loaded.
type CorpusSnapshot struct {
	ID          uuid.UUID  `json:"id"`
	Dataset     Dataset    `json:"dataset"`
	FileName    string     `json:"file_name"`
	StoragePath string     `json:"-"`
	ContentType string     `json:"content_type"`
	SizeBytes   int64      `json:"size_bytes"`
	RecordCount int        `json:"record_count"`
	IngestedAt  *time.Time `json:"ingested_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
