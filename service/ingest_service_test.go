package service

import (
	"context"
	"errors"
	"testing"

	"lexintent-backend/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSentimentScore(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    float64
		wantErr bool
	}{
		{"plain", "0.5", 0.5, false},
		{"negative", "-0.7", -0.7, false},
		{"trailing period", "-0.7.", -0.7, false},
		{"trailing prose", "0.9 because the speaker strongly supports it", 0.9, false},
		{"fenced", "```\n0.3\n```", 0.3, false},
		{"whitespace", "  0.25\n", 0.25, false},
		{"clamps high", "5", 1, false},
		{"clamps low", "-3.2", -1, false},
		{"not a number", "very positive", 0, true},
		{"empty", "", 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseSentimentScore(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseLawSnapshot(t *testing.T) {
	data := []byte(`[
		{"id": "IRPA-36", "document": "Serious criminality.", "metadata": {"law_name": "Immigration and Refugee Protection Act", "law_code": "IRPA", "section": "36", "law_type": "act"}}
	]`)

	records, err := ParseLawSnapshot(data)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "IRPA-36", records[0].ID)
	assert.Equal(t, models.LawTypeAct, records[0].Metadata.LawType)

	_, err = ParseLawSnapshot([]byte("not json"))
	assert.Error(t, err)
}

func TestParseDebateSnapshot(t *testing.T) {
	data := []byte(`[
		{"id": "d1", "document": "A speech.", "metadata": {"speaker_name": "Jane Smith", "party": "Liberal", "sentiment_score": 0.4}}
	]`)

	records, err := ParseDebateSnapshot(data)
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].Metadata.SentimentScore)
	assert.Equal(t, 0.4, *records[0].Metadata.SentimentScore)

	missing := []byte(`[{"id": "d2", "document": "Another.", "metadata": {"speaker_name": "Bob Lee"}}]`)
	records, err = ParseDebateSnapshot(missing)
	require.NoError(t, err)
	assert.Nil(t, records[0].Metadata.SentimentScore)
}

func TestIngestLawsForceGate(t *testing.T) {
	records := []models.LawSnapshotRecord{
		{ID: "IRPA-36", Document: "text", Metadata: models.LawMetadata{LawName: "IRPA", LawCode: "IRPA", Section: "36"}},
	}

	t.Run("refuses populated collection", func(t *testing.T) {
		writer := &MockLawWriter{Existing: 12}
		s := NewIngestService(IngestWithLawRepository(writer), IngestWithGenAI(&MockGenerator{}))

		_, err := s.IngestLaws(context.Background(), IngestLawsRequest{Records: records})
		assert.ErrorIs(t, err, ErrCollectionNotEmpty)
		assert.Empty(t, writer.Upserted)
	})

	t.Run("force overrides", func(t *testing.T) {
		writer := &MockLawWriter{Existing: 12}
		s := NewIngestService(IngestWithLawRepository(writer), IngestWithGenAI(&MockGenerator{}))

		result, err := s.IngestLaws(context.Background(), IngestLawsRequest{Records: records, Force: true})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Ingested)
		assert.Len(t, writer.Upserted, 1)
	})

	t.Run("empty collection needs no force", func(t *testing.T) {
		writer := &MockLawWriter{}
		s := NewIngestService(IngestWithLawRepository(writer), IngestWithGenAI(&MockGenerator{}))

		result, err := s.IngestLaws(context.Background(), IngestLawsRequest{Records: records})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Ingested)
	})
}

func TestIngestLawsSkipsIncompleteRecords(t *testing.T) {
	writer := &MockLawWriter{}
	gen := &MockGenerator{}
	s := NewIngestService(IngestWithLawRepository(writer), IngestWithGenAI(gen))

	result, err := s.IngestLaws(context.Background(), IngestLawsRequest{Records: []models.LawSnapshotRecord{
		{ID: "", Document: "orphan text"},
		{ID: "IRPA-36", Document: ""},
		{ID: "IRPA-40", Document: "kept", Metadata: models.LawMetadata{LawName: "IRPA", Section: "40"}},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Ingested)
	assert.Equal(t, 2, result.Skipped)

	require.Len(t, writer.Upserted, 1)
	assert.Equal(t, "IRPA-40", writer.Upserted[0].ID)
	assert.Equal(t, "IRPA - Section 40", writer.Upserted[0].Title)

	// Only the kept document is embedded.
	require.Len(t, gen.BatchedTexts, 1)
	assert.Equal(t, []string{"kept"}, gen.BatchedTexts[0])
}

func TestIngestLawsAppliesDefaults(t *testing.T) {
	writer := &MockLawWriter{}
	s := NewIngestService(IngestWithLawRepository(writer), IngestWithGenAI(&MockGenerator{}))

	_, err := s.IngestLaws(context.Background(), IngestLawsRequest{Records: []models.LawSnapshotRecord{
		{ID: "IRPA-36", Document: "text", Metadata: models.LawMetadata{LawName: "IRPA", Section: "36"}},
	}})
	require.NoError(t, err)

	law := writer.Upserted[0]
	assert.Equal(t, models.LawTypeAct, law.LawType)
	assert.Equal(t, "Unknown Date", law.DateEnacted)
}

func TestIngestDebates(t *testing.T) {
	score := 0.4
	records := []models.DebateSnapshotRecord{
		{ID: "d1", Document: "scored speech", Metadata: models.DebateMetadata{SpeakerName: "Jane Smith", SentimentScore: &score}},
		{Document: "anonymous speech", Metadata: models.DebateMetadata{}},
	}

	writer := &MockDebateWriter{}
	gen := &MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string, temperature float64) (string, error) {
			return "0.8", nil
		},
	}
	s := NewIngestService(IngestWithDebateRepository(writer), IngestWithGenAI(gen))

	result, err := s.IngestDebates(context.Background(), IngestDebatesRequest{Records: records})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Ingested)
	require.Len(t, writer.Upserted, 2)

	// Metadata score used directly, no generation call for it.
	assert.Equal(t, 0.4, writer.Upserted[0].SentimentScore)

	// Missing id gets one; missing score is backfilled through the model.
	assert.NotEmpty(t, writer.Upserted[1].ID)
	assert.Equal(t, 0.8, writer.Upserted[1].SentimentScore)
	assert.Equal(t, 1, gen.PromptCount())

	// Presentation defaults for absent metadata.
	assert.Equal(t, "Unknown", writer.Upserted[1].SpeakerName)
	assert.Equal(t, "Unknown", writer.Upserted[1].Party)
	assert.Equal(t, "General", writer.Upserted[1].Topic)
}

func TestIngestDebatesClampsMetadataScore(t *testing.T) {
	score := 3.5
	writer := &MockDebateWriter{}
	s := NewIngestService(IngestWithDebateRepository(writer), IngestWithGenAI(&MockGenerator{}))

	_, err := s.IngestDebates(context.Background(), IngestDebatesRequest{Records: []models.DebateSnapshotRecord{
		{ID: "d1", Document: "speech", Metadata: models.DebateMetadata{SentimentScore: &score}},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1.0, writer.Upserted[0].SentimentScore)
}

func TestIngestDebatesSentimentFailureScoresZero(t *testing.T) {
	writer := &MockDebateWriter{}
	gen := &MockGenerator{
		GenerateFunc: func(ctx context.Context, prompt string, temperature float64) (string, error) {
			return "", errors.New("model offline")
		},
	}
	s := NewIngestService(IngestWithDebateRepository(writer), IngestWithGenAI(gen))

	_, err := s.IngestDebates(context.Background(), IngestDebatesRequest{Records: []models.DebateSnapshotRecord{
		{ID: "d1", Document: "speech"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 0.0, writer.Upserted[0].SentimentScore)
}

func TestIngestLatestSnapshot(t *testing.T) {
	t.Run("invalid dataset", func(t *testing.T) {
		s := NewIngestService(
			IngestWithSnapshotRepository(&MockSnapshotTracker{}),
			IngestWithStore(NewMockStore()),
		)
		_, err := s.IngestLatestSnapshot(context.Background(), IngestSnapshotRequest{Dataset: "petitions"})
		assert.ErrorIs(t, err, ErrInvalidDataset)
	})

	t.Run("no snapshot uploaded", func(t *testing.T) {
		s := NewIngestService(
			IngestWithLawRepository(&MockLawWriter{}),
			IngestWithSnapshotRepository(&MockSnapshotTracker{}),
			IngestWithStore(NewMockStore()),
			IngestWithGenAI(&MockGenerator{}),
		)
		_, err := s.IngestLatestSnapshot(context.Background(), IngestSnapshotRequest{Dataset: models.DatasetLaws})
		assert.ErrorIs(t, err, ErrSnapshotNotFound)
	})

	t.Run("loads stored laws snapshot", func(t *testing.T) {
		store := NewMockStore()
		store.Files["laws/snap_laws.json"] = []byte(`[{"id": "IRPA-36", "document": "text", "metadata": {"law_name": "IRPA", "law_code": "IRPA", "section": "36"}}]`)

		snapID := uuid.New()
		tracker := &MockSnapshotTracker{Latest: &models.CorpusSnapshot{
			ID:          snapID,
			Dataset:     models.DatasetLaws,
			FileName:    "laws.json",
			StoragePath: "laws/snap_laws.json",
		}}
		writer := &MockLawWriter{}

		s := NewIngestService(
			IngestWithLawRepository(writer),
			IngestWithSnapshotRepository(tracker),
			IngestWithStore(store),
			IngestWithGenAI(&MockGenerator{}),
		)

		result, err := s.IngestLatestSnapshot(context.Background(), IngestSnapshotRequest{Dataset: models.DatasetLaws})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Ingested)
		assert.Len(t, writer.Upserted, 1)
		assert.Equal(t, snapID, tracker.MarkedID)
		assert.Equal(t, 1, tracker.MarkedCount)
	})

	t.Run("bookkeeping failure does not fail ingestion", func(t *testing.T) {
		store := NewMockStore()
		store.Files["debates/snap_debates.json"] = []byte(`[{"id": "d1", "document": "speech", "metadata": {"sentiment_score": 0.1}}]`)

		tracker := &MockSnapshotTracker{
			Latest: &models.CorpusSnapshot{
				ID:          uuid.New(),
				Dataset:     models.DatasetDebates,
				FileName:    "debates.json",
				StoragePath: "debates/snap_debates.json",
			},
			MarkErr: errors.New("bookkeeping table locked"),
		}

		s := NewIngestService(
			IngestWithDebateRepository(&MockDebateWriter{}),
			IngestWithSnapshotRepository(tracker),
			IngestWithStore(store),
			IngestWithGenAI(&MockGenerator{}),
		)

		result, err := s.IngestLatestSnapshot(context.Background(), IngestSnapshotRequest{Dataset: models.DatasetDebates})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Ingested)
	})

	t.Run("populated collection surfaces conflict", func(t *testing.T) {
		store := NewMockStore()
		store.Files["laws/snap_laws.json"] = []byte(`[{"id": "IRPA-36", "document": "text", "metadata": {}}]`)

		tracker := &MockSnapshotTracker{Latest: &models.CorpusSnapshot{
			ID:          uuid.New(),
			Dataset:     models.DatasetLaws,
			FileName:    "laws.json",
			StoragePath: "laws/snap_laws.json",
		}}

		s := NewIngestService(
			IngestWithLawRepository(&MockLawWriter{Existing: 7}),
			IngestWithSnapshotRepository(tracker),
			IngestWithStore(store),
			IngestWithGenAI(&MockGenerator{}),
		)

		_, err := s.IngestLatestSnapshot(context.Background(), IngestSnapshotRequest{Dataset: models.DatasetLaws})
		assert.ErrorIs(t, err, ErrCollectionNotEmpty)
	})
}
