package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"lexintent-backend/models"
	"lexintent-backend/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrCollectionNotEmpty means the target table already holds records and
	// the request did not set force.
	ErrCollectionNotEmpty = errors.New("collection already populated")
	ErrSnapshotNotFound   = errors.New("no snapshot stored for dataset")
	ErrInvalidDataset     = errors.New("invalid dataset")
)

// LawWriter is the law repository surface ingestion needs.
type LawWriter interface {
	Upsert(ctx context.Context, law *models.Law, embedding []float64) error
	Count(ctx context.Context) (int, error)
}

// DebateWriter is the debate repository surface ingestion needs.
type DebateWriter interface {
	Upsert(ctx context.Context, debate *models.Debate, embedding []float64) error
	Count(ctx context.Context) (int, error)
}

// SnapshotTracker records which stored snapshot has been loaded.
type SnapshotTracker interface {
	GetLatest(ctx context.Context, dataset models.Dataset) (*models.CorpusSnapshot, error)
	MarkIngested(ctx context.Context, id uuid.UUID, recordCount int) error
}

// CorpusEmbedder is the generative surface ingestion needs: batch document
// embeddings plus single generations for sentiment backfill.
type CorpusEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string, taskType string) ([][]float64, error)
	GenerateText(ctx context.Context, prompt string, temperature float64) (string, error)
}

// IngestService loads corpus snapshot files into the vector store
type IngestService struct {
	lawRepo      LawWriter
	debateRepo   DebateWriter
	snapshotRepo SnapshotTracker
	gen          CorpusEmbedder
	store        storage.Store
	cfg          PipelineConfig
}

// IngestServiceOption is a functional option for IngestService
type IngestServiceOption func(*IngestService)

// IngestWithLawRepository sets the law repository
func IngestWithLawRepository(repo LawWriter) IngestServiceOption {
	return func(s *IngestService) {
		s.lawRepo = repo
	}
}

// IngestWithDebateRepository sets the debate repository
func IngestWithDebateRepository(repo DebateWriter) IngestServiceOption {
	return func(s *IngestService) {
		s.debateRepo = repo
	}
}

// IngestWithSnapshotRepository sets the snapshot repository
func IngestWithSnapshotRepository(repo SnapshotTracker) IngestServiceOption {
	return func(s *IngestService) {
		s.snapshotRepo = repo
	}
}

// IngestWithGenAI sets the embedding client
func IngestWithGenAI(gen CorpusEmbedder) IngestServiceOption {
	return func(s *IngestService) {
		s.gen = gen
	}
}

// IngestWithStore sets the snapshot store
func IngestWithStore(store storage.Store) IngestServiceOption {
	return func(s *IngestService) {
		s.store = store
	}
}

// IngestWithConfig sets the pipeline configuration
func IngestWithConfig(cfg PipelineConfig) IngestServiceOption {
	return func(s *IngestService) {
		s.cfg = cfg
	}
}

// NewIngestService creates a new ingest service
func NewIngestService(opts ...IngestServiceOption) *IngestService {
	s := &IngestService{
		cfg: DefaultPipelineConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ParseLawSnapshot decodes a laws corpus snapshot file
func ParseLawSnapshot(data []byte) ([]models.LawSnapshotRecord, error) {
	var records []models.LawSnapshotRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("invalid laws snapshot: %w", err)
	}
	return records, nil
}

// ParseDebateSnapshot decodes a debates corpus snapshot file
func ParseDebateSnapshot(data []byte) ([]models.DebateSnapshotRecord, error) {
	var records []models.DebateSnapshotRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("invalid debates snapshot: %w", err)
	}
	return records, nil
}

// IngestLawsRequest represents a request to index law records
type IngestLawsRequest struct {
	Records []models.LawSnapshotRecord
	Force   bool
}

// IngestDebatesRequest represents a request to index debate records
type IngestDebatesRequest struct {
	Records []models.DebateSnapshotRecord
	Force   bool
}

// IngestResult reports how many records were indexed
type IngestResult struct {
	Ingested int `json:"ingested"`
	Skipped  int `json:"skipped"`
}

// IngestLaws embeds and upserts law records. When the laws table already
// holds rows the call fails with ErrCollectionNotEmpty unless Force is set.
func (s *IngestService) IngestLaws(ctx context.Context, req IngestLawsRequest) (*IngestResult, error) {
	if s.lawRepo == nil {
		return nil, errors.New("law repository not set")
	}
	if s.gen == nil {
		return nil, errors.New("embedding client not set")
	}

	count, err := s.lawRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count laws: %w", err)
	}
	if count > 0 && !req.Force {
		return nil, fmt.Errorf("%w: %d laws already indexed", ErrCollectionNotEmpty, count)
	}

	result := &IngestResult{}
	valid := make([]models.LawSnapshotRecord, 0, len(req.Records))
	for _, rec := range req.Records {
		if rec.ID == "" || rec.Document == "" {
			log.Printf("Warning: skipping law record with missing id or document")
			result.Skipped++
			continue
		}
		valid = append(valid, rec)
	}
	if len(valid) == 0 {
		return result, nil
	}

	docs := make([]string, len(valid))
	for i, rec := range valid {
		docs[i] = rec.Document
	}

	log.Printf("Embedding %d law documents...", len(docs))
	embeddings, err := s.gen.EmbedBatch(ctx, docs, "RETRIEVAL_DOCUMENT")
	if err != nil {
		return nil, fmt.Errorf("failed to embed law documents: %w", err)
	}

	for i, rec := range valid {
		if err := s.lawRepo.Upsert(ctx, lawFromSnapshot(rec), embeddings[i]); err != nil {
			return nil, fmt.Errorf("failed to upsert law %s: %w", rec.ID, err)
		}
		result.Ingested++
	}

	return result, nil
}

// IngestDebates embeds and upserts debate records, backfilling missing
// sentiment scores through the sentiment prompt.
func (s *IngestService) IngestDebates(ctx context.Context, req IngestDebatesRequest) (*IngestResult, error) {
	if s.debateRepo == nil {
		return nil, errors.New("debate repository not set")
	}
	if s.gen == nil {
		return nil, errors.New("embedding client not set")
	}

	count, err := s.debateRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count debates: %w", err)
	}
	if count > 0 && !req.Force {
		return nil, fmt.Errorf("%w: %d debates already indexed", ErrCollectionNotEmpty, count)
	}

	result := &IngestResult{}
	valid := make([]models.DebateSnapshotRecord, 0, len(req.Records))
	for _, rec := range req.Records {
		if rec.Document == "" {
			log.Printf("Warning: skipping debate record with empty document")
			result.Skipped++
			continue
		}
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		valid = append(valid, rec)
	}
	if len(valid) == 0 {
		return result, nil
	}

	docs := make([]string, len(valid))
	for i, rec := range valid {
		docs[i] = rec.Document
	}

	log.Printf("Embedding %d debate documents...", len(docs))
	embeddings, err := s.gen.EmbedBatch(ctx, docs, "RETRIEVAL_DOCUMENT")
	if err != nil {
		return nil, fmt.Errorf("failed to embed debate documents: %w", err)
	}

	for i, rec := range valid {
		sentiment := 0.0
		if rec.Metadata.SentimentScore != nil {
			sentiment = clampSentiment(*rec.Metadata.SentimentScore)
		} else {
			sentiment = s.scoreSentiment(ctx, rec.Document)
		}

		if err := s.debateRepo.Upsert(ctx, debateFromSnapshot(rec, sentiment), embeddings[i]); err != nil {
			return nil, fmt.Errorf("failed to upsert debate %s: %w", rec.ID, err)
		}
		result.Ingested++
	}

	return result, nil
}

// IngestSnapshotRequest represents a request to ingest the latest stored snapshot
type IngestSnapshotRequest struct {
	Dataset models.Dataset
	Force   bool
}

// IngestLatestSnapshot loads the most recently uploaded snapshot for a
// dataset from storage and indexes its records.
func (s *IngestService) IngestLatestSnapshot(ctx context.Context, req IngestSnapshotRequest) (*IngestResult, error) {
	if !req.Dataset.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDataset, req.Dataset)
	}
	if s.snapshotRepo == nil {
		return nil, errors.New("snapshot repository not set")
	}
	if s.store == nil {
		return nil, errors.New("snapshot store not set")
	}

	snap, err := s.snapshotRepo.GetLatest(ctx, req.Dataset)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, req.Dataset)
		}
		return nil, fmt.Errorf("failed to load snapshot record: %w", err)
	}

	rc, err := s.store.Get(ctx, snap.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot %s: %w", snap.FileName, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot %s: %w", snap.FileName, err)
	}

	var result *IngestResult
	switch req.Dataset {
	case models.DatasetLaws:
		records, perr := ParseLawSnapshot(data)
		if perr != nil {
			return nil, perr
		}
		result, err = s.IngestLaws(ctx, IngestLawsRequest{Records: records, Force: req.Force})
	case models.DatasetDebates:
		records, perr := ParseDebateSnapshot(data)
		if perr != nil {
			return nil, perr
		}
		result, err = s.IngestDebates(ctx, IngestDebatesRequest{Records: records, Force: req.Force})
	}
	if err != nil {
		return nil, err
	}

	// The records are indexed at this point, so a bookkeeping failure is
	// logged rather than surfaced as an ingestion error.
	if err := s.snapshotRepo.MarkIngested(ctx, snap.ID, result.Ingested); err != nil {
		log.Printf("Warning: failed to mark snapshot %s as ingested: %v", snap.ID, err)
	}

	return result, nil
}

// scoreSentiment rates one speech through the sentiment prompt, returning 0
// when generation or parsing fails.
func (s *IngestService) scoreSentiment(ctx context.Context, text string) float64 {
	out, err := s.gen.GenerateText(ctx, BuildSentimentPrompt(text), s.cfg.AnalysisTemperature)
	if err != nil {
		log.Printf("Warning: sentiment scoring failed: %v", err)
		return 0
	}

	score, err := ParseSentimentScore(out)
	if err != nil {
		log.Printf("Warning: could not parse sentiment response %q: %v", out, err)
		return 0
	}
	return score
}

// ParseSentimentScore reads a single float from a model response and clamps
// it to [-1, 1].
func ParseSentimentScore(raw string) (float64, error) {
	cleaned := strings.TrimSpace(stripCodeFences(raw))
	if cleaned == "" {
		return 0, errors.New("empty sentiment response")
	}

	token := strings.TrimSuffix(strings.Fields(cleaned)[0], ".")
	score, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", token)
	}
	return clampSentiment(score), nil
}

func clampSentiment(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}

func lawFromSnapshot(rec models.LawSnapshotRecord) *models.Law {
	meta := rec.Metadata
	lawType := meta.LawType
	if lawType == "" {
		lawType = models.LawTypeAct
	}

	return &models.Law{
		ID:           rec.ID,
		Title:        models.DisplayTitle(meta.LawName, meta.Section),
		LawName:      meta.LawName,
		LawCode:      meta.LawCode,
		Section:      meta.Section,
		SectionTitle: meta.SectionTitle,
		LawType:      lawType,
		Text:         rec.Document,
		DateEnacted:  orDefault(meta.DateEnacted, "Unknown Date"),
	}
}

func debateFromSnapshot(rec models.DebateSnapshotRecord, sentiment float64) *models.Debate {
	meta := rec.Metadata
	return &models.Debate{
		ID:             rec.ID,
		SpeakerName:    orDefault(meta.SpeakerName, "Unknown"),
		Party:          orDefault(meta.Party, "Unknown"),
		Constituency:   meta.Constituency,
		Date:           orDefault(meta.Date, "Unknown"),
		Topic:          orDefault(meta.Topic, "General"),
		Text:           rec.Document,
		SentimentScore: sentiment,
		SourceURL:      meta.SourceURL,
	}
}
