package service

import (
	"bytes"
	"context"
	"io"
	"sync"

	"lexintent-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// --- MockGenerator ---

// MockGenerator implements TextGenerator and CorpusEmbedder. Behavior is
// overridable per test through the Func fields; calls are recorded.
type MockGenerator struct {
	mu sync.Mutex

	GenerateFunc   func(ctx context.Context, prompt string, temperature float64) (string, error)
	EmbedFunc      func(ctx context.Context, text, taskType string) ([]float64, error)
	EmbedBatchFunc func(ctx context.Context, texts []string, taskType string) ([][]float64, error)

	Prompts      []string
	Embedded     []string
	BatchedTexts [][]string
}

func (m *MockGenerator) GenerateText(ctx context.Context, prompt string, temperature float64) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt, temperature)
	}
	return "", nil
}

func (m *MockGenerator) EmbedText(ctx context.Context, text, taskType string) ([]float64, error) {
	m.mu.Lock()
	m.Embedded = append(m.Embedded, text)
	m.mu.Unlock()
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, text, taskType)
	}
	return []float64{0.1, 0.2, 0.3}, nil
}

func (m *MockGenerator) EmbedBatch(ctx context.Context, texts []string, taskType string) ([][]float64, error) {
	m.mu.Lock()
	m.BatchedTexts = append(m.BatchedTexts, texts)
	m.mu.Unlock()
	if m.EmbedBatchFunc != nil {
		return m.EmbedBatchFunc(ctx, texts, taskType)
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (m *MockGenerator) PromptCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

// --- MockLawRepo ---

// MockLawRepo implements LawCatalog (and therefore LawStore and LawReader).
type MockLawRepo struct {
	Laws          []*models.Law
	SearchResults []models.SearchResult

	ListErr   error
	SearchErr error
	GetErr    error
	CountErr  error

	ListCalls   int
	SearchLimit int
}

func (m *MockLawRepo) List(ctx context.Context, limit int) ([]*models.Law, error) {
	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	if limit > 0 && limit < len(m.Laws) {
		return m.Laws[:limit], nil
	}
	return m.Laws, nil
}

func (m *MockLawRepo) Search(ctx context.Context, embedding []float64, limit int) ([]models.SearchResult, error) {
	m.SearchLimit = limit
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if limit > 0 && limit < len(m.SearchResults) {
		return m.SearchResults[:limit], nil
	}
	return m.SearchResults, nil
}

func (m *MockLawRepo) GetByID(ctx context.Context, id string) (*models.Law, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	for _, law := range m.Laws {
		if law.ID == id {
			return law, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *MockLawRepo) Count(ctx context.Context) (int, error) {
	if m.CountErr != nil {
		return 0, m.CountErr
	}
	return len(m.Laws), nil
}

// --- MockDebateRepo ---

// MockDebateRepo implements DebateSearcher and DebateCounter.
type MockDebateRepo struct {
	Debates []*models.Debate

	SearchErr error
	ListErr   error

	SearchLimit int
	SearchParty string
	RecentCalls int
}

func (m *MockDebateRepo) Search(ctx context.Context, embedding []float64, limit int, party, dateFrom, dateTo string) ([]*models.Debate, error) {
	m.SearchLimit = limit
	m.SearchParty = party
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	if limit > 0 && limit < len(m.Debates) {
		return m.Debates[:limit], nil
	}
	return m.Debates, nil
}

func (m *MockDebateRepo) ListRecent(ctx context.Context, limit int) ([]*models.Debate, error) {
	m.RecentCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Debates, nil
}

func (m *MockDebateRepo) Count(ctx context.Context) (int, error) {
	return len(m.Debates), nil
}

// --- Ingestion fakes ---

// MockLawWriter implements LawWriter, recording upserted laws in order.
type MockLawWriter struct {
	Existing   int
	Upserted   []*models.Law
	Embeddings [][]float64
	UpsertErr  error
}

func (m *MockLawWriter) Upsert(ctx context.Context, law *models.Law, embedding []float64) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.Upserted = append(m.Upserted, law)
	m.Embeddings = append(m.Embeddings, embedding)
	return nil
}

func (m *MockLawWriter) Count(ctx context.Context) (int, error) {
	return m.Existing, nil
}

// MockDebateWriter implements DebateWriter.
type MockDebateWriter struct {
	Existing  int
	Upserted  []*models.Debate
	UpsertErr error
}

func (m *MockDebateWriter) Upsert(ctx context.Context, debate *models.Debate, embedding []float64) error {
	if m.UpsertErr != nil {
		return m.UpsertErr
	}
	m.Upserted = append(m.Upserted, debate)
	return nil
}

func (m *MockDebateWriter) Count(ctx context.Context) (int, error) {
	return m.Existing, nil
}

// MockSnapshotTracker implements SnapshotTracker.
type MockSnapshotTracker struct {
	Latest    *models.CorpusSnapshot
	LatestErr error
	MarkErr   error

	MarkedID    uuid.UUID
	MarkedCount int
}

func (m *MockSnapshotTracker) GetLatest(ctx context.Context, dataset models.Dataset) (*models.CorpusSnapshot, error) {
	if m.LatestErr != nil {
		return nil, m.LatestErr
	}
	if m.Latest == nil {
		return nil, pgx.ErrNoRows
	}
	return m.Latest, nil
}

func (m *MockSnapshotTracker) MarkIngested(ctx context.Context, id uuid.UUID, recordCount int) error {
	m.MarkedID = id
	m.MarkedCount = recordCount
	if m.MarkErr != nil {
		return m.MarkErr
	}
	return nil
}

// MockStore keeps snapshot files in memory, keyed by storage path.
type MockStore struct {
	Files map[string][]byte
}

func NewMockStore() *MockStore {
	return &MockStore{Files: make(map[string][]byte)}
}

func (m *MockStore) Put(ctx context.Context, snapshotID uuid.UUID, dataset, filename string, data io.Reader) (string, error) {
	content, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	path := dataset + "/" + snapshotID.String() + "_" + filename
	m.Files[path] = content
	return path, nil
}

func (m *MockStore) Get(ctx context.Context, storagePath string) (io.ReadCloser, error) {
	content, ok := m.Files[storagePath]
	if !ok {
		return nil, io.ErrUnexpectedEOF
	}
	return io.NopCloser(bytes.NewReader(content)), nil
}

func (m *MockStore) Delete(ctx context.Context, storagePath string) error {
	delete(m.Files, storagePath)
	return nil
}
