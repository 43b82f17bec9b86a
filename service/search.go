package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"lexintent-backend/models"

	"github.com/google/generative-ai-go/genai"
)

// SearchMode identifies how a result set was produced.
type SearchMode string

const (
	SearchModeSemantic SearchMode = "semantic"
	SearchModeLocal    SearchMode = "local"
)

// LawReader is the law repository surface the search controller needs.
type LawReader interface {
	List(ctx context.Context, limit int) ([]*models.Law, error)
	Search(ctx context.Context, embedding []float64, limit int) ([]models.SearchResult, error)
}

// SearchController runs law searches in two modes. Semantic mode embeds
// the query (optionally AI-enhanced first) and ranks by vector similarity;
// queries under the minimum length, and any semantic failure, use a
// substring filter over the last known full law set instead. Debounced
// queries commit under a generation counter so a slow stale search can
// never overwrite a newer one.
type SearchController struct {
	lawRepo      LawReader
	gen          TextGenerator
	geminiClient *genai.Client
	cfg          PipelineConfig

	localDebounce    *Debouncer
	semanticDebounce *Debouncer

	mu         sync.Mutex
	generation uint64
	cachedLaws []*models.Law
	results    []models.SearchResult
	mode       SearchMode
}

// SearchOption is a functional option for SearchController
type SearchOption func(*SearchController)

// SearchWithLawRepository sets the law repository
func SearchWithLawRepository(repo LawReader) SearchOption {
	return func(s *SearchController) {
		s.lawRepo = repo
	}
}

// SearchWithGenAI sets the generative client used for query enhancement
// and embeddings
func SearchWithGenAI(gen TextGenerator) SearchOption {
	return func(s *SearchController) {
		s.gen = gen
	}
}

// SearchWithGeminiClient sets the Gemini liveness client; enhancement is
// skipped when it is absent
func SearchWithGeminiClient(client *genai.Client) SearchOption {
	return func(s *SearchController) {
		s.geminiClient = client
	}
}

// SearchWithConfig sets the pipeline configuration
func SearchWithConfig(cfg PipelineConfig) SearchOption {
	return func(s *SearchController) {
		s.cfg = cfg
	}
}

// NewSearchController creates a new search controller
func NewSearchController(opts ...SearchOption) *SearchController {
	s := &SearchController{
		cfg: DefaultPipelineConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.localDebounce = NewDebouncer(s.cfg.SearchDebounce)
	s.semanticDebounce = NewDebouncer(s.cfg.SemanticDebounce)
	return s
}

// Search runs one search synchronously. useAI additionally rewrites the
// query through the enhancer prompt before embedding; enhancement failures
// fall back to the raw query, and semantic failures fall back to the local
// filter.
func (s *SearchController) Search(ctx context.Context, query string, n int, useAI bool) ([]models.SearchResult, SearchMode, error) {
	query = strings.TrimSpace(query)
	if n <= 0 {
		n = 10
	}

	if utf8.RuneCountInString(query) < s.cfg.MinSemanticQueryLen {
		results, err := s.localFilter(ctx, query, n)
		return results, SearchModeLocal, err
	}

	results, err := s.semanticSearch(ctx, query, n, useAI)
	if err != nil {
		log.Printf("Warning: Semantic search failed, falling back to local filter: %v", err)
		results, lerr := s.localFilter(ctx, query, n)
		return results, SearchModeLocal, lerr
	}
	return results, SearchModeSemantic, nil
}

// SetQuery schedules a debounced search. Sub-length queries wait the short
// delay, semantic ones the longer delay; a newer call supersedes anything
// pending. The committed results are readable through Results; onCommit,
// when set, observes each commit and runs under the controller lock, so it
// must not call back into the controller. The returned generation
// identifies this request.
func (s *SearchController) SetQuery(query string, n int, useAI bool, onCommit func([]models.SearchResult, SearchMode)) uint64 {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.localDebounce.Cancel()
	s.semanticDebounce.Cancel()

	run := func() {
		results, mode, err := s.Search(context.Background(), query, n, useAI)
		s.commit(gen, results, mode, err, onCommit)
	}

	if utf8.RuneCountInString(strings.TrimSpace(query)) < s.cfg.MinSemanticQueryLen {
		s.localDebounce.Debounce(run)
	} else {
		s.semanticDebounce.Debounce(run)
	}

	return gen
}

// commit publishes a completed search unless it is stale or wholly failed.
func (s *SearchController) commit(gen uint64, results []models.SearchResult, mode SearchMode, err error, onCommit func([]models.SearchResult, SearchMode)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return
	}
	if err != nil {
		log.Printf("Warning: Search failed entirely, keeping previous results: %v", err)
		return
	}

	s.results = results
	s.mode = mode
	if onCommit != nil {
		onCommit(results, mode)
	}
}

// Results returns the last committed result list and its mode.
func (s *SearchController) Results() ([]models.SearchResult, SearchMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results, s.mode
}

// semanticSearch embeds the (possibly enhanced) query and ranks laws by
// vector similarity.
func (s *SearchController) semanticSearch(ctx context.Context, query string, n int, useAI bool) ([]models.SearchResult, error) {
	if s.lawRepo == nil {
		return nil, errors.New("law repository not set")
	}
	if s.gen == nil {
		return nil, errors.New("genai client not set")
	}

	searchQuery := query
	if useAI && s.geminiClient != nil {
		enhanced, err := s.gen.GenerateText(ctx, BuildEnhancerPrompt(query), s.cfg.AnalysisTemperature)
		if err != nil {
			log.Printf("Warning: Query enhancement failed: %v", err)
		} else if trimmed := strings.TrimSpace(enhanced); trimmed != "" {
			searchQuery = trimmed
		}
	}

	embedding, err := s.gen.EmbedText(ctx, searchQuery, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.lawRepo.Search(ctx, embedding, n)
	if err != nil {
		return nil, fmt.Errorf("failed to search laws: %w", err)
	}
	return results, nil
}

// localFilter substring-matches the query against title, content and
// statute name of the cached law set, case-insensitively. An empty query
// matches everything.
func (s *SearchController) localFilter(ctx context.Context, query string, n int) ([]models.SearchResult, error) {
	laws, err := s.lawSet(ctx)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	var results []models.SearchResult
	for _, law := range laws {
		if needle != "" &&
			!strings.Contains(strings.ToLower(law.Title), needle) &&
			!strings.Contains(strings.ToLower(law.Text), needle) &&
			!strings.Contains(strings.ToLower(law.LawName), needle) {
			continue
		}
		results = append(results, searchResultFromLaw(law))
		if len(results) == n {
			break
		}
	}
	return results, nil
}

// lawSet returns the cached law set, loading it on first use.
func (s *SearchController) lawSet(ctx context.Context) ([]*models.Law, error) {
	s.mu.Lock()
	cached := s.cachedLaws
	s.mu.Unlock()

	if len(cached) > 0 {
		return cached, nil
	}
	return s.RefreshLaws(ctx)
}

// RefreshLaws reloads the cached law set from the repository. On failure
// the previous cache, when present, is kept and returned.
func (s *SearchController) RefreshLaws(ctx context.Context) ([]*models.Law, error) {
	if s.lawRepo == nil {
		return nil, errors.New("law repository not set")
	}

	laws, err := s.lawRepo.List(ctx, 0)
	if err != nil {
		s.mu.Lock()
		cached := s.cachedLaws
		s.mu.Unlock()
		if len(cached) > 0 {
			log.Printf("Warning: Failed to refresh law cache, keeping previous set: %v", err)
			return cached, nil
		}
		return nil, fmt.Errorf("failed to load laws: %w", err)
	}

	s.mu.Lock()
	s.cachedLaws = laws
	s.mu.Unlock()
	return laws, nil
}

// searchResultFromLaw shapes a cached law like a retrieval hit. Locally
// filtered results carry the no-distance relevance of 0.5.
func searchResultFromLaw(law *models.Law) models.SearchResult {
	return models.SearchResult{
		ID:       law.ID,
		Document: law.Text,
		Metadata: models.LawMetadata{
			LawName:      law.LawName,
			LawCode:      law.LawCode,
			Section:      law.Section,
			SectionTitle: law.SectionTitle,
			LawType:      law.LawType,
			DateEnacted:  law.DateEnacted,
		},
		RelevanceScore: 0.5,
	}
}
