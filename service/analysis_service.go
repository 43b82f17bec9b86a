package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"lexintent-backend/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/jackc/pgx/v5"
)

var (
	ErrLawNotFound    = errors.New("law not found")
	ErrEmptyGrounding = errors.New("no debates ground this law text")
)

const (
	timelineTopicResults  = 50
	timelineRecentResults = 100

	confidenceWithLaws    = 0.8
	confidenceWithoutLaws = 0.5

	// Answers below this confidence carry a visible caveat.
	confidenceCaveatThreshold = 0.5
)

const lowConfidenceCaveat = "\n\nNote: This answer is low confidence. The corpus contained little material relevant to the question."

// LawStore extends LawReader with single-law lookup.
type LawStore interface {
	LawReader
	GetByID(ctx context.Context, id string) (*models.Law, error)
}

// DebateSearcher is the debate repository surface the analysis service
// needs.
type DebateSearcher interface {
	Search(ctx context.Context, embedding []float64, limit int, party, dateFrom, dateTo string) ([]*models.Debate, error)
	ListRecent(ctx context.Context, limit int) ([]*models.Debate, error)
}

// AnalysisService runs the grounding pipeline: retrieve debates and law
// sections, assemble context, generate, validate, resolve citations and
// lay out the timeline.
type AnalysisService struct {
	lawRepo      LawStore
	debateRepo   DebateSearcher
	gen          TextGenerator
	geminiClient *genai.Client
	session      *AnalysisSession
	cfg          PipelineConfig
}

// AnalysisOption is a functional option for AnalysisService
type AnalysisOption func(*AnalysisService)

// AnalysisWithLawRepository sets the law repository
func AnalysisWithLawRepository(repo LawStore) AnalysisOption {
	return func(s *AnalysisService) {
		s.lawRepo = repo
	}
}

// AnalysisWithDebateRepository sets the debate repository
func AnalysisWithDebateRepository(repo DebateSearcher) AnalysisOption {
	return func(s *AnalysisService) {
		s.debateRepo = repo
	}
}

// AnalysisWithGenAI sets the generative client
func AnalysisWithGenAI(gen TextGenerator) AnalysisOption {
	return func(s *AnalysisService) {
		s.gen = gen
	}
}

// AnalysisWithGeminiClient sets the Gemini liveness client; AI-dependent
// operations refuse to run while it is absent
func AnalysisWithGeminiClient(client *genai.Client) AnalysisOption {
	return func(s *AnalysisService) {
		s.geminiClient = client
	}
}

// AnalysisWithConfig sets the pipeline configuration
func AnalysisWithConfig(cfg PipelineConfig) AnalysisOption {
	return func(s *AnalysisService) {
		s.cfg = cfg
	}
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(opts ...AnalysisOption) *AnalysisService {
	s := &AnalysisService{
		cfg:     DefaultPipelineConfig(),
		session: NewAnalysisSession(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeIntentRequest carries the law text to analyze and optional extra
// context shown to the model alongside it.
type AnalyzeIntentRequest struct {
	LawText    string
	LawContext string
}

// AnalyzeIntent runs one full intent analysis. The law text is embedded
// and used to retrieve grounding debates plus related law sections; zero
// grounding debates aborts with ErrEmptyGrounding rather than inventing an
// unsupported analysis. A malformed model response surfaces as
// ErrMalformedResponse without a retry.
func (s *AnalysisService) AnalyzeIntent(ctx context.Context, req AnalyzeIntentRequest) (*models.AnalysisResult, error) {
	if s.debateRepo == nil {
		return nil, errors.New("debate repository not set")
	}
	if s.gen == nil {
		return nil, errors.New("genai client not set")
	}
	if s.geminiClient == nil {
		return nil, errors.New("gemini client not set")
	}

	embedding, err := s.gen.EmbedText(ctx, req.LawText, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("failed to embed law text: %w", err)
	}

	debates, err := s.debateRepo.Search(ctx, embedding, s.cfg.DebateResults, "", "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve debates: %w", err)
	}
	if len(debates) == 0 {
		return nil, ErrEmptyGrounding
	}

	var related []models.SearchResult
	if s.lawRepo != nil {
		related, err = s.lawRepo.Search(ctx, embedding, s.cfg.RelatedLawResults)
		if err != nil {
			log.Printf("Warning: Failed to retrieve related law sections: %v", err)
			related = nil
		}
	}

	assembled := FitIntentContext(debates, related, s.cfg.ContextTokenBudget)
	prompt := BuildAnalysisPrompt(req.LawText, req.LawContext, assembled)

	raw, err := s.gen.GenerateText(ctx, prompt, s.cfg.AnalysisTemperature)
	if err != nil {
		return nil, fmt.Errorf("analysis generation failed: %w", err)
	}

	result, err := ParseAnalysisResponse(raw)
	if err != nil {
		return nil, err
	}

	if len(result.Citations) == 0 {
		result.Citations = citationsFromDebates(debates, s.cfg.DefaultCitations)
	}

	if resolver, rerr := s.resolver(ctx); rerr == nil {
		result.References = resolver.References(result.Summary)
	} else {
		log.Printf("Warning: Failed to build citation resolver: %v", rerr)
	}

	timeline, terr := LayoutTimeline(TimelineEventsFromCitations(result.Citations))
	if terr != nil {
		log.Printf("Warning: No timeline for analysis: %v", terr)
	} else {
		result.Timeline = timeline
	}

	return result, nil
}

// DirectQueryRequest carries a free-text question.
type DirectQueryRequest struct {
	Question string
}

// DirectQuery answers a question from retrieved laws and debates. The
// answer confidence depends on whether any law grounded it; low-confidence
// answers carry a visible caveat. Law references inside the answer are
// resolved into links.
func (s *AnalysisService) DirectQuery(ctx context.Context, req DirectQueryRequest) (*models.QueryAnswer, error) {
	if s.gen == nil {
		return nil, errors.New("genai client not set")
	}
	if s.geminiClient == nil {
		return nil, errors.New("gemini client not set")
	}

	embedding, err := s.gen.EmbedText(ctx, req.Question, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	var laws []models.SearchResult
	if s.lawRepo != nil {
		laws, err = s.lawRepo.Search(ctx, embedding, s.cfg.QueryLawResults)
		if err != nil {
			log.Printf("Warning: Failed to retrieve laws for question: %v", err)
			laws = nil
		}
	}

	var debates []*models.Debate
	if s.debateRepo != nil {
		debates, err = s.debateRepo.Search(ctx, embedding, s.cfg.QueryDebateResults, "", "", "")
		if err != nil {
			log.Printf("Warning: Failed to retrieve debates for question: %v", err)
			debates = nil
		}
	}

	assembled := FitQuestionContext(laws, debates, s.cfg.ContextTokenBudget)
	answer, err := s.gen.GenerateText(ctx, BuildQuestionPrompt(req.Question, assembled), s.cfg.AnalysisTemperature)
	if err != nil {
		return nil, fmt.Errorf("failed to answer question: %w", err)
	}

	confidence := confidenceWithoutLaws
	if len(laws) > 0 {
		confidence = confidenceWithLaws
	}
	answer = applyConfidenceCaveat(answer, confidence)

	out := &models.QueryAnswer{
		Answer:     answer,
		Sources:    querySources(laws, debates),
		Confidence: confidence,
	}

	if resolver, rerr := s.resolver(ctx); rerr == nil {
		out.References = resolver.References(answer)
	} else {
		log.Printf("Warning: Failed to build citation resolver: %v", rerr)
	}

	return out, nil
}

// SearchDebatesRequest carries a debate search with optional filters.
type SearchDebatesRequest struct {
	Query    string
	NResults int
	Party    string
	DateFrom string
	DateTo   string
}

// SearchDebates runs a semantic debate search with the optional party and
// date-window filters.
func (s *AnalysisService) SearchDebates(ctx context.Context, req SearchDebatesRequest) ([]*models.Debate, error) {
	if s.debateRepo == nil {
		return nil, errors.New("debate repository not set")
	}
	if s.gen == nil {
		return nil, errors.New("genai client not set")
	}
	if req.NResults <= 0 {
		req.NResults = 5
	}

	embedding, err := s.gen.EmbedText(ctx, req.Query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	debates, err := s.debateRepo.Search(ctx, embedding, req.NResults, req.Party, req.DateFrom, req.DateTo)
	if err != nil {
		return nil, fmt.Errorf("failed to search debates: %w", err)
	}
	return debates, nil
}

// TimelineForTopic lays out debates matching topic on the timeline. An
// empty topic uses the most recent debates instead of a semantic search.
func (s *AnalysisService) TimelineForTopic(ctx context.Context, topic string) ([]models.TimelineEvent, error) {
	if s.debateRepo == nil {
		return nil, errors.New("debate repository not set")
	}

	var debates []*models.Debate
	var err error
	if topic != "" {
		if s.gen == nil {
			return nil, errors.New("genai client not set")
		}
		var embedding []float64
		embedding, err = s.gen.EmbedText(ctx, topic, "RETRIEVAL_QUERY")
		if err != nil {
			return nil, fmt.Errorf("failed to embed topic: %w", err)
		}
		debates, err = s.debateRepo.Search(ctx, embedding, timelineTopicResults, "", "", "")
	} else {
		debates, err = s.debateRepo.ListRecent(ctx, timelineRecentResults)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load debates: %w", err)
	}

	return LayoutTimeline(TimelineEventsFromDebates(debates))
}

// TimelineForLaw lays out the debates grounding one law.
func (s *AnalysisService) TimelineForLaw(ctx context.Context, lawID string) ([]models.TimelineEvent, error) {
	if s.lawRepo == nil {
		return nil, errors.New("law repository not set")
	}
	if s.gen == nil {
		return nil, errors.New("genai client not set")
	}

	law, err := s.lawRepo.GetByID(ctx, lawID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLawNotFound
		}
		return nil, fmt.Errorf("failed to load law: %w", err)
	}

	embedding, err := s.gen.EmbedText(ctx, law.Text, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("failed to embed law text: %w", err)
	}

	debates, err := s.debateRepo.Search(ctx, embedding, timelineTopicResults, "", "", "")
	if err != nil {
		return nil, fmt.Errorf("failed to load debates: %w", err)
	}

	return LayoutTimeline(TimelineEventsFromDebates(debates))
}

// StartAnalysis claims the analysis session for lawID and runs the
// pipeline in the background. Whichever run is newest when it finishes is
// the one the session reports; older completions are dropped silently.
func (s *AnalysisService) StartAnalysis(ctx context.Context, lawID string) (uint64, error) {
	if s.lawRepo == nil {
		return 0, errors.New("law repository not set")
	}

	law, err := s.lawRepo.GetByID(ctx, lawID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrLawNotFound
		}
		return 0, fmt.Errorf("failed to load law: %w", err)
	}

	gen := s.session.Begin(law.ID)

	go func() {
		bgCtx := context.Background()
		result, aerr := s.AnalyzeIntent(bgCtx, AnalyzeIntentRequest{
			LawText:    law.Text,
			LawContext: law.Title,
		})
		if aerr != nil {
			log.Printf("Analysis failed for law %s: %v", law.ID, aerr)
			s.session.Fail(gen, law.ID, aerr.Error())
			return
		}
		s.session.Complete(gen, law.ID, result)
	}()

	return gen, nil
}

// Session returns a snapshot of the analysis session.
func (s *AnalysisService) Session() SessionSnapshot {
	return s.session.Snapshot()
}

// citationsFromDebates promotes the first n retrieved debates to
// citations, the default when the model omits its own.
func citationsFromDebates(debates []*models.Debate, n int) []models.Citation {
	if n > len(debates) {
		n = len(debates)
	}
	citations := make([]models.Citation, 0, n)
	for _, d := range debates[:n] {
		citations = append(citations, models.Citation{
			Speaker:   orDefault(d.SpeakerName, "Unknown"),
			Party:     orDefault(d.Party, "Unknown"),
			Date:      orDefault(d.Date, "Unknown"),
			Text:      d.Text,
			Sentiment: d.SentimentScore,
			Topic:     d.Topic,
		})
	}
	return citations
}

// querySources lists the grounding behind a direct answer: the top three
// laws and the top two debate speakers.
func querySources(laws []models.SearchResult, debates []*models.Debate) []models.QuerySource {
	sources := make([]models.QuerySource, 0, 5)
	for i, law := range laws {
		if i == 3 {
			break
		}
		sources = append(sources, models.QuerySource{
			Type:      "law",
			ID:        law.ID,
			Relevance: law.RelevanceScore,
		})
	}
	for i, d := range debates {
		if i == 2 {
			break
		}
		sources = append(sources, models.QuerySource{
			Type:    "debate",
			Speaker: orDefault(d.SpeakerName, "Unknown"),
		})
	}
	return sources
}

// applyConfidenceCaveat appends the visible low-confidence caveat when
// confidence falls below the threshold.
func applyConfidenceCaveat(answer string, confidence float64) string {
	if confidence < confidenceCaveatThreshold {
		return answer + lowConfidenceCaveat
	}
	return answer
}

// resolver builds a citation resolver over the current law id set.
func (s *AnalysisService) resolver(ctx context.Context) (*CitationResolver, error) {
	if s.lawRepo == nil {
		return nil, errors.New("law repository not set")
	}

	laws, err := s.lawRepo.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(laws))
	for _, law := range laws {
		ids = append(ids, law.ID)
	}
	return NewCitationResolver(ids, s.cfg.StatuteCodes), nil
}
