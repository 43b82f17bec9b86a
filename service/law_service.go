package service

import (
	"context"
	"errors"
	"fmt"

	"lexintent-backend/models"

	"github.com/jackc/pgx/v5"
)

// LawCatalog is the law repository surface the law service needs.
type LawCatalog interface {
	LawStore
	Count(ctx context.Context) (int, error)
}

// DebateCounter provides the debate count for statistics.
type DebateCounter interface {
	Count(ctx context.Context) (int, error)
}

// LawService handles law listing, lookup and collection statistics
type LawService struct {
	lawRepo    LawCatalog
	debateRepo DebateCounter
}

// LawServiceOption is a functional option for LawService
type LawServiceOption func(*LawService)

// LawWithLawRepository sets the law repository
func LawWithLawRepository(repo LawCatalog) LawServiceOption {
	return func(s *LawService) {
		s.lawRepo = repo
	}
}

// LawWithDebateRepository sets the debate repository
func LawWithDebateRepository(repo DebateCounter) LawServiceOption {
	return func(s *LawService) {
		s.debateRepo = repo
	}
}

// NewLawService creates a new law service
func NewLawService(opts ...LawServiceOption) *LawService {
	s := &LawService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListLawsRequest represents a request to list laws
type ListLawsRequest struct {
	Limit int
}

// ListLawsResult represents the result of listing laws
type ListLawsResult struct {
	Laws []*models.Law
}

// ListLaws retrieves laws ordered by id
func (s *LawService) ListLaws(ctx context.Context, req ListLawsRequest) (*ListLawsResult, error) {
	if s.lawRepo == nil {
		return nil, errors.New("law repository not set")
	}

	laws, err := s.lawRepo.List(ctx, req.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list laws: %w", err)
	}

	return &ListLawsResult{Laws: laws}, nil
}

// GetLawRequest represents a request to get one law
type GetLawRequest struct {
	ID string
}

// GetLawResult represents the result of getting one law
type GetLawResult struct {
	Law *models.Law
}

// GetLaw retrieves a single law section by id
func (s *LawService) GetLaw(ctx context.Context, req GetLawRequest) (*GetLawResult, error) {
	if s.lawRepo == nil {
		return nil, errors.New("law repository not set")
	}

	law, err := s.lawRepo.GetByID(ctx, req.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLawNotFound
		}
		return nil, fmt.Errorf("failed to load law: %w", err)
	}

	return &GetLawResult{Law: law}, nil
}

// CollectionStats describes one corpus collection.
type CollectionStats struct {
	Count int    `json:"count"`
	Name  string `json:"name"`
}

// StatsResult represents collection statistics for display.
type StatsResult struct {
	LegalTexts     CollectionStats `json:"legal_texts"`
	HansardDebates CollectionStats `json:"hansard_debates"`
}

// Stats counts both collections
func (s *LawService) Stats(ctx context.Context) (*StatsResult, error) {
	if s.lawRepo == nil {
		return nil, errors.New("law repository not set")
	}
	if s.debateRepo == nil {
		return nil, errors.New("debate repository not set")
	}

	lawCount, err := s.lawRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count laws: %w", err)
	}

	debateCount, err := s.debateRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count debates: %w", err)
	}

	return &StatsResult{
		LegalTexts:     CollectionStats{Count: lawCount, Name: "laws"},
		HansardDebates: CollectionStats{Count: debateCount, Name: "debates"},
	}, nil
}
