package repository

import (
	"context"
	"fmt"
	"strings"

	"lexintent-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// maxLawListLimit caps how many laws a single List call may return.
const maxLawListLimit = 500

// LawRepository handles database operations for law sections
type LawRepository struct {
	db *pgxpool.Pool
}

// NewLawRepository creates a new law repository
func NewLawRepository(db *pgxpool.Pool) *LawRepository {
	return &LawRepository{db: db}
}

// formatVector formats an embedding vector as a string for pgx
func formatVector(embedding []float64) string {
	if len(embedding) == 0 {
		return "[]"
	}
	var parts []string
	for _, v := range embedding {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// Upsert inserts or replaces a law section together with its embedding
func (r *LawRepository) Upsert(ctx context.Context, law *models.Law, embedding []float64) error {
	if len(embedding) != 768 {
		return fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	query := `
		INSERT INTO laws (
			id, law_name, law_code, section, section_title, law_type, full_text, date_enacted, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::vector)
		ON CONFLICT (id) DO UPDATE SET
			law_name = EXCLUDED.law_name,
			law_code = EXCLUDED.law_code,
			section = EXCLUDED.section,
			section_title = EXCLUDED.section_title,
			law_type = EXCLUDED.law_type,
			full_text = EXCLUDED.full_text,
			date_enacted = EXCLUDED.date_enacted,
			embedding = EXCLUDED.embedding`

	_, err := r.db.Exec(
		ctx, query,
		law.ID,
		law.LawName,
		law.LawCode,
		law.Section,
		law.SectionTitle,
		string(law.LawType),
		law.Text,
		law.DateEnacted,
		formatVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert law %s: %w", law.ID, err)
	}

	return nil
}

// GetByID retrieves a single law section
func (r *LawRepository) GetByID(ctx context.Context, id string) (*models.Law, error) {
	law := &models.Law{}
	query := `
		SELECT id, law_name, law_code, section, section_title, law_type, full_text, date_enacted
		FROM laws
		WHERE id = $1`

	var lawType string
	err := r.db.QueryRow(ctx, query, id).Scan(
		&law.ID,
		&law.LawName,
		&law.LawCode,
		&law.Section,
		&law.SectionTitle,
		&lawType,
		&law.Text,
		&law.DateEnacted,
	)
	if err != nil {
		return nil, err
	}

	law.LawType = models.LawType(lawType)
	law.Title = models.DisplayTitle(law.LawName, law.Section)
	return law, nil
}

// List retrieves law sections ordered by id, capped at maxLawListLimit
func (r *LawRepository) List(ctx context.Context, limit int) ([]*models.Law, error) {
	if limit <= 0 || limit > maxLawListLimit {
		limit = maxLawListLimit
	}

	query := `
		SELECT id, law_name, law_code, section, section_title, law_type, full_text, date_enacted
		FROM laws
		ORDER BY id
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query laws: %w", err)
	}
	defer rows.Close()

	var laws []*models.Law
	for rows.Next() {
		law := &models.Law{}
		var lawType string
		err := rows.Scan(
			&law.ID,
			&law.LawName,
			&law.LawCode,
			&law.Section,
			&law.SectionTitle,
			&lawType,
			&law.Text,
			&law.DateEnacted,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan law: %w", err)
		}
		law.LawType = models.LawType(lawType)
		law.Title = models.DisplayTitle(law.LawName, law.Section)
		laws = append(laws, law)
	}

	return laws, rows.Err()
}

// Count returns the number of stored law sections
func (r *LawRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM laws`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count laws: %w", err)
	}
	return count, nil
}

// Search finds the law sections most similar to the query embedding.
// Relevance is derived from cosine distance as 1 - distance/2, with 0.5
// when no distance is available.
func (r *LawRepository) Search(ctx context.Context, embedding []float64, limit int) ([]models.SearchResult, error) {
	if len(embedding) != 768 {
		return nil, fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	vectorStr := formatVector(embedding)

	query := `
		SELECT
			id,
			full_text,
			law_name,
			law_code,
			section,
			section_title,
			law_type,
			date_enacted,
			embedding <=> $1::vector AS distance
		FROM laws
		WHERE embedding IS NOT NULL
		ORDER BY
			embedding <=> $1::vector
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, vectorStr, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search laws: %w", err)
	}
	defer rows.Close()

	var results []models.SearchResult
	for rows.Next() {
		var res models.SearchResult
		var lawType string
		var distance *float64
		err := rows.Scan(
			&res.ID,
			&res.Document,
			&res.Metadata.LawName,
			&res.Metadata.LawCode,
			&res.Metadata.Section,
			&res.Metadata.SectionTitle,
			&lawType,
			&res.Metadata.DateEnacted,
			&distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		res.Metadata.LawType = models.LawType(lawType)
		if distance != nil {
			res.RelevanceScore = 1 - *distance/2
		} else {
			res.RelevanceScore = 0.5
		}
		results = append(results, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}
