package repository

import (
	"context"
	"fmt"

	"lexintent-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DebateRepository handles database operations for debate excerpts
type DebateRepository struct {
	db *pgxpool.Pool
}

// NewDebateRepository creates a new debate repository
func NewDebateRepository(db *pgxpool.Pool) *DebateRepository {
	return &DebateRepository{db: db}
}

// Upsert inserts or replaces a debate excerpt together with its embedding
func (r *DebateRepository) Upsert(ctx context.Context, debate *models.Debate, embedding []float64) error {
	if len(embedding) != 768 {
		return fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	query := `
		INSERT INTO debates (
			id, speaker_name, party, constituency, debate_date, topic, full_text, sentiment_score, source_url, embedding
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::vector)
		ON CONFLICT (id) DO UPDATE SET
			speaker_name = EXCLUDED.speaker_name,
			party = EXCLUDED.party,
			constituency = EXCLUDED.constituency,
			debate_date = EXCLUDED.debate_date,
			topic = EXCLUDED.topic,
			full_text = EXCLUDED.full_text,
			sentiment_score = EXCLUDED.sentiment_score,
			source_url = EXCLUDED.source_url,
			embedding = EXCLUDED.embedding`

	_, err := r.db.Exec(
		ctx, query,
		debate.ID,
		debate.SpeakerName,
		debate.Party,
		debate.Constituency,
		debate.Date,
		debate.Topic,
		debate.Text,
		debate.SentimentScore,
		debate.SourceURL,
		formatVector(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert debate %s: %w", debate.ID, err)
	}

	return nil
}

// Search finds the debate excerpts most similar to the query embedding.
// party filters by exact party name in SQL. dateFrom/dateTo apply a plain
// string window on the free-form debate date after scanning; corpus dates
// are predominantly ISO formatted so the comparison is chronological for
// those.
func (r *DebateRepository) Search(
	ctx context.Context,
	embedding []float64,
	limit int,
	party string,
	dateFrom string,
	dateTo string,
) ([]*models.Debate, error) {
	if len(embedding) != 768 {
		return nil, fmt.Errorf("embedding must be 768 dimensions, got %d", len(embedding))
	}

	vectorStr := formatVector(embedding)

	var partyFilter string
	var args []interface{}
	if party == "" {
		partyFilter = "TRUE"
		args = []interface{}{vectorStr, limit}
	} else {
		partyFilter = "party = $2"
		args = []interface{}{vectorStr, party, limit}
	}

	query := fmt.Sprintf(`
		SELECT
			id,
			speaker_name,
			party,
			constituency,
			debate_date,
			topic,
			full_text,
			sentiment_score,
			source_url,
			embedding <=> $1::vector AS distance
		FROM debates
		WHERE
			%s
			AND embedding IS NOT NULL
		ORDER BY
			embedding <=> $1::vector
		LIMIT $%d`, partyFilter, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search debates: %w", err)
	}
	defer rows.Close()

	var debates []*models.Debate
	for rows.Next() {
		debate := &models.Debate{}
		err := rows.Scan(
			&debate.ID,
			&debate.SpeakerName,
			&debate.Party,
			&debate.Constituency,
			&debate.Date,
			&debate.Topic,
			&debate.Text,
			&debate.SentimentScore,
			&debate.SourceURL,
			&debate.Distance,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debate: %w", err)
		}
		if dateFrom != "" && debate.Date < dateFrom {
			continue
		}
		if dateTo != "" && debate.Date > dateTo {
			continue
		}
		debates = append(debates, debate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating debates: %w", err)
	}

	return debates, nil
}

// ListRecent retrieves debate excerpts ordered by date, newest first
func (r *DebateRepository) ListRecent(ctx context.Context, limit int) ([]*models.Debate, error) {
	query := `
		SELECT id, speaker_name, party, constituency, debate_date, topic, full_text, sentiment_score, source_url
		FROM debates
		ORDER BY debate_date DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query debates: %w", err)
	}
	defer rows.Close()

	var debates []*models.Debate
	for rows.Next() {
		debate := &models.Debate{}
		err := rows.Scan(
			&debate.ID,
			&debate.SpeakerName,
			&debate.Party,
			&debate.Constituency,
			&debate.Date,
			&debate.Topic,
			&debate.Text,
			&debate.SentimentScore,
			&debate.SourceURL,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debate: %w", err)
		}
		debates = append(debates, debate)
	}

	return debates, rows.Err()
}

// Count returns the number of stored debate excerpts
func (r *DebateRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM debates`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count debates: %w", err)
	}
	return count, nil
}
