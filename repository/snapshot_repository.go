package repository

import (
	"context"
	"fmt"

	"lexintent-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SnapshotRepository handles database operations for corpus snapshots
type SnapshotRepository struct {
	db *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Create creates a new corpus snapshot record. The caller supplies the id
// because the stored file's path embeds it.
func (r *SnapshotRepository) Create(ctx context.Context, snapshot *models.CorpusSnapshot) error {
	query := `
		INSERT INTO corpus_snapshots (
			id, dataset, file_name, storage_path, content_type, size_bytes, record_count
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`

	err := r.db.QueryRow(
		ctx, query,
		snapshot.ID,
		string(snapshot.Dataset),
		snapshot.FileName,
		snapshot.StoragePath,
		snapshot.ContentType,
		snapshot.SizeBytes,
		snapshot.RecordCount,
	).Scan(&snapshot.CreatedAt)

	return err
}

// List retrieves all snapshot records, newest first
func (r *SnapshotRepository) List(ctx context.Context) ([]*models.CorpusSnapshot, error) {
	query := `
		SELECT id, dataset, file_name, storage_path, content_type, size_bytes, record_count, ingested_at, created_at
		FROM corpus_snapshots
		ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []*models.CorpusSnapshot
	for rows.Next() {
		snapshot := &models.CorpusSnapshot{}
		var dataset string
		err := rows.Scan(
			&snapshot.ID,
			&dataset,
			&snapshot.FileName,
			&snapshot.StoragePath,
			&snapshot.ContentType,
			&snapshot.SizeBytes,
			&snapshot.RecordCount,
			&snapshot.IngestedAt,
			&snapshot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshot.Dataset = models.Dataset(dataset)
		snapshots = append(snapshots, snapshot)
	}

	return snapshots, rows.Err()
}

// GetLatest retrieves the most recently uploaded snapshot for a dataset
func (r *SnapshotRepository) GetLatest(ctx context.Context, dataset models.Dataset) (*models.CorpusSnapshot, error) {
	snapshot := &models.CorpusSnapshot{}
	query := `
		SELECT id, dataset, file_name, storage_path, content_type, size_bytes, record_count, ingested_at, created_at
		FROM corpus_snapshots
		WHERE dataset = $1
		ORDER BY created_at DESC
		LIMIT 1`

	var ds string
	err := r.db.QueryRow(ctx, query, string(dataset)).Scan(
		&snapshot.ID,
		&ds,
		&snapshot.FileName,
		&snapshot.StoragePath,
		&snapshot.ContentType,
		&snapshot.SizeBytes,
		&snapshot.RecordCount,
		&snapshot.IngestedAt,
		&snapshot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	snapshot.Dataset = models.Dataset(ds)
	return snapshot, nil
}

// MarkIngested stamps a snapshot as ingested with its loaded record count
func (r *SnapshotRepository) MarkIngested(ctx context.Context, id uuid.UUID, recordCount int) error {
	query := `
		UPDATE corpus_snapshots
		SET ingested_at = NOW(), record_count = $2
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, recordCount)
	return err
}
