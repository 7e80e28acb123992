package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/codefromthecrypt/routeguide/internal/core/domain"
)

// FeatureRepo implements ports.FeatureRepository with pgx. Coordinates are
// stored as the fixed-point integers the domain uses, so lookups are exact
// and rectangle filtering is plain integer comparison.
type FeatureRepo struct {
	db *DB
}

// NewFeatureRepo creates a new FeatureRepo.
func NewFeatureRepo(db *DB) *FeatureRepo {
	return &FeatureRepo{db: db}
}

// Upsert inserts or updates a single feature, keyed by location.
func (r *FeatureRepo) Upsert(ctx context.Context, f *domain.Feature) error {
	_, err := r.db.Pool.Exec(ctx, `
		INSERT INTO features (latitude, longitude, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (latitude, longitude) DO UPDATE SET name = EXCLUDED.name
	`, f.Location.Latitude, f.Location.Longitude, f.Name)
	return err
}

// UpsertBatch inserts many features using pgx.Batch.
func (r *FeatureRepo) UpsertBatch(ctx context.Context, features []domain.Feature) error {
	batch := &pgx.Batch{}
	for _, f := range features {
		batch.Queue(`
			INSERT INTO features (latitude, longitude, name)
			VALUES ($1, $2, $3)
			ON CONFLICT (latitude, longitude) DO UPDATE SET name = EXCLUDED.name
		`, f.Location.Latitude, f.Location.Longitude, f.Name)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range features {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch exec: %w", err)
		}
	}
	return nil
}

// GetByLocation returns the feature at exactly p, or (nil, nil) when absent.
func (r *FeatureRepo) GetByLocation(ctx context.Context, p domain.Point) (*domain.Feature, error) {
	var f domain.Feature
	err := r.db.Pool.QueryRow(ctx, `
		SELECT latitude, longitude, COALESCE(name, '')
		FROM features WHERE latitude = $1 AND longitude = $2
	`, p.Latitude, p.Longitude).Scan(&f.Location.Latitude, &f.Location.Longitude, &f.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// List returns every feature ordered by insertion id, matching the dataset's
// load order.
func (r *FeatureRepo) List(ctx context.Context) ([]domain.Feature, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT latitude, longitude, COALESCE(name, '')
		FROM features ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var features []domain.Feature
	for rows.Next() {
		var f domain.Feature
		if err := rows.Scan(&f.Location.Latitude, &f.Location.Longitude, &f.Name); err != nil {
			return nil, err
		}
		features = append(features, f)
	}
	return features, rows.Err()
}
