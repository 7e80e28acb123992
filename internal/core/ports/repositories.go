package ports

import (
	"context"

	"github.com/codefromthecrypt/routeguide/internal/core/domain"
)

// FeatureRepository holds the fixed collection of named locations. The
// collection is loaded once at startup and never mutated afterwards.
type FeatureRepository interface {
	// GetByLocation returns the feature at exactly the given point, or
	// (nil, nil) when no feature exists there.
	GetByLocation(ctx context.Context, p domain.Point) (*domain.Feature, error)
	// List returns all features in a fixed iteration order.
	List(ctx context.Context) ([]domain.Feature, error)
}

// NoteRegistry is the shared per-location log of route notes. It lives for
// the process lifetime and is shared by every call and every client.
type NoteRegistry interface {
	// Append atomically reads the notes already stored at note.Location and
	// appends note after them. It returns the strictly-prior notes in their
	// stored order; the returned slice never contains note itself.
	Append(ctx context.Context, note *domain.RouteNote) ([]*domain.RouteNote, error)
	// NotesAt returns the current log at a location in stored order.
	NotesAt(ctx context.Context, p domain.Point) ([]*domain.RouteNote, error)
}
