package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/codefromthecrypt/routeguide/internal/core/domain"
	"github.com/codefromthecrypt/routeguide/internal/core/ports"
	"github.com/codefromthecrypt/routeguide/internal/pkg/geospatial"
	"github.com/codefromthecrypt/routeguide/internal/pkg/metrics"
)

// RouteGuideService implements the four route-guide calls on top of the
// feature collection and the shared note registry.
type RouteGuideService struct {
	features  ports.FeatureRepository
	notes     ports.NoteRegistry
	publisher ports.EventPublisher
	cache     ports.CacheService
}

// NewRouteGuideService creates a new RouteGuideService. publisher and cache
// may be nil when a broker or cache is not configured.
func NewRouteGuideService(
	features ports.FeatureRepository,
	notes ports.NoteRegistry,
	publisher ports.EventPublisher,
	cache ports.CacheService,
) *RouteGuideService {
	return &RouteGuideService{features: features, notes: notes, publisher: publisher, cache: cache}
}

// GetFeature returns the feature at exactly the given point. When no feature
// exists there, the result is a feature with an empty name wrapping the point;
// "not found" is never an error.
func (s *RouteGuideService) GetFeature(ctx context.Context, p *domain.Point) (*domain.Feature, error) {
	cacheKey := fmt.Sprintf("features:pt:%d:%d", p.Latitude, p.Longitude)
	if s.cache != nil {
		if data, err := s.cache.Get(ctx, cacheKey); err == nil {
			var f domain.Feature
			if err := json.Unmarshal(data, &f); err == nil {
				metrics.CacheHits.WithLabelValues("get_feature").Inc()
				return &f, nil
			}
		} else {
			metrics.CacheMisses.WithLabelValues("get_feature").Inc()
		}
	}

	f, err := s.features.GetByLocation(ctx, *p)
	if err != nil {
		return nil, fmt.Errorf("feature lookup: %w", err)
	}
	if f == nil {
		f = &domain.Feature{Location: *p}
	}

	// Cache for 10 minutes (the collection is immutable after load)
	if s.cache != nil {
		if data, err := json.Marshal(f); err == nil {
			_ = s.cache.Set(ctx, cacheKey, data, 600)
		}
	}

	return f, nil
}

// ListFeatures streams every named feature inside the rectangle, in the
// collection's iteration order. The rectangle does not need to be normalized.
func (s *RouteGuideService) ListFeatures(ctx context.Context, r *domain.Rectangle, stream ports.FeatureStream) error {
	rect := r.Normalized()

	features, err := s.features.List(ctx)
	if err != nil {
		return fmt.Errorf("list features: %w", err)
	}

	for i := range features {
		if err := ctx.Err(); err != nil {
			return err
		}
		f := &features[i]
		if f.Name == "" || !rect.Contains(f.Location) {
			continue
		}
		if err := stream.Send(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

// RecordRoute consumes a stream of points and returns a summary of the
// traversed route. Accumulation is incremental: the elapsed timer starts on
// the first point, and each point after the first contributes the great-circle
// distance from its predecessor. An empty stream yields an all-zero summary.
// Cancellation discards the partial summary.
func (s *RouteGuideService) RecordRoute(ctx context.Context, stream ports.PointStream) (*domain.RouteSummary, error) {
	var (
		pointCount   int32
		featureCount int32
		distance     float64
		prev         *domain.Point
		startedAt    time.Time
	)

	for {
		p, err := stream.Recv(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if pointCount == 0 {
			startedAt = time.Now()
		}
		pointCount++
		metrics.PointsRecorded.Inc()

		f, err := s.features.GetByLocation(ctx, *p)
		if err != nil {
			return nil, fmt.Errorf("feature lookup: %w", err)
		}
		if f != nil && f.Name != "" {
			featureCount++
		}

		if prev != nil {
			distance += geospatial.Haversine(
				prev.LatDegrees(), prev.LonDegrees(),
				p.LatDegrees(), p.LonDegrees(),
			)
		}
		prev = p
	}

	summary := &domain.RouteSummary{
		PointCount:   pointCount,
		FeatureCount: featureCount,
		// Rounds half away from zero.
		Distance: int32(math.Round(distance)),
	}
	if pointCount > 0 {
		summary.ElapsedTime = int32(time.Since(startedAt) / time.Second)
	}
	return summary, nil
}

// RouteChat relays notes left at locations. For each inbound note the caller
// receives every note previously appended at that location, in stored order,
// never including the inbound note itself. The registry is shared process-wide,
// so concurrent callers chatting at the same location observe each other.
func (s *RouteGuideService) RouteChat(ctx context.Context, stream ports.NoteStream) error {
	for {
		note, err := stream.Recv(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// Snapshot-then-append is atomic inside the registry; sends happen
		// outside its critical section.
		prior, err := s.notes.Append(ctx, note)
		if err != nil {
			return fmt.Errorf("append note: %w", err)
		}
		metrics.NotesAppended.Inc()

		for _, n := range prior {
			if err := stream.Send(ctx, n); err != nil {
				return err
			}
		}

		if s.publisher != nil {
			// Best effort: chat does not depend on the broker.
			_ = s.publisher.PublishNoteAppended(ctx, note)
		}
	}
}
