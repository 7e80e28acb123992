package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/codefromthecrypt/routeguide/internal/core/domain"
)

// FeatureStore implements ports.FeatureRepository over a fixed in-process
// collection. The collection is immutable after construction.
type FeatureStore struct {
	features []domain.Feature
	byPoint  map[domain.Point]*domain.Feature
}

// NewFeatureStore builds a store from an already-loaded collection.
func NewFeatureStore(features []domain.Feature) *FeatureStore {
	s := &FeatureStore{
		features: features,
		byPoint:  make(map[domain.Point]*domain.Feature, len(features)),
	}
	for i := range s.features {
		s.byPoint[s.features[i].Location] = &s.features[i]
	}
	return s
}

// LoadFeatureStore reads the feature dataset JSON file and builds a store.
func LoadFeatureStore(path string) (*FeatureStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read features %s: %w", path, err)
	}
	var features []domain.Feature
	if err := json.Unmarshal(data, &features); err != nil {
		return nil, fmt.Errorf("parse features %s: %w", path, err)
	}
	return NewFeatureStore(features), nil
}

// GetByLocation returns the feature at exactly p, or (nil, nil) when absent.
func (s *FeatureStore) GetByLocation(ctx context.Context, p domain.Point) (*domain.Feature, error) {
	if f, ok := s.byPoint[p]; ok {
		out := *f
		return &out, nil
	}
	return nil, nil
}

// List returns the collection in load order.
func (s *FeatureStore) List(ctx context.Context) ([]domain.Feature, error) {
	return s.features, nil
}
