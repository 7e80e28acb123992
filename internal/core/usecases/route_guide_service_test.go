package usecases_test

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/codefromthecrypt/routeguide/internal/adapters/memory"
	"github.com/codefromthecrypt/routeguide/internal/core/domain"
	"github.com/codefromthecrypt/routeguide/internal/core/usecases"
	"github.com/codefromthecrypt/routeguide/internal/pkg/geospatial"
)

// --- Mock FeatureRepository ---

type mockFeatureRepo struct {
	getByLocationFn func(ctx context.Context, p domain.Point) (*domain.Feature, error)
	listFn          func(ctx context.Context) ([]domain.Feature, error)
}

func (m *mockFeatureRepo) GetByLocation(ctx context.Context, p domain.Point) (*domain.Feature, error) {
	if m.getByLocationFn != nil {
		return m.getByLocationFn(ctx, p)
	}
	return nil, nil
}

func (m *mockFeatureRepo) List(ctx context.Context) ([]domain.Feature, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

// --- Stream stubs ---

type sliceFeatureStream struct {
	sent []*domain.Feature
}

func (s *sliceFeatureStream) Send(ctx context.Context, f *domain.Feature) error {
	s.sent = append(s.sent, f)
	return nil
}

type slicePointStream struct {
	points []*domain.Point
	i      int
	onRecv func(i int)
}

func (s *slicePointStream) Recv(ctx context.Context) (*domain.Point, error) {
	if s.onRecv != nil {
		s.onRecv(s.i)
	}
	if s.i >= len(s.points) {
		return nil, io.EOF
	}
	p := s.points[s.i]
	s.i++
	return p, nil
}

type sliceNoteStream struct {
	in   []*domain.RouteNote
	i    int
	sent []*domain.RouteNote
}

func (s *sliceNoteStream) Recv(ctx context.Context) (*domain.RouteNote, error) {
	if s.i >= len(s.in) {
		return nil, io.EOF
	}
	n := s.in[s.i]
	s.i++
	return n, nil
}

func (s *sliceNoteStream) Send(ctx context.Context, note *domain.RouteNote) error {
	s.sent = append(s.sent, note)
	return nil
}

// --- Fixtures ---

var (
	knownPoint   = domain.Point{Latitude: 407838351, Longitude: -746143763}
	unknownPoint = domain.Point{Latitude: 1, Longitude: 1}
	knownFeature = domain.Feature{Name: "Patriots Path, Mendham, NJ 07945, USA", Location: knownPoint}
)

func fixtureRepo() *mockFeatureRepo {
	return &mockFeatureRepo{
		getByLocationFn: func(ctx context.Context, p domain.Point) (*domain.Feature, error) {
			if p == knownPoint {
				f := knownFeature
				return &f, nil
			}
			return nil, nil
		},
	}
}

// --- GetFeature ---

func TestRouteGuideService_GetFeature_Found(t *testing.T) {
	svc := usecases.NewRouteGuideService(fixtureRepo(), memory.NewNoteRegistry(), nil, nil)

	f, err := svc.GetFeature(context.Background(), &knownPoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Name != knownFeature.Name {
		t.Errorf("expected %q, got %q", knownFeature.Name, f.Name)
	}
	if f.Location != knownPoint {
		t.Errorf("expected location %+v, got %+v", knownPoint, f.Location)
	}
}

func TestRouteGuideService_GetFeature_MissIsNotAnError(t *testing.T) {
	svc := usecases.NewRouteGuideService(fixtureRepo(), memory.NewNoteRegistry(), nil, nil)

	f, err := svc.GetFeature(context.Background(), &unknownPoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.Name != "" {
		t.Errorf("expected empty-name sentinel, got %q", f.Name)
	}
	if f.Location != unknownPoint {
		t.Errorf("sentinel must wrap the requested location, got %+v", f.Location)
	}
}

func TestRouteGuideService_GetFeature_Idempotent(t *testing.T) {
	svc := usecases.NewRouteGuideService(fixtureRepo(), memory.NewNoteRegistry(), nil, nil)

	a, err := svc.GetFeature(context.Background(), &knownPoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := svc.GetFeature(context.Background(), &knownPoint)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *a != *b {
		t.Errorf("repeated lookups differ: %+v vs %+v", a, b)
	}
}

// --- ListFeatures ---

func TestRouteGuideService_ListFeatures(t *testing.T) {
	inside := domain.Feature{Name: "inside", Location: domain.Point{Latitude: 410000000, Longitude: -740000000}}
	onEdge := domain.Feature{Name: "on edge", Location: domain.Point{Latitude: 400000000, Longitude: -740000000}}
	outside := domain.Feature{Name: "outside", Location: domain.Point{Latitude: 430000000, Longitude: -740000000}}
	unnamed := domain.Feature{Name: "", Location: domain.Point{Latitude: 411000000, Longitude: -741000000}}

	repo := &mockFeatureRepo{
		listFn: func(ctx context.Context) ([]domain.Feature, error) {
			return []domain.Feature{outside, inside, unnamed, onEdge}, nil
		},
	}
	svc := usecases.NewRouteGuideService(repo, memory.NewNoteRegistry(), nil, nil)

	// Corners deliberately swapped: the service must normalize.
	rect := domain.Rectangle{
		Lo: domain.Point{Latitude: 420000000, Longitude: -730000000},
		Hi: domain.Point{Latitude: 400000000, Longitude: -750000000},
	}

	stream := &sliceFeatureStream{}
	if err := svc.ListFeatures(context.Background(), &rect, stream); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stream.sent) != 2 {
		t.Fatalf("expected 2 features, got %d", len(stream.sent))
	}
	// Collection iteration order preserved: inside precedes onEdge.
	if stream.sent[0].Name != "inside" || stream.sent[1].Name != "on edge" {
		t.Errorf("unexpected order: %q, %q", stream.sent[0].Name, stream.sent[1].Name)
	}
	for _, f := range stream.sent {
		if f.Name == "" {
			t.Error("unnamed feature must never be emitted")
		}
	}
}

func TestRouteGuideService_ListFeatures_Cancelled(t *testing.T) {
	repo := &mockFeatureRepo{
		listFn: func(ctx context.Context) ([]domain.Feature, error) {
			return []domain.Feature{knownFeature}, nil
		},
	}
	svc := usecases.NewRouteGuideService(repo, memory.NewNoteRegistry(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stream := &sliceFeatureStream{}
	rect := domain.Rectangle{Lo: domain.Point{}, Hi: domain.Point{Latitude: math.MaxInt32, Longitude: math.MaxInt32}}
	err := svc.ListFeatures(ctx, &rect, stream)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(stream.sent) != 0 {
		t.Errorf("cancelled call must not emit, sent %d", len(stream.sent))
	}
}

// --- RecordRoute ---

func TestRouteGuideService_RecordRoute_Empty(t *testing.T) {
	svc := usecases.NewRouteGuideService(fixtureRepo(), memory.NewNoteRegistry(), nil, nil)

	summary, err := svc.RecordRoute(context.Background(), &slicePointStream{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := domain.RouteSummary{}
	if *summary != want {
		t.Errorf("empty route summary = %+v, want all zeros", summary)
	}
}

func TestRouteGuideService_RecordRoute_SinglePoint(t *testing.T) {
	svc := usecases.NewRouteGuideService(fixtureRepo(), memory.NewNoteRegistry(), nil, nil)

	stream := &slicePointStream{points: []*domain.Point{&knownPoint}}
	summary, err := svc.RecordRoute(context.Background(), stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.PointCount != 1 {
		t.Errorf("point count = %d, want 1", summary.PointCount)
	}
	if summary.FeatureCount != 1 {
		t.Errorf("feature count = %d, want 1", summary.FeatureCount)
	}
	if summary.Distance != 0 {
		t.Errorf("single-point distance = %d, want 0", summary.Distance)
	}
}

func TestRouteGuideService_RecordRoute_AccumulatesDistance(t *testing.T) {
	svc := usecases.NewRouteGuideService(fixtureRepo(), memory.NewNoteRegistry(), nil, nil)

	p2 := domain.Point{Latitude: 413628156, Longitude: -749015468}
	p3 := domain.Point{Latitude: 419999544, Longitude: -740371136}
	stream := &slicePointStream{points: []*domain.Point{&knownPoint, &p2, &p3}}

	summary, err := svc.RecordRoute(context.Background(), stream)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if summary.PointCount != 3 {
		t.Errorf("point count = %d, want 3", summary.PointCount)
	}
	if summary.FeatureCount != 1 {
		t.Errorf("feature count = %d, want 1 (only the first point matches)", summary.FeatureCount)
	}

	// Distance rounds half away from zero (math.Round) after summing the legs.
	legs := geospatial.Haversine(knownPoint.LatDegrees(), knownPoint.LonDegrees(), p2.LatDegrees(), p2.LonDegrees()) +
		geospatial.Haversine(p2.LatDegrees(), p2.LonDegrees(), p3.LatDegrees(), p3.LonDegrees())
	want := int32(math.Round(legs))
	if summary.Distance != want {
		t.Errorf("distance = %d, want %d", summary.Distance, want)
	}
}

func TestRouteGuideService_RecordRoute_CancelledDiscardsPartial(t *testing.T) {
	svc := usecases.NewRouteGuideService(fixtureRepo(), memory.NewNoteRegistry(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	p2 := domain.Point{Latitude: 413628156, Longitude: -749015468}
	stream := &slicePointStream{
		points: []*domain.Point{&knownPoint, &p2},
		onRecv: func(i int) {
			if i == 1 {
				cancel()
			}
		},
	}

	summary, err := svc.RecordRoute(ctx, stream)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if summary != nil {
		t.Errorf("cancelled call must discard the partial summary, got %+v", summary)
	}
}

// --- RouteChat ---

func TestRouteGuideService_RouteChat_ReplayThenAppend(t *testing.T) {
	svc := usecases.NewRouteGuideService(fixtureRepo(), memory.NewNoteRegistry(), nil, nil)

	loc := domain.Point{Latitude: 409146138, Longitude: -746188906}
	n1 := &domain.RouteNote{Location: loc, Message: "first"}
	n2 := &domain.RouteNote{Location: loc, Message: "second"}
	n3 := &domain.RouteNote{Location: loc, Message: "third"}

	stream := &sliceNoteStream{in: []*domain.RouteNote{n1, n2, n3}}
	if err := svc.RouteChat(context.Background(), stream); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Replay sets: {} before n1, {n1} before n2, {n1,n2} before n3.
	want := []string{"first", "first", "second"}
	if len(stream.sent) != len(want) {
		t.Fatalf("expected %d replayed notes, got %d", len(want), len(stream.sent))
	}
	for i, w := range want {
		if stream.sent[i].Message != w {
			t.Errorf("replay[%d] = %q, want %q", i, stream.sent[i].Message, w)
		}
	}
}

func TestRouteGuideService_RouteChat_DistinctLocations(t *testing.T) {
	svc := usecases.NewRouteGuideService(fixtureRepo(), memory.NewNoteRegistry(), nil, nil)

	locA := domain.Point{Latitude: 1, Longitude: 1}
	locB := domain.Point{Latitude: 2, Longitude: 2}
	stream := &sliceNoteStream{in: []*domain.RouteNote{
		{Location: locA, Message: "a1"},
		{Location: locB, Message: "b1"},
		{Location: locA, Message: "a2"},
	}}
	if err := svc.RouteChat(context.Background(), stream); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only a1 is replayed (before a2); b1 sees an empty log at its location.
	if len(stream.sent) != 1 || stream.sent[0].Message != "a1" {
		t.Errorf("unexpected replay: %+v", stream.sent)
	}
}

func TestRouteGuideService_RouteChat_SharedAcrossCalls(t *testing.T) {
	registry := memory.NewNoteRegistry()
	svc := usecases.NewRouteGuideService(fixtureRepo(), registry, nil, nil)

	loc := domain.Point{Latitude: 3, Longitude: 3}

	first := &sliceNoteStream{in: []*domain.RouteNote{{Location: loc, Message: "from call one"}}}
	if err := svc.RouteChat(context.Background(), first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := &sliceNoteStream{in: []*domain.RouteNote{{Location: loc, Message: "from call two"}}}
	if err := svc.RouteChat(context.Background(), second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(second.sent) != 1 || second.sent[0].Message != "from call one" {
		t.Errorf("second call must see the first call's note, got %+v", second.sent)
	}
}
