package domain_test

import (
	"testing"

	"github.com/codefromthecrypt/routeguide/internal/core/domain"
)

func TestRectangle_Normalized(t *testing.T) {
	tests := []struct {
		name string
		in   domain.Rectangle
	}{
		{
			name: "already normalized",
			in: domain.Rectangle{
				Lo: domain.Point{Latitude: 400000000, Longitude: -750000000},
				Hi: domain.Point{Latitude: 420000000, Longitude: -730000000},
			},
		},
		{
			name: "swapped corners",
			in: domain.Rectangle{
				Lo: domain.Point{Latitude: 420000000, Longitude: -730000000},
				Hi: domain.Point{Latitude: 400000000, Longitude: -750000000},
			},
		},
		{
			name: "mixed corners",
			in: domain.Rectangle{
				Lo: domain.Point{Latitude: 420000000, Longitude: -750000000},
				Hi: domain.Point{Latitude: 400000000, Longitude: -730000000},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := tt.in.Normalized()
			if n.Lo.Latitude > n.Hi.Latitude {
				t.Errorf("lo.lat %d > hi.lat %d", n.Lo.Latitude, n.Hi.Latitude)
			}
			if n.Lo.Longitude > n.Hi.Longitude {
				t.Errorf("lo.lon %d > hi.lon %d", n.Lo.Longitude, n.Hi.Longitude)
			}
			// Same region: the corner coordinate sets must be unchanged.
			wantLats := map[int32]bool{tt.in.Lo.Latitude: true, tt.in.Hi.Latitude: true}
			if !wantLats[n.Lo.Latitude] || !wantLats[n.Hi.Latitude] {
				t.Errorf("normalization changed latitude bounds: %+v -> %+v", tt.in, n)
			}
			wantLons := map[int32]bool{tt.in.Lo.Longitude: true, tt.in.Hi.Longitude: true}
			if !wantLons[n.Lo.Longitude] || !wantLons[n.Hi.Longitude] {
				t.Errorf("normalization changed longitude bounds: %+v -> %+v", tt.in, n)
			}
		})
	}
}

func TestRectangle_Contains_InclusiveEdges(t *testing.T) {
	rect := domain.Rectangle{
		Lo: domain.Point{Latitude: 400000000, Longitude: -750000000},
		Hi: domain.Point{Latitude: 420000000, Longitude: -730000000},
	}

	tests := []struct {
		name string
		p    domain.Point
		want bool
	}{
		{"interior", domain.Point{Latitude: 410000000, Longitude: -740000000}, true},
		{"lo corner", rect.Lo, true},
		{"hi corner", rect.Hi, true},
		{"on south edge", domain.Point{Latitude: 400000000, Longitude: -740000000}, true},
		{"on east edge", domain.Point{Latitude: 410000000, Longitude: -730000000}, true},
		{"just below", domain.Point{Latitude: 399999999, Longitude: -740000000}, false},
		{"just east", domain.Point{Latitude: 410000000, Longitude: -729999999}, false},
		{"far away", domain.Point{Latitude: 0, Longitude: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rect.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%+v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestRectangle_Contains_EmptyRectangle(t *testing.T) {
	p := domain.Point{Latitude: 407838351, Longitude: -746143763}
	rect := domain.Rectangle{Lo: p, Hi: p}

	if !rect.Contains(p) {
		t.Error("empty rectangle must contain its own point")
	}
	if rect.Contains(domain.Point{Latitude: p.Latitude + 1, Longitude: p.Longitude}) {
		t.Error("empty rectangle must not contain any other point")
	}
}

func TestPoint_Degrees(t *testing.T) {
	p := domain.Point{Latitude: 407838351, Longitude: -746143763}
	if got := p.LatDegrees(); got != 40.7838351 {
		t.Errorf("LatDegrees() = %v, want 40.7838351", got)
	}
	if got := p.LonDegrees(); got != -74.6143763 {
		t.Errorf("LonDegrees() = %v, want -74.6143763", got)
	}
}
