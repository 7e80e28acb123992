package ports

import (
	"context"

	"github.com/codefromthecrypt/routeguide/internal/core/domain"
)

// The stream contracts below are what the transport adapter hands to the
// core for streaming calls. Recv returns io.EOF once the client has signalled
// end-of-stream; any other error means the call is broken off. The core never
// sees wire framing or encoding.

// FeatureStream is the outbound side of a server-streaming call.
type FeatureStream interface {
	Send(ctx context.Context, f *domain.Feature) error
}

// PointStream is the inbound side of a client-streaming call.
type PointStream interface {
	Recv(ctx context.Context) (*domain.Point, error)
}

// NoteStream is both sides of a bidirectional-streaming call.
type NoteStream interface {
	Recv(ctx context.Context) (*domain.RouteNote, error)
	Send(ctx context.Context, note *domain.RouteNote) error
}
