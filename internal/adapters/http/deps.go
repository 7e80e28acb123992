package http

import (
	"github.com/nats-io/nats.go"

	"github.com/codefromthecrypt/routeguide/internal/adapters/postgres"
	"github.com/codefromthecrypt/routeguide/internal/adapters/valkey"
	"github.com/codefromthecrypt/routeguide/internal/core/ports"
	"github.com/codefromthecrypt/routeguide/internal/core/usecases"
)

// Dependencies holds everything the transport handlers need.
type Dependencies struct {
	RouteGuide *usecases.RouteGuideService
	Features   ports.FeatureRepository
	Notes      ports.NoteRegistry
	NATS       *nats.Conn
	DB         *postgres.DB
	Cache      *valkey.Cache
}
