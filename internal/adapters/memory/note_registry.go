package memory

import (
	"context"
	"sync"

	"github.com/codefromthecrypt/routeguide/internal/core/domain"
)

// NoteRegistry implements ports.NoteRegistry with a process-lifetime map
// guarded by a single mutex. Contention is expected to be low, so one global
// lock keeps the read-then-append unit trivially atomic: no note can be lost
// from, or duplicated in, a concurrent caller's replay.
type NoteRegistry struct {
	mu   sync.Mutex
	logs map[domain.Point][]*domain.RouteNote
}

// NewNoteRegistry creates an empty registry.
func NewNoteRegistry() *NoteRegistry {
	return &NoteRegistry{logs: make(map[domain.Point][]*domain.RouteNote)}
}

// Append stores note at the end of its location's log and returns a copy of
// the notes that preceded it, in stored order. The returned slice never
// contains note itself and never aliases the live log.
func (r *NoteRegistry) Append(ctx context.Context, note *domain.RouteNote) ([]*domain.RouteNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.logs[note.Location]
	prior := make([]*domain.RouteNote, len(log))
	copy(prior, log)

	r.logs[note.Location] = append(log, note)
	return prior, nil
}

// NotesAt returns a copy of the current log at p in stored order.
func (r *NoteRegistry) NotesAt(ctx context.Context, p domain.Point) ([]*domain.RouteNote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	log := r.logs[p]
	out := make([]*domain.RouteNote, len(log))
	copy(out, log)
	return out, nil
}
