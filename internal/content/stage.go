package content

import (
	"context"
	"fmt"
	"sync"
)

// Stage is the live application surface new objects are spawned into. The
// engine's real scene machinery sits behind this interface; the bootstrap
// only needs decode-and-spawn.
type Stage interface {
	Spawn(ctx context.Context, tpl *Template, at Placement) (string, error)
}

// MemoryStage is the default in-process Stage. It assigns sequential instance
// IDs and keeps every spawned instance for inspection.
type MemoryStage struct {
	mu        sync.Mutex
	next      int
	instances []Instance
}

// Instance is one spawned object on a MemoryStage.
type Instance struct {
	ID       string
	Template string
	At       Placement
}

// NewMemoryStage creates an empty MemoryStage.
func NewMemoryStage() *MemoryStage {
	return &MemoryStage{}
}

// Spawn places one instance of the template on the stage.
func (s *MemoryStage) Spawn(ctx context.Context, tpl *Template, at Placement) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	id := fmt.Sprintf("%s#%d", tpl.Name, s.next)
	s.instances = append(s.instances, Instance{ID: id, Template: tpl.Name, At: at})
	return id, nil
}

// Instances returns a snapshot of everything spawned so far.
func (s *MemoryStage) Instances() []Instance {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Instance, len(s.instances))
	copy(out, s.instances)
	return out
}
