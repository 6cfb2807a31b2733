package testfixtures

import (
	"fmt"
	"sync"
)

// Entity names an identifier sequence. Generated IDs look like "attendance-3".
type Entity string

const (
	EntityProfile      Entity = "profile"
	EntitySession      Entity = "session"
	EntityLocation     Entity = "location"
	EntitySchedule     Entity = "schedule"
	EntityAttendance   Entity = "attendance"
	EntityChecklist    Entity = "checklist"
	EntityNotification Entity = "notification"
)

// IDGenerator hands out deterministic identifiers with one counter per entity,
// so a test creating a location and then a check-in sees location-1 and attendance-1.
type IDGenerator struct {
	mu       sync.Mutex
	counters map[Entity]uint64
}

func NewIDGenerator() *IDGenerator {
	return &IDGenerator{counters: make(map[Entity]uint64)}
}

// Next returns the next identifier for entity.
func (g *IDGenerator) Next(entity Entity) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.counters == nil {
		g.counters = make(map[Entity]uint64)
	}
	g.counters[entity]++
	return fmt.Sprintf("%s-%d", entity, g.counters[entity])
}

// For binds the generator to one entity for injection into a service.
func (g *IDGenerator) For(entity Entity) func() string {
	if g == nil {
		return func() string { return "" }
	}
	return func() string { return g.Next(entity) }
}

// Issued reports how many identifiers entity has received.
func (g *IDGenerator) Issued(entity Entity) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counters[entity]
}

// Reset restarts every sequence at 1.
func (g *IDGenerator) Reset() {
	g.mu.Lock()
	g.counters = make(map[Entity]uint64)
	g.mu.Unlock()
}
