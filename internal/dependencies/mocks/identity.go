package mocks

import (
	"fmt"
	"sync"

	"github.com/mcoot/rajamantri/internal/dependencies/identity"
)

// MockIDGenerator hands out queued IDs, then sequential ones
type MockIDGenerator struct {
	mu      sync.Mutex
	queued  []string
	counter int
}

// Ensure MockIDGenerator implements Generator
var _ identity.Generator = (*MockIDGenerator)(nil)

// NewMockIDGenerator creates a new MockIDGenerator
func NewMockIDGenerator() *MockIDGenerator {
	return &MockIDGenerator{}
}

// NewID returns the next queued ID, or "id-N" once the queue is empty
func (g *MockIDGenerator) NewID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.queued) > 0 {
		id := g.queued[0]
		g.queued = g.queued[1:]
		return id
	}
	g.counter++
	return fmt.Sprintf("id-%d", g.counter)
}

// QueueIDs adds IDs to be returned before sequential ones
func (g *MockIDGenerator) QueueIDs(ids ...string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queued = append(g.queued, ids...)
}
