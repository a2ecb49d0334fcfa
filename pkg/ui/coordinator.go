package ui

import (
	"sync"
)

// Coordinator manages exclusive access to the terminal. The spinner renders
// from its own goroutine, so every write to the shared writers goes through
// Lock to keep lines from interleaving.
type Coordinator struct {
	mu sync.Mutex
}

// NewCoordinator creates a new UI coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{}
}

// Lock acquires exclusive access to the terminal. It returns an unlock function
// that MUST be called when the write is complete.
func (c *Coordinator) Lock() func() {
	c.mu.Lock()
	return func() {
		c.mu.Unlock()
	}
}
