// Package persistence stores the application state as one full JSON snapshot in a durable slot.
package persistence

import (
	"context"
	"sync"
)

// Slot is a single durable key holding the serialized state
type Slot interface {
	// Read returns the stored payload; found is false when nothing has been written yet
	Read(ctx context.Context) (payload []byte, found bool, err error)
	// Write replaces the stored payload
	Write(ctx context.Context, payload []byte) error
	// Close releases the backend
	Close() error
}

// Pinger is implemented by slots backed by a remote service that can be probed for readiness
type Pinger interface {
	Ping(ctx context.Context) error
}

// MemorySlot keeps the payload in process memory
type MemorySlot struct {
	mu      sync.Mutex
	payload []byte
	found   bool
}

// NewMemorySlot creates an empty in-memory slot
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// Read implements Slot
func (s *MemorySlot) Read(_ context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.found {
		return nil, false, nil
	}
	out := make([]byte, len(s.payload))
	copy(out, s.payload)
	return out, true, nil
}

// Write implements Slot
func (s *MemorySlot) Write(_ context.Context, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payload = append(s.payload[:0:0], payload...)
	s.found = true
	return nil
}

// Close implements Slot
func (s *MemorySlot) Close() error { return nil }
