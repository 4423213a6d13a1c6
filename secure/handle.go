package secure

import (
	"errors"
	"io"
	"sync"
)

// ErrReleased is returned when a Handle is used after its last reference
// was dropped.
var ErrReleased = errors.New("handle already released")

// Handle shares ownership of a closable resource between several holders.
// The resource is closed exactly once, when the last holder releases it.
type Handle[T io.Closer] struct {
	mu    sync.Mutex
	value T
	refs  int
}

// NewHandle wraps v. The caller holds the first reference.
func NewHandle[T io.Closer](v T) *Handle[T] {
	return &Handle[T]{value: v, refs: 1}
}

// Retain adds a reference. It fails once the handle has been released.
func (h *Handle[T]) Retain() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.refs == 0 {
		return ErrReleased
	}
	h.refs++
	return nil
}

// Release drops one reference and closes the value when it was the last.
// The close error, if any, is returned to that last holder.
func (h *Handle[T]) Release() error {
	h.mu.Lock()
	if h.refs == 0 {
		h.mu.Unlock()
		return ErrReleased
	}
	h.refs--
	last := h.refs == 0
	h.mu.Unlock()

	if last {
		return h.value.Close()
	}
	return nil
}

// Value returns the shared resource. It stays valid only while the caller
// holds a reference.
func (h *Handle[T]) Value() T {
	return h.value
}

// Refs reports the current number of holders.
func (h *Handle[T]) Refs() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.refs
}
