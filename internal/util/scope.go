package util

import "errors"

// Scope collects cleanup callbacks for a resource acquisition and unwinds
// them in reverse order on Close. Readers and writers use it so descriptors
// are released on every exit path.
//
// NOTE: Scope is **not** thread-safe; keep it confined to one goroutine.
type Scope struct {
	closeFns []func() error
	closed   bool
}

// AddClose pushes a cleanup callback onto the end of the stack.
func (s *Scope) AddClose(fn func() error) {
	s.closeFns = append(s.closeFns, fn)
}

// Close unwinds all cleanup callbacks in reverse order and joins their errors.
// Safe to call on a nil or already closed Scope, so you can
// `defer s.Close()` unconditionally.
func (s *Scope) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for i := len(s.closeFns) - 1; i >= 0; i-- {
		if err := s.closeFns[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closeFns = nil
	return errors.Join(errs...)
}

// Closed reports whether Close has run.
func (s *Scope) Closed() bool {
	return s.closed
}
