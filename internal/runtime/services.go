// Package runtime tracks the long-lived components of a running process.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Pinger is a component that can report its health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f(ctx).
func (f PingFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

type closer struct {
	name string
	fn   func() error
}

// Services holds the readiness checks and shutdown hooks of the process.
// Components register as they are opened; Close releases them in reverse order.
// Thread-safe for concurrent access.
type Services struct {
	mu      sync.Mutex
	checks  map[string]Pinger
	closers []closer
	closed  bool
	logger  *slog.Logger
}

// NewServices creates an empty registry.
func NewServices(logger *slog.Logger) *Services {
	if logger == nil {
		logger = slog.Default()
	}
	return &Services{
		checks: make(map[string]Pinger),
		logger: logger,
	}
}

// AddCheck registers a readiness check. A later check with the same name replaces it.
func (s *Services) AddCheck(name string, p Pinger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks[name] = p
}

// OnClose registers fn to run on Close.
func (s *Services) OnClose(name string, fn func() error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closers = append(s.closers, closer{name: name, fn: fn})
}

// Checks returns a copy of the registered readiness checks.
func (s *Services) Checks() map[string]Pinger {
	s.mu.Lock()
	defer s.mu.Unlock()

	checks := make(map[string]Pinger, len(s.checks))
	for name, p := range s.checks {
		checks[name] = p
	}
	return checks
}

// Ping runs every check and returns the failures keyed by name.
func (s *Services) Ping(ctx context.Context) map[string]error {
	failures := make(map[string]error)
	for name, p := range s.Checks() {
		if err := p.Ping(ctx); err != nil {
			failures[name] = err
		}
	}
	return failures
}

// Close runs the shutdown hooks, last registered first.
// Every hook runs even if an earlier one fails. Close is idempotent.
func (s *Services) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	closers := s.closers
	s.closers = nil
	s.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		c := closers[i]
		if err := c.fn(); err != nil {
			s.logger.Warn("failed to close component", "component", c.name, "error", err)
			errs = append(errs, fmt.Errorf("close %s: %w", c.name, err))
			continue
		}
		s.logger.Debug("closed component", "component", c.name)
	}
	return errors.Join(errs...)
}
