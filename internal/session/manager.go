// Package session keeps one independent workout store per planning session.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/rpplanner/internal/plan"
	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("session not found")
	ErrTooManySessions = errors.New("too many sessions")
)

// Options tune session lifetime. Zero values fall back to defaults.
type Options struct {
	IdleTimeout   time.Duration
	SweepInterval time.Duration
	MaxSessions   int
	// KeepIdle disables expiry: sessions live until deleted or the process
	// exits. Used when one local user owns the process.
	KeepIdle bool
}

const (
	defaultIdleTimeout   = 2 * time.Hour
	defaultSweepInterval = time.Minute
	defaultMaxSessions   = 1000
)

type entry struct {
	mu       sync.Mutex // serializes edits to store
	store    *plan.Store
	lastSeen time.Time
}

// Manager owns the per-session stores. Stores are never shared between
// sessions and are lost when a session is deleted or expires.
type Manager struct {
	ref  plan.Reference
	opts Options
	log  *slog.Logger
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewManager creates a Manager whose new sessions start from plan.NewSessionStore(ref).
func NewManager(ref plan.Reference, opts Options, log *slog.Logger) *Manager {
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = defaultIdleTimeout
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = defaultSweepInterval
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = defaultMaxSessions
	}
	return &Manager{
		ref:      ref,
		opts:     opts,
		log:      log,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Create starts a new session and returns its id.
func (m *Manager) Create() (string, error) {
	id := uuid.NewString()
	if err := m.add(id); err != nil {
		return "", err
	}
	m.log.Info("session created", "session", id)
	return id, nil
}

// Ensure creates the session id if it does not exist yet.
func (m *Manager) Ensure(id string) error {
	if err := m.add(id); err != nil && !errors.Is(err, errExists) {
		return err
	}
	return nil
}

var errExists = errors.New("session exists")

func (m *Manager) add(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; ok {
		return errExists
	}
	if len(m.sessions) >= m.opts.MaxSessions {
		return fmt.Errorf("%w: limit %d", ErrTooManySessions, m.opts.MaxSessions)
	}
	m.sessions[id] = &entry{store: plan.NewSessionStore(m.ref), lastSeen: m.now()}
	return nil
}

// Delete ends a session and discards its workouts.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.sessions, id)
	m.log.Info("session deleted", "session", id)
	return nil
}

// Do runs fn with exclusive access to the session's store. Edits within one
// session are applied one at a time, in arrival order of the lock.
func (m *Manager) Do(id string, fn func(*plan.Store) error) error {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok {
		e.lastSeen = m.now()
	}
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.store)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep drops sessions idle longer than the idle timeout and returns how many.
func (m *Manager) Sweep() int {
	if m.opts.KeepIdle {
		return 0
	}
	cutoff := m.now().Add(-m.opts.IdleTimeout)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps idle sessions until ctx is cancelled. With KeepIdle it
// returns at once.
func (m *Manager) Run(ctx context.Context) {
	if m.opts.KeepIdle {
		return
	}
	ticker := time.NewTicker(m.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.log.Info("expired idle sessions", "count", n, "live", m.Len())
			}
		}
	}
}
