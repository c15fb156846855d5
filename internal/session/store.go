// Package session holds per-user state for the duration of a browsing or
// chat session. Sessions are keyed by an opaque ID handed to each handler
// explicitly, so concurrent users never share state.
package session

import (
	"errors"
	"sync"
	"time"

	"diet-plan-assistant/internal/nutrition"
)

// DefaultTTL is how long an idle session survives before expiring.
const DefaultTTL = 24 * time.Hour

var (
	// ErrNotFound is returned when no session exists for the given ID.
	ErrNotFound = errors.New("session not found")
	// ErrNoProfile is returned when an operation needs a submitted profile
	// and none has been stored yet.
	ErrNoProfile = errors.New("no profile submitted yet")
	// ErrNoMacros is returned when macro targets are requested before any
	// have been computed.
	ErrNoMacros = errors.New("no macro targets computed yet")
)

// data is the state held for one session.
type data struct {
	profile    nutrition.Profile
	macros     nutrition.Macros
	cuisine    string
	hasProfile bool
	hasMacros  bool
	expiresAt  time.Time
}

// Store is an in-memory session store. All state lives in process memory and
// is destroyed on restart; nothing is persisted.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*data
	ttl      time.Duration
	now      func() time.Time
}

// NewStore creates a Store whose sessions expire after ttl of inactivity.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		sessions: make(map[string]*data),
		ttl:      ttl,
		now:      time.Now,
	}
}

// touch returns the live session for id, creating it when create is set.
// Expired sessions are treated as absent. Callers must hold s.mu.
func (s *Store) touch(id string, create bool) (*data, error) {
	d, ok := s.sessions[id]
	if ok && s.now().After(d.expiresAt) {
		delete(s.sessions, id)
		ok = false
	}
	if !ok {
		if !create {
			return nil, ErrNotFound
		}
		d = &data{}
		s.sessions[id] = d
	}
	d.expiresAt = s.now().Add(s.ttl)
	return d, nil
}

// SetProfile stores a validated profile, replacing any previous one. Stale
// macro targets from an earlier profile are invalidated.
func (s *Store) SetProfile(id string, p nutrition.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, _ := s.touch(id, true)
	d.profile = p
	d.hasProfile = true
	d.hasMacros = false
}

// Profile returns the stored profile, or ErrNoProfile when none was
// submitted.
func (s *Store) Profile(id string) (nutrition.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.touch(id, false)
	if err != nil || !d.hasProfile {
		return nutrition.Profile{}, ErrNoProfile
	}
	return d.profile, nil
}

// SetMacros stores computed macro targets for the session's profile.
func (s *Store) SetMacros(id string, m nutrition.Macros) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.touch(id, false)
	if err != nil || !d.hasProfile {
		return ErrNoProfile
	}
	d.macros = m
	d.hasMacros = true
	return nil
}

// Macros returns the stored macro targets. Requesting them before a profile
// was submitted is an out-of-order call and fails accordingly.
func (s *Store) Macros(id string) (nutrition.Macros, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.touch(id, false)
	if err != nil || !d.hasProfile {
		return nutrition.Macros{}, ErrNoProfile
	}
	if !d.hasMacros {
		return nutrition.Macros{}, ErrNoMacros
	}
	return d.macros, nil
}

// SetCuisine updates the session's cuisine preference.
func (s *Store) SetCuisine(id, cuisine string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.touch(id, false)
	if err != nil || !d.hasProfile {
		return ErrNoProfile
	}
	d.cuisine = cuisine
	return nil
}

// Cuisine returns the session's cuisine preference.
func (s *Store) Cuisine(id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.touch(id, false)
	if err != nil || !d.hasProfile {
		return "", ErrNoProfile
	}
	return d.cuisine, nil
}

// Clear drops all state for the session (the restart action).
func (s *Store) Clear(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// CleanupExpired removes expired sessions and reports how many were dropped.
func (s *Store) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for id, d := range s.sessions {
		if now.After(d.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
