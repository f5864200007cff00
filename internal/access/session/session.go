// Package session holds the current user on behalf of the authentication boundary.
//
// A Session is an explicitly owned, versioned context object: it is passed by reference
// to whoever needs the user, it is replaced wholesale on login, token refresh or role
// change, and it notifies subscribers on every replacement.
package session

import (
	"sync"

	accessDomain "github.com/allisson/inspecta/internal/access/domain"
)

// Status describes whether the user has been resolved yet.
type Status string

const (
	// StatusUnresolved means authentication is still loading.
	StatusUnresolved Status = "unresolved"

	// StatusAuthenticated means a user is present.
	StatusAuthenticated Status = "authenticated"

	// StatusAnonymous means authentication resolved without a user.
	StatusAnonymous Status = "anonymous"
)

// Outcome is the three-valued result used by guards while the user may still be loading.
type Outcome string

const (
	// OutcomePending is returned while the session is unresolved; callers render a
	// neutral loading affordance rather than a denial.
	OutcomePending Outcome = "pending"

	// OutcomeGranted means the requirement is satisfied.
	OutcomeGranted Outcome = "granted"

	// OutcomeDenied means the requirement is not satisfied.
	OutcomeDenied Outcome = "denied"
)

// Change is delivered to subscribers after each replacement.
type Change struct {
	Version  uint64
	Status   Status
	User     *accessDomain.CurrentUser
	Previous *accessDomain.CurrentUser
}

// Session owns the current user.
type Session struct {
	mu          sync.RWMutex
	user        *accessDomain.CurrentUser
	status      Status
	version     uint64
	nextSubID   uint64
	subscribers map[uint64]func(Change)
}

// New returns an unresolved session.
func New() *Session {
	return &Session{
		status:      StatusUnresolved,
		subscribers: make(map[uint64]func(Change)),
	}
}

// NewAuthenticated returns a session already resolved to user.
func NewAuthenticated(user *accessDomain.CurrentUser) *Session {
	s := New()
	s.Set(user)
	return s
}

// Set replaces the current user. A nil user resolves the session as anonymous.
func (s *Session) Set(user *accessDomain.CurrentUser) {
	status := StatusAuthenticated
	if user == nil {
		status = StatusAnonymous
	}
	s.replace(user, status)
}

// Clear logs the user out.
func (s *Session) Clear() {
	s.replace(nil, StatusAnonymous)
}

// Reset returns the session to the unresolved state, e.g. while a token refresh is in flight.
func (s *Session) Reset() {
	s.replace(nil, StatusUnresolved)
}

func (s *Session) replace(user *accessDomain.CurrentUser, status Status) {
	s.mu.Lock()
	previous := s.user
	s.user = user
	s.status = status
	s.version++
	change := Change{Version: s.version, Status: status, User: user, Previous: previous}
	subs := make([]func(Change), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(change)
	}
}

// Current returns the user and whether one is present.
func (s *Session) Current() (*accessDomain.CurrentUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user, s.user != nil
}

// IsAuthenticated reports whether a user is present.
func (s *Session) IsAuthenticated() bool {
	_, ok := s.Current()
	return ok
}

// Status returns the resolution status.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// Version increases on every replacement.
func (s *Session) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Subscribe registers fn for change notifications and returns its unsubscribe function.
// Notifications run synchronously on the goroutine that replaced the user.
func (s *Session) Subscribe(fn func(Change)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
		})
	}
}

// Outcome evaluates req against the current user, reporting pending while unresolved.
func (s *Session) Outcome(req accessDomain.Requirement) Outcome {
	s.mu.RLock()
	user, status := s.user, s.status
	s.mu.RUnlock()

	if status == StatusUnresolved {
		return OutcomePending
	}
	if accessDomain.EvaluateGuard(user, req).Allowed {
		return OutcomeGranted
	}
	return OutcomeDenied
}
