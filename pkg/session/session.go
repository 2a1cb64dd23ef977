package session

import (
	"context"
	"sync"

	"github.com/rentloop/rentloop/pkg/auth"
)

// State is the lifecycle state of a client session
type State string

const (
	// StateAnonymous has no token and no identity
	StateAnonymous State = "anonymous"
	// StateAuthenticating has a token and an identity refresh in flight
	StateAuthenticating State = "authenticating"
	// StateAuthenticated has a token and a resolved identity
	StateAuthenticated State = "authenticated"
	// StateError has a token whose identity refresh failed
	StateError State = "error"
)

// IdentityFetcher resolves the identity behind a token, typically by
// calling the user-data endpoint with it.
type IdentityFetcher interface {
	FetchIdentity(ctx context.Context, token string) (*auth.User, error)
}

// Session synchronizes the in-memory authentication state with the durable
// token store. A token change triggers an identity refresh; the refresh
// result is committed only if the token that started it is still current,
// so overlapping logins resolve last-write-wins.
type Session struct {
	mu      sync.RWMutex
	token   string
	state   State
	user    *auth.User
	store   TokenStore
	fetcher IdentityFetcher
}

// New creates an anonymous session
func New(store TokenStore, fetcher IdentityFetcher) *Session {
	return &Session{
		state:   StateAnonymous,
		store:   store,
		fetcher: fetcher,
	}
}

// SetToken installs a freshly issued token: persists it, makes it visible
// to request signing, then refreshes the identity behind it. A refresh
// failure leaves the session in the error state; the durable token is kept
// so a restart retries the same token.
func (s *Session) SetToken(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.state = StateAuthenticating
	s.user = nil
	s.mu.Unlock()

	if err := s.store.Save(token); err != nil {
		s.fail(token)
		return err
	}
	return s.refreshIdentity(ctx, token)
}

// Restore loads the durable token, if any, and refreshes the identity
// behind it. An empty store leaves the session anonymous.
func (s *Session) Restore(ctx context.Context) error {
	token, err := s.store.Load()
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.state = StateAuthenticating
	s.user = nil
	s.mu.Unlock()

	return s.refreshIdentity(ctx, token)
}

// Logout drops the session back to anonymous from any state and clears the
// durable token.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.token = ""
	s.state = StateAnonymous
	s.user = nil
	s.mu.Unlock()

	return s.store.Clear()
}

// refreshIdentity fetches the identity behind started and commits it only
// if started is still the session's current token. A refresh raced by a
// newer SetToken or Logout is discarded.
func (s *Session) refreshIdentity(ctx context.Context, started string) error {
	user, err := s.fetcher.FetchIdentity(ctx, started)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token != started {
		return nil
	}
	if err != nil {
		s.state = StateError
		return err
	}
	s.user = user
	s.state = StateAuthenticated
	return nil
}

// fail marks the session errored if started is still the current token
func (s *Session) fail(started string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == started {
		s.state = StateError
	}
}

// Token returns the current token, empty when anonymous
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// State returns the current session state
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the resolved identity, nil unless authenticated
func (s *Session) User() *auth.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsOwner reports whether the session identity carries the owner capability
func (s *Session) IsOwner() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil && s.user.Capabilities().IsOwner
}
