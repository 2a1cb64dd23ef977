package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rentloop/rentloop/pkg/auth"
)

// fakeFetcher maps tokens to identities; unknown tokens fail. Tokens in
// blocked announce themselves on started and wait for gate, so a test can
// hold a refresh in flight.
type fakeFetcher struct {
	mu      sync.Mutex
	users   map[string]*auth.User
	blocked map[string]bool
	started chan string
	gate    chan struct{}
}

func (f *fakeFetcher) FetchIdentity(_ context.Context, token string) (*auth.User, error) {
	f.mu.Lock()
	hold := f.blocked[token]
	user, ok := f.users[token]
	f.mu.Unlock()

	if hold {
		f.started <- token
		<-f.gate
	}
	if !ok {
		return nil, errors.New("not authorized")
	}
	return user, nil
}

func ownerUser(id string) *auth.User {
	return &auth.User{ID: id, Name: "Olive", Email: id + "@example.com", Role: auth.RoleOwner}
}

func renterUser(id string) *auth.User {
	return &auth.User{ID: id, Name: "Rei", Email: id + "@example.com", Role: auth.RoleRenter}
}

func TestSession_SetToken(t *testing.T) {
	store := NewMemoryTokenStore()
	fetcher := &fakeFetcher{users: map[string]*auth.User{"tok-1": renterUser("u1")}}
	s := New(store, fetcher)

	require.Equal(t, StateAnonymous, s.State())

	require.NoError(t, s.SetToken(context.Background(), "tok-1"))

	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, "tok-1", s.Token())
	require.NotNil(t, s.User())
	assert.Equal(t, "u1", s.User().ID)
	assert.False(t, s.IsOwner())

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", saved)
}

func TestSession_RefreshFailureKeepsDurableToken(t *testing.T) {
	store := NewMemoryTokenStore()
	fetcher := &fakeFetcher{users: map[string]*auth.User{}}
	s := New(store, fetcher)

	err := s.SetToken(context.Background(), "tok-bad")
	require.Error(t, err)

	assert.Equal(t, StateError, s.State())
	assert.Nil(t, s.User())

	// The token survives both in memory and on disk, so a restart retries
	// the same credential instead of silently dropping it.
	assert.Equal(t, "tok-bad", s.Token())
	saved, loadErr := store.Load()
	require.NoError(t, loadErr)
	assert.Equal(t, "tok-bad", saved)
}

func TestSession_StaleRefreshDiscarded(t *testing.T) {
	store := NewMemoryTokenStore()
	fetcher := &fakeFetcher{
		users: map[string]*auth.User{
			"tok-old": renterUser("old"),
			"tok-new": ownerUser("new"),
		},
		blocked: map[string]bool{"tok-old": true},
		started: make(chan string),
		gate:    make(chan struct{}),
	}
	s := New(store, fetcher)

	done := make(chan error, 1)
	go func() { done <- s.SetToken(context.Background(), "tok-old") }()
	<-fetcher.started

	// A second login lands while the first refresh is still in flight
	require.NoError(t, s.SetToken(context.Background(), "tok-new"))
	assert.Equal(t, "new", s.User().ID)

	// Releasing the stale refresh must not overwrite the newer identity
	close(fetcher.gate)
	require.NoError(t, <-done)

	assert.Equal(t, StateAuthenticated, s.State())
	require.NotNil(t, s.User())
	assert.Equal(t, "new", s.User().ID)
	assert.True(t, s.IsOwner())
}

func TestSession_StaleFailureDoesNotErrorNewSession(t *testing.T) {
	store := NewMemoryTokenStore()
	fetcher := &fakeFetcher{
		users:   map[string]*auth.User{},
		blocked: map[string]bool{"tok-dead": true},
		started: make(chan string),
		gate:    make(chan struct{}),
	}
	s := New(store, fetcher)

	done := make(chan error, 1)
	go func() { done <- s.SetToken(context.Background(), "tok-dead") }()
	<-fetcher.started

	require.NoError(t, s.Logout())
	close(fetcher.gate)

	// The failed refresh belonged to a token that was logged out; it must
	// not flip the anonymous session into the error state.
	assert.NoError(t, <-done)
	assert.Equal(t, StateAnonymous, s.State())
}

func TestSession_Logout(t *testing.T) {
	store := NewMemoryTokenStore()
	fetcher := &fakeFetcher{users: map[string]*auth.User{"tok-1": ownerUser("u1")}}
	s := New(store, fetcher)

	require.NoError(t, s.SetToken(context.Background(), "tok-1"))
	require.NoError(t, s.Logout())

	assert.Equal(t, StateAnonymous, s.State())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.User())
	assert.False(t, s.IsOwner())

	saved, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, saved)
}

func TestSession_Restore(t *testing.T) {
	store := NewMemoryTokenStore()
	require.NoError(t, store.Save("tok-1"))
	fetcher := &fakeFetcher{users: map[string]*auth.User{"tok-1": renterUser("u1")}}

	s := New(store, fetcher)
	require.NoError(t, s.Restore(context.Background()))

	assert.Equal(t, StateAuthenticated, s.State())
	assert.Equal(t, "tok-1", s.Token())
	require.NotNil(t, s.User())
	assert.Equal(t, "u1", s.User().ID)
}

func TestSession_RestoreEmptyStoreStaysAnonymous(t *testing.T) {
	s := New(NewMemoryTokenStore(), &fakeFetcher{})
	require.NoError(t, s.Restore(context.Background()))
	assert.Equal(t, StateAnonymous, s.State())
	assert.Empty(t, s.Token())
}

func TestFileTokenStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "token")
	store := NewFileTokenStore(path)

	// Missing file is just an empty store
	token, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, store.Save("tok-1"))
	token, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	require.NoError(t, store.Clear())
	token, err = store.Load()
	require.NoError(t, err)
	assert.Empty(t, token)

	// Clearing twice is fine
	require.NoError(t, store.Clear())
}
