// Package auth tracks the authenticated user session.
package auth

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/cadenzafm/cadenza/internal/infra/api"
)

// Errors
var (
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Authenticator is the server surface the session depends on.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*api.User, error)
	Me(ctx context.Context) (*api.User, error)
	SetToken(token string)
}

// Session holds the authenticated user and fans logout out to the
// registered invalidation hooks (caches that must drop user state).
type Session struct {
	mu    sync.RWMutex
	api   Authenticator
	user  *api.User
	hooks []func()
}

// NewSession creates an unauthenticated session.
func NewSession(a Authenticator) *Session {
	return &Session{api: a}
}

// OnInvalidate registers a hook called on logout. Hooks run in
// registration order with no session lock held.
func (s *Session) OnInvalidate(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Login authenticates and stores the user profile.
func (s *Session) Login(ctx context.Context, email, password string) (*api.User, error) {
	user, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	zlog.Info().Msgf("auth: logged in as %s", user.Username)
	return user, nil
}

// Resume restores a session from a previously issued token by
// fetching the profile it belongs to.
func (s *Session) Resume(ctx context.Context, token string) (*api.User, error) {
	if token == "" {
		return nil, errors.Mark(errors.New("empty token"), ErrNotAuthenticated)
	}
	s.api.SetToken(token)

	user, err := s.api.Me(ctx)
	if err != nil {
		s.api.SetToken("")
		return nil, errors.Wrap(err, "session resume failed")
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

// Logout clears the session and runs the invalidation hooks.
func (s *Session) Logout() {
	s.mu.Lock()
	wasAuthed := s.user != nil
	s.user = nil
	hooks := append([]func(){}, s.hooks...)
	s.mu.Unlock()

	s.api.SetToken("")
	for _, fn := range hooks {
		fn()
	}
	if wasAuthed {
		zlog.Info().Msg("auth: logged out")
	}
}

// User returns the authenticated user, or nil.
func (s *Session) User() *api.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	cp := *s.user
	return &cp
}

// IsAuthenticated reports whether a user is logged in.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Require returns the authenticated user or ErrNotAuthenticated.
func (s *Session) Require() (*api.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil, ErrNotAuthenticated
	}
	cp := *s.user
	return &cp, nil
}
