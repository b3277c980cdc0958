// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package access

import (
	"context"
	"sync"
)

type sessionContextKey struct{}

// Session holds the principal of one caller and memoises its resolution.
// Begin starts it on authentication, End tears it down on sign-out.
type Session struct {
	resolver ResolverInterface

	mu          sync.Mutex
	principalID string
	resolution  *Resolution
}

// Begin sets the session principal, a different principal drops the memoised resolution.
func (s *Session) Begin(principalID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.principalID != principalID {
		s.resolution = nil
	}
	s.principalID = principalID
}

func (s *Session) End() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.principalID = ""
	s.resolution = nil
}

func (s *Session) PrincipalID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.principalID
}

// Refresh forces the next Resolution call to go back to the resolver.
func (s *Session) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resolution = nil
}

// Resolution resolves the session principal once, later calls return the same result.
// An ended session resolves to no profile and no roles.
func (s *Session) Resolution(ctx context.Context) (*Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.resolution != nil {
		return s.resolution, nil
	}

	res, err := s.resolver.Resolve(ctx, s.principalID)
	if err != nil {
		return nil, err
	}

	s.resolution = res
	return res, nil
}

func NewSession(resolver ResolverInterface) *Session {
	return &Session{resolver: resolver}
}

// WithSession returns a copy of ctx carrying the session.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, s)
}

// GetSession retrieves the session from the context.
func GetSession(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionContextKey{}).(*Session)
	return s, ok && s != nil
}
