package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/storage"
)

// Session holds the process-wide identity. It never navigates; callers react
// to IsAuthenticated or to Subscribe notifications.
type Session struct {
	mu        sync.RWMutex
	store     storage.SlotStore
	now       func() time.Time
	token     string
	claims    *domain.IdentityClaims
	listeners map[int]func(authenticated bool)
	nextID    int
}

func NewSession(store storage.SlotStore) *Session {
	return &Session{
		store:     store,
		now:       time.Now,
		listeners: make(map[int]func(bool)),
	}
}

// WithClock overrides the time source, for tests.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

// Restore reads the stored token at startup. An unusable token is removed.
func (s *Session) Restore(ctx context.Context) error {
	raw, err := s.store.Get(ctx, storage.TokenSlot)
	if errors.Is(err, storage.ErrSlotNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}

	claims, decodeErr := Decode(string(raw), s.now())
	if decodeErr != nil {
		slog.WarnContext(ctx, "stored token rejected", "error", decodeErr)
		return s.reset(ctx)
	}
	s.set(string(raw), claims)
	return nil
}

// Login stores token and adopts its claims. On decode failure any stored token
// is removed, the session becomes unauthenticated and the decode error is returned.
func (s *Session) Login(ctx context.Context, token string) error {
	if token == "" {
		if err := s.reset(ctx); err != nil {
			return err
		}
		return ErrMalformedToken
	}

	claims, decodeErr := Decode(token, s.now())
	if decodeErr != nil {
		slog.WarnContext(ctx, "invalid token provided during login", "error", decodeErr)
		if err := s.reset(ctx); err != nil {
			return err
		}
		return decodeErr
	}

	if claims.SubjectID == "" || claims.Role == "" {
		slog.WarnContext(ctx, "token accepted with missing claims",
			"has_subject", claims.SubjectID != "", "has_role", claims.Role != "")
	}

	if err := s.store.Set(ctx, storage.TokenSlot, []byte(token)); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	s.set(token, claims)
	return nil
}

// Logout clears the stored token and identity. Calling it twice is harmless.
func (s *Session) Logout(ctx context.Context) error {
	return s.reset(ctx)
}

// IsAuthenticated is false once the claims expire, even while the token is still stored.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.claims != nil && !s.claims.ExpiredAt(s.now())
}

func (s *Session) Claims() (domain.IdentityClaims, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.claims == nil || s.claims.ExpiredAt(s.now()) {
		return domain.IdentityClaims{}, false
	}
	return *s.claims, true
}

// Token returns the raw bearer token, or "" when the session is not authenticated.
func (s *Session) Token() string {
	if !s.IsAuthenticated() {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe registers fn for authentication changes and returns its unsubscribe func.
func (s *Session) Subscribe(fn func(authenticated bool)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Session) set(token string, claims domain.IdentityClaims) {
	s.mu.Lock()
	s.token = token
	s.claims = &claims
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(true)
	}
}

func (s *Session) reset(ctx context.Context) error {
	err := s.store.Delete(ctx, storage.TokenSlot)

	s.mu.Lock()
	was := s.claims != nil
	s.token = ""
	s.claims = nil
	listeners := s.snapshotListeners()
	s.mu.Unlock()

	if was {
		for _, fn := range listeners {
			fn(false)
		}
	}
	if err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}
	return nil
}

func (s *Session) snapshotListeners() []func(bool) {
	out := make([]func(bool), 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}
