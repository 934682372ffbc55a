package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/kiwari-pos/storefront/internal/securestore"
	"github.com/kiwari-pos/storefront/internal/storeapi"
)

const (
	tokenKey = "auth_token"
	userKey  = "auth_user"
)

// AuthState is the snapshot handed to subscribers. User is nil when signed out.
type AuthState struct {
	Token string
	User  *storeapi.User
}

// AuthStore holds the session token and the signed-in user, mirrored to a
// securestore.KV. It satisfies storeapi.Credentials.
type AuthStore struct {
	kv  securestore.KV
	now func() time.Time

	mu    sync.RWMutex
	token string
	user  *storeapi.User

	subs observers[AuthState]
}

// NewAuthStore creates an empty store backed by kv. Call Load to restore a
// persisted session.
func NewAuthStore(kv securestore.KV) *AuthStore {
	return &AuthStore{kv: kv, now: time.Now}
}

// Load restores the session from storage. A stored user that cannot be
// decoded clears the whole session.
func (s *AuthStore) Load() error {
	token, err := s.kv.Get(tokenKey)
	if errors.Is(err, securestore.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load token: %w", err)
	}

	var user *storeapi.User
	raw, err := s.kv.Get(userKey)
	switch {
	case err == nil:
		var u storeapi.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return s.Clear()
		}
		user = &u
	case errors.Is(err, securestore.ErrNotFound):
	default:
		return fmt.Errorf("load user: %w", err)
	}

	s.set(token, user)
	return nil
}

// SetSession persists and publishes a new session.
func (s *AuthStore) SetSession(token string, user storeapi.User) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := s.kv.Set(tokenKey, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	if err := s.kv.Set(userKey, string(raw)); err != nil {
		return fmt.Errorf("store user: %w", err)
	}
	s.set(token, &user)
	return nil
}

// UpdateUser replaces the stored user, keeping the token.
func (s *AuthStore) UpdateUser(user storeapi.User) error {
	return s.SetSession(s.Token(), user)
}

// Clear forgets the session in memory and in storage.
func (s *AuthStore) Clear() error {
	err := errors.Join(s.kv.Delete(tokenKey), s.kv.Delete(userKey))
	s.set("", nil)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Token returns the current bearer token, or "".
func (s *AuthStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the signed-in user.
func (s *AuthStore) User() (storeapi.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return storeapi.User{}, false
	}
	return *s.user, true
}

// IsAuthenticated reports whether a token is held and, if it is a JWT with an
// exp claim, whether it is still valid.
func (s *AuthStore) IsAuthenticated() bool {
	token := s.Token()
	if token == "" {
		return false
	}
	return !tokenExpired(token, s.now())
}

// Subscribe registers fn for session changes.
func (s *AuthStore) Subscribe(fn func(AuthState)) (unsubscribe func()) {
	return s.subs.subscribe(fn)
}

func (s *AuthStore) set(token string, user *storeapi.User) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	s.subs.notify(AuthState{Token: token, User: user})
}

// tokenExpired reads exp without verifying the signature; the server remains
// the authority. Opaque tokens are never considered expired here.
func tokenExpired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && !now.Before(claims.ExpiresAt.Time)
}
