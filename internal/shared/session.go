package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionStore resolves actors from sessions minted by the external auth service.
// It never writes: login, logout and expiry belong to the auth service.
type SessionStore struct {
	client     *redis.Client
	cookieName string
}

type sessionPayload struct {
	UserID string `json:"user_id"`
}

// NewSessionStore constructs a SessionStore.
func NewSessionStore(client *redis.Client, cookieName string) *SessionStore {
	return &SessionStore{client: client, cookieName: cookieName}
}

// CookieName returns the cookie carrying the session id.
func (s *SessionStore) CookieName() string {
	return s.cookieName
}

// Resolve returns the actor bound to the request's session. It returns
// ErrNotAuthenticated when no usable session exists.
func (s *SessionStore) Resolve(ctx context.Context, r *http.Request) (uuid.UUID, error) {
	if s == nil || s.client == nil {
		return uuid.Nil, ErrNotAuthenticated
	}
	cookie, err := r.Cookie(s.cookieName)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return uuid.Nil, ErrNotAuthenticated
		}
		return uuid.Nil, err
	}
	sessionID := strings.TrimSpace(cookie.Value)
	if sessionID == "" {
		return uuid.Nil, ErrNotAuthenticated
	}

	raw, err := s.client.Get(ctx, SessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return uuid.Nil, ErrNotAuthenticated
		}
		return uuid.Nil, err
	}

	var stored sessionPayload
	if err := json.Unmarshal(raw, &stored); err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(strings.TrimSpace(stored.UserID))
	if err != nil || id == uuid.Nil {
		return uuid.Nil, ErrNotAuthenticated
	}
	return id, nil
}

// SessionKey is the Redis key holding a session payload.
func SessionKey(id string) string {
	return "session:" + id
}
