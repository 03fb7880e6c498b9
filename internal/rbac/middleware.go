package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/railyard/railyard/internal/platform/httpx"
	"github.com/railyard/railyard/internal/shared"
)

// SessionResolver maps a request to the actor id of its session.
type SessionResolver interface {
	Resolve(ctx context.Context, r *http.Request) (uuid.UUID, error)
}

// Middleware attaches and enforces actor identity for HTTP handlers.
type Middleware struct {
	Sessions SessionResolver
	Logger   *slog.Logger
}

// Identify stores the session actor in the request context when one resolves.
// Requests without a session continue anonymously.
func (m Middleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.Sessions == nil {
			next.ServeHTTP(w, r)
			return
		}
		actorID, err := m.Sessions.Resolve(r.Context(), r)
		if err != nil {
			if !errors.Is(err, shared.ErrNotAuthenticated) && m.Logger != nil {
				m.Logger.Error("rbac resolve session", slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actorID)))
	})
}

// RequireActor rejects anonymous requests with 401.
func (m Middleware) RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := shared.ActorFromContext(r.Context()); !ok {
			httpx.Error(w, shared.ErrNotAuthenticated)
			return
		}
		next.ServeHTTP(w, r)
	})
}
