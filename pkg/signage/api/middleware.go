package api

import (
	"context"
	"net/http"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
)

type contextKey string

const actorKey contextKey = "actor_id"

// ActorResolver returns middleware that resolves the acting user's identity.
// With a configured token auth (and jwtauth.Verifier mounted upstream) the
// JWT "sub" claim wins; otherwise the X-User-ID header is used. Requests
// without an identity carry uuid.Nil and are left to the capability gate.
func ActorResolver(tokenAuth *jwtauth.JWTAuth) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actorID := uuid.Nil

			if tokenAuth != nil {
				if _, claims, err := jwtauth.FromContext(r.Context()); err == nil {
					if sub, ok := claims["sub"].(string); ok {
						if id, err := uuid.Parse(sub); err == nil {
							actorID = id
						}
					}
				}
			}
			if actorID == uuid.Nil {
				if v := r.Header.Get("X-User-ID"); v != "" {
					if id, err := uuid.Parse(v); err == nil {
						actorID = id
					}
				}
			}

			ctx := context.WithValue(r.Context(), actorKey, actorID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the acting user's id resolved by ActorResolver,
// or uuid.Nil when none was supplied.
func ActorFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(actorKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
