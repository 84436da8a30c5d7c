package middleware

import (
	"context"
	"net/http"
	"strings"

	"zibana-backend/internal/auth"
)

type contextKey string

const ActorIDKey contextKey = "actor_id"

// ActorMiddleware extracts the acting admin's identity from the bearer
// token the access-control layer issued. It is attribution, not
// authorization: permission checks happen upstream, but every transition
// here must be attributable to an actor, so requests without a valid
// identity are rejected.
type ActorMiddleware struct {
	jwtManager *auth.JWTManager
}

func NewActorMiddleware(jwtManager *auth.JWTManager) *ActorMiddleware {
	return &ActorMiddleware{jwtManager: jwtManager}
}

// Attribute validates the bearer token and stores the actor id in context
func (m *ActorMiddleware) Attribute(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization format", http.StatusUnauthorized)
			return
		}

		claims, err := m.jwtManager.ValidateToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), claims.AdminID)))
	})
}

// WithActor returns a context carrying the actor id
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ActorIDKey, actorID)
}

// ActorFromContext extracts the actor id from a request context
func ActorFromContext(ctx context.Context) (string, bool) {
	actorID, ok := ctx.Value(ActorIDKey).(string)
	return actorID, ok
}
