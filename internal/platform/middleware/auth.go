package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "github.com/Soozey/MADAVOLA/pkg/domain"
	"github.com/Soozey/MADAVOLA/pkg/requestcontext"
)

// TokenValidator validates bearer tokens. Token issuance lives in a separate
// service; this engine only consumes already-issued credentials.
type TokenValidator interface {
	ValidateToken(tokenString string) (*TokenClaims, error)
}

// TokenClaims is the subset of claims the engine relies on: who the actor is
// and which roles the upstream resolver granted them.
type TokenClaims struct {
	ActorID string
	Roles   []string
}

// RequireAuth rejects requests without a valid bearer token and injects the
// authenticated actor id and resolved roles into the request context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				unauthorized(w)
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				unauthorized(w)
				return
			}

			actorID, err := id.ParseActorID(claims.ActorID)
			if err != nil {
				logger.WarnContext(r.Context(), "unauthorized access - malformed actor id",
					"error", err,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				unauthorized(w)
				return
			}

			ctx := requestcontext.WithActorID(r.Context(), actorID)
			ctx = requestcontext.WithRoles(ctx, claims.Roles)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
}
