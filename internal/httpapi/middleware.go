package httpapi

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"taskhub/internal/auth"
)

type contextKey int

const userIDKey contextKey = iota

// RequireAuth resolves the bearer token to a user id and stores it on the
// request context. Requests without a valid token get a 401.
func RequireAuth(authenticator auth.Authenticator) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			userID, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				log.Printf("[http] authenticate: %v", err)
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// requestUserID returns the authenticated user id set by RequireAuth.
func requestUserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}
