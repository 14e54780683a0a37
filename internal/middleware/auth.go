package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dukerupert/shoplist/internal/auth"
)

// SessionCookieName holds the session token for browser clients.
const SessionCookieName = "shoplist_session"

// TokenVerifier resolves a session token to a user id.
type TokenVerifier interface {
	VerifyToken(token string) (int64, error)
}

// SessionToken returns the bearer token from the Authorization header, or
// the session cookie when there is none.
func SessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

// RequireAuth validates the session token and populates AuthContext. Every
// failure gets the same 401 response.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := SessionToken(r)
			if token == "" {
				unauthorized(w)
				return
			}

			userID, err := verifier.VerifyToken(token)
			if err != nil || userID == 0 {
				unauthorized(w)
				return
			}

			setUserID(r.Context(), userID)
			ctx := auth.WithAuth(r.Context(), auth.AuthContext{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "invalid or expired session"})
}
