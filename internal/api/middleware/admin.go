package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/epiroute/epiroute/internal/api/models"
)

// AdminToken returns a middleware that guards admin endpoints with a static
// bearer token. An empty configured token disables the admin surface
// entirely rather than leaving it open.
func AdminToken(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			traceID := GetRequestID(r.Context())

			if token == "" {
				problem := models.NewUnauthorized(traceID, "admin endpoints are disabled")
				problem.Instance = r.URL.Path
				problem.Write(w)
				return
			}

			presented := r.Header.Get("Authorization")
			expected := "Bearer " + token
			if subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) != 1 {
				problem := models.NewUnauthorized(traceID, "invalid admin token")
				problem.Instance = r.URL.Path
				problem.Write(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
