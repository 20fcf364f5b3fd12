package api

import "net/http"

// AdminAuthMiddleware gates destructive admin routes behind a shared
// secret passed in the X-Admin-Key header. A blank adminKey disables the
// check (every request is treated as authorized), matching the teacher's
// default-open dev posture when auth is not configured.
func AdminAuthMiddleware(adminKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			if r.Header.Get("X-Admin-Key") != adminKey {
				writeError(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
