package middleware

import "net/http"

// BodyLimit caps mutating request bodies. The profile image route parses
// its multipart body against the larger upload limit, so it is exempt.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			limited := maxBytes > 0 &&
				(r.Method == http.MethodPost || r.Method == http.MethodPut || r.Method == http.MethodPatch) &&
				normalizedAPIPath(r.URL.Path) != "/user/upload-image"
			if limited {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
