package middleware

import "net/http"

// BodyLimit caps request bodies on the mutating verbs via http.MaxBytesReader.
// A body over the cap surfaces as a read error inside the handler's decode.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if maxBytes > 0 {
				switch r.Method {
				case http.MethodPost, http.MethodPut, http.MethodPatch:
					r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
