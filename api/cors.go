package api

import "net/http"

// corsMiddleware reflects the request's Origin header back verbatim when
// it appears in allowed, and never otherwise. Unlike the teacher pack's
// faucet example (examples/rivchain/frontend/faucet/api.go's
// addCorsHeaders, which sets `Access-Control-Allow-Origin: *`
// unconditionally), an exact-match allow-list is the default here: a
// wildcard origin is a known footgun once wallet secrets flow through
// this API's request bodies (Open Question decision #3).
func corsMiddleware(next http.Handler, allowed []string) http.Handler {
	allowedSet := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		allowedSet[origin] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && allowedSet[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Set("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
