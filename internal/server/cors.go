package server

import (
	"net/http"
	"strings"
)

// corsMiddleware allows the frontend origin to call the HTTP routes. An
// allowed origin of "*" is echoed as a wildcard without credentials.
func corsMiddleware(allowedOrigin string, next http.Handler) http.Handler {
	allowedOrigin = strings.TrimRight(allowedOrigin, "/")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		if allowedOrigin == "*" {
			h.Set("Access-Control-Allow-Origin", "*")
		} else if allowedOrigin != "" {
			h.Set("Access-Control-Allow-Origin", allowedOrigin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}
		h.Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
