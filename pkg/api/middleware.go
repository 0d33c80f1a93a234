package api

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// APIKeyHeader carries the key checked on /api/v1 routes.
const APIKeyHeader = "X-API-Key"

// requireAPIKey rejects requests whose APIKeyHeader does not match the
// configured key. With no key configured every request passes.
func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	expected := []byte(s.config.APIKey)
	if len(expected) == 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get(APIKeyHeader)
		switch {
		case got == "":
			s.logger.Debug("request without api key", zap.String("path", r.URL.Path))
			sendError(w, "Missing "+APIKeyHeader+" header", http.StatusUnauthorized)
		case subtle.ConstantTimeCompare([]byte(got), expected) != 1:
			s.logger.Warn("rejected api key", zap.String("path", r.URL.Path), zap.String("remote", r.RemoteAddr))
			sendError(w, "Invalid API key", http.StatusUnauthorized)
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func writeJSON(w http.ResponseWriter, status int, response APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}

// sendSuccess wraps data in a successful APIResponse.
func sendSuccess(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func sendError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, APIResponse{Error: message})
}
