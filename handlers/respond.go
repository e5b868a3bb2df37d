// handlers/respond.go
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// respondWithJSON writes payload as a JSON response with the given status.
func respondWithJSON(w http.ResponseWriter, logger *zap.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("handlers: failed to marshal JSON response", zap.Error(err))
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError logs and writes {"error": message}.
func respondWithError(w http.ResponseWriter, logger *zap.Logger, code int, message string) {
	logger.Warn("handlers: request failed", zap.Int("status", code), zap.String("error", message))
	respondWithJSON(w, logger, code, map[string]string{"error": message})
}
