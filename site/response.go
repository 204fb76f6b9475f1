package site

import (
	"encoding/json"
	"net/http"
)

// writeJSON writes data as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger().Error("site: encode json response", "error", err)
	}
}

// writeJSONError writes {"error": msg} with the given status code.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSONError(w, http.StatusBadRequest, msg)
}

func unauthorized(w http.ResponseWriter) {
	writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
}

func notFound(w http.ResponseWriter, msg string) {
	writeJSONError(w, http.StatusNotFound, msg)
}

func internalServerError(w http.ResponseWriter, msg string) {
	writeJSONError(w, http.StatusInternalServerError, msg)
}
