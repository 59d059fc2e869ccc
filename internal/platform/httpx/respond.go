// Package httpx provides HTTP response utilities for the JSON API surface.
package httpx

import (
	"encoding/json"
	"net/http"
)

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK wraps the payload in the `{"status":"ok", ...}` envelope existing
// clients expect. Extra keys come from the payload map.
func OK(w http.ResponseWriter, status int, payload map[string]any) {
	body := map[string]any{"status": "ok"}
	for k, v := range payload {
		body[k] = v
	}
	JSON(w, status, body)
}

// DecodeJSON decodes a JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	return json.NewDecoder(r.Body).Decode(target)
}
