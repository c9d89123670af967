package http

import (
	"encoding/json"
	"net/http"
)

// responseBody is the JSON shape of every response the API writes.
// Successful reads carry Data; health checks and acknowledgements carry Message;
// failures carry Code and Message.
type responseBody struct {
	Status  string `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, body responseBody) {
	h := w.Header()
	h.Set("Content-Type", "application/json; charset=utf-8")
	// complaint and inbox payloads are per-user
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeJSON(w, statusCode, responseBody{Status: "success", Data: data})
}

func writeMessage(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, responseBody{Status: "success", Message: message})
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, responseBody{Status: "error", Code: code, Message: message})
}
