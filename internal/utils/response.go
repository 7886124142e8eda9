package utils

import (
	"encoding/json"
	"net/http"
	"time"
)

// Transport-level outcomes carried in Envelope.Status
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// timestampLayout renders UTC time with microseconds and a trailing Z
const timestampLayout = "2006-01-02T15:04:05.000000Z"

var now = time.Now

// Envelope is the uniform body returned by every endpoint
type Envelope struct {
	Code      int    `json:"code"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data"`
	Details   any    `json:"details"`
}

// NewEnvelope builds an envelope stamped with the current UTC time
func NewEnvelope(code int, status, message string, data, details any) Envelope {
	return Envelope{
		Code:      code,
		Status:    status,
		Message:   message,
		Timestamp: now().UTC().Format(timestampLayout),
		Data:      data,
		Details:   details,
	}
}

// Success builds a 200 success envelope
func Success(data any, message string) Envelope {
	if message == "" {
		message = "Success"
	}
	return NewEnvelope(http.StatusOK, StatusSuccess, message, data, nil)
}

// Error builds an error envelope with the given HTTP status
func Error(code int, message string, details any) Envelope {
	return NewEnvelope(code, StatusError, message, nil, details)
}

// WriteEnvelope writes env using its own code as the HTTP status
func WriteEnvelope(w http.ResponseWriter, env Envelope) {
	WriteJSONResponse(w, env.Code, env)
}

// WriteErrorResponse writes an error envelope carrying a single error description
func WriteErrorResponse(w http.ResponseWriter, status int, message, detail string) {
	WriteEnvelope(w, Error(status, message, map[string]any{"error": detail}))
}

// WriteJSONResponse writes a JSON response to the HTTP response writer
func WriteJSONResponse(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
