// Package envelope writes the JSON response envelope shared by every
// endpoint: {"status", "message", "content", "errors"}.
package envelope

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Envelope statuses.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Response is the body of every JSON response.
type Response struct {
	Status  string              `json:"status"`
	Message string              `json:"message"`
	Content any                 `json:"content"`
	Errors  map[string][]string `json:"errors"`
}

// Write encodes resp with the given status code. Errors is always rendered
// as an object, never null.
func Write(w http.ResponseWriter, code int, resp Response) {
	if resp.Errors == nil {
		resp.Errors = map[string][]string{}
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// Success writes a success envelope carrying content.
func Success(w http.ResponseWriter, code int, message string, content any) {
	Write(w, code, Response{Status: StatusSuccess, Message: message, Content: content})
}

// Fail writes a client-error envelope. fields may be nil.
func Fail(w http.ResponseWriter, code int, message string, fields map[string][]string) {
	Write(w, code, Response{Status: StatusFail, Message: message, Errors: fields})
}

// Error writes a server-error envelope.
func Error(w http.ResponseWriter, code int, message string) {
	Write(w, code, Response{Status: StatusError, Message: message})
}
