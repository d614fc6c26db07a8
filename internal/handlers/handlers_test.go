package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"postcms/internal/apperr"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		status  string
		message string
	}{
		{"validation", apperr.Validation(apperr.Fields{"title": {"The title field is required."}}), 422, "fail", "Validation failed."},
		{"not found", apperr.NotFound("Post not found."), 404, "fail", "Post not found."},
		{"conflict", apperr.Conflict("Could not assign a unique slug.", nil), 409, "fail", "Could not assign a unique slug."},
		{"authentication", apperr.Authentication("Invalid credentials."), 401, "fail", "Invalid credentials."},
		{"unexpected hides cause", apperr.Unexpected("Server error.", errors.New("pq: secret detail")), 500, "error", "Server error."},
		{"plain error", errors.New("raw driver failure"), 500, "error", "Server error."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assertStatus(t, rec, tt.code)
			body := decodeEnvelope(t, rec)
			if body.Status != tt.status || body.Message != tt.message {
				t.Errorf("envelope = %+v", body)
			}
			if body.Errors == nil {
				t.Error("errors should always be an object")
			}
			if strings.Contains(rec.Body.String(), "detail") || strings.Contains(rec.Body.String(), "driver") {
				t.Errorf("internal cause leaked: %s", rec.Body.String())
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}

	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"valid", `{"name":"x"}`, false},
		{"empty body", "", false},
		{"malformed", `{"name":`, true},
		{"wrong type", `[1,2]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			err := decodeJSON(rec, jsonRequest(http.MethodPost, "/", tt.body), &dst)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?page=3&bad=x", nil)
	if got := queryInt(r, "page", 1); got != 3 {
		t.Errorf("page = %d", got)
	}
	if got := queryInt(r, "bad", 7); got != 7 {
		t.Errorf("bad = %d", got)
	}
	if got := queryInt(r, "missing", 9); got != 9 {
		t.Errorf("missing = %d", got)
	}
}
