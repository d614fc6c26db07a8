// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the postcms API.
// Handlers are grouped by concern (auth, posts, categories, health) and
// receive their dependencies through the handler struct. Every response
// uses the JSON envelope.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"postcms/internal/apperr"
	"postcms/internal/envelope"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// errMalformedBody is returned by decodeJSON for unparseable input.
var errMalformedBody = errors.New("malformed JSON body")

// decodeJSON reads the request body into dst. An empty body leaves dst
// untouched so that required-field validation reports what is missing.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errMalformedBody
}

// writeMalformed responds to a body decodeJSON could not parse.
func writeMalformed(w http.ResponseWriter) {
	envelope.Fail(w, http.StatusBadRequest, "The request body must be valid JSON.", nil)
}

// writeError maps err onto the envelope. Unexpected errors are logged with
// their cause and answered with a sanitized message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Unexpected("Server error.", err)
	}

	switch ae.Kind {
	case apperr.KindUnexpected:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		envelope.Error(w, ae.Kind.Status(), ae.Message)
	case apperr.KindConflict:
		slog.WarnContext(r.Context(), "request conflict",
			"method", r.Method, "path", r.URL.Path, "error", err)
		envelope.Fail(w, ae.Kind.Status(), ae.Message, nil)
	default:
		envelope.Fail(w, ae.Kind.Status(), ae.Message, ae.Fields)
	}
}

// parseID reads the {id} URL parameter. A malformed id cannot name an
// existing record, so it is reported as notFound.
func parseID(r *http.Request, notFound string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.NotFound(notFound)
	}
	return id, nil
}

// queryInt returns the integer query parameter key, or def when it is
// missing or not a number.
func queryInt(r *http.Request, key string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return def
	}
	return v
}
