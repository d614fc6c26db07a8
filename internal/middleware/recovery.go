// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"postcms/internal/envelope"
)

// Recoverer catches panics in downstream handlers, logs the stack trace,
// and returns a 500 error envelope instead of crashing the server.
// http.ErrAbortHandler is re-raised so the server can abort the response.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				slog.ErrorContext(r.Context(), "panic recovered",
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)
				envelope.Error(w, http.StatusInternalServerError, "Server error.")
			}
		}()

		next.ServeHTTP(w, r)
	})
}
