// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package logging builds the process-wide slog logger. Development gets
// human-readable text output; other environments get JSON. When a Sentry
// DSN is configured, warnings and errors are also sent to Sentry.
package logging

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// flushTimeout bounds how long Close waits for buffered Sentry events.
const flushTimeout = 2 * time.Second

// Options configures New.
type Options struct {
	Env       string // "development" selects the text handler
	SentryDSN string
	Release   string
}

// New returns a logger writing to w and a close func that flushes pending
// Sentry events. If Sentry cannot be initialized the logger falls back to
// w alone and reports the failure through it.
func New(w io.Writer, opts Options) (*slog.Logger, func()) {
	local := localHandler(w, opts.Env)
	if opts.SentryDSN == "" {
		return slog.New(local), func() {}
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:         opts.SentryDSN,
		Environment: opts.Env,
		Release:     opts.Release,
		EnableLogs:  true,
	})
	if err != nil {
		logger := slog.New(local)
		logger.Error("failed to initialize sentry", "error", err)
		return logger, func() {}
	}

	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   []slog.Level{slog.LevelWarn, slog.LevelError},
	}.NewSentryHandler(context.Background())

	return slog.New(newMultiHandler(local, remote)), func() {
		sentry.Flush(flushTimeout)
	}
}

func localHandler(w io.Writer, env string) slog.Handler {
	if env == "development" {
		return slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
}
