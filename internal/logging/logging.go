// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

// Package logging provides the leveled, enable/disable-gated logger used
// across the simulator. It wraps log/slog rather than a third-party
// structured logger: none of the retrieved reference repositories actually
// import one (charmbracelet/log is declared but unused in the pack), while
// slog already gives structured fields and level filtering for free.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync/atomic"
)

// Provider is the minimal set of leveled log methods the simulator needs.
// RFC5424 message levels, trimmed to what a diagnostic server actually
// emits: Critical, Error, Warn, Info, Debug. Log forwards each of its
// methods to the matching Provider method.
type Provider interface {
	Critical(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Debug(ctx context.Context, msg string, args ...any)
}

// Log is the internal debugging/telemetry logger. Output can be toggled at
// runtime independent of the underlying slog level, which is useful for
// silencing noisy handlers (TesterPresent) during load tests without
// reconfiguring the whole logger.
type Log struct {
	provider Provider
	// has is 1 when log output is enabled, 0 when disabled.
	has uint32
}

// New creates a Log writing structured records to w at the given level.
func New(w io.Writer, level slog.Level) Log {
	if w == nil {
		w = os.Stdout
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return Log{
		provider: slogProvider{slog.New(handler)},
		has:      1,
	}
}

// Mode enables or disables log output.
func (l *Log) Mode(enable bool) {
	if enable {
		atomic.StoreUint32(&l.has, 1)
	} else {
		atomic.StoreUint32(&l.has, 0)
	}
}

// SetProvider overrides the backing Provider, e.g. to inject a test spy.
func (l *Log) SetProvider(p Provider) {
	if p != nil {
		l.provider = p
	}
}

func (l Log) enabled() bool {
	return atomic.LoadUint32(&l.has) == 1
}

// Critical logs an unrecoverable condition (a dispatcher-level panic).
func (l Log) Critical(ctx context.Context, msg string, args ...any) {
	if l.enabled() {
		l.provider.Critical(ctx, msg, args...)
	}
}

// Error logs a handled failure (negative response, transport error).
func (l Log) Error(ctx context.Context, msg string, args ...any) {
	if l.enabled() {
		l.provider.Error(ctx, msg, args...)
	}
}

// Warn logs a recoverable anomaly (unknown SID, unknown sub-function).
func (l Log) Warn(ctx context.Context, msg string, args ...any) {
	if l.enabled() {
		l.provider.Warn(ctx, msg, args...)
	}
}

// Info logs a routine request/response pair.
func (l Log) Info(ctx context.Context, msg string, args ...any) {
	if l.enabled() {
		l.provider.Info(ctx, msg, args...)
	}
}

// Debug logs handler-internal detail.
func (l Log) Debug(ctx context.Context, msg string, args ...any) {
	if l.enabled() {
		l.provider.Debug(ctx, msg, args...)
	}
}

// slogProvider adapts *slog.Logger to Provider. There is no slog.LevelCritical,
// so Critical is logged one notch above Error with an explicit marker field.
type slogProvider struct {
	*slog.Logger
}

var _ Provider = slogProvider{}

func (p slogProvider) Critical(ctx context.Context, msg string, args ...any) {
	p.Logger.Log(ctx, slog.LevelError+4, msg, append(args, "severity", "critical")...)
}

func (p slogProvider) Error(ctx context.Context, msg string, args ...any) {
	p.Logger.ErrorContext(ctx, msg, args...)
}

func (p slogProvider) Warn(ctx context.Context, msg string, args ...any) {
	p.Logger.WarnContext(ctx, msg, args...)
}

func (p slogProvider) Info(ctx context.Context, msg string, args ...any) {
	p.Logger.InfoContext(ctx, msg, args...)
}

func (p slogProvider) Debug(ctx context.Context, msg string, args ...any) {
	p.Logger.DebugContext(ctx, msg, args...)
}

// LevelFromString parses the logging-config level names used by the YAML
// config file ("debug", "info", "warn", "error"), defaulting to Info for
// anything unrecognized.
func LevelFromString(s string) slog.Level {
	switch s {
	case "debug", "DEBUG":
		return slog.LevelDebug
	case "warn", "WARN", "warning", "WARNING":
		return slog.LevelWarn
	case "error", "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
