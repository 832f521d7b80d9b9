// Copyright 2020 thinkgos (thinkgo@aliyun.com).  All rights reserved.
// Use of this source code is governed by a version 3 of the GNU General
// Public License, license that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogRespectsMode(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelDebug)

	l.Info(context.Background(), "visible")
	assert.Contains(t, buf.String(), "visible")

	buf.Reset()
	l.Mode(false)
	l.Info(context.Background(), "hidden")
	assert.Empty(t, buf.String())

	l.Mode(true)
	l.Info(context.Background(), "visible again")
	assert.Contains(t, buf.String(), "visible again")
}

func TestLevelFromString(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LevelFromString("debug"))
	assert.Equal(t, slog.LevelWarn, LevelFromString("warn"))
	assert.Equal(t, slog.LevelError, LevelFromString("error"))
	assert.Equal(t, slog.LevelInfo, LevelFromString("whatever"))
}

func TestCriticalMarksSeverity(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, slog.LevelDebug)
	l.Critical(context.Background(), "dispatcher panic", "sid", 0x10)
	out := buf.String()
	assert.True(t, strings.Contains(out, "dispatcher panic"))
	assert.True(t, strings.Contains(out, "critical"))
}
