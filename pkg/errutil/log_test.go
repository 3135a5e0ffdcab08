// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Circle Contributors

package errutil_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/circlehub/circle/pkg/errutil"
)

func TestLogError_WithKindedError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(context.Background(), logger, "request failed", errutil.Internal("sign token", errors.New("bad key")))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "request failed", entry["msg"])
	assert.Equal(t, "SERVER", entry["kind"])
	assert.Equal(t, "SERVER", entry["code"])
	assert.Contains(t, entry["error"], "bad key")
}

func TestLogError_WithStandardError(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	errutil.LogError(context.Background(), logger, "operation failed", errors.New("standard error"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "SERVER", entry["kind"])
	assert.Contains(t, entry["error"], "standard error")
}
