package logging

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeClose(t *testing.T) {
	t.Run("closes file safely without logging", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		f, err := os.Create(filepath.Join(t.TempDir(), "model.bin"))
		require.NoError(t, err)

		SafeCloseWithLogging(f, logger, "artifact_write")

		assert.NotContains(t, buf.String(), `"level":"ERROR"`)
	})

	t.Run("logs error when close fails", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		SafeCloseWithLogging(&errorCloser{err: assert.AnError}, logger, "dataset_read")

		output := buf.String()
		assert.Contains(t, output, `"level":"ERROR"`)
		assert.Contains(t, output, `"msg":"failed to close resource"`)
		assert.Contains(t, output, `"operation":"dataset_read"`)
	})

	t.Run("ignores nil closer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		SafeCloseWithLogging(nil, logger, "noop")

		assert.Empty(t, buf.String())
	})
}

func TestHandleDeferredError(t *testing.T) {
	t.Run("reports deferred failure when function succeeded", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		testFunc := func() (err error) {
			defer HandleDeferredError(&err, func() error {
				return assert.AnError
			}, logger, "flush_encoder")

			return nil
		}

		err := testFunc()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "flush_encoder")
		assert.ErrorIs(t, err, assert.AnError)

		output := buf.String()
		assert.Contains(t, output, `"msg":"deferred operation failed"`)
	})

	t.Run("joins both errors when the function also failed", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewStructuredLogger(&buf, slog.LevelInfo)

		original := os.ErrNotExist

		testFunc := func() (err error) {
			defer HandleDeferredError(&err, func() error {
				return assert.AnError
			}, logger, "flush_encoder")

			return original
		}

		err := testFunc()
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "flush_encoder failed")
		assert.Contains(t, buf.String(), `"level":"ERROR"`)
	})

	t.Run("nil deferred op is a no-op", func(t *testing.T) {
		var err error
		HandleDeferredError(&err, nil, nil, "nothing")
		assert.NoError(t, err)
	})

	t.Run("successful deferred op leaves error untouched", func(t *testing.T) {
		err := os.ErrClosed
		HandleDeferredError(&err, func() error { return nil }, nil, "close")
		assert.Equal(t, os.ErrClosed, err)
	})
}

type errorCloser struct {
	err error
}

func (e *errorCloser) Close() error {
	return e.err
}
