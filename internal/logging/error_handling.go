package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// SafeCloseWithLogging closes c and logs a failure instead of returning it.
// Use it where nothing useful can be done about a failed close, such as a
// dataset file that has already been fully read.
func SafeCloseWithLogging(c io.Closer, logger *slog.Logger, operation string) {
	if c == nil {
		return
	}
	err := c.Close()
	if err == nil {
		return
	}
	LogError(logger, "failed to close resource", err,
		slog.String("operation", operation),
		slog.String("component", "resource_management"))
}

// HandleDeferredError runs op from a defer and folds its failure into *errp.
// When the surrounding function already failed both errors are kept, so
// errors.Is matches either.
func HandleDeferredError(errp *error, op func() error, logger *slog.Logger, operation string) {
	if op == nil || errp == nil {
		return
	}
	err := op()
	if err == nil {
		return
	}
	LogError(logger, "deferred operation failed", err,
		slog.String("operation", operation),
		slog.String("component", "deferred_cleanup"))

	wrapped := fmt.Errorf("%s failed: %w", operation, err)
	if *errp == nil {
		*errp = wrapped
		return
	}
	*errp = errors.Join(*errp, wrapped)
}
