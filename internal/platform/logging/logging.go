package logging

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is the key used to store the logger in a context.
// Using a custom type prevents collisions.
type contextKey string

const loggerKey = contextKey("logger")

// New builds the JSON logger used by the CLI.
func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// WithRun enriches baseLogger with a fresh run id and the plan being evaluated,
// and stores it in ctx. The run id is returned so callers can label outputs.
func WithRun(ctx context.Context, baseLogger *slog.Logger, plan string) (context.Context, *slog.Logger, string) {
	runID := uuid.NewString()
	runLogger := baseLogger.With(
		slog.String("run_id", runID),
		slog.String("plan", plan),
	)
	return context.WithValue(ctx, loggerKey, runLogger), runLogger, runID
}

// FromContext retrieves the run-scoped logger. It returns the default logger
// if none is found.
func FromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey).(*slog.Logger)
	if !ok || logger == nil {
		return slog.Default()
	}
	return logger
}
