package services

import (
	"log/slog"
)

// BaseService provides the logging helpers shared by every manager.
type BaseService struct {
	Logger *slog.Logger
}

// GetLogger returns the configured logger or the process default.
func (s *BaseService) GetLogger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(err error, msg string, keyvals ...any) {
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	s.GetLogger().Error(msg, args...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(msg string, keyvals ...any) {
	s.GetLogger().Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(msg string, keyvals ...any) {
	s.GetLogger().Debug(msg, keyvals...)
}
