package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// JobIDKey is the context key for the batch job ID
	JobIDKey contextKey = "job_id"
	// ModelNameKey is the context key for the model being worked on
	ModelNameKey contextKey = "model_name"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, log)
}

// FromContext retrieves the logger from context, no-op when absent
func FromContext(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return log
	}
	return zap.NewNop()
}

// WithJobID adds the batch job ID to context and returns the enriched logger
func WithJobID(ctx context.Context, log *zap.Logger, jobID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, JobIDKey, jobID)
	enriched := log.With(zap.String("job_id", jobID))
	return WithContext(ctx, enriched), enriched
}

// WithModelName adds the model name to context and returns the enriched logger
func WithModelName(ctx context.Context, log *zap.Logger, modelName string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, ModelNameKey, modelName)
	enriched := log.With(zap.String("model_name", modelName))
	return WithContext(ctx, enriched), enriched
}

// GetJobID retrieves the batch job ID from context
func GetJobID(ctx context.Context) string {
	if jobID, ok := ctx.Value(JobIDKey).(string); ok {
		return jobID
	}
	return ""
}
