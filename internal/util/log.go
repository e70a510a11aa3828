package util

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	// CTXKeyLogger holds the request scoped zerolog.Logger
	CTXKeyLogger contextKey = "logger"
	// CTXKeyRequestID holds the request id assigned by the HTTP middleware
	CTXKeyRequestID contextKey = "request_id"
)

// LogFromContext returns the logger stored in ctx, falling back to the global logger.
func LogFromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &log.Logger
	}

	l, ok := ctx.Value(CTXKeyLogger).(zerolog.Logger)
	if !ok {
		return &log.Logger
	}

	return &l
}

// LogToContext returns a copy of ctx carrying logger.
func LogToContext(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, CTXKeyLogger, logger)
}

// RequestIDFromContext returns the request id stored in ctx or an empty string.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(CTXKeyRequestID).(string)
	return id
}

// RequestIDToContext returns a copy of ctx carrying id.
func RequestIDToContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CTXKeyRequestID, id)
}
