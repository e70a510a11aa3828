package notify

import (
	"context"

	"github/chapool/ledger-login/internal/ledger"
	"github/chapool/ledger-login/internal/util"
)

// LogSink writes notifications to the context logger.
type LogSink struct{}

func (LogSink) Success(ctx context.Context, n ledger.Notification) {
	util.LogFromContext(ctx).Info().
		Str("title", n.Title).
		Str("message", n.Message).
		Dur("timeout", n.Timeout).
		Msg("Notification")
}

func (LogSink) Error(ctx context.Context, n ledger.Notification) {
	util.LogFromContext(ctx).Warn().
		Str("title", n.Title).
		Str("message", n.Message).
		Dur("timeout", n.Timeout).
		Msg("Error notification")
}

// Multi delivers every notification to each sink in order.
type Multi []ledger.NotificationSink

func (m Multi) Success(ctx context.Context, n ledger.Notification) {
	for _, sink := range m {
		sink.Success(ctx, n)
	}
}

func (m Multi) Error(ctx context.Context, n ledger.Notification) {
	for _, sink := range m {
		sink.Error(ctx, n)
	}
}
