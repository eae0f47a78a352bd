package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldMediaKey is the standardized structured logging key for the media identifier a session is bound to.
	FieldMediaKey = "media_key"
	// FieldSessionID identifies one attachment of a session to a page.
	FieldSessionID = "session_id"
	// FieldEventType classifies a log record for filtering.
	FieldEventType = "event_type"
	// FieldErrorHint suggests a next step to the operator.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldAlert flags warnings or anomalies that should stand out in structured logs.
	FieldAlert = "alert"
)

type contextKey int

const (
	mediaKeyContextKey contextKey = iota
	sessionIDContextKey
)

// WithMediaKey attaches a media key to ctx for later log enrichment.
func WithMediaKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, mediaKeyContextKey, key)
}

// WithSessionID attaches a session identifier to ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, id)
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if key, ok := ctx.Value(mediaKeyContextKey).(string); ok && key != "" {
		fields = append(fields, slog.String(FieldMediaKey, key))
	}
	if id, ok := ctx.Value(sessionIDContextKey).(string); ok && id != "" {
		fields = append(fields, slog.String(FieldSessionID, id))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
