package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are attached to every log record emitted with a context carrying them.
type LogFields struct {
	SessionID    *string // dashboard session
	RequestToken *uint64 // dashboard refresh token
	Username     *string
	Component    string // dotted component name, e.g. "chatdash.dashboard"
}

// WithLogFields enriches ctx. Newer non-empty values win over existing ones.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields returns the fields on ctx, or the zero value.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.SessionID != nil {
		result.SessionID = next.SessionID
	}
	if next.RequestToken != nil {
		result.RequestToken = next.RequestToken
	}
	if next.Username != nil {
		result.Username = next.Username
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr returns a pointer to v, for inline LogFields literals.
func Ptr[T any](v T) *T {
	return &v
}

// Truncate shortens s to maxLen bytes, appending "..." when cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
