package llm

import "context"

type contextKey string

const callIDKey contextKey = "llm_call_id"

// WithCallID attaches a generation call ID to the context so every
// upstream attempt can be correlated in logs and the usage ledger.
func WithCallID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, callIDKey, id)
}

// CallIDFrom extracts the call ID from the context.
func CallIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(callIDKey).(string); ok {
		return v
	}
	return ""
}
