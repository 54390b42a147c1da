package logging

import "context"

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// TenantIDKey is the context key for tenant identifiers.
	TenantIDKey contextKey = "tenant_id"

	// VerdictIDKey is the context key for verdict identifiers.
	VerdictIDKey contextKey = "verdict_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithTenantID adds a tenant identifier to the context.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, TenantIDKey, tenantID)
}

// GetTenantID retrieves the tenant identifier from the context.
func GetTenantID(ctx context.Context) string {
	if tenantID, ok := ctx.Value(TenantIDKey).(string); ok {
		return tenantID
	}
	return ""
}

// WithVerdictID adds a verdict identifier to the context.
func WithVerdictID(ctx context.Context, verdictID string) context.Context {
	return context.WithValue(ctx, VerdictIDKey, verdictID)
}

// GetVerdictID retrieves the verdict identifier from the context.
func GetVerdictID(ctx context.Context) string {
	if verdictID, ok := ctx.Value(VerdictIDKey).(string); ok {
		return verdictID
	}
	return ""
}
