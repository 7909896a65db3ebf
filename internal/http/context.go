package http

import (
	"context"
	"log/slog"

	"github.com/example/cmms-backend/internal/application"
	"github.com/example/cmms-backend/internal/logging"
)

type contextKey string

const (
	principalContextKey   contextKey = "principal"
	workOrderIDContextKey contextKey = "work_order_id"
	assetIDContextKey     contextKey = "asset_id"
	userIDContextKey      contextKey = "user_id"
	tenantIDContextKey    contextKey = "tenant_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithWorkOrderID injects the work order identifier resolved from the request path.
func ContextWithWorkOrderID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, workOrderIDContextKey, id)
}

// WorkOrderIDFromContext extracts a work order identifier previously associated with the context.
func WorkOrderIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(workOrderIDContextKey).(string)
	return id, ok
}

// ContextWithAssetID injects the asset identifier resolved from the request path.
func ContextWithAssetID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, assetIDContextKey, id)
}

// AssetIDFromContext extracts an asset identifier previously associated with the context.
func AssetIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(assetIDContextKey).(string)
	return id, ok
}

// ContextWithUserID injects the user identifier resolved from the request path.
func ContextWithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDContextKey, id)
}

// UserIDFromContext extracts a user identifier previously associated with the context.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDContextKey).(string)
	return id, ok
}

// ContextWithTenantID injects the tenant identifier resolved from the request path.
func ContextWithTenantID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, tenantIDContextKey, id)
}

// TenantIDFromContext extracts a tenant identifier previously associated with the context.
func TenantIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(tenantIDContextKey).(string)
	return id, ok
}

// ContextWithLogger stores the request-scoped logger so downstream services
// pick it up through the shared logging package.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext returns the request-scoped logger, if one was attached.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
