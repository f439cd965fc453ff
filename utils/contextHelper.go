package utils

import (
	"context"

	"bitbucket.org/mmdatafocus/meatshop_console/appctx"
)

var (
	ContextKeyCorrelationId  = appctx.ContextKeyCorrelationId
	ContextKeyIdempotencyKey = appctx.ContextKeyIdempotencyKey
	ContextKeyClientIP       = appctx.ContextKeyClientIP
)

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func GetIdempotencyKeyFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyIdempotencyKey)
}

func SetIdempotencyKeyInContext(ctx context.Context, key string) context.Context {
	return appctx.Set(ctx, ContextKeyIdempotencyKey, key)
}

func GetClientIPFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyClientIP)
}

func SetClientIPInContext(ctx context.Context, ip string) context.Context {
	return appctx.Set(ctx, ContextKeyClientIP, ip)
}
