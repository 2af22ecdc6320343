// Package requestcontext provides HTTP-independent accessors for
// request-scoped values.
//
// Middleware sets these values; services read them without importing
// net/http. Tests inject them directly:
//
//	ctx = requestcontext.WithActor(ctx, accountID, account.RoleDonor)
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "matchport/pkg/domain"
)

type (
	actorIDKey     struct{}
	actorRoleKey   struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

var (
	ContextKeyActorID     = actorIDKey{}
	ContextKeyActorRole   = actorRoleKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
)

// ActorID retrieves the authenticated account ID from the context.
// Returns the zero value (nil UUID) if not set.
func ActorID(ctx context.Context) id.AccountID {
	if actorID, ok := ctx.Value(ContextKeyActorID).(id.AccountID); ok {
		return actorID
	}
	return id.AccountID{}
}

// ActorRole retrieves the authenticated account's role string ("cbo",
// "donor", "admin") from the context. Empty when unauthenticated.
func ActorRole(ctx context.Context) string {
	if role, ok := ctx.Value(ContextKeyActorRole).(string); ok {
		return role
	}
	return ""
}

// WithActor injects the authenticated account ID and role into the context.
func WithActor(ctx context.Context, actorID id.AccountID, role string) context.Context {
	ctx = context.WithValue(ctx, ContextKeyActorID, actorID)
	return context.WithValue(ctx, ContextKeyActorRole, role)
}

// RequestID retrieves the correlation ID set by middleware.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context, falling back to
// time.Now for non-HTTP contexts (workers, tests that don't care).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Used by the request-time
// middleware and by service tests that need deterministic timestamps.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
