package middleware

import (
	"context"

	"github.com/oclservices/ocl-backend/pkg/enums"
)

type contextKey string

const (
	ctxSubject  contextKey = "subject"
	ctxRole     contextKey = "actor_role"
	ctxEntityID contextKey = "entity_id"
	ctxAccessID contextKey = "access_id"
)

// SubjectFromContext returns the token subject (admin email, courier id, ...).
func SubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSubject).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) enums.ActorRole {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(enums.ActorRole); ok {
		return v
	}
	return ""
}

// EntityIDFromContext returns the corporate client, medicine user or courier id the token is scoped to.
func EntityIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxEntityID).(string); ok {
		return v
	}
	return ""
}

func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithActor injects the authenticated actor into the context.
func WithActor(ctx context.Context, subject string, role enums.ActorRole, entityID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, ctxSubject, subject)
	ctx = context.WithValue(ctx, ctxRole, role)
	if entityID != "" {
		ctx = context.WithValue(ctx, ctxEntityID, entityID)
	}
	return ctx
}

// WithAccessID stores the session id backing the request's token.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccessID, accessID)
}
