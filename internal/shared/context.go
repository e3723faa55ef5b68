package shared

import (
	"context"

	"github.com/orgdesk/orgdesk/internal/policy"
)

type actorContextKey struct{}

// ContextWithActor stores the resolved actor in context.
func ContextWithActor(ctx context.Context, actor policy.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context. The anonymous actor is
// returned when no actor was resolved.
func ActorFromContext(ctx context.Context) policy.Actor {
	actor, ok := ctx.Value(actorContextKey{}).(policy.Actor)
	if !ok {
		return policy.Anonymous()
	}
	return actor
}
