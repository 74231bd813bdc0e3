// Package identity turns verified bearer tokens into actors and checks
// actor roles before any store access.
package identity

import (
	"context"
	"fmt"
	"helpmatch/pkg/types"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID         string
	Role       types.Role
	Email      string
	GivenName  string
	FamilyName string
}

func (a *Actor) IsVolunteer() bool {
	return a != nil && a.Role == types.RoleVolunteer
}

// Authorize fails unless actor is authenticated and acts in role.
func Authorize(actor *Actor, role types.Role) error {
	if actor == nil || actor.ID == "" {
		return types.ErrUnauthenticated
	}

	if actor.Role != role {
		return fmt.Errorf("%w: requires %s role", types.ErrForbidden, role)
	}

	return nil
}

type contextKey struct{}

func WithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

// ActorFromContext returns the actor stored by WithActor, or nil.
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(contextKey{}).(*Actor)
	return actor
}
