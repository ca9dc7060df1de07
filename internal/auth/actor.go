package auth

import "context"

// Actor is the authenticated farm performing a request.
type Actor struct {
	FarmID      uint
	Permissions map[string]struct{}
}

// NewActor builds an actor holding the given codenames.
func NewActor(farmID uint, perms ...string) Actor {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return Actor{FarmID: farmID, Permissions: set}
}

// Can reports whether the actor holds the permission codename.
func (a Actor) Can(perm string) bool {
	_, ok := a.Permissions[perm]
	return ok
}

// Codenames returns the held permissions in no particular order.
func (a Actor) Codenames() []string {
	out := make([]string, 0, len(a.Permissions))
	for p := range a.Permissions {
		out = append(out, p)
	}
	return out
}

type actorKey struct{}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFrom extracts the actor stored by WithActor.
func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
