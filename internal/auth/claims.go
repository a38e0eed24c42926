package auth

import (
	"context"
	"time"
)

// Scopes understood by the tracker API.
const (
	ScopeWorkoutsWrite = "workouts:write"
	ScopeWorkoutsRead  = "workouts:read"
)

// Claims identifies the runner behind a request and what they may do.
type Claims struct {
	RunnerID  string
	Scopes    map[string]struct{}
	ExpiresAt time.Time
}

// Allows reports whether the runner holds scope. Logging workouts implies
// being able to read them back, so workouts:write also grants workouts:read.
func (c *Claims) Allows(scope string) bool {
	if c == nil {
		return false
	}
	if _, ok := c.Scopes[scope]; ok {
		return true
	}
	if scope == ScopeWorkoutsRead {
		_, ok := c.Scopes[ScopeWorkoutsWrite]
		return ok
	}
	return false
}

type claimsKey struct{}

// NewContext returns a copy of ctx carrying the runner's claims.
func NewContext(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// FromContext returns the claims attached by NewContext.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok && claims != nil
}
