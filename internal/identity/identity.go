// Package identity resolves who is performing an operation.
package identity

import (
	"context"
	"errors"
	"strings"

	"discdb/internal/contribution"
)

// ErrAnonymous is returned when no caller identity is available.
var ErrAnonymous = errors.New("no caller identity configured")

// Caller is an authenticated user and the role they act in.
type Caller struct {
	UserID string
	Role   contribution.Role
}

// Provider supplies the current caller.
type Provider interface {
	CurrentUserID(ctx context.Context) (string, error)
}

// Static always reports the same user.
type Static string

// CurrentUserID implements Provider.
func (s Static) CurrentUserID(context.Context) (string, error) {
	id := strings.TrimSpace(string(s))
	if id == "" {
		return "", ErrAnonymous
	}
	return id, nil
}

type callerKey struct{}

// WithCaller stores c on ctx.
func WithCaller(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, callerKey{}, c)
}

// CallerFromContext returns the caller stored by WithCaller.
func CallerFromContext(ctx context.Context) (Caller, bool) {
	c, ok := ctx.Value(callerKey{}).(Caller)
	return c, ok && c.UserID != ""
}

// Context reports the caller stored on the context, falling back to the
// wrapped provider.
type Context struct {
	Fallback Provider
}

// CurrentUserID implements Provider.
func (p Context) CurrentUserID(ctx context.Context) (string, error) {
	if c, ok := CallerFromContext(ctx); ok {
		return c.UserID, nil
	}
	if p.Fallback == nil {
		return "", ErrAnonymous
	}
	return p.Fallback.CurrentUserID(ctx)
}
