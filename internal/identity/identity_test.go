package identity

import (
	"context"
	"errors"
	"testing"

	"discdb/internal/contribution"
)

func TestStatic(t *testing.T) {
	id, err := Static(" alice ").CurrentUserID(context.Background())
	if err != nil || id != "alice" {
		t.Fatalf("CurrentUserID = %q, %v", id, err)
	}
	if _, err := Static("").CurrentUserID(context.Background()); !errors.Is(err, ErrAnonymous) {
		t.Fatalf("expected ErrAnonymous, got %v", err)
	}
}

func TestContextPrefersCaller(t *testing.T) {
	p := Context{Fallback: Static("fallback")}

	id, err := p.CurrentUserID(context.Background())
	if err != nil || id != "fallback" {
		t.Fatalf("fallback = %q, %v", id, err)
	}

	ctx := WithCaller(context.Background(), Caller{UserID: "bob", Role: contribution.RoleAdministrator})
	id, err = p.CurrentUserID(ctx)
	if err != nil || id != "bob" {
		t.Fatalf("caller = %q, %v", id, err)
	}
	c, ok := CallerFromContext(ctx)
	if !ok || c.Role != contribution.RoleAdministrator {
		t.Fatalf("CallerFromContext = %+v, %v", c, ok)
	}

	if _, err := (Context{}).CurrentUserID(context.Background()); !errors.Is(err, ErrAnonymous) {
		t.Fatalf("expected ErrAnonymous without fallback, got %v", err)
	}
}
