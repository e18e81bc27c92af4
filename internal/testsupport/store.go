package testsupport

import (
	"context"
	"testing"

	"discdb/internal/config"
	"discdb/internal/contribution"
	"discdb/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewContribution inserts a pending movie contribution owned by owner.
func NewContribution(t testing.TB, st *store.Store, owner string) *contribution.Contribution {
	t.Helper()

	c := &contribution.Contribution{
		OwnerID:          owner,
		Status:           contribution.StatusPending,
		MediaType:        contribution.MediaTypeMovie,
		ExternalProvider: "tmdb",
		ExternalID:       "603",
	}
	if err := st.CreateContribution(context.Background(), c); err != nil {
		t.Fatalf("store.CreateContribution: %v", err)
	}
	return c
}
