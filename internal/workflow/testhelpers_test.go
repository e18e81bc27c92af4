package workflow_test

import (
	"context"
	"testing"
	"time"

	"discdb/internal/blob"
	"discdb/internal/config"
	"discdb/internal/contribution"
	"discdb/internal/identity"
	"discdb/internal/logging"
	"discdb/internal/store"
	"discdb/internal/testsupport"
	"discdb/internal/workflow"
)

type harness struct {
	cfg     *config.Config
	store   *store.Store
	blobs   *blob.FileStore
	manager *workflow.Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithUser("alice"))
	st := testsupport.MustOpenStore(t, cfg)
	blobs, err := blob.NewFileStore(cfg.Blob.Dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	m, err := workflow.NewManager(cfg, st, blobs, nil, logging.NewNop())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return &harness{cfg: cfg, store: st, blobs: blobs, manager: m}
}

func as(user string, role contribution.Role) context.Context {
	return identity.WithCaller(context.Background(), identity.Caller{UserID: user, Role: role})
}

func ptr[T any](v T) *T { return &v }

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

var featureLog = testsupport.RipLog("Sample Feature",
	testsupport.LogTitle{Duration: "1:52:10", Chapters: 24, Segments: "1,2,3"},
	testsupport.LogTitle{Duration: "0:12:04", Chapters: 3, Segments: "40"},
)

var otherLog = testsupport.RipLog("Other Feature",
	testsupport.LogTitle{Duration: "1:41:00", Chapters: 18, Segments: "1"},
)

// createMovie creates a movie contribution for alice with one empty disc.
func (h *harness) createMovie(t *testing.T) string {
	t.Helper()
	view, err := h.manager.CreateContribution(context.Background(), workflow.CreateRequest{
		MediaType:        contribution.MediaTypeMovie,
		ExternalProvider: "tmdb",
		ExternalID:       "603",
	})
	if err != nil {
		t.Fatalf("CreateContribution: %v", err)
	}
	if _, err := h.manager.AddDisc(context.Background(), view.ExternalID, "", ""); err != nil {
		t.Fatalf("AddDisc: %v", err)
	}
	return view.ExternalID
}

// completeRelease fills every field the blocking rules check.
func (h *harness) completeRelease(t *testing.T, extID string) {
	t.Helper()
	ctx := context.Background()
	if _, err := h.manager.EditRelease(ctx, extID, workflow.ReleaseEdit{
		ReleaseDate: ptr(time.Date(2008, 11, 18, 0, 0, 0, 0, time.UTC)),
		ASIN:        ptr("b001e5wkqa"),
		UPC:         ptr("085391163923"),
		Title:       ptr("The Sample Feature"),
		RegionCode:  ptr("a"),
		Locale:      ptr("EN-US"),
	}); err != nil {
		t.Fatalf("EditRelease: %v", err)
	}
	if _, err := h.manager.UploadImage(ctx, extID, workflow.ImageFront, pngBytes, ""); err != nil {
		t.Fatalf("UploadImage: %v", err)
	}
}
