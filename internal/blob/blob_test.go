package blob_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"discdb/internal/blob"
	"discdb/internal/config"
	"discdb/internal/services"
)

func TestFileStoreRoundTrip(t *testing.T) {
	st, err := blob.NewFileStore(filepath.Join(t.TempDir(), "blobs"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	key := blob.LogKey("abc123", 1)

	if err := st.Save(ctx, []byte("TCOUNT:1\n"), key, blob.ContentTypeLog); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := st.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if string(data) != "TCOUNT:1\n" {
		t.Fatalf("content = %q", data)
	}
	if _, err := os.Stat(filepath.Join(st.Root(), filepath.FromSlash(key))); err != nil {
		t.Fatalf("object not stored below root: %v", err)
	}

	if err := st.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Open(ctx, key); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := st.Delete(ctx, key); err != nil {
		t.Fatalf("deleting a missing key should succeed: %v", err)
	}
}

func TestFileStoreObjectsAreImmutable(t *testing.T) {
	st, err := blob.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()
	key := "contributions/x/discs/1/fixed.log"
	if err := st.Save(ctx, []byte("first"), key, blob.ContentTypeLog); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := st.Save(ctx, []byte("second"), key, blob.ContentTypeLog); !errors.Is(err, blob.ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	data, _ := st.Open(ctx, key)
	if string(data) != "first" {
		t.Fatalf("stored object was replaced: %q", data)
	}
}

func TestFileStoreConcurrentSaves(t *testing.T) {
	st, err := blob.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	ctx := context.Background()

	var wg sync.WaitGroup
	keys := make([]string, 8)
	for i := range keys {
		keys[i] = blob.LogKey("abc", i+1)
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			if err := st.Save(ctx, []byte(key), key, blob.ContentTypeLog); err != nil {
				t.Errorf("Save %s: %v", key, err)
			}
		}(keys[i])
	}
	wg.Wait()

	for _, key := range keys {
		data, err := st.Open(ctx, key)
		if err != nil || string(data) != key {
			t.Fatalf("Open %s: %q, %v", key, data, err)
		}
	}
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key string
		ok  bool
	}{
		{"contributions/a/discs/1/x.log", true},
		{"", false},
		{"/etc/passwd", false},
		{"a/../../b", false},
		{"a//b", false},
		{"a\\b", false},
	}
	for _, tt := range tests {
		err := blob.ValidateKey(tt.key)
		if (err == nil) != tt.ok {
			t.Fatalf("ValidateKey(%q) = %v, want ok=%v", tt.key, err, tt.ok)
		}
	}
}

func TestKeysAreFresh(t *testing.T) {
	a := blob.LogKey("ext", 2)
	b := blob.LogKey("ext", 2)
	if a == b {
		t.Fatal("log keys must differ per upload")
	}
	if !strings.HasPrefix(a, "contributions/ext/discs/2/") || !strings.HasSuffix(a, ".log") {
		t.Fatalf("unexpected log key %q", a)
	}
	img := blob.ImageKey("ext", "front", blob.ContentTypePNG)
	if !strings.HasPrefix(img, "contributions/ext/images/front-") || !strings.HasSuffix(img, ".png") {
		t.Fatalf("unexpected image key %q", img)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Blob.Dir = t.TempDir()
	st, err := blob.New(&cfg)
	if err != nil {
		t.Fatalf("New file backend: %v", err)
	}
	if _, ok := st.(*blob.FileStore); !ok {
		t.Fatalf("expected *FileStore, got %T", st)
	}

	cfg.Blob.Backend = config.BlobBackendS3
	cfg.Blob.S3 = config.S3{Endpoint: "localhost:9000", Bucket: "discdb", AccessKey: "a", SecretKey: "b"}
	st, err = blob.New(&cfg)
	if err != nil {
		t.Fatalf("New s3 backend: %v", err)
	}
	s3, ok := st.(*blob.S3Store)
	if !ok || s3.Bucket() != "discdb" {
		t.Fatalf("expected *S3Store for bucket discdb, got %T", st)
	}

	if _, err := blob.NewS3Store(blob.S3Config{Endpoint: "localhost:9000", Bucket: "x"}); err == nil {
		t.Fatal("expected missing credentials error")
	}
}

func TestS3StoreRetriesBucketCheckAfterFailure(t *testing.T) {
	var bucketChecks atomic.Int32
	var deletes atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodHead && r.URL.Path == "/discdb":
			if bucketChecks.Add(1) == 1 {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodDelete && r.URL.Path == "/discdb/logs/disc.log":
			deletes.Add(1)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotImplemented)
		}
	}))
	defer server.Close()

	st, err := blob.NewS3Store(blob.S3Config{
		Endpoint:  strings.TrimPrefix(server.URL, "http://"),
		Bucket:    "discdb",
		AccessKey: "a",
		SecretKey: "b",
	})
	if err != nil {
		t.Fatalf("NewS3Store: %v", err)
	}

	ctx := context.Background()
	if err := st.Delete(ctx, "logs/disc.log"); err == nil {
		t.Fatal("expected the first bucket check to fail")
	}
	if err := st.Delete(ctx, "logs/disc.log"); err != nil {
		t.Fatalf("Delete after a failed bucket check: %v", err)
	}
	if err := st.Delete(ctx, "logs/disc.log"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if got := bucketChecks.Load(); got != 2 {
		t.Fatalf("expected bucket checked twice, got %d", got)
	}
	if got := deletes.Load(); got != 2 {
		t.Fatalf("expected 2 deletes, got %d", got)
	}
}
