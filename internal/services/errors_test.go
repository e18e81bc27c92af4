package services_test

import (
	"errors"
	"strings"
	"testing"

	"discdb/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrTransient, "store", "save", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"store", "save", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestKindOfDistinguishesCodecFromNotFound(t *testing.T) {
	codec := services.Wrap(services.ErrCodec, "identifier", "decode", "bad alphabet", nil)
	if kind := services.KindOf(codec); kind != services.KindCodec {
		t.Fatalf("expected codec kind, got %s", kind)
	}
	missing := services.Wrap(services.ErrNotFound, "store", "load", "contribution 9", nil)
	if kind := services.KindOf(missing); kind != services.KindNotFound {
		t.Fatalf("expected not found kind, got %s", kind)
	}
	if kind := services.KindOf(errors.New("disk on fire")); kind != services.KindInternal {
		t.Fatalf("expected internal kind, got %s", kind)
	}
	if kind := services.KindOf(nil); kind != "" {
		t.Fatalf("expected empty kind for nil, got %s", kind)
	}
}

func TestRecoverable(t *testing.T) {
	if !services.Recoverable(services.Wrap(services.ErrLogFormat, "disc", "parse", "empty", nil)) {
		t.Fatal("expected log format errors to be recoverable")
	}
	if services.Recoverable(services.Wrap(services.ErrCodec, "identifier", "decode", "", nil)) {
		t.Fatal("expected codec errors to be terminal")
	}
	if services.Recoverable(services.Wrap(services.ErrConcurrencyConflict, "store", "save", "", nil)) {
		t.Fatal("expected concurrency conflicts to be left to the caller")
	}
}
