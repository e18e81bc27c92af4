package fileutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteNew(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "nested", "object.log")

	if err := WriteNew(dst, []byte("payload"), 0o640); err != nil {
		t.Fatalf("WriteNew: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != "payload" {
		t.Fatalf("content = %q", got)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o640 {
		t.Fatalf("mode = %o, want 640", info.Mode().Perm())
	}

	entries, err := os.ReadDir(filepath.Dir(dst))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temp files left behind: %v", entries)
	}
}

func TestWriteNewRefusesOverwrite(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "object.log")
	if err := os.WriteFile(dst, []byte("original"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}
	err := WriteNew(dst, []byte("replacement"), 0o644)
	if !errors.Is(err, os.ErrExist) {
		t.Fatalf("expected ErrExist, got %v", err)
	}
	got, _ := os.ReadFile(dst)
	if string(got) != "original" {
		t.Fatalf("existing object modified: %q", got)
	}
}

func TestReadLimited(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.log")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatalf("seed: %v", err)
	}

	data, err := ReadLimited(path, 10)
	if err != nil || string(data) != "0123456789" {
		t.Fatalf("ReadLimited at limit: %q, %v", data, err)
	}
	if _, err := ReadLimited(path, 9); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
	if data, err := ReadLimited(path, 0); err != nil || len(data) != 10 {
		t.Fatalf("unlimited read: %d bytes, %v", len(data), err)
	}
}

func TestReadLimitedMissing(t *testing.T) {
	if _, err := ReadLimited(filepath.Join(t.TempDir(), "missing"), 10); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ErrNotExist, got %v", err)
	}
}
