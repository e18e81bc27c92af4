package blob

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sys/unix"

	"discdb/internal/fileutil"
	"discdb/internal/services"
)

const (
	lockFileName   = ".discdb-blob.lock"
	lockRetryDelay = 25 * time.Millisecond
)

// FileStore keeps objects as files below root. Writers are serialized with
// a mutex inside the process and an advisory lock file across processes.
type FileStore struct {
	root string
	mu   sync.Mutex
	lock *flock.Flock
}

// NewFileStore prepares root and checks that it is writable.
func NewFileStore(root string) (*FileStore, error) {
	if root == "" {
		return nil, errors.New("blob dir is empty")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	if err := unix.Access(root, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "blob", "open", fmt.Sprintf("blob dir %s is not writable", root), err)
	}
	return &FileStore{root: root, lock: flock.New(filepath.Join(root, lockFileName))}, nil
}

// Root returns the directory backing the store.
func (s *FileStore) Root() string {
	return s.root
}

func (s *FileStore) pathFor(key string) (string, error) {
	if err := ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(key)), nil
}

// Save writes data under key. contentType is not recorded on disk.
func (s *FileStore) Save(ctx context.Context, data []byte, key, _ string) error {
	target, err := s.pathFor(key)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	locked, err := s.lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire blob lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("acquire blob lock: %w", services.ErrTransient)
	}
	defer func() {
		_ = s.lock.Unlock()
	}()

	if err := fileutil.WriteNew(target, data, 0o644); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("save %s: %w", key, ErrExists)
		}
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Open returns the content stored under key.
func (s *FileStore) Open(_ context.Context, key string) ([]byte, error) {
	target, err := s.pathFor(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("blob %s: %w", key, services.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open blob %s: %w", key, err)
	}
	return data, nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *FileStore) Delete(_ context.Context, key string) error {
	target, err := s.pathFor(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}
	return nil
}
