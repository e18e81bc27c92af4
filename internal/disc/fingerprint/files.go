package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// File describes one stream file of a ripped disc.
type File struct {
	Index     int
	Name      string
	Size      int64
	CreatedAt time.Time
}

// ScanFiles lists the regular files of dir in name order, numbering them
// from 1. dir is usually a disc's BDMV/STREAM or VIDEO_TS directory.
func ScanFiles(ctx context.Context, dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read stream dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	files := make([]File, 0, len(names))
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		files = append(files, File{
			Index:     i + 1,
			Name:      name,
			Size:      info.Size(),
			CreatedAt: info.ModTime().UTC().Truncate(time.Second),
		})
	}
	return files, nil
}

// FilesHash hashes the sizes and creation times of files in index order.
// Names are ignored so renamed copies of a disc hash identically.
func FilesHash(files []File) string {
	if len(files) == 0 {
		return ""
	}
	ordered := append([]File(nil), files...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	parts := make([]string, 0, len(ordered))
	for _, f := range ordered {
		parts = append(parts, strconv.FormatInt(f.Size, 10)+"@"+strconv.FormatInt(f.CreatedAt.UTC().Unix(), 10))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return strings.ToUpper(hex.EncodeToString(sum[:16]))
}
