package dedup

import (
	"context"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"discdb/internal/contribution"
	"discdb/internal/disc/fingerprint"
)

// DefaultCacheSize bounds the number of cached fingerprints.
const DefaultCacheSize = 4096

// Finder is the persistent fingerprint lookup.
type Finder interface {
	FindDiscsByFingerprint(ctx context.Context, fp string) ([]contribution.DiscMatch, error)
}

// Index caches fingerprint lookups.
type Index struct {
	finder Finder
	cache  *lru.Cache[string, []contribution.DiscMatch]

	// mu orders cache fills against Record. epoch advances on every
	// Record so a fill that raced with one is dropped instead of caching a
	// stale list.
	mu    sync.Mutex
	epoch uint64
}

// New constructs an Index over finder. A non-positive size selects
// DefaultCacheSize.
func New(finder Finder, size int) (*Index, error) {
	if finder == nil {
		return nil, fmt.Errorf("dedup: finder is required")
	}
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, []contribution.DiscMatch](size)
	if err != nil {
		return nil, fmt.Errorf("dedup: create cache: %w", err)
	}
	return &Index{finder: finder, cache: cache}, nil
}

// Lookup returns discs with fingerprint fp other than the disc being
// checked, identified by contributionID and discIndex. Other discs of the
// same contribution are reported. The returned slice is owned by the caller.
func (x *Index) Lookup(ctx context.Context, fp string, contributionID int64, discIndex int) ([]contribution.DiscMatch, error) {
	fp = strings.TrimSpace(fp)
	if !fingerprint.Valid(fp) {
		return nil, nil
	}
	matches, ok := x.cache.Get(fp)
	if !ok {
		x.mu.Lock()
		start := x.epoch
		x.mu.Unlock()

		found, err := x.finder.FindDiscsByFingerprint(ctx, fp)
		if err != nil {
			return nil, fmt.Errorf("dedup lookup: %w", err)
		}
		matches = found

		x.mu.Lock()
		if x.epoch == start {
			x.cache.Add(fp, found)
		}
		x.mu.Unlock()
	}
	return exclude(matches, contributionID, discIndex), nil
}

// Record makes m visible to later lookups without a round trip to the
// finder. A cached list is replaced by an extended copy, never modified in
// place.
func (x *Index) Record(m contribution.DiscMatch) {
	if strings.TrimSpace(m.Fingerprint) == "" {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.epoch++

	current, ok := x.cache.Peek(m.Fingerprint)
	if !ok {
		return
	}
	next := make([]contribution.DiscMatch, 0, len(current)+1)
	for _, existing := range current {
		if existing.ContributionID == m.ContributionID && existing.DiscIndex == m.DiscIndex {
			continue
		}
		next = append(next, existing)
	}
	next = append(next, m)
	x.cache.Add(m.Fingerprint, next)
}

// Forget drops a disc from the cached list for fp, used when a disc's
// fingerprint is replaced.
func (x *Index) Forget(fp string, contributionID int64, discIndex int) {
	if strings.TrimSpace(fp) == "" {
		return
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	x.epoch++

	current, ok := x.cache.Peek(fp)
	if !ok {
		return
	}
	next := make([]contribution.DiscMatch, 0, len(current))
	for _, existing := range current {
		if existing.ContributionID == contributionID && existing.DiscIndex == discIndex {
			continue
		}
		next = append(next, existing)
	}
	x.cache.Add(fp, next)
}

// Len reports how many fingerprints are cached.
func (x *Index) Len() int {
	return x.cache.Len()
}

func exclude(matches []contribution.DiscMatch, contributionID int64, discIndex int) []contribution.DiscMatch {
	out := make([]contribution.DiscMatch, 0, len(matches))
	for _, m := range matches {
		if m.ContributionID == contributionID && m.DiscIndex == discIndex {
			continue
		}
		out = append(out, m)
	}
	return out
}
