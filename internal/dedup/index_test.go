package dedup_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"discdb/internal/contribution"
	"discdb/internal/dedup"
)

type fakeFinder struct {
	mu      sync.Mutex
	calls   atomic.Int32
	matches map[string][]contribution.DiscMatch
	err     error
}

func (f *fakeFinder) FindDiscsByFingerprint(_ context.Context, fp string) ([]contribution.DiscMatch, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]contribution.DiscMatch(nil), f.matches[fp]...), nil
}

const fp = "0123456789abcdef0123456789abcdef"

func TestLookupExcludesOnlyCheckedDisc(t *testing.T) {
	finder := &fakeFinder{matches: map[string][]contribution.DiscMatch{
		fp: {
			{ContributionID: 1, DiscIndex: 1, DiscName: "Disc 1", Fingerprint: fp},
			{ContributionID: 2, DiscIndex: 1, DiscName: "Disc 1", Fingerprint: fp},
			{ContributionID: 2, DiscIndex: 3, DiscName: "Bonus", Fingerprint: fp},
		},
	}}
	idx, err := dedup.New(finder, 8)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := idx.Lookup(context.Background(), fp, 2, 3)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected matches %+v", got)
	}
	for _, m := range got {
		if m.ContributionID == 2 && m.DiscIndex == 3 {
			t.Fatalf("checked disc reported as its own duplicate: %+v", got)
		}
	}
	if got[1].ContributionID != 2 || got[1].DiscIndex != 1 {
		t.Fatalf("sibling disc of the same contribution missing: %+v", got)
	}

	if _, err := idx.Lookup(context.Background(), fp, 1, 1); err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if calls := finder.calls.Load(); calls != 1 {
		t.Fatalf("expected cached second lookup, finder called %d times", calls)
	}
}

func TestLookupSkipsMalformedFingerprints(t *testing.T) {
	finder := &fakeFinder{}
	idx, err := dedup.New(finder, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for _, value := range []string{"  ", "not-a-fingerprint", "0123456789ABCDEF0123456789ABCDEF"} {
		got, err := idx.Lookup(context.Background(), value, 1, 1)
		if err != nil || got != nil {
			t.Fatalf("Lookup(%q) = %+v, %v; want nil", value, got, err)
		}
	}
	if finder.calls.Load() != 0 {
		t.Fatal("finder should not be consulted for malformed fingerprints")
	}
}

func TestLookupPropagatesFinderError(t *testing.T) {
	boom := errors.New("disk gone")
	idx, err := dedup.New(&fakeFinder{err: boom}, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := idx.Lookup(context.Background(), fp, 1, 1); !errors.Is(err, boom) {
		t.Fatalf("expected finder error, got %v", err)
	}
	if idx.Len() != 0 {
		t.Fatal("failed lookup must not be cached")
	}
}

func TestRecordExtendsCachedList(t *testing.T) {
	finder := &fakeFinder{matches: map[string][]contribution.DiscMatch{
		fp: {{ContributionID: 1, DiscIndex: 1, Fingerprint: fp}},
	}}
	idx, err := dedup.New(finder, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	before, err := idx.Lookup(context.Background(), fp, 0, 0)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	idx.Record(contribution.DiscMatch{ContributionID: 5, DiscIndex: 2, Fingerprint: fp})
	idx.Record(contribution.DiscMatch{ContributionID: 5, DiscIndex: 2, DiscName: "renamed", Fingerprint: fp})

	after, err := idx.Lookup(context.Background(), fp, 0, 0)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(before) != 1 {
		t.Fatalf("earlier result changed: %+v", before)
	}
	if len(after) != 2 || after[1].ContributionID != 5 || after[1].DiscName != "renamed" {
		t.Fatalf("unexpected matches after record: %+v", after)
	}
	if finder.calls.Load() != 1 {
		t.Fatalf("record should update the cache without a finder call, got %d calls", finder.calls.Load())
	}

	idx.Forget(fp, 5, 2)
	after, _ = idx.Lookup(context.Background(), fp, 0, 0)
	if len(after) != 1 {
		t.Fatalf("expected forgotten disc to disappear, got %+v", after)
	}
}

func TestConcurrentLookupAndRecord(t *testing.T) {
	finder := &fakeFinder{matches: map[string][]contribution.DiscMatch{}}
	idx, err := dedup.New(finder, 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(id int64) {
			defer wg.Done()
			idx.Record(contribution.DiscMatch{ContributionID: id, DiscIndex: 1, Fingerprint: fp})
		}(int64(i + 1))
		go func() {
			defer wg.Done()
			if _, err := idx.Lookup(context.Background(), fp, 0, 0); err != nil {
				t.Errorf("Lookup: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := idx.Lookup(context.Background(), fp, 0, 0)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	seen := make(map[int64]bool)
	for _, m := range got {
		if seen[m.ContributionID] {
			t.Fatalf("duplicate match for contribution %d: %+v", m.ContributionID, got)
		}
		seen[m.ContributionID] = true
	}
}
