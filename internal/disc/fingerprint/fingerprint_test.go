package fingerprint

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"discdb/internal/disc"
)

func titles(specs ...[3]int) []disc.Title {
	out := make([]disc.Title, 0, len(specs))
	for i, s := range specs {
		out = append(out, disc.Title{
			Index:        i,
			Name:         "title",
			Duration:     time.Duration(s[0]) * time.Second,
			ChapterCount: s[1],
			SegmentCount: s[2],
		})
	}
	return out
}

func TestComputeShape(t *testing.T) {
	fp := Compute(&disc.DiscInfo{Titles: titles([3]int{5400, 8, 3}, [3]int{120, 1, 1})})
	if !Valid(fp) {
		t.Fatalf("fingerprint %q is not 32 lowercase hex chars", fp)
	}
	if Compute(&disc.DiscInfo{}) != "" || Compute(nil) != "" {
		t.Fatal("empty disc should have no fingerprint")
	}
}

func TestComputeOrderIndependent(t *testing.T) {
	a := Compute(&disc.DiscInfo{Titles: titles([3]int{5400, 8, 3}, [3]int{120, 1, 1}, [3]int{300, 2, 1})})
	b := Compute(&disc.DiscInfo{Titles: titles([3]int{300, 2, 1}, [3]int{5400, 8, 3}, [3]int{120, 1, 1})})
	if a != b {
		t.Fatalf("permuted titles changed fingerprint: %s vs %s", a, b)
	}
}

func TestComputeNameInsensitive(t *testing.T) {
	base := titles([3]int{5400, 8, 3}, [3]int{120, 1, 1})
	renamed := titles([3]int{5400, 8, 3}, [3]int{120, 1, 1})
	renamed[0].Name = "Something Else"
	renamed[0].Source = "00042.mpls"
	renamed[1].OutputFile = "extra.mkv"
	if Compute(&disc.DiscInfo{Titles: base}) != Compute(&disc.DiscInfo{Name: "Other", Titles: renamed}) {
		t.Fatal("names should not affect the fingerprint")
	}
}

func TestComputeStructureSensitive(t *testing.T) {
	base := Compute(&disc.DiscInfo{Titles: titles([3]int{5400, 8, 3}, [3]int{120, 1, 1})})
	variants := map[string][]disc.Title{
		"duration": titles([3]int{5401, 8, 3}, [3]int{120, 1, 1}),
		"chapters": titles([3]int{5400, 9, 3}, [3]int{120, 1, 1}),
		"segments": titles([3]int{5400, 8, 4}, [3]int{120, 1, 1}),
		"extra":    titles([3]int{5400, 8, 3}, [3]int{120, 1, 1}, [3]int{60, 1, 1}),
	}
	for name, ts := range variants {
		if Compute(&disc.DiscInfo{Titles: ts}) == base {
			t.Errorf("%s change did not alter fingerprint", name)
		}
	}
}

func TestHasherGranularity(t *testing.T) {
	coarse := NewHasher(time.Minute)
	a := coarse.FromTuples([]Tuple{{Duration: 5400 * time.Second, ChapterCount: 8, SegmentCount: 1}})
	b := coarse.FromTuples([]Tuple{{Duration: 5410 * time.Second, ChapterCount: 8, SegmentCount: 1}})
	if a != b {
		t.Fatal("durations within one minute should match at minute granularity")
	}
	fine := NewHasher(0)
	if fine.Granularity != DefaultGranularity {
		t.Fatalf("expected default granularity, got %s", fine.Granularity)
	}
	if fine.FromTuples([]Tuple{{Duration: 5400 * time.Second, ChapterCount: 8, SegmentCount: 1}}) ==
		fine.FromTuples([]Tuple{{Duration: 5410 * time.Second, ChapterCount: 8, SegmentCount: 1}}) {
		t.Fatal("durations ten seconds apart should differ at second granularity")
	}
}

func TestComputeParsedLogScenario(t *testing.T) {
	text := "TINFO:0,8,0,\"8\"\nTINFO:0,9,0,\"1:30:00\"\nTINFO:0,25,0,\"1\"\n" +
		"TINFO:1,8,0,\"1\"\nTINFO:1,9,0,\"0:02:00\"\nTINFO:1,25,0,\"1\"\n"
	info, err := disc.ParseLog(text)
	if err != nil {
		t.Fatalf("ParseLog: %v", err)
	}
	fromLog := Compute(info)
	fromTuples := NewHasher(time.Second).FromTuples([]Tuple{
		{Duration: 120 * time.Second, ChapterCount: 1, SegmentCount: 1},
		{Duration: 5400 * time.Second, ChapterCount: 8, SegmentCount: 1},
	})
	if fromLog != fromTuples {
		t.Fatalf("log fingerprint %s != tuple fingerprint %s", fromLog, fromTuples)
	}
}

func writeStream(t *testing.T, dir, name string, size int, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("chtimes %s: %v", name, err)
	}
}

func TestScanFilesAndHash(t *testing.T) {
	stamp := time.Date(2019, 3, 4, 5, 6, 7, 0, time.UTC)
	dirA := t.TempDir()
	writeStream(t, dirA, "00001.m2ts", 10, stamp)
	writeStream(t, dirA, "00002.m2ts", 20, stamp.Add(time.Hour))
	if err := os.Mkdir(filepath.Join(dirA, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	files, err := ScanFiles(context.Background(), dirA)
	if err != nil {
		t.Fatalf("ScanFiles: %v", err)
	}
	if len(files) != 2 || files[0].Index != 1 || files[1].Name != "00002.m2ts" || files[1].Size != 20 {
		t.Fatalf("unexpected scan result %+v", files)
	}
	if !files[0].CreatedAt.Equal(stamp) {
		t.Fatalf("unexpected timestamp %s", files[0].CreatedAt)
	}

	dirB := t.TempDir()
	writeStream(t, dirB, "a.m2ts", 10, stamp)
	writeStream(t, dirB, "b.m2ts", 20, stamp.Add(time.Hour))
	renamed, err := ScanFiles(context.Background(), dirB)
	if err != nil {
		t.Fatalf("ScanFiles: %v", err)
	}
	if FilesHash(files) != FilesHash(renamed) {
		t.Fatal("file names should not affect the hash")
	}

	reversed := []File{files[1], files[0]}
	if FilesHash(reversed) != FilesHash(files) {
		t.Fatal("hash should follow index order, not slice order")
	}

	changed := append([]File(nil), files...)
	changed[1].Size++
	if FilesHash(changed) == FilesHash(files) {
		t.Fatal("size change should alter the hash")
	}
	if FilesHash(nil) != "" {
		t.Fatal("no files should hash to empty")
	}
}

func TestScanFilesMissingDir(t *testing.T) {
	if _, err := ScanFiles(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
