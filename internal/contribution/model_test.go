package contribution

import (
	"errors"
	"testing"
	"time"

	"discdb/internal/disc"
	"discdb/internal/services"
)

func TestApplyFingerprint(t *testing.T) {
	d := &Disc{Index: 2}
	if _, err := d.ApplyFingerprint("aaaa", false); err != nil {
		t.Fatalf("first fingerprint: %v", err)
	}
	if _, err := d.ApplyFingerprint("aaaa", false); err != nil {
		t.Fatalf("same fingerprint: %v", err)
	}
	prev, err := d.ApplyFingerprint("bbbb", false)
	if !errors.Is(err, services.ErrFingerprintConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if prev != "aaaa" || d.Fingerprint != "aaaa" {
		t.Fatalf("fingerprint replaced without force: %q", d.Fingerprint)
	}
	prev, err = d.ApplyFingerprint("bbbb", true)
	if err != nil || prev != "aaaa" || d.Fingerprint != "bbbb" {
		t.Fatalf("forced replace failed: prev=%q fp=%q err=%v", prev, d.Fingerprint, err)
	}
}

func TestItemsFromDisc(t *testing.T) {
	info, err := disc.ParseLog("TINFO:0,9,0,\"0:02:00\"\nTINFO:0,8,0,\"1\"\n" +
		"TINFO:1,9,0,\"1:30:00\"\nTINFO:1,8,0,\"12\"\nTINFO:1,16,0,\"00800.mpls\"\nTINFO:1,26,0,\"1,2,3,7\"\n" +
		"SINFO:1,1,1,6202,\"Audio\"\nSINFO:1,1,30,0,\"English 5.1\"\n")
	if err != nil {
		t.Fatalf("ParseLog: %v", err)
	}
	items := ItemsFromDisc(info, MediaTypeMovie)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].Type != ItemTypeExtra || items[1].Type != ItemTypeMainMovie {
		t.Fatalf("longest title should be the main movie: %s %s", items[0].Type, items[1].Type)
	}
	main := items[1]
	if main.Index != 2 || main.Duration != 90*time.Minute || main.Source != "00800.mpls" {
		t.Fatalf("unexpected item %+v", main)
	}
	if main.SegmentMap != "1-3,7" || main.SegmentCount != 4 {
		t.Fatalf("unexpected segments %q %d", main.SegmentMap, main.SegmentCount)
	}
	if len(main.Chapters) != 12 || main.Chapters[11].Title != "Chapter 12" {
		t.Fatalf("unexpected chapters %+v", main.Chapters)
	}
	if len(main.AudioTracks) != 1 || main.AudioTracks[0].Title != "English 5.1" {
		t.Fatalf("unexpected audio tracks %+v", main.AudioTracks)
	}

	series := ItemsFromDisc(info, MediaTypeSeries)
	for _, it := range series {
		if it.Type != ItemTypeExtra {
			t.Fatalf("series items should default to Extra, got %s", it.Type)
		}
	}
}

func TestCloneIsDeep(t *testing.T) {
	season := 1
	c := &Contribution{Discs: []Disc{{Index: 1, Items: []Item{{Index: 1, Season: &season, Chapters: []Chapter{{Index: 1}}}}}}}
	cp := c.Clone()
	*cp.Discs[0].Items[0].Season = 9
	cp.Discs[0].Items[0].Chapters[0].Title = "x"
	if season != 1 || c.Discs[0].Items[0].Chapters[0].Title != "" {
		t.Fatal("Clone shares nested storage")
	}
	if c.NextDiscIndex() != 2 {
		t.Fatalf("NextDiscIndex = %d", c.NextDiscIndex())
	}
	if _, ok := c.DiscByIndex(3); ok {
		t.Fatal("unexpected disc 3")
	}
}

func TestItemTypeHelpers(t *testing.T) {
	if it, ok := ParseItemType("deletedscene"); !ok || it != ItemTypeDeletedScene {
		t.Fatalf("ParseItemType = %q %v", it, ok)
	}
	if ItemType("mainmovie").Valid() || !ItemTypeTrailer.Valid() {
		t.Fatal("Valid should require the canonical spelling")
	}
	if mt, ok := ParseMediaType("Box-Set"); !ok || mt != MediaTypeBoxSet {
		t.Fatalf("ParseMediaType = %q %v", mt, ok)
	}
}
