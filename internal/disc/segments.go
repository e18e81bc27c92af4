package disc

import (
	"strconv"
	"strings"
)

// SegmentRange is an inclusive run of consecutive segment numbers.
type SegmentRange struct {
	Start int
	End   int
}

// SegmentMap lists the stream segments a title plays, as ordered contiguous
// ranges. Its string form is "1-3,7".
type SegmentMap []SegmentRange

// ParseSegmentMap reads a comma separated list of segment numbers and ranges.
// Unparseable entries are dropped. A value that directly follows the previous
// range extends it; repeats and backward jumps start a new range so the play
// order and segment count are kept.
func ParseSegmentMap(value string) SegmentMap {
	var out SegmentMap
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		start, end := part, part
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, end = lo, hi
		}
		a, errA := strconv.Atoi(strings.TrimSpace(start))
		b, errB := strconv.Atoi(strings.TrimSpace(end))
		if errA != nil || errB != nil || a < 0 || b < a {
			continue
		}
		out = out.add(SegmentRange{Start: a, End: b})
	}
	return out
}

func (m SegmentMap) add(r SegmentRange) SegmentMap {
	if n := len(m); n > 0 {
		last := &m[n-1]
		if r.Start == last.End+1 {
			last.End = r.End
			return m
		}
	}
	return append(m, r)
}

// Count returns the number of segments the map plays, repeats included.
func (m SegmentMap) Count() int {
	total := 0
	for _, r := range m {
		total += r.End - r.Start + 1
	}
	return total
}

func (m SegmentMap) String() string {
	parts := make([]string, 0, len(m))
	for _, r := range m {
		if r.Start == r.End {
			parts = append(parts, strconv.Itoa(r.Start))
			continue
		}
		parts = append(parts, strconv.Itoa(r.Start)+"-"+strconv.Itoa(r.End))
	}
	return strings.Join(parts, ",")
}
