package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"time"

	"discdb/internal/disc"
)

// DefaultGranularity is the rounding step applied to title durations.
const DefaultGranularity = time.Second

// Tuple is the structural summary of one title.
type Tuple struct {
	Duration     time.Duration
	ChapterCount int
	SegmentCount int
}

// Hasher computes fingerprints with a fixed duration granularity.
type Hasher struct {
	Granularity time.Duration
}

// NewHasher returns a Hasher; a non-positive granularity selects the default.
func NewHasher(granularity time.Duration) Hasher {
	if granularity <= 0 {
		granularity = DefaultGranularity
	}
	return Hasher{Granularity: granularity}
}

// Compute fingerprints a parsed disc with the default granularity.
func Compute(info *disc.DiscInfo) string {
	return NewHasher(DefaultGranularity).Compute(info)
}

// Compute fingerprints a parsed disc. A nil or title-less disc yields "".
func (h Hasher) Compute(info *disc.DiscInfo) string {
	if info == nil {
		return ""
	}
	return h.FromTuples(TuplesFromTitles(info.Titles))
}

// TuplesFromTitles reduces parsed titles to fingerprint tuples.
func TuplesFromTitles(titles []disc.Title) []Tuple {
	tuples := make([]Tuple, 0, len(titles))
	for _, t := range titles {
		tuples = append(tuples, Tuple{
			Duration:     t.Duration,
			ChapterCount: t.ChapterCount,
			SegmentCount: t.SegmentCount,
		})
	}
	return tuples
}

// FromTuples hashes the tuples independent of their order.
func (h Hasher) FromTuples(tuples []Tuple) string {
	if len(tuples) == 0 {
		return ""
	}
	granularity := h.Granularity
	if granularity <= 0 {
		granularity = DefaultGranularity
	}
	encoded := make([]string, 0, len(tuples))
	for _, t := range tuples {
		encoded = append(encoded, t.encode(granularity))
	}
	sort.Strings(encoded)
	sum := sha256.Sum256([]byte(strings.Join(encoded, "|")))
	return hex.EncodeToString(sum[:16])
}

func (t Tuple) encode(granularity time.Duration) string {
	steps := int64(t.Duration.Round(granularity) / granularity)
	return strconv.FormatInt(steps, 10) + ":" +
		strconv.Itoa(t.ChapterCount) + ":" +
		strconv.Itoa(t.SegmentCount)
}

// Valid reports whether value has the shape of a fingerprint.
func Valid(value string) bool {
	if len(value) != 32 {
		return false
	}
	_, err := hex.DecodeString(value)
	return err == nil && strings.ToLower(value) == value
}
