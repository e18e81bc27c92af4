package workflow

import (
	"discdb/internal/contribution"
	"discdb/internal/disc/fingerprint"
)

// tuplesFromItems reduces stored items to fingerprint tuples, the same
// reduction the parser output goes through.
func tuplesFromItems(items []contribution.Item) []fingerprint.Tuple {
	tuples := make([]fingerprint.Tuple, 0, len(items))
	for _, it := range items {
		tuples = append(tuples, fingerprint.Tuple{
			Duration:     it.Duration,
			ChapterCount: it.ChapterCount,
			SegmentCount: it.SegmentCount,
		})
	}
	return tuples
}
