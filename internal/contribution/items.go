package contribution

import "discdb/internal/disc"

// ItemsFromDisc converts parsed titles into catalog items. Items are numbered
// from 1 in log order and default to the Extra type; the longest title is
// marked as the main movie when the release is a movie.
func ItemsFromDisc(info *disc.DiscInfo, media MediaType) []Item {
	if info == nil || len(info.Titles) == 0 {
		return nil
	}
	items := make([]Item, 0, len(info.Titles))
	longest := 0
	for i, t := range info.Titles {
		item := Item{
			Index:        i + 1,
			Name:         t.Name,
			Source:       t.Source,
			Duration:     t.Duration,
			Size:         t.Size,
			ChapterCount: t.ChapterCount,
			SegmentCount: t.SegmentCount,
			SegmentMap:   t.Segments.String(),
			Type:         ItemTypeExtra,
			Description:  t.Description,
		}
		for _, ch := range t.Chapters {
			item.Chapters = append(item.Chapters, Chapter{Index: ch.Index, Title: ch.Title})
		}
		for n, track := range t.AudioTracks() {
			item.AudioTracks = append(item.AudioTracks, AudioTrack{Index: n + 1, Title: track.Label()})
		}
		if t.Duration > info.Titles[longest].Duration {
			longest = i
		}
		items = append(items, item)
	}
	if media == MediaTypeMovie {
		items[longest].Type = ItemTypeMainMovie
	}
	return items
}
