package disc

import "strings"

// TrackType represents the general classification for a MakeMKV stream.
type TrackType string

const (
	TrackTypeUnknown  TrackType = "unknown"
	TrackTypeVideo    TrackType = "video"
	TrackTypeAudio    TrackType = "audio"
	TrackTypeSubtitle TrackType = "subtitle"
	TrackTypeData     TrackType = "data"
)

// Track captures the parsed metadata for a stream associated with a title.
type Track struct {
	Index         int
	Order         int
	Type          TrackType
	CodecID       string
	CodecShort    string
	CodecLong     string
	Language      string
	LanguageName  string
	Name          string
	Description   string
	Resolution    string
	ChannelCount  int
	ChannelLayout string
	BitRate       string
}

// IsAudio returns true when the track represents an audio stream.
func (t Track) IsAudio() bool {
	return t.Type == TrackTypeAudio
}

// IsForced returns true for subtitle tracks marked as forced-only.
// MakeMKV reports these with "(forced only)" suffix in the track name.
func (t Track) IsForced() bool {
	return t.Type == TrackTypeSubtitle &&
		strings.Contains(strings.ToLower(t.Name), "(forced only)")
}

// Label returns the human readable title used for the track in the catalog:
// the ripper's description, then its name, then "language codec".
func (t Track) Label() string {
	if d := strings.TrimSpace(t.Description); d != "" {
		return d
	}
	if n := strings.TrimSpace(t.Name); n != "" {
		return n
	}
	parts := make([]string, 0, 2)
	if lang := strings.TrimSpace(firstNonEmpty(t.LanguageName, t.Language)); lang != "" {
		parts = append(parts, lang)
	}
	if codec := strings.TrimSpace(firstNonEmpty(t.CodecLong, t.CodecShort)); codec != "" {
		parts = append(parts, codec)
	}
	return strings.Join(parts, " ")
}

// IsUHD reports whether a video stream carries a 2160p picture.
func (t Track) IsUHD() bool {
	if t.Type != TrackTypeVideo {
		return false
	}
	width, _, ok := strings.Cut(strings.TrimSpace(t.Resolution), "x")
	if !ok {
		return false
	}
	return parseInt(width) >= 3840
}

func trackTypeFromValue(value string) TrackType {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "video":
		return TrackTypeVideo
	case "audio":
		return TrackTypeAudio
	case "subtitles", "subtitle":
		return TrackTypeSubtitle
	case "":
		return TrackTypeUnknown
	default:
		return TrackTypeData
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
