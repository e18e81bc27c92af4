package disc

import (
	"fmt"
	"time"

	"discdb/internal/services"
)

// Format is the physical disc format tag.
type Format string

const (
	FormatUHD    Format = "4K"
	FormatBluRay Format = "Blu-ray"
	FormatDVD    Format = "DVD"
)

var knownFormats = []Format{FormatUHD, FormatBluRay, FormatDVD}

// Formats returns the closed set of supported disc formats.
func Formats() []Format {
	cp := make([]Format, len(knownFormats))
	copy(cp, knownFormats)
	return cp
}

// ParseFormat resolves a user supplied format tag, accepting common spellings.
func ParseFormat(value string) (Format, bool) {
	switch normalizeToken(value) {
	case "4k", "uhd", "4kuhd", "ultrahd", "uhdbluray", "4kbluray":
		return FormatUHD, true
	case "bluray", "bd", "bluraydisc":
		return FormatBluRay, true
	case "dvd":
		return FormatDVD, true
	default:
		return "", false
	}
}

// Valid reports whether f is one of the supported formats.
func (f Format) Valid() bool {
	for _, known := range knownFormats {
		if f == known {
			return true
		}
	}
	return false
}

// DiscInfo is the parsed structure of one ripper log.
type DiscInfo struct {
	Name           string
	VolumeName     string
	Type           string
	Format         Format
	DeclaredTitles int
	Titles         []Title
	Warnings       []string
	Stats          Stats
}

// Title is one playable title reported by the ripper.
type Title struct {
	Index        int
	Name         string
	Duration     time.Duration
	Size         int64
	SizeLabel    string
	ChapterCount int
	Chapters     []Chapter
	SegmentCount int
	Segments     SegmentMap
	Source       string
	OutputFile   string
	Description  string
	Tracks       []Track
}

// Chapter is one chapter marker within a title.
type Chapter struct {
	Index int
	Title string
}

// Stats counts how the parser classified the input lines.
type Stats struct {
	Lines    int
	Records  int
	Messages int
	Skipped  int
}

// AudioTracks returns the audio streams of the title in stream order.
func (t Title) AudioTracks() []Track {
	var out []Track
	for _, track := range t.Tracks {
		if track.IsAudio() {
			out = append(out, track)
		}
	}
	return out
}

// LogFormatError reports text that is not a recognizable ripper log.
type LogFormatError struct {
	Reason string
}

func (e *LogFormatError) Error() string {
	return fmt.Sprintf("unrecognized ripper log: %s", e.Reason)
}

// Is matches services.ErrLogFormat.
func (e *LogFormatError) Is(target error) bool {
	return target == services.ErrLogFormat
}
