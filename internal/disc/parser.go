package disc

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// MakeMKV attribute ids used by the parser.
const (
	attrType         = 1
	attrName         = 2
	attrLangCode     = 3
	attrLangName     = 4
	attrCodecID      = 5
	attrCodecShort   = 6
	attrCodecLong    = 7
	attrChapterCount = 8
	attrDuration     = 9
	attrSizeLabel    = 10
	attrSizeBytes    = 11
	attrBitRate      = 13
	attrChannels     = 14
	attrSourceFile   = 16
	attrResolution   = 19
	attrSegmentCount = 25
	attrSegmentMap   = 26
	attrOutputFile   = 27
	attrDescription  = 30
	attrVolumeName   = 32
	attrLayout       = 40
)

// MSG codes MakeMKV uses for read errors and damaged sectors.
var warningMessageCodes = map[int]struct{}{
	2003: {},
	5003: {},
	5010: {},
}

// ParseLog parses MakeMKV robot output into a DiscInfo tree.
func ParseLog(text string) (*DiscInfo, error) {
	p := newLogParser()
	for _, line := range strings.Split(text, "\n") {
		p.line(strings.TrimRight(line, "\r"))
	}
	return p.finish()
}

type logParser struct {
	info   DiscInfo
	titles []*titleBuilder
	byID   map[int]*titleBuilder
}

type titleBuilder struct {
	title   Title
	streams map[int]*Track
	hasSegs bool
}

func newLogParser() *logParser {
	return &logParser{byID: make(map[int]*titleBuilder)}
}

func (p *logParser) line(raw string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return
	}
	p.info.Stats.Lines++

	rec, ok := splitRecord(trimmed)
	if !ok {
		p.info.Stats.Skipped++
		return
	}
	switch rec.tag {
	case "CINFO":
		ok = p.discAttr(rec)
	case "TCOUNT":
		ok = p.titleCount(rec)
	case "TINFO":
		ok = p.titleAttr(rec)
	case "SINFO":
		ok = p.streamAttr(rec)
	case "MSG":
		p.message(rec)
		p.info.Stats.Messages++
		return
	case "DRV", "PRGV", "PRGT", "PRGC":
		p.info.Stats.Messages++
		return
	default:
		ok = false
	}
	if ok {
		p.info.Stats.Records++
	} else {
		p.info.Stats.Skipped++
	}
}

func (p *logParser) discAttr(rec record) bool {
	ids, ok := rec.ints(2)
	if !ok || len(rec.fields) < 3 {
		return false
	}
	value := rec.value()
	switch ids[0] {
	case attrType:
		p.info.Type = value
	case attrName:
		p.info.Name = value
	case attrVolumeName:
		p.info.VolumeName = value
	}
	return true
}

func (p *logParser) titleCount(rec record) bool {
	ids, ok := rec.ints(1)
	if !ok {
		return false
	}
	p.info.DeclaredTitles = ids[0]
	return true
}

func (p *logParser) titleAttr(rec record) bool {
	ids, ok := rec.ints(3)
	if !ok || len(rec.fields) < 4 {
		return false
	}
	tb := p.byID[ids[0]]
	if tb == nil {
		tb = &titleBuilder{title: Title{Index: ids[0]}, streams: make(map[int]*Track)}
		p.byID[ids[0]] = tb
		p.titles = append(p.titles, tb)
	}
	t := &tb.title
	value := rec.value()
	switch ids[1] {
	case attrName:
		t.Name = value
	case attrChapterCount:
		t.ChapterCount = parseInt(value)
	case attrDuration:
		t.Duration = parseClock(value)
	case attrSizeLabel:
		t.SizeLabel = value
	case attrSizeBytes:
		t.Size = parseInt64(value)
	case attrSourceFile:
		t.Source = value
	case attrSegmentCount:
		t.SegmentCount = parseInt(value)
		tb.hasSegs = true
	case attrSegmentMap:
		t.Segments = ParseSegmentMap(value)
	case attrOutputFile:
		t.OutputFile = value
	case attrDescription:
		t.Description = value
	}
	return true
}

func (p *logParser) streamAttr(rec record) bool {
	ids, ok := rec.ints(4)
	if !ok || len(rec.fields) < 5 {
		return false
	}
	tb := p.byID[ids[0]]
	if tb == nil {
		return false
	}
	track := tb.streams[ids[1]]
	if track == nil {
		track = &Track{Index: ids[1], Order: len(tb.streams), Type: TrackTypeUnknown}
		tb.streams[ids[1]] = track
	}
	value := rec.value()
	switch ids[2] {
	case attrType:
		track.Type = trackTypeFromValue(value)
	case attrName:
		track.Name = value
	case attrLangCode:
		track.Language = value
	case attrLangName:
		track.LanguageName = value
	case attrCodecID:
		track.CodecID = value
	case attrCodecShort:
		track.CodecShort = value
	case attrCodecLong:
		track.CodecLong = value
	case attrBitRate:
		track.BitRate = value
	case attrChannels:
		track.ChannelCount = parseInt(value)
	case attrResolution:
		track.Resolution = value
	case attrDescription:
		track.Description = value
	case attrLayout:
		track.ChannelLayout = value
	}
	return true
}

// message keeps read errors reported by the ripper as warnings.
func (p *logParser) message(rec record) {
	ids, ok := rec.ints(1)
	if !ok {
		return
	}
	if _, warn := warningMessageCodes[ids[0]]; !warn {
		return
	}
	text := ""
	if len(rec.fields) > 3 {
		text = strings.TrimSpace(rec.fields[3])
	}
	if text == "" {
		text = "ripper reported message " + strconv.Itoa(ids[0])
	}
	p.info.Warnings = append(p.info.Warnings, text)
}

func (p *logParser) finish() (*DiscInfo, error) {
	if p.info.Stats.Lines == 0 {
		return nil, &LogFormatError{Reason: "empty log"}
	}
	if len(p.titles) == 0 {
		return nil, &LogFormatError{Reason: "no title records"}
	}

	info := p.info
	info.Titles = make([]Title, 0, len(p.titles))
	uhd := false
	for _, tb := range p.titles {
		t := tb.title
		if !tb.hasSegs && len(t.Segments) > 0 {
			t.SegmentCount = t.Segments.Count()
		}
		t.Chapters = materializeChapters(t.ChapterCount)
		t.Tracks = tb.sortedTracks()
		for _, track := range t.Tracks {
			if track.IsUHD() {
				uhd = true
			}
		}
		info.Titles = append(info.Titles, t)
	}

	info.Format = FormatFromType(info.Type)
	if uhd {
		info.Format = FormatUHD
	}
	if IsUnusableLabel(info.Name) && info.VolumeName != "" {
		if name := DisplayName(info.VolumeName); name != "" {
			info.Name = name
		}
	}
	return &info, nil
}

func (tb *titleBuilder) sortedTracks() []Track {
	if len(tb.streams) == 0 {
		return nil
	}
	tracks := make([]Track, 0, len(tb.streams))
	for _, track := range tb.streams {
		tracks = append(tracks, *track)
	}
	sort.Slice(tracks, func(i, j int) bool { return tracks[i].Index < tracks[j].Index })
	for i := range tracks {
		tracks[i].Order = i
	}
	return tracks
}

func materializeChapters(count int) []Chapter {
	if count <= 0 {
		return nil
	}
	chapters := make([]Chapter, count)
	for i := range chapters {
		chapters[i] = Chapter{Index: i + 1, Title: ChapterTitle(i + 1)}
	}
	return chapters
}

// ChapterTitle returns the default label for a numbered chapter.
func ChapterTitle(n int) string {
	if n < 10 {
		return "Chapter 0" + strconv.Itoa(n)
	}
	return "Chapter " + strconv.Itoa(n)
}

// parseClock reads MakeMKV durations in h:mm:ss form.
func parseClock(value string) time.Duration {
	segments := strings.Split(strings.TrimSpace(value), ":")
	if len(segments) != 3 {
		return 0
	}
	var parts [3]int
	for i, seg := range segments {
		v, err := strconv.Atoi(seg)
		if err != nil || v < 0 {
			return 0
		}
		parts[i] = v
	}
	return time.Duration(parts[0])*time.Hour +
		time.Duration(parts[1])*time.Minute +
		time.Duration(parts[2])*time.Second
}
