package contribution

import (
	"strings"
	"time"

	"discdb/internal/disc"
)

// MediaType classifies the catalogued release.
type MediaType string

const (
	MediaTypeMovie  MediaType = "movie"
	MediaTypeSeries MediaType = "series"
	MediaTypeBoxSet MediaType = "boxset"
)

// ParseMediaType converts user input into a MediaType.
func ParseMediaType(value string) (MediaType, bool) {
	switch MediaType(strings.ToLower(strings.TrimSpace(value))) {
	case MediaTypeMovie:
		return MediaTypeMovie, true
	case MediaTypeSeries:
		return MediaTypeSeries, true
	case MediaTypeBoxSet, "box-set", "box set":
		return MediaTypeBoxSet, true
	default:
		return "", false
	}
}

// ItemType classifies a title on a disc.
type ItemType string

const (
	ItemTypeMainMovie    ItemType = "MainMovie"
	ItemTypeExtra        ItemType = "Extra"
	ItemTypeEpisode      ItemType = "Episode"
	ItemTypeDeletedScene ItemType = "DeletedScene"
	ItemTypeTrailer      ItemType = "Trailer"
)

var itemTypes = []ItemType{
	ItemTypeMainMovie,
	ItemTypeExtra,
	ItemTypeEpisode,
	ItemTypeDeletedScene,
	ItemTypeTrailer,
}

// ItemTypes returns the closed set of item types.
func ItemTypes() []ItemType {
	cp := make([]ItemType, len(itemTypes))
	copy(cp, itemTypes)
	return cp
}

// ParseItemType resolves an item type case-insensitively.
func ParseItemType(value string) (ItemType, bool) {
	value = strings.TrimSpace(value)
	for _, t := range itemTypes {
		if strings.EqualFold(string(t), value) {
			return t, true
		}
	}
	return "", false
}

// Valid reports whether t is one of the known item types.
func (t ItemType) Valid() bool {
	for _, known := range itemTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Contribution is a user's submission describing one physical release.
type Contribution struct {
	ID               int64
	OwnerID          string
	Status           Status
	Version          int64
	MediaType        MediaType
	ExternalProvider string
	ExternalID       string
	Release          Release
	Discs            []Disc
	HashItems        []HashItem
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Release holds the retail metadata of the physical product.
type Release struct {
	ReleaseDate   time.Time
	ASIN          string
	UPC           string
	Title         string
	Slug          string
	RegionCode    string
	Locale        string
	FrontImageURL string
	BackImageURL  string
}

// Disc is one disc of the release.
type Disc struct {
	Index        int
	Fingerprint  string
	Format       disc.Format
	Name         string
	Slug         string
	LogsUploaded bool
	LogPath      string
	Items        []Item

	// Duplicates is filled from the dedup index before validation and is
	// never persisted.
	Duplicates []DiscMatch
}

// Item is one title of a disc.
type Item struct {
	Index        int
	Name         string
	Source       string
	Duration     time.Duration
	Size         int64
	ChapterCount int
	SegmentCount int
	SegmentMap   string
	Type         ItemType
	Description  string
	Season       *int
	Episode      *int
	Chapters     []Chapter
	AudioTracks  []AudioTrack
}

// Chapter is a chapter marker of an item.
type Chapter struct {
	Index int
	Title string
}

// AudioTrack is an audio stream of an item.
type AudioTrack struct {
	Index int
	Title string
}

// HashItem records one stream file of a ripped disc.
type HashItem struct {
	DiscHash  string
	Index     int
	Name      string
	Size      int64
	CreatedAt time.Time
}

// DiscMatch points at a disc of another contribution with the same
// fingerprint.
type DiscMatch struct {
	ContributionID int64
	DiscIndex      int
	DiscName       string
	Fingerprint    string
}

// DiscByIndex returns a pointer into c.Discs for the disc with index.
func (c *Contribution) DiscByIndex(index int) (*Disc, bool) {
	for i := range c.Discs {
		if c.Discs[i].Index == index {
			return &c.Discs[i], true
		}
	}
	return nil, false
}

// NextDiscIndex returns the 1-based index for a newly added disc.
func (c *Contribution) NextDiscIndex() int {
	next := 1
	for _, d := range c.Discs {
		if d.Index >= next {
			next = d.Index + 1
		}
	}
	return next
}

// Clone returns a deep copy of c.
func (c *Contribution) Clone() *Contribution {
	if c == nil {
		return nil
	}
	cp := *c
	if c.Discs != nil {
		cp.Discs = make([]Disc, len(c.Discs))
		for i, d := range c.Discs {
			cp.Discs[i] = d.clone()
		}
	}
	if c.HashItems != nil {
		cp.HashItems = append([]HashItem(nil), c.HashItems...)
	}
	return &cp
}

func (d Disc) clone() Disc {
	cp := d
	if d.Duplicates != nil {
		cp.Duplicates = append([]DiscMatch(nil), d.Duplicates...)
	}
	if d.Items != nil {
		cp.Items = make([]Item, len(d.Items))
		for i, item := range d.Items {
			cp.Items[i] = item.clone()
		}
	}
	return cp
}

func (it Item) clone() Item {
	cp := it
	if it.Season != nil {
		v := *it.Season
		cp.Season = &v
	}
	if it.Episode != nil {
		v := *it.Episode
		cp.Episode = &v
	}
	if it.Chapters != nil {
		cp.Chapters = append([]Chapter(nil), it.Chapters...)
	}
	if it.AudioTracks != nil {
		cp.AudioTracks = append([]AudioTrack(nil), it.AudioTracks...)
	}
	return cp
}
