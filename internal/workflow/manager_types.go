package workflow

import (
	"time"

	"discdb/internal/contribution"
	"discdb/internal/disc"
	"discdb/internal/disc/fingerprint"
	"discdb/internal/validation"
)

// View is a contribution as returned to callers, with its encoded id and
// the actions the caller may take next.
type View struct {
	ExternalID   string
	Contribution *contribution.Contribution
	Allowed      []contribution.Action
}

// CreateRequest starts a new contribution.
type CreateRequest struct {
	MediaType        contribution.MediaType
	ExternalProvider string
	ExternalID       string
	Release          contribution.Release
}

// ReleaseEdit changes release metadata. Nil fields are left untouched.
type ReleaseEdit struct {
	ReleaseDate *time.Time
	ASIN        *string
	UPC         *string
	Title       *string
	Slug        *string
	RegionCode  *string
	Locale      *string
	MediaType   *contribution.MediaType
}

// ItemEdit changes the catalog metadata of one item. Nil fields are left
// untouched.
type ItemEdit struct {
	Name        *string
	Type        *contribution.ItemType
	Description *string
	Season      *int
	Episode     *int
}

// UploadLogRequest carries a raw ripper log for one disc.
type UploadLogRequest struct {
	ExternalID string
	DiscIndex  int
	Raw        []byte
	// Force replaces a different fingerprint already recorded for the disc.
	Force bool
}

// UploadLogResult describes the outcome of a log upload.
type UploadLogResult struct {
	View
	DiscIndex   int
	Fingerprint string
	// Previous is the replaced fingerprint when Force overrode a conflict.
	Previous   string
	LogPath    string
	Duplicates []contribution.DiscMatch
	Warnings   []string
	Stats      disc.Stats
}

// HashResult describes recorded stream files of a ripped disc.
type HashResult struct {
	View
	DiscHash string
	Files    []fingerprint.File
	// Others are encoded ids of other contributions with the same files.
	Others []string
}

// ValidationResult pairs a report with the contribution it was run on.
type ValidationResult struct {
	View
	Report validation.Report
}
