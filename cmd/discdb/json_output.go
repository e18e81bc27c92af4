package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"discdb/internal/contribution"
	"discdb/internal/disc"
	"discdb/internal/validation"
	"discdb/internal/workflow"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type titleJSON struct {
	Index       int      `json:"index"`
	Name        string   `json:"name,omitempty"`
	DurationSec int64    `json:"duration_seconds"`
	Chapters    int      `json:"chapters"`
	Segments    int      `json:"segment_count"`
	SegmentMap  string   `json:"segment_map,omitempty"`
	Source      string   `json:"source,omitempty"`
	SizeBytes   int64    `json:"size_bytes,omitempty"`
	Audio       []string `json:"audio,omitempty"`
}

type discInfoOutput struct {
	Name        string      `json:"name,omitempty"`
	VolumeName  string      `json:"volume_name,omitempty"`
	Format      string      `json:"format,omitempty"`
	Fingerprint string      `json:"fingerprint"`
	Titles      []titleJSON `json:"titles"`
	Warnings    []string    `json:"warnings,omitempty"`
	Stats       disc.Stats  `json:"stats"`
}

func discInfoJSON(info *disc.DiscInfo, fp string) discInfoOutput {
	out := discInfoOutput{
		Name:        info.Name,
		VolumeName:  info.VolumeName,
		Format:      string(info.Format),
		Fingerprint: fp,
		Titles:      make([]titleJSON, 0, len(info.Titles)),
		Warnings:    info.Warnings,
		Stats:       info.Stats,
	}
	for _, t := range info.Titles {
		tj := titleJSON{
			Index:       t.Index,
			Name:        t.Name,
			DurationSec: int64(t.Duration / time.Second),
			Chapters:    t.ChapterCount,
			Segments:    t.SegmentCount,
			SegmentMap:  t.Segments.String(),
			Source:      t.Source,
			SizeBytes:   t.Size,
		}
		for _, track := range t.AudioTracks() {
			tj.Audio = append(tj.Audio, track.Label())
		}
		out.Titles = append(out.Titles, tj)
	}
	return out
}

type itemJSON struct {
	Index       int      `json:"index"`
	Name        string   `json:"name,omitempty"`
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	DurationSec int64    `json:"duration_seconds"`
	Chapters    int      `json:"chapters"`
	Segments    int      `json:"segment_count"`
	SegmentMap  string   `json:"segment_map,omitempty"`
	Source      string   `json:"source,omitempty"`
	Season      *int     `json:"season,omitempty"`
	Episode     *int     `json:"episode,omitempty"`
	Audio       []string `json:"audio,omitempty"`
}

type duplicateJSON struct {
	Contribution string `json:"contribution"`
	Disc         int    `json:"disc"`
	Name         string `json:"name,omitempty"`
}

type discJSON struct {
	Index        int             `json:"index"`
	Name         string          `json:"name"`
	Slug         string          `json:"slug,omitempty"`
	Format       string          `json:"format,omitempty"`
	Fingerprint  string          `json:"fingerprint,omitempty"`
	LogsUploaded bool            `json:"logs_uploaded"`
	LogPath      string          `json:"log_path,omitempty"`
	Items        []itemJSON      `json:"items,omitempty"`
	Duplicates   []duplicateJSON `json:"duplicates,omitempty"`
}

type releaseJSON struct {
	Title       string `json:"title,omitempty"`
	Slug        string `json:"slug,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
	ASIN        string `json:"asin,omitempty"`
	UPC         string `json:"upc,omitempty"`
	RegionCode  string `json:"region_code,omitempty"`
	Locale      string `json:"locale,omitempty"`
	FrontImage  string `json:"front_image,omitempty"`
	BackImage   string `json:"back_image,omitempty"`
}

type contributionJSON struct {
	ID               string      `json:"id"`
	Owner            string      `json:"owner"`
	Status           string      `json:"status"`
	Version          int64       `json:"version"`
	MediaType        string      `json:"media_type"`
	ExternalProvider string      `json:"external_provider,omitempty"`
	ExternalID       string      `json:"external_id,omitempty"`
	Release          releaseJSON `json:"release"`
	Discs            []discJSON  `json:"discs"`
	HashItems        int         `json:"hash_items"`
	Allowed          []string    `json:"allowed_actions"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

func contributionView(view *workflow.View, encode func(int64) string) contributionJSON {
	c := view.Contribution
	out := contributionJSON{
		ID:               view.ExternalID,
		Owner:            c.OwnerID,
		Status:           string(c.Status),
		Version:          c.Version,
		MediaType:        string(c.MediaType),
		ExternalProvider: c.ExternalProvider,
		ExternalID:       c.ExternalID,
		Release: releaseJSON{
			Title:      c.Release.Title,
			Slug:       c.Release.Slug,
			ASIN:       c.Release.ASIN,
			UPC:        c.Release.UPC,
			RegionCode: c.Release.RegionCode,
			Locale:     c.Release.Locale,
			FrontImage: c.Release.FrontImageURL,
			BackImage:  c.Release.BackImageURL,
		},
		Discs:     make([]discJSON, 0, len(c.Discs)),
		HashItems: len(c.HashItems),
		Allowed:   make([]string, 0, len(view.Allowed)),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if !c.Release.ReleaseDate.IsZero() {
		out.Release.ReleaseDate = c.Release.ReleaseDate.Format(dateLayout)
	}
	for _, a := range view.Allowed {
		out.Allowed = append(out.Allowed, string(a))
	}
	for _, d := range c.Discs {
		dj := discJSON{
			Index:        d.Index,
			Name:         d.Name,
			Slug:         d.Slug,
			Format:       string(d.Format),
			Fingerprint:  d.Fingerprint,
			LogsUploaded: d.LogsUploaded,
			LogPath:      d.LogPath,
		}
		for _, it := range d.Items {
			dj.Items = append(dj.Items, itemView(it))
		}
		for _, m := range d.Duplicates {
			dj.Duplicates = append(dj.Duplicates, duplicateJSON{
				Contribution: encode(m.ContributionID),
				Disc:         m.DiscIndex,
				Name:         m.DiscName,
			})
		}
		out.Discs = append(out.Discs, dj)
	}
	return out
}

func itemView(it contribution.Item) itemJSON {
	out := itemJSON{
		Index:       it.Index,
		Name:        it.Name,
		Type:        string(it.Type),
		Description: it.Description,
		DurationSec: int64(it.Duration / time.Second),
		Chapters:    it.ChapterCount,
		Segments:    it.SegmentCount,
		SegmentMap:  it.SegmentMap,
		Source:      it.Source,
		Season:      it.Season,
		Episode:     it.Episode,
	}
	for _, track := range it.AudioTracks {
		out.Audio = append(out.Audio, track.Title)
	}
	return out
}

type ruleJSON struct {
	Rule     string   `json:"rule"`
	Severity string   `json:"severity"`
	Passed   bool     `json:"passed"`
	Messages []string `json:"messages,omitempty"`
}

type validationJSON struct {
	ID         string     `json:"id"`
	Eligible   bool       `json:"eligible"`
	Rules      []ruleJSON `json:"rules"`
	Failures   []string   `json:"failures,omitempty"`
	Advisories []string   `json:"advisories,omitempty"`
}

func validationView(extID string, report validation.Report) validationJSON {
	out := validationJSON{
		ID:         extID,
		Eligible:   report.Eligible(),
		Rules:      make([]ruleJSON, 0, len(report.Results)),
		Failures:   report.Failures(),
		Advisories: report.Advisories(),
	}
	for _, res := range report.Results {
		out.Rules = append(out.Rules, ruleJSON{
			Rule:     res.Rule,
			Severity: string(res.Severity),
			Passed:   res.Passed(),
			Messages: res.Messages,
		})
	}
	return out
}
