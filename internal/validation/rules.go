package validation

import (
	"fmt"
	"regexp"
	"strings"

	"discdb/internal/contribution"
)

var (
	asinPattern   = regexp.MustCompile(`^[A-Z0-9]{10}$`)
	upcPattern    = regexp.MustCompile(`^[0-9]{12,13}$`)
	slugPattern   = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
	regionPattern = regexp.MustCompile(`^[A-Z0-9]{1,3}$`)
	localePattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]{2})?$`)
)

// RequiredFields checks the retail metadata of the release.
type RequiredFields struct{}

func (RequiredFields) Name() string { return "required-fields" }

func (v RequiredFields) Validate(c *contribution.Contribution) Result {
	res := Result{Rule: v.Name(), Severity: SeverityError}
	if c == nil {
		res.Messages = append(res.Messages, "contribution is missing")
		return res
	}
	r := c.Release
	if r.ReleaseDate.IsZero() {
		res.Messages = append(res.Messages, "release date is required")
	}
	check := func(field, value string, pattern *regexp.Regexp, hint string) {
		if value == "" {
			res.Messages = append(res.Messages, field+" is required")
			return
		}
		if !pattern.MatchString(value) {
			res.Messages = append(res.Messages, fmt.Sprintf("%s %q is invalid: %s", field, value, hint))
		}
	}
	check("ASIN", r.ASIN, asinPattern, "expected 10 uppercase letters or digits")
	check("UPC", r.UPC, upcPattern, "expected 12 or 13 digits")
	check("slug", r.Slug, slugPattern, "expected lowercase words joined by hyphens")
	check("region code", r.RegionCode, regionPattern, "expected 1 to 3 uppercase letters or digits")
	check("locale", r.Locale, localePattern, "expected a language code such as en or en-us")
	return res
}

// FrontImage requires a front cover image.
type FrontImage struct{}

func (FrontImage) Name() string { return "front-image" }

func (v FrontImage) Validate(c *contribution.Contribution) Result {
	res := Result{Rule: v.Name(), Severity: SeverityError}
	if c == nil || strings.TrimSpace(c.Release.FrontImageURL) == "" {
		res.Messages = append(res.Messages, "front image is required")
	}
	return res
}

// DiscCompleteness requires at least one disc and a parsed log for each.
type DiscCompleteness struct{}

func (DiscCompleteness) Name() string { return "disc-completeness" }

func (v DiscCompleteness) Validate(c *contribution.Contribution) Result {
	res := Result{Rule: v.Name(), Severity: SeverityError}
	if c == nil || len(c.Discs) == 0 {
		res.Messages = append(res.Messages, "at least one disc is required")
		return res
	}
	for _, d := range c.Discs {
		if !d.LogsUploaded {
			res.Messages = append(res.Messages, fmt.Sprintf("disc %d has no uploaded log", d.Index))
			continue
		}
		if d.Fingerprint == "" {
			res.Messages = append(res.Messages, fmt.Sprintf("disc %d has no fingerprint", d.Index))
		}
	}
	return res
}

// DuplicateAdvisory flags discs already catalogued by other contributions.
type DuplicateAdvisory struct{}

func (DuplicateAdvisory) Name() string { return "duplicate-advisory" }

func (v DuplicateAdvisory) Validate(c *contribution.Contribution) Result {
	res := Result{Rule: v.Name(), Severity: SeverityAdvisory}
	if c == nil {
		return res
	}
	for _, d := range c.Discs {
		if len(d.Duplicates) == 0 {
			continue
		}
		ids := make([]string, 0, len(d.Duplicates))
		for _, m := range d.Duplicates {
			ids = append(ids, fmt.Sprintf("%d/%d", m.ContributionID, m.DiscIndex))
		}
		res.Messages = append(res.Messages, fmt.Sprintf("disc %d matches existing discs %s", d.Index, strings.Join(ids, ", ")))
	}
	return res
}

// DiscFormats requires each disc to carry a supported format.
type DiscFormats struct{}

func (DiscFormats) Name() string { return "disc-formats" }

func (v DiscFormats) Validate(c *contribution.Contribution) Result {
	res := Result{Rule: v.Name(), Severity: SeverityError}
	if c == nil {
		return res
	}
	for _, d := range c.Discs {
		if !d.Format.Valid() {
			res.Messages = append(res.Messages, fmt.Sprintf("disc %d format %q is not supported", d.Index, d.Format))
		}
	}
	return res
}

// ItemMetadata checks item types and episode numbering.
type ItemMetadata struct{}

func (ItemMetadata) Name() string { return "item-metadata" }

func (v ItemMetadata) Validate(c *contribution.Contribution) Result {
	res := Result{Rule: v.Name(), Severity: SeverityError}
	if c == nil {
		return res
	}
	for _, d := range c.Discs {
		for _, it := range d.Items {
			if !it.Type.Valid() {
				res.Messages = append(res.Messages, fmt.Sprintf("disc %d item %d type %q is not supported", d.Index, it.Index, it.Type))
				continue
			}
			if it.Type == contribution.ItemTypeEpisode && (it.Season == nil || it.Episode == nil) {
				res.Messages = append(res.Messages, fmt.Sprintf("disc %d item %d is an episode without season and episode numbers", d.Index, it.Index))
			}
		}
	}
	return res
}
