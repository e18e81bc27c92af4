package disc

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	allDigitsPattern  = regexp.MustCompile(`^\d+$`)
	shortCodePattern  = regexp.MustCompile(`^[A-Z0-9_]{1,4}$`)
	discSuffixPattern = regexp.MustCompile(`(?i)[\s_-]+(disc|disk|d)[\s_-]*\d+$`)
	slugSeparators    = regexp.MustCompile(`[^a-z0-9]+`)
)

// IsUnusableLabel returns true if the label cannot be used for content identification.
// This includes generic labels, technical labels, and patterns that don't represent
// meaningful content titles.
func IsUnusableLabel(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" {
		return true
	}

	upper := strings.ToUpper(label)

	// Generic/technical patterns that indicate the label is not a real title
	patterns := []string{
		"LOGICAL_VOLUME_ID", "VOLUME_ID", "DVD_VIDEO", "BLURAY", "BD_ROM",
		"UNTITLED", "UNKNOWN DISC", "VOLUME_", "VOLUME ID", "DISK_", "TRACK_",
	}
	for _, pattern := range patterns {
		if strings.Contains(upper, pattern) {
			return true
		}
	}

	// All digits (e.g., "12345")
	if allDigitsPattern.MatchString(label) {
		return true
	}

	// Very short codes (e.g., "ABC", "X1")
	if shortCodePattern.MatchString(upper) {
		return true
	}

	// Disc label pattern (e.g., "MOVIE_DISC_1", "FILM_DISK_2")
	if (strings.Contains(upper, "DISC") || strings.Contains(upper, "DISK")) &&
		strings.Contains(upper, "_") {
		return true
	}

	// All uppercase with underscores, longer than 8 chars (technical label like "SOME_MOVIE_TITLE_DISC")
	if strings.Contains(label, "_") && label == upper && len(label) > 8 {
		return true
	}

	return false
}

// DisplayName turns a volume label like "THE_MATRIX_DISC_1" into "The Matrix".
func DisplayName(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	label = discSuffixPattern.ReplaceAllString(label, "")
	label = strings.Join(strings.FieldsFunc(label, func(r rune) bool {
		return r == '_' || r == '.' || unicode.IsSpace(r)
	}), " ")
	return cases.Title(language.English).String(strings.ToLower(label))
}

// Slugify returns a lowercase ASCII slug: diacritics are removed and runs of
// other characters collapse into single hyphens.
func Slugify(name string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, name)
	if err != nil {
		folded = name
	}
	slug := slugSeparators.ReplaceAllString(strings.ToLower(folded), "-")
	return strings.Trim(slug, "-")
}

// FormatFromType maps the ripper's disc type attribute to a Format. Unknown
// types map to the empty format.
func FormatFromType(discType string) Format {
	token := normalizeToken(discType)
	switch {
	case strings.Contains(token, "uhd"), strings.Contains(token, "4k"):
		return FormatUHD
	case strings.Contains(token, "hddvd"):
		return ""
	case strings.Contains(token, "bluray"):
		return FormatBluRay
	case strings.Contains(token, "dvd"):
		return FormatDVD
	default:
		return ""
	}
}

func normalizeToken(value string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(value) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
