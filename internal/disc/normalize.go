package disc

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// NormalizeLog converts an uploaded log to UTF-8 text with LF line endings.
// A leading byte order mark selects UTF-8 or UTF-16 decoding; without one the
// input must already be valid UTF-8.
func NormalizeLog(raw []byte) (string, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	hasBOM := bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(raw, []byte{0xFF, 0xFE})
	if !hasBOM && !utf8.Valid(raw) {
		return "", &LogFormatError{Reason: "log is not valid UTF-8"}
	}
	decoded, _, err := transform.Bytes(decoder, raw)
	if err != nil {
		return "", &LogFormatError{Reason: "decode log: " + err.Error()}
	}
	if hasBOM && !utf8.Valid(decoded) {
		return "", &LogFormatError{Reason: "log is not valid text"}
	}
	decoded = bytes.ReplaceAll(decoded, []byte("\r\n"), []byte("\n"))
	decoded = bytes.ReplaceAll(decoded, []byte("\r"), []byte("\n"))
	return string(decoded), nil
}
