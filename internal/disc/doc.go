// Package disc turns untrusted ripper logs into structured disc descriptions.
//
// It understands MakeMKV robot output: one tagged record per line
// (CINFO/TINFO/SINFO plus MSG and progress chatter), comma-separated fields
// with double-quoted string values. ParseLog groups the records into a
// DiscInfo tree of titles, chapters and streams. Malformed or unknown lines
// are skipped and counted; a log without a single title record is rejected
// with a LogFormatError.
//
// The parser is pure and deterministic so identical input always produces a
// deeply equal DiscInfo. Label helpers (display names, slugs, generic volume
// label detection) live here to keep ripper quirks out of the workflow code.
package disc
