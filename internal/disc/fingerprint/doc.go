// Package fingerprint computes content fingerprints for ripped discs.
//
// A disc fingerprint is derived from the structure of its titles only:
// each title contributes a (duration, chapter count, segment count) tuple,
// the tuples are sorted and hashed with SHA-256, and the first 16 bytes are
// rendered as 32 hex characters. Title names, file names and track labels
// never participate, so two rips of the same pressing match even when the
// ripper was configured differently.
//
// The package also implements the file hash used for hash items: the sizes
// and creation times of a disc's stream files in index order.
//
// Primary entry points:
//   - Compute: fingerprint of a parsed DiscInfo
//   - Hasher.FromTuples: fingerprint of already reduced tuples
//   - ScanFiles / FilesHash: hash item scheme over a stream directory
package fingerprint
