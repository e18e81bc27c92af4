// Package blob stores raw ripper logs and release images.
//
// Objects are write-once: Save refuses to replace an existing key, so a new
// upload always lands under a fresh key. FileStore keeps objects below a
// local directory; S3Store targets any S3-compatible service.
package blob
