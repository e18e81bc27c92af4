// Package dedup answers "which other contributions already hold a disc with
// this fingerprint". Results are advisory. The index fronts the persistent
// lookup with a bounded LRU cache; new discs are recorded copy-on-write so
// concurrent lookups never observe a partially appended match list.
package dedup
