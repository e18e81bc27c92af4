// Package main hosts the discdb CLI entrypoint and command graph.
//
// Commands parse ripper logs, fingerprint discs, encode and decode public
// identifiers, and drive contributions through editing, validation and
// review. Configuration, the SQLite catalog, the blob store and the
// workflow manager are opened lazily by the shared command context so
// offline commands such as `log parse` never touch them.
package main
