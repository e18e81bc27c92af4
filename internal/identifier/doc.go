// Package identifier converts internal sequential ids into opaque external
// strings and back.
//
// The codec is a bijection over non-negative int64 ids for a fixed
// configuration (salt, alphabet, minimum length). Decode rejects anything the
// codec could not have produced and reports it as a CodecError, which callers
// must keep distinct from "entity not found".
//
// The codec carries no knowledge of entity type: an id decoded from a disc URL
// will happily decode as a contribution id. Callers must not cross-apply
// decoded ids between tables.
package identifier
