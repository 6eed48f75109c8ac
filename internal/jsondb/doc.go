// Package jsondb persists application record types as whole-collection JSON
// files, optionally zstd-compressed.
//
// # Overview
//
// A [Store] owns a root directory. [NewTable] binds a Go type to an explicit
// identity on a Store; the resulting [Table] reads and writes two files:
//
//	<root>/<id>.<ext>   slot: a single value, replaced by Table.Save
//	<root>/<id>s.<ext>  collection: an ordered array, appended by Table.Push
//
// ext is "jsondb" when compression is enabled and "json" otherwise, so files
// written under one setting are never misread under the other.
//
// # Concurrency: Pessimistic Locking
//
// Every mutation holds the store-wide mutation lock for the entire
// read-modify-write sequence. Reads take no lock. Writes go through a
// temporary file and a rename unless [Options].InPlaceWrites is set, in which
// case a concurrent read can observe a partially written file.
//
// [Store.Transaction] uses a second lock that only orders Transaction calls
// against each other.
//
// # Cost
//
// There is no incremental append: each Push decodes and re-encodes the whole
// collection, so its cost is linear in the collection size.
//
// # Errors
//
// Failures are [*OpError] values classified by [ErrIO], [ErrEncoding] and
// [ErrDecoding]. A missing file is not an error: it reads as an absent slot
// or an empty collection, exactly like a zero-length file.
package jsondb
