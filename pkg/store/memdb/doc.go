// Package memdb provides an in-memory implementation of the store
// interfaces, backed by hashicorp/go-memdb.
//
// go-memdb gives MVCC snapshots to readers and serializes writers, so a
// Transaction here behaves like a serializable database transaction: the
// check-then-write in a resolution cannot interleave with another one.
// Records are immutable once inserted; updates insert a modified copy.
//
// The store is used by the `server --store memory` mode, the integration
// suite, and unit tests across the module.
package memdb
