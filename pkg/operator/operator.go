// Package operator implements the Volcano-style pull pipeline: every node
// implements Open/Next/Close/Output. Unlike the iterator idiom this was
// adapted from (HasNext()+Next() returning a tuple), the contract here
// matches the explicit open/next-bool/close/output shape operators in this
// module are built around: Next reports whether a row is available, and
// the row itself is fetched separately through Output.
package operator

import "buzzdb/pkg/record"

// Operator is one node of a pull-based query plan.
//
// Contract: Open must be called before the first Next. After Next returns
// false, further Next calls keep returning false until Close and a fresh
// Open. Output is only meaningful between a successful Next and the
// following Next or Close. Close is idempotent and safe to call even if
// Open failed.
type Operator interface {
	Open() error
	Next() (bool, error)
	Close() error
	Output() record.Record
}

// Base holds the bookkeeping every concrete operator shares: whether it
// has been opened, and the row produced by the most recent successful
// Next. It mirrors the teacher corpus's BaseIterator result-caching idiom,
// reshaped around Output() instead of a Next() that returns the row.
type Base struct {
	opened  bool
	current record.Record
}

// MarkOpened records that Open has run.
func (b *Base) MarkOpened() { b.opened = true }

// Opened reports whether Open has been called.
func (b *Base) Opened() bool { return b.opened }

// SetOutput caches the row produced by the current Next call.
func (b *Base) SetOutput(r record.Record) { b.current = r }

// Output returns the most recently cached row.
func (b *Base) Output() record.Record { return b.current }

// Reset clears the opened flag and cached row, used by operators whose
// Close must leave them ready for a fresh Open.
func (b *Base) Reset() {
	b.opened = false
	b.current = record.Record{}
}
