package store

import "errors"

// ErrCorrupt is returned when open() finds the six environment roots in a
// combination that is neither "all absent" (fresh database) nor "all
// present" (existing database) — invariant 3 of spec.md §3 cannot be relied
// on in that state.
var ErrCorrupt = errors.New("store: corrupted environment (partial root set)")

// ErrInvalidData is the distinguished "invalid data" error surfaced when a
// read accessor walks an index and finds a required key missing — e.g. a
// LINKS head or next pointer naming a child that has no RLINKS triple
// under that parent.
var ErrInvalidData = errors.New("store: invalid data (invariant violation)")

// ErrNotFound is returned by read accessors for an id that carries no
// payload in NODES.
var ErrNotFound = errors.New("store: node not found")

// ErrClosed names the closed-environment condition. No Engine method returns
// it: after Close, Reader and Writer fail with bbolt's own wrapped
// database-not-open error.
var ErrClosed = errors.New("store: environment is closed")
