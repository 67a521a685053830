// Package store implements the graph's storage engine facade: a
// memory-mapped, copy-on-write B-tree environment (go.etcd.io/bbolt)
// exposing MVCC read snapshots and a single exclusive write transaction
// over six logical indexes (spec.md §3, §4.1).
package store

import (
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

// Engine owns the bbolt environment. The zero value is not usable; build
// one with Open.
type Engine struct {
	db   *bbolt.DB
	path string
}

// Open initializes or recovers the environment at path. nRoots (values
// <= 0 become 2) is recorded in the meta bucket when a fresh environment
// is created and has no other effect: bbolt is not configured with it, and
// its own page management already keeps every open Snapshot stable; see
// DESIGN.md.
func Open(path string, nRoots int) (*Engine, error) {
	if nRoots <= 0 {
		nRoots = 2
	}
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	e := &Engine{db: db, path: path}
	if err := e.init(nRoots); err != nil {
		_ = db.Close()
		return nil, err
	}
	return e, nil
}

// init creates the six buckets and seeds a fresh environment with the root
// node (id 0, name "/") and ID_SEQ = 1, or verifies an existing one. Any
// other combination of present/absent buckets is corruption.
func (e *Engine) init(nRoots int) error {
	return e.db.Update(func(tx *bbolt.Tx) error {
		present := 0
		for _, name := range allBuckets {
			if tx.Bucket(name) != nil {
				present++
			}
		}
		switch present {
		case 0:
			for _, name := range allBuckets {
				if _, err := tx.CreateBucket(name); err != nil {
					return fmt.Errorf("store: create bucket %s: %w", name, err)
				}
			}
			meta, err := tx.CreateBucketIfNotExists(bucketMeta)
			if err != nil {
				return fmt.Errorf("store: create meta bucket: %w", err)
			}
			nodes := tx.Bucket(bucketNodes)
			rootPayload, err := encodePayload(Payload{Name: "/"})
			if err != nil {
				return err
			}
			if err := nodes.Put(idKey(RootID), rootPayload); err != nil {
				return err
			}
			seq := tx.Bucket(bucketIDSeq)
			if err := seq.Put(idSeqKey, idKey(1)); err != nil {
				return err
			}
			nb := make([]byte, 8)
			putUint64(nb, uint64(nRoots))
			return meta.Put(metaRootsKey, nb)
		case len(allBuckets):
			nodes := tx.Bucket(bucketNodes)
			if nodes.Get(idKey(RootID)) == nil {
				return fmt.Errorf("store: missing root node: %w", ErrCorrupt)
			}
			if _, err := tx.CreateBucketIfNotExists(bucketMeta); err != nil {
				return fmt.Errorf("store: create meta bucket: %w", err)
			}
			return nil
		default:
			return ErrCorrupt
		}
	})
}

// Close releases the mmap and lock file. Safe to call once; until Reopen,
// Reader and Writer then fail with bbolt's database-not-open error wrapped
// as "store: begin read/write" (they do not return ErrClosed).
func (e *Engine) Close() error {
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}

// Reopen opens a fresh bbolt handle at e's own path and swaps it into e in
// place, so every existing *Engine pointer picks up whatever now lives at
// that path on its next call. The caller must have already closed e's
// previous handle (directly or via a prior Reopen) before calling this;
// reopening over a still-open handle blocks on bbolt's file lock and fails
// once the one-second open timeout expires.
func (e *Engine) Reopen() error {
	db, err := bbolt.Open(e.path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("store: reopen %s: %w", e.path, err)
	}
	e.db = db
	if err := e.init(0); err != nil {
		_ = db.Close()
		return err
	}
	return nil
}

// Path returns the path the environment was opened from.
func (e *Engine) Path() string { return e.path }

// Reader begins an MVCC read transaction: a Snapshot carrying an immutable
// view of all six indexes, stable for its entire lifetime regardless of
// concurrent commits (spec.md §4.1, §5).
func (e *Engine) Reader() (*Snapshot, error) {
	tx, err := e.db.Begin(false)
	if err != nil {
		return nil, fmt.Errorf("store: begin read: %w", err)
	}
	return &Snapshot{tx: tx}, nil
}

// Writer begins the single exclusive write transaction. bbolt serializes
// concurrent Writer calls for us; the returned WriteTxn must be committed
// or discarded on every exit path.
func (e *Engine) Writer() (*WriteTxn, error) {
	tx, err := e.db.Begin(true)
	if err != nil {
		return nil, fmt.Errorf("store: begin write: %w", err)
	}
	return &WriteTxn{Snapshot: Snapshot{tx: tx}}, nil
}

// Snapshot is a read-only view of the store as of the start of its
// transaction.
type Snapshot struct {
	tx *bbolt.Tx
}

// Close discards the read transaction and releases its page references.
func (s *Snapshot) Close() error {
	if err := s.tx.Rollback(); err != nil {
		return fmt.Errorf("store: close snapshot: %w", err)
	}
	return nil
}

// WriteTxn is the exclusive write transaction. It embeds Snapshot so every
// read accessor is also available mid-write (read-your-writes).
type WriteTxn struct {
	Snapshot
}

// Commit writes back all six bucket roots atomically.
func (w *WriteTxn) Commit() error {
	if err := w.tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	return nil
}

// Discard abandons every mutation made in this transaction.
func (w *WriteTxn) Discard() error {
	if err := w.tx.Rollback(); err != nil {
		return fmt.Errorf("store: discard: %w", err)
	}
	return nil
}
