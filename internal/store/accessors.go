package store

import (
	"fmt"

	"go.etcd.io/bbolt"
)

// Read returns the payload for id, or ErrNotFound if it carries none.
func (s *Snapshot) Read(id uint64) (Payload, error) {
	b := s.tx.Bucket(bucketNodes).Get(idKey(id))
	if b == nil {
		return Payload{}, ErrNotFound
	}
	p, err := decodePayload(b)
	if err != nil {
		return Payload{}, fmt.Errorf("store: read %d: %w", id, err)
	}
	return p, nil
}

// ReadFirstSession returns the earliest session recorded against id, if
// any.
func (s *Snapshot) ReadFirstSession(id uint64) (Session, bool, error) {
	c := s.tx.Bucket(bucketSessions).Cursor()
	prefix := idKey(id)
	k, _ := c.Seek(prefix)
	if k == nil || !hasPrefix(k, prefix) {
		return Session{}, false, nil
	}
	sess, err := decodeSessionSuffix(k[8:])
	if err != nil {
		return Session{}, false, fmt.Errorf("store: read first session of %d: %w", id, err)
	}
	return sess, true, nil
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}
	for i := range prefix {
		if b[i] != prefix[i] {
			return false
		}
	}
	return true
}

// siblingWalk lazily walks a parent's child DLL, starting at LINKS[parent]
// and following RLINKS next-pointers, borrowing directly from the
// snapshot's transaction (spec.md §4.1: "All iterators are lazy and borrow
// from the snapshot").
type siblingWalk struct {
	tx     *bbolt.Tx
	parent uint64
	next   uint64
	done   bool
}

func newSiblingWalk(s *Snapshot, parent uint64) *siblingWalk {
	head := s.tx.Bucket(bucketLinks).Get(idKey(parent))
	var start uint64
	if head != nil {
		start = getUint64(head)
	}
	return &siblingWalk{tx: s.tx, parent: parent, next: start, done: start == 0}
}

// advance returns the next child id in priority order, or ok=false when the
// walk is exhausted.
func (w *siblingWalk) advance() (uint64, error, bool) {
	if w.done {
		return 0, nil, false
	}
	id := w.next
	rb := w.tx.Bucket(bucketRLinks)
	v := rb.Get(rlinksKey(id, w.parent))
	if v == nil {
		return 0, fmt.Errorf("store: sibling walk: missing rlinks triple for child %d under parent %d: %w", id, w.parent, ErrInvalidData), false
	}
	t, err := decodeTripleValue(w.parent, v)
	if err != nil {
		return 0, err, false
	}
	if t.Next == 0 {
		w.done = true
	} else {
		w.next = t.Next
	}
	return id, nil, true
}

// ChildIterator yields (id, payload) pairs for a parent's children in
// sibling priority order.
type ChildIterator struct {
	snap *Snapshot
	walk *siblingWalk
}

// Children begins a lazy walk of parent's children, each paired with its
// payload.
func (s *Snapshot) Children(parent uint64) *ChildIterator {
	return &ChildIterator{snap: s, walk: newSiblingWalk(s, parent)}
}

// Next returns the next (id, payload) pair, or ok=false when exhausted.
func (it *ChildIterator) Next() (id uint64, payload Payload, err error, ok bool) {
	id, err, ok = it.walk.advance()
	if err != nil || !ok {
		return 0, Payload{}, err, false
	}
	payload, err = it.snap.Read(id)
	if err != nil {
		return 0, Payload{}, err, false
	}
	return id, payload, nil, true
}

// ChildIDIterator yields only child ids, skipping payload lookups.
type ChildIDIterator struct {
	walk *siblingWalk
}

// ChildIDs begins a lazy walk of parent's child ids in sibling priority
// order (spec.md §4.1).
func (s *Snapshot) ChildIDs(parent uint64) *ChildIDIterator {
	return &ChildIDIterator{walk: newSiblingWalk(s, parent)}
}

// Next returns the next child id, or ok=false when exhausted.
func (it *ChildIDIterator) Next() (id uint64, err error, ok bool) {
	return it.walk.advance()
}

// SessionIterator yields a node's sessions in start-then-end order.
type SessionIterator struct {
	cursor  cursorLike
	prefix  []byte
	started bool
}

type cursorLike interface {
	Seek([]byte) ([]byte, []byte)
	Next() ([]byte, []byte)
}

// Sessions begins a lazy, start-ordered walk of id's sessions.
func (s *Snapshot) Sessions(id uint64) *SessionIterator {
	c := s.tx.Bucket(bucketSessions).Cursor()
	return &SessionIterator{cursor: c, prefix: idKey(id)}
}

// Next returns the next session for this node, or ok=false when exhausted.
func (it *SessionIterator) Next() (Session, error, bool) {
	var k []byte
	if !it.started {
		it.started = true
		k, _ = it.cursor.Seek(it.prefix)
	} else {
		k, _ = it.cursor.Next()
	}
	if k == nil || !hasPrefix(k, it.prefix) {
		return Session{}, nil, false
	}
	sess, err := decodeSessionSuffix(k[8:])
	if err != nil {
		return Session{}, err, false
	}
	return sess, nil, true
}

// AllSessionIterator yields every (session, id) pair across every node, in
// global chronological order — the "all sessions" view (spec.md §4.1).
type AllSessionIterator struct {
	cursor  cursorLike
	started bool
}

// AllSessions begins a lazy walk of RSESSIONS in chronological order.
func (s *Snapshot) AllSessions() *AllSessionIterator {
	return &AllSessionIterator{cursor: s.tx.Bucket(bucketRSessions).Cursor()}
}

// Next returns the next (session, id) pair, or ok=false when exhausted.
func (it *AllSessionIterator) Next() (Session, uint64, error, bool) {
	var k []byte
	if !it.started {
		it.started = true
		k, _ = it.cursor.Seek(nil)
	} else {
		k, _ = it.cursor.Next()
	}
	if k == nil {
		return Session{}, 0, nil, false
	}
	if len(k) != 32 {
		return Session{}, 0, fmt.Errorf("store: malformed rsessions key: %w", ErrInvalidData), false
	}
	sess, err := decodeSessionSuffix(k[0:24])
	if err != nil {
		return Session{}, 0, err, false
	}
	id, err := decodeID(k[24:32])
	if err != nil {
		return Session{}, 0, err, false
	}
	return sess, id, nil, true
}
