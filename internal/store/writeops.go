package store

import "fmt"

// NextID allocates and advances ID_SEQ, the low-level primitive behind
// add_child (spec.md §4.2).
func (w *WriteTxn) NextID() (uint64, error) {
	seq := w.tx.Bucket(bucketIDSeq)
	v := seq.Get(idSeqKey)
	if v == nil {
		return 0, fmt.Errorf("store: missing id_seq: %w", ErrInvalidData)
	}
	id, err := decodeID(v)
	if err != nil {
		return 0, err
	}
	if err := seq.Put(idSeqKey, idKey(id+1)); err != nil {
		return 0, fmt.Errorf("store: advance id_seq: %w", err)
	}
	return id, nil
}

// Head returns LINKS[parent], or 0 if parent has no children.
func (w *WriteTxn) Head(parent uint64) (uint64, error) {
	v := w.tx.Bucket(bucketLinks).Get(idKey(parent))
	if v == nil {
		return 0, nil
	}
	return getUint64(v), nil
}

// SetHead sets or erases LINKS[parent]; head == 0 erases the entry.
func (w *WriteTxn) SetHead(parent, head uint64) error {
	b := w.tx.Bucket(bucketLinks)
	if head == 0 {
		if err := b.Delete(idKey(parent)); err != nil {
			return fmt.Errorf("store: clear head of %d: %w", parent, err)
		}
		return nil
	}
	if err := b.Put(idKey(parent), idKey(head)); err != nil {
		return fmt.Errorf("store: set head of %d: %w", parent, err)
	}
	return nil
}

// Triple returns the (parent, next, prev) TripleVal for (child, parent), and
// whether it exists.
func (w *WriteTxn) Triple(child, parent uint64) (TripleVal, bool, error) {
	v := w.tx.Bucket(bucketRLinks).Get(rlinksKey(child, parent))
	if v == nil {
		return TripleVal{}, false, nil
	}
	t, err := decodeTripleValue(parent, v)
	return t, true, err
}

// PutTriple is the only way to write an RLINKS entry, keeping the
// modify_triple discipline of spec.md's Design Notes (read → delete old →
// mutate → insert new is the caller's responsibility; this is the
// "insert new" step).
func (w *WriteTxn) PutTriple(child uint64, t TripleVal) error {
	if err := w.tx.Bucket(bucketRLinks).Put(rlinksKey(child, t.Parent), encodeTripleValue(t)); err != nil {
		return fmt.Errorf("store: put rlinks(%d,%d): %w", child, t.Parent, err)
	}
	return nil
}

// DeleteTriple removes (child, parent) from RLINKS.
func (w *WriteTxn) DeleteTriple(child, parent uint64) error {
	if err := w.tx.Bucket(bucketRLinks).Delete(rlinksKey(child, parent)); err != nil {
		return fmt.Errorf("store: delete rlinks(%d,%d): %w", child, parent, err)
	}
	return nil
}

// ParentTriples materializes every parent TripleVal for child. Used by delete
// to decide whether a node is orphaned; the snapshot of children taken
// before the recursive deletes comes from ChildIDList.
func (w *WriteTxn) ParentTriples(child uint64) ([]TripleVal, error) {
	c := w.tx.Bucket(bucketRLinks).Cursor()
	prefix := rlinksPrefix(child)
	var out []TripleVal
	for k, v := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, v = c.Next() {
		parent, err := decodeID(k[8:16])
		if err != nil {
			return nil, err
		}
		t, err := decodeTripleValue(parent, v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// ChildIDList materializes parent's full child list in sibling priority
// order.
func (w *WriteTxn) ChildIDList(parent uint64) ([]uint64, error) {
	it := w.ChildIDs(parent)
	var out []uint64
	for {
		id, err, ok := it.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		out = append(out, id)
	}
	return out, nil
}

// PutPayload writes or overwrites NODES[id].
func (w *WriteTxn) PutPayload(id uint64, p Payload) error {
	b, err := encodePayload(p)
	if err != nil {
		return err
	}
	if err := w.tx.Bucket(bucketNodes).Put(idKey(id), b); err != nil {
		return fmt.Errorf("store: put node %d: %w", id, err)
	}
	return nil
}

// DeletePayload erases NODES[id].
func (w *WriteTxn) DeletePayload(id uint64) error {
	if err := w.tx.Bucket(bucketNodes).Delete(idKey(id)); err != nil {
		return fmt.Errorf("store: delete node %d: %w", id, err)
	}
	return nil
}

// PutSession inserts a session for id into both SESSIONS and RSESSIONS
// (invariant 4, spec.md §3).
func (w *WriteTxn) PutSession(id uint64, s Session) error {
	if err := w.tx.Bucket(bucketSessions).Put(sessionsKey(id, s), nil); err != nil {
		return fmt.Errorf("store: put session for %d: %w", id, err)
	}
	if err := w.tx.Bucket(bucketRSessions).Put(rsessionsKey(s, id), nil); err != nil {
		return fmt.Errorf("store: put rsession for %d: %w", id, err)
	}
	return nil
}

// DeleteAllSessions erases every SESSIONS/RSESSIONS entry for id, used when
// id is orphaned and physically removed (spec.md §3, Lifecycles).
func (w *WriteTxn) DeleteAllSessions(id uint64) error {
	sb := w.tx.Bucket(bucketSessions)
	rb := w.tx.Bucket(bucketRSessions)
	c := sb.Cursor()
	prefix := idKey(id)
	var suffixes [][]byte
	for k, _ := c.Seek(prefix); k != nil && hasPrefix(k, prefix); k, _ = c.Next() {
		suffix := append([]byte(nil), k[8:]...)
		suffixes = append(suffixes, suffix)
	}
	for _, suf := range suffixes {
		key := append(idKey(id), suf...)
		if err := sb.Delete(key); err != nil {
			return fmt.Errorf("store: delete session of %d: %w", id, err)
		}
		rkey := append(append([]byte(nil), suf...), idKey(id)...)
		if err := rb.Delete(rkey); err != nil {
			return fmt.Errorf("store: delete rsession of %d: %w", id, err)
		}
	}
	return nil
}
