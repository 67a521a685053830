package store

import "fmt"

// WalkNodeIDs calls fn with every id present in NODES, in ascending id
// order, for invariant-checking tools (spec.md §8, property 3).
func (s *Snapshot) WalkNodeIDs(fn func(id uint64) error) error {
	c := s.tx.Bucket(bucketNodes).Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		id, err := decodeID(k)
		if err != nil {
			return err
		}
		if err := fn(id); err != nil {
			return err
		}
	}
	return nil
}

// WalkLinks calls fn with every (parent, head) pair in LINKS.
func (s *Snapshot) WalkLinks(fn func(parent, head uint64) error) error {
	c := s.tx.Bucket(bucketLinks).Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		parent, err := decodeID(k)
		if err != nil {
			return err
		}
		if len(v) != 8 {
			return fmt.Errorf("store: malformed links value for parent %d: %w", parent, ErrInvalidData)
		}
		if err := fn(parent, getUint64(v)); err != nil {
			return err
		}
	}
	return nil
}

// WalkRLinks calls fn with every (child, parent, triple) entry in RLINKS.
func (s *Snapshot) WalkRLinks(fn func(child uint64, t TripleVal) error) error {
	c := s.tx.Bucket(bucketRLinks).Cursor()
	for k, v := c.First(); k != nil; k, v = c.Next() {
		if len(k) != 16 {
			return fmt.Errorf("store: malformed rlinks key (%d bytes): %w", len(k), ErrInvalidData)
		}
		child, err := decodeID(k[0:8])
		if err != nil {
			return err
		}
		parent, err := decodeID(k[8:16])
		if err != nil {
			return err
		}
		t, err := decodeTripleValue(parent, v)
		if err != nil {
			return err
		}
		if err := fn(child, t); err != nil {
			return err
		}
	}
	return nil
}

// IDSeq returns the current ID_SEQ value: the next id that will be handed
// out by NextID.
func (s *Snapshot) IDSeq() (uint64, error) {
	v := s.tx.Bucket(bucketIDSeq).Get(idSeqKey)
	if v == nil {
		return 0, fmt.Errorf("store: missing id_seq key: %w", ErrCorrupt)
	}
	id, err := decodeID(v)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// WalkSessionPairs calls fn with every (id, session) pair in SESSIONS.
func (s *Snapshot) WalkSessionPairs(fn func(id uint64, sess Session) error) error {
	c := s.tx.Bucket(bucketSessions).Cursor()
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		if len(k) != 32 {
			return fmt.Errorf("store: malformed sessions key (%d bytes): %w", len(k), ErrInvalidData)
		}
		id, err := decodeID(k[0:8])
		if err != nil {
			return err
		}
		sess, err := decodeSessionSuffix(k[8:32])
		if err != nil {
			return err
		}
		if err := fn(id, sess); err != nil {
			return err
		}
	}
	return nil
}

// HasRSession reports whether (sess, id) is present in RSESSIONS.
func (s *Snapshot) HasRSession(sess Session, id uint64) bool {
	return s.tx.Bucket(bucketRSessions).Get(rsessionsKey(sess, id)) != nil
}

// HasSession reports whether (id, sess) is present in SESSIONS.
func (s *Snapshot) HasSession(id uint64, sess Session) bool {
	return s.tx.Bucket(bucketSessions).Get(sessionsKey(id, sess)) != nil
}
