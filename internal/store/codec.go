package store

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Payload is a node's attributes: its display name and an optional due
// datetime (spec.md §3, Node).
type Payload struct {
	Name string
	Due  *time.Time
}

// Session is a contiguous [Start, End) interval attached to a node
// (spec.md §3, Session). Both endpoints are civil datetimes in Local time.
type Session struct {
	Start time.Time
	End   time.Time
}

// Less orders sessions by (start, then end), the "natural order" required
// by the AddSession operation in spec.md §4.2.
func (s Session) Less(o Session) bool {
	if !s.Start.Equal(o.Start) {
		return s.Start.Before(o.Start)
	}
	return s.End.Before(o.End)
}

func putUint64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }
func getUint64(b []byte) uint64    { return binary.BigEndian.Uint64(b) }

// idKey encodes a node id as an 8-byte big-endian key, the form used by
// ID_SEQ, LINKS, NODES and as the id-prefix of RLINKS/SESSIONS/RSESSIONS
// keys so that bucket iteration order matches numeric id order.
func idKey(id uint64) []byte {
	b := make([]byte, 8)
	putUint64(b, id)
	return b
}

func decodeID(b []byte) (uint64, error) {
	if len(b) != 8 {
		return 0, fmt.Errorf("store: malformed id key (%d bytes): %w", len(b), ErrInvalidData)
	}
	return getUint64(b), nil
}

// rlinksKey packs (child, parent) into the 16-byte composite key used by
// the RLINKS index (spec.md §3.1 of SPEC_FULL.md).
func rlinksKey(child, parent uint64) []byte {
	b := make([]byte, 16)
	putUint64(b[0:8], child)
	putUint64(b[8:16], parent)
	return b
}

// rlinksPrefix is the 8-byte child-id prefix shared by every TripleVal
// belonging to that child; used for Cursor-based prefix scans.
func rlinksPrefix(child uint64) []byte { return idKey(child) }

// TripleVal is the (parent, prev, next) sibling-list pointer stored in RLINKS
// for one (child, parent) pair.
type TripleVal struct {
	Parent uint64
	Next   uint64
	Prev   uint64
}

// Triple builds a TripleVal, the (parent, next, prev) sibling-list pointer
// form used throughout the graph operations layer.
func Triple(parent, next, prev uint64) TripleVal {
	return TripleVal{Parent: parent, Next: next, Prev: prev}
}

func encodeTripleValue(t TripleVal) []byte {
	b := make([]byte, 16)
	putUint64(b[0:8], t.Next)
	putUint64(b[8:16], t.Prev)
	return b
}

func decodeTripleValue(parent uint64, b []byte) (TripleVal, error) {
	if len(b) != 16 {
		return TripleVal{}, fmt.Errorf("store: malformed rlinks value (%d bytes): %w", len(b), ErrInvalidData)
	}
	return TripleVal{Parent: parent, Next: getUint64(b[0:8]), Prev: getUint64(b[8:16])}, nil
}

// encodePayload serializes a Payload as a length-prefixed binary record:
// 2-byte BE name length, name bytes, 1 flag byte, and if set 8-byte BE
// seconds + 4-byte BE nanoseconds (spec.md §6).
func encodePayload(p Payload) ([]byte, error) {
	if len(p.Name) > 1<<16-1 {
		return nil, fmt.Errorf("store: name too long (%d bytes)", len(p.Name))
	}
	size := 2 + len(p.Name) + 1
	if p.Due != nil {
		size += 12
	}
	b := make([]byte, size)
	binary.BigEndian.PutUint16(b[0:2], uint16(len(p.Name)))
	copy(b[2:2+len(p.Name)], p.Name)
	off := 2 + len(p.Name)
	if p.Due == nil {
		b[off] = 0
		return b, nil
	}
	b[off] = 1
	off++
	putUint64(b[off:off+8], uint64(p.Due.Unix()))
	binary.BigEndian.PutUint32(b[off+8:off+12], uint32(p.Due.Nanosecond()))
	return b, nil
}

func decodePayload(b []byte) (Payload, error) {
	if len(b) < 3 {
		return Payload{}, fmt.Errorf("store: malformed node payload: %w", ErrInvalidData)
	}
	nameLen := int(binary.BigEndian.Uint16(b[0:2]))
	if len(b) < 2+nameLen+1 {
		return Payload{}, fmt.Errorf("store: truncated node payload: %w", ErrInvalidData)
	}
	name := string(b[2 : 2+nameLen])
	off := 2 + nameLen
	flag := b[off]
	off++
	if flag == 0 {
		return Payload{Name: name}, nil
	}
	if len(b) < off+12 {
		return Payload{}, fmt.Errorf("store: truncated due date: %w", ErrInvalidData)
	}
	sec := int64(getUint64(b[off : off+8]))
	nsec := int64(binary.BigEndian.Uint32(b[off+8 : off+12]))
	due := time.Unix(sec, nsec).Local()
	return Payload{Name: name, Due: &due}, nil
}

// sessionKeySuffix encodes a Session's 24-byte natural-order representation
// (start seconds, start nanos, end seconds, end nanos), shared by both the
// SESSIONS key (id-prefixed) and the RSESSIONS key (id-suffixed).
func sessionKeySuffix(s Session) []byte {
	b := make([]byte, 24)
	putUint64(b[0:8], uint64(s.Start.Unix()))
	binary.BigEndian.PutUint32(b[8:12], uint32(s.Start.Nanosecond()))
	putUint64(b[12:20], uint64(s.End.Unix()))
	binary.BigEndian.PutUint32(b[20:24], uint32(s.End.Nanosecond()))
	return b
}

func decodeSessionSuffix(b []byte) (Session, error) {
	if len(b) < 24 {
		return Session{}, fmt.Errorf("store: malformed session key: %w", ErrInvalidData)
	}
	startSec := int64(getUint64(b[0:8]))
	startNsec := int64(binary.BigEndian.Uint32(b[8:12]))
	endSec := int64(getUint64(b[12:20]))
	endNsec := int64(binary.BigEndian.Uint32(b[20:24]))
	return Session{
		Start: time.Unix(startSec, startNsec).Local(),
		End:   time.Unix(endSec, endNsec).Local(),
	}, nil
}

// sessionsKey builds the SESSIONS bucket key: id prefix then session suffix.
func sessionsKey(id uint64, s Session) []byte {
	return append(idKey(id), sessionKeySuffix(s)...)
}

// rsessionsKey builds the RSESSIONS bucket key: session suffix then id.
func rsessionsKey(s Session, id uint64) []byte {
	return append(sessionKeySuffix(s), idKey(id)...)
}
