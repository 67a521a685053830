package store

import (
	"path/filepath"
	"testing"
	"time"
)

func openTest(t *testing.T) *Engine {
	t.Helper()
	e, err := Open(filepath.Join(t.TempDir(), "test.db"), 2)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func TestOpenSeedsRoot(t *testing.T) {
	e := openTest(t)
	snap, err := e.Reader()
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	defer snap.Close()

	p, err := snap.Read(RootID)
	if err != nil {
		t.Fatalf("Read(root): %v", err)
	}
	if p.Name != "/" {
		t.Fatalf("root name = %q, want \"/\"", p.Name)
	}
}

func TestReopenExistingEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	e1, err := Open(path, 2)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	w, err := e1.Writer()
	if err != nil {
		t.Fatalf("Writer: %v", err)
	}
	id, err := w.NextID()
	if err != nil {
		t.Fatalf("NextID: %v", err)
	}
	if err := w.PutPayload(id, Payload{Name: "x"}); err != nil {
		t.Fatalf("PutPayload: %v", err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := e1.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	e2, err := Open(path, 2)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer e2.Close()
	snap, err := e2.Reader()
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	defer snap.Close()
	p, err := snap.Read(id)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if p.Name != "x" {
		t.Fatalf("got %q, want \"x\"", p.Name)
	}
}

func TestPayloadCodecRoundTrip(t *testing.T) {
	due := time.Date(2025, 4, 1, 14, 0, 0, 0, time.UTC)
	cases := []Payload{
		{Name: ""},
		{Name: "hello"},
		{Name: "with due", Due: &due},
	}
	for _, p := range cases {
		b, err := encodePayload(p)
		if err != nil {
			t.Fatalf("encodePayload(%+v): %v", p, err)
		}
		got, err := decodePayload(b)
		if err != nil {
			t.Fatalf("decodePayload: %v", err)
		}
		if got.Name != p.Name {
			t.Errorf("name round-trip: got %q, want %q", got.Name, p.Name)
		}
		if (got.Due == nil) != (p.Due == nil) {
			t.Errorf("due presence mismatch: got %v, want %v", got.Due, p.Due)
		}
		if p.Due != nil && !got.Due.Equal(*p.Due) {
			t.Errorf("due round-trip: got %v, want %v", got.Due, *p.Due)
		}
	}
}

func TestSessionCodecRoundTrip(t *testing.T) {
	s := Session{
		Start: time.Date(2025, 4, 1, 14, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 4, 1, 15, 30, 0, 0, time.UTC),
	}
	suffix := sessionKeySuffix(s)
	got, err := decodeSessionSuffix(suffix)
	if err != nil {
		t.Fatalf("decodeSessionSuffix: %v", err)
	}
	if !got.Start.Equal(s.Start) || !got.End.Equal(s.End) {
		t.Fatalf("got %+v, want %+v", got, s)
	}
}

func TestSessionLess(t *testing.T) {
	a := Session{Start: time.Unix(0, 0), End: time.Unix(100, 0)}
	b := Session{Start: time.Unix(10, 0), End: time.Unix(50, 0)}
	if !a.Less(b) {
		t.Fatalf("a should sort before b")
	}
	if b.Less(a) {
		t.Fatalf("b should not sort before a")
	}
}

func TestHeadAndTripleRoundTrip(t *testing.T) {
	e := openTest(t)
	w, err := e.Writer()
	if err != nil {
		t.Fatalf("Writer: %v", err)
	}
	defer w.Discard()

	if head, err := w.Head(RootID); err != nil || head != 0 {
		t.Fatalf("Head(root) on fresh store = (%d, %v), want (0, nil)", head, err)
	}

	if err := w.PutTriple(7, Triple(RootID, 0, 0)); err != nil {
		t.Fatalf("PutTriple: %v", err)
	}
	if err := w.SetHead(RootID, 7); err != nil {
		t.Fatalf("SetHead: %v", err)
	}

	head, err := w.Head(RootID)
	if err != nil || head != 7 {
		t.Fatalf("Head(root) = (%d, %v), want (7, nil)", head, err)
	}
	tr, ok, err := w.Triple(7, RootID)
	if err != nil || !ok {
		t.Fatalf("Triple(7, root) = (_, %v, %v), want (_, true, nil)", ok, err)
	}
	if tr != (TripleVal{Parent: RootID, Next: 0, Prev: 0}) {
		t.Fatalf("got %+v, want zero next/prev", tr)
	}

	if err := w.DeleteTriple(7, RootID); err != nil {
		t.Fatalf("DeleteTriple: %v", err)
	}
	if err := w.SetHead(RootID, 0); err != nil {
		t.Fatalf("SetHead(0): %v", err)
	}
	if _, ok, err := w.Triple(7, RootID); err != nil || ok {
		t.Fatalf("Triple after delete = (_, %v, %v), want (_, false, nil)", ok, err)
	}
	if head, err := w.Head(RootID); err != nil || head != 0 {
		t.Fatalf("Head(root) after clearing = (%d, %v), want (0, nil)", head, err)
	}
}
