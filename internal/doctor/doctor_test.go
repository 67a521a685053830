package doctor

import (
	"path/filepath"
	"testing"

	"github.com/untoldecay/grove/internal/graph"
	"github.com/untoldecay/grove/internal/store"
)

func openTest(t *testing.T) *store.Engine {
	t.Helper()
	e, err := store.Open(filepath.Join(t.TempDir(), "test.db"), 2)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func allOK(checks []Check) (bool, string) {
	for _, c := range checks {
		if !c.OK {
			return false, c.Name + ": " + c.Detail
		}
	}
	return true, ""
}

func TestHealthyStorePassesAllChecks(t *testing.T) {
	e := openTest(t)
	w, err := e.Writer()
	if err != nil {
		t.Fatalf("Writer: %v", err)
	}
	a, err := graph.AddChild(w, store.RootID, store.Payload{Name: "a"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := graph.AddChild(w, store.RootID, store.Payload{Name: "b"})
	if err != nil {
		t.Fatal(err)
	}
	shared, err := graph.AddChild(w, a, store.Payload{Name: "shared"})
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := graph.Share(w, shared, b); err != nil || !ok {
		t.Fatalf("Share: (%v, %v)", ok, err)
	}
	if err := graph.AddSession(w, a, store.Session{}); err != nil {
		t.Fatal(err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	snap, err := e.Reader()
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	defer snap.Close()

	checks, err := Run(snap)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if ok, detail := allOK(checks); !ok {
		t.Fatalf("expected all checks to pass, got: %s", detail)
	}
	if len(checks) != 6 {
		t.Fatalf("got %d checks, want 6", len(checks))
	}
}

func TestDetectsOrphanedNodePayload(t *testing.T) {
	e := openTest(t)
	w, err := e.Writer()
	if err != nil {
		t.Fatalf("Writer: %v", err)
	}
	// A node payload with no rlinks entry at all: invariant 3 violation.
	if err := w.PutPayload(99, store.Payload{Name: "orphan"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	snap, err := e.Reader()
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	defer snap.Close()

	checks, err := Run(snap)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var found bool
	for _, c := range checks {
		if c.Name == "nodes match rlink membership" {
			found = true
			if c.OK {
				t.Fatalf("expected orphaned payload to fail this check")
			}
		}
	}
	if !found {
		t.Fatalf("expected a \"nodes match rlink membership\" check to run")
	}
}

func TestDetectsCycleForgedBelowTheGraphLayer(t *testing.T) {
	e := openTest(t)
	w, err := e.Writer()
	if err != nil {
		t.Fatalf("Writer: %v", err)
	}
	a, err := graph.AddChild(w, store.RootID, store.Payload{Name: "a"})
	if err != nil {
		t.Fatal(err)
	}
	b, err := graph.AddChild(w, a, store.Payload{Name: "b"})
	if err != nil {
		t.Fatal(err)
	}
	// graph.Share would refuse this (it would cycle through a->b); forge it
	// directly at the store layer to exercise the invariant check itself.
	if err := w.PutTriple(a, store.Triple(b, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := w.SetHead(b, a); err != nil {
		t.Fatal(err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	snap, err := e.Reader()
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	defer snap.Close()

	checks, err := Run(snap)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var found bool
	for _, c := range checks {
		if c.Name == "no cycle in links" {
			found = true
			if c.OK {
				t.Fatalf("expected the forged a->b->a cycle to be detected")
			}
		}
	}
	if !found {
		t.Fatalf("expected a \"no cycle in links\" check to run")
	}
}

func TestDetectsCycleDisconnectedFromRoot(t *testing.T) {
	e := openTest(t)
	w, err := e.Writer()
	if err != nil {
		t.Fatalf("Writer: %v", err)
	}
	// p and q cycle through each other but neither hangs off root anywhere,
	// so a DFS starting only at store.RootID would never visit either one.
	p, err := w.NextID()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.PutPayload(p, store.Payload{Name: "p"}); err != nil {
		t.Fatal(err)
	}
	q, err := w.NextID()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.PutPayload(q, store.Payload{Name: "q"}); err != nil {
		t.Fatal(err)
	}
	if err := w.PutTriple(p, store.Triple(q, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := w.SetHead(q, p); err != nil {
		t.Fatal(err)
	}
	if err := w.PutTriple(q, store.Triple(p, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if err := w.SetHead(p, q); err != nil {
		t.Fatal(err)
	}
	if err := w.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	snap, err := e.Reader()
	if err != nil {
		t.Fatalf("Reader: %v", err)
	}
	defer snap.Close()

	checks, err := Run(snap)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var found bool
	for _, c := range checks {
		if c.Name == "no cycle in links" {
			found = true
			if c.OK {
				t.Fatalf("expected the root-disconnected p<->q cycle to be detected")
			}
		}
	}
	if !found {
		t.Fatalf("expected a \"no cycle in links\" check to run")
	}
}
