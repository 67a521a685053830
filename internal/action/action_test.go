package action

import (
	"path/filepath"
	"testing"
	"time"

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

func apply(t *testing.T, e *store.Engine, intent WriteIntent) bool {
	t.Helper()
	w, err := e.Writer()
	if err != nil {
		t.Fatalf("Writer: %v", err)
	}
	ok, err := intent.Apply(w)
	if err != nil {
		w.Discard()
		t.Fatalf("Apply(%#v): %v", intent, err)
	}
	if ok {
		if err := w.Commit(); err != nil {
			t.Fatalf("Commit: %v", err)
		}
	} else {
		if err := w.Discard(); err != nil {
			t.Fatalf("Discard: %v", err)
		}
	}
	return ok
}

func TestAddChildWithExtraParents(t *testing.T) {
	e := openTest(t)
	w, err := e.Writer()
	if err != nil {
		t.Fatalf("Writer: %v", err)
	}
	other, err := w.NextID()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.PutPayload(other, store.Payload{Name: "other"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Commit(); err != nil {
		t.Fatal(err)
	}

	ok := apply(t, e, AddChild{Parent: store.RootID, ExtraParents: []uint64{other}, Payload: store.Payload{Name: "shared"}})
	if !ok {
		t.Fatalf("AddChild should succeed")
	}

	snap, err := e.Reader()
	if err != nil {
		t.Fatal(err)
	}
	defer snap.Close()
	for _, parent := range []uint64{store.RootID, other} {
		var found bool
		it := snap.ChildIDs(parent)
		for {
			id, err, ok := it.Next()
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				break
			}
			p, err := snap.Read(id)
			if err != nil {
				t.Fatal(err)
			}
			if p.Name == "shared" {
				found = true
			}
		}
		if !found {
			t.Errorf("shared node not found under parent %d", parent)
		}
	}
}

func TestRenamePreservesDueDate(t *testing.T) {
	e := openTest(t)
	w, err := e.Writer()
	if err != nil {
		t.Fatal(err)
	}
	id, err := w.NextID()
	if err != nil {
		t.Fatal(err)
	}
	due := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := w.PutPayload(id, store.Payload{Name: "old", Due: &due}); err != nil {
		t.Fatal(err)
	}
	if err := w.Commit(); err != nil {
		t.Fatal(err)
	}

	if ok := apply(t, e, Rename{IDs: []uint64{id}, Name: "new"}); !ok {
		t.Fatalf("Rename should succeed")
	}

	snap, err := e.Reader()
	if err != nil {
		t.Fatal(err)
	}
	defer snap.Close()
	p, err := snap.Read(id)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "new" {
		t.Errorf("name = %q, want \"new\"", p.Name)
	}
	if p.Due == nil || !p.Due.Equal(due) {
		t.Errorf("due date should be preserved, got %v", p.Due)
	}
}

func TestSetAndUnsetDueDate(t *testing.T) {
	e := openTest(t)
	w, err := e.Writer()
	if err != nil {
		t.Fatal(err)
	}
	id, err := w.NextID()
	if err != nil {
		t.Fatal(err)
	}
	if err := w.PutPayload(id, store.Payload{Name: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := w.Commit(); err != nil {
		t.Fatal(err)
	}

	due := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	if ok := apply(t, e, SetDueDate{IDs: []uint64{id}, Due: due}); !ok {
		t.Fatalf("SetDueDate should succeed")
	}
	snap, err := e.Reader()
	if err != nil {
		t.Fatal(err)
	}
	p, err := snap.Read(id)
	snap.Close()
	if err != nil {
		t.Fatal(err)
	}
	if p.Due == nil || !p.Due.Equal(due) {
		t.Fatalf("due = %v, want %v", p.Due, due)
	}

	if ok := apply(t, e, UnsetDueDate{IDs: []uint64{id}}); !ok {
		t.Fatalf("UnsetDueDate should succeed")
	}
	snap, err = e.Reader()
	if err != nil {
		t.Fatal(err)
	}
	defer snap.Close()
	p, err = snap.Read(id)
	if err != nil {
		t.Fatal(err)
	}
	if p.Due != nil {
		t.Fatalf("due should be cleared, got %v", p.Due)
	}
}

func TestShareRefusesCycleAsNoOp(t *testing.T) {
	e := openTest(t)

	var n1, n2 uint64
	func() {
		w, err := e.Writer()
		if err != nil {
			t.Fatal(err)
		}
		defer w.Commit()
		var err2 error
		n1, err2 = w.NextID()
		if err2 != nil {
			t.Fatal(err2)
		}
		if err := w.PutTriple(n1, store.Triple(store.RootID, 0, 0)); err != nil {
			t.Fatal(err)
		}
		if err := w.SetHead(store.RootID, n1); err != nil {
			t.Fatal(err)
		}
		if err := w.PutPayload(n1, store.Payload{Name: "1"}); err != nil {
			t.Fatal(err)
		}
		n2, err2 = w.NextID()
		if err2 != nil {
			t.Fatal(err2)
		}
		if err := w.PutTriple(n2, store.Triple(n1, 0, 0)); err != nil {
			t.Fatal(err)
		}
		if err := w.SetHead(n1, n2); err != nil {
			t.Fatal(err)
		}
		if err := w.PutPayload(n2, store.Payload{Name: "2"}); err != nil {
			t.Fatal(err)
		}
	}()

	if ok := apply(t, e, Share{Src: []uint64{n1}, Dest: n2}); ok {
		t.Fatalf("Share(1, 2) should refuse: 2 is a descendant of 1")
	}
}

func TestChangeRootStackRoundTrip(t *testing.T) {
	v := &View{RootID: 0}
	v.ChangeRoot(5)
	if v.RootID != 5 {
		t.Fatalf("RootID = %d, want 5", v.RootID)
	}
	v.ChangeRoot(9)
	if v.RootID != 9 {
		t.Fatalf("RootID = %d, want 9", v.RootID)
	}
	if !v.ChangeRootBack() || v.RootID != 5 {
		t.Fatalf("ChangeRootBack should restore 5, got RootID=%d", v.RootID)
	}
	if !v.ChangeRootBack() || v.RootID != 0 {
		t.Fatalf("ChangeRootBack should restore 0, got RootID=%d", v.RootID)
	}
	if v.ChangeRootBack() {
		t.Fatalf("ChangeRootBack should report false when stack is empty")
	}
}
