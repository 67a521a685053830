// Package graph implements the DAG edit primitives — add, delete,
// modify, share, cut, priority move, and session attachment — on top of
// the storage facade's write transaction, preserving the cross-index
// invariants of spec.md §3 after every call (spec.md §4.2).
package graph

import (
	"fmt"

	"github.com/untoldecay/grove/internal/store"
)

// AddChild allocates a new id under parent, payload in hand, and makes it
// the highest-priority sibling (the DLL head). It never fails on valid
// input beyond store-level I/O errors.
func AddChild(w *store.WriteTxn, parent uint64, payload store.Payload) (uint64, error) {
	id, err := w.NextID()
	if err != nil {
		return 0, fmt.Errorf("graph: add_child: %w", err)
	}
	if err := linkAsHead(w, parent, id); err != nil {
		return 0, fmt.Errorf("graph: add_child: %w", err)
	}
	if err := w.PutPayload(id, payload); err != nil {
		return 0, fmt.Errorf("graph: add_child: %w", err)
	}
	return id, nil
}

// linkAsHead inserts child at the head of parent's sibling DLL, fixing up
// the old head's prev pointer. Shared by AddChild and Share.
func linkAsHead(w *store.WriteTxn, parent, child uint64) error {
	oldHead, err := w.Head(parent)
	if err != nil {
		return err
	}
	if oldHead != 0 {
		t, ok, err := w.Triple(oldHead, parent)
		if err != nil {
			return err
		}
		if ok {
			t.Prev = child
			if err := w.PutTriple(oldHead, t); err != nil {
				return err
			}
		}
	}
	if err := w.PutTriple(child, store.Triple(parent, oldHead, 0)); err != nil {
		return err
	}
	return w.SetHead(parent, child)
}

// Modify overwrites id's payload. No link changes.
func Modify(w *store.WriteTxn, id uint64, payload store.Payload) error {
	if err := w.PutPayload(id, payload); err != nil {
		return fmt.Errorf("graph: modify: %w", err)
	}
	return nil
}

// AddSession records a work session against id.
func AddSession(w *store.WriteTxn, id uint64, s store.Session) error {
	if err := w.PutSession(id, s); err != nil {
		return fmt.Errorf("graph: add_session: %w", err)
	}
	return nil
}

// Delete unlinks (parent, id) from parent's sibling DLL. If id still has
// any other parent it survives; otherwise it is orphaned, its payload and
// sessions are erased, and each of its children is deleted in turn —
// materializing the child id list first so the recursive deletes do not
// invalidate an in-progress walk (spec.md §9, Open Question).
func Delete(w *store.WriteTxn, parent, id uint64) error {
	t, ok, err := w.Triple(id, parent)
	if err != nil {
		return fmt.Errorf("graph: delete: %w", err)
	}
	if !ok {
		return nil
	}

	if t.Prev != 0 {
		if err := retarget(w, t.Prev, parent, func(pt *store.TripleVal) { pt.Next = t.Next }); err != nil {
			return fmt.Errorf("graph: delete: %w", err)
		}
	} else if err := w.SetHead(parent, t.Next); err != nil {
		return fmt.Errorf("graph: delete: %w", err)
	}
	if t.Next != 0 {
		if err := retarget(w, t.Next, parent, func(nt *store.TripleVal) { nt.Prev = t.Prev }); err != nil {
			return fmt.Errorf("graph: delete: %w", err)
		}
	}
	if err := w.DeleteTriple(id, parent); err != nil {
		return fmt.Errorf("graph: delete: %w", err)
	}

	remaining, err := w.ParentTriples(id)
	if err != nil {
		return fmt.Errorf("graph: delete: %w", err)
	}
	if len(remaining) > 0 {
		return nil
	}

	children, err := w.ChildIDList(id)
	if err != nil {
		return fmt.Errorf("graph: delete: %w", err)
	}
	if err := w.DeletePayload(id); err != nil {
		return fmt.Errorf("graph: delete: %w", err)
	}
	if err := w.DeleteAllSessions(id); err != nil {
		return fmt.Errorf("graph: delete: %w", err)
	}
	for _, c := range children {
		if err := Delete(w, id, c); err != nil {
			return err
		}
	}
	return nil
}

// retarget is the modify_triple helper of spec.md's Design Notes: read the
// existing (node, parent) triple, apply mutate, and write it back. It is
// the only path by which an RLINKS triple's prev/next fields change outside
// of a direct PutTriple.
func retarget(w *store.WriteTxn, node, parent uint64, mutate func(*store.TripleVal)) error {
	t, ok, err := w.Triple(node, parent)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	tv := store.TripleVal{Parent: t.Parent, Next: t.Next, Prev: t.Prev}
	mutate(&tv)
	return w.PutTriple(node, store.Triple(tv.Parent, tv.Next, tv.Prev))
}

// Share adds dest as an extra parent of src, inserted at the head of
// dest's sibling DLL. It returns false — and leaves the store unchanged —
// when dest is already a parent of src, or when src is an ancestor of dest
// (which would create a cycle).
func Share(w *store.WriteTxn, src, dest uint64) (bool, error) {
	if _, ok, err := w.Triple(src, dest); err != nil {
		return false, fmt.Errorf("graph: share: %w", err)
	} else if ok {
		return false, nil
	}
	cyclic, err := IsDescendantOf(&w.Snapshot, dest, src)
	if err != nil {
		return false, fmt.Errorf("graph: share: %w", err)
	}
	if cyclic {
		return false, nil
	}
	if err := linkAsHead(w, dest, src); err != nil {
		return false, fmt.Errorf("graph: share: %w", err)
	}
	return true, nil
}

// Cut reparents src from srcParent to dest: equivalent to Share(src, dest)
// followed by unlinking (srcParent, src). If Share would refuse (cycle or
// already-a-parent), Cut is a no-op and also returns false.
func Cut(w *store.WriteTxn, srcParent, src, dest uint64) (bool, error) {
	ok, err := Share(w, src, dest)
	if err != nil {
		return false, fmt.Errorf("graph: cut: %w", err)
	}
	if !ok {
		return false, nil
	}
	if err := Delete(w, srcParent, src); err != nil {
		return false, fmt.Errorf("graph: cut: %w", err)
	}
	return true, nil
}

// MoveUp swaps id with its DLL predecessor under parent. No-op if id is
// already the head.
func MoveUp(w *store.WriteTxn, parent, id uint64) error {
	t, ok, err := w.Triple(id, parent)
	if err != nil {
		return fmt.Errorf("graph: move_up: %w", err)
	}
	if !ok || t.Prev == 0 {
		return nil
	}
	pred := t.Prev
	predT, ok, err := w.Triple(pred, parent)
	if err != nil {
		return fmt.Errorf("graph: move_up: %w", err)
	}
	if !ok {
		return fmt.Errorf("graph: move_up: %w", store.ErrInvalidData)
	}
	farPred := predT.Prev
	next := t.Next

	if err := w.PutTriple(id, store.Triple(parent, pred, farPred)); err != nil {
		return fmt.Errorf("graph: move_up: %w", err)
	}
	if err := w.PutTriple(pred, store.Triple(parent, next, id)); err != nil {
		return fmt.Errorf("graph: move_up: %w", err)
	}
	if farPred != 0 {
		if err := retarget(w, farPred, parent, func(ft *store.TripleVal) { ft.Next = id }); err != nil {
			return fmt.Errorf("graph: move_up: %w", err)
		}
	} else if err := w.SetHead(parent, id); err != nil {
		return fmt.Errorf("graph: move_up: %w", err)
	}
	if next != 0 {
		if err := retarget(w, next, parent, func(nt *store.TripleVal) { nt.Prev = pred }); err != nil {
			return fmt.Errorf("graph: move_up: %w", err)
		}
	}
	return nil
}

// MoveDown swaps id with its DLL successor under parent. No-op if id is
// already the tail.
func MoveDown(w *store.WriteTxn, parent, id uint64) error {
	t, ok, err := w.Triple(id, parent)
	if err != nil {
		return fmt.Errorf("graph: move_down: %w", err)
	}
	if !ok || t.Next == 0 {
		return nil
	}
	succ := t.Next
	succT, ok, err := w.Triple(succ, parent)
	if err != nil {
		return fmt.Errorf("graph: move_down: %w", err)
	}
	if !ok {
		return fmt.Errorf("graph: move_down: %w", store.ErrInvalidData)
	}
	farSucc := succT.Next
	prev := t.Prev

	if err := w.PutTriple(id, store.Triple(parent, farSucc, succ)); err != nil {
		return fmt.Errorf("graph: move_down: %w", err)
	}
	if err := w.PutTriple(succ, store.Triple(parent, id, prev)); err != nil {
		return fmt.Errorf("graph: move_down: %w", err)
	}
	if prev != 0 {
		if err := retarget(w, prev, parent, func(pt *store.TripleVal) { pt.Next = succ }); err != nil {
			return fmt.Errorf("graph: move_down: %w", err)
		}
	} else if err := w.SetHead(parent, succ); err != nil {
		return fmt.Errorf("graph: move_down: %w", err)
	}
	if farSucc != 0 {
		if err := retarget(w, farSucc, parent, func(ft *store.TripleVal) { ft.Prev = id }); err != nil {
			return fmt.Errorf("graph: move_down: %w", err)
		}
	}
	return nil
}

// IsDescendantOf walks pivot's forward child set and reports whether it
// ever reaches subject. Because the graph may share nodes, the same id can
// be revisited through different parents; visited ids are memoized so the
// walk terminates in O(nodes) rather than the unmemoized worst case
// (spec.md §4.2).
func IsDescendantOf(s *store.Snapshot, subject, pivot uint64) (bool, error) {
	visited := make(map[uint64]bool)
	var walk func(node uint64) (bool, error)
	walk = func(node uint64) (bool, error) {
		if node == subject {
			return true, nil
		}
		if visited[node] {
			return false, nil
		}
		visited[node] = true
		it := s.ChildIDs(node)
		for {
			id, err, ok := it.Next()
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
			found, err := walk(id)
			if err != nil {
				return false, err
			}
			if found {
				return true, nil
			}
		}
	}
	return walk(pivot)
}
