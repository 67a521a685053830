// Package action implements the closed edit-intent vocabulary of
// spec.md §4.6: the set of mutations the surrounding UI layer is allowed
// to express, each translated into one or more internal/graph calls
// inside a single write transaction.
//
// Every WriteIntent's Apply either fully succeeds (ok == true, safe to
// commit) or is a no-op (ok == false): per spec.md §4.6, "the whole
// intent succeeds or is a no-op (early return without commit)". Apply
// itself does not discard the transaction on ok == false — some intents
// (Share, Cut) may have already written earlier elements of a multi-id
// payload before the one that fails — so the caller must call
// w.Discard() whenever ok is false, and w.Commit() only when true.
package action

import (
	"fmt"
	"time"

	"github.com/untoldecay/grove/internal/graph"
	"github.com/untoldecay/grove/internal/store"
)

// WriteIntent is one edit intent that mutates the graph inside a write
// transaction.
type WriteIntent interface {
	Apply(w *store.WriteTxn) (ok bool, err error)
}

// AddChild creates a node under Parent and, for each id in ExtraParents,
// shares it there too (spec.md §4.6: "parent id, optional extra parent
// ids, payload").
type AddChild struct {
	Parent       uint64
	ExtraParents []uint64
	Payload      store.Payload
}

func (a AddChild) Apply(w *store.WriteTxn) (bool, error) {
	id, err := graph.AddChild(w, a.Parent, a.Payload)
	if err != nil {
		return false, fmt.Errorf("action: add_child: %w", err)
	}
	for _, pid := range a.ExtraParents {
		ok, err := graph.Share(w, id, pid)
		if err != nil {
			return false, fmt.Errorf("action: add_child: %w", err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Delete unlinks ID from Parent, cascading to orphaned descendants.
type Delete struct {
	Parent uint64
	ID     uint64
}

func (d Delete) Apply(w *store.WriteTxn) (bool, error) {
	if err := graph.Delete(w, d.Parent, d.ID); err != nil {
		return false, fmt.Errorf("action: delete: %w", err)
	}
	return true, nil
}

// Rename sets a new name on every id in IDs, preserving each node's due
// date.
type Rename struct {
	IDs  []uint64
	Name string
}

func (r Rename) Apply(w *store.WriteTxn) (bool, error) {
	for _, id := range r.IDs {
		p, err := w.Read(id)
		if err != nil {
			return false, fmt.Errorf("action: rename: %w", err)
		}
		p.Name = r.Name
		if err := graph.Modify(w, id, p); err != nil {
			return false, fmt.Errorf("action: rename: %w", err)
		}
	}
	return true, nil
}

// SetDueDate sets Due on every id in IDs, preserving each node's name.
type SetDueDate struct {
	IDs []uint64
	Due time.Time
}

func (s SetDueDate) Apply(w *store.WriteTxn) (bool, error) {
	due := s.Due
	for _, id := range s.IDs {
		p, err := w.Read(id)
		if err != nil {
			return false, fmt.Errorf("action: set_due_date: %w", err)
		}
		p.Due = &due
		if err := graph.Modify(w, id, p); err != nil {
			return false, fmt.Errorf("action: set_due_date: %w", err)
		}
	}
	return true, nil
}

// UnsetDueDate clears Due on every id in IDs.
type UnsetDueDate struct {
	IDs []uint64
}

func (u UnsetDueDate) Apply(w *store.WriteTxn) (bool, error) {
	for _, id := range u.IDs {
		p, err := w.Read(id)
		if err != nil {
			return false, fmt.Errorf("action: unset_due_date: %w", err)
		}
		p.Due = nil
		if err := graph.Modify(w, id, p); err != nil {
			return false, fmt.Errorf("action: unset_due_date: %w", err)
		}
	}
	return true, nil
}

// AddSession records a work session against ID.
type AddSession struct {
	ID      uint64
	Session store.Session
}

func (a AddSession) Apply(w *store.WriteTxn) (bool, error) {
	if err := graph.AddSession(w, a.ID, a.Session); err != nil {
		return false, fmt.Errorf("action: add_session: %w", err)
	}
	return true, nil
}

// PriorityUp swaps ID with its DLL predecessor under Parent.
type PriorityUp struct {
	Parent uint64
	ID     uint64
}

func (p PriorityUp) Apply(w *store.WriteTxn) (bool, error) {
	if err := graph.MoveUp(w, p.Parent, p.ID); err != nil {
		return false, fmt.Errorf("action: priority_up: %w", err)
	}
	return true, nil
}

// PriorityDown swaps ID with its DLL successor under Parent.
type PriorityDown struct {
	Parent uint64
	ID     uint64
}

func (p PriorityDown) Apply(w *store.WriteTxn) (bool, error) {
	if err := graph.MoveDown(w, p.Parent, p.ID); err != nil {
		return false, fmt.Errorf("action: priority_down: %w", err)
	}
	return true, nil
}

// Share adds Dest as an extra parent of every id in Src. If any element
// would cycle or is already a child of Dest, the whole intent is a
// no-op: ok is false and the caller must discard the transaction.
type Share struct {
	Src  []uint64
	Dest uint64
}

func (s Share) Apply(w *store.WriteTxn) (bool, error) {
	for _, src := range s.Src {
		ok, err := graph.Share(w, src, s.Dest)
		if err != nil {
			return false, fmt.Errorf("action: share: %w", err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// SrcParent names one (parent, id) edge to reparent in a Cut intent.
type SrcParent struct {
	Parent uint64
	ID     uint64
}

// Cut reparents every SrcParent entry from its current parent to Dest.
// Same all-or-nothing rule as Share.
type Cut struct {
	Srcs []SrcParent
	Dest uint64
}

func (c Cut) Apply(w *store.WriteTxn) (bool, error) {
	for _, sp := range c.Srcs {
		ok, err := graph.Cut(w, sp.Parent, sp.ID, c.Dest)
		if err != nil {
			return false, fmt.Errorf("action: cut: %w", err)
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// View holds the UI layer's current navigation state — which subtree is
// being displayed as the viewport root, and the stack of roots to
// restore on ChangeRoot back out. It carries no store mutation, so it
// is not a WriteIntent: spec.md §4.6 lists ChangeRoot alongside the
// store-mutating intents, but moving the viewport root changes no
// persistent state.
type View struct {
	RootID uint64
	stack  []uint64
}

// ChangeRoot switches the viewport to id, remembering the previous root
// so a later ChangeRoot back to it is possible.
func (v *View) ChangeRoot(id uint64) {
	v.stack = append(v.stack, v.RootID)
	v.RootID = id
}

// ChangeRootBack pops the most recently pushed root, if any, and makes
// it current. Reports false if the stack was empty.
func (v *View) ChangeRootBack() bool {
	if len(v.stack) == 0 {
		return false
	}
	v.RootID = v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	return true
}
