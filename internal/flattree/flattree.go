// Package flattree implements the viewport engine of spec.md §4.3: a
// build/refill/done state machine that flattens a visible subtree into a
// bounded-height, priority-ordered list of rows, de-duplicating the
// subtrees of shared nodes so a DAG renders as a finite tree.
package flattree

import (
	"sort"

	"github.com/untoldecay/grove/internal/wrap"
)

// Item is one node as seen by the builder: its id and the number of
// display rows it occupies (spec.md §4.3, "Node visual height").
type Item struct {
	ID     uint64
	Height int
}

// State is the result of one Step call.
type State int

const (
	// Build means the queue produced (or attempted to produce) a child;
	// call Step again.
	Build State = iota
	// Refill means the queue is empty but FillRange() names accepted
	// nodes whose children have not been requested yet.
	Refill
	// Done means the viewport is complete.
	Done
)

type fnode struct {
	item Item
	path []int
}

type childIter struct {
	items []Item
	pos   int
	last  int
}

// Builder drives the flat-tree state machine described in spec.md §4.3.
// It owns no storage access: the caller fetches children on Refill and
// hands them back through Fill.
type Builder struct {
	height   int
	fnodes   []fnode
	queue    []*childIter
	start    int
	filled   int
	expanded map[uint64]bool
}

// New starts a builder rooted at root, bounded to height display rows.
// If root alone occupies more rows than height, the viewport cannot even
// render the root (spec.md §4.3, "Root special case"): the builder
// starts empty and Step immediately reports Done.
func New(root Item, height int) *Builder {
	b := &Builder{height: height, expanded: make(map[uint64]bool)}
	if root.Height > height {
		return b
	}
	b.filled = root.Height
	b.fnodes = []fnode{{item: root, path: []int{0}}}
	return b
}

// Step advances the state machine by one unit of work.
func (b *Builder) Step() State {
	if len(b.queue) == 0 {
		if b.start == len(b.fnodes) {
			return Done
		}
		return Refill
	}
	ci := b.queue[0]
	b.queue = b.queue[1:]

	if ci.pos >= len(ci.items) {
		return Build
	}
	child := ci.items[ci.pos]
	ci.pos++

	if b.filled+child.Height > b.height {
		return Done
	}
	b.filled += child.Height

	path := make([]int, len(b.fnodes[ci.last].path)+1)
	copy(path, b.fnodes[ci.last].path)
	path[len(path)-1] = len(b.fnodes)

	b.queue = append(b.queue, ci)
	b.fnodes = append(b.fnodes, fnode{item: child, path: path})
	return Build
}

// FillRange returns the half-open range of accepted-node indices the
// caller must fetch children for during a Refill.
func (b *Builder) FillRange() (start, end int) {
	return b.start, len(b.fnodes)
}

// ID returns the id of the accepted node at index i.
func (b *Builder) ID(i int) uint64 { return b.fnodes[i].item.ID }

// Depth returns the tree depth of the accepted node at index i.
func (b *Builder) Depth(i int) int { return len(b.fnodes[i].path) - 1 }

// ShouldExpand reports whether the node at index i should have its
// children fetched: true only for the first occurrence of its id across
// the whole viewport. Subsequent occurrences of a shared node are still
// rendered (Fill still must be called, with nil) but their subtree is
// not expanded again (spec.md §4.3, "De-duplication").
func (b *Builder) ShouldExpand(i int) bool {
	id := b.fnodes[i].item.ID
	if b.expanded[id] {
		return false
	}
	b.expanded[id] = true
	return true
}

// Fill hands back the children of the accepted node at index last,
// already ordered by sibling priority (the store's natural child-walk
// order). Call once per index named by FillRange, even when the node
// was not expanded (pass nil).
func (b *Builder) Fill(children []Item, last int) {
	b.queue = append(b.queue, &childIter{items: children, last: last})
}

// FinishFill closes out a Refill round: every index in FillRange() has
// had Fill called for it.
func (b *Builder) FinishFill() {
	b.start = len(b.fnodes)
}

// Row is one line of the finished viewport.
type Row struct {
	Item  Item
	Depth int
}

// Finish sorts the accepted nodes by path — lexicographic order over
// insertion-index path keys — producing the final depth-first preorder
// display list, and consumes the builder.
func (b *Builder) Finish() []Row {
	sort.Slice(b.fnodes, func(i, j int) bool {
		return lessPath(b.fnodes[i].path, b.fnodes[j].path)
	})
	rows := make([]Row, len(b.fnodes))
	for i, f := range b.fnodes {
		rows[i] = Row{Item: f.item, Depth: len(f.path) - 1}
	}
	return rows
}

func lessPath(a, b []int) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

// RowHeight computes a node's row height at depth per spec.md §4.3: the
// indent consumes 2*depth+1 columns from the name column's width, and
// the row height is the max wrap-line count across the name, session and
// due-date columns. ok is false when the indent alone leaves no room for
// the name column, meaning the node must be omitted from the viewport.
// sessW or dueW <= 0 means that column is not displayed and contributes
// no height.
func RowHeight(depth, nameW, sessW, dueW int, name, sess, due string) (height int, ok bool) {
	effNameW := nameW - (2*depth + 1)
	if effNameW <= 0 {
		return 0, false
	}
	h := wrap.Height(name, effNameW)
	if sessW > 0 {
		if k := wrap.Height(sess, sessW); k > h {
			h = k
		}
	}
	if dueW > 0 {
		if k := wrap.Height(due, dueW); k > h {
			h = k
		}
	}
	if h == 0 {
		h = 1
	}
	return h, true
}
