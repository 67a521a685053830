// Package doctor walks a store.Snapshot and checks the cross-index
// invariants of spec.md §3/§8 (1–6), returning one pass/fail result per
// invariant —
// mirroring the teacher's cmd/bd/doctor package's role as a standalone
// integrity checker, adapted from per-database-row checks to per-index
// graph invariants.
package doctor

import (
	"fmt"

	"github.com/untoldecay/grove/internal/store"
)

// Check is one named invariant check and its outcome.
type Check struct {
	Name string
	OK   bool
	// Detail explains the violation found, empty when OK.
	Detail string
}

// Run executes every invariant check against snap, in spec order, and
// returns all of them. Callers that only want the first failure should
// scan the slice for the first !OK entry.
func Run(snap *store.Snapshot) ([]Check, error) {
	checks := []func(*store.Snapshot) (Check, error){
		checkSiblingChainsMatchRLinks,
		checkEveryRLinkIsInItsParentsChain,
		checkNodesMatchRLinkMembership,
		checkSessionsAreMutualInverses,
		checkNoCycle,
		checkIDSeqAboveEveryUsedID,
	}
	out := make([]Check, 0, len(checks))
	for _, c := range checks {
		res, err := c(snap)
		if err != nil {
			return out, err
		}
		out = append(out, res)
	}
	return out, nil
}

// checkSiblingChainsMatchRLinks is invariant 1: walking the DLL from
// LINKS[p] enumerates a set S_p, and every c in S_p has a matching RLINKS
// triple.
func checkSiblingChainsMatchRLinks(snap *store.Snapshot) (Check, error) {
	name := "sibling chains match rlinks"
	var bad string
	err := snap.WalkLinks(func(parent, head uint64) error {
		if head == 0 {
			return nil
		}
		seen := map[uint64]bool{}
		it := snap.ChildIDs(parent)
		for {
			id, err, ok := it.Next()
			if err != nil {
				bad = fmt.Sprintf("parent %d: walk failed: %v", parent, err)
				return nil
			}
			if !ok {
				break
			}
			if seen[id] {
				bad = fmt.Sprintf("parent %d: child %d visited twice (cycle in DLL)", parent, id)
				return nil
			}
			seen[id] = true
		}
		return nil
	})
	if err != nil {
		return Check{}, err
	}
	return Check{Name: name, OK: bad == "", Detail: bad}, nil
}

// checkEveryRLinkIsInItsParentsChain is invariant 2's converse: every
// RLINKS triple (c, {p, ...}) must have c reachable from LINKS[p].
func checkEveryRLinkIsInItsParentsChain(snap *store.Snapshot) (Check, error) {
	name := "every rlink child reachable from its parent's chain"
	reachable := map[uint64]map[uint64]bool{} // parent -> set of reachable children
	var bad string
	err := snap.WalkRLinks(func(child uint64, t store.TripleVal) error {
		set, ok := reachable[t.Parent]
		if !ok {
			set = map[uint64]bool{}
			it := snap.ChildIDs(t.Parent)
			for {
				id, err, ok := it.Next()
				if err != nil {
					return err
				}
				if !ok {
					break
				}
				set[id] = true
			}
			reachable[t.Parent] = set
		}
		if !set[child] {
			bad = fmt.Sprintf("rlinks has (%d, parent=%d) but %d does not appear in parent %d's DLL", child, t.Parent, child, t.Parent)
		}
		return nil
	})
	if err != nil {
		return Check{}, err
	}
	return Check{Name: name, OK: bad == "", Detail: bad}, nil
}

// checkNodesMatchRLinkMembership is invariant 3: NODES keys equal {0} union
// every id with at least one RLINKS triple.
func checkNodesMatchRLinkMembership(snap *store.Snapshot) (Check, error) {
	name := "nodes match rlink membership"
	hasRLink := map[uint64]bool{}
	if err := snap.WalkRLinks(func(child uint64, _ store.TripleVal) error {
		hasRLink[child] = true
		return nil
	}); err != nil {
		return Check{}, err
	}

	var bad string
	nodeIDs := map[uint64]bool{}
	if err := snap.WalkNodeIDs(func(id uint64) error {
		nodeIDs[id] = true
		if id != store.RootID && !hasRLink[id] {
			bad = fmt.Sprintf("node %d has a payload but no rlinks entry", id)
		}
		return nil
	}); err != nil {
		return Check{}, err
	}
	if bad == "" {
		for id := range hasRLink {
			if !nodeIDs[id] {
				bad = fmt.Sprintf("id %d has an rlinks entry but no node payload", id)
				break
			}
		}
	}
	return Check{Name: name, OK: bad == "", Detail: bad}, nil
}

// checkSessionsAreMutualInverses is invariant 4: SESSIONS and RSESSIONS
// must be mutual inverses.
func checkSessionsAreMutualInverses(snap *store.Snapshot) (Check, error) {
	name := "sessions and rsessions are mutual inverses"
	var bad string
	err := snap.WalkSessionPairs(func(id uint64, sess store.Session) error {
		if !snap.HasRSession(sess, id) {
			bad = fmt.Sprintf("sessions has (%d, %v) with no matching rsessions entry", id, sess)
		}
		return nil
	})
	if err != nil {
		return Check{}, err
	}
	if bad == "" {
		it := snap.AllSessions()
		for {
			sess, id, err, ok := it.Next()
			if err != nil {
				return Check{}, err
			}
			if !ok {
				break
			}
			if !snap.HasSession(id, sess) {
				bad = fmt.Sprintf("rsessions has (%v, %d) with no matching sessions entry", sess, id)
				break
			}
		}
	}
	return Check{Name: name, OK: bad == "", Detail: bad}, nil
}

// checkNoCycle is invariant 5: no directed cycle in LINKS. A single DFS
// from store.RootID only proves root's own reachable set acyclic; a cycle
// formed entirely among nodes root never reaches (e.g. two nodes sharing
// no parent with root) would pass unnoticed. So this walks every parent
// id WalkLinks yields, not just root, depth-first, rejecting any id
// reached twice on the same active path. visited records ids already
// proven acyclic from a prior top-level start so they aren't re-walked.
func checkNoCycle(snap *store.Snapshot) (Check, error) {
	name := "no cycle in links"
	var bad string
	visiting := map[uint64]bool{}
	visited := map[uint64]bool{}
	var visit func(id uint64) error
	visit = func(id uint64) error {
		if visited[id] {
			return nil
		}
		if visiting[id] {
			bad = fmt.Sprintf("cycle detected through node %d", id)
			return nil
		}
		visiting[id] = true
		defer delete(visiting, id)
		it := snap.ChildIDs(id)
		for {
			child, err, ok := it.Next()
			if err != nil {
				return err
			}
			if !ok {
				break
			}
			if bad != "" {
				return nil
			}
			if err := visit(child); err != nil {
				return err
			}
		}
		if bad == "" {
			visited[id] = true
		}
		return nil
	}
	if err := visit(store.RootID); err != nil {
		return Check{}, err
	}
	if bad == "" {
		err := snap.WalkLinks(func(parent, head uint64) error {
			if bad != "" || visited[parent] {
				return nil
			}
			return visit(parent)
		})
		if err != nil {
			return Check{}, err
		}
	}
	return Check{Name: name, OK: bad == "", Detail: bad}, nil
}

// checkIDSeqAboveEveryUsedID is invariant 6: ID_SEQ strictly exceeds every
// id present in NODES.
func checkIDSeqAboveEveryUsedID(snap *store.Snapshot) (Check, error) {
	name := "id_seq above every used id"
	seq, err := snap.IDSeq()
	if err != nil {
		return Check{}, err
	}
	var bad string
	if err := snap.WalkNodeIDs(func(id uint64) error {
		if id >= seq {
			bad = fmt.Sprintf("node %d is not less than id_seq (%d)", id, seq)
		}
		return nil
	}); err != nil {
		return Check{}, err
	}
	return Check{Name: name, OK: bad == "", Detail: bad}, nil
}
