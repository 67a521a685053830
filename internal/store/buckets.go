package store

// RootID is the implicit root node. It always exists and carries the
// payload name "/".
const RootID uint64 = 0

// Logical index names, created in this order on a fresh environment —
// matching spec.md §6's slot order 0..5 (ID_SEQ, LINKS, RLINKS, NODES,
// SESSIONS, RSESSIONS).
var (
	bucketIDSeq     = []byte("id_seq")
	bucketLinks     = []byte("links")
	bucketRLinks    = []byte("rlinks")
	bucketNodes     = []byte("nodes")
	bucketSessions  = []byte("sessions")
	bucketRSessions = []byte("rsessions")
	bucketMeta      = []byte("meta")
)

var allBuckets = [][]byte{
	bucketIDSeq,
	bucketLinks,
	bucketRLinks,
	bucketNodes,
	bucketSessions,
	bucketRSessions,
}

// idSeqKey is the single key under which ID_SEQ's next-unused-id counter is
// stored.
var idSeqKey = []byte{0}

// metaRootsKey records the configured nRoots value passed to Open, for
// fidelity with spec.md's open(path, n_roots) signature (see DESIGN.md).
var metaRootsKey = []byte("n_roots")
