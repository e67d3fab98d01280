package interval

// Tree is an augmented interval tree: a binary search tree keyed by
// interval start, where every node carries the maximum end across its
// subtree. Queries prune any subtree whose max end is at or below the
// query start, giving O(log n + k) on balanced input.
//
// The tree is not rebalanced on insert. Batches arrive in effectively
// arbitrary order (feed files, API payloads), which keeps the expected
// depth logarithmic without the bookkeeping of a self-balancing tree.
type Tree struct {
	root *treeNode
	size int
}

type treeNode struct {
	rec    Record
	maxEnd int64
	left   *treeNode
	right  *treeNode
}

// NewTree creates an empty augmented interval tree.
func NewTree() *Tree {
	return &Tree{}
}

// Insert adds one interval, updating max-end annotations along the
// insertion path.
func (t *Tree) Insert(id string, start, end int64) error {
	if end < start {
		return ErrInvalidRange
	}
	rec := Record{ID: id, Start: start, End: end}
	t.root = insertNode(t.root, rec)
	t.size++
	return nil
}

func insertNode(n *treeNode, rec Record) *treeNode {
	if n == nil {
		return &treeNode{rec: rec, maxEnd: rec.End}
	}
	if rec.End > n.maxEnd {
		n.maxEnd = rec.End
	}
	// Ties on start go right so equal-start intervals stay queryable.
	if rec.Start < n.rec.Start {
		n.left = insertNode(n.left, rec)
	} else {
		n.right = insertNode(n.right, rec)
	}
	return n
}

// Query collects every stored interval overlapping [start, end).
func (t *Tree) Query(start, end int64) []string {
	var out []string
	queryNode(t.root, start, end, &out)
	return out
}

func queryNode(n *treeNode, start, end int64, out *[]string) {
	if n == nil {
		return
	}
	// No interval in this subtree reaches past the query start.
	if n.maxEnd <= start {
		return
	}
	queryNode(n.left, start, end, out)
	if n.rec.Overlaps(start, end) {
		*out = append(*out, n.rec.ID)
	}
	// Everything to the right starts at or after n.rec.Start; once that
	// is past the query end, no right descendant can overlap.
	if n.rec.Start < end {
		queryNode(n.right, start, end, out)
	}
}

// Clear drops all intervals.
func (t *Tree) Clear() {
	t.root = nil
	t.size = 0
}

// Len returns the number of stored intervals.
func (t *Tree) Len() int { return t.size }

var _ Index = (*Tree)(nil)
