package base

// Handle addresses a node slot in an Arena. The zero Handle is never
// allocated and stands for "no node" (missing parent, end of leaf chain).
type Handle uint32

const Nil Handle = 0

// MinCapacity is the smallest node capacity whose split threshold leaves
// room for a non-zero minimum fill.
const MinCapacity = 2

// Separator routes keys >= Key (and below the next separator) to Child.
type Separator struct {
	Key   uint64
	Child Handle
}

// Node is a B+ tree node. Leaf nodes use Keys, Next and Prev; branch nodes
// use First and Seps. Parent is a non-owning back-reference.
type Node struct {
	ID     uint64 // Diagnostic identity, unique within one arena
	Leaf   bool
	MaxCap int
	Parent Handle

	// Leaf
	Keys []uint64
	Next Handle
	Prev Handle

	// Branch
	First Handle // Child for keys below Seps[0].Key
	Seps  []Separator
}

// IsLeaf returns true if this is a leaf Node
func (n *Node) IsLeaf() bool {
	return n.Leaf
}

// Count returns the number of entries: keys for a leaf, separators for a
// branch.
func (n *Node) Count() int {
	if n.Leaf {
		return len(n.Keys)
	}
	return len(n.Seps)
}

// Threshold is the split threshold ceil((MaxCap+1)/2). A node never holds
// more entries than this at rest.
func (n *Node) Threshold() int {
	return SplitThreshold(n.MaxCap)
}

// MinFill is the entry count below which a non-root node underflows after
// a removal.
func (n *Node) MinFill() int {
	return n.Threshold() / 2
}

// CanInsert reports whether one more entry fits without splitting.
func (n *Node) CanInsert() bool {
	return n.Count() < n.Threshold()
}

// IsUnderflow checks if Node has too few entries (doesn't apply to root)
func (n *Node) IsUnderflow() bool {
	return n.Count() < n.MinFill()
}

// CanLend reports whether a sibling may give up one entry and stay at or
// above the minimum fill.
func (n *Node) CanLend() bool {
	return n.Count() > n.MinFill()
}

// Children returns the branch's child handles in key order.
func (n *Node) Children() []Handle {
	if n.Leaf {
		return nil
	}
	children := make([]Handle, 0, len(n.Seps)+1)
	children = append(children, n.First)
	for _, sep := range n.Seps {
		children = append(children, sep.Child)
	}
	return children
}

// ChildAt returns the child at position pos, where position 0 is First and
// position i+1 is Seps[i].Child.
func (n *Node) ChildAt(pos int) Handle {
	if pos == 0 {
		return n.First
	}
	return n.Seps[pos-1].Child
}

// ChildPosition returns the position of child among the branch's children,
// or -1 if it is not a child of this node.
func (n *Node) ChildPosition(child Handle) int {
	if n.First == child {
		return 0
	}
	for i, sep := range n.Seps {
		if sep.Child == child {
			return i + 1
		}
	}
	return -1
}

// SplitThreshold returns ceil((maxCap+1)/2).
func SplitThreshold(maxCap int) int {
	return (maxCap + 2) / 2
}

func (n *Node) reset() {
	n.ID = 0
	n.Leaf = false
	n.MaxCap = 0
	n.Parent = Nil
	n.Keys = n.Keys[:0]
	n.Next = Nil
	n.Prev = Nil
	n.First = Nil
	n.Seps = n.Seps[:0]
}
