package base

// Arena owns every node of one tree. Nodes are addressed by Handle; freed
// slots are recycled through a free list while node IDs keep increasing.
type Arena struct {
	slots  []*Node // slots[0] is reserved for Nil
	free   []Handle
	nextID uint64
	live   int
}

// NewArena creates an empty arena
func NewArena() *Arena {
	return &Arena{
		slots: make([]*Node, 1, 64),
	}
}

// NewLeaf allocates an empty leaf node
func (a *Arena) NewLeaf(maxCap int) Handle {
	h, n := a.alloc(maxCap)
	n.Leaf = true
	return h
}

// NewBranch allocates a branch node with no children
func (a *Arena) NewBranch(maxCap int) Handle {
	h, _ := a.alloc(maxCap)
	return h
}

func (a *Arena) alloc(maxCap int) (Handle, *Node) {
	var h Handle
	var n *Node
	if len(a.free) > 0 {
		h = a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
		n = a.slots[h]
	} else {
		h = Handle(len(a.slots))
		n = &Node{}
		a.slots = append(a.slots, n)
	}
	n.reset()
	n.ID = a.nextID
	n.MaxCap = maxCap
	a.nextID++
	a.live++
	return h, n
}

// Get returns the node for h. It panics on Nil or a freed handle since
// either means the tree structure is corrupt.
func (a *Arena) Get(h Handle) *Node {
	if h == Nil || int(h) >= len(a.slots) {
		panic("bptree: invalid node handle")
	}
	n := a.slots[h]
	if n.MaxCap == 0 {
		panic("bptree: use of freed node handle")
	}
	return n
}

// Free releases h for reuse. The node's storage is kept for the next
// allocation.
func (a *Arena) Free(h Handle) {
	n := a.Get(h)
	n.reset()
	a.free = append(a.free, h)
	a.live--
}

// Len returns the number of live nodes
func (a *Arena) Len() int {
	return a.live
}

// NextID returns the ID the next allocated node will receive
func (a *Arena) NextID() uint64 {
	return a.nextID
}
