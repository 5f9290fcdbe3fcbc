package bptree

import (
	"bptree/internal/base"
)

// NodeSnapshot is the diagnostic view of one node. Leaves fill Keys, Next
// and Prev; internal nodes fill Separators and Children. Parent, Next and
// Prev are nil when the link is absent.
type NodeSnapshot struct {
	ID         uint64   `json:"id"`
	Leaf       bool     `json:"leaf"`
	Count      int      `json:"count"`
	Parent     *uint64  `json:"parent"`
	Keys       []uint64 `json:"keys,omitempty"`
	Next       *uint64  `json:"next,omitempty"`
	Prev       *uint64  `json:"prev,omitempty"`
	Separators []uint64 `json:"separators,omitempty"`
	Children   []uint64 `json:"children,omitempty"`
}

// Snapshot is a structural dump of a tree, nodes in breadth-first order
// starting at the root.
type Snapshot struct {
	Root   uint64         `json:"root"`
	Height int            `json:"height"`
	Size   int            `json:"size"`
	Nodes  []NodeSnapshot `json:"nodes"`
}

// Snapshot captures the current structure of the tree. The result shares
// no memory with the tree.
func (t *Tree) Snapshot() Snapshot {
	snap := Snapshot{
		Root:   t.node(t.root).ID,
		Height: t.height,
		Size:   t.count,
		Nodes:  make([]NodeSnapshot, 0, t.arena.Len()),
	}

	queue := []base.Handle{t.root}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]

		n := t.node(h)
		ns := NodeSnapshot{
			ID:     n.ID,
			Leaf:   n.IsLeaf(),
			Count:  n.Count(),
			Parent: t.idOf(n.Parent),
		}

		if n.IsLeaf() {
			ns.Keys = append([]uint64(nil), n.Keys...)
			ns.Next = t.idOf(n.Next)
			ns.Prev = t.idOf(n.Prev)
		} else {
			for _, sep := range n.Seps {
				ns.Separators = append(ns.Separators, sep.Key)
			}
			for _, child := range n.Children() {
				ns.Children = append(ns.Children, t.node(child).ID)
				queue = append(queue, child)
			}
		}

		snap.Nodes = append(snap.Nodes, ns)
	}

	return snap
}

func (t *Tree) idOf(h base.Handle) *uint64 {
	if h == base.Nil {
		return nil
	}
	id := t.node(h).ID
	return &id
}

// Leaves returns the leaf nodes of the snapshot in breadth-first order,
// which for a valid tree is also leaf-chain order.
func (s Snapshot) Leaves() []NodeSnapshot {
	var leaves []NodeSnapshot
	for _, n := range s.Nodes {
		if n.Leaf {
			leaves = append(leaves, n)
		}
	}
	return leaves
}
