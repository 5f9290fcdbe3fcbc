package bptree

import (
	"bptree/internal/algo"
	"bptree/internal/base"
)

// Tree is an in-memory B+ tree over uint64 keys.
//
// A Tree is not safe for concurrent use; wrap it in a SyncTree when it is
// shared between goroutines.
type Tree struct {
	arena  *base.Arena
	root   base.Handle
	count  int
	height int
	opts   Options
	log    Logger
}

// New creates an empty tree whose root is a single empty leaf.
func New(opts ...Option) (*Tree, error) {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if err := options.validate(); err != nil {
		return nil, err
	}

	arena := base.NewArena()
	return &Tree{
		arena:  arena,
		root:   arena.NewLeaf(options.leafCapacity),
		height: 1,
		opts:   options,
		log:    options.logger,
	}, nil
}

// Insert adds key to the tree. Duplicate keys are rejected: Insert returns
// false and leaves the tree unchanged when key is already present.
func (t *Tree) Insert(key uint64) bool {
	if algo.FindKeyInLeaf(t.node(t.findLeaf(key)), key) >= 0 {
		return false
	}

	start := t.root
	root := t.node(start)
	if root.IsLeaf() {
		if root.CanInsert() {
			t.insertIntoLeaf(start, key)
			t.count++
			return true
		}
		// Full leaf root: give it a parent so the split below has
		// somewhere to copy the promoted key.
		start = t.adoptParent(start)
	}

	t.insertFrom(start, key)
	t.count++
	t.settleRoot()
	return true
}

// LookUp returns the record for key, or an invalid Record if key is absent.
func (t *Tree) LookUp(key uint64) Record {
	leaf := t.node(t.findLeaf(key))
	if algo.FindKeyInLeaf(leaf, key) < 0 {
		return Record{}
	}
	return Record{Key: key, Valid: true}
}

// Remove deletes key from the tree, rebalancing on underflow. Removing an
// absent key is a no-op and returns false.
func (t *Tree) Remove(key uint64) bool {
	leafH := t.findLeaf(key)
	leaf := t.node(leafH)

	idx := algo.FindKeyInLeaf(leaf, key)
	if idx < 0 {
		return false
	}

	t.removeFromLeaf(leafH, idx)
	t.count--

	if leafH != t.root && leaf.IsUnderflow() {
		t.rebalanceLeaf(leafH)
	}
	return true
}

// Len returns the number of keys stored
func (t *Tree) Len() int {
	return t.count
}

// Height returns the number of levels; a tree whose root is a leaf has
// height 1.
func (t *Tree) Height() int {
	return t.height
}

// Ascend calls fn for every key in ascending order by walking the leaf
// chain from the leftmost leaf. Iteration stops when fn returns false.
func (t *Tree) Ascend(fn func(key uint64) bool) {
	for h := t.leftmostLeaf(); h != base.Nil; {
		leaf := t.node(h)
		for _, key := range leaf.Keys {
			if !fn(key) {
				return
			}
		}
		h = leaf.Next
	}
}

// Leaves calls fn with the keys of each leaf in chain order. The slice is a
// copy and may be retained.
func (t *Tree) Leaves(fn func(keys []uint64) bool) {
	for h := t.leftmostLeaf(); h != base.Nil; {
		leaf := t.node(h)
		keys := make([]uint64, len(leaf.Keys))
		copy(keys, leaf.Keys)
		if !fn(keys) {
			return
		}
		h = leaf.Next
	}
}

// Keys returns every stored key in ascending order
func (t *Tree) Keys() []uint64 {
	keys := make([]uint64, 0, t.count)
	t.Ascend(func(key uint64) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

func (t *Tree) node(h base.Handle) *base.Node {
	return t.arena.Get(h)
}

// findLeaf descends from the root to the leaf responsible for key
func (t *Tree) findLeaf(key uint64) base.Handle {
	return t.descend(t.root, key)
}

func (t *Tree) leftmostLeaf() base.Handle {
	h := t.root
	for n := t.node(h); !n.IsLeaf(); n = t.node(h) {
		h = n.First
	}
	return h
}

// adoptParent creates a branch whose only child is h. h must be the root;
// the tree's root pointer is moved by settleRoot.
func (t *Tree) adoptParent(h base.Handle) base.Handle {
	parentH := t.arena.NewBranch(t.opts.internalCapacity)
	t.node(parentH).First = h
	t.node(h).Parent = parentH
	return parentH
}

// settleRoot follows parent links from the current root. Every step is one
// new level created by a root split.
func (t *Tree) settleRoot() {
	for {
		parent := t.node(t.root).Parent
		if parent == base.Nil {
			return
		}
		t.root = parent
		t.height++
		t.log.Info("root split", "root", t.node(parent).ID, "height", t.height)
	}
}

// collapseRoot replaces a branch root that has lost its last separator with
// its only child.
func (t *Tree) collapseRoot() {
	old := t.root
	child := t.node(old).First
	t.node(child).Parent = base.Nil
	t.root = child
	t.arena.Free(old)
	t.height--
	t.log.Info("root collapsed", "root", t.node(child).ID, "height", t.height)
}
