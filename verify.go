package bptree

import (
	"fmt"

	"bptree/internal/base"
)

// bounds is the half-open key range [lo, hi) a subtree must respect.
type bounds struct {
	lo, hi       uint64
	hasLo, hasHi bool
}

func (b bounds) contains(key uint64) bool {
	if b.hasLo && key < b.lo {
		return false
	}
	if b.hasHi && key >= b.hi {
		return false
	}
	return true
}

// Verify checks the structural invariants of the tree: fill limits, sorted
// keys and separators, separator bounds, parent back-references, uniform
// leaf depth, the leaf chain and the key count. It returns an error
// wrapping ErrCorruption describing the first violation found.
func (t *Tree) Verify() error {
	root := t.node(t.root)
	if root.Parent != base.Nil {
		return fmt.Errorf("%w: root %d has a parent", ErrCorruption, root.ID)
	}
	if !root.IsLeaf() && len(root.Seps) == 0 {
		return fmt.Errorf("%w: internal root %d has no separators", ErrCorruption, root.ID)
	}

	v := &verifier{tree: t}
	if err := v.walk(t.root, base.Nil, bounds{}, 1); err != nil {
		return err
	}

	if v.keys != t.count {
		return fmt.Errorf("%w: %d keys in leaves, count is %d", ErrCorruption, v.keys, t.count)
	}
	if v.nodes != t.arena.Len() {
		return fmt.Errorf("%w: %d reachable nodes, arena holds %d", ErrCorruption, v.nodes, t.arena.Len())
	}

	return v.checkChain()
}

type verifier struct {
	tree   *Tree
	leaves []base.Handle // Leaves in key order
	keys   int
	nodes  int
}

func (v *verifier) walk(h, parent base.Handle, b bounds, depth int) error {
	t := v.tree
	n := t.node(h)
	v.nodes++

	if n.Parent != parent {
		return fmt.Errorf("%w: node %d has wrong parent", ErrCorruption, n.ID)
	}
	if n.Count() > n.Threshold() {
		return fmt.Errorf("%w: node %d holds %d entries, threshold %d", ErrCorruption, n.ID, n.Count(), n.Threshold())
	}

	if n.IsLeaf() {
		if depth != t.height {
			return fmt.Errorf("%w: leaf %d at depth %d, height %d", ErrCorruption, n.ID, depth, t.height)
		}
		for i, key := range n.Keys {
			if i > 0 && key <= n.Keys[i-1] {
				return fmt.Errorf("%w: leaf %d keys not strictly ascending at %d", ErrCorruption, n.ID, i)
			}
			if !b.contains(key) {
				return fmt.Errorf("%w: key %d in leaf %d outside separator bounds", ErrCorruption, key, n.ID)
			}
		}
		v.leaves = append(v.leaves, h)
		v.keys += len(n.Keys)
		return nil
	}

	for i, sep := range n.Seps {
		if i > 0 && sep.Key <= n.Seps[i-1].Key {
			return fmt.Errorf("%w: node %d separators not strictly ascending at %d", ErrCorruption, n.ID, i)
		}
		if !b.contains(sep.Key) {
			return fmt.Errorf("%w: separator %d in node %d outside parent bounds", ErrCorruption, sep.Key, n.ID)
		}
	}

	for pos, child := range n.Children() {
		cb := b
		if pos > 0 {
			cb.lo, cb.hasLo = n.Seps[pos-1].Key, true
		}
		if pos < len(n.Seps) {
			cb.hi, cb.hasHi = n.Seps[pos].Key, true
		}
		if err := v.walk(child, h, cb, depth+1); err != nil {
			return err
		}
	}
	return nil
}

// checkChain walks Next links from the leftmost leaf and compares the
// visit order with the in-order leaves found by walk.
func (v *verifier) checkChain() error {
	t := v.tree
	prev := base.Nil
	i := 0
	var last uint64
	seen := false

	for h := t.leftmostLeaf(); h != base.Nil; h = t.node(h).Next {
		n := t.node(h)
		if i >= len(v.leaves) || v.leaves[i] != h {
			return fmt.Errorf("%w: leaf chain out of order at leaf %d", ErrCorruption, n.ID)
		}
		if n.Prev != prev {
			return fmt.Errorf("%w: leaf %d has wrong prev link", ErrCorruption, n.ID)
		}
		for _, key := range n.Keys {
			if seen && key <= last {
				return fmt.Errorf("%w: leaf chain not ascending at key %d", ErrCorruption, key)
			}
			last, seen = key, true
		}
		prev = h
		i++
	}

	if i != len(v.leaves) {
		return fmt.Errorf("%w: leaf chain visits %d of %d leaves", ErrCorruption, i, len(v.leaves))
	}
	return nil
}
