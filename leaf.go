package bptree

import (
	"bptree/internal/algo"
	"bptree/internal/base"
)

// insertIntoLeaf places key at its sorted position. The caller has checked
// that key is absent.
func (t *Tree) insertIntoLeaf(h base.Handle, key uint64) {
	leaf := t.node(h)
	pos := algo.FindInsertPosition(leaf, key)
	leaf.Keys = algo.InsertAt(leaf.Keys, pos, key)
}

func (t *Tree) removeFromLeaf(h base.Handle, idx int) {
	leaf := t.node(h)
	leaf.Keys = algo.RemoveAt(leaf.Keys, idx)
}

// splitLeaf inserts key into the full leaf h and splits it, returning the
// new right sibling. The sibling is linked directly after h in the leaf
// chain and shares h's parent; its first key is the one to copy up.
func (t *Tree) splitLeaf(h base.Handle, key uint64) base.Handle {
	sibH := t.arena.NewLeaf(t.opts.leafCapacity)
	leaf := t.node(h)
	sib := t.node(sibH)

	switch algo.LeafSplitHint(leaf, key) {
	case algo.SplitRightBias:
		// Appending past the last key: leave h full and start the
		// sibling with the new key.
		sib.Keys = append(sib.Keys, key)
	default:
		pos := algo.FindInsertPosition(leaf, key)
		leaf.Keys = algo.InsertAt(leaf.Keys, pos, key)

		mid := len(leaf.Keys) / 2
		sib.Keys = append(sib.Keys, leaf.Keys[mid:]...)
		leaf.Keys = leaf.Keys[:mid]
	}

	sib.Parent = leaf.Parent
	sib.Prev = h
	sib.Next = leaf.Next
	if leaf.Next != base.Nil {
		t.node(leaf.Next).Prev = sibH
	}
	leaf.Next = sibH

	return sibH
}

// rebalanceLeaf restores the minimum fill of leaf h after a removal by
// borrowing from a sibling under the same parent, or merging with one and
// propagating the underflow to the parent.
func (t *Tree) rebalanceLeaf(h base.Handle) {
	for {
		if h == t.root {
			return
		}

		parentH, pos, left, right := t.siblings(h)
		if left == base.Nil && right == base.Nil {
			// Lone child of an under-filled branch. Fix the branch first
			// so that h gains a sibling (or becomes the root).
			t.rebalanceBranch(parentH)
			continue
		}

		parent := t.node(parentH)
		switch {
		case left != base.Nil && t.node(left).CanLend():
			algo.BorrowFromLeft(t.arena, h, left, parent, pos-1)
			return
		case right != base.Nil && t.node(right).CanLend():
			algo.BorrowFromRight(t.arena, h, right, parent, pos)
			return
		case left != base.Nil:
			t.merge(parentH, left, h, pos-1)
		default:
			t.merge(parentH, h, right, pos)
		}

		t.rebalanceBranch(parentH)
		return
	}
}
