package bptree

import (
	"bptree/internal/algo"
	"bptree/internal/base"
)

// descend follows findChild from h until it reaches a leaf
func (t *Tree) descend(h base.Handle, key uint64) base.Handle {
	for n := t.node(h); !n.IsLeaf(); n = t.node(h) {
		h = algo.FindChild(n, key)
	}
	return h
}

// insertFrom inserts key into the subtree rooted at branch h, splitting
// leaves and pushing up branches as needed.
func (t *Tree) insertFrom(h base.Handle, key uint64) {
	for {
		leafH := t.descend(h, key)
		leaf := t.node(leafH)
		if leaf.CanInsert() {
			t.insertIntoLeaf(leafH, key)
			return
		}

		parentH := leaf.Parent
		if t.node(parentH).CanInsert() {
			sibH := t.splitLeaf(leafH, key)
			t.copyUp(parentH, sibH)
			return
		}

		// Parent is full: split it to make room, then retry from the
		// node the split was absorbed into.
		h = t.pushUp(parentH)
	}
}

// copyUp adds the first key of a freshly split leaf as a separator in parent
func (t *Tree) copyUp(parentH, leafH base.Handle) {
	t.addSeparator(parentH, t.node(leafH).Keys[0], leafH)
}

func (t *Tree) addSeparator(parentH base.Handle, key uint64, child base.Handle) {
	parent := t.node(parentH)
	pos := algo.FindSeparatorPosition(parent, key)
	parent.Seps = algo.InsertSeparatorAt(parent.Seps, pos, base.Separator{Key: key, Child: child})
	t.node(child).Parent = parentH
}

// pushUp splits the full branch h in two and promotes its middle separator
// into the parent, creating a new parent when h is the root. A full parent
// is pushed up first.
//
// Returns the parent that absorbed the split, or the topmost ancestor when
// the split cascaded further up.
func (t *Tree) pushUp(h base.Handle) base.Handle {
	n := t.node(h)
	if n.Parent == base.Nil {
		t.adoptParent(h)
	}

	cascaded := false
	if !t.node(n.Parent).CanInsert() {
		t.pushUp(n.Parent)
		cascaded = true
	}

	// Re-read: the cascade may have moved h under a new sibling
	parentH := n.Parent

	mid := len(n.Seps) / 2
	middle := n.Seps[mid]

	sibH := t.arena.NewBranch(t.opts.internalCapacity)
	sib := t.node(sibH)
	sib.Parent = parentH

	sib.First = middle.Child
	t.node(middle.Child).Parent = sibH

	for _, sep := range n.Seps[mid+1:] {
		sib.Seps = append(sib.Seps, sep)
		t.node(sep.Child).Parent = sibH
	}
	n.Seps = n.Seps[:mid]

	t.addSeparator(parentH, middle.Key, sibH)

	if cascaded {
		return t.topmost(parentH)
	}
	return parentH
}

// topmost walks parent links from h to the node without a parent
func (t *Tree) topmost(h base.Handle) base.Handle {
	for {
		parent := t.node(h).Parent
		if parent == base.Nil {
			return h
		}
		h = parent
	}
}

// siblings returns h's parent, h's position among the parent's children
// and the adjacent siblings under the same parent (Nil when absent).
func (t *Tree) siblings(h base.Handle) (parentH base.Handle, pos int, left, right base.Handle) {
	parentH = t.node(h).Parent
	parent := t.node(parentH)

	pos = parent.ChildPosition(h)
	if pos < 0 {
		panic("bptree: node missing from its parent")
	}
	if pos > 0 {
		left = parent.ChildAt(pos - 1)
	}
	if pos < len(parent.Seps) {
		right = parent.ChildAt(pos + 1)
	}
	return parentH, pos, left, right
}

// merge folds rightH into leftH and drops the separator at sepIdx from the
// parent.
func (t *Tree) merge(parentH, leftH, rightH base.Handle, sepIdx int) {
	parent := t.node(parentH)
	algo.MergeNodes(t.arena, leftH, rightH, parent.Seps[sepIdx].Key)
	algo.ApplyBranchRemoveSeparator(parent, sepIdx)
	t.arena.Free(rightH)
}

// rebalanceBranch restores the minimum fill of branch h by rotating a
// separator in from a sibling or merging with one, walking up while
// parents underflow. A root left without separators collapses into its
// only child.
func (t *Tree) rebalanceBranch(h base.Handle) {
	for {
		n := t.node(h)
		if h == t.root {
			if len(n.Seps) == 0 {
				t.collapseRoot()
			}
			return
		}
		if !n.IsUnderflow() {
			return
		}

		parentH, pos, left, right := t.siblings(h)
		if left == base.Nil && right == base.Nil {
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

		h = parentH
	}
}
