package algo

import (
	"bptree/internal/base"
)

// ApplyBranchRemoveSeparator removes the separator at sepIdx and the child it
// routes to. The child is not freed.
func ApplyBranchRemoveSeparator(node *base.Node, sepIdx int) {
	node.Seps = RemoveSeparatorAt(node.Seps, sepIdx)
}

// BorrowFromLeft moves the last entry of the left sibling to the front of
// node. parent.Seps[sepIdx] is the separator between the two.
func BorrowFromLeft(a *base.Arena, nodeH, leftH base.Handle, parent *base.Node, sepIdx int) {
	node := a.Get(nodeH)
	left := a.Get(leftH)

	if node.IsLeaf() {
		last := len(left.Keys) - 1
		borrowed := left.Keys[last]
		left.Keys = left.Keys[:last]
		node.Keys = InsertAt(node.Keys, 0, borrowed)

		// Separator becomes the first key of the right node
		parent.Seps[sepIdx].Key = borrowed
		return
	}

	// Branch borrow: rotate through the parent
	last := len(left.Seps) - 1
	borrowed := left.Seps[last]
	left.Seps = left.Seps[:last]

	node.Seps = InsertSeparatorAt(node.Seps, 0, base.Separator{
		Key:   parent.Seps[sepIdx].Key,
		Child: node.First,
	})
	node.First = borrowed.Child
	a.Get(borrowed.Child).Parent = nodeH

	parent.Seps[sepIdx].Key = borrowed.Key
}

// BorrowFromRight moves the first entry of the right sibling to the end of
// node. parent.Seps[sepIdx] is the separator between the two.
func BorrowFromRight(a *base.Arena, nodeH, rightH base.Handle, parent *base.Node, sepIdx int) {
	node := a.Get(nodeH)
	right := a.Get(rightH)

	if node.IsLeaf() {
		borrowed := right.Keys[0]
		right.Keys = RemoveAt(right.Keys, 0)
		node.Keys = append(node.Keys, borrowed)

		// Separator becomes the new first key of the right sibling
		parent.Seps[sepIdx].Key = right.Keys[0]
		return
	}

	// Branch borrow: rotate through the parent
	borrowed := right.Seps[0]
	right.Seps = RemoveSeparatorAt(right.Seps, 0)

	node.Seps = append(node.Seps, base.Separator{
		Key:   parent.Seps[sepIdx].Key,
		Child: right.First,
	})
	a.Get(right.First).Parent = nodeH
	right.First = borrowed.Child

	parent.Seps[sepIdx].Key = borrowed.Key
}

// MergeNodes combines the right node into the left node.
// For branch nodes the parent's separator key is pulled down and every
// transferred child is reparented. For leaves the right node is unlinked
// from the leaf chain.
// Does NOT update parent - caller must call ApplyBranchRemoveSeparator and
// free the right node.
func MergeNodes(a *base.Arena, leftH, rightH base.Handle, separatorKey uint64) {
	left := a.Get(leftH)
	right := a.Get(rightH)

	if left.IsLeaf() {
		left.Keys = append(left.Keys, right.Keys...)

		left.Next = right.Next
		if right.Next != base.Nil {
			a.Get(right.Next).Prev = leftH
		}
		return
	}

	left.Seps = append(left.Seps, base.Separator{Key: separatorKey, Child: right.First})
	left.Seps = append(left.Seps, right.Seps...)

	a.Get(right.First).Parent = leftH
	for _, sep := range right.Seps {
		a.Get(sep.Child).Parent = leftH
	}
}
