// Package algo contains algorithms used for traversing and editing a b+ tree.
package algo

import (
	"sort"

	"bptree/internal/base"
)

const searchThreshold = 32

// FindChildIndex returns the position of the child to follow for key:
// 0 selects First, i selects Seps[i-1].Child.
func FindChildIndex(node *base.Node, key uint64) int {
	seps := node.Seps
	if len(seps) < searchThreshold {
		i := 0
		for i < len(seps) && key >= seps[i].Key {
			i++
		}
		return i
	}

	return sort.Search(len(seps), func(i int) bool {
		return key < seps[i].Key
	})
}

// FindChild returns the child handle that routes key
func FindChild(node *base.Node, key uint64) base.Handle {
	return node.ChildAt(FindChildIndex(node, key))
}

// FindKeyInLeaf returns index of key in leaf, or -1 if not found
func FindKeyInLeaf(node *base.Node, key uint64) int {
	if !node.IsLeaf() {
		return -1
	}

	keys := node.Keys
	idx := sort.Search(len(keys), func(i int) bool {
		return keys[i] >= key
	})
	if idx < len(keys) && keys[idx] == key {
		return idx
	}
	return -1
}

// FindInsertPosition returns position to insert key in a leaf
func FindInsertPosition(node *base.Node, key uint64) int {
	keys := node.Keys
	if len(keys) < searchThreshold {
		pos := 0
		for pos < len(keys) && key > keys[pos] {
			pos++
		}
		return pos
	}

	return sort.Search(len(keys), func(i int) bool {
		return key <= keys[i]
	})
}

// FindSeparatorPosition returns position to insert a separator with key
func FindSeparatorPosition(node *base.Node, key uint64) int {
	seps := node.Seps
	return sort.Search(len(seps), func(i int) bool {
		return key <= seps[i].Key
	})
}

// SplitHint guides how to bias the split point
type SplitHint int

const (
	SplitBalanced  SplitHint = iota // Default: midpoint
	SplitRightBias                  // Ascending inserts: keep left full, new key alone on the right
)

// LeafSplitHint picks the split strategy for inserting key into a full leaf.
func LeafSplitHint(node *base.Node, key uint64) SplitHint {
	if len(node.Keys) > 0 && key > node.Keys[len(node.Keys)-1] {
		return SplitRightBias
	}
	return SplitBalanced
}

// InsertAt inserts value at index in slice
func InsertAt(slice []uint64, index int, value uint64) []uint64 {
	slice = append(slice, 0)
	copy(slice[index+1:], slice[index:])
	slice[index] = value
	return slice
}

// RemoveAt removes element at index from slice
func RemoveAt(slice []uint64, index int) []uint64 {
	return append(slice[:index], slice[index+1:]...)
}

// InsertSeparatorAt inserts sep at index in slice
func InsertSeparatorAt(slice []base.Separator, index int, sep base.Separator) []base.Separator {
	slice = append(slice, base.Separator{})
	copy(slice[index+1:], slice[index:])
	slice[index] = sep
	return slice
}

// RemoveSeparatorAt removes separator at index from slice
func RemoveSeparatorAt(slice []base.Separator, index int) []base.Separator {
	return append(slice[:index], slice[index+1:]...)
}
