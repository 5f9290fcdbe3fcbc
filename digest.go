package bptree

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Digest returns an xxhash fingerprint of the stored key sequence, read in
// leaf-chain order. Two trees holding the same keys have the same digest
// regardless of insertion order or shape.
func (t *Tree) Digest() uint64 {
	d := xxhash.New()
	var buf [8]byte
	t.Ascend(func(key uint64) bool {
		binary.LittleEndian.PutUint64(buf[:], key)
		_, _ = d.Write(buf[:])
		return true
	})
	return d.Sum64()
}

// hashKey maps a key to the 32-bit hash used by the lookup cache
func hashKey(key uint64) uint32 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], key)
	return uint32(xxhash.Sum64(buf[:]))
}
