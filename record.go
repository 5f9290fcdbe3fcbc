package bptree

// Record is a key stored in the tree. A Record with Valid == false is the
// sentinel returned for keys that are not present; it is never stored.
type Record struct {
	Key   uint64
	Valid bool
}
