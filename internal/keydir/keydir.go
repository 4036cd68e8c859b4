// Package keydir implements the in-memory index of live keys.
package keydir

import (
	"bytes"

	"github.com/google/btree"
)

// Entry locates the latest value of a key inside the log.
type Entry struct {
	Offset uint64 // Byte offset of the first value byte (not the record start)
	Size   uint32 // Size of the value in bytes
}

type item struct {
	key   []byte
	entry Entry
}

func less(a, b item) bool { return bytes.Compare(a.key, b.key) < 0 }

const degree = 32

// KeyDir maps keys to their on-disk value location, ordered by raw byte
// comparison of the keys.
//
// A key is present iff the most recent record for it in the log is not a
// tombstone. The KeyDir is never persisted; it is rebuilt by replaying the
// log on open.
type KeyDir struct {
	tree *btree.BTreeG[item]
}

func New() *KeyDir {
	return &KeyDir{tree: btree.NewG[item](degree, less)}
}

func (kd *KeyDir) Get(key []byte) (Entry, bool) {
	it, ok := kd.tree.Get(item{key: key})
	return it.entry, ok
}

func (kd *KeyDir) Has(key []byte) bool {
	return kd.tree.Has(item{key: key})
}

// Put inserts or overwrites the entry for key. The key is copied.
func (kd *KeyDir) Put(key []byte, e Entry) {
	kd.tree.ReplaceOrInsert(item{key: bytes.Clone(key), entry: e})
}

// Delete removes key and reports whether it was present.
func (kd *KeyDir) Delete(key []byte) bool {
	_, ok := kd.tree.Delete(item{key: key})
	return ok
}

func (kd *KeyDir) Len() int { return kd.tree.Len() }

// Ascend calls fn for every key in order until fn returns false. The key
// passed to fn must not be modified.
func (kd *KeyDir) Ascend(fn func(key []byte, e Entry) bool) {
	kd.tree.Ascend(func(it item) bool {
		return fn(it.key, it.entry)
	})
}
