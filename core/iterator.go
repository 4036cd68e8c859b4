package core

import (
	"bytes"

	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/0xRadioAc7iv/mini-bitcask/internal/keydir"
)

// Bound is one end of a scan range.
type Bound = keydir.Bound

// Included bounds a scan at key, key itself in range.
func Included(key []byte) Bound { return keydir.IncludedBound(key) }

// Excluded bounds a scan at key, key itself out of range.
func Excluded(key []byte) Bound { return keydir.ExcludedBound(key) }

// Unbounded leaves one end of a scan open.
func Unbounded() Bound { return keydir.UnboundedBound() }

// Scan returns an iterator over the live keys between start and end, in
// byte order.
func (bk *MiniBitcask) Scan(start, end Bound) *ScanIterator {
	if bk.closed {
		return &ScanIterator{err: ErrClosed}
	}
	return &ScanIterator{bk: bk, cursor: bk.keyDir.Range(start, end)}
}

// ScanPrefix returns an iterator over the live keys starting with prefix.
// Trailing 0xFF bytes are carried when computing the upper bound; a prefix
// made only of 0xFF bytes, or an empty one, has no upper bound.
func (bk *MiniBitcask) ScanPrefix(prefix []byte) *ScanIterator {
	r := util.BytesPrefix(prefix)

	end := Unbounded()
	if r.Limit != nil {
		end = Excluded(r.Limit)
	}
	return bk.Scan(Included(r.Start), end)
}

// ScanIterator lazily walks a key range. Each call to Next reads one value
// from the log.
//
// The iterator does not snapshot the store: writes made between steps may or
// may not be observed. A merge between steps is followed: the next step
// seeks in the merged index and reads from the merged log.
type ScanIterator struct {
	bk     *MiniBitcask
	cursor *keydir.Cursor

	key   []byte
	value []byte
	err   error
}

// Next advances to the next entry and returns true if there is one.
func (it *ScanIterator) Next() bool {
	if it.err != nil || it.cursor == nil {
		return false
	}
	if it.bk.closed {
		it.err = ErrClosed
		return false
	}

	// Merge swaps both the index and the log, so the offsets of the index
	// the cursor started on may no longer be valid.
	it.cursor.Rebind(it.bk.keyDir)

	key, e, ok := it.cursor.Next()
	if !ok {
		it.Release()
		return false
	}

	value, err := it.bk.log.ReadValue(e.Offset, e.Size)
	if err != nil {
		it.err = err
		it.Release()
		return false
	}

	it.key = bytes.Clone(key)
	it.value = value
	return true
}

// Key returns the key of the current entry.
func (it *ScanIterator) Key() []byte { return it.key }

// Value returns the value of the current entry.
func (it *ScanIterator) Value() []byte { return it.value }

// Err exposes the error that stopped iteration, if any.
func (it *ScanIterator) Err() error { return it.err }

// Release stops the iterator. Err stays available afterwards.
func (it *ScanIterator) Release() {
	it.cursor = nil
	it.key = nil
	it.value = nil
}
