package keydir

import "bytes"

// BoundKind says how a Bound constrains a range.
type BoundKind uint8

const (
	Unbounded BoundKind = iota
	Included
	Excluded
)

// Bound is one end of a key range.
type Bound struct {
	Kind BoundKind
	Key  []byte
}

func IncludedBound(key []byte) Bound { return Bound{Kind: Included, Key: key} }
func ExcludedBound(key []byte) Bound { return Bound{Kind: Excluded, Key: key} }
func UnboundedBound() Bound          { return Bound{} }

// afterStart reports whether key satisfies b used as a lower bound.
func (b Bound) afterStart(key []byte) bool {
	switch b.Kind {
	case Included:
		return bytes.Compare(key, b.Key) >= 0
	case Excluded:
		return bytes.Compare(key, b.Key) > 0
	}
	return true
}

// beforeEnd reports whether key satisfies b used as an upper bound.
func (b Bound) beforeEnd(key []byte) bool {
	switch b.Kind {
	case Included:
		return bytes.Compare(key, b.Key) <= 0
	case Excluded:
		return bytes.Compare(key, b.Key) < 0
	}
	return true
}

// Cursor walks a key range in ascending order, one key per Next.
//
// Every step is an independent seek strictly past the previously returned
// key, so a cursor stays valid (though not isolated) when the KeyDir is
// modified between steps.
type Cursor struct {
	kd    *KeyDir
	start Bound
	end   Bound

	last    []byte
	started bool
	done    bool
}

// Range returns a cursor over all keys between start and end.
func (kd *KeyDir) Range(start, end Bound) *Cursor {
	return &Cursor{kd: kd, start: start, end: end}
}

// Rebind moves the cursor onto kd. The next step continues strictly after
// the last key returned from the previous KeyDir.
func (c *Cursor) Rebind(kd *KeyDir) { c.kd = kd }

// Next returns the next key in range, or ok == false once the range is
// exhausted.
func (c *Cursor) Next() (key []byte, e Entry, ok bool) {
	if c.done {
		return nil, Entry{}, false
	}

	pivot := item{}
	lower := c.start
	if c.started {
		lower = ExcludedBound(c.last)
	}
	if lower.Kind != Unbounded {
		pivot.key = lower.Key
	}

	var found *item
	c.kd.tree.AscendGreaterOrEqual(pivot, func(it item) bool {
		if !lower.afterStart(it.key) {
			return true
		}
		found = &it
		return false
	})

	if found == nil || !c.end.beforeEnd(found.key) {
		c.done = true
		return nil, Entry{}, false
	}

	c.started = true
	c.last = found.key
	return found.key, found.entry, true
}
