package keydir

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func collect(c *Cursor) []string {
	var keys []string
	for {
		k, _, ok := c.Next()
		if !ok {
			return keys
		}
		keys = append(keys, string(k))
	}
}

func seeded(keys ...string) *KeyDir {
	kd := New()
	for i, k := range keys {
		kd.Put([]byte(k), Entry{Offset: uint64(i), Size: 1})
	}
	return kd
}

func TestKeyDirPutGetDelete(t *testing.T) {
	kd := New()

	_, ok := kd.Get([]byte("a"))
	require.False(t, ok)

	kd.Put([]byte("a"), Entry{Offset: 10, Size: 2})
	kd.Put([]byte("a"), Entry{Offset: 20, Size: 3})

	e, ok := kd.Get([]byte("a"))
	require.True(t, ok)
	require.Equal(t, Entry{Offset: 20, Size: 3}, e)
	require.Equal(t, 1, kd.Len())
	require.True(t, kd.Has([]byte("a")))

	require.True(t, kd.Delete([]byte("a")))
	require.False(t, kd.Delete([]byte("a")))
	require.Equal(t, 0, kd.Len())
}

func TestKeyDirCopiesKeys(t *testing.T) {
	kd := New()
	key := []byte("abc")
	kd.Put(key, Entry{Offset: 1})
	key[0] = 'z'

	require.True(t, kd.Has([]byte("abc")))
	require.False(t, kd.Has([]byte("zbc")))
}

func TestKeyDirAscendOrder(t *testing.T) {
	kd := seeded("b", "a", "c", "\x00", "\xff")

	var keys []string
	kd.Ascend(func(k []byte, _ Entry) bool {
		keys = append(keys, string(k))
		return true
	})
	require.Equal(t, []string{"\x00", "a", "b", "c", "\xff"}, keys)
}

func TestKeyDirRange(t *testing.T) {
	kd := seeded("a", "aa", "ab", "b", "c")

	tests := []struct {
		name       string
		start, end Bound
		want       []string
	}{
		{"unbounded", UnboundedBound(), UnboundedBound(), []string{"a", "aa", "ab", "b", "c"}},
		{"included both", IncludedBound([]byte("aa")), IncludedBound([]byte("b")), []string{"aa", "ab", "b"}},
		{"excluded both", ExcludedBound([]byte("aa")), ExcludedBound([]byte("c")), []string{"ab", "b"}},
		{"open end", IncludedBound([]byte("b")), UnboundedBound(), []string{"b", "c"}},
		{"open start", UnboundedBound(), ExcludedBound([]byte("ab")), []string{"a", "aa"}},
		{"missing start key", IncludedBound([]byte("ac")), UnboundedBound(), []string{"b", "c"}},
		{"empty range", IncludedBound([]byte("b")), ExcludedBound([]byte("b")), nil},
		{"inverted range", IncludedBound([]byte("c")), IncludedBound([]byte("a")), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, collect(kd.Range(tt.start, tt.end)))
		})
	}
}

func TestCursorToleratesMutation(t *testing.T) {
	kd := seeded("a", "b", "c", "d")
	c := kd.Range(UnboundedBound(), UnboundedBound())

	k, _, ok := c.Next()
	require.True(t, ok)
	require.Equal(t, "a", string(k))

	kd.Delete([]byte("b"))
	kd.Put([]byte("bb"), Entry{})

	require.Equal(t, []string{"bb", "c", "d"}, collect(c))

	_, _, ok = c.Next()
	require.False(t, ok, "exhausted cursor stays exhausted")
}

func TestCursorRebind(t *testing.T) {
	old := seeded("a", "b", "c")
	c := old.Range(UnboundedBound(), UnboundedBound())

	k, _, ok := c.Next()
	require.True(t, ok)
	require.Equal(t, "a", string(k))

	replacement := New()
	replacement.Put([]byte("a"), Entry{Offset: 100, Size: 1})
	replacement.Put([]byte("c"), Entry{Offset: 200, Size: 1})
	replacement.Put([]byte("d"), Entry{Offset: 300, Size: 1})
	c.Rebind(replacement)

	k, e, ok := c.Next()
	require.True(t, ok)
	require.Equal(t, "c", string(k))
	require.Equal(t, Entry{Offset: 200, Size: 1}, e)

	require.Equal(t, []string{"d"}, collect(c))
}
