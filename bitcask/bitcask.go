package bitcask

import (
	"github.com/0xRadioAc7iv/mini-bitcask/core"
	"github.com/0xRadioAc7iv/mini-bitcask/internal"
	"github.com/0xRadioAc7iv/mini-bitcask/internal/datafile"
	"github.com/0xRadioAc7iv/mini-bitcask/internal/lock"
)

type (
	DB           = core.MiniBitcask
	ScanIterator = core.ScanIterator
	Bound        = core.Bound
)

var (
	ErrKeyNotFound = core.ErrKeyNotFound
	ErrClosed      = core.ErrClosed
	ErrLocked      = lock.ErrLocked
	ErrCorrupt     = datafile.ErrCorrupt
)

var (
	Included  = core.Included
	Excluded  = core.Excluded
	Unbounded = core.Unbounded
)

// Open opens the store at path, creating it and its parent directories if
// needed.
func Open(path string, opts ...Option) (*DB, error) {
	cfg := internal.DefaultConfig()

	for _, opt := range opts {
		opt(cfg)
	}

	return core.Open(path, cfg)
}
