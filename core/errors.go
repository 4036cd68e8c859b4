package core

import "errors"

var (
	// ErrKeyNotFound is returned by Get when the key has no live value.
	ErrKeyNotFound = errors.New("bitcask: key not found")

	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("bitcask: is closed")
)
