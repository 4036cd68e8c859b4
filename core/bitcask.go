package core

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/0xRadioAc7iv/mini-bitcask/internal"
	"github.com/0xRadioAc7iv/mini-bitcask/internal/datafile"
	"github.com/0xRadioAc7iv/mini-bitcask/internal/keydir"
	"github.com/0xRadioAc7iv/mini-bitcask/internal/utils"
)

// MiniBitcask is a single-file log-structured key-value store.
//
// A MiniBitcask is not safe for concurrent use; callers must serialize
// access. Other processes are kept out by the file lock taken in Open.
type MiniBitcask struct {
	log    *datafile.Log
	keyDir *keydir.KeyDir

	cfg    *internal.Config
	logger *logrus.Logger
	closed bool
}

// Open opens the store at path, creating the file if needed, and rebuilds
// the index by replaying it.
//
// If the engine is never closed, a finalizer makes a best-effort flush whose
// failure can only be logged; call Close to observe it.
func Open(path string, cfg *internal.Config) (*MiniBitcask, error) {
	cfg = cfg.Norm()

	log, err := datafile.Open(path, cfg)
	if err != nil {
		return nil, err
	}

	kd, err := log.LoadIndex()
	if err != nil {
		log.Close()
		return nil, fmt.Errorf("load index of %s: %w", path, err)
	}

	bk := &MiniBitcask{
		log:    log,
		keyDir: kd,
		cfg:    cfg,
		logger: cfg.Logger,
	}
	runtime.SetFinalizer(bk, (*MiniBitcask).finalize)

	bk.logger.WithFields(logrus.Fields{
		"path":  path,
		"keys":  kd.Len(),
		"bytes": log.Size(),
	}).Info("log opened")

	return bk, nil
}

// Get returns the value of key, or ErrKeyNotFound. A miss never touches the
// disk.
func (bk *MiniBitcask) Get(key []byte) ([]byte, error) {
	if bk.closed {
		return nil, ErrClosed
	}

	e, ok := bk.keyDir.Get(key)
	if !ok {
		return nil, ErrKeyNotFound
	}

	return bk.log.ReadValue(e.Offset, e.Size)
}

// Has reports whether key has a live value.
func (bk *MiniBitcask) Has(key []byte) bool {
	return !bk.closed && bk.keyDir.Has(key)
}

// Len returns the number of live keys.
func (bk *MiniBitcask) Len() int {
	if bk.closed {
		return 0
	}
	return bk.keyDir.Len()
}

// Set stores value under key. The index is only updated once the record
// has been written.
func (bk *MiniBitcask) Set(key, value []byte) error {
	if bk.closed {
		return ErrClosed
	}

	offset, length, err := bk.log.Append(key, value)
	if err != nil {
		return err
	}

	size := uint32(len(value))
	bk.keyDir.Put(key, keydir.Entry{Offset: offset + length - uint64(size), Size: size})
	return nil
}

// Delete appends a tombstone for key. Deleting a missing key succeeds.
func (bk *MiniBitcask) Delete(key []byte) error {
	if bk.closed {
		return ErrClosed
	}

	if _, _, err := bk.log.AppendTombstone(key); err != nil {
		return err
	}

	bk.keyDir.Delete(key)
	return nil
}

// Merge rewrites the log so that it holds exactly one record per live key.
//
// The new log is built next to the current one and renamed over it. Until
// the rename succeeds the current log and index are left untouched, so a
// failed or interrupted merge loses nothing.
func (bk *MiniBitcask) Merge() error {
	if bk.closed {
		return ErrClosed
	}

	path := bk.log.Path()
	mergePath := utils.SiblingPath(path, MergeFileExt)

	newLog, err := datafile.Create(mergePath, bk.cfg)
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}

	newKeyDir, err := bk.rewrite(newLog)
	if err == nil {
		err = newLog.Sync()
	}
	if err == nil {
		err = newLog.RenameTo(path)
	}
	if err != nil {
		if rerr := newLog.Remove(); rerr != nil {
			bk.logger.WithError(rerr).WithField("path", mergePath).Warn("failed to remove merge file")
		}
		return fmt.Errorf("merge: %w", err)
	}

	oldLog := bk.log
	bk.log = newLog
	bk.keyDir = newKeyDir

	if err := oldLog.Close(); err != nil {
		bk.logger.WithError(err).WithField("path", path).Warn("failed to close pre-merge log")
	}

	// The rename is only durable once the directory entry is.
	if err := utils.SyncDir(filepath.Dir(path)); err != nil {
		return fmt.Errorf("merge: %w", err)
	}

	bk.logger.WithFields(logrus.Fields{
		"path":   path,
		"keys":   newKeyDir.Len(),
		"before": oldLog.Size(),
		"after":  newLog.Size(),
	}).Info("log merged")

	return nil
}

// rewrite copies every live value into dst and returns the index of dst.
func (bk *MiniBitcask) rewrite(dst *datafile.Log) (*keydir.KeyDir, error) {
	kd := keydir.New()

	var err error
	bk.keyDir.Ascend(func(key []byte, e keydir.Entry) bool {
		var value []byte
		if value, err = bk.log.ReadValue(e.Offset, e.Size); err != nil {
			return false
		}

		var offset, length uint64
		if offset, length, err = dst.Append(key, value); err != nil {
			return false
		}

		kd.Put(key, keydir.Entry{Offset: offset + length - uint64(e.Size), Size: e.Size})
		return true
	})

	return kd, err
}

// Path returns the location of the log file.
func (bk *MiniBitcask) Path() string { return bk.log.Path() }

// Size returns the length of the log file in bytes.
func (bk *MiniBitcask) Size() int64 { return bk.log.Size() }

// Sync flushes the log to durable storage.
func (bk *MiniBitcask) Sync() error {
	if bk.closed {
		return ErrClosed
	}
	return bk.log.Sync()
}

// Close flushes the log, closes it and releases the file lock. Calling
// Close more than once is a no-op.
func (bk *MiniBitcask) Close() error {
	if bk.closed {
		return nil
	}
	bk.closed = true
	runtime.SetFinalizer(bk, nil)

	serr := bk.log.Sync()
	cerr := bk.log.Close()
	return errors.Join(serr, cerr)
}

func (bk *MiniBitcask) finalize() {
	if bk.closed {
		return
	}

	if err := bk.log.Sync(); err != nil {
		bk.logger.WithError(err).WithField("path", bk.log.Path()).Error("failed to flush file")
	}
	if err := bk.log.Close(); err != nil {
		bk.logger.WithError(err).WithField("path", bk.log.Path()).Error("failed to close file")
	}
}
