// Package backup writes and restores compressed snapshots of a store.
//
// A snapshot is a snappy framed stream whose decompressed content is a
// valid log file holding one record per live key, so restoring amounts to
// decompressing it and replaying the result.
package backup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/golang/snappy"

	"github.com/0xRadioAc7iv/mini-bitcask/core"
	"github.com/0xRadioAc7iv/mini-bitcask/internal"
	"github.com/0xRadioAc7iv/mini-bitcask/internal/datafile"
	"github.com/0xRadioAc7iv/mini-bitcask/internal/record"
	"github.com/0xRadioAc7iv/mini-bitcask/internal/utils"
)

var ErrTargetExists = errors.New("backup: restore target already exists")

// Write streams every live key of bk to w and returns the number of
// records written.
func Write(w io.Writer, bk *core.MiniBitcask) (int, error) {
	sw := snappy.NewBufferedWriter(w)

	it := bk.Scan(core.Unbounded(), core.Unbounded())
	defer it.Release()

	var n int
	for it.Next() {
		r := record.CreateRecord(it.Key(), it.Value())
		encoded, err := record.EncodeRecordToBytes(&r)
		if err != nil {
			return n, err
		}
		if _, err := sw.Write(encoded); err != nil {
			return n, err
		}
		n++
	}
	if err := it.Err(); err != nil {
		return n, err
	}

	return n, sw.Close()
}

// Restore decompresses a snapshot from r into a new log file at path and
// opens it. Records are decoded one by one on the way in, and opening the
// result replays it once more. The caller
// owns the returned store.
func Restore(r io.Reader, path string, cfg *internal.Config) (*core.MiniBitcask, error) {
	if utils.PathExists(path) {
		return nil, fmt.Errorf("%w: %s", ErrTargetExists, path)
	}
	if err := utils.EnsureParentDir(path); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	bw := bufio.NewWriter(f)
	err = copyRecords(bw, snappy.NewReader(r))
	if err == nil {
		err = bw.Flush()
	}
	if err == nil {
		err = f.Sync()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("restore %s: %w", path, err)
	}

	bk, err := core.Open(path, cfg)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("restore %s: %w", path, err)
	}

	return bk, nil
}

// copyRecords re-encodes every record read from r onto w. A stream that
// ends inside a record is reported as datafile.ErrCorrupt.
func copyRecords(w io.Writer, r io.Reader) error {
	for {
		rec, err := record.ReadRecord(r)
		if err == io.EOF {
			return nil
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: snapshot ends inside a record", datafile.ErrCorrupt)
		}
		if err != nil {
			return err
		}

		encoded, err := record.EncodeRecordToBytes(rec)
		if err != nil {
			return err
		}
		if _, err := w.Write(encoded); err != nil {
			return err
		}
	}
}
