// Package datafile owns the single append-only log file of the engine.
package datafile

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"

	"github.com/0xRadioAc7iv/mini-bitcask/internal"
	"github.com/0xRadioAc7iv/mini-bitcask/internal/keydir"
	"github.com/0xRadioAc7iv/mini-bitcask/internal/lock"
	"github.com/0xRadioAc7iv/mini-bitcask/internal/record"
	"github.com/0xRadioAc7iv/mini-bitcask/internal/utils"
)

// ErrCorrupt is returned when a record cannot be fully read before the
// recorded end of the file.
var ErrCorrupt = errors.New("datafile: corrupt or truncated record")

// Log is an exclusively locked, append-only record file.
type Log struct {
	path string
	file *os.File
	lock *flock.Flock
	size int64 // end of the last complete record; appends start here

	syncOnWrite    bool
	repairTornTail bool
	logger         *logrus.Logger
}

// Open opens or creates the log at path, creating parent directories as
// needed, and takes the exclusive lock on it. It fails with lock.ErrLocked
// if another instance holds the file.
func Open(path string, cfg *internal.Config) (*Log, error) {
	cfg = cfg.Norm()

	if err := utils.EnsureParentDir(path); err != nil {
		return nil, fmt.Errorf("create parent directory of %s: %w", path, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}

	fl, err := lock.LockFile(path)
	if err != nil {
		f.Close()
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		lock.UnlockFile(fl)
		return nil, err
	}

	return &Log{
		path:           path,
		file:           f,
		lock:           fl,
		size:           info.Size(),
		syncOnWrite:    cfg.SyncOnWrite,
		repairTornTail: cfg.RepairTornTail,
		logger:         cfg.Logger,
	}, nil
}

// Create is like Open but discards whatever the file held before. It is
// used for merge targets, which may be left over from an interrupted merge.
func Create(path string, cfg *internal.Config) (*Log, error) {
	l, err := Open(path, cfg)
	if err != nil {
		return nil, err
	}

	if l.size > 0 {
		if err := utils.TruncateAt(l.file, 0); err != nil {
			l.Close()
			return nil, err
		}
		l.size = 0
	}

	return l, nil
}

func (l *Log) Path() string { return l.path }

// Size returns the length of the log in bytes.
func (l *Log) Size() int64 { return l.size }

// scanned is the result of decoding one record during replay.
type scanned struct {
	key       []byte
	valuePos  int64
	valueLen  uint32
	tombstone bool
	next      int64 // offset of the following record
}

// LoadIndex replays the whole file and returns the index of live keys.
//
// Value bytes are never read; replay only checks that they lie within the
// file. A record that cannot be fully decoded is fatal unless the log was
// opened with RepairTornTail, in which case the file is truncated at the
// start of that record.
func (l *Log) LoadIndex() (*keydir.KeyDir, error) {
	kd := keydir.New()

	var pos int64
	for pos < l.size {
		rec, err := l.decodeAt(pos)
		if err != nil {
			if !errors.Is(err, ErrCorrupt) || !l.repairTornTail {
				return nil, err
			}

			l.logger.WithFields(logrus.Fields{
				"path":   l.path,
				"offset": pos,
				"bytes":  l.size - pos,
			}).Warn("truncating torn record at end of log")

			if err := utils.TruncateAt(l.file, pos); err != nil {
				return nil, err
			}
			l.size = pos
			break
		}

		if rec.tombstone {
			kd.Delete(rec.key)
		} else {
			kd.Put(rec.key, keydir.Entry{Offset: uint64(rec.valuePos), Size: rec.valueLen})
		}
		pos = rec.next
	}

	return kd, nil
}

func (l *Log) decodeAt(pos int64) (scanned, error) {
	var hdr [record.HeaderSize]byte
	if err := l.readFullAt(hdr[:], pos); err != nil {
		return scanned{}, fmt.Errorf("header at offset %d: %w", pos, err)
	}

	h, _ := record.DecodeHeader(hdr[:])

	keyPos := pos + record.HeaderSize
	valuePos := keyPos + int64(h.KeySize)
	next := valuePos + int64(h.ValueLen())
	if next > l.size {
		return scanned{}, fmt.Errorf("%w: record at offset %d ends at %d past end of file %d",
			ErrCorrupt, pos, next, l.size)
	}

	key := make([]byte, h.KeySize)
	if err := l.readFullAt(key, keyPos); err != nil {
		return scanned{}, fmt.Errorf("key at offset %d: %w", keyPos, err)
	}

	return scanned{
		key:       key,
		valuePos:  valuePos,
		valueLen:  h.ValueLen(),
		tombstone: h.IsTombstone(),
		next:      next,
	}, nil
}

// readFullAt fills p from off, mapping a short read to ErrCorrupt.
func (l *Log) readFullAt(p []byte, off int64) error {
	n, err := l.file.ReadAt(p, off)
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		return fmt.Errorf("%w: short read, got %d of %d bytes", ErrCorrupt, n, len(p))
	}
	return err
}

// ReadValue reads exactly size bytes starting at pos.
func (l *Log) ReadValue(pos uint64, size uint32) ([]byte, error) {
	value := make([]byte, size)
	if size == 0 {
		return value, nil
	}

	if err := l.readFullAt(value, int64(pos)); err != nil {
		return nil, fmt.Errorf("value at offset %d: %w", pos, err)
	}
	return value, nil
}

// Append writes a value record and returns the offset of the record and
// its total length. The value starts at offset + length - len(value).
func (l *Log) Append(key, value []byte) (offset, length uint64, err error) {
	r := record.CreateRecord(key, value)
	return l.writeEntry(&r)
}

// AppendTombstone writes a deletion marker for key.
func (l *Log) AppendTombstone(key []byte) (offset, length uint64, err error) {
	r := record.CreateTombstoneRecord(key)
	return l.writeEntry(&r)
}

func (l *Log) writeEntry(r *record.Record) (uint64, uint64, error) {
	encoded, err := record.EncodeRecordToBytes(r)
	if err != nil {
		return 0, 0, err
	}

	offset := l.size
	if _, err := l.file.WriteAt(encoded, offset); err != nil {
		// Drop whatever part of the record made it out.
		if terr := l.file.Truncate(offset); terr != nil {
			l.logger.WithError(terr).WithField("path", l.path).Error("failed to roll back partial write")
		}
		return 0, 0, err
	}

	if l.syncOnWrite {
		if err := l.file.Sync(); err != nil {
			return 0, 0, err
		}
	}

	l.size += int64(len(encoded))
	return uint64(offset), uint64(len(encoded)), nil
}

// Sync flushes the file to durable storage.
func (l *Log) Sync() error {
	return l.file.Sync()
}

// RenameTo atomically moves the file to path and records the new path. The
// lock stays with the file.
func (l *Log) RenameTo(path string) error {
	if err := os.Rename(l.path, path); err != nil {
		return err
	}
	l.path = path
	return nil
}

// Close closes the file and releases the lock. It does not sync.
func (l *Log) Close() error {
	err := l.file.Close()
	if uerr := lock.UnlockFile(l.lock); err == nil {
		err = uerr
	}
	return err
}

// Remove closes the log and deletes its file.
func (l *Log) Remove() error {
	cerr := l.file.Close()
	rerr := os.Remove(l.path)
	uerr := lock.UnlockFile(l.lock)
	return errors.Join(cerr, rerr, uerr)
}
