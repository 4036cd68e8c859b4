package record

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Record is a single entry of the append-only log.
//
// On disk a record is laid out as:
//
//	<key_len:uint32><value_len:int32><key><value>
//
// Both length fields are big-endian. A negative value_len marks a tombstone,
// in which case no value bytes follow the key.
type Record struct {
	Key       []byte
	Value     []byte
	Tombstone bool
}

// Header is the fixed-width prefix of every record.
type Header struct {
	KeySize   uint32 // Length of Key in Bytes
	ValueSize int32  // Length of Value in Bytes, or Tombstone
}

// KeySize (4) + ValueSize (4)
const HeaderSize = 8

// Tombstone is the canonical value length written for deletions.
const Tombstone int32 = -1

const (
	MaxKeySize   = math.MaxUint32
	MaxValueSize = math.MaxInt32
)

var (
	ErrKeyTooLarge   = errors.New("record: key too large")
	ErrValueTooLarge = errors.New("record: value too large")
)

// IsTombstone reports whether the header marks a deletion.
func (h Header) IsTombstone() bool { return h.ValueSize < 0 }

// ValueLen returns the number of value bytes that follow the key.
func (h Header) ValueLen() uint32 {
	if h.IsTombstone() {
		return 0
	}
	return uint32(h.ValueSize)
}

// Size returns the total on-disk length of the record the header belongs to.
func (h Header) Size() uint64 {
	return HeaderSize + uint64(h.KeySize) + uint64(h.ValueLen())
}

func CreateRecord(key, value []byte) Record {
	return Record{Key: key, Value: value}
}

func CreateTombstoneRecord(key []byte) Record {
	return Record{Key: key, Tombstone: true}
}

// Validate checks that the key and value fit the header fields.
func (r *Record) Validate() error {
	if uint64(len(r.Key)) > MaxKeySize {
		return fmt.Errorf("%w: %d bytes", ErrKeyTooLarge, len(r.Key))
	}
	if !r.Tombstone && uint64(len(r.Value)) > MaxValueSize {
		return fmt.Errorf("%w: %d bytes", ErrValueTooLarge, len(r.Value))
	}
	return nil
}

func (r *Record) Header() Header {
	h := Header{KeySize: uint32(len(r.Key)), ValueSize: Tombstone}
	if !r.Tombstone {
		h.ValueSize = int32(len(r.Value))
	}
	return h
}

// Size returns the encoded length of the record.
func (r *Record) Size() uint64 { return r.Header().Size() }

func EncodeRecordToBytes(record *Record) ([]byte, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}

	h := record.Header()
	buf := bytes.NewBuffer(make([]byte, 0, h.Size()))

	if err := binary.Write(buf, binary.BigEndian, h.KeySize); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.BigEndian, h.ValueSize); err != nil {
		return nil, err
	}
	if _, err := buf.Write(record.Key); err != nil {
		return nil, err
	}
	if !record.Tombstone {
		if _, err := buf.Write(record.Value); err != nil {
			return nil, err
		}
	}

	return buf.Bytes(), nil
}

// DecodeHeader parses the first HeaderSize bytes of data.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, io.ErrUnexpectedEOF
	}

	return Header{
		KeySize:   binary.BigEndian.Uint32(data[0:4]),
		ValueSize: int32(binary.BigEndian.Uint32(data[4:8])),
	}, nil
}

// ReadRecord reads one full record from r. It returns io.EOF only when r is
// exhausted before the first header byte.
func ReadRecord(r io.Reader) (*Record, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}

	h, _ := DecodeHeader(hdr[:])

	key := make([]byte, h.KeySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, noEOF(err)
	}

	rec := &Record{Key: key, Tombstone: h.IsTombstone()}
	if !rec.Tombstone {
		rec.Value = make([]byte, h.ValueLen())
		if _, err := io.ReadFull(r, rec.Value); err != nil {
			return nil, noEOF(err)
		}
	}

	return rec, nil
}

func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
