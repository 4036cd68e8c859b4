package record

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRecord(t *testing.T) {
	tests := []struct {
		name   string
		record Record
	}{
		{"value record", CreateRecord([]byte("language"), []byte("go"))},
		{"empty value", CreateRecord([]byte("empty"), []byte{})},
		{"tombstone", CreateTombstoneRecord([]byte("gone"))},
		{"binary key", CreateRecord([]byte{0x00, 0xff, 0x10}, []byte("bin"))},
		{"empty key", CreateRecord([]byte{}, []byte("v"))},
		{"empty key tombstone", CreateTombstoneRecord([]byte{})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			encoded, err := EncodeRecordToBytes(&tt.record)
			require.NoError(t, err)
			require.Len(t, encoded, int(tt.record.Size()))

			rd := bytes.NewReader(encoded)
			decoded, err := ReadRecord(rd)
			require.NoError(t, err)
			require.Zero(t, rd.Len(), "record must be consumed exactly")
			require.Equal(t, tt.record.Key, decoded.Key)
			require.Equal(t, tt.record.Tombstone, decoded.Tombstone)
			if !tt.record.Tombstone {
				require.Equal(t, tt.record.Value, decoded.Value)
			}
		})
	}
}

func TestDecodeErrorsOnTruncatedData(t *testing.T) {
	record := CreateRecord([]byte("abc"), []byte("xy"))
	encoded, err := EncodeRecordToBytes(&record)
	require.NoError(t, err)

	for i := 0; i < len(encoded); i++ {
		_, err := ReadRecord(bytes.NewReader(encoded[:i]))
		if i == 0 {
			require.ErrorIs(t, err, io.EOF)
			continue
		}
		require.ErrorIs(t, err, io.ErrUnexpectedEOF, "length %d", i)
	}
}

func TestEncodedByteLayout(t *testing.T) {
	t.Run("value record", func(t *testing.T) {
		r := CreateRecord([]byte("a"), []byte("bc"))
		encoded, err := EncodeRecordToBytes(&r)
		require.NoError(t, err)

		require.Equal(t, uint32(1), binary.BigEndian.Uint32(encoded[0:4]))
		require.Equal(t, int32(2), int32(binary.BigEndian.Uint32(encoded[4:8])))
		require.Equal(t, []byte("abc"), encoded[8:])
	})

	t.Run("tombstone carries no value bytes", func(t *testing.T) {
		r := CreateTombstoneRecord([]byte("key"))
		encoded, err := EncodeRecordToBytes(&r)
		require.NoError(t, err)

		require.Equal(t, []byte{0, 0, 0, 3, 0xff, 0xff, 0xff, 0xff, 'k', 'e', 'y'}, encoded)
	})
}

func TestHeader(t *testing.T) {
	h, err := DecodeHeader([]byte{0, 0, 0, 4, 0, 0, 0, 10})
	require.NoError(t, err)
	require.False(t, h.IsTombstone())
	require.Equal(t, uint32(10), h.ValueLen())
	require.Equal(t, uint64(HeaderSize+4+10), h.Size())

	h, err = DecodeHeader([]byte{0, 0, 0, 4, 0xff, 0xff, 0xff, 0xfe})
	require.NoError(t, err)
	require.True(t, h.IsTombstone(), "any negative length is a tombstone")
	require.Equal(t, uint32(0), h.ValueLen())
	require.Equal(t, uint64(HeaderSize+4), h.Size())

	_, err = DecodeHeader([]byte{0, 0, 0})
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadRecord(t *testing.T) {
	var buf bytes.Buffer
	for _, r := range []Record{
		CreateRecord([]byte("k1"), []byte("v1")),
		CreateTombstoneRecord([]byte("k1")),
	} {
		encoded, err := EncodeRecordToBytes(&r)
		require.NoError(t, err)
		buf.Write(encoded)
	}
	full := buf.Bytes()

	rd := bytes.NewReader(full)
	r, err := ReadRecord(rd)
	require.NoError(t, err)
	require.Equal(t, []byte("v1"), r.Value)

	r, err = ReadRecord(rd)
	require.NoError(t, err)
	require.True(t, r.Tombstone)

	_, err = ReadRecord(rd)
	require.ErrorIs(t, err, io.EOF)

	_, err = ReadRecord(bytes.NewReader(full[:HeaderSize+1]))
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}
