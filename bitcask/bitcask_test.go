package bitcask_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/0xRadioAc7iv/mini-bitcask/bitcask"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func mustOpen(t *testing.T, path string, opts ...bitcask.Option) *bitcask.DB {
	t.Helper()

	db, err := bitcask.Open(path, append([]bitcask.Option{bitcask.WithLogger(quietLogger())}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesParentDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "app.log")
	db := mustOpen(t, path)

	require.NoError(t, db.Set([]byte("foo"), []byte("bar")))
	require.FileExists(t, path)
}

func TestOpenLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	mustOpen(t, path)

	_, err := bitcask.Open(path, bitcask.WithLogger(quietLogger()))
	require.ErrorIs(t, err, bitcask.ErrLocked)
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)

	path := filepath.Join(t.TempDir(), "app.log")
	db, err := bitcask.Open(path, bitcask.WithLogger(logger))
	require.NoError(t, err)
	defer db.Close()

	require.Contains(t, buf.String(), "log opened")
}

func TestWithRepairTornTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")

	db := mustOpen(t, path, bitcask.WithSyncOnWrite(true))
	require.NoError(t, db.Set([]byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.Write([]byte{0, 0, 0, 9})
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = bitcask.Open(path, bitcask.WithLogger(quietLogger()))
	require.ErrorIs(t, err, bitcask.ErrCorrupt)

	db = mustOpen(t, path, bitcask.WithRepairTornTail(true))
	value, err := db.Get([]byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), value)
}

func TestBoundsExported(t *testing.T) {
	db := mustOpen(t, filepath.Join(t.TempDir(), "app.log"))
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, db.Set([]byte(k), []byte(k)))
	}

	it := db.Scan(bitcask.Included([]byte("b")), bitcask.Unbounded())
	defer it.Release()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	require.NoError(t, it.Err())
	require.Equal(t, []string{"b", "c"}, keys)
}
