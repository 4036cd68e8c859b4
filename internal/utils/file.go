package utils

import (
	"os"
	"path/filepath"
)

// TruncateAt cuts f down to offset bytes and makes the new length durable.
func TruncateAt(f *os.File, offset int64) error {
	if err := f.Truncate(offset); err != nil {
		return err
	}
	return f.Sync()
}

// PathExists reports whether anything exists at path.
func PathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// EnsureParentDir creates every missing directory above path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	// 0 (special bit - ignored), 7 (rwx - owner), 5 (r-x - user group), 5 (r-x - others)
	return os.MkdirAll(dir, 0755)
}

// SyncDir flushes the directory entries of dir, making renames and creations
// inside it durable.
func SyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}

	serr := d.Sync()
	if cerr := d.Close(); serr == nil {
		serr = cerr
	}
	return serr
}

// SiblingPath returns path with its extension replaced by ext. If that would
// yield path itself, ext is appended instead.
func SiblingPath(path, ext string) string {
	sibling := path[:len(path)-len(filepath.Ext(path))] + ext
	if sibling == path {
		sibling = path + ext
	}
	return sibling
}
