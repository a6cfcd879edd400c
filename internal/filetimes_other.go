//go:build !windows

package internal

import (
	"os"
	"time"
)

// Unix filesystems offer no call to set the birth time; only atime and
// mtime are changed.
func setFileTimes(path string, t time.Time) error {
	return os.Chtimes(path, t, t)
}
