package internal

import (
	"fmt"
	"time"
)

// FileAttributeHandle is captured while classifying a file and used later
// to rewrite that file's timestamps.
type FileAttributeHandle struct {
	path    string
	modTime time.Time // at capture
}

func NewFileAttributeHandle(path string) (*FileAttributeHandle, error) {
	mt, err := getFileModTime(path)
	if err != nil {
		return nil, err
	}
	return &FileAttributeHandle{path: path, modTime: mt}, nil
}

func (h *FileAttributeHandle) Path() string { return h.path }

// CapturedModTime is the modification time seen during classification.
func (h *FileAttributeHandle) CapturedModTime() time.Time { return h.modTime }

// SyncTimes sets access, modification and, where the platform allows it,
// creation time of the file to t.
func SyncTimes(h *FileAttributeHandle, t time.Time) error {
	if h == nil {
		return fmt.Errorf("sync times: nil file handle")
	}
	if err := setFileTimes(h.path, t); err != nil {
		return fmt.Errorf("set file times of %s: %w", h.path, err)
	}
	return nil
}

// DryRunSyncTimes returns a sync func that only logs.
func DryRunSyncTimes(log *Logger) func(h *FileAttributeHandle, t time.Time) error {
	return func(h *FileAttributeHandle, t time.Time) error {
		log.Info().Str("path", h.Path()).Time("instant", t).Msg("[dry-run] would set file times")
		return nil
	}
}
