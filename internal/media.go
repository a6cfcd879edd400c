package internal

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
)

// ValidateRoot checks that root is an existing directory we can read and
// write. Every failure is a *ConfigError.
func ValidateRoot(root string) error {
	info, err := os.Lstat(root)
	if err != nil {
		return &ConfigError{Path: root, Problem: "path does not exist or is not accessible", Err: err}
	}
	if !info.IsDir() {
		return &ConfigError{Path: root, Problem: "path is not a directory"}
	}

	d, err := os.Open(root)
	if err != nil {
		return &ConfigError{Path: root, Problem: "path is not readable", Err: err}
	}
	_, err = d.Readdirnames(1)
	d.Close()
	if err != nil && err != io.EOF {
		return &ConfigError{Path: root, Problem: "path is not readable", Err: err}
	}

	if err := checkWritable(root); err != nil {
		return &ConfigError{Path: root, Problem: "path is not writable", Err: err}
	}

	return nil
}

// ScanFiles walks root recursively and returns its regular files in lexical
// order, so matching tie-breaks are the same on every run.
func ScanFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning files: %w", err)
	}
	return files, nil
}

// IsJPEG sniffs the file content; the extension is ignored.
func IsJPEG(path string) (bool, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false, err
	}
	return mtype.Is("image/jpeg"), nil
}
