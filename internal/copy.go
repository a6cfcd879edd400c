package internal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultTempSuffix ends the name of a photo's rewrite target.
const DefaultTempSuffix = ".tmp"

// createSiblingTemp creates a new file next to path, named
// <base>.<random><suffix>, with the given permissions. The name is never one
// that already exists, so files in the tree are never clobbered.
func createSiblingTemp(path, suffix string, perm os.FileMode) (*os.File, error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*"+suffix)
	if err != nil {
		return nil, err
	}
	if err := f.Chmod(perm); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, err
	}
	return f, nil
}

// replaceFileAtomic streams write into a fresh sibling temp file and renames
// it over path. On any failure the temp file is removed and path is
// untouched.
func replaceFileAtomic(path, suffix string, write func(w io.Writer) error) (err error) {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	out, err := createSiblingTemp(path, suffix, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := out.Name()
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(tmp)
		}
	}()

	bw := bufio.NewWriter(out)
	if err = write(bw); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = out.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = out.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace original: %w", err)
	}
	return nil
}

// copyToSiblingTemp copies path into a fresh sibling temp file and returns
// its name.
func copyToSiblingTemp(path, suffix string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", err
	}

	out, err := createSiblingTemp(path, suffix, info.Mode().Perm())
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(out.Name())
		return "", err
	}
	if err := out.Close(); err != nil {
		os.Remove(out.Name())
		return "", err
	}
	return out.Name(), nil
}
