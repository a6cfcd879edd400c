//go:build !unix

package internal

import "os"

// Windows has no access(2) that honours ACLs, so a probe file is created
// and removed again.
func checkWritable(dir string) error {
	probe, err := os.CreateTemp(dir, ".geotagger-probe-*")
	if err != nil {
		return err
	}
	probe.Close()
	return os.Remove(probe.Name())
}
