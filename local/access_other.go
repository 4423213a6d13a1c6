//go:build !unix

package local

import "os"

// canAccess falls back to permission bits where access(2) is unavailable.
func canAccess(hostPath string, write bool) bool {
	info, err := os.Stat(hostPath)
	if err != nil {
		return false
	}
	if write {
		return info.Mode().Perm()&0o222 != 0
	}
	return info.Mode().Perm()&0o444 != 0
}
