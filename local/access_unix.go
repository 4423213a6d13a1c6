//go:build unix

package local

import "golang.org/x/sys/unix"

// canAccess asks the kernel via access(2), which accounts for uid, gid,
// ACLs and read-only mounts.
func canAccess(hostPath string, write bool) bool {
	mode := uint32(unix.R_OK)
	if write {
		mode = unix.W_OK
	}
	return unix.Access(hostPath, mode) == nil
}
