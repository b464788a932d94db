//go:build !windows

package localfs

import (
	"os"
	"syscall"
)

// ReadUmask returns the process umask without permanently changing it:
// syscall.Umask only returns the old value, so it must be set right
// back.
func ReadUmask() os.FileMode {
	old := syscall.Umask(0o022)
	syscall.Umask(old)
	return os.FileMode(old)
}
