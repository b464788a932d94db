//go:build windows

package localfs

import "os"

// ReadUmask returns a fixed value on Windows, which has no umask
// concept; pulled files get mode 0644 by default.
func ReadUmask() os.FileMode {
	return 0o022
}
