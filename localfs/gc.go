package localfs

import (
	"strings"

	"github.com/pkg/errors"
)

// StagingSuffix marks a partial-write file a pull leaves behind if it
// is interrupted before the final rename, per §4.F's cleanup rule.
const StagingSuffix = ".adbsync-partial"

// Keep reports whether a staging file discovered during a sweep
// belongs to a transfer that is still in flight, and so must survive
// the sweep.
type Keep interface {
	Contains(path string) bool
}

// KeepSet is a Keep backed by a plain set, built by the engine from
// the paths of transfers it currently has open.
type KeepSet map[string]bool

func (k KeepSet) Contains(path string) bool { return k[path] }

// Sweep walks dir (non-recursively; staging files are always written
// next to their final name, never nested) and removes every entry
// that carries StagingSuffix and is not named by keep. It is meant to
// be run at the start of a sync, cleaning up debris left by a process
// that was killed mid-pull.
func Sweep(fs FS, dir string, keep Keep) (removed []string, err error) {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s for gc", dir)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name, StagingSuffix) {
			continue
		}
		full := dir + "/" + e.Name
		if keep.Contains(full) {
			continue
		}
		if err := fs.Remove(full); err != nil {
			return removed, errors.Wrapf(err, "removing orphaned staging file %s", full)
		}
		removed = append(removed, full)
	}
	return removed, nil
}
