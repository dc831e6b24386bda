// Package backup names backup files so that nothing ever gets
// overwritten: an existing file moves aside under a numbered suffix.
package backup

import (
	"fmt"

	"rigup/pkg/types"
)

// Numbered returns path when nothing exists there, otherwise the first
// of path.0, path.1, ... that does not exist. Existence is checked with
// Lstat, so a dangling symlink occupies its name.
//
// The result is deterministic for a fixed filesystem snapshot. It is not
// safe against concurrent writers racing for the same name; rigup runs
// single-threaded and accepts that.
func Numbered(fs types.FS, path string) string {
	if !exists(fs, path) {
		return path
	}

	for i := 0; ; i++ {
		candidate := fmt.Sprintf("%s.%d", path, i)
		if !exists(fs, candidate) {
			return candidate
		}
	}
}

func exists(fs types.FS, path string) bool {
	_, err := fs.Lstat(path)
	return err == nil
}
