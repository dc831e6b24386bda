package paths

import (
	"os"
	"path/filepath"

	"rigup/pkg/errors"
)

// maxLinkDepth bounds symlink chain traversal, matching the kernel's
// ELOOP limit so cyclic links fail instead of spinning.
const maxLinkDepth = 40

// RealDir returns the physical directory containing path, following the
// basename through symlink chains the way `cd $(dirname f) && pwd -P`
// does. An empty path means the current working directory. Relative link
// targets are resolved against the directory holding the link.
//
// Fails with ErrFileAccess when an intermediate directory does not exist
// or cannot be traversed.
func RealDir(path string) (string, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get current directory")
		}
		return physicalDir(cwd)
	}

	p := path
	for i := 0; i < maxLinkDepth; i++ {
		dir := filepath.Dir(p)
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve directory of %s", p)
		}

		full := filepath.Join(absDir, filepath.Base(p))
		fi, err := os.Lstat(full)
		if err != nil || fi.Mode()&os.ModeSymlink == 0 {
			// Basename is not a link (or does not exist); the answer is
			// the physical location of its directory.
			return physicalDir(absDir)
		}

		target, err := os.Readlink(full)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read link %s", full)
		}
		if filepath.IsAbs(target) {
			p = target
		} else {
			p = filepath.Join(absDir, target)
		}
	}

	return "", errors.Newf(errors.ErrFileAccess, "too many levels of symbolic links: %s", path)
}

// Abs returns the absolute form of path: its directory part made
// absolute and cleaned, joined with the basename. Only "." and ".."
// are resolved; symlinks are left alone.
func Abs(path string) (string, error) {
	absDir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to resolve directory of %s", path)
	}
	return filepath.Join(absDir, filepath.Base(path)), nil
}

// physicalDir resolves dir to its symlink-free location, erroring when
// the directory is missing or untraversable.
func physicalDir(dir string) (string, error) {
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot resolve directory %s", dir)
	}
	// cd semantics: the directory must be enterable, not merely visible.
	// Stat of "dir/." forces traversal, which needs execute permission.
	// filepath.Join would clean the trailing dot away, so concatenate.
	if _, err := os.Stat(resolved + string(filepath.Separator) + "."); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot enter directory %s", dir)
	}
	return resolved, nil
}
