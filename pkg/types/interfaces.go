package types

import (
	"io/fs"
)

// FS is the filesystem interface required for rigup operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	AppendFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Symlink operations
	Symlink(oldname, newname string) error
	Readlink(name string) (string, error)

	// Other operations
	Rename(oldpath, newpath string) error
	Remove(name string) error
	RemoveAll(path string) error

	// Lstat reports on the link itself, not its target.
	// For testing, implementations may fall back to Stat.
	Lstat(name string) (fs.FileInfo, error)
}

// Prompter asks the operator yes/no questions before destructive steps
type Prompter interface {
	// YesNo prints the question followed by " (y/n) " and returns true
	// only for an answer of y or Y. Any read failure counts as no.
	YesNo(question string) bool
}

// Notifier reports progress to the operator
type Notifier interface {
	// Info prints a progress line prefixed with "- "
	Info(format string, args ...interface{})

	// Milestone prints a section line prefixed with "* "
	Milestone(format string, args ...interface{})
}

// Pather provides paths for rigup operations
type Pather interface {
	// RigRoot returns the root directory holding the rigup manifest
	RigRoot() string

	// LocalRoot returns the directory rigup installs into
	LocalRoot() string

	// DataDir returns the XDG data directory for rigup
	DataDir() string

	// ConfigDir returns the XDG config directory for rigup
	ConfigDir() string

	// CacheDir returns the XDG cache directory for rigup
	CacheDir() string

	// StateDir returns the XDG state directory for rigup
	StateDir() string
}
