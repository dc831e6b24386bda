package paths

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"rigup/pkg/errors"
)

// Environment variable names
const (
	// EnvRigRoot is the primary environment variable for the rig checkout location
	EnvRigRoot = "RIGUP_ROOT"

	// EnvLocalRoot overrides the install root for binaries and sources
	EnvLocalRoot = "RIGUP_LOCAL_ROOT"

	// EnvRCFile overrides the shell rc file rigup appends to
	EnvRCFile = "RIGUP_RC_FILE"

	// EnvDataDir overrides the XDG data directory for rigup
	EnvDataDir = "RIGUP_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for rigup
	EnvConfigDir = "RIGUP_CONFIG_DIR"

	// EnvCacheDir overrides the XDG cache directory for rigup
	EnvCacheDir = "RIGUP_CACHE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"

	// EnvShell is the login shell variable used for rc file detection
	EnvShell = "SHELL"
)

// Default directories and files
// IMPORTANT: These constants define rigup's on-disk layout and are NOT
// user-configurable. User-configurable paths belong in pkg/config.
const (
	// RigDirName is the directory name for rigup-specific files
	RigDirName = "rigup"

	// ManifestFile is the name of the recipe manifest at the rig root
	ManifestFile = "rigup.toml"

	// RootConfigFile is the name of the per-rig configuration file
	RootConfigFile = ".rigup.toml"

	// DefaultLocalDir is the default install root, relative to $HOME
	DefaultLocalDir = ".local/rigup"

	// BinDirName is the subdirectory for linked binaries
	BinDirName = "bin"

	// SrcDirName is the subdirectory for cloned and extracted sources
	SrcDirName = "src"

	// SentinelsDirName is the subdirectory for run-once sentinels
	SentinelsDirName = "sentinels"

	// LogFileName is the name of the log file
	LogFileName = "rigup.log"
)

// Paths provides centralized path management for rigup
type Paths interface {
	RigRoot() string
	UsedFallback() bool
	ManifestPath() string
	RootConfigPath() string
	LocalRoot() string
	BinDir() string
	SrcDir() string
	DataDir() string
	ConfigDir() string
	CacheDir() string
	StateDir() string
	SentinelsDir() string
	SentinelPath(name string) string
	LogFilePath() string
	RCFile() string
	NormalizePath(path string) (string, error)
}

type paths struct {
	// rigRoot is the checkout directory holding the manifest
	rigRoot string

	// localRoot is the install root for binaries and sources
	localRoot string

	xdgData   string
	xdgConfig string
	xdgCache  string
	xdgState  string

	// rcFileOverride is the configured rc file; environment wins over it
	rcFileOverride string

	// usedFallback indicates if we fell back to cwd (for warning display)
	usedFallback bool
}

// New creates a new Paths instance with the given rig root.
// If rigRoot is empty, it will be determined from environment variables,
// the enclosing git repository, or the current directory.
func New(rigRoot string) (Paths, error) {
	return NewWithOverrides(rigRoot, "", "")
}

// NewWithOverrides creates a Paths instance with configured local-root
// and rc-file overrides, typically loaded from pkg/config. Environment
// variables still take precedence over both.
func NewWithOverrides(rigRoot, localRoot, rcFile string) (Paths, error) {
	p := &paths{rcFileOverride: expandHome(rcFile)}

	if rigRoot == "" {
		root, usedFallback, err := findRigRoot()
		if err != nil {
			return nil, err
		}
		p.rigRoot = root
		p.usedFallback = usedFallback
	} else {
		p.rigRoot = expandHome(rigRoot)
		p.usedFallback = false
	}

	absRoot, err := filepath.Abs(p.rigRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for rig root")
	}
	p.rigRoot = absRoot

	if envRoot := os.Getenv(EnvLocalRoot); envRoot != "" {
		p.localRoot = expandHome(envRoot)
	} else if localRoot != "" {
		p.localRoot = expandHome(localRoot)
	} else {
		home, err := GetHomeDirectory()
		if err != nil {
			return nil, err
		}
		p.localRoot = filepath.Join(home, DefaultLocalDir)
	}

	p.setupXDGDirs()

	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() {
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		p.xdgData = expandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, RigDirName)
	}

	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.xdgConfig = expandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, RigDirName)
	}

	if cacheDir := os.Getenv(EnvCacheDir); cacheDir != "" {
		p.xdgCache = expandHome(cacheDir)
	} else {
		p.xdgCache = filepath.Join(xdg.CacheHome, RigDirName)
	}

	// XDG_STATE_HOME predates the xdg library's API, check manually
	if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		p.xdgState = filepath.Join(stateDir, RigDirName)
	} else {
		homeDir, _ := os.UserHomeDir()
		p.xdgState = filepath.Join(homeDir, ".local", "state", RigDirName)
	}
}

// findRigRoot determines the rig root using the following priority:
// 1. RIGUP_ROOT environment variable (if set)
// 2. Git repository root (found via 'git rev-parse --show-toplevel')
// 3. Current working directory (fallback)
//
// The boolean result reports whether the current working directory was
// used as fallback, so callers can warn.
func findRigRoot() (string, bool, error) {
	if root := os.Getenv(EnvRigRoot); root != "" {
		return expandHome(root), false, nil
	}

	gitRoot, err := findGitRoot()
	if err == nil && gitRoot != "" {
		return gitRoot, false, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrFileAccess, "failed to get current directory")
	}

	return cwd, true, nil
}

// findGitRoot attempts to find the root of the current git repository
func findGitRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")

	output, err := cmd.Output()
	if err != nil {
		// Not in a git repo or git not installed
		return "", err
	}

	gitRoot := strings.TrimSpace(string(output))
	if gitRoot == "" {
		return "", errors.New(errors.ErrNotFound, "git root is empty")
	}

	return gitRoot, nil
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			homeDir = os.Getenv(EnvHome)
			if homeDir == "" {
				// Can't expand, return as-is
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}

// ExpandHome is a utility function that expands ~ in paths
func ExpandHome(path string) string {
	return expandHome(path)
}

// RigRoot returns the checkout directory holding the manifest
func (p *paths) RigRoot() string {
	return p.rigRoot
}

// UsedFallback returns true if the current working directory was used as fallback
func (p *paths) UsedFallback() bool {
	return p.usedFallback
}

// ManifestPath returns the path to the recipe manifest
func (p *paths) ManifestPath() string {
	return filepath.Join(p.rigRoot, ManifestFile)
}

// RootConfigPath returns the path to the per-rig configuration file
func (p *paths) RootConfigPath() string {
	return filepath.Join(p.rigRoot, RootConfigFile)
}

// LocalRoot returns the install root for binaries and sources
func (p *paths) LocalRoot() string {
	return p.localRoot
}

// BinDir returns the directory linked binaries are installed into
func (p *paths) BinDir() string {
	return filepath.Join(p.localRoot, BinDirName)
}

// SrcDir returns the directory cloned and extracted sources live in
func (p *paths) SrcDir() string {
	return filepath.Join(p.localRoot, SrcDirName)
}

// DataDir returns the XDG data directory for rigup
func (p *paths) DataDir() string {
	return p.xdgData
}

// ConfigDir returns the XDG config directory for rigup
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// CacheDir returns the XDG cache directory for rigup
func (p *paths) CacheDir() string {
	return p.xdgCache
}

// StateDir returns the XDG state directory for rigup
func (p *paths) StateDir() string {
	return p.xdgState
}

// SentinelsDir returns the directory holding run-once sentinels
func (p *paths) SentinelsDir() string {
	return filepath.Join(p.xdgData, SentinelsDirName)
}

// SentinelPath returns the sentinel file path recording that a run-once
// step has completed.
func (p *paths) SentinelPath(name string) string {
	return filepath.Join(p.SentinelsDir(), name)
}

// LogFilePath returns the path to the rigup log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// RCFile returns the shell rc file rigup appends configuration to.
// RIGUP_RC_FILE wins, then the configured override; otherwise the file
// is picked from $SHELL, and bash is assumed when $SHELL is unset or
// unrecognized.
func (p *paths) RCFile() string {
	if rc := os.Getenv(EnvRCFile); rc != "" {
		return expandHome(rc)
	}
	if p.rcFileOverride != "" {
		return p.rcFileOverride
	}

	home, err := GetHomeDirectory()
	if err != nil {
		home = "~"
	}

	shell := filepath.Base(os.Getenv(EnvShell))
	switch shell {
	case "zsh":
		return filepath.Join(home, ".zshrc")
	case "fish":
		return filepath.Join(home, ".config", "fish", "config.fish")
	default:
		return filepath.Join(home, ".bashrc")
	}
}

// NormalizePath normalizes a path by expanding home, making it absolute,
// and cleaning it
func (p *paths) NormalizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path")
	}

	expanded := expandHome(path)

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path")
	}

	return filepath.Clean(abs), nil
}

// GetHomeDirectory returns the user's home directory with proper error handling
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Try the HOME environment variable as a fallback
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return homeDir, nil
}
