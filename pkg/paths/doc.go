// Package paths provides centralized path handling for rigup.
//
// This package implements the XDG Base Directory specification and provides
// a consistent API for all path operations throughout the rigup codebase.
// It handles:
//
//   - Rig root directory discovery and configuration
//   - Local root layout (bin/, src/) for installed tools
//   - XDG directory structure (data, config, cache, state)
//   - Path normalization and expansion
//   - Physical directory resolution through symlink chains
//
// # Environment Variables
//
// The package respects the following environment variables:
//
//   - RIGUP_ROOT: Location of the rig checkout holding rigup.toml
//   - RIGUP_LOCAL_ROOT: Override the install root (default: ~/.local/rigup)
//   - RIGUP_RC_FILE: Override the shell rc file rigup appends to
//   - RIGUP_DATA_DIR: Override XDG data directory (default: $XDG_DATA_HOME/rigup)
//   - RIGUP_CONFIG_DIR: Override XDG config directory (default: $XDG_CONFIG_HOME/rigup)
//   - RIGUP_CACHE_DIR: Override XDG cache directory (default: $XDG_CACHE_HOME/rigup)
//
// # XDG Base Directory Structure
//
//   - Data: $XDG_DATA_HOME/rigup (run-once sentinels)
//   - Config: $XDG_CONFIG_HOME/rigup (user configuration)
//   - Cache: $XDG_CACHE_HOME/rigup (downloaded archives)
//   - State: $XDG_STATE_HOME/rigup (log file)
//
// # Usage
//
//	import "rigup/pkg/paths"
//
//	// Create a new Paths instance
//	p, err := paths.New("")  // Auto-detect rig root
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Get various paths
//	root := p.RigRoot()      // /home/user/rig
//	bin := p.BinDir()        // /home/user/.local/rigup/bin
//	mf := p.ManifestPath()   // /home/user/rig/rigup.toml
package paths
