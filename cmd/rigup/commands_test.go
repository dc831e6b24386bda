// cmd/rigup/commands_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem, isolated env (no network)
// PURPOSE: Test command wiring end to end through the cobra tree

package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rigup/pkg/testutil"
)

// setupRig isolates the environment around a temp rig and returns its
// root and the rc file path.
func setupRig(t *testing.T) (string, string) {
	t.Helper()

	home := t.TempDir()
	rigRoot := testutil.CreateDir(t, home, "rig")
	rc := testutil.CreateFile(t, home, ".bashrc", "# bashrc\n")

	t.Setenv("HOME", home)
	t.Setenv("RIGUP_ROOT", rigRoot)
	t.Setenv("RIGUP_LOCAL_ROOT", filepath.Join(home, ".local", "rigup"))
	t.Setenv("RIGUP_RC_FILE", rc)
	t.Setenv("RIGUP_DATA_DIR", filepath.Join(home, "data"))
	t.Setenv("RIGUP_CONFIG_DIR", filepath.Join(home, "config"))
	t.Setenv("RIGUP_CACHE_DIR", filepath.Join(home, "cache"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, "state"))

	return rigRoot, rc
}

// runCmd executes the command tree with args, capturing cobra output.
func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestInitCommand(t *testing.T) {
	rigRoot, _ := setupRig(t)

	_, err := runCmd(t, "init")
	require.NoError(t, err)

	manifest := testutil.ReadFile(t, filepath.Join(rigRoot, "rigup.toml"))
	assert.Contains(t, manifest, "[[recipe]]")
	assert.Contains(t, manifest, "name = 'hello'")

	// The local root layout was prepared.
	localRoot := filepath.Join(filepath.Dir(rigRoot), ".local", "rigup")
	assert.True(t, testutil.DirExists(t, filepath.Join(localRoot, "bin")))
	assert.True(t, testutil.DirExists(t, filepath.Join(localRoot, "src")))

	// A second init refuses to clobber the manifest.
	_, err = runCmd(t, "init")
	assert.Error(t, err)
}

func TestUpCommand(t *testing.T) {
	t.Run("runs the manifest", func(t *testing.T) {
		rigRoot, _ := setupRig(t)
		testutil.CreateFile(t, rigRoot, "rigup.toml", `
[[recipe]]
name = "touch"
[[recipe.step]]
kind = "shell"
script = "echo done > out.txt"
`)

		_, err := runCmd(t, "up")
		require.NoError(t, err)
		testutil.AssertFileContent(t, filepath.Join(rigRoot, "out.txt"), "done\n")
	})

	t.Run("failure exits non-zero", func(t *testing.T) {
		rigRoot, _ := setupRig(t)
		testutil.CreateFile(t, rigRoot, "rigup.toml", `
[[recipe]]
name = "broken"
[[recipe.step]]
kind = "shell"
script = "exit 1"
`)

		_, err := runCmd(t, "up")
		assert.Error(t, err)
	})

	t.Run("dry-run executes nothing", func(t *testing.T) {
		rigRoot, _ := setupRig(t)
		testutil.CreateFile(t, rigRoot, "rigup.toml", `
[[recipe]]
name = "touch"
[[recipe.step]]
kind = "shell"
script = "echo done > out.txt"
`)

		_, err := runCmd(t, "up", "--dry-run")
		require.NoError(t, err)
		testutil.AssertNoFile(t, filepath.Join(rigRoot, "out.txt"))
	})

	t.Run("unknown recipe name fails", func(t *testing.T) {
		rigRoot, _ := setupRig(t)
		testutil.CreateFile(t, rigRoot, "rigup.toml", `
[[recipe]]
name = "real"
[[recipe.step]]
kind = "shell"
script = "true"
`)

		_, err := runCmd(t, "up", "imaginary")
		assert.Error(t, err)
	})
}

func TestRequireCommand(t *testing.T) {
	_, rc := setupRig(t)

	_, err := runCmd(t, "require", "--label", "editor", "export EDITOR=vim")
	require.NoError(t, err)

	content := testutil.ReadFile(t, rc)
	assert.Contains(t, content, "# editor\nexport EDITOR=vim")

	// Idempotent on repeat.
	_, err = runCmd(t, "require", "--label", "editor", "export EDITOR=vim")
	require.NoError(t, err)
	assert.Equal(t, content, testutil.ReadFile(t, rc))
}

func TestSnippetCommand(t *testing.T) {
	t.Run("prints a portable PATH block", func(t *testing.T) {
		setupRig(t)

		out, err := runCmd(t, "snippet")
		require.NoError(t, err)
		assert.Contains(t, out, "# rigup path")
		assert.Contains(t, out, `$HOME/.local/rigup/bin`)
	})

	t.Run("apply appends to the rc file once", func(t *testing.T) {
		_, rc := setupRig(t)

		_, err := runCmd(t, "snippet", "--apply")
		require.NoError(t, err)
		first := testutil.ReadFile(t, rc)
		assert.Contains(t, first, "# rigup path")

		_, err = runCmd(t, "snippet", "--apply")
		require.NoError(t, err)
		assert.Equal(t, first, testutil.ReadFile(t, rc))
	})
}

func TestLinkCommand(t *testing.T) {
	rigRoot, _ := setupRig(t)
	source := testutil.CreateFile(t, rigRoot, "tool", "#!/bin/sh\n")
	dest := filepath.Join(rigRoot, "bin", "tool")

	_, err := runCmd(t, "link", source, dest)
	require.NoError(t, err)
	assert.True(t, testutil.SameFile(t, source, dest))

	// Missing source is a hard failure.
	_, err = runCmd(t, "link", filepath.Join(rigRoot, "gone"), dest+"2")
	assert.Error(t, err)
}

func TestDocsCommand(t *testing.T) {
	setupRig(t)

	t.Run("lists topics when none given", func(t *testing.T) {
		out, err := runCmd(t, "docs")
		require.NoError(t, err)
		assert.Contains(t, out, "manifest")
		assert.Contains(t, out, "layout")
	})

	t.Run("renders a topic", func(t *testing.T) {
		out, err := runCmd(t, "docs", "manifest")
		require.NoError(t, err)
		assert.Contains(t, out, "rigup.toml")
	})

	t.Run("unknown topic is an error", func(t *testing.T) {
		_, err := runCmd(t, "docs", "nope")
		assert.Error(t, err)
	})
}

func TestVersionCommand(t *testing.T) {
	out, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rigup version")
}
