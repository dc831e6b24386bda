// pkg/rcfile/rcfile_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Real filesystem (ALLOWED for rcfile package)
// PURPOSE: Test idempotent config block appends against actual files

package rcfile_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rigup/pkg/errors"
	"rigup/pkg/filesystem"
	"rigup/pkg/rcfile"
	"rigup/pkg/testutil"
	"rigup/pkg/ui"
)

// newWriter builds a Writer on the real filesystem with a capturing notifier
func newWriter() (*rcfile.Writer, *bytes.Buffer) {
	var out bytes.Buffer
	return rcfile.NewWriter(filesystem.NewOS(), ui.NewNotifier(&out, ui.FormatText)), &out
}

func TestRequireContent(t *testing.T) {
	t.Run("missing target file is an error", func(t *testing.T) {
		w, _ := newWriter()

		_, err := w.RequireContent("/definitely/not/here/.zshrc", "export A=1")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrFileNotFound))
	})

	t.Run("appends content plus blank line", func(t *testing.T) {
		dir := t.TempDir()
		rc := testutil.CreateFile(t, dir, ".zshrc", "# existing\n")
		w, out := newWriter()

		res, err := w.RequireContent(rc, "export PATH=$HOME/bin:$PATH")
		require.NoError(t, err)
		assert.Equal(t, rcfile.Appended, res)

		testutil.AssertFileContent(t, rc, "# existing\nexport PATH=$HOME/bin:$PATH\n\n")
		assert.Contains(t, out.String(), "- added")
	})

	t.Run("repeat invocation skips and never grows the file", func(t *testing.T) {
		dir := t.TempDir()
		rc := testutil.CreateFile(t, dir, ".zshrc", "")
		w, out := newWriter()
		content := "eval \"$(tool init)\""

		res, err := w.RequireContent(rc, content)
		require.NoError(t, err)
		assert.Equal(t, rcfile.Appended, res)

		res, err = w.RequireContent(rc, content)
		require.NoError(t, err)
		assert.Equal(t, rcfile.Skipped, res)

		text := testutil.ReadFile(t, rc)
		assert.Equal(t, 1, strings.Count(text, content))
		assert.Contains(t, out.String(), "already in")
	})

	t.Run("containment is whitespace sensitive", func(t *testing.T) {
		// Exact substring matching: a block differing only in trailing
		// whitespace is a different block and gets appended too.
		dir := t.TempDir()
		rc := testutil.CreateFile(t, dir, ".zshrc", "")
		w, _ := newWriter()

		res, err := w.RequireContent(rc, "alias ll='ls -l'")
		require.NoError(t, err)
		assert.Equal(t, rcfile.Appended, res)

		res, err = w.RequireContent(rc, "alias ll='ls -l' ")
		require.NoError(t, err)
		assert.Equal(t, rcfile.Appended, res)
	})

	t.Run("append keeps prior content intact", func(t *testing.T) {
		dir := t.TempDir()
		prior := "# managed by hand\nexport EDITOR=vim\n"
		rc := testutil.CreateFile(t, dir, ".zshrc", prior)
		w, _ := newWriter()

		_, err := w.RequireContent(rc, "export VISUAL=vim")
		require.NoError(t, err)

		text := testutil.ReadFile(t, rc)
		assert.True(t, strings.HasPrefix(text, prior), "prior content must be preserved")
	})

	t.Run("content with trailing newline gets single separator", func(t *testing.T) {
		dir := t.TempDir()
		rc := testutil.CreateFile(t, dir, ".zshrc", "")
		w, _ := newWriter()

		_, err := w.RequireContent(rc, "export A=1\n")
		require.NoError(t, err)

		testutil.AssertFileContent(t, rc, "export A=1\n\n")
	})
}

func TestRequireBlock(t *testing.T) {
	t.Run("renders label header above body", func(t *testing.T) {
		dir := t.TempDir()
		rc := testutil.CreateFile(t, dir, ".zshrc", "")
		w, _ := newWriter()

		res, err := w.RequireBlock(rc, rcfile.Block{
			Label: "rigup path",
			Body:  "export PATH=$HOME/.local/rigup/bin:$PATH",
		})
		require.NoError(t, err)
		assert.Equal(t, rcfile.Appended, res)

		testutil.AssertFileContent(t, rc,
			"# rigup path\nexport PATH=$HOME/.local/rigup/bin:$PATH\n\n")
	})

	t.Run("same label different body does not merge", func(t *testing.T) {
		dir := t.TempDir()
		rc := testutil.CreateFile(t, dir, ".zshrc", "")
		w, _ := newWriter()

		_, err := w.RequireBlock(rc, rcfile.Block{Label: "tools", Body: "export A=1"})
		require.NoError(t, err)
		_, err = w.RequireBlock(rc, rcfile.Block{Label: "tools", Body: "export B=2"})
		require.NoError(t, err)

		text := testutil.ReadFile(t, rc)
		assert.Equal(t, 2, strings.Count(text, "# tools\n"))
	})

	t.Run("identical block skips", func(t *testing.T) {
		dir := t.TempDir()
		rc := testutil.CreateFile(t, dir, ".zshrc", "")
		w, _ := newWriter()
		block := rcfile.Block{Label: "tools", Body: "export A=1"}

		_, err := w.RequireBlock(rc, block)
		require.NoError(t, err)

		res, err := w.RequireBlock(rc, block)
		require.NoError(t, err)
		assert.Equal(t, rcfile.Skipped, res)
	})
}

func TestContains(t *testing.T) {
	assert.True(t, rcfile.Contains("a\nb\nc\n", "b"))
	assert.False(t, rcfile.Contains("a\nb\nc\n", "b "))
	assert.True(t, rcfile.Contains("x", ""))
}

func TestHomeRelative(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		localRoot string
		home      string
		want      string
	}{
		{
			name:      "rewrites local root under home",
			text:      "export PATH=/home/u/.local/rigup/bin:$PATH",
			localRoot: "/home/u/.local/rigup",
			home:      "/home/u",
			want:      "export PATH=$HOME/.local/rigup/bin:$PATH",
		},
		{
			name:      "rewrites every occurrence",
			text:      "/home/u/.local/rigup/bin and /home/u/.local/rigup/src",
			localRoot: "/home/u/.local/rigup",
			home:      "/home/u",
			want:      "$HOME/.local/rigup/bin and $HOME/.local/rigup/src",
		},
		{
			name:      "local root outside home unchanged",
			text:      "export PATH=/opt/rigup/bin:$PATH",
			localRoot: "/opt/rigup",
			home:      "/home/u",
			want:      "export PATH=/opt/rigup/bin:$PATH",
		},
		{
			name:      "local root equal to home",
			text:      "cd /home/u",
			localRoot: "/home/u",
			home:      "/home/u",
			want:      "cd $HOME",
		},
		{
			name:      "no occurrence leaves text alone",
			text:      "nothing to see",
			localRoot: "/home/u/.local/rigup",
			home:      "/home/u",
			want:      "nothing to see",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rcfile.HomeRelative(tt.text, tt.localRoot, tt.home)
			assert.Equal(t, tt.want, got)
		})
	}
}
