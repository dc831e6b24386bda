// Package rcfile appends configuration blocks to shell rc files,
// idempotently: a block that is already present is never added twice.
package rcfile

import (
	"os"
	"path/filepath"
	"strings"

	"rigup/pkg/errors"
	"rigup/pkg/logging"
	"rigup/pkg/types"
)

var log = logging.GetLogger("rcfile")

// Result reports what RequireContent did.
type Result int

const (
	// Appended means the content was added to the file
	Appended Result = iota
	// Skipped means the content was already present
	Skipped
)

// String returns the string representation of the result
func (r Result) String() string {
	switch r {
	case Appended:
		return "appended"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Block is a labeled chunk of shell configuration.
type Block struct {
	Label string
	Body  string
}

// Render returns the block as written to the rc file: a comment header
// line naming the label, then the body.
func (b Block) Render() string {
	return "# " + b.Label + "\n" + b.Body
}

// Contains reports whether content already occurs in text.
//
// This is an exact substring test, whitespace and all. Two blocks that
// differ only in trailing whitespace are distinct and will both end up
// in the file. Recipes rely on exact-text idempotence, so any smarter
// comparison belongs here, behind this predicate, not at call sites.
func Contains(text, content string) bool {
	return strings.Contains(text, content)
}

// Writer appends configuration to rc files.
type Writer struct {
	fs     types.FS
	notify types.Notifier
}

// NewWriter creates a Writer on the given filesystem, reporting outcomes
// through notify.
func NewWriter(fs types.FS, notify types.Notifier) *Writer {
	return &Writer{fs: fs, notify: notify}
}

// RequireContent ensures content occurs in the file at target. When the
// content is already present the file is untouched and the result is
// Skipped; otherwise the content plus a separating blank line is appended
// (append mode, never truncating) and the result is Appended.
//
// The target file must already exist; a missing file is an
// ErrFileNotFound, since rigup never decides rc file creation on its own.
func (w *Writer) RequireContent(target, content string) (Result, error) {
	data, err := w.fs.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return Skipped, errors.Wrapf(err, errors.ErrFileNotFound, "rc file %s does not exist", target)
		}
		return Skipped, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", target)
	}

	if Contains(string(data), content) {
		log.Debug().Str("target", target).Msg("content already present")
		w.notify.Info("%s already in %s", describe(content), target)
		return Skipped, nil
	}

	payload := content
	if !strings.HasSuffix(payload, "\n") {
		payload += "\n"
	}
	payload += "\n"

	if err := w.fs.AppendFile(target, []byte(payload), 0644); err != nil {
		return Skipped, errors.Wrapf(err, errors.ErrFileWrite, "cannot append to %s", target)
	}

	log.Info().Str("target", target).Int("bytes", len(payload)).Msg("content appended")
	w.notify.Info("added %s to %s", describe(content), target)
	return Appended, nil
}

// RequireBlock ensures the rendered block occurs in the file at target.
// Blocks with the same label but different bodies do not merge; each
// distinct rendering is appended once.
func (w *Writer) RequireBlock(target string, block Block) (Result, error) {
	return w.RequireContent(target, block.Render())
}

// describe condenses content to its first line for notifications
func describe(content string) string {
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	if len(line) > 48 {
		line = line[:45] + "..."
	}
	return "\"" + line + "\""
}

// HomeRelative rewrites every literal occurrence of localRoot in text to
// a $HOME-anchored form, so persisted configuration survives a home
// directory move across machines. Pure string substitution; when
// localRoot does not live under home the text is returned unchanged.
func HomeRelative(text, localRoot, home string) string {
	if localRoot == "" || home == "" {
		return text
	}

	rel, err := filepath.Rel(home, localRoot)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return text
	}

	placeholder := "$HOME"
	if rel != "." {
		placeholder += "/" + filepath.ToSlash(rel)
	}

	return strings.ReplaceAll(text, localRoot, placeholder)
}
