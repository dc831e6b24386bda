// Package link installs symlinks safely: whatever already sits at the
// destination is moved to a numbered backup first, and only with the
// operator's consent.
package link

import (
	"fmt"
	"os"
	"path/filepath"

	"rigup/pkg/backup"
	"rigup/pkg/errors"
	"rigup/pkg/logging"
	"rigup/pkg/paths"
	"rigup/pkg/types"
)

var log = logging.GetLogger("link")

// BackupSuffix is appended to a destination before numbering, giving
// <dest>.bk, then <dest>.bk.0, <dest>.bk.1, ...
const BackupSuffix = ".bk"

// Outcome reports how a Symlink call ended.
type Outcome string

const (
	// Created means the link was created at a previously free destination
	Created Outcome = "created"
	// AlreadyLinked means the destination already pointed at the source
	AlreadyLinked Outcome = "already-linked"
	// Replaced means the destination was backed up and the link created
	Replaced Outcome = "replaced"
	// Declined means the operator refused to replace the destination
	Declined Outcome = "declined"
	// SourceMissing means the source does not exist, so no link was made
	SourceMissing Outcome = "source-missing"
)

// Installer creates symlinks with backup-and-confirm semantics.
type Installer struct {
	fs     types.FS
	prompt types.Prompter
	notify types.Notifier
}

// New creates an Installer.
func New(fs types.FS, prompt types.Prompter, notify types.Notifier) *Installer {
	return &Installer{fs: fs, prompt: prompt, notify: notify}
}

// Symlink ensures dest is a symlink to source. The walk:
//
//  1. dest is already a link to the same underlying file as source
//     (device+inode identity, not path comparison): AlreadyLinked,
//     nothing touched, no prompt.
//  2. source does not exist: SourceMissing. A dangling link is never
//     created.
//  3. anything else at dest (file, directory, dangling link): ask the
//     operator. A no answer is Declined with dest untouched; a yes moves
//     dest to the next numbered backup name.
//  4. the link is created pointing at the absolute source path.
//
// Declined and SourceMissing are ordinary outcomes, not errors. When the
// final link creation fails after the backup rename there is no rollback;
// the destination is then free, so a re-run continues cleanly.
func (in *Installer) Symlink(source, dest string) (Outcome, error) {
	absSource, err := paths.Abs(source)
	if err != nil {
		return "", err
	}

	destInfo, destErr := in.fs.Lstat(dest)
	destExists := destErr == nil

	if destExists && destInfo.Mode()&os.ModeSymlink != 0 && in.sameFile(absSource, dest) {
		log.Debug().Str("dest", dest).Str("source", absSource).Msg("already linked")
		in.notify.Info("%s already linked", dest)
		return AlreadyLinked, nil
	}

	if _, err := in.fs.Stat(absSource); err != nil {
		log.Warn().Str("source", absSource).Msg("link source missing")
		in.notify.Info("%s missing, not linking %s", absSource, dest)
		return SourceMissing, nil
	}

	replaced := false
	if destExists {
		if !in.prompt.YesNo(fmt.Sprintf("%s exists, replace it?", dest)) {
			in.notify.Info("left %s alone", dest)
			return Declined, nil
		}

		backupPath := backup.Numbered(in.fs, dest+BackupSuffix)
		if err := in.fs.Rename(dest, backupPath); err != nil {
			return "", errors.Wrapf(err, errors.ErrBackupMove, "cannot move %s to %s", dest, backupPath)
		}
		in.notify.Info("moved %s to %s", dest, backupPath)
		replaced = true
	} else {
		if err := in.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory for %s", dest)
		}
	}

	if err := in.fs.Symlink(absSource, dest); err != nil {
		// The backup move is not undone; dest is free now, so re-running
		// after the failure resumes without a conflict prompt.
		return "", errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot link %s to %s", dest, absSource)
	}

	log.Info().Str("dest", dest).Str("source", absSource).Bool("replaced", replaced).Msg("link created")
	in.notify.Info("linked %s -> %s", dest, absSource)

	if replaced {
		return Replaced, nil
	}
	return Created, nil
}

// sameFile reports whether a and b resolve to the same underlying file,
// compared by device and inode.
func (in *Installer) sameFile(a, b string) bool {
	aInfo, err := in.fs.Stat(a)
	if err != nil {
		return false
	}
	bInfo, err := in.fs.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(aInfo, bInfo)
}
