// Package archive extracts downloaded archives. The format is picked by
// file extension: .zip, .tar, .tar.gz and .tgz are understood. Entries
// whose paths would escape the destination directory are rejected.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"rigup/pkg/errors"
	"rigup/pkg/logging"
)

var log = logging.GetLogger("archive")

// Extract unpacks the archive at src into destDir, creating destDir if
// needed.
func Extract(src, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", destDir)
	}

	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return extractZip(src, destDir)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return extractTar(src, destDir, true)
	case strings.HasSuffix(lower, ".tar"):
		return extractTar(src, destDir, false)
	default:
		return errors.Newf(errors.ErrExtract, "unsupported archive format: %s", filepath.Base(src))
	}
}

// secureJoin joins name under destDir, refusing entries that would land
// outside it.
func secureJoin(destDir, name string) (string, error) {
	target := filepath.Join(destDir, name)
	if !strings.HasPrefix(target, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", errors.Newf(errors.ErrExtract, "archive entry escapes destination: %s", name)
	}
	return target, nil
}

// preparePath walks dir's components under destDir with Lstat and creates
// the chain. Any symlink component is refused: extraction creates every
// directory itself, so a symlink on the way can only have come from an
// earlier archive entry redirecting writes out of destDir.
func preparePath(destDir, dir, name string) error {
	dest := filepath.Clean(destDir)
	rel, err := filepath.Rel(dest, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return errors.Newf(errors.ErrExtract, "archive entry escapes destination: %s", name)
	}

	walk := dest
	if rel != "." {
		for _, part := range strings.Split(rel, string(os.PathSeparator)) {
			walk = filepath.Join(walk, part)
			fi, err := os.Lstat(walk)
			if os.IsNotExist(err) {
				break
			}
			if err != nil {
				return errors.Wrapf(err, errors.ErrFileAccess, "cannot inspect %s", walk)
			}
			if fi.Mode()&os.ModeSymlink != 0 {
				return errors.Newf(errors.ErrExtract, "archive entry traverses a symlink: %s", name)
			}
		}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", dir)
	}
	return nil
}

// checkLinkTarget refuses symlink entries whose target resolves outside
// destDir, whether the link name is absolute or relative to the entry's
// directory.
func checkLinkTarget(destDir, target, linkname, name string) error {
	resolved := filepath.Clean(linkname)
	if !filepath.IsAbs(resolved) {
		resolved = filepath.Join(filepath.Dir(target), linkname)
	}
	dest := filepath.Clean(destDir)
	if resolved != dest && !strings.HasPrefix(resolved, dest+string(os.PathSeparator)) {
		return errors.Newf(errors.ErrExtract, "archive entry escapes destination: %s", name)
	}
	return nil
}

func extractTar(src, destDir string, gzipped bool) error {
	f, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", src)
	}
	defer func() { _ = f.Close() }()

	var reader io.Reader = f
	if gzipped {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return errors.Wrapf(err, errors.ErrExtract, "%s is not gzip data", src)
		}
		defer func() { _ = gz.Close() }()
		reader = gz
	}

	tr := tar.NewReader(reader)
	count := 0
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, errors.ErrExtract, "corrupt tar archive %s", src)
		}

		target, err := secureJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := preparePath(destDir, target, hdr.Name); err != nil {
				return err
			}
			if err := os.Chmod(target, os.FileMode(hdr.Mode)); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot set mode on %s", target)
			}
		case tar.TypeReg:
			if err := preparePath(destDir, filepath.Dir(target), hdr.Name); err != nil {
				return err
			}
			if err := writeEntry(target, tr, os.FileMode(hdr.Mode)); err != nil {
				return err
			}
			count++
		case tar.TypeSymlink:
			if err := preparePath(destDir, filepath.Dir(target), hdr.Name); err != nil {
				return err
			}
			if err := checkLinkTarget(destDir, target, hdr.Linkname, hdr.Name); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return errors.Wrapf(err, errors.ErrExtract, "cannot create symlink %s", target)
			}
			count++
		default:
			log.Debug().Str("entry", hdr.Name).Uint8("type", hdr.Typeflag).Msg("skipping tar entry")
		}
	}

	log.Info().Str("archive", src).Str("dest", destDir).Int("entries", count).Msg("archive extracted")
	return nil
}

func extractZip(src, destDir string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrExtract, "cannot open zip archive %s", src)
	}
	defer func() { _ = r.Close() }()

	count := 0
	for _, entry := range r.File {
		target, err := secureJoin(destDir, entry.Name)
		if err != nil {
			return err
		}

		if entry.FileInfo().IsDir() {
			if err := preparePath(destDir, target, entry.Name); err != nil {
				return err
			}
			continue
		}
		if err := preparePath(destDir, filepath.Dir(target), entry.Name); err != nil {
			return err
		}

		rc, err := entry.Open()
		if err != nil {
			return errors.Wrapf(err, errors.ErrExtract, "cannot read zip entry %s", entry.Name)
		}
		err = writeEntry(target, rc, entry.Mode())
		_ = rc.Close()
		if err != nil {
			return err
		}
		count++
	}

	log.Info().Str("archive", src).Str("dest", destDir).Int("entries", count).Msg("archive extracted")
	return nil
}

// writeEntry writes one archive member to disk. The caller has already
// vetted and created the parent chain; the final component still gets an
// Lstat so a symlink left by an earlier entry is never written through.
func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if fi, err := os.Lstat(target); err == nil && fi.Mode()&os.ModeSymlink != 0 {
		return errors.Newf(errors.ErrExtract, "archive entry traverses a symlink: %s", target)
	}

	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create %s", target)
	}

	_, err = io.Copy(f, r)
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", target)
	}
	return nil
}
