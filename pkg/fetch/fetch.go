// Package fetch downloads files over HTTP into the cache directory.
// Downloads land in a temp file first and are renamed into place only on
// success, so an interrupted transfer never leaves a truncated file
// under the final name.
package fetch

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"rigup/pkg/errors"
	"rigup/pkg/logging"
	"rigup/pkg/types"
)

var log = logging.GetLogger("fetch")

// DefaultTimeout bounds a download when the configuration does not.
const DefaultTimeout = 5 * time.Minute

// Downloader fetches URLs into a directory.
type Downloader struct {
	client *http.Client
	notify types.Notifier
}

// New creates a Downloader. A zero timeout falls back to DefaultTimeout.
func New(timeout time.Duration, notify types.Notifier) *Downloader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Downloader{
		client: &http.Client{Timeout: timeout},
		notify: notify,
	}
}

// Download fetches rawURL into destDir and returns the downloaded file's
// path. The file name is the URL path's base name. An existing file of
// the same name is reused without a network round trip; pass force to
// download again.
func (d *Downloader) Download(ctx context.Context, rawURL, destDir string, force bool) (string, error) {
	name, err := fileName(rawURL)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(destDir, name)

	if !force {
		if _, err := os.Stat(dest); err == nil {
			log.Debug().Str("path", dest).Msg("already downloaded")
			d.notify.Info("%s already downloaded", name)
			return dest, nil
		}
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", destDir)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "bad url %s", rawURL)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDownload, "failed to fetch %s", rawURL)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf(errors.ErrDownload, "%s returned %s", rawURL, resp.Status).
			WithDetail("status", resp.StatusCode)
	}

	tmp, err := os.CreateTemp(destDir, name+".partial-*")
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot create temp file in %s", destDir)
	}
	tmpName := tmp.Name()

	written, err := io.Copy(tmp, resp.Body)
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return "", errors.Wrapf(err, errors.ErrDownload, "download of %s interrupted", rawURL)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		_ = os.Remove(tmpName)
		return "", errors.Wrapf(err, errors.ErrFileWrite, "cannot move download into place at %s", dest)
	}

	log.Info().Str("url", rawURL).Str("path", dest).Int64("bytes", written).Msg("file downloaded")
	d.notify.Info("downloaded %s (%d bytes)", name, written)
	return dest, nil
}

// fileName derives the target file name from a URL path.
func fileName(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "bad url %s", rawURL)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", errors.Newf(errors.ErrInvalidInput, "cannot derive a file name from %s", rawURL)
	}
	return name, nil
}
