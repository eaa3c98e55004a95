// Package archive packs named buffers into a single flat ZIP file.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/multierr"
)

// File is one archive entry.
type File struct {
	Name string
	Data []byte
}

// WriteFailure wraps any error raised while writing the archive.
type WriteFailure struct {
	Path string
	Err  error
}

func (e *WriteFailure) Error() string {
	return fmt.Sprintf("write archive %s: %v", e.Path, e.Err)
}

func (e *WriteFailure) Unwrap() error { return e.Err }

// modTime is fixed so identical inputs produce identical archives.
var modTime = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Write packs files into a ZIP at path, replacing any existing file. The
// archive is staged in a temporary file in the same directory and renamed
// into place, so a failure never leaves a partial archive under path.
func Write(path string, files []File) (err error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return &WriteFailure{Path: path, Err: err}
	}
	tmpName := tmp.Name()

	defer func() {
		if err != nil {
			err = multierr.Append(err, removeIfExists(tmpName))
			err = &WriteFailure{Path: path, Err: err}
		}
	}()

	if err = writeZip(tmp, files); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err = tmp.Sync(); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func writeZip(w io.Writer, files []File) error {
	zw := zip.NewWriter(w)
	for _, f := range files {
		hdr := &zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: modTime,
		}
		entry, err := zw.CreateHeader(hdr)
		if err != nil {
			return multierr.Append(fmt.Errorf("create entry %s: %w", f.Name, err), zw.Close())
		}
		if _, err := entry.Write(f.Data); err != nil {
			return multierr.Append(fmt.Errorf("write entry %s: %w", f.Name, err), zw.Close())
		}
	}
	return zw.Close()
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
