package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// ErrWriteFailed wraps directory creation and file write failures
var ErrWriteFailed = errors.New("write failed")

// maxCollisionAttempts bounds the base_N search so a broken filesystem cannot spin forever
const maxCollisionAttempts = 100000

// DirectoryHandle is scoped access to a destination root. Acquire must be
// paired with Release; writes are only valid between the two.
type DirectoryHandle interface {
	Root() string
	Acquire(ctx context.Context) error
	Release()
}

// LocalDirectory is a DirectoryHandle for a plain filesystem path
type LocalDirectory struct {
	root   string
	leases atomic.Int64
}

// NewLocalDirectory wraps a root path
func NewLocalDirectory(root string) *LocalDirectory {
	return &LocalDirectory{root: root}
}

// Root returns the wrapped path
func (d *LocalDirectory) Root() string {
	return d.root
}

// Acquire creates the root if needed and checks it is a directory
func (d *LocalDirectory) Acquire(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(d.root) == "" {
		return fmt.Errorf("%w: no directory configured", ErrWriteFailed)
	}
	if err := os.MkdirAll(d.root, 0755); err != nil {
		return fmt.Errorf("%w: failed to create %s: %v", ErrWriteFailed, d.root, err)
	}
	d.leases.Add(1)
	return nil
}

// Release ends a lease taken by Acquire
func (d *LocalDirectory) Release() {
	d.leases.Add(-1)
}

// ActiveLeases reports how many writers currently hold the directory
func (d *LocalDirectory) ActiveLeases() int64 {
	return d.leases.Load()
}

// Writer places files under a DirectoryHandle without ever overwriting
type Writer struct {
	logger *logrus.Logger
}

// NewWriter creates a file writer
func NewWriter(logger *logrus.Logger) *Writer {
	return &Writer{logger: logger}
}

// WriteUnique writes data to root/subfolder/filename, creating directories
// as needed. When the name is taken it tries base_1.ext, base_2.ext, ...
// and uses the first free one. Files are created exclusively, so concurrent
// writers targeting the same name each get their own suffix. Returns the
// path written.
func (w *Writer) WriteUnique(ctx context.Context, dir DirectoryHandle, subfolder, filename string, data []byte) (string, error) {
	if err := dir.Acquire(ctx); err != nil {
		return "", err
	}
	defer dir.Release()

	targetDir := filepath.Join(dir.Root(), filepath.FromSlash(subfolder))
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", fmt.Errorf("%w: failed to create directory: %v", ErrWriteFailed, err)
	}

	for counter := 0; counter <= maxCollisionAttempts; counter++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		target := filepath.Join(targetDir, CandidateName(filename, counter))
		file, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("%w: failed to create file: %v", ErrWriteFailed, err)
		}

		if err := writeAndClose(file, data); err != nil {
			// never leave a truncated image behind under the reserved name
			_ = os.Remove(target)
			return "", fmt.Errorf("%w: failed to write file: %v", ErrWriteFailed, err)
		}

		w.logger.WithFields(logrus.Fields{
			"path":  target,
			"bytes": len(data),
		}).Debug("File written")
		return target, nil
	}

	return "", fmt.Errorf("%w: no free name for %s in %s", ErrWriteFailed, filename, targetDir)
}

func writeAndClose(file *os.File, data []byte) error {
	if _, err := file.Write(data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// CandidateName is the filename tried on the given attempt: the name itself
// for 0, then base_N.ext (base_N when there is no extension).
func CandidateName(filename string, counter int) string {
	if counter == 0 {
		return filename
	}
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	return fmt.Sprintf("%s_%d%s", base, counter, ext)
}
