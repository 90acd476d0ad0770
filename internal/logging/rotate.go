package logging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

var _ io.WriteCloser = (*RotatingFile)(nil)

// RotatingFile is an append-only log file rotated by size. Before a write
// would push the file past its limit, <path> becomes <path>.1, <path>.1
// becomes <path>.2 and so on, keeping at most Backups old files.
//
// Safe for concurrent use.
type RotatingFile struct {
	mu       sync.Mutex
	path     string
	limit    int64
	backups  int
	size     int64
	file     *os.File
	rotation int
}

// OpenRotatingFile opens (or creates) path for appending. maxSizeMB is
// clamped to at least 1, maxFiles to at least 0; with no backups the file
// is truncated on rotation.
func OpenRotatingFile(path string, maxSizeMB, maxFiles int) (*RotatingFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logging: create log directory: %w", err)
	}
	w := &RotatingFile{
		path:    path,
		limit:   int64(max(maxSizeMB, 1)) << 20,
		backups: max(maxFiles, 0),
	}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotatingFile) open() error {
	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("logging: open %s: %w", w.path, err)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("logging: stat %s: %w", w.path, err)
	}
	w.file = f
	w.size = info.Size()
	return nil
}

// Write appends p, rotating first if p does not fit. A record is never
// split across files; an oversized record gets a file to itself.
func (w *RotatingFile) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return 0, os.ErrClosed
	}
	if w.size > 0 && w.size+int64(len(p)) > w.limit {
		if err := w.rotate(); err != nil {
			return 0, fmt.Errorf("logging: rotate: %w", err)
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

// Rotations returns how many times the file has been rotated since it was
// opened.
func (w *RotatingFile) Rotations() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rotation
}

// Close closes the current file. Further writes fail with os.ErrClosed.
func (w *RotatingFile) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

func (w *RotatingFile) backup(n int) string {
	return w.path + "." + strconv.Itoa(n)
}

// rotate must be called with w.mu held.
func (w *RotatingFile) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}
	w.file = nil
	if w.backups == 0 {
		if err := os.Remove(w.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	} else {
		if err := os.Remove(w.backup(w.backups)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		for n := w.backups - 1; n >= 1; n-- {
			if err := os.Rename(w.backup(n), w.backup(n+1)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
		}
		if err := os.Rename(w.path, w.backup(1)); err != nil {
			return err
		}
	}
	w.rotation++
	return w.open()
}
