package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// rotatingFile is an io.Writer over a log file that rotates by size and age
type rotatingFile struct {
	config Config
	file   *os.File
	mu     sync.Mutex
}

func openRotatingFile(config Config) (*rotatingFile, error) {
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	r := &rotatingFile{config: config}
	if err := r.open(); err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.rotateIfNeeded(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *rotatingFile) open() error {
	file, err := os.OpenFile(r.config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	r.file = file
	return nil
}

// Write implements io.Writer. Caller holds no lock.
func (r *rotatingFile) Write(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.rotateIfNeeded(); err != nil {
		return 0, err
	}
	return r.file.Write(p)
}

// rotateIfNeeded must be called with mu held
func (r *rotatingFile) rotateIfNeeded() error {
	if r.file == nil {
		return nil
	}

	info, err := r.file.Stat()
	if err != nil {
		return err
	}

	if r.config.MaxSize > 0 && info.Size() >= r.config.MaxSize {
		return r.rotate()
	}

	if r.config.MaxAge > 0 && info.Size() > 0 &&
		time.Since(info.ModTime()) > time.Duration(r.config.MaxAge)*24*time.Hour {
		return r.rotate()
	}

	return nil
}

// rotate shifts backups by one and starts a fresh file; mu must be held
func (r *rotatingFile) rotate() error {
	if r.file != nil {
		_ = r.file.Close()
	}

	for i := r.config.MaxBackups - 1; i >= 1; i-- {
		oldPath := fmt.Sprintf("%s.%d", r.config.FilePath, i)
		newPath := fmt.Sprintf("%s.%d", r.config.FilePath, i+1)
		_ = os.Rename(oldPath, newPath)
	}

	if _, err := os.Stat(r.config.FilePath); err == nil {
		if err := os.Rename(r.config.FilePath, r.config.FilePath+".1"); err != nil {
			return err
		}
	}

	return r.open()
}

func (r *rotatingFile) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.file != nil {
		return r.file.Close()
	}
	return nil
}
