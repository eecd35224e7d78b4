package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxImportSize bounds the size of a configuration file accepted by ReadImport
const MaxImportSize = 1 << 20

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// AtomicWrite replaces filePath with data through a temporary file in the
// same directory. An existing file is backed up first when createBackup is
// set. The result is readable by the owner only since exports carry API keys.
func AtomicWrite(filePath string, data []byte, createBackup bool) error {
	if createBackup && FileExists(filePath) {
		bm := NewBackupManager(DefaultBackupRetention)
		if _, err := bm.CreateBackup(filePath); err != nil {
			return fmt.Errorf("failed to create backup file: %w", err)
		}
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(filePath), filepath.Base(filePath)+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write to temporary file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	tmpFile.Close()

	if err := os.Chmod(tmpFile.Name(), 0600); err != nil {
		return fmt.Errorf("failed to set permissions on temporary file: %w", err)
	}

	// Atomic rename on POSIX systems
	if err := os.Rename(tmpFile.Name(), filePath); err != nil {
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	if createBackup {
		bm := NewBackupManager(DefaultBackupRetention)
		// Non-fatal, the write itself succeeded
		_ = bm.CleanupOldBackups(filePath)
	}

	return nil
}

// WriteExport writes an exported configuration document to path while
// holding the exclusive lock of path's lock file.
func WriteExport(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create export directory: %w", err)
		}
	}

	lock, err := os.OpenFile(lockPath(path), os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	defer lock.Close()

	if err := lockFileExclusive(lock); err != nil {
		return fmt.Errorf("failed to lock export file: %w", err)
	}
	defer unlockFile(lock)

	return AtomicWrite(path, data, true)
}

// ReadImport reads a configuration document from path under a shared lock.
// Content is returned as-is; parsing is left to the caller.
func ReadImport(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("configuration file %s does not exist", path)
		}
		return nil, fmt.Errorf("failed to open configuration file: %w", err)
	}
	defer f.Close()

	if lock, err := os.Open(lockPath(path)); err == nil {
		defer lock.Close()
		if err := lockFileShared(lock); err != nil {
			return nil, fmt.Errorf("failed to lock configuration file: %w", err)
		}
		defer unlockFile(lock)
	}

	data, err := io.ReadAll(io.LimitReader(f, MaxImportSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}
	if len(data) > MaxImportSize {
		return nil, fmt.Errorf("configuration file %s is larger than %d bytes", path, MaxImportSize)
	}
	return data, nil
}

func lockPath(path string) string {
	return path + ".lock"
}
