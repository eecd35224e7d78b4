//go:build !unix

package storage

import "os"

// Export files are only locked on unix; elsewhere the atomic rename is the
// only protection.

func lockFileExclusive(f *os.File) error { return nil }

func lockFileShared(f *os.File) error { return nil }

func unlockFile(f *os.File) error { return nil }
