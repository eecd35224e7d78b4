//go:build unix

package storage

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFileExclusive 独占锁（写锁）
func lockFileExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

// lockFileShared 共享锁（读锁）
func lockFileShared(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_SH)
}

// unlockFile 解锁
func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
