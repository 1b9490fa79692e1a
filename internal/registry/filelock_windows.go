//go:build windows

package registry

import (
	"os"

	"golang.org/x/sys/windows"
)

// flockExclusive takes a blocking exclusive lock on the file via LockFileEx,
// the Windows analogue of the POSIX advisory flock used on unix.
func flockExclusive(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.LockFileEx(
		windows.Handle(f.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK,
		0,
		1, 0,
		ol,
	)
}

// flockUnlock releases the lock taken by flockExclusive.
func flockUnlock(f *os.File) error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(
		windows.Handle(f.Fd()),
		0,
		1, 0,
		ol,
	)
}
