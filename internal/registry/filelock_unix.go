//go:build unix

package registry

import (
	"os"

	"golang.org/x/sys/unix"
)

// flockExclusive takes a blocking advisory exclusive lock on the file.
// Advisory locks only coordinate between cooperating StableCam processes;
// they do not stop unrelated programs from touching the registry.
func flockExclusive(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

// flockUnlock releases the advisory lock.
func flockUnlock(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}
