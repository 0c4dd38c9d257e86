//go:build unix

package tracked

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// FileID is the on-disk identity of an open file.
type FileID struct {
	Dev uint64
	Ino uint64
}

// String returns the identity as "dev:ino".
func (id FileID) String() string {
	return fmt.Sprintf("%d:%d", id.Dev, id.Ino)
}

// fileID reads the device and inode of an open file.
func fileID(f *os.File) (FileID, error) {
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return FileID{}, err
	}
	return FileID{Dev: uint64(st.Dev), Ino: uint64(st.Ino)}, nil
}
