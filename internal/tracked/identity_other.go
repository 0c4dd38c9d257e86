//go:build !unix

package tracked

import (
	"errors"
	"os"
)

// FileID is the on-disk identity of an open file.
// Only unix platforms expose it; elsewhere identity is still compared through
// os.SameFile and FileID stays zero.
type FileID struct {
	Dev uint64
	Ino uint64
}

// String returns the identity as "dev:ino", or "unknown" when unavailable.
func (id FileID) String() string {
	return "unknown"
}

func fileID(_ *os.File) (FileID, error) {
	return FileID{}, errors.New("file identity not available on this platform")
}
