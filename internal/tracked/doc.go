// Package tracked provides an identity-aware handle on a file path.
//
// A File owns at most one open descriptor for its path and remembers the
// identity (device and inode, or the platform equivalent) of the file that
// descriptor refers to. Every read goes through ReopenIfOutdated, so when the
// path starts to denote a different file (the log was rotated, or deleted and
// recreated) the next read transparently switches to the new file. There is
// no background goroutine: rotation is detected lazily, on access.
//
// # Reading
//
// ReadLine returns the next complete line, terminator included. A line whose
// terminator has not been written yet is never returned; the read position is
// rolled back so the bytes are read again on the next call.
//
// ReadLastLines returns the trailing lines of the file by probing growing
// windows backwards from the end, so only the tail of a large file is read.
//
// # Unavailable files
//
// A path that cannot be opened (missing, permission denied) is not an error.
// The File simply has no handle and reads report that nothing is available.
// Callers poll; the file is picked up as soon as it can be opened.
//
// # Deleted files
//
// When the path cannot be stat'ed the current handle is considered up to
// date. On unix an unlinked file stays readable through its descriptor, so
// whatever was written before the unlink is drained before switching to a
// file recreated at the same path. Platforms that refuse to remove an open
// file make the writer's rotation fail instead; nothing is lost on the
// reading side.
//
// # Limitations
//
// Identity is compared with os.SameFile. A file truncated in place keeps its
// identity, so truncation is not detected and reading resumes at the old
// offset once the file grows past it.
package tracked
